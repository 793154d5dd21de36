package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HTTPErrorHandler returns an echo error handler that maps classified
// errors to status codes. Internal error detail is logged but only
// exposed to clients in dev mode.
func HTTPErrorHandler(logger zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var he *echo.HTTPError
		var ae *Error
		switch {
		case errors.As(err, &he):
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		case errors.As(err, &ae):
			switch ae.Kind {
			case KindNotFound:
				status = http.StatusNotFound
			case KindInvalid:
				status = http.StatusBadRequest
			case KindConflict:
				status = http.StatusConflict
			default:
				status = http.StatusInternalServerError
			}
			if ae.Kind != KindInternal || dev {
				message = ae.Msg
			}
		default:
			if dev {
				message = err.Error()
			}
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().
				Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"error": message})
	}
}
