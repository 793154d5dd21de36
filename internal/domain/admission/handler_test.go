package admission

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

func mustParse(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}

func newHandlerFixture() (*Handler, *fixture) {
	f := newFixture(1)
	return NewHandler(f.svc), f
}

func admitBody(f *fixture) string {
	return fmt.Sprintf(`{"patient_id":%q,"room_id":%q,"admitting_doctor_id":%q,"admission_datetime":%q}`,
		f.patientID, f.roomID, f.doctorID, time.Now().UTC().Format(time.RFC3339))
}

func TestHandlerAdmit_Created(t *testing.T) {
	h, f := newHandlerFixture()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admission", strings.NewReader(admitBody(f)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Admit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), f.patientID.String()) {
		t.Error("response missing patient id")
	}
}

func TestHandlerAdmit_RoomFullConflict(t *testing.T) {
	h, f := newHandlerFixture()
	f.admit(t, f.patientID)
	patientB := f.patientID
	// second patient, same single-bed room
	f2body := strings.Replace(admitBody(f), patientB.String(), "00000000-0000-0000-0000-000000000001", 1)
	f.svc.patients.(*mockDirectory).patients[mustParse(t, "00000000-0000-0000-0000-000000000001")] = true

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admission", strings.NewReader(f2body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Admit(c)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}

	handlerRec := httptest.NewRecorder()
	hc := e.NewContext(httptest.NewRequest(http.MethodPost, "/admission", nil), handlerRec)
	apperr.HTTPErrorHandler(zerolog.Nop(), false)(err, hc)
	if handlerRec.Code != http.StatusConflict {
		t.Errorf("expected 409 from error handler, got %d", handlerRec.Code)
	}
}

func TestHandlerDischarge_InvalidID(t *testing.T) {
	h, _ := newHandlerFixture()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/admission/nope/discharge", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Discharge(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandlerDischarge_OK(t *testing.T) {
	h, f := newHandlerFixture()
	d := f.admit(t, f.patientID)

	body := fmt.Sprintf(`{"discharge_datetime":%q}`, d.AdmissionTime.Add(time.Hour).UTC().Format(time.RFC3339))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/admission/"+d.ID.String()+"/discharge", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.Discharge(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
