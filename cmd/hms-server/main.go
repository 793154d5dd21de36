package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/catalog"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/room"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/domain/treatment"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
)

// patientDirectory adapts the patient repository to the PatientExists
// lookup that the treatment, appointment, admission and billing
// services depend on, avoiding circular imports between domains.
type patientDirectory struct {
	repo patient.Repository
}

func (d *patientDirectory) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// staffDirectory adapts the staff repository to the doctor lookups the
// clinical and admission services depend on.
type staffDirectory struct {
	repo staff.Repository
}

func (d *staffDirectory) ActiveDoctor(ctx context.Context, id uuid.UUID) (bool, error) {
	s, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return s != nil && s.Role == "doctor" && s.Active, nil
}

func (d *staffDirectory) FindDoctor(ctx context.Context, id uuid.UUID) (*admission.Doctor, error) {
	s, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Role != "doctor" {
		return nil, nil
	}
	return &admission.Doctor{
		ID:     s.ID,
		Name:   s.FirstName + " " + s.LastName,
		Active: s.Active,
	}, nil
}

// occupancyLedger adapts the room repository to the admission
// service's capacity accounting.
type occupancyLedger struct {
	repo room.Repository
}

func (l *occupancyLedger) FindRoom(ctx context.Context, id uuid.UUID) (*admission.RoomInfo, error) {
	r, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return &admission.RoomInfo{
		ID:               r.ID,
		Number:           r.Number,
		Type:             r.Type,
		Capacity:         r.Capacity,
		CurrentOccupancy: r.CurrentOccupancy,
		Active:           r.Active,
	}, nil
}

func (l *occupancyLedger) Increment(ctx context.Context, id uuid.UUID) (bool, error) {
	return l.repo.IncrementOccupancy(ctx, id)
}

func (l *occupancyLedger) Decrement(ctx context.Context, id uuid.UUID) (bool, error) {
	return l.repo.DecrementOccupancy(ctx, id)
}

// admissionSource adapts the admission repository to the billing
// engine's room-charge projection.
type admissionSource struct {
	repo admission.Repository
}

func (s *admissionSource) FindAdmission(ctx context.Context, id uuid.UUID) (*billing.AdmissionInfo, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	return &billing.AdmissionInfo{
		ID:            d.ID,
		PatientID:     d.PatientID,
		RoomType:      d.RoomType,
		AdmissionTime: d.AdmissionTime,
		DischargeTime: d.DischargeTime,
	}, nil
}

// priceList adapts the service catalog to the billing engine's
// name-based price lookups.
type priceList struct {
	repo catalog.Repository
}

func (p *priceList) FindActiveService(ctx context.Context, name string) (*billing.PricedService, error) {
	item, err := p.repo.FindActiveByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return &billing.PricedService{ID: item.ID, Name: item.Name, Cost: item.Cost}, nil
}

// treatmentSource adapts the treatment repository to the billing
// engine's charge pass.
type treatmentSource struct {
	repo treatment.Repository
}

func (s *treatmentSource) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*billing.TreatmentInfo, error) {
	treatments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]*billing.TreatmentInfo, len(treatments))
	for i, t := range treatments {
		out[i] = &billing.TreatmentInfo{ID: t.ID, Name: t.Name, Date: t.TreatmentDate}
	}
	return out, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	txManager := db.NewTxManager(pool)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger, cfg.IsDev())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// -- Register Domain Handlers --

	// Patient directory
	patientRepo := patient.NewRepoPG(pool)
	patientSvc := patient.NewService(patientRepo)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	// Staff directory
	staffRepo := staff.NewRepoPG(pool)
	staffSvc := staff.NewService(staffRepo)
	staff.NewHandler(staffSvc).RegisterRoutes(apiV1)

	// Service catalog
	catalogRepo := catalog.NewRepoPG(pool)
	catalogSvc := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)

	// Cross-domain adapters
	patients := &patientDirectory{repo: patientRepo}
	doctors := &staffDirectory{repo: staffRepo}

	// Rooms and occupancy
	roomRepo := room.NewRepoPG(pool)
	roomSvc := room.NewService(roomRepo)
	room.NewHandler(roomSvc).RegisterRoutes(apiV1)

	// Treatments
	treatmentRepo := treatment.NewRepoPG(pool)
	treatmentSvc := treatment.NewService(treatmentRepo, patients, doctors)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(apiV1)

	// Appointments
	apptRepo := appointment.NewRepoPG(pool)
	apptSvc := appointment.NewService(apptRepo, patients, doctors)
	appointment.NewHandler(apptSvc).RegisterRoutes(apiV1)

	// Admission lifecycle
	admissionRepo := admission.NewRepoPG(pool)
	admissionSvc := admission.NewService(admissionRepo, patients, doctors,
		&occupancyLedger{repo: roomRepo}, txManager, logger)
	admission.NewHandler(admissionSvc).RegisterRoutes(apiV1)

	// Billing engine
	billingRepo := billing.NewRepoPG(pool)
	billingSvc := billing.NewService(billingRepo, patients,
		&admissionSource{repo: admissionRepo},
		&priceList{repo: catalogRepo},
		&treatmentSource{repo: treatmentRepo},
		txManager, logger, cfg.BillingAllowOverpayment)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
