package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/journal/internal/config"
	"github.com/ehr/journal/internal/domain/encounter"
	"github.com/ehr/journal/internal/domain/note"
	"github.com/ehr/journal/internal/domain/patient"
	"github.com/ehr/journal/internal/platform/markup"
	"github.com/ehr/journal/internal/platform/metrics"
	"github.com/ehr/journal/internal/platform/middleware"
	"github.com/ehr/journal/internal/platform/store"
)

// app holds the three collection repositories and their services.
type app struct {
	patientRepo   *patient.FileRepo
	encounterRepo *encounter.FileRepo
	noteRepo      *note.FileRepo

	patients   *patient.Service
	encounters *encounter.Service
	notes      *note.Service
}

func newApp(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) *app {
	opts := []store.Option{store.WithLogger(logger)}
	if m != nil {
		opts = append(opts, store.WithObserver(m))
	}

	a := &app{
		patientRepo:   patient.NewFileRepo(cfg.DataDir, opts...),
		encounterRepo: encounter.NewFileRepo(cfg.DataDir, opts...),
		noteRepo:      note.NewFileRepo(cfg.DataDir, opts...),
	}
	a.patients = patient.NewService(a.patientRepo)
	a.encounters = encounter.NewService(a.encounterRepo)
	a.notes = note.NewService(a.noteRepo)

	if cfg.StrictReferences {
		a.encounters.SetParentChecker(a.patients)
		a.notes.SetParentChecker(a.encounters)
	}
	return a
}

// initCollections creates any missing collection file. Existing files are left alone.
func (a *app) initCollections() error {
	if err := a.patientRepo.Init(); err != nil {
		return err
	}
	if err := a.encounterRepo.Init(); err != nil {
		return err
	}
	return a.noteRepo.Init()
}

func (a *app) files() []string {
	return []string{
		a.patientRepo.Collection().Path(),
		a.encounterRepo.Collection().Path(),
		a.noteRepo.Collection().Path(),
	}
}

func newServer(cfg *config.Config, logger zerolog.Logger, a *app, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.XMLErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if m != nil {
		e.Use(middleware.Metrics(m))
	}
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}))

	// Record routes
	records := e.Group("")
	records.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           cfg.RateLimitIdleTTL,
	}))
	records.Use(middleware.BodyLimit(cfg.BodyLimit))
	records.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	records.Use(middleware.Audit(logger))

	patient.NewHandler(a.patients).RegisterRoutes(records)
	encounter.NewHandler(a.encounters).RegisterRoutes(records)
	note.NewHandler(a.notes).RegisterRoutes(records)

	e.GET("/health", func(c echo.Context) error {
		return c.Blob(http.StatusOK, markup.MIMEApplicationXML, markup.EncodeHealth(time.Now()))
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		e.Static("/", cfg.StaticDir)
	} else {
		logger.Warn().Str("static_dir", cfg.StaticDir).Msg("static directory not found, frontend disabled")
	}

	return e
}

func runServer() error {
	cfg, logger, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	m := metrics.New()
	a := newApp(cfg, logger, m)
	if err := a.initCollections(); err != nil {
		logger.Fatal().Err(err).Str("data_dir", cfg.DataDir).Msg("failed to initialize collections")
	}
	logger.Info().
		Str("data_dir", cfg.DataDir).
		Bool("strict_references", cfg.StrictReferences).
		Msg("collections ready")

	e := newServer(cfg, logger, a, m)

	// Graceful shutdown
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
