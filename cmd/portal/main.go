package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/example/club-reservations/internal/application"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/config"
	httptransport "github.com/example/club-reservations/internal/http"
	"github.com/example/club-reservations/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now
	cal := calendar.New(location, now)

	resourceRepo := sqlite.NewResourceRepository(pool)
	reservationRepo := sqlite.NewReservationRepository(pool)
	blackoutRepo := sqlite.NewBlackoutRepository(pool)

	availabilityService := application.NewAvailabilityService(resourceRepo, reservationRepo, blackoutRepo, cal, cfg.HorizonCount, cfg.ResultCap, logger)
	reservationService := application.NewReservationService(reservationRepo, resourceRepo, blackoutRepo, cal, idGenerator, now, logger)
	blackoutService := application.NewBlackoutService(blackoutRepo, resourceRepo, idGenerator, now, logger)
	resourceService := application.NewResourceService(resourceRepo, idGenerator, now, logger)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Availability: httptransport.NewAvailabilityHandler(availabilityService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Blackouts:    httptransport.NewBlackoutHandler(blackoutService, logger),
		Resources:    httptransport.NewResourceHandler(resourceService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			corsMiddleware.Handler,
			httptransport.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst, logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
