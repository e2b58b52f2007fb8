package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-booking/cmd/mainconfig"
	"github.com/wolfman30/salon-booking/internal/api/router"
	"github.com/wolfman30/salon-booking/internal/app/bootstrap"
	"github.com/wolfman30/salon-booking/internal/booking"
	appconfig "github.com/wolfman30/salon-booking/internal/config"
	httpmiddleware "github.com/wolfman30/salon-booking/internal/http/middleware"
	"github.com/wolfman30/salon-booking/internal/notify"
	"github.com/wolfman30/salon-booking/internal/observability/metrics"
	"github.com/wolfman30/salon-booking/internal/wizard"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"booking_adapter", cfg.BookingAdapter,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.SchedulingTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildServer wires the booking stack. The returned cleanup closes Redis and
// Postgres connections.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	hours, err := cfg.BusinessHours()
	if err != nil {
		return nil, cleanup, err
	}
	if err := cfg.CheckSubmitTimeouts(); err != nil {
		return nil, cleanup, err
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, cleanup, err
	}
	checks := map[string]router.HealthCheck{}
	if pool != nil {
		closers = append(closers, pool.Close)
		checks["postgres"] = pool.Ping
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	email, err := buildEmailSender(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	adapter, err := bootstrap.BuildAdapter(cfg, email, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	metricsHandler, bookingMetrics := setupBookingMetrics()
	orchestrator := booking.NewOrchestrator(
		adapter,
		bootstrap.BuildSubmitGuard(redisClient, cfg, logger),
		bookingMetrics,
		logger,
	)
	store := bootstrap.BuildSessionStore(redisClient, cfg)
	svc := wizard.NewService(
		store,
		bootstrap.BuildCatalog(pool, logger),
		orchestrator,
		notify.NewConfirmationMailer(email, cfg.SalonName, cfg.SalonNotifyEmail, logger),
		bookingMetrics,
		wizard.Config{
			Hours:       hours,
			HorizonDays: cfg.BookingHorizonDays,
			Location:    cfg.Location(),
		},
		logger,
	)

	limiter := httpmiddleware.NewRateLimiter(cfg.SubmitRatePerSec, cfg.SubmitRateBurst)
	janitorTasks := map[string]bootstrap.JanitorTask{
		"rate_limit_buckets": func() int { return limiter.EvictIdle(10 * time.Minute) },
	}
	if mem, ok := store.(*wizard.MemoryStore); ok {
		janitorTasks["sessions"] = mem.Sweep
	}
	janitor, err := bootstrap.StartJanitor(bootstrap.DefaultJanitorSchedule, janitorTasks, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	closers = append(closers, func() { <-janitor.Stop().Done() })

	handler := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     wizard.NewHandler(svc, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitLimiter:      limiter,
		HealthChecks:       checks,
	})
	return handler, cleanup, nil
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg.EmailProvider != "ses" {
		return bootstrap.BuildEmailSender(cfg, nil, logger)
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return bootstrap.BuildEmailSender(cfg, mainconfig.NewSESClient(awsCfg, cfg), logger)
}

func setupBookingMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}
