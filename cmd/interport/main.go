package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/interport-cargo/interport/internal/app"
	"github.com/interport-cargo/interport/internal/notifications"
	"github.com/interport-cargo/interport/internal/observability"
	"github.com/interport-cargo/interport/internal/platform/cache"
	"github.com/interport-cargo/interport/internal/platform/db"
	"github.com/interport-cargo/interport/internal/platform/httpx"
	"github.com/interport-cargo/interport/internal/quotation"
	"github.com/interport-cargo/interport/internal/quotation/pdf"
	"github.com/interport-cargo/interport/internal/rates"
	"github.com/interport-cargo/interport/internal/rbac"
	"github.com/interport-cargo/interport/internal/shared"
	"github.com/interport-cargo/interport/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobsCommand(os.Args[2:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
		MaxConns:        cfg.PGMaxConns,
		MaxConnLifetime: cfg.PGMaxConnLifetime,
	})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	metrics := observability.NewMetrics()
	rbacService := rbac.NewService()
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	rateService := rates.NewService(
		rates.NewRepository(pool),
		rates.NewCache(redisClient, cfg.RateCacheTTL, logger),
		cfg.GSTFallbackPercent,
	)
	ratesHandler := rates.NewHandler(logger, rateService, rbacMiddleware.Admin())

	notificationService := notifications.NewService(notifications.NewRepository(pool), logger)
	notificationsHandler := notifications.NewHandler(logger, notificationService, rbacMiddleware.Officer())
	dispatcher := notifications.NewDispatcher(jobClient, cfg.OfficerInbox, logger)

	idempotencyStore := shared.NewIdempotencyStore(pool)
	quotationService := quotation.NewService(
		quotation.NewRepository(pool),
		rateService,
		dispatcher,
		shared.NewAuditLogger(pool),
		metrics,
		logger,
	)
	quotationHandler := quotation.NewHandler(
		logger,
		quotationService,
		quotation.Guards{
			Customer: rbacMiddleware.Customer(),
			Officer:  rbacMiddleware.Officer(),
			Admin:    rbacMiddleware.Admin(),
		},
		httpx.Idempotent(idempotencyStore, "quotation", logger),
		pdf.New(cfg.CompanyName),
	)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		RBACMiddleware:       rbacMiddleware,
		QuotationHandler:     quotationHandler,
		NotificationsHandler: notificationsHandler,
		RatesHandler:         ratesHandler,
		PermissionsHandler:   rbac.NewPermissionsHandler(logger, rbacService, rbacMiddleware),
		JobHandler:           jobs.NewHandler(inspector, logger),
		Metrics:              metrics,
		Ready: func(r *http.Request) error {
			if err := pool.Ping(r.Context()); err != nil {
				return err
			}
			return redisClient.Ping(r.Context()).Err()
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
