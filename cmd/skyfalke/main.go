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

	"github.com/skyfalke/backoffice/internal/app"
	"github.com/skyfalke/backoffice/internal/auth"
	"github.com/skyfalke/backoffice/internal/crm"
	"github.com/skyfalke/backoffice/internal/invoices"
	"github.com/skyfalke/backoffice/internal/notifications"
	"github.com/skyfalke/backoffice/internal/observability"
	"github.com/skyfalke/backoffice/internal/platform/cache"
	"github.com/skyfalke/backoffice/internal/platform/db"
	"github.com/skyfalke/backoffice/internal/quotations"
	"github.com/skyfalke/backoffice/jobs"
	"github.com/skyfalke/backoffice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
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

	metrics := observability.NewMetrics()

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokenStore)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Service: authService}

	notificationRepo := notifications.NewRepository(pool)
	notificationService := notifications.NewService(notificationRepo, redisClient)
	notificationHandler := notifications.NewHandler(logger, notificationService)

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	mailer := jobs.NewQuotationMailer(queueClient)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo)
	invoiceHandler := invoices.NewHandler(logger, invoiceService)

	statsCache := quotations.NewStatsCache(redisClient, 30*time.Second)
	quotationRepo := quotations.NewRepository(pool)
	quotationService := quotations.NewService(quotationRepo, mailer, invoiceService, notificationService, statsCache)
	pdfClient := report.NewClient(cfg.GotenbergURL)
	quotationHandler := quotations.NewHandler(logger, quotationService, pdfClient)

	contactRepo := crm.NewRepository(pool)
	contactService := crm.NewService(contactRepo)
	contactHandler := crm.NewHandler(logger, contactService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)
	reportHandler := report.NewHandler(pdfClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		QuotationHandler:    quotationHandler,
		InvoiceHandler:      invoiceHandler,
		ContactHandler:      contactHandler,
		NotificationHandler: notificationHandler,
		JobHandler:          jobHandler,
		ReportHandler:       reportHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
