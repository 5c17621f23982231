package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/natashamaes/venue-concierge/cmd/mainconfig"
	"github.com/natashamaes/venue-concierge/internal/api/router"
	"github.com/natashamaes/venue-concierge/internal/archive"
	"github.com/natashamaes/venue-concierge/internal/availability"
	"github.com/natashamaes/venue-concierge/internal/calendar"
	"github.com/natashamaes/venue-concierge/internal/calllog"
	"github.com/natashamaes/venue-concierge/internal/concierge"
	appconfig "github.com/natashamaes/venue-concierge/internal/config"
	"github.com/natashamaes/venue-concierge/internal/contract"
	"github.com/natashamaes/venue-concierge/internal/crm"
	"github.com/natashamaes/venue-concierge/internal/http/handlers"
	"github.com/natashamaes/venue-concierge/internal/idempotency"
	"github.com/natashamaes/venue-concierge/internal/notify"
	"github.com/natashamaes/venue-concierge/internal/observability/metrics"
	"github.com/natashamaes/venue-concierge/internal/payments"
	"github.com/natashamaes/venue-concierge/internal/reservations"
	"github.com/natashamaes/venue-concierge/internal/sms"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting venue-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Reservation store: Google Calendar is the source of truth.
	googleProvider, err := calendar.NewGoogleProvider(ctx, calendar.GoogleConfig{
		CalendarID:         cfg.CalendarID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ClientID:           cfg.GoogleClientID,
		ClientSecret:       cfg.GoogleClientSecret,
		RefreshToken:       cfg.GoogleRefreshToken,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize calendar provider", "error", err)
		os.Exit(1)
	}
	var provider calendar.Provider
	if googleProvider != nil {
		provider = googleProvider
	} else {
		logger.Warn("calendar not configured; booking tools will fail until it is")
	}

	store := reservations.NewStore(provider, logger)
	checker := availability.NewChecker(provider, logger)
	svc := concierge.NewService(store, checker, logger)

	// Customer directory (optional).
	var crmSync *crm.Synchronizer
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		crmSync = crm.NewSynchronizer(crm.NewPostgresRepository(pool), logger)
	}

	// Tool-call deduplication (optional).
	var idemStore *idempotency.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		idemStore = idempotency.NewStore(redis.NewClient(opts), cfg.ToolCallTTL)
	}

	// AWS: contract archive on S3, optional SES email.
	var (
		archiveStore *archive.Store
		sesClient    *sesv2.Client
	)
	wantSES := cfg.EmailProvider == "ses" ||
		(cfg.EmailProvider == "auto" && cfg.SendGridAPIKey == "")
	if cfg.ContractBucket != "" || wantSES {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if cfg.ContractBucket != "" {
			archiveStore = archive.NewStore(s3.NewFromConfig(awsCfg), cfg.ContractBucket, logger)
		}
		sesClient = sesv2.NewFromConfig(awsCfg)
	}

	// SendGrid when configured, SES as the fallback.
	var emailSender notify.EmailSender
	if cfg.EmailProvider != "ses" {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			emailSender = s
		}
	}
	if emailSender == nil && wantSES {
		if s := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			emailSender = s
		}
	}
	if emailSender == nil {
		logger.Warn("email not configured; agreements and office notifications disabled")
	}

	var archiveIface contract.Archive
	if archiveStore != nil {
		archiveIface = archiveStore
	}
	contractGen := contract.NewGenerator(emailSender, archiveIface, cfg.OfficeEmail, logger)

	gateway := payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeDryRun, logger)

	// Call log (optional).
	var callLog calllog.CallLogger
	sheetsLogger, err := calllog.NewSheetsLogger(ctx, calllog.SheetsConfig{
		SpreadsheetID:      cfg.CallLogSheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ClientID:           cfg.GoogleClientID,
		ClientSecret:       cfg.GoogleClientSecret,
		RefreshToken:       cfg.GoogleRefreshToken,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize call log", "error", err)
		os.Exit(1)
	}
	if sheetsLogger != nil {
		callLog = sheetsLogger
	}

	location, err := time.LoadLocation(cfg.VenueTimezone)
	if err != nil {
		logger.Error("invalid venue timezone", "tz", cfg.VenueTimezone, "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	toolMetrics := metrics.NewToolMetrics(registry)

	var smsSender sms.Sender
	if c := sms.NewClickSendClient(cfg.ClickSendUsername, cfg.ClickSendAPIKey, logger); c != nil {
		smsSender = c
	} else {
		logger.Warn("clicksend credentials missing, sms links disabled")
	}

	conciergeHandler := handlers.NewConciergeHandler(handlers.ConciergeHandlerConfig{
		Service:  svc,
		Contract: contractGen,
		Gateway:  gateway,
		CRM:      crmSync,
		Email:    emailSender,
		SMS:      smsSender,
		Idem:     idemStore,
		Metrics:  toolMetrics,
		Location: location,
		Logger:   logger,
	})
	reportHandler := handlers.NewReportHandler(handlers.ReportHandlerConfig{
		Email:       emailSender,
		CallLog:     callLog,
		Directory:   crmSync,
		OfficeEmail: cfg.OfficeEmail,
		Logger:      logger,
	})
	debugHandler := handlers.NewDebugHandler(cfg, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		ConciergeHandler:   conciergeHandler,
		ReportHandler:      reportHandler,
		DebugHandler:       debugHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       5,
		RateLimitBurst:     10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
