package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"regnify/internal/config"
	"regnify/internal/email/noop"
	"regnify/internal/email/ses"
	kafkaevents "regnify/internal/events/kafka"
	noopevents "regnify/internal/events/noop"
	"regnify/internal/handler"
	"regnify/internal/metrics"
	"regnify/internal/notify"
	"regnify/internal/port"
	"regnify/internal/repository/postgres"
	"regnify/internal/router"
	"regnify/internal/service"
	"regnify/internal/session/memory"
	redisstore "regnify/internal/session/redis"
	s3storage "regnify/internal/storage/s3"
	"regnify/internal/validator"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 20 * time.Second
)

// @title Regnify API
// @version 1.0
// @description Invoice compliance validation, reporting and provider integration.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer" followed by a space and the JWT access token.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepo(db)
	userRepo := postgres.NewUserRepo(db)
	auditRepo := postgres.NewAuditRepo(db)
	statsRepo := postgres.NewStatsRepo(db)
	integrationRepo := postgres.NewIntegrationRepo(db)
	systemUpdateRepo := postgres.NewSystemUpdateRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	healthH := handler.NewHealthHandler(db).WithCheck("storage", func(ctx context.Context) error {
		return s3Client.Ping(ctx, cfg.S3.Bucket)
	})

	// Initialize session store
	var sessions port.SessionStore
	switch cfg.Session.Provider {
	case "redis":
		client, err := redisstore.NewClient(&cfg.Session)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		sessions = redisstore.New(client, cfg.Session.KeyPrefix)
		healthH.WithCheck("sessions", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	default:
		store := memory.New()
		go store.RunSweeper(ctx, sweepInterval)
		sessions = store
	}

	// Initialize event publisher
	var events port.EventPublisher
	if cfg.Kafka.Enabled {
		events, err = kafkaevents.NewPublisher(ctx, &cfg.Kafka)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
	} else {
		events = noopevents.NewPublisher()
	}
	defer events.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Validation engine
	rules, err := validator.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to build rule registry: %w", err)
	}
	engine := validator.NewEngine(rules)

	dispatcher := notify.NewDispatcher(cfg.Notify.Concurrency, cfg.Notify.Timeout, notify.WithBacklog(cfg.Notify.Backlog))
	metrics.RegisterNotifyDrops(registry, dispatcher.Dropped)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, auditRepo, sessions, m, cfg.JWT, cfg.Auth)
	invoiceSvc := service.NewInvoiceService(service.InvoiceDeps{
		InvoiceRepo: invoiceRepo,
		UserRepo:    userRepo,
		AuditRepo:   auditRepo,
		Storage:     s3Client,
		Email:       emailSender,
		Events:      events,
		Engine:      engine,
		Dispatcher:  dispatcher,
		Metrics:     m,
		S3:          &cfg.S3,
	})
	userSvc := service.NewUserService(userRepo, auditRepo, sessions, emailSender, dispatcher)
	dashboardSvc := service.NewDashboardService(statsRepo, userRepo)
	integrationSvc := service.NewIntegrationService(integrationRepo, invoiceRepo, auditRepo,
		&http.Client{Timeout: cfg.Integration.HTTPTimeout})
	systemUpdateSvc := service.NewSystemUpdateService(systemUpdateRepo, auditRepo)

	if cfg.Integration.SchedulerEnabled {
		scheduler := service.NewIntegrationScheduler(integrationRepo, integrationSvc, service.IntegrationSchedulerConfig{
			PollInterval: cfg.Integration.PollInterval,
			SendTimeout:  cfg.Integration.SendTimeout,
		})
		go scheduler.Start(ctx)
	}

	// Setup router
	r := router.Setup(authSvc, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Invoice:   handler.NewInvoiceHandler(invoiceSvc),
		User:      handler.NewUserHandler(userSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Rules:     handler.NewRulesHandler(rules),
		Health:    healthH,

		Integration:  handler.NewIntegrationHandler(integrationSvc),
		SystemUpdate: handler.NewSystemUpdateHandler(systemUpdateSvc),
	}, m, registry, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Printf("notification drain: %v", err)
	}
	return nil
}
