package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agencyscout/scout-funnel/internal/config"
	"github.com/agencyscout/scout-funnel/internal/funnel"
	"github.com/agencyscout/scout-funnel/internal/imaging"
	"github.com/agencyscout/scout-funnel/internal/infra/database"
	"github.com/agencyscout/scout-funnel/internal/infra/http/handlers"
	"github.com/agencyscout/scout-funnel/internal/infra/http/middleware"
	"github.com/agencyscout/scout-funnel/internal/infra/integration/vision"
	"github.com/agencyscout/scout-funnel/internal/infra/mail"
	"github.com/agencyscout/scout-funnel/internal/infra/queue"
	"github.com/agencyscout/scout-funnel/internal/infra/storage"
	"github.com/agencyscout/scout-funnel/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if cfg.Env == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Lead events are a best-effort side channel; a missing broker
	// degrades fan-out, never the funnel.
	var amqpConn *amqp.Connection
	var publisher usecase.LeadEventPublisher
	rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPUser, cfg.AMQPPass, cfg.AMQPHost, cfg.AMQPPort)
	if err != nil {
		logger.Warn("rabbitmq unavailable, lead events disabled", "error", err)
	} else {
		amqpConn = rabbitMQ.Conn
		publisher = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()
	}

	var notifier usecase.LeadNotifier
	if cfg.MailHost != "" && cfg.MailTo != "" {
		notifier = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailTo)
	}

	var assets usecase.AssetStorage
	if cfg.StorageURL != "" {
		assets = storage.NewSupabaseClient(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
	}

	leadRepo := database.NewLeadRepository(db)
	visionClient := vision.NewClient(cfg.VisionBaseURL, cfg.VisionTimeout, cfg.FallbackDelay, logger)
	normalizer := imaging.NewNormalizer(cfg.ImageMaxDimension, cfg.ImageMaxBytes, cfg.ImageQuality)

	submitUC := usecase.NewSubmitLeadUseCase(leadRepo, assets, notifier, publisher, logger)
	listUC := usecase.NewListLeadsUseCase(leadRepo)

	funnelCfg := funnel.Config{
		QualifyThreshold: cfg.QualifyThreshold,
		MinPresentation:  cfg.MinPresentation,
		SafetyTimeout:    cfg.SafetyTimeout,
	}
	funnelHandler := handlers.NewFunnelHandler(func() *funnel.Controller {
		return funnel.NewController(normalizer, visionClient, submitUC, funnel.SystemClock, funnelCfg, logger)
	})
	reportHandler := handlers.NewReportHandler(listUC)
	healthHandler := handlers.NewHealthHandler(db, amqpConn, visionClient)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Session-Token"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/funnel", func(r chi.Router) {
		r.Post("/scan", funnelHandler.HandleScan)
		r.Get("/status", funnelHandler.HandleStatus)
		r.Post("/submit", funnelHandler.HandleSubmit)
		r.Post("/reset", funnelHandler.HandleReset)
	})

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", reportHandler.HandleList)
		r.Get("/export", reportHandler.HandleExport)
	})

	addr := ":" + cfg.Port
	logger.Info("scout funnel listening", "addr", addr, "env", cfg.Env, "vision", cfg.VisionBaseURL)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
