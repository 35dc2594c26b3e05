// Package main is the entry point for the booking assistant.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/washlane/booking-assistant/internal/booking"
	"github.com/washlane/booking-assistant/internal/channel"
	"github.com/washlane/booking-assistant/internal/config"
	"github.com/washlane/booking-assistant/internal/dedup"
	"github.com/washlane/booking-assistant/internal/engine"
	"github.com/washlane/booking-assistant/internal/events"
	"github.com/washlane/booking-assistant/internal/handler"
	"github.com/washlane/booking-assistant/internal/llm"
	"github.com/washlane/booking-assistant/internal/memory"
	"github.com/washlane/booking-assistant/internal/middleware"
	"github.com/washlane/booking-assistant/internal/scheduler"
	"github.com/washlane/booking-assistant/pkg/logger"
	"github.com/washlane/booking-assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting booking assistant")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "booking-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Load the assistant profile and build the catalog
	profile, err := config.LoadAssistant(cfg.AssistantConfigPath)
	if err != nil {
		log.Error("failed to load assistant profile", zap.Error(err))
		os.Exit(1)
	}
	cat, err := profile.BuildCatalog()
	if err != nil {
		log.Error("invalid catalog", zap.Error(err))
		os.Exit(1)
	}

	// Optional booking-events publisher
	var publisher *events.Publisher
	natsUsed := cfg.NATSURL != ""
	if natsUsed {
		publisher, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer publisher.Close()
	}

	// Completion-service client
	var llmClient llm.Client
	if profile.Enabled {
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			log.Error("failed to create completion client", zap.Error(err))
			os.Exit(1)
		}
	}

	// Messaging gateway
	gateway := channel.NewGateway(cfg.GatewayURL, cfg.GatewayToken, log)

	// Core components
	store := memory.NewStore(profile.MemoryLimit)
	guard := dedup.NewGuard(cfg.DedupWindow)
	guard.Start()
	defer guard.Stop()

	pipeline := booking.NewPipeline(cat, booking.Config{
		WebhookURL: cfg.BookingWebhookURL,
		APIKey:     cfg.BookingWebhookAPIKey,
		Source:     cfg.BookingSource,
	}, publisher, log)

	keywords := make([]engine.KeywordEntry, 0, len(profile.Keywords))
	for _, entry := range profile.Keywords {
		keywords = append(keywords, engine.KeywordEntry{Match: entry.Match, Reply: entry.Reply})
	}
	responder := engine.NewResponder(keywords, profile.DefaultReply, profile.UseDefaultReply)

	eng := engine.New(engine.Config{
		Enabled:           profile.Enabled,
		Model:             profile.Model,
		SystemPrompt:      profile.SystemPrompt,
		MaxLoops:          profile.MaxLoops,
		FallbackToDefault: profile.FallbackToDefault,
		SelfID:            cfg.GatewaySelfID,
		Policy: engine.Policy{
			IgnoreGroups:      profile.Bot.IgnoreGroups,
			IgnoreBroadcast:   profile.Bot.IgnoreBroadcast,
			IgnoreOwnMessages: profile.Bot.IgnoreOwnMessages,
		},
	}, guard, store, llmClient, pipeline, gateway, responder, engine.BookingTool(cat), log)

	// Outbound message jobs: started once the server is up, torn down on
	// shutdown so nothing fires into a dead channel.
	jobs := make([]scheduler.Job, 0, len(profile.ScheduledMessages))
	for _, sm := range profile.ScheduledMessages {
		jobs = append(jobs, scheduler.Job{
			To:        sm.To,
			Message:   sm.Message,
			Immediate: sm.Immediate,
			Delay:     sm.Delay,
			Interval:  sm.Interval,
		})
	}
	sched := scheduler.New(gateway, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(publisher, natsUsed)
	webhookHandler := handler.NewWebhookHandler(eng, log)
	conversationHandler := handler.NewConversationHandler(store, gateway, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Gateway webhook (rate limited by source IP)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/webhook/messages", webhookHandler.Receive)
	})

	// Admin API with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)
			r.Route("/{chatID}", func(r chi.Router) {
				r.Get("/messages", conversationHandler.Messages)
				r.Delete("/", conversationHandler.Clear)
			})
		})

		r.Post("/messages", conversationHandler.Send)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	sched.Start(jobs)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	sched.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("stopped")
}
