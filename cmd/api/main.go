package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/AthenaOS24/AthenaOS/cmd/mainconfig"
	"github.com/AthenaOS24/AthenaOS/internal/analysis"
	"github.com/AthenaOS24/AthenaOS/internal/api/router"
	"github.com/AthenaOS24/AthenaOS/internal/chat"
	appconfig "github.com/AthenaOS24/AthenaOS/internal/config"
	"github.com/AthenaOS24/AthenaOS/internal/observability/metrics"
	"github.com/AthenaOS24/AthenaOS/internal/responder"
	"github.com/AthenaOS24/AthenaOS/internal/session"
	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

func main() {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting athenaos API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
		"session_store", cfg.SessionStore,
	)

	ctx := context.Background()

	store, activeSessions, err := buildStore(cfg)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	client, closeClient, err := buildResponder(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize responder client", "error", err)
		os.Exit(1)
	}
	defer closeClient()

	rules, err := analysis.LoadRules(cfg.RulesPath)
	if err != nil {
		logger.Error("failed to load detection rules", "error", err)
		os.Exit(1)
	}

	analysisMetrics := metrics.NewAnalysisMetrics(nil)

	analyzer := analysis.NewAnalyzer(analysis.AnalyzerOptions{
		Sanitizer:  analysis.NewSanitizer(true),
		Rules:      rules,
		Moderation: analysis.NewLLMModeration(client, cfg.ModerationThreshold, logger),
		Sentiment:  analysis.NewLLMSentiment(client, logger),
		Emotion:    analysis.NewLLMEmotion(client, logger),
		Logger:     logger,
		Metrics:    analysisMetrics,
	})

	service := chat.NewService(chat.ServiceOptions{
		Store:         store,
		Analyzer:      analyzer,
		Client:        client,
		Provider:      cfg.LLMProvider,
		Timeout:       cfg.ResponderTimeout,
		HistoryWindow: cfg.HistoryWindow,
		Logger:        logger,
		Metrics:       analysisMetrics,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(service, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Provider:           cfg.LLMProvider,
		ActiveSessions:     activeSessions,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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
}

// buildStore selects the session backend. The counter func is nil when the
// backend cannot report a cheap session count.
func buildStore(cfg *appconfig.Config) (session.Store, func() int, error) {
	switch cfg.SessionStore {
	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		return session.NewRedisStore(client, otel.Tracer("athenaos.session")), nil, nil
	default:
		store := session.NewMemoryStore()
		return store, store.Len, nil
	}
}

// buildResponder constructs the configured LLM backend. When both backends
// are configured, the unused one serves as the fallback.
func buildResponder(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (responder.Client, func(), error) {
	closeFn := func() {}

	var gemini responder.Client
	if cfg.GoogleAPIKey != "" {
		g, err := responder.NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, err
		}
		gemini = g
		closeFn = func() { _ = g.Close() }
	}

	var bedrock responder.Client
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		bedrock = responder.WithModel(
			responder.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg)),
			cfg.BedrockModelID,
		)
	}

	var primary, secondary responder.Client
	if cfg.LLMProvider == "bedrock" {
		primary, secondary = bedrock, gemini
	} else {
		primary, secondary = gemini, bedrock
	}
	if primary == nil {
		primary, secondary = secondary, nil
	}
	if primary == nil {
		return nil, nil, errors.New("no responder configured: set GOOGLE_API_KEY or BEDROCK_MODEL_ID")
	}
	if secondary != nil {
		return responder.NewFallbackClient(primary, secondary, logger), closeFn, nil
	}
	return primary, closeFn, nil
}
