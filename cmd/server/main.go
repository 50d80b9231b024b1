package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/a2a"
	"github.com/BerylCAtieno/icp-builder/internal/api"
	"github.com/BerylCAtieno/icp-builder/internal/builder"
	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/config"
	"github.com/BerylCAtieno/icp-builder/internal/export"
	"github.com/BerylCAtieno/icp-builder/internal/logging"
	"github.com/BerylCAtieno/icp-builder/internal/profiler"
	"github.com/BerylCAtieno/icp-builder/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	kv, err := store.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	st := store.New(kv, logger)
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := profiler.Factory(cfg.GeminiModel, logger)
	turnOpts := []chat.Option{
		chat.WithTimeout(cfg.TurnTimeout),
		chat.WithMaxIterations(cfg.MaxToolIterations),
	}
	b := builder.New(ctx, st, factory, logger, turnOpts...)

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; /api/gemini will report a configuration error")
	}
	apiHandler := api.NewHandler(b, export.NewWebhook(cfg.WebhookURL, nil, logger), api.ProxyConfig{
		APIKey:  cfg.GeminiAPIKey,
		Factory: factory,
		Options: turnOpts,
	}, logger)

	baseURL := "http://localhost:" + cfg.Port
	a2aHandler := a2a.NewA2AHandler(b, baseURL, logger)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(logger), api.CORS())

	// Endpoints
	apiHandler.Register(router)
	router.GET("/.well-known/agent.json", a2aHandler.ServeAgentCard)
	router.POST("/a2a/icp", a2a.BodyLogger(logger), a2aHandler.HandleICP)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("ICP Builder starting",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreDriver),
			zap.String("agent_card", baseURL+"/.well-known/agent.json"),
			zap.String("a2a_endpoint", baseURL+"/a2a/icp"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
