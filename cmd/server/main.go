package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/ai"
	"go-pos-vault/internal/app"
	"go-pos-vault/internal/config"
	"go-pos-vault/internal/handlers"
	"go-pos-vault/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.NewLogger(nil).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	a, err := app.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("failed to create upload dir", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	loginLimit, err := middleware.RateLimit(cfg.LoginRate)
	if err != nil {
		logger.Error("invalid LOGIN_RATE", "value", cfg.LoginRate, "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))

	agent := ai.NewAgent(cfg.GeminiAPIKey, a.Repo, logger)
	if !agent.Enabled() {
		logger.Warn("GEMINI_API_KEY is not set, the assistant is disabled")
	}
	handlers.New(a, agent).Register(r, loginLimit)
	r.Static("/uploads", cfg.UploadDir)

	// --- Serve the web UI ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")
	// SPA catch-all so the router in the browser handles deep links
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.AppAddr, "url", cfg.BaseURL, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
