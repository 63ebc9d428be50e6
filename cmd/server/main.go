package main

import (
	// Standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// External dependencies
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/houzhh15/coedit/cmd/server/internal/api"
	"github.com/houzhh15/coedit/cmd/server/internal/audit"
	"github.com/houzhh15/coedit/cmd/server/internal/collab"
	"github.com/houzhh15/coedit/cmd/server/internal/config"
	"github.com/houzhh15/coedit/cmd/server/internal/middleware"
	"github.com/houzhh15/coedit/pkg/logger"
)

func main() {
	logInstance, err := logger.Init(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("ENV"),
		WithSource:  !strings.EqualFold(os.Getenv("ENV"), "prod"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "collab-server")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Load collaboration tunables (optional YAML file)
	settings, err := config.LoadCollabSettings(cfg.Collab.SettingsFile)
	if err != nil {
		appLogger.Error("failed to load collab settings", "error", err)
		os.Exit(1)
	}
	idleExpiry, _ := settings.IdleExpiryDuration()
	sweepInterval, _ := settings.SweepIntervalDuration()

	// Initialize audit logger
	var auditLogger audit.AuditLogger
	if cfg.Audit.Enabled {
		auditLogger = audit.NewRotatingAuditLogger(cfg.Audit.LogFile)
		appLogger.Info("audit logger ready", "file", cfg.Audit.LogFile)
	} else {
		appLogger.Info("audit logging disabled")
	}

	// Initialize collaboration engine
	registry := collab.NewRegistry(collab.Options{
		Palette:     settings.Palette,
		LogWindow:   settings.OperationLogWindow,
		MaxSessions: settings.MaxSessions,
	})
	collabService := collab.NewCollaborationService(registry, auditLogger, logInstance.With("component", "collab-service"))
	appLogger.Info("collaboration service ready",
		"log_window", settings.OperationLogWindow,
		"max_sessions", settings.MaxSessions,
		"idle_expiry", idleExpiry.String(),
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Health and metrics endpoints
	startTime := time.Now()
	r.GET("/health", healthCheckHandler(cfg, startTime))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Collaboration session routes
	api.RegisterCollabRoutes(r, collabService)

	// Create HTTP server with graceful shutdown
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	// Start idle participant sweeper when enabled
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	if idleExpiry > 0 {
		go runIdleSweeper(sweepCtx, collabService, idleExpiry, sweepInterval)
		appLogger.Info("idle sweeper started", "expiry", idleExpiry.String(), "interval", sweepInterval.String())
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("server starting", "addr", serverAddr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	stopSweeper()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}

// healthCheckHandler 健康检查
func healthCheckHandler(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"env":            cfg.Server.Env,
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	}
}

// runIdleSweeper 周期清理闲置参与者与空会话
func runIdleSweeper(ctx context.Context, svc collab.CollaborationService, idleExpiry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.SweepIdle(idleExpiry)
		}
	}
}
