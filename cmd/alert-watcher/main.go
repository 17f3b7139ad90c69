package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-security-alert-watcher/internal/api"
	"github.com/mr1hm/go-security-alert-watcher/internal/app"
	"github.com/mr1hm/go-security-alert-watcher/internal/config"
	internalgrpc "github.com/mr1hm/go-security-alert-watcher/internal/grpc"
	"github.com/mr1hm/go-security-alert-watcher/internal/logging"
	"github.com/mr1hm/go-security-alert-watcher/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Started monitoring process",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"webhook_path", cfg.Webhook.Path,
		"app_auth", cfg.GitHub.HasAppCredentials(),
		"dry_run", cfg.Webhook.DryRun,
	)

	m := metrics.New()
	ingress := app.NewIngress(cfg, m)

	// gRPC health probes
	var grpcServer *internalgrpc.Server
	if cfg.GRPC.Port > 0 {
		grpcServer = internalgrpc.NewServer()
		go func() {
			grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
			if err := grpcServer.Start(grpcAddr); err != nil {
				logging.Fatalf("gRPC server error: %v", err)
			}
		}()
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if len(cfg.Server.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Server.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
		}))
	}

	handler := api.NewHandler(ingress, m.Handler(), cfg.Webhook.Path)
	handler.RegisterRoutes(router, api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down...", "signal", sig.String())

	if grpcServer != nil {
		grpcServer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("Server stopped")
}
