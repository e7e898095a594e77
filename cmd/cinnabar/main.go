package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JakobStaudinger/cinnabar/internal/api"
	"github.com/JakobStaudinger/cinnabar/internal/orchestrator"
	"github.com/JakobStaudinger/cinnabar/internal/shared/config"
	"github.com/JakobStaudinger/cinnabar/internal/shared/logger"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
	githubsource "github.com/JakobStaudinger/cinnabar/internal/sourcecontrol/github"
	"github.com/JakobStaudinger/cinnabar/internal/webhook"
	dockerclient "github.com/docker/docker/client"
	"go.uber.org/zap"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	docker, err := dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())
	if err != nil {
		log.Fatal("Failed to initialize docker client", zap.Error(err))
	}

	sourceControlClient := githubsource.New(cfg.GitHub.AppID, cfg.GitHub.PrivateKey)

	coordinator := orchestrator.New(sourceControlClient, docker, cfg.Registries, log)

	webhookSecret := secret.New(cfg.GitHub.WebhookSecret)
	webhookHandler := webhook.NewHandler(webhookSecret, coordinator.Dispatch, log)

	router := api.NewRouter(webhookHandler, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sigint := make(chan os.Signal, 1)
	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT)
	signal.Notify(sigterm, syscall.SIGTERM)

	select {
	case <-sigint:
		log.Info("Received SIGINT, shutting down")
	case <-sigterm:
		log.Info("Received SIGTERM, shutting down")
	}

	// Background pipeline goroutines spawned by the orchestrator are
	// deliberately not awaited here; only in-flight HTTP requests drain.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
