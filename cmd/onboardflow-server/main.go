package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onboardflow/onboardflow/internal/api"
	clientrepo "github.com/onboardflow/onboardflow/internal/client/repositoryimpl"
	"github.com/onboardflow/onboardflow/internal/config"
	"github.com/onboardflow/onboardflow/internal/engine"
	"github.com/onboardflow/onboardflow/internal/eventbus"
	memberrepo "github.com/onboardflow/onboardflow/internal/member/repositoryimpl"
	"github.com/onboardflow/onboardflow/internal/persist"
	projectrepo "github.com/onboardflow/onboardflow/internal/project/repositoryimpl"
	"github.com/onboardflow/onboardflow/internal/pushnotification"
	pushsubrepo "github.com/onboardflow/onboardflow/internal/pushsubscription/repositoryimpl"
	settingsrepo "github.com/onboardflow/onboardflow/internal/settings/repositoryimpl"
	taskrepo "github.com/onboardflow/onboardflow/internal/task/repositoryimpl"
	"github.com/onboardflow/onboardflow/pkg/clog"
	"github.com/onboardflow/onboardflow/pkg/storage"

	server "github.com/onboardflow/onboardflow/internal"
)

func main() {
	// "sentinel" supervises a child running "run"; anything else runs the
	// server directly.
	if len(os.Args) > 1 && os.Args[1] == "sentinel" {
		runSentinel()
		return
	}
	runServer()
}

func runServer() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	clientRepo := clientrepo.NewYAMLRepository(store)
	projectRepo := projectrepo.NewYAMLRepository(store)
	taskRepo := taskrepo.NewYAMLRepository(store)
	memberRepo := memberrepo.NewYAMLRepository(store)
	settingsRepo := settingsrepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	// Setup persistence
	syncer := persist.NewRepositorySyncer(clientRepo, projectRepo, taskRepo, memberRepo, settingsRepo)
	dispatcher := persist.NewDispatcher(syncer)

	// Setup engine
	eng := engine.New(syncer, dispatcher, bus)

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(pushSubRepo, vapidEnv)
	pushDispatcher := pushnotification.NewDispatcher(pushSender, bus)

	apiHandler := api.NewHandler(eng, bus, pushSubRepo, vapidEnv.VAPIDPublicKey)
	srv := server.NewServer(env, apiHandler)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	eng.Load(ctx)

	dispatcher.Start(ctx)
	go eng.RunClock(ctx, env.EngineEnv.TickInterval)
	if env.EngineEnv.RefreshInterval > 0 {
		go eng.RunRefresh(ctx, env.EngineEnv.RefreshInterval)
	}
	go pushDispatcher.Run(ctx)

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after stream contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	dispatcher.Wait()
}
