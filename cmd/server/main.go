package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/stormgraph/internal/bootstrap"
	"github.com/OFFIS-RIT/stormgraph/internal/queue"
	"github.com/OFFIS-RIT/stormgraph/internal/server"
	mid "github.com/OFFIS-RIT/stormgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/stormgraph/internal/storage"
	"github.com/OFFIS-RIT/stormgraph/internal/util"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
)

func main() {
	util.LoadEnv()
	cfg := util.LoadConfig()
	bootstrap.InitLogger(cfg, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graphStore := bootstrap.NewGraphStore(ctx, cfg)
	defer graphStore.Close(context.Background())

	backends, err := bootstrap.NewBackends(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialise job store", "err", err)
	}
	defer backends.Close()

	graphClient := bootstrap.NewGraphClient(cfg)
	tracker := jobs.NewTracker(backends.Jobs)

	app := &mid.App{
		Store:        graphStore,
		Tracker:      tracker,
		Graph:        graphClient,
		MasterAPIKey: cfg.MasterAPIKey,
	}

	switch cfg.Dispatcher {
	case "rabbitmq":
		conn, err := queue.Dial(queue.ConnParams{
			User:     cfg.RabbitMQUser,
			Password: cfg.RabbitMQPassword,
			Host:     cfg.RabbitMQHost,
			Port:     cfg.RabbitMQPort,
		})
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "err", err)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, []string{queue.ExtractQueue}); err != nil {
			logger.Fatal("Failed to declare queues", "err", err)
		}
		app.Dispatcher = queue.NewAMQP(ch)
	default:
		// Runs outlive their request and stop only on shutdown.
		dispatcher := queue.NewInProcess(ctx, &queue.Runner{
			Graph:   graphClient,
			Tracker: tracker,
			Store:   graphStore,
			Locker:  backends.Locker,
		})
		defer dispatcher.Wait()
		app.Dispatcher = dispatcher
	}

	if cfg.AWSBucket != "" {
		docs, err := storage.NewDocumentStore(ctx, storage.NewDocumentStoreParams{
			Bucket:    cfg.AWSBucket,
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.AWSEndpoint,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			logger.Warn("Document archive disabled", "err", err)
		} else {
			app.Documents = docs
		}
	}

	if cfg.AuthURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.AuthURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = k
	}

	e := server.New(app, server.Options{
		CORSOrigins: cfg.CORSOrigin,
		BodyLimit:   cfg.MaxUploadSize,
		RequireAuth: cfg.AuthURL != "" || cfg.MasterAPIKey != "",
	})
	server.Start(ctx, e, cfg.Port)
}
