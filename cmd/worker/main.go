package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/stormgraph/internal/bootstrap"
	"github.com/OFFIS-RIT/stormgraph/internal/queue"
	"github.com/OFFIS-RIT/stormgraph/internal/util"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
)

func main() {
	util.LoadEnv()
	cfg := util.LoadConfig()
	bootstrap.InitLogger(cfg, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graphStore := bootstrap.NewGraphStore(ctx, cfg)
	defer graphStore.Close(context.Background())

	backends, err := bootstrap.NewBackends(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialise job store", "err", err)
	}
	defer backends.Close()
	if cfg.JobStore == "memory" {
		logger.Warn("JOB_STORE=memory is not shared with the API process, job status will not be visible")
	}

	runner := &queue.Runner{
		Graph:   bootstrap.NewGraphClient(cfg),
		Tracker: jobs.NewTracker(backends.Jobs),
		Store:   graphStore,
		Locker:  backends.Locker,
	}

	// Init rabbitmq
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

	// A single consumer channel with prefetch=1 delivers one job at a time.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()
	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.ExtractQueue,
		queue.ExtractQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ExtractQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.ExtractQueue)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.ExtractQueue)
				return
			}
			start := time.Now()
			queue.HandleDelivery(ctx, runner, ch, msg)
			logger.Info("Processing time", "duration", time.Since(start).Round(time.Second).String())
			logger.Info("Waiting for next message")
		}
	}
}
