package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"costtracker/internal/amqp"
	"costtracker/internal/config"
	applog "costtracker/internal/log"
	"costtracker/internal/services"
)

func main() {
	logger := applog.ForComponent(applog.New(), applog.ComponentWorker)
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the event worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor := services.NewEventProcessor(logger)

	logger.Info("Starting expense event worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	if err := client.ConsumeExpenseEvents(ctx, processor.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped", "processed", processor.Stats())
}
