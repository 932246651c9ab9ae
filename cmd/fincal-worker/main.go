package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fincal/internal/amqp"
	"fincal/internal/backend"
	"fincal/internal/cli"
	applog "fincal/internal/log"
	"fincal/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting fincal-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if !bcfg.Type.IsLocal() {
		logger.Error("The sync worker mirrors a local store; DATA_BACKEND must be memory, file or sqlite", applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if !cfg.HasGoogleCredentials() {
		logger.Error("Google credentials are required to sync to the calendar")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	factory := backend.NewFactory(logger.Logger)
	local, err := factory.OpenLocal(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to open local store", applog.FieldError, err)
		os.Exit(1)
	}
	if local.Cleanup != nil {
		defer local.Cleanup()
	}
	remote, err := factory.OpenRemote(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize Google Calendar client", applog.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(local.Store, remote, bcfg.Codec(), worker.NewIDMap(local.Blob(worker.RemoteIDsKey)))

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled, running periodic reconcile only")
	}

	g, ctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeEventSync(ctx, syncWorker.HandleSyncMessage)
		})
	}

	g.Go(func() error {
		reconcile := func() {
			if _, err := syncWorker.Reconcile(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Periodic reconcile failed", applog.FieldOperation, applog.OpReconcile, applog.FieldError, err)
			}
		}
		// Catch up on messages missed while the worker was down.
		reconcile()

		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				reconcile()
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
