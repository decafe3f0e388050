package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"imageingest/internal/assets"
	"imageingest/internal/events"
	"imageingest/internal/ingest"
	"imageingest/internal/logger"
	"imageingest/internal/metrics"
	"imageingest/internal/models"
	"imageingest/internal/server"
	"imageingest/internal/storage"
)

// app holds the wired service and the resources that must be released.
type app struct {
	svc     *ingest.Service
	metrics *metrics.Prom
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires subjects, events and metrics around the ingest service.
func buildApp(ctx context.Context, cfg *models.Config) (*app, error) {
	a := &app{}

	layout, err := ingest.NewLayout(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := ingest.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var subjects assets.SubjectLookup = storage.Static(cfg.Subjects)
	if cfg.Database.URL != "" {
		db, err := storage.NewStorage(ctx, cfg.Database.URL, cfg.Database.MigrationsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to init storage: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		subjects = db
	}

	if len(cfg.Kafka.Brokers) > 0 {
		w := events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		a.closers = append(a.closers, func() { w.Close() })
		opts.Publisher = events.NewKafkaPublisher(w)
	}

	a.metrics = metrics.NewProm("imageingest", prometheus.NewRegistry())
	opts.Metrics = a.metrics

	a.svc = ingest.New(layout, subjects, opts)
	return a, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the moderation decision consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l := logger.L()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			// The consumer must be gone before a.Close releases the pool
			// and the event writer it drives.
			consumerCtx, stopConsumer := context.WithCancel(logger.WithLogger(ctx, l))
			consumerDone := make(chan struct{})
			defer func() {
				stopConsumer()
				<-consumerDone
			}()
			if len(cfg.Kafka.Brokers) > 0 {
				r := events.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.DecisionsTopic, cfg.Kafka.GroupID)
				consumer := events.NewDecisionConsumer(r, a.svc)
				go func() {
					defer close(consumerDone)
					if err := consumer.Run(consumerCtx); err != nil {
						l.Error().Err(err).Msg("decision consumer stopped")
					}
				}()
			} else {
				close(consumerDone)
			}

			srv := server.NewServer(cfg, a.svc, l, a.metrics.Handler())
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("database.url is not configured")
			}
			return storage.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath)
		},
	}
}
