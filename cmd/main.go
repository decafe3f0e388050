package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"imageingest/internal/logger"
	"imageingest/internal/models"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "imageingest: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "imageingest",
		Short:        "Image ingestion and derivative service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newProcessCmd(),
		newPromoteCmd(),
		newDeleteCmd(),
		newSubjectCmd(),
	)
	return cmd
}

// loadConfig reads the config file, falling back to defaults plus
// environment overrides when the file does not exist.
func loadConfig() (*models.Config, error) {
	cfg, err := models.LoadConfig(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg, err = models.ParseConfig(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return cfg, nil
}
