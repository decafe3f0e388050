package main

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRootCommand(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "migrate", "process", "promote", "delete", "subject"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (%v)", name, err)
		}
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "absent.yaml")
	t.Cleanup(func() { configPath = "config.yaml" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr == "" || cfg.Storage.StagingDir != "uploads/staging" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestBuildAppWithoutExternalServices(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "absent.yaml")
	t.Cleanup(func() { configPath = "config.yaml" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Storage.PublicRoot = t.TempDir()
	cfg.Database.URL = ""
	cfg.Kafka.Brokers = nil

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := buildApp(ctx, cfg)
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()
	if a.svc == nil || a.metrics == nil {
		t.Fatal("app not wired")
	}
}
