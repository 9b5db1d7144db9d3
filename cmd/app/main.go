package main

import (
	"context"
	"flag"
	"log"
	"os"

	"FinDash/internal/di"
	"FinDash/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	seed := flag.Bool("seed", false, "replace the dashboard collections from seed.path on startup")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s provider=%s kafka=%t redis=%t clickhouse=%t",
		cfg.Environment, cfg.Provider.Type, cfg.Kafka.Enabled, cfg.Redis.Enabled, cfg.ClickHouse.Enabled)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if *seed {
		app.SeedOnStart(cfg.Seed.Path)
	}

	// Run application (blocks until signal)
	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
