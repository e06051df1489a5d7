package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/kurihiro0119/github-org-repo-access/internal/api"
	"github.com/kurihiro0119/github-org-repo-access/internal/audit"
	"github.com/kurihiro0119/github-org-repo-access/internal/collector"
	"github.com/kurihiro0119/github-org-repo-access/internal/config"
	"github.com/kurihiro0119/github-org-repo-access/internal/logging"
	"github.com/kurihiro0119/github-org-repo-access/internal/progress"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, logging.Format(cfg.LogFormat))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize collector
	coll, err := collector.NewGitHubCollector(cfg.GitHubToken, cfg.GitHubAPIURL)
	if err != nil {
		logger.Fatal("Failed to initialize GitHub collector", zap.Error(err))
	}

	// Initialize handler
	handler := api.NewHandler(func(options audit.Options) api.Enumerator {
		return audit.NewEnumerator(coll, progress.NewLogging(logger), logger, options)
	}, logger)

	// Setup routes
	router := api.SetupRoutes(handler, logger)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info("Starting API server", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
