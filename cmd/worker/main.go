// LeaseLens maintenance worker: periodically removes expired clause
// documents from the search index. The query-time expiry filter keeps them
// invisible; this process reclaims the storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leaselens/leaselens/internal/config"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/search/opensearch"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	interval := flag.Duration("interval", time.Hour, "purge interval")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: using default configuration: %v\n", err)
		cfg = config.NewDefaultConfig()
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")
	logger.Info("starting maintenance worker", logging.Duration("interval", *interval))

	osClient, err := opensearch.NewClient(cfg.OpenSearch, logger)
	if err != nil {
		logger.Fatal("opensearch connection failed", logging.Err(err))
	}
	clauseIndex, err := opensearch.NewClauseIndex(context.Background(), osClient, cfg.AI.EmbeddingDim)
	if err != nil {
		logger.Fatal("clause index setup failed", logging.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	purge(ctx, clauseIndex, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("maintenance worker stopped")
			return
		case <-ticker.C:
			purge(ctx, clauseIndex, logger)
		}
	}
}

func purge(ctx context.Context, index *opensearch.ClauseIndex, logger logging.Logger) {
	purgeCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	deleted, err := index.PurgeExpired(purgeCtx)
	if err != nil {
		logger.Error("purge failed", logging.Err(err))
		return
	}
	logger.Info("expired clauses purged", logging.Int64("deleted", deleted))
}
