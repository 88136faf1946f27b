// LeaseLens API server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leaselens/leaselens/internal/application/analysis"
	"github.com/leaselens/leaselens/internal/application/qa"
	"github.com/leaselens/leaselens/internal/application/search"
	"github.com/leaselens/leaselens/internal/application/semcache"
	"github.com/leaselens/leaselens/internal/config"
	"github.com/leaselens/leaselens/internal/domain/catalog"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/ai"
	"github.com/leaselens/leaselens/internal/infrastructure/database/redis"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/internal/infrastructure/search/milvus"
	"github.com/leaselens/leaselens/internal/infrastructure/search/opensearch"
	httpserver "github.com/leaselens/leaselens/internal/interfaces/http"
	"github.com/leaselens/leaselens/internal/interfaces/http/handlers"
)

const version = "0.1.0"

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
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
	logger.Info("starting leaselens api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	metrics := prometheus.NewCollector()
	ctx := context.Background()

	// Redis backs analyses, conversations, and the L2 cache tier.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis connection failed", logging.Err(err))
	}
	defer redisClient.Close()
	analyses := redis.NewAnalysisStore(redisClient)
	conversations := redis.NewConversationStore(redisClient)
	cacheStore := redis.NewCacheStore(redisClient)

	embedder := buildEmbedder(cfg.AI, logger)
	completer := buildCompleter(cfg.AI, logger)

	osClient, err := opensearch.NewClient(cfg.OpenSearch, logger)
	if err != nil {
		logger.Fatal("opensearch connection failed", logging.Err(err))
	}
	clauseIndex, err := opensearch.NewClauseIndex(ctx, osClient, embedder.Dimensions())
	if err != nil {
		logger.Fatal("clause index setup failed", logging.Err(err))
	}

	cat := catalog.MustDefault()
	exemplars := buildExemplarIndex(ctx, cfg.Milvus, embedder, cat, logger)

	cache := semcache.New(cacheStore, semcache.Options{
		L1Capacity:          cfg.Cache.L1Capacity,
		L1TTL:               cfg.Cache.L1TTL,
		L2TTL:               cfg.Cache.L2TTL,
		SimilarityThreshold: cfg.Cache.SimilarityThreshold,
		SimilaritySample:    cfg.Cache.SimilaritySample,
	}, logger, metrics)

	detector := analysis.NewDetector(cat, embedder, exemplars,
		cfg.Detection.SimilarityThreshold, cfg.Detection.TopK, logger, metrics)
	pipeline := analysis.NewPipeline(detector, embedder, analyses, clauseIndex,
		cfg.Detection.Confidence, cfg.Detection.AnalysisTTL, logger, metrics)

	engine := search.NewEngine(clauseIndex, embedder, cache, nil, search.Options{
		Expansion: search.ExpansionOptions{
			MaxSynonymsPerWord: cfg.Search.MaxSynonymsPerWord,
			MaxFuzzyPerWord:    cfg.Search.MaxFuzzyPerWord,
			MaxVariants:        cfg.Search.MaxVariants,
		},
		CandidatesPerQuery: cfg.Search.CandidatesPerQuery,
		MaxResults:         cfg.Search.MaxResults,
	}, logger, metrics)

	orchestrator := qa.NewOrchestrator(analyses, conversations, cache, completer, qa.Options{
		MaxTurns: cfg.Conversation.MaxTurns,
		TTL:      cfg.Conversation.TTL,
	}, logger, metrics)

	health := handlers.NewHealthHandler(version,
		handlers.NamedCheck{ComponentName: "redis", Fn: redisClient.Healthy},
		handlers.NamedCheck{ComponentName: "opensearch", Fn: osClient.Healthy},
	)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		LeaseHandler:  handlers.NewLeaseHandler(pipeline, analyses, cache, logger),
		SearchHandler: handlers.NewSearchHandler(engine, logger),
		QAHandler:     handlers.NewQAHandler(orchestrator, logger),
		HealthHandler: health,
		Logger:        logger,
		Metrics:       metrics,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	config.Watch(*configPath, func(_ *config.Config) {
		logger.Info("configuration file changed; restart to apply server settings")
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("http server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", logging.Err(err))
	}
	logger.Info("api server stopped")
}

// buildEmbedder selects the remote provider when an API key is configured,
// otherwise the deterministic stub.
func buildEmbedder(cfg config.AIConfig, logger logging.Logger) ai.Embedder {
	if cfg.APIKey == "" {
		logger.Warn("ai.api_key not set; using stub embedder")
		return ai.NewStubEmbedder(cfg.EmbeddingDim)
	}
	embedder, err := ai.NewEmbedder(cfg)
	if err != nil {
		logger.Fatal("embedder setup failed", logging.Err(err))
	}
	return embedder
}

func buildCompleter(cfg config.AIConfig, logger logging.Logger) ai.Completer {
	if cfg.APIKey == "" {
		logger.Warn("ai.api_key not set; using stub completer")
		return ai.NewStubCompleter()
	}
	completer, err := ai.NewCompleter(cfg)
	if err != nil {
		logger.Fatal("completer setup failed", logging.Err(err))
	}
	return completer
}

// buildExemplarIndex connects to Milvus and seeds one exemplar per catalog
// pattern. Milvus is optional: any failure disables the vector fallback and
// detection continues on regex alone.
func buildExemplarIndex(ctx context.Context, cfg config.MilvusConfig, embedder ai.Embedder, cat *catalog.Catalog, logger logging.Logger) lease.ExemplarIndex {
	if cfg.Addr == "" {
		logger.Warn("milvus.addr not set; vector fallback disabled")
		return nil
	}
	index, err := milvus.NewExemplarIndex(ctx, cfg, embedder.Dimensions(), logger)
	if err != nil {
		logger.Warn("milvus unavailable; vector fallback disabled", logging.Err(err))
		return nil
	}
	if err := seedExemplars(ctx, index, embedder, cat); err != nil {
		logger.Warn("exemplar seeding failed; vector fallback may be incomplete", logging.Err(err))
	}
	return index
}

// seedExemplars embeds each pattern's example clause and upserts it into the
// exemplar collection.
func seedExemplars(ctx context.Context, index lease.ExemplarIndex, embedder ai.Embedder, cat *catalog.Catalog) error {
	patterns := cat.Patterns()
	texts := make([]string, len(patterns))
	for i, p := range patterns {
		texts[i] = p.ExampleClause
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	exemplars := make([]lease.Exemplar, len(patterns))
	for i, p := range patterns {
		exemplars[i] = lease.Exemplar{
			PatternID:     p.ID,
			ViolationType: p.ViolationType,
			Severity:      p.Severity,
			Text:          p.ExampleClause,
			Embedding:     vectors[i],
		}
	}
	return index.IndexExemplars(ctx, exemplars)
}
