// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gift-finder-backend/internal/cache"
	"gift-finder-backend/internal/catalog"
	"gift-finder-backend/internal/common/config"
	"gift-finder-backend/internal/common/database"
	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/common/observability"
	"gift-finder-backend/internal/nlp"
	"gift-finder-backend/internal/recommend"
	"gift-finder-backend/internal/search"
	"gift-finder-backend/internal/server"
)

const version = "1.0.0"

var errToolkitDisabled = errors.New("linguistic toolkit disabled")

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fallback := logger.New("info", "json")
		fallback.Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
	})

	log.Info("starting gift finder backend", map[string]interface{}{
		"version":     version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Postgres is required; the catalog lives there.
	var pg *database.PostgresClient
	err = retryWithBackoff(log, "postgres", 5, func() error {
		client, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return err
		}
		pg = client
		return nil
	})
	if err != nil {
		log.WithError(err).Error("postgres unavailable, exiting", nil)
		os.Exit(1)
	}
	defer pg.Close()

	// Redis backs the result cache; the service runs without it.
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(log, "redis", 3, func() error {
			client, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				client.Close()
				return err
			}
			redisClient = client
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("redis unavailable, caching disabled", nil)
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Elasticsearch narrows candidates; the service runs without it.
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(log, "elasticsearch", 3, func() error {
			client, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := client.Ping(); err != nil {
				return err
			}
			esClient = client
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("elasticsearch unavailable, scoring full catalog", nil)
		}
	}

	kb, err := recommend.LoadKnowledgeBase(cfg.Recommend.KnowledgeBasePath)
	if err != nil {
		log.WithError(err).Error("failed to load knowledge base, exiting", nil)
		os.Exit(1)
	}

	store := catalog.NewStore(pg.GetDB(), log)
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureSchema(startupCtx); err != nil {
		startupCancel()
		log.WithError(err).Error("failed to ensure catalog schema, exiting", nil)
		os.Exit(1)
	}
	if err := store.SeedFromKnowledgeBase(startupCtx, kb); err != nil {
		log.WithError(err).Warn("catalog seeding failed", nil)
	}

	cacheSvc := cache.New(nil, cfg.Cache, log)
	if redisClient != nil {
		cacheSvc = cache.New(redisClient.GetClient(), cfg.Cache, log)
	}

	var index search.CandidateIndex
	if esClient != nil {
		giftIndex := catalog.NewIndex(esClient.Client, cfg.Database.Elasticsearch.GiftIndex, log)
		// Rebuild the index from the authoritative catalog and drop
		// search results cached against the previous index.
		if err := giftIndex.DeleteIndex(startupCtx); err != nil {
			log.WithError(err).Warn("gift index cleanup failed", nil)
		}
		if gifts, err := store.ListGifts(startupCtx); err == nil {
			if err := giftIndex.IndexGifts(startupCtx, gifts); err != nil {
				log.WithError(err).Warn("gift indexing failed", nil)
			}
		}
		cacheSvc.InvalidateSearch(startupCtx)
		index = giftIndex
	}
	startupCancel()

	var toolkit nlp.Toolkit
	if cfg.NLP.ToolkitEnabled {
		pt, err := nlp.NewProseToolkit()
		if err != nil {
			log.WithError(err).Warn("linguistic toolkit failed to load, extraction degraded", nil)
		} else {
			toolkit = pt
		}
	}
	extractor := nlp.NewExtractor(toolkit, nlp.NewVaderScorer(), log)

	ranker := recommend.NewRanker(recommend.NewScorer(recommend.DefaultWeights()), kb, log)

	svc := search.New(extractor, ranker, store, index, cacheSvc, obs, log).
		WithDefaultLimit(cfg.Recommend.DefaultLimit)

	checks := map[string]server.HealthCheck{
		"postgres": pg.Ping,
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	checks["nlp"] = func(ctx context.Context) error {
		if toolkit == nil {
			return errToolkitDisabled
		}
		_, err := toolkit.Analyze("health probe")
		return err
	}

	handler := server.NewHandler(svc, checks, log, cfg.App.Name, version)
	httpServer := server.NewHTTPServer(cfg.Server, server.NewRouter(cfg.Server, handler, log))

	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": cfg.Server.Addr()})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server failed", nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete", nil)
	}
	log.Info("shutdown complete", nil)
}

// loadConfig honors an explicit CONFIG_PATH before falling back to the
// usual search locations.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// retryWithBackoff retries fn with exponential backoff, doubling from
// one second.
func retryWithBackoff(log logger.Logger, name string, attempts int, fn func() error) error {
	var err error
	delay := time.Second
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts {
			log.Warn("dependency not ready, retrying", map[string]interface{}{
				"dependency": name,
				"attempt":    i,
				"delay":      delay.String(),
				"error":      err.Error(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
