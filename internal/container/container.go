package container

import (
	"context"
	"fmt"

	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/crawler"
	"tradefeed/crawler/internal/monitoring"
	"tradefeed/crawler/internal/proxy"
	"tradefeed/crawler/internal/repository"
	"tradefeed/crawler/internal/service"
	"tradefeed/crawler/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Metrics *monitoring.Metrics
	Store   store.Store
	Service *service.Service

	db *pgxpool.Pool
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: monitoring.NewMetrics(),
	}

	proxySupplier := proxy.NewSupplier(ctx, cfg.Fetch.Proxies, cfg.Site.BaseURL)
	if len(cfg.Fetch.Proxies) > 0 && proxySupplier.Len() == 0 {
		return nil, fmt.Errorf("none of the %d configured proxies is working", len(cfg.Fetch.Proxies))
	}

	artifactStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	container.Store = artifactStore

	var productRepo repository.ProductRepository
	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			_ = artifactStore.Close()
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			_ = artifactStore.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("✅ Connected to Postgres successfully")

		container.db = db
		productRepo = repository.NewProductRepository(db)
	}

	endpoints := client.NewEndpoints(cfg.Site, cfg.Endpoints)
	site := crawler.Site{
		Fetcher:   client.NewFetcher(cfg.Fetch, proxySupplier, container.Metrics),
		Parser:    client.NewPageParser(endpoints),
		Endpoints: endpoints,
		Metrics:   container.Metrics,
	}

	container.Service = service.NewService(
		site,
		client.NewProductDecoder(cfg.Site),
		store.NewArtifacts(artifactStore),
		productRepo,
		cfg.Crawl,
		cfg.Feeds.Dir,
	)

	return container, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Storage.Backend != "redis" {
		s, err := store.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		log.Infof("📁 Artifacts are kept in %s", cfg.Storage.DataDir)
		return s, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	return store.NewRedisStore(rdb, cfg.Redis.KeyPrefix), nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if err := c.Store.Close(); err != nil {
		return fmt.Errorf("failed to close artifact store: %w", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
