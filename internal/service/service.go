package service

import (
	"context"
	"fmt"
	"time"

	"tradefeed/crawler/internal/aggregator"
	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/crawler"
	"tradefeed/crawler/internal/domain"
	"tradefeed/crawler/internal/feed"
	"tradefeed/crawler/internal/repository"
	"tradefeed/crawler/internal/shard"
	"tradefeed/crawler/internal/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service runs the pipeline stages. Each stage reads the artifact of the
// previous one and persists its own.
type Service struct {
	site       crawler.Site
	decoder    *client.ProductDecoder
	artifacts  *store.Artifacts
	repository repository.ProductRepository // nil when the database sink is disabled
	crawl      config.CrawlConfig
	feedsDir   string
}

func NewService(
	site crawler.Site,
	decoder *client.ProductDecoder,
	artifacts *store.Artifacts,
	repository repository.ProductRepository,
	crawl config.CrawlConfig,
	feedsDir string,
) *Service {
	return &Service{
		site:       site,
		decoder:    decoder,
		artifacts:  artifacts,
		repository: repository,
		crawl:      crawl,
		feedsDir:   feedsDir,
	}
}

func runLogger(stage string) *log.Entry {
	return log.WithFields(log.Fields{
		"stage":  stage,
		"run_id": uuid.NewString(),
	})
}

// DumpCategoryMap resolves the category tree from every top category and
// saves the merged map.
func (s *Service) DumpCategoryMap(ctx context.Context, concurrency int) error {
	logger := runLogger("category_map")
	start := time.Now()

	urls, err := crawler.NewCategoryResolver(s.site, s.crawl.CategoryPause, 0).DiscoverTopCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover top categories: %w", err)
	}
	logger.Infof("🚀 Resolve %d top categories with %d workers", len(urls), concurrency)

	results, err := shard.Run(ctx, urls, concurrency, func(worker int) shard.Op[string, domain.CategoryMap] {
		return crawler.NewCategoryResolver(s.site, s.crawl.CategoryPause, worker).ResolveBranches
	})
	if err != nil {
		return fmt.Errorf("failed to resolve categories: %w", err)
	}

	categories := shard.MergeMaps(results)
	if err := s.artifacts.SaveCategoryMap(ctx, categories); err != nil {
		return err
	}

	logger.Infof("✅ Saved %d categories in %s", len(categories), time.Since(start).Round(time.Millisecond))
	return nil
}

// DumpCompanyLinks collects the company links of every category in the sitemap.
func (s *Service) DumpCompanyLinks(ctx context.Context, concurrency int) error {
	logger := runLogger("company_links")
	start := time.Now()

	categoryIDs, err := crawler.NewLinkDiscoverer(s.site, s.crawl.MaxPages, 0).DiscoverCategoryIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover categories: %w", err)
	}
	logger.Infof("🚀 Collect company links of %d categories with %d workers", len(categoryIDs), concurrency)

	results, err := shard.Run(ctx, categoryIDs, concurrency, func(worker int) shard.Op[string, map[string]struct{}] {
		return crawler.NewLinkDiscoverer(s.site, s.crawl.MaxPages, worker).DiscoverAll
	})
	if err != nil {
		return fmt.Errorf("failed to collect company links: %w", err)
	}

	links := shard.Union(results)
	if err := s.artifacts.SaveCompanyLinks(ctx, links); err != nil {
		return err
	}

	logger.Infof("✅ Saved %d company links in %s", len(links), time.Since(start).Round(time.Millisecond))
	return nil
}

// DumpCompanies resolves the saved company links into companies.
func (s *Service) DumpCompanies(ctx context.Context, concurrency int) error {
	logger := runLogger("companies")
	start := time.Now()

	links, err := s.artifacts.LoadCompanyLinks(ctx)
	if err != nil {
		return err
	}
	logger.Infof("🚀 Resolve %d companies with %d workers", len(links), concurrency)

	results, err := shard.Run(ctx, links, concurrency, func(worker int) shard.Op[string, []domain.Company] {
		return crawler.NewCompanyResolver(s.site, worker).ResolveAll
	})
	if err != nil {
		return fmt.Errorf("failed to resolve companies: %w", err)
	}

	companies := shard.Concat(results)
	if err := s.artifacts.SaveCompanies(ctx, companies); err != nil {
		return err
	}

	logger.Infof("✅ Saved %d companies in %s", len(companies), time.Since(start).Round(time.Millisecond))
	return nil
}

// DumpFeeds harvests the products of every saved company and writes the feeds.
// Both the category map and the companies must exist before any feed is opened.
func (s *Service) DumpFeeds(ctx context.Context, concurrency int) error {
	logger := runLogger("feeds")
	start := time.Now()

	categories, err := s.artifacts.LoadCategoryMap(ctx)
	if err != nil {
		return err
	}
	companies, err := s.artifacts.LoadCompanies(ctx)
	if err != nil {
		return err
	}

	sinks, err := feed.OpenFiles(ctx, s.feedsDir, feed.Feeds)
	if err != nil {
		return err
	}
	if s.repository != nil {
		if err := s.repository.EnsureSchema(ctx); err != nil {
			feed.DiscardAll(ctx, sinks)
			return err
		}
		sinks = append(sinks, feed.NewRepositorySink(s.repository, s.crawl.BatchSize))
	}

	logger.Infof("🚀 Harvest %d companies with %d workers into %d sinks", len(companies), concurrency, len(sinks))

	agg := aggregator.New(func(worker int) aggregator.Harvester {
		return crawler.NewProductHarvester(s.site, s.decoder, categories, s.crawl, worker)
	}, sinks, s.crawl.CompanyPause, s.site.Metrics)

	stats, err := agg.Run(ctx, companies, concurrency)
	if err != nil {
		return fmt.Errorf("failed to dump feeds: %w", err)
	}

	for name, n := range stats.Written {
		logger.Infof("📝 %s: %d rows", name, n)
	}
	logger.Infof("✅ Harvested %d products from %d companies in %s",
		stats.Products, stats.Companies, time.Since(start).Round(time.Millisecond))
	return nil
}
