package crawler

import (
	"context"
	"errors"
	"fmt"

	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// LinkDiscoverer pages through category listings collecting company profile links.
type LinkDiscoverer struct {
	site     Site
	maxPages int
	logger   *log.Entry
}

func NewLinkDiscoverer(site Site, maxPages int, worker int) *LinkDiscoverer {
	return &LinkDiscoverer{
		site:     site,
		maxPages: max(maxPages, 1),
		logger:   workerLogger("links", worker),
	}
}

// DiscoverCategoryIDs lists the category ids of the category sitemap.
func (d *LinkDiscoverer) DiscoverCategoryIDs(ctx context.Context) ([]string, error) {
	body, err := d.site.Fetcher.Fetch(ctx, d.site.Endpoints.CategorySitemap())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category sitemap: %w", err)
	}

	ids := client.ParseCategoryIDs(body)
	d.logger.Infof("📂 Collected %d category ids", len(ids))
	return ids, nil
}

// FetchPage loads one listing page. A page whose fetch ran out of attempts is
// reported as OutcomeExhausted rather than an error.
func (d *LinkDiscoverer) FetchPage(ctx context.Context, categoryID string, page int) (domain.LinkPage, error) {
	result := domain.LinkPage{CategoryID: categoryID, Page: page}

	html, err := d.site.Fetcher.Fetch(ctx, d.site.Endpoints.CategoryList(categoryID, page))
	if err != nil {
		if errors.Is(err, domain.ErrFetchExhausted) {
			result.Outcome = domain.OutcomeExhausted
			return result, nil
		}
		return result, err
	}

	links, err := d.site.Parser.ParseCompanyLinks(html)
	if err != nil {
		return result, fmt.Errorf("failed to parse listing page %d of category %s: %w", page, categoryID, err)
	}

	if len(links) == 0 {
		result.Outcome = domain.OutcomeEmpty
		return result, nil
	}

	result.Outcome = domain.OutcomeFound
	result.Links = links
	return result, nil
}

// DiscoverCompanyLinks walks the listing pages of a category until a page has no
// company links. Unreachable pages are skipped; at most maxPages pages are tried.
func (d *LinkDiscoverer) DiscoverCompanyLinks(ctx context.Context, categoryID string) (map[string]struct{}, error) {
	d.logger.Infof("🔎 Parse category %s", categoryID)

	links := make(map[string]struct{})
	for page := 1; page <= d.maxPages; page++ {
		result, err := d.FetchPage(ctx, categoryID, page)
		if err != nil {
			return nil, err
		}

		switch result.Outcome {
		case domain.OutcomeExhausted:
			d.logger.Warnf("⚠️ Skipping unreachable page %d of category %s", page, categoryID)
			d.site.Metrics.IncItemError("links")
			continue
		case domain.OutcomeEmpty:
			return links, nil
		}

		for _, link := range result.Links {
			links[link] = struct{}{}
		}
	}

	d.logger.Warnf("⚠️ Category %s reached the %d page limit", categoryID, d.maxPages)
	return links, nil
}

// DiscoverAll unions the company links of every category.
func (d *LinkDiscoverer) DiscoverAll(ctx context.Context, categoryIDs []string) (map[string]struct{}, error) {
	d.logger.Infof("🚀 Parse %d categories", len(categoryIDs))

	all := make(map[string]struct{})
	for _, categoryID := range categoryIDs {
		links, err := d.DiscoverCompanyLinks(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		d.logger.Infof("✅ Category %s: %d links", categoryID, len(links))

		for link := range links {
			all[link] = struct{}{}
		}
	}

	return all, nil
}
