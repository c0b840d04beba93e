package crawler

import (
	"context"
	"fmt"
	"time"

	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// CategoryResolver rebuilds the category tree from product breadcrumbs.
type CategoryResolver struct {
	site   Site
	pause  time.Duration
	logger *log.Entry
}

func NewCategoryResolver(site Site, pause time.Duration, worker int) *CategoryResolver {
	return &CategoryResolver{
		site:   site,
		pause:  pause,
		logger: workerLogger("category", worker),
	}
}

// DiscoverTopCategories returns the category branch URLs listed on the landing page.
func (r *CategoryResolver) DiscoverTopCategories(ctx context.Context) ([]string, error) {
	html, err := r.site.Fetcher.Fetch(ctx, r.site.Endpoints.CategoryView())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category landing page: %w", err)
	}

	links, err := r.site.Parser.ParseTopCategories(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category landing page: %w", err)
	}

	r.logger.Infof("📂 Found %d category branches", len(links))
	return links, nil
}

// ResolveBranch reads the breadcrumb of the first product listed under categoryURL.
func (r *CategoryResolver) ResolveBranch(ctx context.Context, categoryURL string) (domain.BranchResult, error) {
	r.logger.Infof("🔎 Parse category %s", categoryURL)

	html, err := r.site.Fetcher.Fetch(ctx, categoryURL)
	if err != nil {
		return branchFailure("failed to fetch category page", err)
	}

	productLink, ok, err := r.site.Parser.ParseFirstProductLink(html)
	if err != nil {
		return branchFailure("failed to parse category page", err)
	}
	if !ok {
		r.logger.Warnf("⚠️ Category %s does not have products", categoryURL)
		return domain.BranchResult{Outcome: domain.OutcomeEmpty}, nil
	}

	html, err = r.site.Fetcher.Fetch(ctx, productLink)
	if err != nil {
		return branchFailure("failed to fetch product page", err)
	}

	trail, err := r.site.Parser.ParseBreadcrumb(html)
	if err != nil {
		return branchFailure("failed to parse product page", err)
	}

	return domain.BranchResult{
		Outcome: domain.OutcomeFound,
		Nodes:   BranchNodes(trail),
	}, nil
}

// branchFailure marks a branch that could not be read. It never reports OutcomeFound.
func branchFailure(what string, err error) (domain.BranchResult, error) {
	return domain.BranchResult{Outcome: domain.OutcomeExhausted}, fmt.Errorf("%s: %w", what, err)
}

// ResolveBranches merges the nodes of every branch into a map seeded with the
// Home root. A failing branch is logged and skipped. Every branch is followed by
// the politeness pause.
func (r *CategoryResolver) ResolveBranches(ctx context.Context, categoryURLs []string) (domain.CategoryMap, error) {
	categories := domain.NewCategoryMap()

	for _, categoryURL := range categoryURLs {
		result, err := r.ResolveBranch(ctx, categoryURL)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			r.logger.Errorf("❌ Parse %s failed: %v", categoryURL, err)
			r.site.Metrics.IncItemError("category")
		case result.Outcome == domain.OutcomeFound:
			categories.Merge(result.Nodes)
		}

		if err := client.Pause(ctx, r.pause); err != nil {
			return nil, err
		}
	}

	return categories, nil
}

// BranchNodes turns a root-to-leaf breadcrumb trail into parent-linked nodes.
// Pairs whose child link carries no category id are skipped; a parent without
// an id links to the root.
func BranchNodes(trail []domain.Breadcrumb) domain.CategoryMap {
	nodes := make(domain.CategoryMap)

	for i := len(trail) - 1; i > 0; i-- {
		child, parent := trail[i], trail[i-1]

		childID, ok := client.CategoryIDFromLink(child.Link)
		if !ok {
			continue
		}

		parentID, ok := client.CategoryIDFromLink(parent.Link)
		if !ok {
			parentID = domain.RootCategoryID
		}

		nodes[childID] = domain.CategoryNode{Name: child.Label, Parent: parentID}
	}

	return nodes
}
