package crawler

import (
	"context"
	"fmt"

	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ProductHarvester pages through the products API of one company at a time.
type ProductHarvester struct {
	site       Site
	decoder    *client.ProductDecoder
	categories domain.CategoryMap
	batchSize  int
	maxBatches int
	logger     *log.Entry
}

// NewProductHarvester builds a harvester resolving product types against categories.
func NewProductHarvester(site Site, decoder *client.ProductDecoder, categories domain.CategoryMap, crawl config.CrawlConfig, worker int) *ProductHarvester {
	return &ProductHarvester{
		site:       site,
		decoder:    decoder,
		categories: categories,
		batchSize:  crawl.BatchSize,
		maxBatches: crawl.MaxBatches,
		logger:     workerLogger("products", worker),
	}
}

// Harvest collects up to maxBatches*batchSize products of a company. On a failed
// fetch or a malformed batch it returns what was collected so far together with
// the error.
func (h *ProductHarvester) Harvest(ctx context.Context, companyID string) ([]domain.Product, error) {
	h.logger.Infof("🔎 Parse products from company %s", companyID)

	var products []domain.Product
	for i := range h.maxBatches {
		url := h.site.Endpoints.Products(companyID, i*h.batchSize+1, (i+1)*h.batchSize)

		body, err := h.site.Fetcher.Fetch(ctx, url)
		if err != nil {
			return products, fmt.Errorf("failed to fetch products batch %d of company %s: %w", i+1, companyID, err)
		}

		batch, err := h.decoder.Decode(body)
		if err != nil {
			h.logger.Errorf("❌ Decode company %s products failed: %v", companyID, err)
			return products, fmt.Errorf("failed to decode products batch %d of company %s: %w", i+1, companyID, err)
		}

		products = append(products, batch...)
		h.site.Metrics.AddProducts(len(batch))

		if len(batch) < h.batchSize {
			break
		}
	}

	return products, nil
}

// HarvestCompany harvests a company and stamps its name as the brand and the
// resolved category path as the product type of every product.
func (h *ProductHarvester) HarvestCompany(ctx context.Context, company domain.Company) ([]domain.Product, error) {
	products, err := h.Harvest(ctx, company.ID)

	for i := range products {
		products[i].Brand = company.Name
		products[i].CompanyID = company.ID
		products[i].ProductType = h.categories.ResolvePath(products[i].CategoryID)
	}

	return products, err
}
