package client

import (
	"strconv"
	"strings"

	"tradefeed/crawler/internal/config"
)

// Endpoints expands the configured URL templates of the marketplace.
type Endpoints struct {
	baseURL         string
	categorySitemap string
	categoryView    string
	categoryList    string
	productsAPI     string
}

func NewEndpoints(site config.SiteConfig, cfg config.EndpointsConfig) *Endpoints {
	return &Endpoints{
		baseURL:         strings.TrimRight(site.BaseURL, "/"),
		categorySitemap: cfg.CategorySitemap,
		categoryView:    cfg.CategoryView,
		categoryList:    cfg.CategoryList,
		productsAPI:     cfg.ProductsAPI,
	}
}

func (e *Endpoints) CategorySitemap() string {
	return e.categorySitemap
}

func (e *Endpoints) CategoryView() string {
	return e.categoryView
}

func (e *Endpoints) CategoryList(categoryID string, page int) string {
	return strings.NewReplacer(
		"{page}", strconv.Itoa(page),
		"{category}", categoryID,
	).Replace(e.categoryList)
}

// Products returns the products API URL for rows start..end (1-based, inclusive).
func (e *Endpoints) Products(companyID string, start, end int) string {
	return strings.NewReplacer(
		"{company}", companyID,
		"{start}", strconv.Itoa(start),
		"{end}", strconv.Itoa(end),
	).Replace(e.productsAPI)
}

// Absolute resolves a site-relative href against the base URL.
func (e *Endpoints) Absolute(href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return e.baseURL + href
	default:
		return e.baseURL + "/" + href
	}
}
