package crawler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/monitoring"
)

// newTestSite serves mux as the marketplace and returns a Site with fast,
// two-attempt fetching.
func newTestSite(t *testing.T, mux *http.ServeMux) (Site, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	siteCfg := config.SiteConfig{BaseURL: srv.URL, Domain: "example.com"}
	endpoints := client.NewEndpoints(siteCfg, config.EndpointsConfig{
		CategorySitemap: srv.URL + "/sitemap",
		CategoryView:    srv.URL + "/categories",
		CategoryList:    srv.URL + "/list?page={page}&cate={category}",
		ProductsAPI:     srv.URL + "/api/products?companyId={company}&start={start}&end={end}",
	})

	metrics := monitoring.NewMetrics()
	fetcher := client.NewFetcher(config.FetchConfig{
		MaxAttempts: 2,
		Timeout:     2 * time.Second,
	}, nil, metrics)

	return Site{
		Fetcher:   fetcher,
		Parser:    client.NewPageParser(endpoints),
		Endpoints: endpoints,
		Metrics:   metrics,
	}, srv
}

func writeHTML(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}
}
