package crawler

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"tradefeed/crawler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverCategoryIDs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap", writeHTML(`<a href="/31-cateSupplier.html">x</a><a href="/7-cateSupplier.html">y</a>`))

	site, _ := newTestSite(t, mux)
	ids, err := NewLinkDiscoverer(site, 10, 0).DiscoverCategoryIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"31", "7"}, ids)
}

func TestDiscoverCompanyLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			writeHTML(`<a class="company_name" href="/shop/acme-1.html">A</a><a class="company_name" href="/shop/beta-2.html">B</a>`)(w, r)
		case "2":
			w.WriteHeader(http.StatusBadGateway) // unreachable page is skipped
		case "3":
			writeHTML(`<a class="company_name" href="/shop/beta-2.html">B</a><a class="company_name" href="/shop/gamma-3.html">G</a>`)(w, r)
		default:
			writeHTML(`<p>no more companies</p>`)(w, r)
		}
	})

	site, srv := newTestSite(t, mux)
	links, err := NewLinkDiscoverer(site, 100, 0).DiscoverCompanyLinks(context.Background(), "12")

	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		srv.URL + "/shop/acme-1.html":  {},
		srv.URL + "/shop/beta-2.html":  {},
		srv.URL + "/shop/gamma-3.html": {},
	}, links)
}

func TestDiscoverCompanyLinksPageCeiling(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	site, _ := newTestSite(t, mux)
	links, err := NewLinkDiscoverer(site, 5, 0).DiscoverCompanyLinks(context.Background(), "12")

	require.NoError(t, err)
	assert.Empty(t, links)
	// 5 pages, 2 attempts each
	assert.Equal(t, int32(10), hits.Load())
}

func TestFetchPageOutcomes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cate") {
		case "found":
			writeHTML(`<a class="company_name" href="/c/1">C</a>`)(w, r)
		case "empty":
			writeHTML(`<p></p>`)(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	site, _ := newTestSite(t, mux)
	d := NewLinkDiscoverer(site, 5, 0)

	for cate, want := range map[string]domain.Outcome{
		"found":     domain.OutcomeFound,
		"empty":     domain.OutcomeEmpty,
		"exhausted": domain.OutcomeExhausted,
	} {
		t.Run(cate, func(t *testing.T) {
			page, err := d.FetchPage(context.Background(), cate, 1)
			require.NoError(t, err)
			assert.Equal(t, want, page.Outcome)
		})
	}
}

func TestDiscoverAllUnionsCategories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeHTML(`<p></p>`)(w, r)
			return
		}
		cate := r.URL.Query().Get("cate")
		writeHTML(fmt.Sprintf(`<a class="company_name" href="/shared-9.html">S</a><a class="company_name" href="/only-%s.html">O</a>`, cate))(w, r)
	})

	site, srv := newTestSite(t, mux)
	links, err := NewLinkDiscoverer(site, 10, 0).DiscoverAll(context.Background(), []string{"1", "2"})

	require.NoError(t, err)
	assert.Len(t, links, 3)
	assert.Contains(t, links, srv.URL+"/shared-9.html")
	assert.Contains(t, links, srv.URL+"/only-1.html")
	assert.Contains(t, links, srv.URL+"/only-2.html")
}
