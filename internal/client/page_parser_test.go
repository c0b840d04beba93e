package client

import (
	"testing"

	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoints() *Endpoints {
	return NewEndpoints(
		config.SiteConfig{BaseURL: "https://www.example.com/", Domain: "example.com"},
		config.EndpointsConfig{
			CategorySitemap: "https://www.example.com/sitemap.html",
			CategoryView:    "https://www.example.com/view.html",
			CategoryList:    "https://www.example.com/list?page={page}&cate={category}",
			ProductsAPI:     "https://api.example.com/products?companyId={company}&start={start}&end={end}",
		},
	)
}

func TestEndpoints(t *testing.T) {
	e := testEndpoints()

	assert.Equal(t, "https://www.example.com/list?page=3&cate=120", e.CategoryList("120", 3))
	assert.Equal(t, "https://api.example.com/products?companyId=77&start=501&end=1000", e.Products("77", 501, 1000))
	assert.Equal(t, "https://www.example.com/c/1", e.Absolute("/c/1"))
	assert.Equal(t, "https://www.example.com/c/1", e.Absolute("c/1"))
	assert.Equal(t, "https://cdn.example.com/x", e.Absolute("//cdn.example.com/x"))
	assert.Equal(t, "http://other.test/a", e.Absolute("http://other.test/a"))
}

func TestParseTopCategoriesDropsSiteChrome(t *testing.T) {
	html := `<html><body>
		<a class="link" href="/home">Home</a>
		<a class="link" href="/about">About</a>
		<a class="link" href="/category/machinery">Machinery</a>
		<a class="link" href="https://www.example.com/category/textiles">Textiles</a>
		<a class="other" href="/category/ignored">Ignored</a>
	</body></html>`

	links, err := NewPageParser(testEndpoints()).ParseTopCategories([]byte(html))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.example.com/category/machinery",
		"https://www.example.com/category/textiles",
	}, links)
}

func TestParseFirstProductLink(t *testing.T) {
	p := NewPageParser(testEndpoints())

	link, ok, err := p.ParseFirstProductLink([]byte(`<a class="column_list_txt" href="/p/1">A</a><a class="column_list_txt" href="/p/2">B</a>`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://www.example.com/p/1", link)

	_, ok, err = p.ParseFirstProductLink([]byte(`<html><body>No products</body></html>`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseBreadcrumb(t *testing.T) {
	html := `<ol>
		<li><a itemprop="item" href="/"><span itemprop="name">Home</span></a></li>
		<li><a itemprop="item" href="/list?cate_standard=10"><span itemprop="name">Machinery</span></a></li>
		<li><a itemprop="item" href="/list?cate_standard=1010">Pumps</a></li>
	</ol>`

	trail, err := NewPageParser(testEndpoints()).ParseBreadcrumb([]byte(html))

	require.NoError(t, err)
	assert.Equal(t, []domain.Breadcrumb{
		{Label: "Home", Link: "/"},
		{Label: "Machinery", Link: "/list?cate_standard=10"},
		{Label: "Pumps", Link: "/list?cate_standard=1010"},
	}, trail)
}

func TestParseCompanyLinks(t *testing.T) {
	html := `<div>
		<a class="company_name" href="/shop/acme-tools-123.html">Acme</a>
		<a class="company_name" href="https://www.example.com/profile/beta">Beta</a>
		<a class="product" href="/p/1">Product</a>
	</div>`

	links, err := NewPageParser(testEndpoints()).ParseCompanyLinks([]byte(html))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.example.com/shop/acme-tools-123.html",
		"https://www.example.com/profile/beta",
	}, links)
}

func TestParseCompanyMeta(t *testing.T) {
	p := NewPageParser(testEndpoints())

	id, name, err := p.ParseCompanyMeta([]byte(`<head><meta name="CompanyID" content="4411"><meta name="CompanyName" content="Beta Trading Co."></head>`))
	require.NoError(t, err)
	assert.Equal(t, "4411", id)
	assert.Equal(t, "Beta Trading Co.", name)

	id, _, err = p.ParseCompanyMeta([]byte(`<head><meta name="CompanyName" content="Nameless"></head>`))
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestParseCategoryIDs(t *testing.T) {
	body := []byte(`<a href="/12-cateSupplier.html">a</a><a href="/7-cateSupplier.html">b</a><a href="/12-cateSupplier.html">c</a>`)
	assert.Equal(t, []string{"12", "7"}, ParseCategoryIDs(body))
	assert.Empty(t, ParseCategoryIDs([]byte("nothing here")))
}

func TestCategoryIDFromLink(t *testing.T) {
	id, ok := CategoryIDFromLink("/list?cate_standard=1010")
	assert.True(t, ok)
	assert.Equal(t, "1010", id)

	_, ok = CategoryIDFromLink("/list?cate_standard=1010&page=2")
	assert.False(t, ok)

	_, ok = CategoryIDFromLink("/")
	assert.False(t, ok)
}
