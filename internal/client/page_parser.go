package client

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"tradefeed/crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const siteChromeLinks = 2 // leading a.link anchors that are navigation, not categories

var (
	categoryIDRegex        = regexp.MustCompile(`cate_standard=(\d+)$`)
	sitemapCategoryIDRegex = regexp.MustCompile(`(\d+)-cateSupplier`)
)

// PageParser extracts links and markers from marketplace HTML pages.
type PageParser struct {
	endpoints *Endpoints
}

func NewPageParser(endpoints *Endpoints) *PageParser {
	return &PageParser{
		endpoints: endpoints,
	}
}

func (p *PageParser) document(html []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseTopCategories returns the absolute URLs of the landing page category anchors.
func (p *PageParser) ParseTopCategories(html []byte) ([]string, error) {
	doc, err := p.document(html)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a.link").Each(func(i int, a *goquery.Selection) {
		if i < siteChromeLinks {
			return
		}
		href, exists := a.Attr("href")
		if !exists || href == "" {
			return
		}
		links = append(links, p.endpoints.Absolute(href))
	})

	log.Debugf("Extracted %d top categories", len(links))
	return links, nil
}

// ParseFirstProductLink returns the first product listed on a category page.
// ok is false when the category lists no products.
func (p *PageParser) ParseFirstProductLink(html []byte) (link string, ok bool, err error) {
	doc, err := p.document(html)
	if err != nil {
		return "", false, err
	}

	href, exists := doc.Find("a.column_list_txt").First().Attr("href")
	if !exists || href == "" {
		return "", false, nil
	}
	return p.endpoints.Absolute(href), true, nil
}

// ParseBreadcrumb returns the root-to-leaf category trail of a product page.
func (p *PageParser) ParseBreadcrumb(html []byte) ([]domain.Breadcrumb, error) {
	doc, err := p.document(html)
	if err != nil {
		return nil, err
	}

	var trail []domain.Breadcrumb
	doc.Find(`a[itemprop="item"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")

		// the label sits in a nested <span itemprop="name">; fall back to the anchor text
		label := strings.TrimSpace(a.Children().First().Text())
		if label == "" {
			label = strings.TrimSpace(a.Text())
		}

		trail = append(trail, domain.Breadcrumb{Label: label, Link: href})
	})

	return trail, nil
}

// ParseCompanyLinks returns every company profile link on a listing page.
func (p *PageParser) ParseCompanyLinks(html []byte) ([]string, error) {
	doc, err := p.document(html)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a.company_name").Each(func(_ int, a *goquery.Selection) {
		if href, exists := a.Attr("href"); exists && href != "" {
			links = append(links, p.endpoints.Absolute(href))
		}
	})

	return links, nil
}

// ParseCompanyMeta reads the CompanyID and CompanyName meta tags of a company page.
func (p *PageParser) ParseCompanyMeta(html []byte) (id, name string, err error) {
	doc, err := p.document(html)
	if err != nil {
		return "", "", err
	}

	id, _ = doc.Find(`meta[name="CompanyID"]`).First().Attr("content")
	name, _ = doc.Find(`meta[name="CompanyName"]`).First().Attr("content")

	return strings.TrimSpace(id), strings.TrimSpace(name), nil
}

// ParseCategoryIDs extracts the numeric category ids listed in the category sitemap,
// de-duplicated in first-seen order.
func ParseCategoryIDs(body []byte) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, match := range sitemapCategoryIDRegex.FindAllSubmatch(body, -1) {
		id := string(match[1])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// CategoryIDFromLink extracts the numeric category id a breadcrumb link ends with.
func CategoryIDFromLink(link string) (string, bool) {
	matches := categoryIDRegex.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}
