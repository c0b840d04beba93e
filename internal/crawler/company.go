package crawler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"tradefeed/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// profile links shaped like ".../acme-tools-12345.html" carry the company id
var companyLinkRegex = regexp.MustCompile(`-(\d+)\.html$`)

// CompanyResolver turns company profile links into company records.
type CompanyResolver struct {
	site   Site
	logger *log.Entry
}

func NewCompanyResolver(site Site, worker int) *CompanyResolver {
	return &CompanyResolver{
		site:   site,
		logger: workerLogger("companies", worker),
	}
}

// CompanyFromLink derives the company from a numeric-suffixed profile link
// without any network call.
func CompanyFromLink(link string) (domain.Company, bool) {
	matches := companyLinkRegex.FindStringSubmatch(link)
	if len(matches) < 2 {
		return domain.Company{}, false
	}

	slug := companyLinkRegex.ReplaceAllString(link, "")
	slug = slug[strings.LastIndex(slug, "/")+1:]

	words := strings.Split(slug, "-")
	for i, word := range words {
		words[i] = capitalize(word)
	}

	return domain.Company{
		ID:   matches[1],
		Name: strings.Join(words, " "),
		Link: link,
	}, true
}

// Resolve returns the company behind link, reading the profile page when the
// link itself does not carry the id.
func (r *CompanyResolver) Resolve(ctx context.Context, link string) (domain.Company, error) {
	if company, ok := CompanyFromLink(link); ok {
		return company, nil
	}

	html, err := r.site.Fetcher.Fetch(ctx, link)
	if err != nil {
		return domain.Company{}, fmt.Errorf("failed to fetch company page: %w", err)
	}

	id, name, err := r.site.Parser.ParseCompanyMeta(html)
	if err != nil {
		return domain.Company{}, fmt.Errorf("failed to parse company page: %w", err)
	}
	if id == "" {
		return domain.Company{}, fmt.Errorf("%w: %s has no company id", domain.ErrUnresolvableCompany, link)
	}
	if name == "" {
		r.logger.Warnf("⚠️ Company %s (%s) has no name", id, link)
	}

	return domain.Company{ID: id, Name: name, Link: link}, nil
}

// ResolveAll resolves every link, dropping the ones that cannot be resolved.
func (r *CompanyResolver) ResolveAll(ctx context.Context, links []string) ([]domain.Company, error) {
	companies := make([]domain.Company, 0, len(links))

	for _, link := range links {
		company, err := r.Resolve(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, domain.ErrUnresolvableCompany) {
				r.logger.Errorf("❌ Company %s does not have a company id", link)
			} else {
				r.logger.Errorf("❌ Failed to resolve company %s: %v", link, err)
			}
			r.site.Metrics.IncItemError("companies")
			continue
		}

		companies = append(companies, company)
	}

	r.logger.Infof("✅ Resolved %d of %d companies", len(companies), len(links))
	return companies, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}
