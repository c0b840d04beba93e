package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/domain"
)

const (
	priceCurrency = " USD"
	defaultPrice  = "1 USD"
)

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

// imageField accepts a single URL or a list of URLs and keeps the first.
type imageField string

func (f *imageField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			*f = imageField(list[0])
		}
		return nil
	}

	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = imageField(s)
	return nil
}

type productRow struct {
	ProductID  flexString `json:"productId"`
	Title      flexString `json:"title"`
	URL        flexString `json:"cpUrl"`
	Image      imageField `json:"imgUrlList"`
	PriceMax   flexString `json:"priceMax"`
	PriceMin   flexString `json:"priceMin"`
	CategoryID flexString `json:"catalogStandardCid"`
}

type productBatch struct {
	Rows *[]productRow `json:"rows"`
}

// ProductDecoder turns products API payloads into domain products.
type ProductDecoder struct {
	linkHost *regexp.Regexp
	brand    string
}

func NewProductDecoder(site config.SiteConfig) *ProductDecoder {
	return &ProductDecoder{
		// seller subdomains are rewritten to the canonical www host
		linkHost: regexp.MustCompile(`[\w\-.]+(` + regexp.QuoteMeta(site.Domain) + `)`),
		brand:    site.Domain,
	}
}

// Decode parses one batch. Any malformed payload wraps domain.ErrDecodeFailure.
func (d *ProductDecoder) Decode(body []byte) ([]domain.Product, error) {
	var batch productBatch
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecodeFailure, err)
	}
	if batch.Rows == nil {
		return nil, fmt.Errorf("%w: no rows field", domain.ErrDecodeFailure)
	}

	products := make([]domain.Product, 0, len(*batch.Rows))
	for _, row := range *batch.Rows {
		products = append(products, d.convert(row))
	}
	return products, nil
}

func (d *ProductDecoder) convert(row productRow) domain.Product {
	hasPrice := hasAmount(string(row.PriceMax))

	price := defaultPrice
	if hasPrice {
		price = string(row.PriceMax) + priceCurrency
	}

	var salePrice string
	if hasAmount(string(row.PriceMin)) {
		salePrice = string(row.PriceMin) + priceCurrency
	}

	return domain.Product{
		ID:               string(row.ProductID),
		Title:            string(row.Title),
		Link:             d.linkHost.ReplaceAllString(string(row.URL), "www.$1"),
		ImageLink:        string(row.Image),
		Availability:     "in stock",
		Price:            price,
		SalePrice:        salePrice,
		ProductType:      string(row.CategoryID),
		Brand:            d.brand,
		IdentifierExists: "no",
		Condition:        "new",
		Adult:            "no",
		HasPrice:         hasPrice,
		CategoryID:       string(row.CategoryID),
	}
}

// hasAmount reports whether a price field is present and not zero.
func hasAmount(v string) bool {
	if v == "" {
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}
