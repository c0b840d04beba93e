// Package store persists stage artifacts so the next stage can pick them up.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"tradefeed/crawler/internal/domain"
)

const (
	KeyCategoryMap  = "category_map"
	KeyCompanyLinks = "company_links"
	KeyCompanies    = "companies"
)

// Store is a key/value backend for artifacts. Load returns an error wrapping
// domain.ErrMissingPrerequisite when the key has never been saved.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// Artifacts reads and writes the typed stage outputs.
type Artifacts struct {
	store Store
}

func NewArtifacts(store Store) *Artifacts {
	return &Artifacts{
		store: store,
	}
}

func (a *Artifacts) SaveCategoryMap(ctx context.Context, categories domain.CategoryMap) error {
	return a.save(ctx, KeyCategoryMap, categories)
}

func (a *Artifacts) LoadCategoryMap(ctx context.Context) (domain.CategoryMap, error) {
	var categories domain.CategoryMap
	if err := a.load(ctx, KeyCategoryMap, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveCompanyLinks stores the link set as a sorted list.
func (a *Artifacts) SaveCompanyLinks(ctx context.Context, links map[string]struct{}) error {
	return a.save(ctx, KeyCompanyLinks, slices.Sorted(maps.Keys(links)))
}

func (a *Artifacts) LoadCompanyLinks(ctx context.Context) ([]string, error) {
	var links []string
	if err := a.load(ctx, KeyCompanyLinks, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (a *Artifacts) SaveCompanies(ctx context.Context, companies []domain.Company) error {
	return a.save(ctx, KeyCompanies, companies)
}

func (a *Artifacts) LoadCompanies(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	if err := a.load(ctx, KeyCompanies, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (a *Artifacts) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := a.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (a *Artifacts) load(ctx context.Context, key string, v any) error {
	data, err := a.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
