package feed

import (
	"context"
	"fmt"

	"tradefeed/crawler/internal/domain"
	"tradefeed/crawler/internal/repository"

	log "github.com/sirupsen/logrus"
)

const defaultRepositoryBatch = 500

type repositorySink struct {
	repo      repository.ProductRepository
	batchSize int
	pending   []domain.Product
	saved     int
}

// NewRepositorySink buffers products and upserts them in batches of batchSize.
func NewRepositorySink(repo repository.ProductRepository, batchSize int) Sink {
	if batchSize <= 0 {
		batchSize = defaultRepositoryBatch
	}
	return &repositorySink{
		repo:      repo,
		batchSize: batchSize,
		pending:   make([]domain.Product, 0, batchSize),
	}
}

func (s *repositorySink) Name() string { return "database" }

func (s *repositorySink) Accepts(*domain.Product) bool { return true }

func (s *repositorySink) Write(ctx context.Context, p *domain.Product) error {
	s.pending = append(s.pending, *p)
	if len(s.pending) < s.batchSize {
		return nil
	}
	return s.flush(ctx)
}

func (s *repositorySink) Close(ctx context.Context) error {
	if err := s.flush(ctx); err != nil {
		return err
	}
	log.Infof("💾 Saved %d products to the database", s.saved)
	return nil
}

// Discard drops the pending batch. Batches already upserted stay saved.
func (s *repositorySink) Discard(context.Context) error {
	log.Warnf("⚠️ Dropping %d unsaved products, %d already saved", len(s.pending), s.saved)
	s.pending = s.pending[:0]
	return nil
}

func (s *repositorySink) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	n, err := s.repo.SaveProducts(ctx, s.pending)
	s.saved += n
	s.pending = s.pending[:0]
	if err != nil {
		return fmt.Errorf("database sink: %w", err)
	}
	return nil
}
