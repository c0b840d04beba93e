package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tradefeed/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Column maps a feed header to a product field name.
type Column struct {
	Header string
	Field  string
}

// Spec describes one delimited feed.
type Spec struct {
	Name      string
	File      string
	Delimiter rune
	Columns   []Column
	Accepts   Predicate
}

var (
	Facebook = Spec{
		Name:      "facebook",
		File:      "facebook.csv",
		Delimiter: ',',
		Columns: []Column{
			{"id", "id"},
			{"title", "title"},
			{"description", "title"},
			{"availability", "availability"},
			{"condition", "condition"},
			{"price", "price"},
			{"link", "link"},
			{"image_link", "image_link"},
			{"brand", "brand"},
			{"product_type", "product_type"},
			{"sale_price", "sale_price"},
		},
		Accepts: AllProducts,
	}

	GoogleAds = Spec{
		Name:      "googleads",
		File:      "googleads.csv",
		Delimiter: ',',
		Columns: []Column{
			{"ID", "id"},
			{"Item title", "title"},
			{"Final URL", "link"},
			{"Image URL", "image_link"},
			{"Item description", "title"},
			{"Item Category", "product_type"},
			{"Price", "price"},
			{"Sale Price", "sale_price"},
		},
		Accepts: AllProducts,
	}

	Merchant = Spec{
		Name:      "merchant",
		File:      "merchant.tsv",
		Delimiter: '\t',
		Columns: []Column{
			{"id", "id"},
			{"title", "title"},
			{"description", "title"},
			{"link", "link"},
			{"image_link", "image_link"},
			{"availability", "availability"},
			{"price", "price"},
			{"sale_price", "sale_price"},
			{"product_type", "product_type"},
			{"brand", "brand"},
			{"identifier_exists", "identifier_exists"},
			{"condition", "condition"},
			{"adult", "adult"},
		},
		Accepts: HasPrice,
	}
)

// Feeds are the advertising feeds produced by every run.
var Feeds = []Spec{Facebook, GoogleAds, Merchant}

type delimitedSink struct {
	spec   Spec
	out    io.WriteCloser
	writer *csv.Writer
	row    []string

	// set by OpenFiles: rows go to tmpPath until Close renames it to path
	tmpPath string
	path    string
}

// NewDelimitedSink writes the header row of spec to out and returns a sink
// that appends one row per accepted product.
func NewDelimitedSink(spec Spec, out io.WriteCloser) (Sink, error) {
	writer := csv.NewWriter(out)
	writer.Comma = spec.Delimiter

	header := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		header[i] = col.Header
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write %s header: %w", spec.Name, err)
	}

	return &delimitedSink{
		spec:   spec,
		out:    out,
		writer: writer,
		row:    make([]string, len(spec.Columns)),
	}, nil
}

func (s *delimitedSink) Name() string { return s.spec.Name }

func (s *delimitedSink) Accepts(p *domain.Product) bool {
	return s.spec.Accepts == nil || s.spec.Accepts(p)
}

func (s *delimitedSink) Write(_ context.Context, p *domain.Product) error {
	for i, col := range s.spec.Columns {
		s.row[i] = p.Field(col.Field)
	}
	if err := s.writer.Write(s.row); err != nil {
		return fmt.Errorf("failed to write %s row for product %s: %w", s.spec.Name, p.ID, err)
	}
	return nil
}

func (s *delimitedSink) Close(context.Context) error {
	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.out.Close()
	if flushErr != nil {
		s.removeTemp()
		return fmt.Errorf("failed to flush %s feed: %w", s.spec.Name, flushErr)
	}
	if closeErr != nil {
		s.removeTemp()
		return fmt.Errorf("failed to close %s feed: %w", s.spec.Name, closeErr)
	}

	if s.tmpPath == "" {
		return nil
	}
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		s.removeTemp()
		return fmt.Errorf("failed to publish %s feed: %w", s.spec.Name, err)
	}
	log.Debugf("📦 Published %s feed at %s", s.spec.Name, s.path)
	return nil
}

func (s *delimitedSink) Discard(context.Context) error {
	err := s.out.Close()
	s.removeTemp()
	if err != nil {
		return fmt.Errorf("failed to close %s feed: %w", s.spec.Name, err)
	}
	return nil
}

func (s *delimitedSink) removeTemp() {
	if s.tmpPath == "" {
		return
	}
	if err := os.Remove(s.tmpPath); err != nil && !os.IsNotExist(err) {
		log.Warnf("⚠️ Failed to remove %s: %v", s.tmpPath, err)
	}
}

// OpenFiles creates dir and one feed per spec inside it. Rows are written to a
// temporary file next to the feed, and the feed itself is only replaced when
// the sink is closed successfully. On failure every already opened sink is
// discarded.
func OpenFiles(ctx context.Context, dir string, specs []Spec) ([]Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create feeds dir: %w", err)
	}

	sinks := make([]Sink, 0, len(specs))
	for _, spec := range specs {
		path := filepath.Join(dir, spec.File)
		f, err := os.CreateTemp(dir, "."+spec.File+".*.tmp")
		if err == nil {
			var sink Sink
			if sink, err = NewDelimitedSink(spec, f); err == nil {
				ds := sink.(*delimitedSink)
				ds.tmpPath, ds.path = f.Name(), path
				sinks = append(sinks, sink)
				log.Debugf("📝 Opened %s feed at %s", spec.Name, f.Name())
				continue
			}
			_ = f.Close()
			_ = os.Remove(f.Name())
		}

		DiscardAll(ctx, sinks)
		return nil, fmt.Errorf("failed to open %s feed: %w", spec.Name, err)
	}

	return sinks, nil
}

// CloseAll closes every sink and returns the first error.
func CloseAll(ctx context.Context, sinks []Sink) error {
	var first error
	for _, sink := range sinks {
		if err := sink.Close(ctx); err != nil {
			log.Errorf("❌ Failed to close %s sink: %v", sink.Name(), err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// DiscardAll discards every sink, logging failures.
func DiscardAll(ctx context.Context, sinks []Sink) {
	for _, sink := range sinks {
		if err := sink.Discard(ctx); err != nil {
			log.Errorf("❌ Failed to discard %s sink: %v", sink.Name(), err)
		}
	}
}
