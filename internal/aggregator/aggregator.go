// Package aggregator fans harvested products from concurrent workers into a
// single consumer that feeds every sink.
package aggregator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/domain"
	"tradefeed/crawler/internal/feed"
	"tradefeed/crawler/internal/monitoring"
	"tradefeed/crawler/internal/queue"
	"tradefeed/crawler/internal/shard"

	log "github.com/sirupsen/logrus"
)

type State int32

const (
	Running State = iota
	Draining
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Harvester produces the products of one company.
type Harvester interface {
	HarvestCompany(ctx context.Context, company domain.Company) ([]domain.Product, error)
}

// Stats summarizes a finished run.
type Stats struct {
	Companies int
	Products  int
	Written   map[string]int
}

// entry is either a product or a worker's completion sentinel.
type entry struct {
	product  *domain.Product
	sentinel bool
}

type Aggregator struct {
	newHarvester func(worker int) Harvester
	sinks        []feed.Sink
	pause        time.Duration
	metrics      *monitoring.Metrics

	state     atomic.Int32
	sentinels atomic.Int32
}

// New builds an aggregator. newHarvester is called once per worker; pause
// follows every company a worker harvests.
func New(newHarvester func(worker int) Harvester, sinks []feed.Sink, pause time.Duration, metrics *monitoring.Metrics) *Aggregator {
	return &Aggregator{
		newHarvester: newHarvester,
		sinks:        sinks,
		pause:        pause,
		metrics:      metrics,
	}
}

func (a *Aggregator) State() State {
	return State(a.state.Load())
}

// Run harvests companies with the given number of workers and streams every
// product to the sinks that accept it. Sinks are closed before Run returns.
// A sink failure cancels the workers, discards every sink and is returned.
func (a *Aggregator) Run(ctx context.Context, companies []domain.Company, workers int) (Stats, error) {
	workers = max(workers, 1)
	a.state.Store(int32(Running))
	a.sentinels.Store(0)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := queue.New[entry]()
	var (
		wg        sync.WaitGroup
		harvested atomic.Int64
	)
	for i, chunk := range shard.Split(companies, workers) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			harvested.Add(int64(a.produce(ctx, i, chunk, q)))
		}()
	}

	stats, err := a.consume(ctx, q, workers)
	if err != nil {
		cancel()
		wg.Wait()
		feed.DiscardAll(context.WithoutCancel(ctx), a.sinks)
		a.state.Store(int32(Done))
		return stats, err
	}

	wg.Wait()
	stats.Companies = int(harvested.Load())

	a.state.Store(int32(Draining))
	log.Infof("🚰 All %d workers finished, flushing %d sinks", workers, len(a.sinks))
	closeErr := feed.CloseAll(ctx, a.sinks)
	a.state.Store(int32(Done))
	if closeErr != nil {
		return stats, fmt.Errorf("failed to flush sinks: %w", closeErr)
	}

	return stats, nil
}

// produce harvests one shard of companies and always ends with a sentinel.
// It returns the number of companies visited.
func (a *Aggregator) produce(ctx context.Context, worker int, companies []domain.Company, q *queue.Queue[entry]) int {
	defer q.Push(entry{sentinel: true})

	logger := log.WithFields(log.Fields{"component": "aggregator", "worker": worker})
	harvester := a.newHarvester(worker)

	visited := 0
	for _, company := range companies {
		if ctx.Err() != nil {
			logger.Warnf("⚠️ Worker stopping early: %v", ctx.Err())
			return visited
		}

		products, err := harvester.HarvestCompany(ctx, company)
		if err != nil {
			logger.Errorf("❌ Harvest company %s (%s) failed: %v", company.ID, company.Name, err)
			a.metrics.IncItemError("products")
		}
		for i := range products {
			q.Push(entry{product: &products[i]})
		}
		a.metrics.QueueDepth.Set(float64(q.Len()))
		visited++

		logger.Infof("📦 Company %s: %d products", company.ID, len(products))

		if err := client.Pause(ctx, a.pause); err != nil {
			return visited
		}
	}

	logger.Infof("✅ Worker finished %d companies", visited)
	return visited
}

func (a *Aggregator) consume(ctx context.Context, q *queue.Queue[entry], workers int) (Stats, error) {
	stats := Stats{Written: make(map[string]int, len(a.sinks))}

	for outstanding := workers; outstanding > 0; {
		e, err := q.Pop(ctx)
		if err != nil {
			return stats, fmt.Errorf("aggregator interrupted: %w", err)
		}
		a.metrics.QueueDepth.Set(float64(q.Len()))

		if e.sentinel {
			outstanding--
			a.sentinels.Add(1)
			log.Debugf("Worker done, %d outstanding", outstanding)
			continue
		}

		stats.Products++
		for _, sink := range a.sinks {
			if !sink.Accepts(e.product) {
				continue
			}
			if err := sink.Write(ctx, e.product); err != nil {
				return stats, fmt.Errorf("failed to write product %s to %s: %w", e.product.ID, sink.Name(), err)
			}
			stats.Written[sink.Name()]++
			a.metrics.IncFeedRow(sink.Name())
		}
	}

	return stats, nil
}
