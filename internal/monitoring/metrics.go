package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the crawler.
type Metrics struct {
	registry *prometheus.Registry

	FetchAttempts     *prometheus.CounterVec
	ProductsHarvested prometheus.Counter
	FeedRows          *prometheus.CounterVec
	ItemErrors        *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_fetch_attempts_total",
			Help: "Fetch attempts by outcome",
		}, []string{"outcome"}), // ok, error, timeout, status
		ProductsHarvested: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_products_harvested_total",
			Help: "Products decoded from the products API",
		}),
		FeedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_feed_rows_total",
			Help: "Rows written per feed sink",
		}, []string{"sink"}),
		ItemErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_item_errors_total",
			Help: "Per-item failures that were logged and skipped",
		}, []string{"stage"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crawler_aggregator_queue_depth",
			Help: "Entries waiting in the aggregator queue",
		}),
	}
}

func (m *Metrics) IncFetchAttempt(outcome string) {
	m.FetchAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddProducts(n int) {
	m.ProductsHarvested.Add(float64(n))
}

func (m *Metrics) IncFeedRow(sink string) {
	m.FeedRows.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncItemError(stage string) {
	m.ItemErrors.WithLabelValues(stage).Inc()
}

// Handler exposes the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
