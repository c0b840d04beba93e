package crawler

import (
	"tradefeed/crawler/internal/client"
	"tradefeed/crawler/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// Site bundles what every resolver needs to talk to the marketplace.
// It is safe to share between workers.
type Site struct {
	Fetcher   client.Fetcher
	Parser    *client.PageParser
	Endpoints *client.Endpoints
	Metrics   *monitoring.Metrics
}

func workerLogger(component string, worker int) *log.Entry {
	return log.WithFields(log.Fields{
		"component": component,
		"worker":    worker,
	})
}
