package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	validationTimeout     = 5 * time.Second
	validationParallelism = 50
)

// Supplier hands out proxies from a validated pool in round-robin order
type Supplier interface {
	Get() string
	Len() int
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier tests every proxy against testURL in parallel and keeps the working ones.
// An empty list yields a supplier that always returns "" (direct connection).
func NewSupplier(ctx context.Context, proxies []string, testURL string) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	log.Infof("🔄 Testing %d proxies in parallel...", len(proxies))

	working := make([]bool, len(proxies))
	g := new(errgroup.Group)
	g.SetLimit(validationParallelism)
	for i, proxyURL := range proxies {
		g.Go(func() error {
			working[i] = isProxyValid(ctx, proxyURL, testURL)
			if !working[i] {
				log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
			}
			return nil
		})
	}
	_ = g.Wait()

	// configured order is kept so rotation is predictable
	valid := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		if working[i] {
			valid = append(valid, proxyURL)
		}
	}

	log.Infof("✅ Proxy pool ready with %d working proxies out of %d tested", len(valid), len(proxies))

	return &supplier{proxies: valid}
}

// Get returns the next proxy URL, or "" when the pool is empty
func (p *supplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxyURL := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxyURL
}

func (p *supplier) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(validationTimeout).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)
	if err != nil {
		log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
