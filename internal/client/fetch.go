package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/domain"
	"tradefeed/crawler/internal/monitoring"
	"tradefeed/crawler/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// Fetcher performs a GET with bounded retries. Every network access of the crawler goes through it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type fetcher struct {
	rl          ratelimit.Limiter
	clients     []*resty.Client // one per proxy, never mutated after construction
	metrics     *monitoring.Metrics
	maxAttempts int
	timeout     time.Duration
	errorDelay  time.Duration
	statusDelay time.Duration

	proxyMutex sync.Mutex
	current    int
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewFetcher(cfg config.FetchConfig, proxies proxy.Supplier, metrics *monitoring.Metrics) Fetcher {
	var clients []*resty.Client
	if proxies != nil {
		for range proxies.Len() {
			if proxyURL := proxies.Get(); proxyURL != "" {
				clients = append(clients, newHTTPClient(cfg).SetProxy(proxyURL))
			}
		}
		if len(clients) > 0 {
			log.Infof("🔗 Fetching through %d proxies", len(clients))
		}
	}
	if len(clients) == 0 {
		clients = []*resty.Client{newHTTPClient(cfg)}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &fetcher{
		rl:          rl,
		clients:     clients,
		metrics:     metrics,
		maxAttempts: max(cfg.MaxAttempts, 1),
		timeout:     cfg.Timeout,
		errorDelay:  cfg.ErrorDelay,
		statusDelay: cfg.StatusDelay,
		sleep:       sleepContext,
	}
}

func newHTTPClient(cfg config.FetchConfig) *resty.Client {
	return resty.New().
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")
}

// Fetch returns the body of a 200 response. Connection errors and timeouts wait
// errorDelay before the next attempt, any other status waits statusDelay. After
// the last failed attempt the error wraps domain.ErrFetchExhausted.
func (f *fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		log.Debugf("🌐 Fetch %s (attempt %d/%d)", url, attempt, f.maxAttempts)

		body, delay, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}

		if attempt == f.maxAttempts {
			break
		}

		f.rotateProxy()

		if err := f.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("request cancelled: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts", domain.ErrFetchExhausted, url, f.maxAttempts)
}

// attempt issues one GET and returns the delay to apply if it failed.
func (f *fetcher) attempt(ctx context.Context, url string) ([]byte, time.Duration, error) {
	f.rl.Take()

	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if f.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
	}
	defer cancel()

	resp, err := f.client().R().
		SetContext(reqCtx).
		Get(url)

	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			f.metrics.IncFetchAttempt("timeout")
			log.Errorf("⏱️ Request %s timed out", url)
			return nil, f.errorDelay, err
		}
		f.metrics.IncFetchAttempt("error")
		log.Errorf("❌ Request %s failed: %v", url, err)
		return nil, f.errorDelay, err
	}

	if resp.StatusCode() != http.StatusOK {
		f.metrics.IncFetchAttempt("status")
		log.Warnf("⚠️ Got %s on %s", resp.Status(), url)
		return nil, f.statusDelay, fmt.Errorf("HTTP error: %d", resp.StatusCode())
	}

	f.metrics.IncFetchAttempt("ok")
	return resp.Bytes(), 0, nil
}

func (f *fetcher) client() *resty.Client {
	f.proxyMutex.Lock()
	defer f.proxyMutex.Unlock()
	return f.clients[f.current]
}

// rotateProxy moves every later attempt to the next proxy's client.
func (f *fetcher) rotateProxy() {
	if len(f.clients) < 2 {
		return
	}

	f.proxyMutex.Lock()
	defer f.proxyMutex.Unlock()

	f.current = (f.current + 1) % len(f.clients)
	log.Debugf("🔄 Switching to proxy %d/%d", f.current+1, len(f.clients))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pause blocks for d or until ctx is cancelled. Used for politeness delays.
func Pause(ctx context.Context, d time.Duration) error {
	return sleepContext(ctx, d)
}
