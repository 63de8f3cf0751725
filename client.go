package spyder

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/jtouzy/spyder/cache"
	"github.com/jtouzy/spyder/internal/config"
	"github.com/jtouzy/spyder/internal/metrics"
	"github.com/jtouzy/spyder/transport"
	"github.com/jtouzy/spyder/wire"
)

const DefaultTimeout = 30 * time.Second

// Client holds everything needed to turn descriptors into responses. Only the
// persistent header set changes after construction.
type Client struct {
	baseURL       url.URL
	codec         Codec
	headerBuilder func() []wire.Header
	invoker       wire.Invoker
	logger        func(message, detail string)
	middlewares   []ResponseMiddleware

	mu         sync.RWMutex
	persistent wire.HeaderSet

	cachePolicy  cache.Policy
	cacheOptions []cache.Option
	cache        *cache.Manager

	flights    *singleflight.Group
	registerer prometheus.Registerer
}

// New returns a client sending requests relative to baseURL. Without
// WithInvoker, requests go through transport.New(DefaultTimeout).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnbuildableURL, err)
	}

	c := &Client{
		baseURL:     *u,
		codec:       JSONCodec{},
		cachePolicy: cache.None(),
		logger:      func(string, string) {},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		if err := metrics.Register(c.registerer); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	if c.invoker == nil {
		c.invoker = transport.New(DefaultTimeout)
	}
	c.cache = cache.NewManager(c.cachePolicy, c.cacheOptions...)

	return c, nil
}

// NewFromConfig builds a client from a YAML profile. opts are applied after
// the profile and override it.
func NewFromConfig(path string, opts ...Option) (*Client, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg.BaseURL, append(configOptions(cfg), opts...)...)
}

func configOptions(cfg *config.Config) []Option {
	invoker := transport.New(cfg.Timeout)
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		invoker = transport.RateLimited(invoker, limiter)
	}

	opts := []Option{WithInvoker(invoker)}

	if cfg.Cache.Policy == config.CachePolicyInMemory {
		opts = append(opts, WithCachePolicy(cache.InMemory(cfg.Cache.Duration)))
	}
	if cfg.Cache.Fingerprint == config.FingerprintMethodAndURL {
		opts = append(opts, WithCacheFingerprint(cache.MethodAndURL))
	}
	if cfg.Deduplicate {
		opts = append(opts, WithDeduplication())
	}
	for _, h := range cfg.Headers {
		opts = append(opts, WithHeader(wire.Header{Name: h.Name, Value: h.Value}))
	}
	return opts
}

// AddHeader adds h to the persistent headers sent with every request.
// Persistent headers win over the header builder on name collisions.
func (c *Client) AddHeader(h wire.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persistent.Insert(h)
}

// AllHeaders returns the header builder output with the persistent headers
// merged on top.
func (c *Client) AllHeaders() wire.HeaderSet {
	var headers wire.HeaderSet
	if c.headerBuilder != nil {
		for _, h := range c.headerBuilder() {
			headers.Insert(h)
		}
	}

	c.mu.RLock()
	headers.Merge(c.persistent)
	c.mu.RUnlock()

	return headers
}

func (c *Client) BaseURL() url.URL {
	return c.baseURL
}

func (c *Client) Cache() *cache.Manager {
	return c.cache
}
