package spyder

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/jtouzy/spyder/cache"
	"github.com/jtouzy/spyder/internal/logging"
	"github.com/jtouzy/spyder/wire"
)

// ResponseMiddleware runs after the transport and before status validation.
// It may replace the response or fail, which stops the chain.
type ResponseMiddleware func(ctx context.Context, c *Client, resp wire.Response) (wire.Response, error)

type Option func(*Client)

func WithCodec(codec Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithHeaderBuilder sets the function called on every build for the
// dynamic part of the headers (tokens, dates).
func WithHeaderBuilder(fn func() []wire.Header) Option {
	return func(c *Client) {
		c.headerBuilder = fn
	}
}

// WithHeader adds a persistent header at construction.
func WithHeader(h wire.Header) Option {
	return func(c *Client) {
		c.persistent.Insert(h)
	}
}

func WithInvoker(invoker wire.Invoker) Option {
	return func(c *Client) {
		c.invoker = invoker
	}
}

func WithLogger(logger func(message, detail string)) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStructuredLogging sends networking events as JSON lines to stdout.
func WithStructuredLogging() Option {
	return WithLogger(logging.New().Event)
}

func WithMiddleware(mws ...ResponseMiddleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

func WithCachePolicy(p cache.Policy) Option {
	return func(c *Client) {
		c.cachePolicy = p
	}
}

func WithCacheFingerprint(f cache.Fingerprint) Option {
	return func(c *Client) {
		c.cacheOptions = append(c.cacheOptions, cache.WithFingerprint(f))
	}
}

// WithDeduplication merges concurrent invocations missing the cache with
// the same fingerprint into a single transport call.
func WithDeduplication() Option {
	return func(c *Client) {
		c.flights = &singleflight.Group{}
	}
}

// WithMetrics registers the invocation and cache collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}
