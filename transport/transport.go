// Package transport provides the default net/http backed invoker and invoker
// decorators.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/jtouzy/spyder/internal/upstream"
	"github.com/jtouzy/spyder/wire"
)

var ErrMissingResponse = errors.New("transport: no response returned")

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// New returns an invoker over a pooled HTTP/2 capable client.
func New(timeout time.Duration) wire.Invoker {
	return HTTP(upstream.NewClient(timeout))
}

// HTTP adapts a Doer into an invoker. The whole response body is read before
// returning; any status code is a valid response.
func HTTP(client Doer) wire.Invoker {
	return func(ctx context.Context, req wire.Request) (wire.Response, error) {
		var body io.Reader
		if req.Body != nil {
			body = bytes.NewReader(req.Body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method.HTTP(), req.URL, body)
		if err != nil {
			return wire.Response{}, fmt.Errorf("transport: new request: %w", err)
		}
		for _, h := range req.Headers.All() {
			httpReq.Header.Set(h.Name, h.Value)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return wire.Response{}, err
		}
		if resp == nil {
			return wire.Response{}, ErrMissingResponse
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return wire.Response{}, fmt.Errorf("transport: read body: %w", err)
		}

		return wire.Response{
			StatusCode: resp.StatusCode,
			Headers:    flattenHeader(resp.Header),
			Body:       data,
		}, nil
	}
}

// flattenHeader sorts by name so that responses are deterministic.
func flattenHeader(src http.Header) []wire.Header {
	names := make([]string, 0, len(src))
	for k := range src {
		names = append(names, k)
	}
	sort.Strings(names)

	var out []wire.Header
	for _, k := range names {
		for _, v := range src[k] {
			out = append(out, wire.Header{Name: k, Value: v})
		}
	}
	return out
}

// RateLimited waits for limiter before each call to next. A wait that fails
// (cancelled context, burst too small) is returned as the transport error.
func RateLimited(next wire.Invoker, limiter *rate.Limiter) wire.Invoker {
	return func(ctx context.Context, req wire.Request) (wire.Response, error) {
		if err := limiter.Wait(ctx); err != nil {
			return wire.Response{}, fmt.Errorf("transport: rate limit: %w", err)
		}
		return next(ctx, req)
	}
}
