// Package middleware provides ready-made response middlewares.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/textproto"

	"github.com/jtouzy/spyder"
	"github.com/jtouzy/spyder/wire"
)

const DefaultMaxBodySize = 1 << 20

var (
	ErrBodyTooLarge        = errors.New("response body too large")
	ErrUnexpectedMediaType = errors.New("unexpected response media type")
)

// Chain runs mws in order as a single middleware. The first failure stops the
// chain.
func Chain(mws ...spyder.ResponseMiddleware) spyder.ResponseMiddleware {
	return func(ctx context.Context, c *spyder.Client, resp wire.Response) (wire.Response, error) {
		var err error
		for _, mw := range mws {
			resp, err = mw(ctx, c, resp)
			if err != nil {
				return resp, err
			}
		}
		return resp, nil
	}
}

// MaxBodySize rejects responses whose body exceeds n bytes. n <= 0 uses
// DefaultMaxBodySize.
func MaxBodySize(n int64) spyder.ResponseMiddleware {
	if n <= 0 {
		n = DefaultMaxBodySize
	}
	return func(ctx context.Context, c *spyder.Client, resp wire.Response) (wire.Response, error) {
		if int64(len(resp.Body)) > n {
			return resp, fmt.Errorf("%w: %d bytes, limit %d", ErrBodyTooLarge, len(resp.Body), n)
		}
		return resp, nil
	}
}

// RequireJSON rejects successful, non-empty responses not declared as
// application/json. Error statuses go through untouched so that status
// validation reports them.
func RequireJSON() spyder.ResponseMiddleware {
	return func(ctx context.Context, c *spyder.Client, resp wire.Response) (wire.Response, error) {
		if !resp.IsSuccess() || len(resp.Body) == 0 {
			return resp, nil
		}

		ct := headerValue(resp.Headers, "Content-Type")
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != string(wire.JSON) {
			return resp, fmt.Errorf("%w: %q", ErrUnexpectedMediaType, ct)
		}
		return resp, nil
	}
}

func headerValue(headers []wire.Header, name string) string {
	key := textproto.CanonicalMIMEHeaderKey(name)
	for _, h := range headers {
		if textproto.CanonicalMIMEHeaderKey(h.Name) == key {
			return h.Value
		}
	}
	return ""
}
