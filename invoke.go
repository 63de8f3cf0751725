package spyder

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jtouzy/spyder/endpoint"
	"github.com/jtouzy/spyder/internal/metrics"
	"github.com/jtouzy/spyder/wire"
)

// InvokeAndForget runs the whole pipeline for d and discards the body.
func (c *Client) InvokeAndForget(ctx context.Context, d endpoint.Descriptor) error {
	inv, _, err := c.invoke(ctx, d)
	if err != nil {
		return err
	}
	inv.finish(metrics.OutcomeSuccess)
	return nil
}

// InvokeWaitingResponse runs the whole pipeline for d and decodes the body
// into a T with the client codec.
func InvokeWaitingResponse[T any](ctx context.Context, c *Client, d endpoint.Descriptor) (T, error) {
	var out T

	inv, body, err := c.invoke(ctx, d)
	if err != nil {
		return out, err
	}

	if err := c.codec.Decode(body, &out); err != nil {
		inv.event("decodingFailure", logField{"message", err.Error()})
		inv.finish(metrics.OutcomeDecodeFailure)
		var zero T
		return zero, &DecodeError{Method: inv.req.Method, Path: inv.req.Path(), Cause: err}
	}

	inv.finish(metrics.OutcomeSuccess)
	return out, nil
}

type invocation struct {
	client   *Client
	id       string
	endpoint endpoint.Endpoint
	req      wire.Request
	built    bool
	started  time.Time
}

func (inv *invocation) finish(outcome string) {
	metrics.ObserveInvocation(inv.endpoint.Path, inv.endpoint.Method.HTTP(), outcome, time.Since(inv.started))
}

// invoke returns the response body of d, from the cache or the transport.
// Failures are logged and recorded before returning.
func (c *Client) invoke(ctx context.Context, d endpoint.Descriptor) (*invocation, []byte, error) {
	inv := &invocation{
		client:   c,
		id:       uuid.NewString(),
		endpoint: d.Endpoint(),
		started:  time.Now(),
	}

	req, err := endpoint.Build(d, endpoint.Target{
		BaseURL: c.baseURL,
		Headers: c.AllHeaders(),
		Encoder: c.codec,
	})
	if err != nil {
		inv.event("buildFailure", logField{"message", err.Error()})
		inv.finish(metrics.OutcomeBuildFailure)
		return nil, nil, err
	}
	inv.req = req
	inv.built = true

	if body, ok := c.cache.Find(req); ok {
		metrics.IncCacheHit(inv.endpoint.Path)
		inv.logInvoke(true)
		inv.event("success[cache]")
		return inv, body, nil
	}
	if _, enabled := c.cache.Policy().Duration(); enabled {
		metrics.IncCacheMiss(inv.endpoint.Path)
	}
	inv.logInvoke(false)

	body, outcome, err := c.fetch(ctx, inv)
	if err != nil {
		inv.finish(outcome)
		return nil, nil, err
	}
	return inv, body, nil
}

type fetchResult struct {
	body    []byte
	outcome string
}

func (c *Client) fetch(ctx context.Context, inv *invocation) ([]byte, string, error) {
	if c.flights == nil {
		return c.dispatch(ctx, inv)
	}

	leader := false
	v, err, _ := c.flights.Do(c.cache.Key(inv.req), func() (any, error) {
		leader = true
		// A flight that finished between our lookup and Do has filled the cache.
		if body, ok := c.cache.Find(inv.req); ok {
			inv.event("success[cache]")
			return fetchResult{body: body, outcome: metrics.OutcomeSuccess}, nil
		}
		body, outcome, err := c.dispatch(ctx, inv)
		return fetchResult{body: body, outcome: outcome}, err
	})
	res := v.(fetchResult)

	if !leader {
		if err != nil {
			inv.event("invocationFailure", logField{"message", err.Error()}, logField{"shared", "true"})
		} else {
			inv.event("success[shared]")
		}
	}
	return res.body, res.outcome, err
}

// dispatch calls the transport, runs the middlewares, validates the status
// and stores the body on success.
func (c *Client) dispatch(ctx context.Context, inv *invocation) ([]byte, string, error) {
	resp, err := c.invoker(ctx, inv.req.Clone())
	if err != nil {
		inv.event("invocationFailure", logField{"message", err.Error()})
		return nil, metrics.OutcomeTransportFailure, err
	}
	inv.logResponse(resp)

	for _, mw := range c.middlewares {
		resp, err = mw(ctx, c, resp)
		if err != nil {
			inv.event("invocationFailure", logField{"message", err.Error()})
			return nil, metrics.OutcomeMiddlewareFailure, err
		}
	}

	if !resp.IsSuccess() {
		err := &InvalidStatusCodeError{Response: resp}
		inv.event("invocationFailure", logField{"message", err.Error()})
		return nil, metrics.OutcomeInvalidStatus, err
	}

	c.cache.Register(resp.Body, inv.req)
	return resp.Body, metrics.OutcomeSuccess, nil
}

func (inv *invocation) logResponse(resp wire.Response) {
	bucket := "failure"
	if resp.IsSuccess() {
		bucket = "success"
	}
	inv.event(bucket+"["+strconv.Itoa(resp.StatusCode)+"]", logField{"body", compactBody(resp.Body)})
}
