package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jtouzy/spyder/wire"
)

func TestHTTP_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "a=1", r.URL.RawQuery)
		assert.Equal(t, "token", r.Header.Get("X-Auth"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"v":1}`, string(body))

		w.Header().Set("X-Zeta", "z")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	invoke := HTTP(server.Client())
	resp, err := invoke(context.Background(), wire.Request{
		URL:     server.URL + "/items?a=1",
		Method:  wire.MethodPost,
		Headers: wire.NewHeaderSet(wire.Header{Name: "X-Auth", Value: "token"}),
		Body:    []byte(`{"v":1}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))

	var names []string
	for _, h := range resp.Headers {
		names = append(names, h.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestHTTP_NonSuccessIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	resp, err := HTTP(server.Client())(context.Background(), wire.Request{URL: server.URL, Method: wire.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestHTTP_MissingResponse(t *testing.T) {
	invoke := HTTP(doerFunc(func(*http.Request) (*http.Response, error) { return nil, nil }))

	_, err := invoke(context.Background(), wire.Request{URL: "https://example.com", Method: wire.MethodGet})
	assert.ErrorIs(t, err, ErrMissingResponse)
}

func TestHTTP_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	invoke := HTTP(doerFunc(func(*http.Request) (*http.Response, error) { return nil, boom }))

	_, err := invoke(context.Background(), wire.Request{URL: "https://example.com", Method: wire.MethodGet})
	assert.Same(t, boom, err)
}

func TestNew_UsesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := New(20*time.Millisecond)(context.Background(), wire.Request{URL: server.URL, Method: wire.MethodGet})
	assert.Error(t, err)
}

func TestRateLimited(t *testing.T) {
	var calls atomic.Int32
	next := func(ctx context.Context, req wire.Request) (wire.Response, error) {
		calls.Add(1)
		return wire.Response{StatusCode: http.StatusOK}, nil
	}

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	invoke := RateLimited(next, limiter)

	_, err := invoke(context.Background(), wire.Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = invoke(ctx, wire.Request{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
