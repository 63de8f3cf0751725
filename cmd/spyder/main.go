package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/pretty"

	"github.com/jtouzy/spyder"
	"github.com/jtouzy/spyder/auth"
	"github.com/jtouzy/spyder/endpoint"
	"github.com/jtouzy/spyder/internal/logging"
	"github.com/jtouzy/spyder/internal/metrics"
	"github.com/jtouzy/spyder/middleware"
	"github.com/jtouzy/spyder/wire"
)

// pairs collects repeated name=value flags.
type pairs []string

func (p *pairs) String() string { return strings.Join(*p, ",") }

func (p *pairs) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*p = append(*p, v)
	return nil
}

func (p pairs) split() [][2]string {
	out := make([][2]string, 0, len(p))
	for _, v := range p {
		name, value, _ := strings.Cut(v, "=")
		out = append(out, [2]string{name, value})
	}
	return out
}

// probe is a descriptor assembled from the command line.
type probe struct {
	method  wire.Method
	path    string
	params  pairs
	queries pairs
	headers pairs
	body    json.RawMessage
}

func (p probe) Endpoint() endpoint.Endpoint {
	return endpoint.Endpoint{Method: p.method, Path: p.path}
}

func (p probe) Fields() []endpoint.Field {
	var fields []endpoint.Field
	for _, kv := range p.headers.split() {
		fields = append(fields, endpoint.Header(kv[0], kv[1]))
	}
	for _, kv := range p.params.split() {
		fields = append(fields, endpoint.Path(kv[0], kv[1]))
	}
	for _, kv := range p.queries.split() {
		fields = append(fields, endpoint.Query(kv[0], kv[1]))
	}
	if p.body != nil {
		fields = append(fields, endpoint.Body(p.body))
	}
	return fields
}

func main() {
	configPath := flag.String("config", "./configs/spyder.yaml", "path to client profile")
	method := flag.String("method", "get", "delete, get, post or put")
	path := flag.String("path", "/", "path template, e.g. /repos/{owner}/{name}")
	body := flag.String("body", "", "JSON request body")
	repeat := flag.Int("repeat", 1, "number of sequential invocations")
	discard := flag.Bool("discard", false, "do not decode the response body")
	tokenEnv := flag.String("token-env", "", "environment variable holding a bearer token")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address and wait for a signal")
	structured := flag.Bool("log", false, "log networking events as JSON")
	maxBody := flag.Int64("max-body", middleware.DefaultMaxBodySize, "reject response bodies larger than this many bytes")
	requireJSON := flag.Bool("require-json", false, "reject successful responses not declared as JSON")

	var p probe
	flag.Var(&p.params, "param", "path parameter name=value (repeatable)")
	flag.Var(&p.queries, "query", "query item name=value (repeatable)")
	flag.Var(&p.headers, "header", "header name=value (repeatable)")
	flag.Parse()

	m, err := wire.ParseMethod(*method)
	if err != nil {
		log.Fatalf("parse method: %v", err)
	}
	p.method = m
	p.path = *path
	if *body != "" {
		if !json.Valid([]byte(*body)) {
			log.Fatalf("body is not valid JSON")
		}
		p.body = json.RawMessage(*body)
	}

	mws := []spyder.ResponseMiddleware{middleware.MaxBodySize(*maxBody)}
	if *requireJSON {
		mws = append(mws, middleware.RequireJSON())
	}

	opts := []spyder.Option{
		spyder.WithMiddleware(middleware.Chain(mws...)),
		spyder.WithMetrics(prometheus.DefaultRegisterer),
	}
	if *structured {
		opts = append(opts, spyder.WithStructuredLogging())
	}
	if *tokenEnv != "" {
		token := os.Getenv(*tokenEnv)
		if token == "" {
			log.Fatalf("%s is empty", *tokenEnv)
		}
		opts = append(opts, spyder.WithHeaderBuilder(auth.Bearer(auth.Static(token))))
	}

	client, err := spyder.NewFromConfig(*configPath, opts...)
	if err != nil {
		log.Fatalf("load client: %v", err)
	}

	logger := logging.New()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for i := 0; i < *repeat; i++ {
		if err := run(ctx, client, p, *discard); err != nil {
			log.Fatalf("invoke %s %s: %v", p.method.HTTP(), p.path, err)
		}
	}
	logger.Info("probe finished", "cacheEntries", client.Cache().Len())

	if *metricsAddr != "" {
		serveMetrics(ctx, logger, *metricsAddr)
	}
}

// serveMetrics exposes /metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, logger logging.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}

func run(ctx context.Context, client *spyder.Client, p probe, discard bool) error {
	if discard {
		return client.InvokeAndForget(ctx, p)
	}

	raw, err := spyder.InvokeWaitingResponse[json.RawMessage](ctx, client, p)
	if err != nil {
		return err
	}
	os.Stdout.Write(pretty.Pretty(raw))
	return nil
}
