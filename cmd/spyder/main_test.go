package main

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/jtouzy/spyder/endpoint"
	"github.com/jtouzy/spyder/wire"
)

func TestPairs_Set(t *testing.T) {
	var p pairs
	if err := p.Set("owner=golang"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := p.Set("novalue"); err == nil {
		t.Error("expected error for missing '='")
	}
	if got := p.split(); len(got) != 1 || got[0] != [2]string{"owner", "golang"} {
		t.Errorf("split() = %v", got)
	}
}

func TestProbe_Build(t *testing.T) {
	p := probe{
		method:  wire.MethodPost,
		path:    "/repos/{owner}",
		params:  pairs{"owner=golang"},
		queries: pairs{"per_page=10", "page=2"},
		headers: pairs{"X-Trace=1"},
		body:    json.RawMessage(`{"name":"go"}`),
	}

	base, _ := url.Parse("http://localhost:9000")
	req, err := endpoint.Build(p, endpoint.Target{BaseURL: *base})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if want := "http://localhost:9000/repos/golang?per_page=10&page=2"; req.URL != want {
		t.Errorf("URL = %q, want %q", req.URL, want)
	}
	if string(req.Body) != `{"name":"go"}` {
		t.Errorf("Body = %q", req.Body)
	}
	if !req.Headers.Contains(wire.Header{Name: "X-Trace", Value: "1"}) {
		t.Errorf("Headers = %v", req.Headers.All())
	}
}
