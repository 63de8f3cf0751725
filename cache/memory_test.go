package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jtouzy/spyder/wire"
)

func makeRequest(rawURL string, headers ...wire.Header) wire.Request {
	return wire.Request{
		URL:     rawURL,
		Method:  wire.MethodGet,
		Headers: wire.NewHeaderSet(headers...),
	}
}

func TestPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantOK  bool
		wantDur time.Duration
		wantStr string
	}{
		{"None", None(), false, 0, "none"},
		{"InMemory", InMemory(30 * time.Second), true, 30 * time.Second, "inMemory(30s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := tt.policy.Duration()
			if ok != tt.wantOK || d != tt.wantDur {
				t.Errorf("Duration() = (%v, %v), want (%v, %v)", d, ok, tt.wantDur, tt.wantOK)
			}
			if got := tt.policy.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestRegisterEntry_NoCachePolicy(t *testing.T) {
	m := NewManager(None())
	req := makeRequest("https://www.google.fr")

	m.RegisterEntryIfNeeded([]byte("{}"), req, time.Now())

	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
	if _, ok := m.Find(req); ok {
		t.Error("Find succeeded under None policy")
	}
}

func TestRegisterEntry_InMemoryPolicy(t *testing.T) {
	m := NewManager(InMemory(30 * time.Second))
	req := makeRequest("https://www.google.fr")
	storedAt := time.Now()

	m.RegisterEntryIfNeeded([]byte("{}"), req, storedAt)

	e, ok := m.entry(req)
	if !ok {
		t.Fatal("entry not stored")
	}
	if string(e.Body) != "{}" {
		t.Errorf("Body = %q, want %q", e.Body, "{}")
	}
	if !e.ExpiresAt.Equal(storedAt.Add(30 * time.Second)) {
		t.Errorf("ExpiresAt = %v, want %v", e.ExpiresAt, storedAt.Add(30*time.Second))
	}
}

func TestRegisterEntry_Overwrites(t *testing.T) {
	m := NewManager(InMemory(time.Minute))
	req := makeRequest("https://www.google.fr")
	now := time.Now()

	m.RegisterEntryIfNeeded([]byte("first"), req, now)
	m.RegisterEntryIfNeeded([]byte("second"), req, now)

	got, ok := m.FindNonExpiredEntry(req, now)
	if !ok || string(got) != "second" {
		t.Errorf("Update failed, want %q, got %q", "second", string(got))
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestFindNonExpiredEntry(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name      string
		policy    Policy
		register  bool
		compareAt time.Time
		wantHit   bool
		wantLen   int
	}{
		{"NoCachePolicy", None(), false, base, false, 0},
		{"NonExistingEntry", InMemory(20 * time.Second), false, base, false, 0},
		{"SameInstant", InMemory(30 * time.Second), true, base, true, 1},
		{"NonExpired", InMemory(30 * time.Second), true, base.Add(20 * time.Second), true, 1},
		{"ExactlyAtExpiration", InMemory(10 * time.Second), true, base.Add(10 * time.Second), false, 0},
		{"Expired", InMemory(10 * time.Second), true, base.Add(20 * time.Second), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.policy)
			req := makeRequest("https://www.google.fr")
			if tt.register {
				m.RegisterEntryIfNeeded([]byte("{}"), req, base)
			}

			got, ok := m.FindNonExpiredEntry(req, tt.compareAt)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && string(got) != "{}" {
				t.Errorf("Body = %q, want %q", got, "{}")
			}
			if m.Len() != tt.wantLen {
				t.Errorf("Len after lookup = %d, want %d", m.Len(), tt.wantLen)
			}
		})
	}
}

func TestFindReturnsCopy(t *testing.T) {
	m := NewManager(InMemory(time.Minute))
	req := makeRequest("https://www.google.fr")
	m.Register([]byte("data"), req)

	got, _ := m.Find(req)
	got[0] = 'X'

	again, _ := m.Find(req)
	if string(again) != "data" {
		t.Errorf("stored body mutated through returned slice: %q", again)
	}
}

func TestFingerprint_FullRequestSeparatesHeaders(t *testing.T) {
	m := NewManager(InMemory(time.Minute))
	a := makeRequest("https://api.example.com/x", wire.Header{Name: "X-Request-Time", Value: "1"})
	b := makeRequest("https://api.example.com/x", wire.Header{Name: "X-Request-Time", Value: "2"})

	m.Register([]byte("a"), a)
	if _, ok := m.Find(b); ok {
		t.Error("request with different header hit the cache under FullRequest")
	}
}

func TestFingerprint_FullRequestIgnoresHeaderOrder(t *testing.T) {
	a := makeRequest("https://api.example.com/x",
		wire.Header{Name: "A", Value: "1"},
		wire.Header{Name: "B", Value: "2"},
	)
	b := makeRequest("https://api.example.com/x",
		wire.Header{Name: "B", Value: "2"},
		wire.Header{Name: "A", Value: "1"},
	)
	if FullRequest(a) != FullRequest(b) {
		t.Errorf("fingerprints differ:\n%q\n%q", FullRequest(a), FullRequest(b))
	}
}

func TestFingerprint_FullRequestIncludesBody(t *testing.T) {
	a := makeRequest("https://api.example.com/x")
	b := makeRequest("https://api.example.com/x")
	a.Body = []byte(`{"q":1}`)
	b.Body = []byte(`{"q":2}`)
	if FullRequest(a) == FullRequest(b) {
		t.Error("bodies not part of the fingerprint")
	}
}

func TestFingerprint_MethodAndURL(t *testing.T) {
	m := NewManager(InMemory(time.Minute), WithFingerprint(MethodAndURL))
	a := makeRequest("https://api.example.com/x", wire.Header{Name: "X-Request-Time", Value: "1"})
	b := makeRequest("https://api.example.com/x", wire.Header{Name: "X-Request-Time", Value: "2"})

	m.Register([]byte("a"), a)
	got, ok := m.Find(b)
	if !ok || string(got) != "a" {
		t.Errorf("expected hit ignoring headers, got (%q, %v)", got, ok)
	}
}

func TestPurge(t *testing.T) {
	m := NewManager(InMemory(time.Minute))
	for i := 0; i < 20; i++ {
		m.Register([]byte("x"), makeRequest(fmt.Sprintf("https://api.example.com/%d", i)))
	}
	if m.Len() != 20 {
		t.Fatalf("Len = %d, want 20", m.Len())
	}
	m.Purge()
	if m.Len() != 0 {
		t.Errorf("Len after Purge = %d, want 0", m.Len())
	}
}

func TestConcurrency(t *testing.T) {
	m := NewManager(InMemory(time.Hour))
	numGoRoutines := 50
	numOperations := 1000

	var wg sync.WaitGroup

	for i := 0; i < numGoRoutines; i++ {
		wg.Add(1)
		go func(gID int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				req := makeRequest(fmt.Sprintf("https://api.example.com/key_%d", (j%10)+1))

				switch j % 4 {
				case 0, 1:
					m.Find(req)
				case 2:
					m.Register([]byte("data"), req)
				case 3:
					m.FindNonExpiredEntry(req, time.Now().Add(2*time.Hour))
				}
			}
		}(i)
	}

	wg.Wait()

	for i := 1; i <= 10; i++ {
		req := makeRequest(fmt.Sprintf("https://api.example.com/key_%d", i))
		if body, ok := m.Find(req); ok && string(body) != "data" {
			t.Errorf("unexpected body %q for key %d", body, i)
		}
	}
}
