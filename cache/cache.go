package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/jtouzy/spyder/wire"
)

// Policy selects whether successful response bodies are kept in memory.
type Policy struct {
	enabled  bool
	duration time.Duration
}

func None() Policy {
	return Policy{}
}

func InMemory(d time.Duration) Policy {
	return Policy{enabled: true, duration: d}
}

// Duration reports the retention period and whether the policy caches at all.
func (p Policy) Duration() (time.Duration, bool) {
	return p.duration, p.enabled
}

func (p Policy) String() string {
	if !p.enabled {
		return "none"
	}
	return "inMemory(" + p.duration.String() + ")"
}

type Entry struct {
	Body      []byte
	ExpiresAt time.Time
}

// Fingerprint derives the lookup key of a request.
type Fingerprint func(req wire.Request) string

// FullRequest keys on method, URL, every header and the body. Two requests
// that differ only by a per-call header (a timestamp, a nonce) do not share
// an entry.
func FullRequest(req wire.Request) string {
	var b strings.Builder
	b.WriteString(MethodAndURL(req))

	lines := make([]string, 0, req.Headers.Len())
	for _, h := range req.Headers.All() {
		lines = append(lines, textproto.CanonicalMIMEHeaderKey(h.Name)+": "+h.Value)
	}
	sort.Strings(lines)
	for _, l := range lines {
		b.WriteByte('\n')
		b.WriteString(l)
	}

	if req.Body != nil {
		sum := sha256.Sum256(req.Body)
		b.WriteString("\nbody_hash=")
		b.WriteString(hex.EncodeToString(sum[:]))
	}
	return b.String()
}

func MethodAndURL(req wire.Request) string {
	return req.Method.HTTP() + " " + req.URL
}
