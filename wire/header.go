package wire

import "net/textproto"

type Header struct {
	Name  string
	Value string
}

type ContentTypeValue string

const (
	Image ContentTypeValue = "image/jpeg"
	JSON  ContentTypeValue = "application/json"
	Text  ContentTypeValue = "text/plain"
)

func ContentType(v ContentTypeValue) Header {
	return Header{Name: "Content-Type", Value: string(v)}
}

// HeaderSet keeps one value per canonical header name, in insertion order.
// Re-inserting a known name replaces its value without moving it.
//
// Insert never writes to storage it did not allocate, so a copied set (a
// Request passed by value) can be modified without affecting the original.
type HeaderSet struct {
	items []Header
	index map[string]int
}

func NewHeaderSet(headers ...Header) HeaderSet {
	var s HeaderSet
	for _, h := range headers {
		s.Insert(h)
	}
	return s
}

func (s *HeaderSet) Insert(h Header) {
	key := textproto.CanonicalMIMEHeaderKey(h.Name)
	if i, ok := s.index[key]; ok {
		if s.items[i] == h {
			return
		}
		items := append([]Header(nil), s.items...)
		items[i] = h
		s.items = items
		return
	}

	index := make(map[string]int, len(s.index)+1)
	for k, v := range s.index {
		index[k] = v
	}
	index[key] = len(s.items)

	s.items = append(s.items[:len(s.items):len(s.items)], h)
	s.index = index
}

// Merge inserts every header of other, other winning on name collisions.
func (s *HeaderSet) Merge(other HeaderSet) {
	for _, h := range other.items {
		s.Insert(h)
	}
}

func (s HeaderSet) Get(name string) (string, bool) {
	i, ok := s.index[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok {
		return "", false
	}
	return s.items[i].Value, true
}

func (s HeaderSet) Contains(h Header) bool {
	v, ok := s.Get(h.Name)
	return ok && v == h.Value
}

func (s HeaderSet) Len() int {
	return len(s.items)
}

// All returns a copy of the headers in insertion order.
func (s HeaderSet) All() []Header {
	return append([]Header(nil), s.items...)
}

func (s HeaderSet) Clone() HeaderSet {
	return NewHeaderSet(s.items...)
}
