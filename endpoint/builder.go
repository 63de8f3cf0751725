package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jtouzy/spyder/wire"
)

var ErrUnbuildableURL = errors.New("unable to build final URL")

type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Target is the client side of a build: where the request goes and which
// ambient headers it starts with.
type Target struct {
	BaseURL url.URL
	Headers wire.HeaderSet
	Encoder Encoder
}

type queryItem struct {
	name  string
	value string
}

// Build evaluates the descriptor fields against t and assembles the request.
func Build(d Descriptor, t Target) (wire.Request, error) {
	ep := d.Endpoint()

	path := ep.Path
	headers := t.Headers.Clone()
	var query []queryItem
	var body []byte

	for _, f := range d.Fields() {
		switch f.Kind {
		case KindHeader:
			headers.Insert(wire.Header{Name: f.Name, Value: f.Value})
		case KindPath:
			path = strings.ReplaceAll(path, "{"+f.Name+"}", f.Value)
		case KindQuery:
			query = append(query, queryItem{name: f.Name, value: f.Value})
		case KindOptionalQuery:
			if f.Present {
				query = append(query, queryItem{name: f.Name, value: f.Value})
			}
		case KindBody:
			encoded, err := encode(t.Encoder, f.Body)
			if err != nil {
				return wire.Request{}, err
			}
			body = encoded
		}
	}

	u, err := assembleURL(t.BaseURL, path, query)
	if err != nil {
		return wire.Request{}, err
	}

	return wire.Request{
		URL:     u,
		Method:  ep.Method,
		Headers: headers,
		Body:    body,
	}, nil
}

func encode(enc Encoder, v any) ([]byte, error) {
	if enc == nil {
		return json.Marshal(v)
	}
	return enc.Encode(v)
}

func assembleURL(base url.URL, path string, query []queryItem) (string, error) {
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: base URL %q needs a scheme and a host", ErrUnbuildableURL, base.String())
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: path %q must start with '/'", ErrUnbuildableURL, path)
	}

	u := base
	u.Path = path
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	u.RawQuery = encodeQuery(query)

	raw := u.String()
	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnbuildableURL, err)
	}
	return raw, nil
}

// encodeQuery keeps declaration order, unlike url.Values.Encode.
func encodeQuery(items []queryItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(it.name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(it.value))
	}
	return b.String()
}
