// Package wire holds the transport-level values exchanged between the request
// builder, the client pipeline and invokers.
package wire

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type Method string

const (
	MethodDelete Method = "delete"
	MethodGet    Method = "get"
	MethodPost   Method = "post"
	MethodPut    Method = "put"
)

// ParseMethod accepts delete, get, post and put in any case.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(s)); m {
	case MethodDelete, MethodGet, MethodPost, MethodPut:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// HTTP returns the upper-case method token used on the wire by net/http.
func (m Method) HTTP() string {
	return strings.ToUpper(string(m))
}

// Request is a fully assembled request. Body is nil when the request has none.
type Request struct {
	URL     string
	Method  Method
	Headers HeaderSet
	Body    []byte
}

func (r Request) Clone() Request {
	out := r
	out.Headers = r.Headers.Clone()
	if r.Body != nil {
		out.Body = append([]byte{}, r.Body...)
	}
	return out
}

// Path returns the URL path, or the raw URL when it cannot be parsed.
func (r Request) Path() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

type Response struct {
	StatusCode int
	Headers    []Header
	Body       []byte
}

func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Invoker turns a Request into a Response. Errors are transport specific.
type Invoker func(ctx context.Context, req Request) (Response, error)
