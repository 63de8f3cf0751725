package spyder

import (
	"errors"
	"fmt"

	"github.com/jtouzy/spyder/endpoint"
	"github.com/jtouzy/spyder/wire"
)

var (
	// ErrUnbuildableURL is returned when the base URL, the evaluated path and
	// the query items cannot form a valid URL.
	ErrUnbuildableURL = endpoint.ErrUnbuildableURL

	ErrInvalidStatusCode = errors.New("invalid status code")
	ErrDecodeFailure     = errors.New("decode failure")
)

// InvalidStatusCodeError carries the full response whose status fell outside
// [200,299], after response middlewares ran.
type InvalidStatusCodeError struct {
	Response wire.Response
}

func (e *InvalidStatusCodeError) Error() string {
	return fmt.Sprintf("invalid status code %d", e.Response.StatusCode)
}

func (e *InvalidStatusCodeError) Is(target error) bool {
	return target == ErrInvalidStatusCode
}

type DecodeError struct {
	Method wire.Method
	Path   string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %s: %v", e.Method.HTTP(), e.Path, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailure
}
