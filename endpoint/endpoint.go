// Package endpoint declares request descriptors and builds wire requests from them.
//
// A descriptor is a plain Go value describing one endpoint call:
//
//	type GetRepository struct {
//	    Owner, Name string
//	    Sort        *string
//	}
//
//	func (GetRepository) Endpoint() endpoint.Endpoint {
//	    return endpoint.Endpoint{Method: wire.MethodGet, Path: "/repos/{owner}/{name}"}
//	}
//
//	func (r GetRepository) Fields() []endpoint.Field {
//	    return []endpoint.Field{
//	        endpoint.Path("owner", r.Owner),
//	        endpoint.Path("name", r.Name),
//	        endpoint.OptionalQueryPtr("sort", r.Sort),
//	    }
//	}
//
// Fields are applied in the order they are returned.
package endpoint

import "github.com/jtouzy/spyder/wire"

// Endpoint is the static part of a descriptor, identical for every call.
type Endpoint struct {
	Method wire.Method
	Path   string
}

type Descriptor interface {
	Endpoint() Endpoint
	Fields() []Field
}

type Kind int

const (
	KindHeader Kind = iota
	KindPath
	KindQuery
	KindOptionalQuery
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindPath:
		return "path"
	case KindQuery:
		return "query"
	case KindOptionalQuery:
		return "optionalQuery"
	case KindBody:
		return "body"
	default:
		return "unknown"
	}
}

// Field is one declared descriptor field. Build it with the constructors below.
type Field struct {
	Kind    Kind
	Name    string
	Value   string
	Present bool
	Body    any
}

func Header(name, value string) Field {
	return Field{Kind: KindHeader, Name: name, Value: value, Present: true}
}

// Path replaces every "{name}" token of the path template with value.
func Path(name, value string) Field {
	return Field{Kind: KindPath, Name: name, Value: value, Present: true}
}

// Query is always emitted, even with an empty value.
func Query(name, value string) Field {
	return Field{Kind: KindQuery, Name: name, Value: value, Present: true}
}

// OptionalQuery is emitted only when ok is true.
func OptionalQuery(name, value string, ok bool) Field {
	return Field{Kind: KindOptionalQuery, Name: name, Value: value, Present: ok}
}

func OptionalQueryPtr(name string, value *string) Field {
	if value == nil {
		return OptionalQuery(name, "", false)
	}
	return OptionalQuery(name, *value, true)
}

// Body is encoded with the client codec. When several are declared the last wins.
func Body(v any) Field {
	return Field{Kind: KindBody, Body: v, Present: true}
}
