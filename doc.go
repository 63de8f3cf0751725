// Package spyder is a declarative HTTP client.
//
// Endpoints are declared as Go types implementing endpoint.Descriptor: a
// static method and path template plus an ordered list of fields (headers,
// path parameters, query items, body). A Client builds the wire request from
// a descriptor, serves it from its cache when allowed, otherwise sends it
// through its invoker, runs the response middlewares, validates the status
// code and decodes the body.
//
//	type ListRepositories struct{ Org string }
//
//	func (ListRepositories) Endpoint() endpoint.Endpoint {
//		return endpoint.Endpoint{Method: wire.MethodGet, Path: "/orgs/{org}/repos"}
//	}
//
//	func (r ListRepositories) Fields() []endpoint.Field {
//		return []endpoint.Field{endpoint.Path("org", r.Org)}
//	}
//
//	client, err := spyder.New("https://api.github.com",
//		spyder.WithCachePolicy(cache.InMemory(30*time.Second)))
//	repos, err := spyder.InvokeWaitingResponse[[]Repository](ctx, client, ListRepositories{Org: "golang"})
//
// Errors are returned verbatim: ErrUnbuildableURL, *InvalidStatusCodeError,
// *DecodeError, or whatever the invoker or a middleware returned.
package spyder
