// Package rex provides an embeddable request routing core for Go HTTP
// servers: pattern matching, an ordered routing table, reflection-based
// route discovery, and a before/route/after dispatch pipeline, fronted by
// this package's fluent Router builder.
//
//	r := rex.New()
//	r.Get("/users/:id", "get-user", handleGetUser)
//	d, err := r.Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", nethttp.NewHandler(d, nethttp.Options{}))
//
// The routing core itself (pattern, route, routing, discovery, dispatch)
// never imports net/http; the nethttp package supplies the reference
// HttpContext implementation, hosting, TLS and compression.
package rex
