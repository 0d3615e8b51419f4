// Package rex is the root facade spec.md §4.7 calls the Router: a fluent
// builder over the routing core (pattern, route, routing, discovery,
// dispatch) that a caller configures once and turns into an immutable
// dispatch.Dispatcher.
//
// Grounded in the teacher's default.go/rest.go package-level Use/Get/Post
// shortcuts, generalized from package-level global state to an instantiable
// *Router the caller owns (spec.md §9 rejects hidden global mutable state
// in favor of explicit construction).
package rex

import (
	"reflect"
	"strings"

	"github.com/kodeshop/rex/discovery"
	"github.com/kodeshop/rex/dispatch"
	"github.com/kodeshop/rex/pattern"
	"github.com/kodeshop/rex/rexlog"
	"github.com/kodeshop/rex/route"
	"github.com/kodeshop/rex/routing"
)

// Router is the registration-phase builder (spec.md §4.7 C7). It is not
// safe for concurrent registration, the same restriction routing.Table
// documents, since Router wraps exactly one.
type Router struct {
	table       *routing.Table
	assembly    *discovery.Assembly
	exclusions  *discovery.Exclusions
	scope       string
	prefix      string
	middlewares []route.Handler
	after       []route.Handler
	continueAfterResponse bool
	logger      rexlog.Logger
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		table:      routing.NewTable(),
		assembly:   discovery.NewAssembly(),
		exclusions: discovery.NewExclusions(),
		logger:     rexlog.Default,
	}
}

// For builds a scoped Router via a configuration callback, grounded in the
// teacher's default.go Group builder but generalized to discovery scope
// rather than only a path prefix.
func For(scope string, configure func(*Router)) *Router {
	r := New()
	r.scope = scope
	if configure != nil {
		configure(r)
	}
	return r
}

// SetLogger installs the logger used by the routing table and dispatcher
// this Router eventually builds.
func (r *Router) SetLogger(logger rexlog.Logger) *Router {
	if logger == nil {
		logger = rexlog.Default
	}
	r.logger = logger
	r.table.SetLogger(logger)
	return r
}

// Use appends a before-hook stage (teacher's Router.Use middleware stack).
// Stages run in registration order; a stage that responds (Responded()
// becomes true) short-circuits the remaining stages, mirroring the
// teacher's ctx.go Next()/handled short-circuit.
func (r *Router) Use(middleware route.Handler) *Router {
	if middleware != nil {
		r.middlewares = append(r.middlewares, middleware)
	}
	return r
}

// After appends an after-hook stage. Every after stage runs, in registration
// order, once per request that matched at least one route and had not
// already responded before dispatch, including when a handler panics.
func (r *Router) After(h route.Handler) *Router {
	if h != nil {
		r.after = append(r.after, h)
	}
	return r
}

// ContinueAfterResponse controls whether subsequent matched routes still run
// after a response has been sent (spec.md §4.6).
func (r *Router) ContinueAfterResponse(continueAfter bool) *Router {
	r.continueAfterResponse = continueAfter
	return r
}

// composePattern applies the router's path prefix (set by Group) to a
// registered pattern, using the same "^" regex-prefix convention as
// discovery's basePath composition (spec.md §4.4 step 4).
func (r *Router) composePattern(patternSrc string) string {
	if r.prefix == "" {
		return patternSrc
	}
	prefix := ""
	if strings.HasPrefix(patternSrc, "^") {
		prefix = "^"
		patternSrc = patternSrc[1:]
	}
	if !strings.HasPrefix(patternSrc, "/") {
		patternSrc = "/" + patternSrc
	}
	return prefix + r.prefix + patternSrc
}

// Handle registers a route for method+pattern. name labels the route for
// logging/identity; it need not be unique.
func (r *Router) Handle(method route.HttpMethod, patternSrc string, name string, handler route.Handler) *Router {
	m, err := pattern.Compile(r.composePattern(patternSrc))
	if err != nil {
		panic(err)
	}
	rt := route.New(method, m, handler, name, route.IdentityOfFunc(handler))
	r.table.Register(rt)
	return r
}

// Get, Post, Put, Patch, Delete, Options, Head and All are shortcuts for
// Handle with a fixed method, grounded in the teacher's default.go/rest.go
// per-verb shortcuts.
func (r *Router) Get(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodGET, patternSrc, name, h)
}
func (r *Router) Post(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodPOST, patternSrc, name, h)
}
func (r *Router) Put(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodPUT, patternSrc, name, h)
}
func (r *Router) Patch(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodPATCH, patternSrc, name, h)
}
func (r *Router) Delete(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodDELETE, patternSrc, name, h)
}
func (r *Router) Options(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodOPTIONS, patternSrc, name, h)
}
func (r *Router) Head(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodHEAD, patternSrc, name, h)
}
func (r *Router) All(patternSrc, name string, h route.Handler) *Router {
	return r.Handle(route.MethodALL, patternSrc, name, h)
}

// Group creates a nested Router sharing this Router's table, assembly and
// exclusions, with prefix prepended to every pattern fn registers — the
// named-group routing feature of the teacher's default.go Group, composed
// with discovery's basePath rule (spec.md §4.4 step 3/4) instead of a
// separate ad hoc implementation. Dispatcher has exactly one before/after
// slot for the whole table (spec.md §4.6), so Use/After calls made on the
// Router passed to fn are local to that Router value and are not merged
// into the parent; register middleware on the top-level Router instead.
func (r *Router) Group(prefix string, fn func(*Router)) *Router {
	child := &Router{
		table:                 r.table,
		assembly:              r.assembly,
		exclusions:            r.exclusions,
		scope:                 r.scope,
		prefix:                r.prefix + normalizePrefix(prefix),
		continueAfterResponse: r.continueAfterResponse,
		logger:                r.logger,
	}
	if fn != nil {
		fn(child)
	}
	return r
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimSuffix(prefix, "/")
}

// RegisterType adds t to this Router's discovery assembly (spec.md §4.4).
// t must be the concrete (non-pointer) struct type of a Resource.
func (r *Router) RegisterType(t reflect.Type) *Router {
	r.assembly.RegisterType(t)
	return r
}

// Exclude excludes a single type from discovery (spec.md §4.3).
func (r *Router) Exclude(t reflect.Type) *Router {
	r.exclusions.ExcludeType(t)
	return r
}

// ExcludeNamespace excludes every type in a package path from discovery
// (spec.md §4.3, §8 scenario 6).
func (r *Router) ExcludeNamespace(ns string) *Router {
	r.exclusions.ExcludeNamespace(ns)
	return r
}

// Import merges another Router's manually-registered routes into this one
// (spec.md §8 invariant 6: idempotent under repeated import). The other
// Router's discovery assembly is not imported; call RegisterType on this
// Router directly to share discoverable types.
func (r *Router) Import(other *Router) (added int) {
	return r.table.Import(other.table)
}

// Build runs discovery, merges it with manually registered routes, composes
// the middleware stack into a single before-hook, freezes the table, and
// returns a ready-to-serve Dispatcher (spec.md §4.7: "Router.build()
// returns an immutable Dispatcher").
func (r *Router) Build() (*dispatch.Dispatcher, error) {
	discovered, err := r.assembly.Discover(r.exclusions, r.scope, r.logger)
	if err != nil {
		return nil, err
	}
	for _, rt := range discovered {
		r.table.Register(rt)
	}

	opts := []dispatch.Option{
		dispatch.WithContinueAfterResponse(r.continueAfterResponse),
		dispatch.WithLogger(r.logger),
	}
	if len(r.middlewares) > 0 {
		opts = append(opts, dispatch.WithBefore(composeHandlers(r.middlewares)))
	}
	if len(r.after) > 0 {
		after := r.after
		opts = append(opts, dispatch.WithAfter(func(ctx route.HttpContext) route.HttpContext {
			for _, h := range after {
				ctx = h(ctx)
			}
			return ctx
		}))
	}

	return dispatch.New(r.table.Freeze(), opts...), nil
}

// composeHandlers chains handlers in order, short-circuiting once a stage
// responds — the before-hook's only slot stands in for the teacher's
// middleware stack (ctx.go Next()).
func composeHandlers(handlers []route.Handler) route.Handler {
	return func(ctx route.HttpContext) route.HttpContext {
		for _, h := range handlers {
			ctx = h(ctx)
			if ctx.Responded() {
				break
			}
		}
		return ctx
	}
}
