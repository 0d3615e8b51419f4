// Package dispatch implements the request lifecycle state machine
// spec.md §4.6 calls the Dispatcher: before-hook, matched routes in
// registration order, after-hook, with short-circuit, continue-after-
// response, and not-found semantics. It is grounded in the teacher's
// Router.ServeHTTP (router.go) and Handler.ServeHTTP (handler.go) request
// loops, generalized from a single http.Handler entry point to the
// transport-agnostic HttpContext contract.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/kodeshop/rex/rexlog"
	"github.com/kodeshop/rex/route"
	"github.com/kodeshop/rex/routing"
)

// ErrNotFound is returned when Route is called and zero enabled routes
// match (spec.md §7). The hosting layer maps it to HTTP 404.
var ErrNotFound = errors.New("dispatch: no route matched")

// NotFoundError carries the request context that failed to match, for
// hosting layers that want to log the path/method.
type NotFoundError struct {
	Method route.HttpMethod
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dispatch: no route matched %s %s", e.Method, e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Dispatcher holds the request lifecycle: before → matched routes in
// registration order → after, with short-circuit-on-response and
// continue-after-response semantics (spec.md §4.6).
//
// A Dispatcher's table is always a routing.FrozenTable: once built, the
// routing table cannot be mutated from underneath an in-flight request
// (spec.md §5), and Route is safe to call concurrently from many request
// goroutines.
type Dispatcher struct {
	table                 *routing.FrozenTable
	before                route.Handler
	after                 route.Handler
	continueAfterResponse bool
	logger                rexlog.Logger
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithBefore installs the single before-hook (spec.md §4.6). It is skipped
// when zero routes match (spec.md §4.6: "before is skipped when there are
// zero matched routes").
func WithBefore(h route.Handler) Option { return func(d *Dispatcher) { d.before = h } }

// WithAfter installs the single after-hook. It runs once dispatch has matched
// at least one route and the context had not already responded, even if a
// handler panics (spec.md §4.6, §7).
func WithAfter(h route.Handler) Option { return func(d *Dispatcher) { d.after = h } }

// WithContinueAfterResponse controls whether subsequent matched routes still
// run after a response has been sent (spec.md §4.6).
func WithContinueAfterResponse(continueAfter bool) Option {
	return func(d *Dispatcher) { d.continueAfterResponse = continueAfter }
}

// WithLogger installs the logger used for the begin/end route-count log
// lines (spec.md §9 open question).
func WithLogger(logger rexlog.Logger) Option {
	return func(d *Dispatcher) {
		if logger == nil {
			logger = rexlog.Default
		}
		d.logger = logger
	}
}

// New builds a Dispatcher over a frozen routing table.
func New(table *routing.FrozenTable, opts ...Option) *Dispatcher {
	d := &Dispatcher{table: table, logger: rexlog.Default}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Route runs the dispatch loop for ctx (spec.md §4.6):
//
//	matched := table.RouteFor(ctx)
//	if matched is empty: fail with NotFound
//	if ctx.Responded(): return true   // pre-existing response short-circuits
//	if before set: ctx = before(ctx)
//	for r in matched:
//	    ctx = r.Invoke(ctx)
//	    if continueAfterResponse: continue
//	    if ctx.Responded(): break
//	after runs in a finally-equivalent scope, even on panic.
//	return ctx.Responded(), nil
func (d *Dispatcher) Route(ctx route.HttpContext) (responded bool, err error) {
	matched := d.table.RouteFor(ctx)
	if len(matched) == 0 {
		return false, &NotFoundError{Method: ctx.Method(), Path: ctx.Path()}
	}

	d.logger.Trace(fmt.Sprintf("routing: matched=%d", len(matched)))

	if ctx.Responded() {
		return true, nil
	}

	if d.before != nil {
		ctx = d.before(ctx)
	}

	invoked := 0
	defer func() {
		recovered := recover()
		if d.after != nil {
			ctx = d.after(ctx)
		}
		responded = ctx.Responded()
		d.logger.Trace(fmt.Sprintf("routing: invoked=%d matched=%d", invoked, len(matched)))
		if recovered != nil {
			panic(recovered)
		}
	}()

	for _, m := range matched {
		invoked++
		ctx = m.Route.Invoke(ctx, m.Params)
		if d.continueAfterResponse {
			continue
		}
		if ctx.Responded() {
			break
		}
	}

	return ctx.Responded(), nil
}
