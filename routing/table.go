// Package routing implements the ordered, deduplicated route collection
// spec.md §4.5 calls the RoutingTable, plus the Builder/Freeze split that
// turns "don't mutate after serving starts" from a documented convention
// into a type-level guarantee (spec.md §9).
package routing

import (
	"fmt"

	"github.com/kodeshop/rex/rexlog"
	"github.com/kodeshop/rex/route"
)

// Table is an ordered, deduplicated sequence of routes. Insertion order is
// preserved and is the dispatch order (spec.md §3).
//
// Table is the mutable, registration-phase form. It is not safe for
// concurrent registration (spec.md §5) — callers must not call Register or
// Import from multiple goroutines concurrently. Once Freeze is called the
// returned FrozenTable is safe for concurrent reads.
type Table struct {
	routes []*route.Route
	index  map[route.Identity]bool
	logger rexlog.Logger
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{index: map[route.Identity]bool{}, logger: rexlog.Default}
}

// SetLogger installs the logger used to report deduplicated registrations
// at trace level (spec.md §7: DuplicateRoute is "not an error... Logged at
// trace").
func (t *Table) SetLogger(logger rexlog.Logger) {
	if logger == nil {
		logger = rexlog.Default
	}
	t.logger = logger
}

// Register appends r unless its identity is already present, in which case
// it is a silent no-op (spec.md §4.5, §7 DuplicateRoute: "not an error").
// It reports whether r was actually added, so callers may log at trace
// level on the duplicate path.
func (t *Table) Register(r *route.Route) (added bool) {
	id := r.Identity()
	if t.index[id] {
		t.logger.Trace(fmt.Sprintf("routing: duplicate route %s %s %s dropped", id.Method, id.PatternSource, id.Handler))
		return false
	}
	if t.index == nil {
		t.index = map[route.Identity]bool{}
	}
	t.index[id] = true
	t.routes = append(t.routes, r)
	return true
}

// Import appends each route of other via Register, preserving other's
// order (spec.md §4.5). Because Register silently dedups, importing the
// same source more than once is idempotent (spec.md §8 invariant 6).
func (t *Table) Import(other *Table) (added int) {
	for _, r := range other.Routes() {
		if t.Register(r) {
			added++
		}
	}
	return added
}

// Routes returns the table's routes in registration order. The returned
// slice is a copy; mutating it does not affect the table.
func (t *Table) Routes() []*route.Route {
	out := make([]*route.Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of distinct routes registered.
func (t *Table) Len() int { return len(t.routes) }

// Freeze returns an immutable snapshot of the table. After Freeze, further
// mutation of t does not affect the returned FrozenTable.
func (t *Table) Freeze() *FrozenTable {
	routes := make([]*route.Route, len(t.routes))
	copy(routes, t.routes)
	return &FrozenTable{routes: routes}
}

// FrozenTable is the read-only view served during the request-handling
// phase (spec.md §5). It exposes no mutating methods, so "the table is
// read-only during serving" is enforced by the type system rather than by
// caller discipline.
type FrozenTable struct {
	routes []*route.Route
}

// RouteFor returns the sublist of routes where route.Enabled() &&
// route.Matches(ctx), in registration order, along with each route's
// captured params (spec.md §4.5 invariant 2). A fresh slice is produced on
// every call, so concurrent callers never share mutable state.
func (ft *FrozenTable) RouteFor(ctx route.HttpContext) []Match {
	var matched []Match
	for _, r := range ft.routes {
		if !r.Enabled() {
			continue
		}
		if ok, params := r.Matches(ctx); ok {
			matched = append(matched, Match{Route: r, Params: params})
		}
	}
	return matched
}

// Routes returns all routes in the frozen table, in registration order,
// regardless of Enabled state.
func (ft *FrozenTable) Routes() []*route.Route {
	out := make([]*route.Route, len(ft.routes))
	copy(out, ft.routes)
	return out
}

// Len returns the number of routes in the frozen table.
func (ft *FrozenTable) Len() int { return len(ft.routes) }

// Match pairs a matched route with the path parameters captured for this
// particular request.
type Match struct {
	Route  *route.Route
	Params map[string]string
}
