package discovery

import (
	"reflect"
	"sync"

	"github.com/kodeshop/rex/rexlog"
	"github.com/kodeshop/rex/route"
)

// Exclusions is the Go stand-in for spec.md §4.3: a set of individual types
// and a set of namespaces (Go's nearest equivalent is the package path)
// that discovery skips even when they would otherwise be discoverable.
// Grounded in the acl package's set-of-identity idiom (acl.Privilege.ID /
// acl.User.Privileges), generalized from a single identity field to a
// two-level type+namespace set.
type Exclusions struct {
	mu         sync.RWMutex
	types      map[reflect.Type]bool
	namespaces map[string]bool
}

// NewExclusions returns an empty Exclusions set.
func NewExclusions() *Exclusions {
	return &Exclusions{
		types:      map[reflect.Type]bool{},
		namespaces: map[string]bool{},
	}
}

// ExcludeType adds t to the exclusion set.
func (e *Exclusions) ExcludeType(t reflect.Type) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types[t] = true
}

// ExcludeNamespace adds ns (a Go package path, e.g. "example.com/app/admin")
// to the exclusion set. Every type whose PkgPath equals ns is skipped.
func (e *Exclusions) ExcludeNamespace(ns string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.namespaces[ns] = true
}

// IsExcluded reports whether t is excluded, either directly or because its
// package path is an excluded namespace (spec.md §4.3).
func (e *Exclusions) IsExcluded(t reflect.Type) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.types[t] {
		return true
	}
	return e.namespaces[t.PkgPath()]
}

// Assembly is a build-time, ordered registry of discoverable types — the
// Go stand-in for "assembly scanning", since Go has no runtime type
// catalogue to scan. Grounded in the teacher's global() bookkeeping in
// global.go and in database/sql.Register's pattern of eager, ordered,
// caller-driven registration.
type Assembly struct {
	mu    sync.Mutex
	types []reflect.Type
}

// NewAssembly returns an empty Assembly.
func NewAssembly() *Assembly {
	return &Assembly{}
}

// RegisterType appends t to the assembly. Registration order is discovery
// order (spec.md §4.4); registering the same type twice discovers it twice,
// which routing.Table.Register then silently dedups by route identity.
func (a *Assembly) RegisterType(t reflect.Type) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, t)
}

// Types returns the registered types in registration order.
func (a *Assembly) Types() []reflect.Type {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]reflect.Type, len(a.types))
	copy(out, a.types)
	return out
}

// Discover walks the assembly in registration order, skipping excluded
// types, and returns every route every non-excluded Resource type yields
// (spec.md §4.4, §8 scenario 6). excl may be nil, meaning nothing is
// excluded. The walk stops at the first type that fails to discover —
// a malformed registration is fatal to the whole Discover call, the same
// way a single bad import(type) call is fatal to that call (spec.md §7).
func (a *Assembly) Discover(excl *Exclusions, scope string, logger rexlog.Logger) ([]*route.Route, error) {
	if logger == nil {
		logger = rexlog.Default
	}
	var out []*route.Route
	for _, t := range a.Types() {
		if excl != nil && excl.IsExcluded(t) {
			logger.Trace("discovery: " + t.String() + " excluded, skipped")
			continue
		}
		routes, err := DiscoverType(t, scope, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, routes...)
	}
	return out, nil
}
