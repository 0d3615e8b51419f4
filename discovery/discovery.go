// Package discovery implements the route-discovery mechanism of spec.md
// §4.4 (RouteDiscovery) and the exclusion set of §4.3 (Exclusions).
//
// Grounded in the teacher's apis.go (APIService): a user type registers
// itself and its endpoints declaratively rather than the caller wiring each
// route by hand. Go has no runtime method-level annotations, so per
// spec.md §9's explicit allowance ("Implementers on platforms without
// reflection-based annotations must provide an equivalent programmatic
// registration API"), the "Resource" and "RouteAttr" annotations become two
// small interfaces a user type implements; reflect.Type and reflect.New
// still do the actual construction and binding, which is the part of the
// mechanism Go genuinely can do at runtime.
package discovery

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kodeshop/rex/pattern"
	"github.com/kodeshop/rex/route"
	"github.com/kodeshop/rex/rexlog"
)

// ErrDiscovery is raised when a candidate type cannot be turned into routes:
// it is not a struct type (e.g. an interface type), one of its RouteAttrs
// names a method the type lacks or whose signature is not a route.Handler,
// or a composed pattern fails to compile (spec.md §7).
type ErrDiscovery struct {
	Type   reflect.Type
	Reason string
}

func (e *ErrDiscovery) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	return fmt.Sprintf("discovery: %s: %s", name, e.Reason)
}

// ResourceInfo is the payload of the "Resource" annotation (spec.md §4.4):
// a base path prepended to every route the type declares, and a scope used
// to partition resources between routers sharing an assembly.
type ResourceInfo struct {
	BasePath string
	Scope    string
}

// Resource marks a type as a container of routed methods — the Go stand-in
// for the source's "Resource" annotation on a type.
type Resource interface {
	ResourceInfo() ResourceInfo
}

// RouteAttr is the payload of one "RouteAttr" annotation on a method
// (spec.md §4.4): the HTTP method filter, the path fragment, and the name
// of the instance method to bind as the handler. A method may appear
// multiple times in RouteSource.Routes to produce multiple routes from one
// handler, exactly as multiple RouteAttr annotations on one method would.
type RouteAttr struct {
	Method     route.HttpMethod
	PathInfo   string
	MethodName string
}

// RouteSource is the Go stand-in for a type's "RouteAttr" method
// annotations: it enumerates, in declaration order, every route the type
// wants registered.
type RouteSource interface {
	Routes() []RouteAttr
}

// DiscoverType runs the algorithm of spec.md §4.4 for a single type T,
// given as a reflect.Type of the (non-pointer) struct. scope is the
// router's configured scope; an empty scope accepts every resource.
//
// A type that does not implement Resource yields (nil, nil) — "lacks the
// Resource annotation" is not an error, it just means T is not a discovery
// candidate (spec.md §4.4 step 1); a Resource that does not implement
// RouteSource also yields (nil, nil). A type that is not a struct, or whose
// RouteAttrs cannot be bound or compiled, is *ErrDiscovery.
func DiscoverType(t reflect.Type, scope string, logger rexlog.Logger) ([]*route.Route, error) {
	if logger == nil {
		logger = rexlog.Default
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &ErrDiscovery{Type: t, Reason: "not a concrete struct type"}
	}

	recv := reflect.New(t) // freshly constructed receiver (spec.md §4.2)
	resourceI, ok := recv.Interface().(Resource)
	if !ok {
		return nil, nil // step 1: lacks the Resource annotation
	}

	info := resourceI.ResourceInfo()
	if scope != "" && info.Scope != scope {
		logger.Trace(fmt.Sprintf("discovery: %s: scope %q does not match router scope %q, skipped", t, info.Scope, scope))
		return nil, nil // step 2
	}

	basePath := normalizeBasePath(info.BasePath) // step 3

	sourceI, ok := recv.Interface().(RouteSource)
	if !ok {
		return nil, nil // Resource with no routed methods
	}

	var routes []*route.Route
	for _, attr := range sourceI.Routes() { // step 4, declared order
		handler, err := bindMethod(recv, t, attr.MethodName)
		if err != nil {
			return nil, err
		}

		finalPattern := composePath(basePath, attr.PathInfo)
		matcher, err := pattern.Compile(finalPattern)
		if err != nil {
			return nil, &ErrDiscovery{Type: t, Reason: err.Error()}
		}

		method := attr.Method
		if method == "" {
			method = route.MethodALL
		}

		id := route.IdentityOfMethod(t.String(), attr.MethodName)
		routes = append(routes, route.New(method, matcher, handler, t.String()+"."+attr.MethodName, id))
	}

	return routes, nil
}

// normalizeBasePath ensures a leading '/' and strips any trailing '/'
// (spec.md §4.4 step 3).
func normalizeBasePath(basePath string) string {
	if basePath == "" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimSuffix(basePath, "/")
}

// composePath derives the final route pattern from a method's pathInfo and
// the resource's basePath (spec.md §4.4 step 4).
func composePath(basePath, pathInfo string) string {
	prefix := ""
	if strings.HasPrefix(pathInfo, "^") {
		prefix = "^"
		pathInfo = pathInfo[1:]
		if !strings.HasPrefix(pathInfo, "/") {
			pathInfo = "/" + pathInfo
		}
	} else if !strings.HasPrefix(pathInfo, "/") {
		pathInfo = "/" + pathInfo
	}
	return prefix + basePath + pathInfo
}

// bindMethod binds a handler from an instance method by name, the runtime
// part of "derives its handler by binding an instance method to a freshly
// constructed receiver" (spec.md §4.2).
func bindMethod(recv reflect.Value, t reflect.Type, methodName string) (route.Handler, error) {
	m := recv.MethodByName(methodName)
	if !m.IsValid() {
		return nil, &ErrDiscovery{Type: t, Reason: "no method named " + methodName}
	}
	fn, ok := m.Interface().(func(route.HttpContext) route.HttpContext)
	if !ok {
		return nil, &ErrDiscovery{Type: t, Reason: methodName + " does not implement func(HttpContext) HttpContext"}
	}
	return route.Handler(fn), nil
}
