package discovery

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodeshop/rex/route"
)

type fakeCtx struct {
	method route.HttpMethod
	path   string
	params map[string]string
}

func (c *fakeCtx) Method() route.HttpMethod { return c.method }
func (c *fakeCtx) Path() string             { return c.path }
func (c *fakeCtx) RequestID() string        { return "req-1" }
func (c *fakeCtx) Params() map[string]string {
	if c.params == nil {
		c.params = map[string]string{}
	}
	return c.params
}
func (c *fakeCtx) MergeParams(p map[string]string) {
	if c.params == nil {
		c.params = map[string]string{}
	}
	for k, v := range p {
		c.params[k] = v
	}
}
func (c *fakeCtx) Responded() bool { return false }

// Users is a plain discoverable resource: BasePath "/users", no scope.
type Users struct{}

func (Users) ResourceInfo() ResourceInfo { return ResourceInfo{BasePath: "/users"} }

func (Users) Routes() []RouteAttr {
	return []RouteAttr{
		{Method: route.MethodGET, PathInfo: "/:id", MethodName: "Get"},
		{Method: route.MethodPOST, PathInfo: "", MethodName: "Create"},
	}
}

func (u *Users) Get(ctx route.HttpContext) route.HttpContext    { return ctx }
func (u *Users) Create(ctx route.HttpContext) route.HttpContext { return ctx }

// Admin is scoped to "internal" and is the type excluded in
// TestAssemblyDiscoverSkipsExcludedType.
type Admin struct{}

func (Admin) ResourceInfo() ResourceInfo { return ResourceInfo{BasePath: "/admin", Scope: "internal"} }
func (Admin) Routes() []RouteAttr {
	return []RouteAttr{{Method: route.MethodGET, PathInfo: "/stats", MethodName: "Stats"}}
}
func (a *Admin) Stats(ctx route.HttpContext) route.HttpContext { return ctx }

// Plain is not a Resource at all.
type Plain struct{}

// RegexResource exercises the "^"-prefixed regex PathInfo form.
type RegexResource struct{}

func (RegexResource) ResourceInfo() ResourceInfo { return ResourceInfo{BasePath: "/files"} }
func (RegexResource) Routes() []RouteAttr {
	return []RouteAttr{{Method: route.MethodGET, PathInfo: `^/(?P<path>.+)\.txt$`, MethodName: "Get"}}
}
func (r *RegexResource) Get(ctx route.HttpContext) route.HttpContext { return ctx }

func TestDiscoverTypeBuildsRoutesInDeclaredOrder(t *testing.T) {
	routes, err := DiscoverType(reflect.TypeOf(Users{}), "", nil)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, route.MethodGET, routes[0].Method())
	assert.Equal(t, route.MethodPOST, routes[1].Method())

	ok, params := routes[0].Matches(&fakeCtx{method: route.MethodGET, path: "/users/7"})
	assert.True(t, ok)
	assert.Equal(t, "7", params["id"])

	ok, _ = routes[1].Matches(&fakeCtx{method: route.MethodPOST, path: "/users"})
	assert.True(t, ok, "want /users to match POST /users")
}

func TestDiscoverTypeSkipsNonResource(t *testing.T) {
	routes, err := DiscoverType(reflect.TypeOf(Plain{}), "", nil)
	require.NoError(t, err)
	assert.Nil(t, routes, "want no routes for a non-Resource type")
}

func TestDiscoverTypeScopeMismatchYieldsNoRoutes(t *testing.T) {
	routes, err := DiscoverType(reflect.TypeOf(Admin{}), "public", nil)
	require.NoError(t, err)
	assert.Nil(t, routes, "want no routes when scope does not match")

	routes, err = DiscoverType(reflect.TypeOf(Admin{}), "internal", nil)
	require.NoError(t, err)
	assert.Len(t, routes, 1, "want 1 route for matching scope")
}

func TestDiscoverTypeRegexPathInfo(t *testing.T) {
	routes, err := DiscoverType(reflect.TypeOf(RegexResource{}), "", nil)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	ok, params := routes[0].Matches(&fakeCtx{method: route.MethodGET, path: "/files/report.txt"})
	assert.True(t, ok)
	assert.Equal(t, "report", params["path"])
}

func TestDiscoverTypeUnknownMethodNameIsError(t *testing.T) {
	// brokenResource has a Resource/RouteSource pair pointing at a method
	// that does not exist on the type.
	routes, err := DiscoverType(reflect.TypeOf(brokenResource{}), "", nil)
	require.Error(t, err, "expected ErrDiscovery")
	assert.Nil(t, routes)
	assert.IsType(t, &ErrDiscovery{}, err)
}

type brokenResource struct{}

func (brokenResource) ResourceInfo() ResourceInfo { return ResourceInfo{} }
func (brokenResource) Routes() []RouteAttr {
	return []RouteAttr{{Method: route.MethodGET, PathInfo: "/x", MethodName: "DoesNotExist"}}
}

func TestDiscoverTypeRejectsNonStruct(t *testing.T) {
	var iface interface{ Foo() }
	ifaceType := reflect.TypeOf(&iface).Elem()
	_, err := DiscoverType(ifaceType, "", nil)
	assert.Error(t, err, "expected ErrDiscovery for a non-struct type")
}

func TestAssemblyDiscoverSkipsExcludedType(t *testing.T) {
	a := NewAssembly()
	a.RegisterType(reflect.TypeOf(Users{}))
	a.RegisterType(reflect.TypeOf(Admin{}))

	excl := NewExclusions()
	excl.ExcludeType(reflect.TypeOf(Admin{}))

	routes, err := a.Discover(excl, "", nil)
	require.NoError(t, err)
	assert.Len(t, routes, 2, "want only Users's 2 routes (Admin excluded)")
}

func TestAssemblyDiscoverPreservesRegistrationOrder(t *testing.T) {
	a := NewAssembly()
	a.RegisterType(reflect.TypeOf(RegexResource{}))
	a.RegisterType(reflect.TypeOf(Users{}))

	routes, err := a.Discover(nil, "", nil)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "discovery.RegexResource.Get", routes[0].Name(), "want RegexResource's route discovered first")
}
