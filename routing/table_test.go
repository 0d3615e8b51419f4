package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodeshop/rex/pattern"
	"github.com/kodeshop/rex/route"
)

type fakeCtx struct {
	method route.HttpMethod
	path   string
	params map[string]string
}

func (c *fakeCtx) Method() route.HttpMethod  { return c.method }
func (c *fakeCtx) Path() string              { return c.path }
func (c *fakeCtx) RequestID() string         { return "r1" }
func (c *fakeCtx) Params() map[string]string { return c.params }
func (c *fakeCtx) MergeParams(p map[string]string) {
	if c.params == nil {
		c.params = map[string]string{}
	}
	for k, v := range p {
		c.params[k] = v
	}
}
func (c *fakeCtx) Responded() bool { return false }

func mustRoute(t *testing.T, method route.HttpMethod, pat string, name string, h route.Handler) *route.Route {
	t.Helper()
	m, err := pattern.Compile(pat)
	require.NoError(t, err)
	return route.New(method, m, h, name, route.IdentityOfFunc(h))
}

func TestTableRegisterDedups(t *testing.T) {
	tbl := NewTable()
	h := func(ctx route.HttpContext) route.HttpContext { return ctx }
	r := mustRoute(t, route.MethodGET, "/p", "p", h)

	assert.True(t, tbl.Register(r), "expected first register to add")
	assert.False(t, tbl.Register(r), "expected second identical register to be a no-op")
	assert.Equal(t, 1, tbl.Len())
}

func TestTableImportIsIdempotent(t *testing.T) {
	a := NewTable()
	h := func(ctx route.HttpContext) route.HttpContext { return ctx }
	a.Register(mustRoute(t, route.MethodGET, "/p", "p", h))

	b := NewTable()
	b.Import(a)
	b.Import(a)

	assert.Equal(t, 1, b.Len(), "want len 1 after double import")
}

func TestTableImportPreservesOrder(t *testing.T) {
	a := NewTable()
	b := NewTable()
	h1 := func(ctx route.HttpContext) route.HttpContext { return ctx }
	h2 := func(ctx route.HttpContext) route.HttpContext { return ctx }
	a.Register(mustRoute(t, route.MethodGET, "/1", "one", h1))
	b.Register(mustRoute(t, route.MethodGET, "/2", "two", h2))

	merged := NewTable()
	merged.Import(a)
	merged.Import(b)

	routes := merged.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "one", routes[0].Name())
	assert.Equal(t, "two", routes[1].Name())
}

func TestFrozenTableRouteForOrderAndEnabled(t *testing.T) {
	tbl := NewTable()
	var calls []string
	h1 := func(ctx route.HttpContext) route.HttpContext { calls = append(calls, "h1"); return ctx }
	h2 := func(ctx route.HttpContext) route.HttpContext { calls = append(calls, "h2"); return ctx }
	r1 := mustRoute(t, route.MethodGET, "/a", "h1", h1)
	r2 := mustRoute(t, route.MethodGET, "/a", "h2", h2)
	tbl.Register(r1)
	tbl.Register(r2)

	frozen := tbl.Freeze()
	ctx := &fakeCtx{method: route.MethodGET, path: "/a"}
	matched := frozen.RouteFor(ctx)
	require.Len(t, matched, 2)
	assert.Equal(t, "h1", matched[0].Route.Name())
	assert.Equal(t, "h2", matched[1].Route.Name())

	r1.SetEnabled(false)
	matched = frozen.RouteFor(ctx)
	require.Len(t, matched, 1)
	assert.Equal(t, "h2", matched[0].Route.Name())
}

func TestFreezeSnapshotsAgainstLaterMutation(t *testing.T) {
	tbl := NewTable()
	h := func(ctx route.HttpContext) route.HttpContext { return ctx }
	tbl.Register(mustRoute(t, route.MethodGET, "/a", "a", h))
	frozen := tbl.Freeze()

	tbl.Register(mustRoute(t, route.MethodGET, "/b", "b", h))
	assert.Equal(t, 1, frozen.Len(), "expected frozen snapshot to be unaffected by later registration")
}
