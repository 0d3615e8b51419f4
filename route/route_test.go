package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodeshop/rex/pattern"
)

type fakeCtx struct {
	method    HttpMethod
	path      string
	params    map[string]string
	responded bool
}

func (c *fakeCtx) Method() HttpMethod { return c.method }
func (c *fakeCtx) Path() string       { return c.path }
func (c *fakeCtx) RequestID() string  { return "req-1" }
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
func (c *fakeCtx) Responded() bool { return c.responded }

func mustCompile(t *testing.T, src string) *pattern.Matcher {
	t.Helper()
	m, err := pattern.Compile(src)
	require.NoError(t, err, "compile %q", src)
	return m
}

func TestRouteMatchesMethodAndPattern(t *testing.T) {
	r := New(MethodGET, mustCompile(t, "/hello"), func(ctx HttpContext) HttpContext {
		return ctx
	}, "hello", IdentityOfFunc(nil))

	ok, _ := r.Matches(&fakeCtx{method: MethodGET, path: "/hello"})
	assert.True(t, ok, "expected match")

	ok, _ = r.Matches(&fakeCtx{method: MethodPOST, path: "/hello"})
	assert.False(t, ok, "expected method mismatch to fail")

	ok, _ = r.Matches(&fakeCtx{method: MethodGET, path: "/bye"})
	assert.False(t, ok, "expected path mismatch to fail")
}

func TestRouteMethodALLMatchesAnyVerb(t *testing.T) {
	r := New(MethodALL, mustCompile(t, "/x"), func(ctx HttpContext) HttpContext { return ctx }, "x", IdentityOfFunc(nil))
	for _, m := range []HttpMethod{MethodGET, MethodPOST, MethodDELETE} {
		ok, _ := r.Matches(&fakeCtx{method: m, path: "/x"})
		assert.True(t, ok, "expected MethodALL route to match %s", m)
	}
}

func TestRouteInvokeMergesParams(t *testing.T) {
	var gotID string
	r := New(MethodGET, mustCompile(t, "/users/:id"), func(ctx HttpContext) HttpContext {
		gotID = ctx.Params()["id"]
		return ctx
	}, "get-user", IdentityOfFunc(nil))

	ctx := &fakeCtx{method: MethodGET, path: "/users/42"}
	_, params := r.Matches(ctx)
	r.Invoke(ctx, params)

	assert.Equal(t, "42", gotID)
}

func TestRouteIdentityEquality(t *testing.T) {
	h := func(ctx HttpContext) HttpContext { return ctx }
	r1 := New(MethodGET, mustCompile(t, "/a"), h, "a", IdentityOfFunc(h))
	r2 := New(MethodGET, mustCompile(t, "/a"), h, "a-again", IdentityOfFunc(h))
	assert.Equal(t, r1.Identity(), r2.Identity(), "expected identical identity for same method/pattern/handler")

	h2 := func(ctx HttpContext) HttpContext { return ctx }
	r3 := New(MethodGET, mustCompile(t, "/a"), h2, "a", IdentityOfFunc(h2))
	assert.NotEqual(t, r1.Identity(), r3.Identity(), "expected distinct identity for distinct handler funcs")
}

func TestRouteEnabledDefaultsTrueAndToggles(t *testing.T) {
	r := New(MethodGET, mustCompile(t, "/a"), func(ctx HttpContext) HttpContext { return ctx }, "a", IdentityOfFunc(nil))
	assert.True(t, r.Enabled(), "expected route to default enabled")

	r.SetEnabled(false)
	assert.False(t, r.Enabled(), "expected route to be disabled after SetEnabled(false)")
}
