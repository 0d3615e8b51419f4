package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLiteral(t *testing.T) {
	m, err := Compile("/users/:id")
	require.NoError(t, err)

	ok, params := m.Match("/users/42")
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"id": "42"}, params)

	ok, _ = m.Match("/users/42/extra")
	assert.False(t, ok, "expected no match for longer path")
}

func TestCompileRegex(t *testing.T) {
	m, err := Compile(`^/files/(?P<path>.+)`)
	require.NoError(t, err)

	ok, params := m.Match("/files/a/b/c.txt")
	assert.True(t, ok)
	assert.Equal(t, "a/b/c.txt", params["path"])
}

func TestCompileEmptyMatchesAnything(t *testing.T) {
	m, err := Compile("")
	require.NoError(t, err)

	ok, _ := m.Match("/anything/at/all")
	assert.True(t, ok, "expected empty pattern to match")
}

func TestCompileDuplicateParamIsError(t *testing.T) {
	_, err := Compile("/:id/:id")
	assert.Error(t, err, "expected duplicate parameter error")

	_, err = Compile(`^/(?P<id>\d+)/(?P<id>\d+)`)
	assert.Error(t, err, "expected duplicate parameter error in regex form")
}

func TestParamKeysEqualParamNames(t *testing.T) {
	m, err := Compile("/a/:x/b/:y")
	require.NoError(t, err)

	ok, params := m.Match("/a/1/b/2")
	require.True(t, ok)

	names := m.ParamNames()
	assert.Len(t, params, len(names))
	for _, n := range names {
		assert.Contains(t, params, n)
	}
}

func TestLiteralSlashOnlyMatchesRoot(t *testing.T) {
	m, err := Compile("/")
	require.NoError(t, err)

	ok, _ := m.Match("/")
	assert.True(t, ok, "expected / to match /")

	ok, _ = m.Match("/foo")
	assert.False(t, ok, "expected / to not match /foo")
}
