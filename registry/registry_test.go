package registry_test

import (
	"testing"

	"github.com/Maxwellism/browserfakes/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeService struct {
	id int
}

func TestRegisterLookup(t *testing.T) {
	c := registry.New(registry.WithLogger(zaptest.NewLogger(t)))

	_, ok := c.Lookup("service:browser/window")
	assert.False(t, ok)

	c.Register("service:browser/window", "first")
	c.Register("service:browser/window", "second")

	v, ok := c.Lookup("service:browser/window")
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, []string{"service:browser/window"}, c.Names())

	c.Unregister("service:browser/window")
	assert.False(t, c.Has("service:browser/window"))
	assert.Empty(t, c.Names())
}

func TestFactoryIsInstantiatedOnce(t *testing.T) {
	c := registry.New()
	calls := 0
	c.Register("service:fake", registry.Factory(func() any {
		calls++
		return &fakeService{id: calls}
	}))
	assert.Equal(t, 0, calls, "factories are lazy")

	first, ok := registry.LookupAs[*fakeService](c, "service:fake")
	require.True(t, ok)
	second, ok := registry.LookupAs[*fakeService](c, "service:fake")
	require.True(t, ok)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	raw, ok := c.Registration("service:fake")
	require.True(t, ok)
	assert.IsType(t, registry.Factory(nil), raw)
}

func TestReregisterDropsInstance(t *testing.T) {
	c := registry.New()
	n := 0
	factory := registry.Factory(func() any {
		n++
		return &fakeService{id: n}
	})
	c.Register("service:fake", factory)
	first, _ := registry.LookupAs[*fakeService](c, "service:fake")

	c.Register("service:fake", factory)
	second, _ := registry.LookupAs[*fakeService](c, "service:fake")

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, second.id)
}

func TestLookupAsWrongType(t *testing.T) {
	c := registry.New()
	c.Register("service:fake", 42)

	_, ok := registry.LookupAs[string](c, "service:fake")
	assert.False(t, ok)
}

func TestRegisterEmptyNamePanics(t *testing.T) {
	assert.PanicsWithValue(t, "registry: register with empty name", func() { registry.New().Register("", 1) })
}
