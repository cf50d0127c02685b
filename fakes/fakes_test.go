package fakes_test

import (
	"strings"
	"testing"

	"github.com/Maxwellism/browserfakes/fakes"
	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/proxy"
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/Maxwellism/browserfakes/windowmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// ownerMock records every call the harness makes on the container.
type ownerMock struct {
	mock.Mock
}

func (o *ownerMock) Register(name string, v any) { o.Called(name, v) }
func (o *ownerMock) Unregister(name string)      { o.Called(name) }

func newWindowMock(t *testing.T) *windowmock.Mock {
	t.Helper()
	m, err := windowmock.New(windowmock.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return m
}

func TestEmptyConfigRegistersNothing(t *testing.T) {
	owner := &ownerMock{}
	h := fakes.Setup(t, owner, fakes.Config{})

	assert.Empty(t, h.Registered())
	owner.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	assert.True(t, h.Window().Active(), "the window mock is active even without registrations")
}

func TestFalseEntriesRegisterNothing(t *testing.T) {
	owner := registry.New()
	fakes.Setup(t, owner, fakes.Config{
		Window:    fakes.Enable(false),
		Document:  fakes.Default(),
		Navigator: fakes.Enable(false),
	})
	assert.Empty(t, owner.Names())
}

func TestWindowOnly(t *testing.T) {
	owner := &ownerMock{}
	owner.On("Register", fakes.KeyWindow, mock.AnythingOfType("*proxy.Service")).Once()
	owner.On("Unregister", fakes.KeyWindow).Once()

	h, err := fakes.Install(owner, fakes.Config{Window: fakes.Passthrough()})
	require.NoError(t, err)
	owner.AssertNumberOfCalls(t, "Register", 1)

	h.Teardown()
	owner.AssertExpectations(t)
	assert.False(t, h.Window().Active())
}

func TestPassthroughWrapsEveryObject(t *testing.T) {
	owner := registry.New()
	m := newWindowMock(t)
	fakes.Setup(t, owner, fakes.Config{
		Window:    fakes.Passthrough(),
		Document:  fakes.Passthrough(),
		Navigator: fakes.Passthrough(),
	}, fakes.WithWindowMock(m))

	for key, target := range map[string]func() object.Object{
		fakes.KeyWindow:    m.Window,
		fakes.KeyDocument:  m.Document,
		fakes.KeyNavigator: m.Navigator,
	} {
		svc, ok := registry.LookupAs[*proxy.Service](owner, key)
		require.True(t, ok, key)
		assert.Equal(t, object.Keys(target()), svc.Keys(), key)
	}
}

func TestPassthroughFollowsWindowReset(t *testing.T) {
	owner := registry.New()
	m := newWindowMock(t)
	fakes.Setup(t, owner, fakes.Config{Navigator: fakes.Passthrough()}, fakes.WithWindowMock(m))
	nav, _ := registry.LookupAs[*proxy.Service](owner, fakes.KeyNavigator)

	m.Navigator()["userAgent"] = "mutated"
	assert.Equal(t, "mutated", nav.Get("userAgent"))

	m.Reset()
	assert.Equal(t, windowmock.DefaultUserAgent, nav.Get("userAgent"))
}

func TestNavigatorOverride(t *testing.T) {
	owner := registry.New()
	m := newWindowMock(t)
	fakes.Setup(t, owner, fakes.Config{
		Navigator: fakes.Override(object.Object{"userAgent": "TestAgent"}),
	}, fakes.WithWindowMock(m))

	nav, ok := registry.LookupAs[*proxy.Service](owner, fakes.KeyNavigator)
	require.True(t, ok)
	assert.Equal(t, "TestAgent", nav.Get("userAgent"))
	assert.Equal(t, "en-US", nav.Get("language"))
	assert.Equal(t, true, nav.Get("onLine"))
	assert.Equal(t, []string{fakes.KeyNavigator}, owner.Names())
}

func TestWindowOverrideIsPatched(t *testing.T) {
	owner := registry.New()
	h := fakes.Setup(t, owner, fakes.Config{
		Window: fakes.Override(object.Object{
			"location":   object.Object{"hostname": "example.org", "port": "", "protocol": "https:"},
			"innerWidth": 320,
		}),
	})

	win, _ := registry.LookupAs[*proxy.Service](owner, fakes.KeyWindow)
	host, _ := win.Lookup("location", "host")
	origin, _ := win.Lookup("location", "origin")
	href, _ := win.Lookup("location", "href")
	assert.Equal(t, "example.org", host)
	assert.Equal(t, "https://example.org", origin)
	assert.Equal(t, "https://example.org/", href)
	assert.Equal(t, 320, win.Get("innerWidth"))
	assert.Equal(t, 320, h.Window().Window()["innerWidth"])
}

func TestWindowOverrideKeepsExplicitLocationFields(t *testing.T) {
	owner := registry.New()
	fakes.Setup(t, owner, fakes.Config{
		Window: fakes.Override(object.Object{
			"location": object.Object{
				"host":   "example.com",
				"origin": "https://example.com",
				"href":   "https://example.com/cart",
			},
		}),
	})

	win, _ := registry.LookupAs[*proxy.Service](owner, fakes.KeyWindow)
	host, _ := win.Lookup("location", "host")
	origin, _ := win.Lookup("location", "origin")
	href, _ := win.Lookup("location", "href")
	hostname, _ := win.Lookup("location", "hostname")
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "https://example.com", origin)
	assert.Equal(t, "https://example.com/cart", href)
	assert.Equal(t, "localhost", hostname)
}

func TestDocumentRealService(t *testing.T) {
	owner := registry.New()
	h := fakes.Setup(t, owner, fakes.Config{Document: fakes.RealService()})

	doc, ok := registry.LookupAs[object.Object](owner, fakes.KeyDocument)
	require.True(t, ok)
	doc["title"] = "set through the registry"
	assert.Equal(t, "set through the registry", h.Window().Document()["title"])
}

func TestStorages(t *testing.T) {
	owner := &ownerMock{}
	owner.On("Register", fakes.KeyLocalStorage, mock.Anything).Once()
	owner.On("Register", fakes.KeySessionStorage, mock.Anything).Once()
	owner.On("Unregister", mock.Anything)

	h := fakes.Setup(t, owner, fakes.Config{LocalStorage: true, SessionStorage: true})

	owner.AssertNumberOfCalls(t, "Register", 2)
	for _, call := range owner.Calls {
		if call.Method != "Register" {
			continue
		}
		factory, ok := call.Arguments.Get(1).(registry.Factory)
		require.True(t, ok)
		s := factory().(*storage.Storage)
		switch call.Arguments.String(0) {
		case fakes.KeyLocalStorage:
			assert.Equal(t, storage.Local, s.Kind())
			assert.Same(t, h.Window().LocalStorage(), s)
		case fakes.KeySessionStorage:
			assert.Equal(t, storage.Session, s.Kind())
			assert.Same(t, h.Window().SessionStorage(), s)
		}
	}
}

func TestStorageLogsReachHarnessLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	owner := registry.New()
	fakes.Setup(t, owner, fakes.Config{LocalStorage: true}, fakes.WithLogger(zap.New(core)))

	local, ok := registry.LookupAs[*storage.Storage](owner, fakes.KeyLocalStorage)
	require.True(t, ok)
	err := local.SetItem("blob", strings.Repeat("x", storage.DefaultQuota))
	require.ErrorIs(t, err, storage.ErrQuotaExceeded)

	assert.Equal(t, 1, logs.FilterMessage("quota exceeded").Len())
}

func TestStoragesResolveThroughContainer(t *testing.T) {
	owner := registry.New()
	fakes.Setup(t, owner, fakes.Config{LocalStorage: true})

	local, ok := registry.LookupAs[*storage.Storage](owner, fakes.KeyLocalStorage)
	require.True(t, ok)
	require.NoError(t, local.SetItem("k", "v"))
	again, _ := registry.LookupAs[*storage.Storage](owner, fakes.KeyLocalStorage)
	assert.Same(t, local, again)
	assert.False(t, owner.Has(fakes.KeySessionStorage))
}

func TestOverrideErrorFailsInstall(t *testing.T) {
	owner := registry.New()
	_, err := fakes.Install(owner, fakes.Config{
		Window:    fakes.Passthrough(),
		Navigator: fakes.Override(object.Object{"userAgent": object.Object{"brand": "x"}}),
	})

	assert.ErrorIs(t, err, object.ErrNotObject)
	assert.Contains(t, err.Error(), fakes.KeyNavigator)
	assert.Empty(t, owner.Names(), "partial installs are rolled back")
}

func TestTeardownUnregisters(t *testing.T) {
	owner := registry.New()
	owner.Register("service:other", 1)
	h, err := fakes.Install(owner, fakes.Config{
		Window:         fakes.Passthrough(),
		Document:       fakes.Passthrough(),
		LocalStorage:   true,
		SessionStorage: true,
		Navigator:      fakes.Passthrough(),
	})
	require.NoError(t, err)
	assert.Equal(t, fakes.Keys, h.Registered())

	h.Teardown()
	h.Teardown()
	assert.Equal(t, []string{"service:other"}, owner.Names())
}

func TestConfigEmpty(t *testing.T) {
	assert.True(t, fakes.Config{}.Empty())
	assert.False(t, fakes.Config{SessionStorage: true}.Empty())
	assert.False(t, fakes.Config{Document: fakes.RealService()}.Empty())
}
