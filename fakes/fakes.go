// Package fakes registers test doubles for the browser globals window,
// document, localStorage, sessionStorage and navigator into a service
// container.
//
// A test describes what it wants with a Config and calls Setup (or embeds
// Suite). Before the test body runs the window mock is reset, and for every
// enabled entry the matching fake is registered under its service key:
//
//	owner := registry.New()
//	fakes.Setup(t, owner, fakes.Config{
//		Navigator:    fakes.Override(object.Object{"userAgent": "TestAgent"}),
//		LocalStorage: true,
//	})
//
// Entries left at their zero value register nothing.
package fakes

import (
	"fmt"
	"testing"

	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/Maxwellism/browserfakes/windowmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	KeyWindow         = "service:browser/window"
	KeyDocument       = "service:browser/document"
	KeyLocalStorage   = "service:browser/local-storage"
	KeySessionStorage = "service:browser/session-storage"
	KeyNavigator      = "service:browser/navigator"
)

// Keys lists the service keys in registration order.
var Keys = []string{KeyWindow, KeyDocument, KeyLocalStorage, KeySessionStorage, KeyNavigator}

type Config struct {
	Window         Option
	Document       Option
	LocalStorage   bool
	SessionStorage bool
	Navigator      Option
}

// Empty reports whether no entry is enabled.
func (c Config) Empty() bool {
	return !c.Window.Enabled() && !c.Document.Enabled() && !c.Navigator.Enabled() &&
		!c.LocalStorage && !c.SessionStorage
}

type options struct {
	mock   *windowmock.Mock
	logger *zap.Logger
}

type Opt func(*options)

// WithWindowMock makes the harness drive m instead of a mock with default
// options.
func WithWindowMock(m *windowmock.Mock) Opt {
	return func(o *options) { o.mock = m }
}

func WithLogger(logger *zap.Logger) Opt {
	return func(o *options) { o.logger = logger }
}

// Harness is one installed set of fakes.
type Harness struct {
	owner      registry.Owner
	mock       *windowmock.Mock
	registered []string
	logger     *zap.Logger
}

// Install activates the window mock and registers the enabled fakes on owner.
// Each key is registered at most once.
func Install(owner registry.Owner, cfg Config, opts ...Opt) (*Harness, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mock == nil {
		m, err := windowmock.New(windowmock.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		o.mock = m
	}
	h := &Harness{owner: owner, mock: o.mock, logger: o.logger.Named("fakes")}
	h.mock.Setup()

	if err := h.install(cfg); err != nil {
		h.Teardown()
		return nil, err
	}
	return h, nil
}

func (h *Harness) install(cfg Config) error {
	if cfg.Window.Enabled() {
		if err := h.registerObject(KeyWindow, cfg.Window, h.mock.Window); err != nil {
			return err
		}
		given, _ := object.AsObject(cfg.Window.Partial()["location"])
		windowmock.Patch(h.mock.Window(), given)
	}
	if cfg.Document.Enabled() {
		if err := h.registerObject(KeyDocument, cfg.Document, h.mock.Document); err != nil {
			return err
		}
	}
	if cfg.LocalStorage {
		h.register(KeyLocalStorage, h.storageFactory(storage.Local))
	}
	if cfg.SessionStorage {
		h.register(KeySessionStorage, h.storageFactory(storage.Session))
	}
	if cfg.Navigator.Enabled() {
		if err := h.registerObject(KeyNavigator, cfg.Navigator, h.mock.Navigator); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) registerObject(key string, opt Option, resolve func() object.Object) error {
	service, err := MaybeMakeLazy(opt, resolve)
	if err != nil {
		return fmt.Errorf("fakes: %s: %w", key, err)
	}
	h.register(key, service)
	h.logger.Debug("fake installed", zap.String("key", key), zap.Stringer("kind", opt.Kind()))
	return nil
}

// storageFactory hands the container the window mock's own store, so the
// registered service and window.localStorage (or sessionStorage) are the
// same object.
func (h *Harness) storageFactory(kind storage.Kind) registry.Factory {
	mock := h.mock
	return func() any { return mock.Storage(kind) }
}

func (h *Harness) register(key string, v any) {
	h.owner.Register(key, v)
	h.registered = append(h.registered, key)
}

func (h *Harness) Window() *windowmock.Mock { return h.mock }

// Registered returns the keys this harness registered, in order.
func (h *Harness) Registered() []string {
	return append([]string(nil), h.registered...)
}

// Teardown unregisters everything Install registered and deactivates the
// window mock. It is safe to call more than once.
func (h *Harness) Teardown() {
	for _, key := range h.registered {
		h.owner.Unregister(key)
	}
	h.registered = nil
	h.mock.Teardown()
}

// Setup installs cfg for the duration of t.
func Setup(t testing.TB, owner registry.Owner, cfg Config, opts ...Opt) *Harness {
	t.Helper()
	h, err := Install(owner, cfg, opts...)
	require.NoError(t, err, "install browser fakes")
	t.Cleanup(h.Teardown)
	return h
}
