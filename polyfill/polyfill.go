// Package polyfill installs the registered browser fakes into a QuickJS
// context, so scripts under test see window, document, navigator and the web
// storages as globals backed by the Go fakes.
package polyfill

import (
	"fmt"

	"github.com/Maxwellism/browserfakes/fakes"
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/Maxwellism/browserfakes/script"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/buke/quickjs-go"
	"go.uber.org/zap"
)

// Globals maps JS global names to the service keys they are read from.
var Globals = []struct {
	Name string
	Key  string
}{
	{"window", fakes.KeyWindow},
	{"document", fakes.KeyDocument},
	{"navigator", fakes.KeyNavigator},
	{"localStorage", fakes.KeyLocalStorage},
	{"sessionStorage", fakes.KeySessionStorage},
}

type Env struct {
	rt       quickjs.Runtime
	ctx      *quickjs.Context
	resolver registry.Resolver
	helpers  quickjs.Value
	bridged  bool
	storages map[*storage.Storage]int32
	logger   *zap.Logger
}

type Opt func(*Env)

func WithLogger(logger *zap.Logger) Opt {
	return func(e *Env) { e.logger = logger }
}

// NewEnv creates a runtime and installs console, print and every browser
// fake registered on r. Globals whose key is not registered are left out,
// except window, which falls back to globalThis.
func NewEnv(r registry.Resolver, opts ...Opt) (*Env, error) {
	e := &Env{resolver: r, storages: map[*storage.Storage]int32{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("polyfill")
	e.rt = quickjs.NewRuntime()
	e.ctx = e.rt.NewContext()

	e.injectConsole()
	e.injectPrint()
	if err := e.injectBridge(); err != nil {
		e.Close()
		return nil, err
	}
	for _, g := range Globals {
		if err := e.injectGlobal(g.Name, g.Key); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *Env) injectGlobal(name, key string) error {
	v, ok := e.resolver.Lookup(key)
	if !ok {
		if name == "window" {
			injectWindow(e.ctx)
		}
		return nil
	}
	value, err := e.serviceValue(key, v)
	if err != nil {
		return fmt.Errorf("polyfill: install %s: %w", name, err)
	}
	e.ctx.Globals().Set(name, value)
	e.logger.Debug("global installed", zap.String("name", name), zap.String("key", key))
	return nil
}

// Eval runs code and returns its completion value decoded from JSON;
// undefined decodes to nil.
func (e *Env) Eval(code string) (any, error) {
	ret, err := e.ctx.Eval(code)
	defer ret.Free()
	if err != nil {
		return nil, fmt.Errorf("polyfill: eval: %w", err)
	}
	if ret.IsUndefined() || ret.IsFunction() {
		return nil, nil
	}
	var res any
	if err := json.Unmarshal([]byte(ret.JSONStringify()), &res); err != nil {
		return nil, fmt.Errorf("polyfill: decode result: %w", err)
	}
	return res, nil
}

// EvalTS compiles TypeScript code before evaluating it.
func (e *Env) EvalTS(code string, opts ...script.Opt) (any, error) {
	js, err := script.Transform(code, opts...)
	if err != nil {
		return nil, err
	}
	return e.Eval(js)
}

func (e *Env) Close() {
	if e.bridged {
		e.helpers.Free()
	}
	e.ctx.Close()
	e.rt.Close()
}

// injectWindow makes window an alias of the global object.
func injectWindow(ctx *quickjs.Context) {
	ctx.Globals().Set("window", ctx.Globals().Get("globalThis"))
}
