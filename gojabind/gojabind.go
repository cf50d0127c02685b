// Package gojabind installs the registered browser fakes into a goja runtime.
package gojabind

import (
	"fmt"
	"strings"

	"github.com/Maxwellism/browserfakes/fakes"
	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/proxy"
	"github.com/Maxwellism/browserfakes/registry"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Bridge connects one goja runtime to a service container.
type Bridge struct {
	vm       *goja.Runtime
	resolver registry.Resolver
	storages map[*storage.Storage]*goja.Object
	logger   *zap.Logger
}

type Opt func(*Bridge)

func WithLogger(logger *zap.Logger) Opt {
	return func(b *Bridge) { b.logger = logger }
}

// Install sets console and the registered browser fakes as globals of vm.
// As with the QuickJS polyfill, window falls back to the global object when
// no window service is registered.
func Install(vm *goja.Runtime, r registry.Resolver, opts ...Opt) (*Bridge, error) {
	b := &Bridge{vm: vm, resolver: r, storages: map[*storage.Storage]*goja.Object{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("gojabind")

	if err := b.initConsole(); err != nil {
		return nil, err
	}
	globals := []struct{ name, key string }{
		{"window", fakes.KeyWindow},
		{"document", fakes.KeyDocument},
		{"navigator", fakes.KeyNavigator},
		{"localStorage", fakes.KeyLocalStorage},
		{"sessionStorage", fakes.KeySessionStorage},
	}
	global := vm.GlobalObject()
	for _, g := range globals {
		v, ok := r.Lookup(g.key)
		if !ok {
			if g.name == "window" {
				if err := global.Set("window", global); err != nil {
					return nil, fmt.Errorf("gojabind: set window: %w", err)
				}
			}
			continue
		}
		if err := global.Set(g.name, b.value(g.key, v)); err != nil {
			return nil, fmt.Errorf("gojabind: set %s: %w", g.name, err)
		}
		b.logger.Debug("global installed", zap.String("name", g.name), zap.String("key", g.key))
	}
	return b, nil
}

func (b *Bridge) value(key string, v any) goja.Value {
	switch x := v.(type) {
	case *proxy.Service:
		return b.vm.NewDynamicObject(&dynamicService{bridge: b, key: key})
	case *storage.Storage:
		return b.storageObject(x)
	}
	return b.toValue(v)
}

// toValue converts a value read from a fake. Plain objects become JS objects
// key by key; everything else goes through goja's own conversion.
func (b *Bridge) toValue(v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Null()
	case *storage.Storage:
		return b.storageObject(x)
	case object.Object:
		return b.objectValue(x)
	case map[string]any:
		return b.objectValue(object.Object(x))
	}
	return b.vm.ToValue(v)
}

func (b *Bridge) objectValue(o object.Object) goja.Value {
	obj := b.vm.NewObject()
	for _, k := range object.Keys(o) {
		if err := obj.Set(k, b.toValue(o[k])); err != nil {
			b.logger.Error("failed to set property", zap.String("key", k), zap.Error(err))
		}
	}
	return obj
}

// dynamicService forwards every property access to the registered service,
// looked up again on each call. Nested plain objects are served as nested
// dynamic objects so writes through them reach Go.
type dynamicService struct {
	bridge *Bridge
	key    string
	path   []string
}

func (d *dynamicService) service() (*proxy.Service, bool) {
	v, ok := d.bridge.resolver.Lookup(d.key)
	if !ok {
		return nil, false
	}
	svc, ok := v.(*proxy.Service)
	return svc, ok
}

func (d *dynamicService) at(key string) []string {
	return append(d.path[:len(d.path):len(d.path)], key)
}

func (d *dynamicService) Get(key string) goja.Value {
	svc, ok := d.service()
	if !ok {
		return nil
	}
	v, ok := svc.Lookup(d.at(key)...)
	if !ok {
		return nil
	}
	if _, isObject := object.AsObject(v); isObject {
		return d.bridge.vm.NewDynamicObject(&dynamicService{bridge: d.bridge, key: d.key, path: d.at(key)})
	}
	return d.bridge.toValue(v)
}

func (d *dynamicService) Set(key string, val goja.Value) bool {
	svc, ok := d.service()
	if !ok {
		return false
	}
	if err := svc.SetPath(d.at(key), exportValue(val)); err != nil {
		d.bridge.logger.Warn("set failed", zap.String("path", strings.Join(d.at(key), ".")), zap.Error(err))
		return false
	}
	return true
}

func (d *dynamicService) Has(key string) bool {
	svc, ok := d.service()
	if !ok {
		return false
	}
	_, ok = svc.Lookup(d.at(key)...)
	return ok
}

func (d *dynamicService) Delete(key string) bool {
	svc, ok := d.service()
	if !ok {
		return true
	}
	parent, _ := svc.Lookup(d.path...)
	if o, ok := object.AsObject(parent); ok {
		delete(o, key)
	}
	return true
}

func (d *dynamicService) Keys() []string {
	svc, ok := d.service()
	if !ok {
		return nil
	}
	v, _ := svc.Lookup(d.path...)
	o, _ := object.AsObject(v)
	return object.Keys(o)
}

// exportValue turns a JS value into the plain Go shape the fakes use.
func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return normalize(val.Export())
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		res := make(object.Object, len(x))
		for k, e := range x {
			res[k] = normalize(e)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = normalize(e)
		}
		return res
	}
	return v
}
