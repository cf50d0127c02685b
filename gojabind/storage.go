package gojabind

import (
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// storageObject returns the JS object for s, building it on first use.
func (b *Bridge) storageObject(s *storage.Storage) goja.Value {
	if obj, ok := b.storages[s]; ok {
		return obj
	}
	vm := b.vm
	obj := vm.NewObject()
	b.storages[s] = obj
	methods := map[string]func(goja.FunctionCall) goja.Value{
		"getItem": func(call goja.FunctionCall) goja.Value {
			v, ok, err := s.GetItem(call.Argument(0).String())
			if err != nil {
				panic(vm.NewGoError(err))
			}
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		},
		"setItem": func(call goja.FunctionCall) goja.Value {
			if err := s.SetItem(call.Argument(0).String(), call.Argument(1).String()); err != nil {
				panic(vm.NewGoError(err))
			}
			return goja.Undefined()
		},
		"removeItem": func(call goja.FunctionCall) goja.Value {
			if err := s.RemoveItem(call.Argument(0).String()); err != nil {
				panic(vm.NewGoError(err))
			}
			return goja.Undefined()
		},
		"clear": func(call goja.FunctionCall) goja.Value {
			if err := s.Clear(); err != nil {
				panic(vm.NewGoError(err))
			}
			return goja.Undefined()
		},
		"key": func(call goja.FunctionCall) goja.Value {
			k, ok := s.Key(int(call.Argument(0).ToInteger()))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(k)
		},
	}
	for name, fn := range methods {
		if err := obj.Set(name, fn); err != nil {
			b.logger.Error("failed to set storage method", zap.String("method", name), zap.Error(err))
		}
	}
	length := vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(s.Length())
	})
	if err := obj.DefineAccessorProperty("length", length, nil, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		b.logger.Error("failed to define storage length", zap.Error(err))
	}
	return obj
}
