package polyfill

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/buke/quickjs-go"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// toJsValue converts a Go value from a fake into a JS value. Plain objects
// are copied key by key so funcs and storages inside them stay usable.
func (e *Env) toJsValue(v any) quickjs.Value {
	ctx := e.ctx
	switch x := v.(type) {
	case nil:
		return ctx.Null()
	case *storage.Storage:
		return e.storageValue(x)
	case object.Object:
		return e.objectValue(x)
	case map[string]any:
		return e.objectValue(object.Object(x))
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Bool:
		return ctx.Bool(value.Bool())
	case reflect.String:
		return ctx.String(value.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return ctx.Int32(int32(value.Int()))
	case reflect.Int64:
		return ctx.Int64(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ctx.Int64(int64(value.Uint()))
	case reflect.Float32, reflect.Float64:
		return ctx.Float64(value.Float())
	case reflect.Func:
		return ctx.Function(e.wrapFn(v))
	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return ctx.Null()
		}
		return e.toJsValue(value.Elem().Interface())
	case reflect.Slice, reflect.Array, reflect.Struct, reflect.Map:
		data, err := json.Marshal(v)
		if err != nil {
			return ctx.ThrowError(err)
		}
		return ctx.ParseJSON(string(data))
	}
	return ctx.Undefined()
}

func (e *Env) objectValue(o object.Object) quickjs.Value {
	obj := e.ctx.Object()
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		obj.Set(k, e.toJsValue(o[k]))
	}
	return obj
}

// toGoValue converts a JS argument to a value of type t.
func toGoValue(t reflect.Type, jsValue quickjs.Value) (reflect.Value, error) {
	if jsValue.IsUndefined() {
		return reflect.Zero(t), nil
	}
	switch t.Kind() {
	case reflect.Bool:
		if !jsValue.IsBool() {
			return reflect.Value{}, errors.New("this js value is not a bool")
		}
		return reflect.ValueOf(jsValue.Bool()).Convert(t), nil
	case reflect.String:
		return reflect.ValueOf(jsValue.String()).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !jsValue.IsNumber() {
			return reflect.Value{}, errors.New("this js value is not a number")
		}
		return reflect.ValueOf(jsValue.Int64()).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		if !jsValue.IsNumber() {
			return reflect.Value{}, errors.New("this js value is not a number")
		}
		return reflect.ValueOf(jsValue.Float64()).Convert(t), nil
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal([]byte(jsValue.JSONStringify()), ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// wrapFn exposes a Go func to JS. Missing arguments are zero values, extra
// arguments are dropped, and a trailing error result is thrown.
func (e *Env) wrapFn(goFn any) func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
	fnValue := reflect.ValueOf(goFn)
	fnType := fnValue.Type()
	return func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		if fnType.IsVariadic() {
			return ctx.ThrowError(errors.New("variadic go funcs are not supported"))
		}
		callArgs := make([]reflect.Value, fnType.NumIn())
		for i := range callArgs {
			if i >= len(args) {
				callArgs[i] = reflect.Zero(fnType.In(i))
				continue
			}
			v, err := toGoValue(fnType.In(i), args[i])
			if err != nil {
				return ctx.ThrowError(fmt.Errorf("argument %d: %w", i, err))
			}
			callArgs[i] = v
		}
		res := fnValue.Call(callArgs)
		if n := len(res); n > 0 && fnType.Out(n-1) == errorType {
			if err, _ := res[n-1].Interface().(error); err != nil {
				return ctx.ThrowError(err)
			}
			res = res[:n-1]
		}
		if len(res) == 0 {
			return ctx.Undefined()
		}
		return e.toJsValue(res[0].Interface())
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
