// Package object is the plain, JS-like object model the browser fakes are
// made of. An Object is a mutable map; nested plain objects are Objects (or
// bare map[string]any) and sequences are Go slices.
package object

import (
	"maps"
	"reflect"
	"slices"
)

type Object map[string]any

// From converts m without copying; writes through either value are shared.
func From(m map[string]any) Object {
	return Object(m)
}

// AsObject reports whether v is a plain object and returns it as an Object.
// A nil map is not an object.
func AsObject(v any) (Object, bool) {
	switch o := v.(type) {
	case Object:
		return o, o != nil
	case map[string]any:
		return Object(o), o != nil
	}
	return nil, false
}

// IsNil reports whether v is nil or a nil map. Both count as an absent
// object when a path is extended.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.IsNil()
}

// IsSequence reports whether v is a slice or an array.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func Keys(o Object) []string {
	return slices.Sorted(maps.Keys(o))
}

// Lookup walks path from root. Every intermediate value must be a plain
// object.
func Lookup(root Object, path ...string) (any, bool) {
	var cur any = root
	for _, key := range path {
		o, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = o[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone deep copies plain objects and []any. Other values, including typed
// slices, funcs and pointers, are shared with the source.
func Clone(o Object) Object {
	if o == nil {
		return nil
	}
	res := make(Object, len(o))
	for k, v := range o {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Object:
		return Clone(x)
	case map[string]any:
		return Clone(Object(x))
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = cloneValue(e)
		}
		return res
	}
	return v
}
