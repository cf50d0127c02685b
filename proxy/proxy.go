// Package proxy provides a transparent accessor over a browser fake. Every
// read and write resolves the target again, so callers holding a Service see
// the state of the target at access time, not at wrap time.
package proxy

import (
	"reflect"

	"github.com/Maxwellism/browserfakes/object"
	jsoniter "github.com/json-iterator/go"
)

type Service struct {
	resolve func() object.Object
}

func New(target object.Object) *Service {
	return &Service{resolve: func() object.Object { return target }}
}

// Lazy defers target resolution to every access.
func Lazy(resolve func() object.Object) *Service {
	return &Service{resolve: resolve}
}

func (s *Service) Target() object.Object {
	return s.resolve()
}

func (s *Service) Get(key string) any {
	return s.resolve()[key]
}

func (s *Service) Lookup(path ...string) (any, bool) {
	return object.Lookup(s.resolve(), path...)
}

func (s *Service) Has(key string) bool {
	_, ok := s.resolve()[key]
	return ok
}

// Set writes through to the current target. A nil target is left alone.
func (s *Service) Set(key string, v any) {
	if t := s.resolve(); t != nil {
		t[key] = v
	}
}

// SetPath assigns v at path, creating missing intermediate objects. An
// intermediate that is not a plain object fails with *object.PathError.
func (s *Service) SetPath(path []string, v any) error {
	cur := s.resolve()
	if cur == nil || len(path) == 0 {
		return nil
	}
	for i, key := range path[:len(path)-1] {
		existing := cur[key]
		next, ok := object.AsObject(existing)
		if !ok {
			if !object.IsNil(existing) {
				return &object.PathError{Path: path[:i+1], Got: existing}
			}
			next = object.Object{}
			cur[key] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = v
	return nil
}

func (s *Service) Delete(key string) {
	delete(s.resolve(), key)
}

func (s *Service) Keys() []string {
	return object.Keys(s.resolve())
}

// MarshalJSON snapshots the current target. Funcs are dropped.
func (s *Service) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(dropFuncs(s.resolve()))
}

func dropFuncs(v any) any {
	switch x := v.(type) {
	case object.Object:
		return dropFuncsObject(x)
	case map[string]any:
		return dropFuncsObject(object.Object(x))
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = dropFuncs(e)
		}
		return res
	}
	return v
}

func dropFuncsObject(o object.Object) map[string]any {
	res := make(map[string]any, len(o))
	for k, v := range o {
		if isFunc(v) {
			continue
		}
		res[k] = dropFuncs(v)
	}
	return res
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
