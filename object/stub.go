package object

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotObject = errors.New("not an object")
	ErrNilRoot   = errors.New("object: stub onto nil object")
)

// PathError reports a stub that tried to descend into a value that is not a
// plain object.
type PathError struct {
	Path []string
	Got  any
}

func (e *PathError) Error() string {
	return fmt.Sprintf("object: stub %s: existing value of type %T is %s", strings.Join(e.Path, "."), e.Got, ErrNotObject)
}

func (e *PathError) Unwrap() error { return ErrNotObject }

// ApplyStub overlays partial onto root in place.
//
// Sequences replace the existing value wholesale, plain objects are merged
// recursively and every other value is assigned as is. A nested partial whose
// target key is missing or nil (a nil map included) gets a new empty Object to merge into. A
// nested partial whose target is some other non-object value fails with a
// *PathError; keys handled before the failure stay applied. A nil root with a
// non-nil partial fails with ErrNilRoot.
func ApplyStub(root Object, partial Object) error {
	return applyStub(root, partial, nil)
}

func applyStub(root Object, partial Object, path []string) error {
	if partial == nil {
		return nil
	}
	if root == nil {
		return ErrNilRoot
	}
	for _, key := range Keys(partial) {
		value := partial[key]
		if IsSequence(value) {
			root[key] = value
			continue
		}
		nested, ok := AsObject(value)
		if !ok {
			root[key] = value
			continue
		}
		keyPath := append(path[:len(path):len(path)], key)
		existing := root[key]
		target, ok := AsObject(existing)
		if !ok {
			if !IsNil(existing) {
				return &PathError{Path: keyPath, Got: existing}
			}
			target = Object{}
			root[key] = target
		}
		if err := applyStub(target, nested, keyPath); err != nil {
			return err
		}
	}
	return nil
}
