package fakes

import (
	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/proxy"
)

type Kind int

const (
	// UseDefault leaves the service alone; nothing is registered.
	UseDefault Kind = iota
	// UsePassthrough registers a transparent accessor over the fake.
	UsePassthrough
	// UseRealService registers the fake object itself, unwrapped.
	UseRealService
	// UseOverride applies a partial stub to the fake, then registers an
	// accessor over it.
	UseOverride
)

func (k Kind) String() string {
	switch k {
	case UseDefault:
		return "default"
	case UsePassthrough:
		return "passthrough"
	case UseRealService:
		return "service"
	case UseOverride:
		return "override"
	}
	return "unknown"
}

// Option selects what gets registered for one browser service.
type Option struct {
	kind    Kind
	partial object.Object
}

func Default() Option     { return Option{kind: UseDefault} }
func Passthrough() Option { return Option{kind: UsePassthrough} }
func RealService() Option { return Option{kind: UseRealService} }

func Override(partial object.Object) Option {
	return Option{kind: UseOverride, partial: partial}
}

// Enable maps a boolean flag to Passthrough or Default.
func Enable(on bool) Option {
	if on {
		return Passthrough()
	}
	return Default()
}

func (o Option) Kind() Kind             { return o.kind }
func (o Option) Partial() object.Object { return o.partial }
func (o Option) Enabled() bool          { return o.kind != UseDefault }

// MaybeMake returns the value to register for target.
func MaybeMake(opt Option, target object.Object) (any, error) {
	return MaybeMakeLazy(opt, func() object.Object { return target })
}

// MaybeMakeLazy is MaybeMake for a target that is resolved again on every
// access through the returned accessor. An override is applied once, to the
// target resolved now.
func MaybeMakeLazy(opt Option, resolve func() object.Object) (any, error) {
	switch opt.kind {
	case UsePassthrough:
		return proxy.Lazy(resolve), nil
	case UseRealService:
		return resolve(), nil
	case UseOverride:
		if err := object.ApplyStub(resolve(), opt.partial); err != nil {
			return nil, err
		}
		return proxy.Lazy(resolve), nil
	}
	return proxy.Lazy(resolve), nil
}
