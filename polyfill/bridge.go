package polyfill

import (
	"errors"
	"fmt"

	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/proxy"
	"github.com/Maxwellism/browserfakes/storage"
	"github.com/buke/quickjs-go"
)

// The prelude turns the Go bridge into helpers kept on a hidden global: make
// builds a Proxy whose traps call back into Go on every access, and storage
// dresses a set of Go funcs up as a Storage object, once per store id.
// Functions assigned from JS cannot cross into Go, so make keeps them in a
// per-path table that the traps consult before asking Go.
const prelude = `(function () {
  const b = globalThis.__browserfakesBridge;
  delete globalThis.__browserfakesBridge;
  const at = (path, k) => JSON.stringify(path.concat([String(k)]));
  const fns = new Map();
  const fnsAt = (name, path) => {
    const id = name + JSON.stringify(path);
    let m = fns.get(id);
    if (!m) {
      m = new Map();
      fns.set(id, m);
    }
    return m;
  };
  const make = (name, path) => new Proxy({}, {
    get(_, k) {
      if (typeof k !== "string") return undefined;
      const own = fnsAt(name, path);
      if (own.has(k)) return own.get(k);
      if (b.isObject(name, at(path, k))) return make(name, path.concat([k]));
      return b.get(name, at(path, k));
    },
    set(_, k, v) {
      const own = fnsAt(name, path);
      if (typeof v === "function") {
        own.set(String(k), v);
        b.del(name, at(path, k));
        return true;
      }
      own.delete(String(k));
      b.set(name, at(path, k), JSON.stringify(v === undefined ? null : v));
      return true;
    },
    has(_, k) {
      if (typeof k !== "string") return false;
      return fnsAt(name, path).has(k) || b.has(name, at(path, k));
    },
    deleteProperty(_, k) {
      fnsAt(name, path).delete(String(k));
      b.del(name, at(path, k));
      return true;
    },
    ownKeys() {
      const keys = JSON.parse(b.keys(name, JSON.stringify(path)));
      for (const k of fnsAt(name, path).keys()) {
        if (!keys.includes(k)) keys.push(k);
      }
      return keys;
    },
    getOwnPropertyDescriptor(_, k) {
      if (!this.has(_, k)) return undefined;
      return { configurable: true, enumerable: true, writable: true, value: this.get(_, k) };
    },
  });
  const stores = new Map();
  const cachedStorage = (id) => stores.get(id);
  const storage = (id, h) => {
    const s = {
      getItem: (k) => h.getItem(String(k)),
      setItem: (k, v) => { h.setItem(String(k), String(v)); },
      removeItem: (k) => { h.removeItem(String(k)); },
      clear: () => { h.clear(); },
      key: (i) => h.key(Number(i)),
    };
    Object.defineProperty(s, "length", { get: () => h.length(), enumerable: false });
    stores.set(id, s);
    return s;
  };
  Object.defineProperty(globalThis, "__browserfakes", {
    value: { make, storage, cachedStorage },
    enumerable: false,
  });
})();`

type bridgeFn func(ctx *quickjs.Context, svc *proxy.Service, path []string, args []quickjs.Value) quickjs.Value

func (e *Env) injectBridge() error {
	b := e.ctx.Object()
	b.Set("get", e.ctx.Function(e.bridgeFn(e.bridgeGet)))
	b.Set("isObject", e.ctx.Function(e.bridgeFn(bridgeIsObject)))
	b.Set("has", e.ctx.Function(e.bridgeFn(bridgeHas)))
	b.Set("keys", e.ctx.Function(e.bridgeFn(bridgeKeys)))
	b.Set("set", e.ctx.Function(e.bridgeFn(bridgeSet)))
	b.Set("del", e.ctx.Function(e.bridgeFn(bridgeDelete)))
	e.ctx.Globals().Set("__browserfakesBridge", b)

	ret, err := e.ctx.Eval(prelude)
	defer ret.Free()
	if err != nil {
		return fmt.Errorf("polyfill: prelude: %w", err)
	}
	e.helpers = e.ctx.Globals().Get("__browserfakes")
	e.bridged = true
	return nil
}

// bridgeFn resolves the service and decodes the path shared by all bridge
// calls: (key, pathJSON, ...rest).
func (e *Env) bridgeFn(fn bridgeFn) func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
	return func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		if len(args) < 2 {
			return ctx.ThrowError(errors.New("browserfakes bridge: missing arguments"))
		}
		v, ok := e.resolver.Lookup(args[0].String())
		if !ok {
			return ctx.Undefined()
		}
		svc, ok := v.(*proxy.Service)
		if !ok {
			return ctx.Undefined()
		}
		var path []string
		if err := json.Unmarshal([]byte(args[1].String()), &path); err != nil {
			return ctx.ThrowError(err)
		}
		return fn(ctx, svc, path, args[2:])
	}
}

func (e *Env) bridgeGet(ctx *quickjs.Context, svc *proxy.Service, path []string, _ []quickjs.Value) quickjs.Value {
	v, ok := svc.Lookup(path...)
	if !ok {
		return ctx.Undefined()
	}
	return e.toJsValue(v)
}

func bridgeIsObject(ctx *quickjs.Context, svc *proxy.Service, path []string, _ []quickjs.Value) quickjs.Value {
	v, _ := svc.Lookup(path...)
	_, ok := object.AsObject(v)
	return ctx.Bool(ok)
}

func bridgeHas(ctx *quickjs.Context, svc *proxy.Service, path []string, _ []quickjs.Value) quickjs.Value {
	_, ok := svc.Lookup(path...)
	return ctx.Bool(ok)
}

func bridgeKeys(ctx *quickjs.Context, svc *proxy.Service, path []string, _ []quickjs.Value) quickjs.Value {
	v, _ := svc.Lookup(path...)
	o, _ := object.AsObject(v)
	data, err := json.Marshal(object.Keys(o))
	if err != nil {
		return ctx.ThrowError(err)
	}
	return ctx.String(string(data))
}

func bridgeSet(ctx *quickjs.Context, svc *proxy.Service, path []string, args []quickjs.Value) quickjs.Value {
	if len(args) < 1 {
		return ctx.ThrowError(errors.New("browserfakes bridge: missing value"))
	}
	var v any
	if err := json.Unmarshal([]byte(args[0].String()), &v); err != nil {
		return ctx.ThrowError(err)
	}
	if err := svc.SetPath(path, v); err != nil {
		return ctx.ThrowError(err)
	}
	return ctx.Undefined()
}

func bridgeDelete(ctx *quickjs.Context, svc *proxy.Service, path []string, _ []quickjs.Value) quickjs.Value {
	if len(path) == 0 {
		return ctx.Undefined()
	}
	parent, _ := svc.Lookup(path[:len(path)-1]...)
	if o, ok := object.AsObject(parent); ok {
		delete(o, path[len(path)-1])
	}
	return ctx.Undefined()
}

// serviceValue builds the JS value for a registered service.
func (e *Env) serviceValue(key string, v any) (quickjs.Value, error) {
	var res quickjs.Value
	switch x := v.(type) {
	case *proxy.Service:
		name := e.ctx.String(key)
		defer name.Free()
		path := e.ctx.ParseJSON("[]")
		defer path.Free()
		res = e.helpers.Call("make", name, path)
	case *storage.Storage:
		res = e.storageValue(x)
	default:
		res = e.toJsValue(v)
	}
	if res.IsException() {
		return res, e.ctx.Exception()
	}
	return res, nil
}

// storageValue returns the JS object for s, building it on first use.
func (e *Env) storageValue(s *storage.Storage) quickjs.Value {
	ctx := e.ctx
	id, seen := e.storages[s]
	if !seen {
		id = int32(len(e.storages))
		e.storages[s] = id
	}
	idValue := ctx.Int32(id)
	defer idValue.Free()
	if seen {
		cached := e.helpers.Call("cachedStorage", idValue)
		if !cached.IsUndefined() {
			return cached
		}
		cached.Free()
	}

	h := ctx.Object()
	h.Set("getItem", ctx.Function(func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		v, ok, err := s.GetItem(argString(args, 0))
		if err != nil {
			return ctx.ThrowError(err)
		}
		if !ok {
			return ctx.Null()
		}
		return ctx.String(v)
	}))
	h.Set("setItem", ctx.Function(func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		if err := s.SetItem(argString(args, 0), argString(args, 1)); err != nil {
			return ctx.ThrowError(err)
		}
		return ctx.Undefined()
	}))
	h.Set("removeItem", ctx.Function(func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		if err := s.RemoveItem(argString(args, 0)); err != nil {
			return ctx.ThrowError(err)
		}
		return ctx.Undefined()
	}))
	h.Set("clear", ctx.Function(func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		if err := s.Clear(); err != nil {
			return ctx.ThrowError(err)
		}
		return ctx.Undefined()
	}))
	h.Set("key", ctx.Function(func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		if len(args) == 0 {
			return ctx.Null()
		}
		k, ok := s.Key(int(args[0].Int64()))
		if !ok {
			return ctx.Null()
		}
		return ctx.String(k)
	}))
	h.Set("length", ctx.Function(func(ctx *quickjs.Context, this quickjs.Value, args []quickjs.Value) quickjs.Value {
		return ctx.Int32(int32(s.Length()))
	}))
	defer h.Free()
	return e.helpers.Call("storage", idValue, h)
}

func argString(args []quickjs.Value, i int) string {
	if i >= len(args) {
		return "undefined"
	}
	return args[i].String()
}
