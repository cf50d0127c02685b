package windowmock

import (
	"net/url"

	"github.com/Maxwellism/browserfakes/object"
)

func newLocation(u *url.URL) object.Object {
	search := ""
	if u.RawQuery != "" {
		search = "?" + u.RawQuery
	}
	hash := ""
	if u.Fragment != "" {
		hash = "#" + u.EscapedFragment()
	}
	pathname := u.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}
	loc := object.Object{
		"protocol": u.Scheme + ":",
		"hostname": u.Hostname(),
		"port":     u.Port(),
		"pathname": pathname,
		"search":   search,
		"hash":     hash,
	}
	patchLocation(loc, nil)
	return loc
}

// Patch brings the derived location fields back in line with the parts they
// are built from: host from hostname and port, origin from protocol and host,
// href from origin, pathname, search and hash. Fields present in set were
// given explicitly and are left as they are.
func Patch(window, set object.Object) object.Object {
	if loc, ok := object.AsObject(window["location"]); ok {
		patchLocation(loc, set)
	}
	return window
}

func patchLocation(loc, set object.Object) {
	str := func(key string) string {
		v, _ := loc[key].(string)
		return v
	}
	derive := func(key, value string) {
		if _, given := set[key]; !given {
			loc[key] = value
		}
	}
	host := str("hostname")
	if port := str("port"); port != "" {
		host += ":" + port
	}
	derive("host", host)
	derive("origin", str("protocol")+"//"+str("host"))
	derive("href", str("origin")+str("pathname")+str("search")+str("hash"))
}
