// Package contract declares the HTTP API shared by the server and its
// clients: routes, their input and output shapes, and the query keys used to
// cache their results.
package contract

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/oksasatya/go-users-contract/pkg/dto"
)

// Route describes one endpoint. Path uses ":name" segments for parameters.
type Route struct {
	Method     string
	Path       string
	Summary    string
	Status     int
	Params     *dto.Schema
	Query      *dto.Schema
	Body       *dto.Schema
	Output     *dto.Schema
	ListOutput bool
}

// Router nests Routes and Routers by name.
type Router map[string]any

// IsQuery reports whether the route reads data (GET or HEAD).
func (r Route) IsQuery() bool {
	return isQueryMethod(r.Method)
}

func isQueryMethod(method string) bool {
	m := strings.ToUpper(method)
	return m == "GET" || m == "HEAD"
}

// PathParams lists the parameter names of a path in order.
func PathParams(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			out = append(out, seg[1:])
		}
	}
	return out
}

// Expand substitutes params into the route path. Every path parameter must
// be supplied.
func (r Route) Expand(params map[string]string) (string, error) {
	segs := strings.Split(r.Path, "/")
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") || len(seg) == 1 {
			continue
		}
		v, ok := params[seg[1:]]
		if !ok || v == "" {
			return "", fmt.Errorf("contract: missing path param %q for %s", seg[1:], r.Path)
		}
		segs[i] = url.PathEscape(v)
	}
	return strings.Join(segs, "/"), nil
}

// Walk visits every route depth-first, in sorted key order, with the names
// leading to it.
func Walk(router Router, fn func(path []string, r Route)) {
	walk(router, nil, fn)
}

func walk(router Router, prefix []string, fn func([]string, Route)) {
	for _, key := range sortedKeys(router) {
		path := append(append([]string(nil), prefix...), key)
		switch node := router[key].(type) {
		case Route:
			fn(path, node)
		case Router:
			walk(node, path, fn)
		}
	}
}

// Lookup finds the route at path.
func Lookup(router Router, path ...string) (Route, bool) {
	var node any = router
	for _, key := range path {
		r, ok := node.(Router)
		if !ok {
			return Route{}, false
		}
		node, ok = r[key]
		if !ok {
			return Route{}, false
		}
	}
	route, ok := node.(Route)
	return route, ok
}

// MustLookup is Lookup for routes declared in this package.
func MustLookup(router Router, path ...string) Route {
	r, ok := Lookup(router, path...)
	if !ok {
		panic(fmt.Sprintf("contract: no route %s", strings.Join(path, ".")))
	}
	return r
}

func sortedKeys(router Router) []string {
	keys := make([]string, 0, len(router))
	for k := range router {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
