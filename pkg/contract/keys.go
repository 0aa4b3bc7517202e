package contract

import (
	"net/url"
	"sort"
)

// Args carries the inputs of one route call.
type Args struct {
	Params map[string]string
	Query  map[string]string
	Body   any
}

// QueryKey builds a stable key: [routerName, routeName, path param values in
// path order..., "k=v" for each non-empty query value in key order]. Param
// and query text is query-escaped so no part contains a raw ":" or "=".
func (r Route) QueryKey(routerName, routeName string, args *Args) []string {
	key := []string{routerName, routeName}
	if args == nil {
		return key
	}
	for _, name := range PathParams(r.Path) {
		if v, ok := args.Params[name]; ok {
			key = append(key, url.QueryEscape(v))
		}
	}
	if len(args.Query) > 0 {
		names := make([]string, 0, len(args.Query))
		for k, v := range args.Query {
			if v != "" {
				names = append(names, k)
			}
		}
		sort.Strings(names)
		for _, k := range names {
			key = append(key, url.QueryEscape(k)+"="+url.QueryEscape(args.Query[k]))
		}
	}
	return key
}
