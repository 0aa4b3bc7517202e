package contract

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oksasatya/go-users-contract/pkg/querycache"
)

// Caller performs a route call and returns the response data.
type Caller interface {
	Call(ctx context.Context, route Route, args *Args) (json.RawMessage, error)
}

// QueryUtils are the cache helpers of a GET or HEAD route.
type QueryUtils struct {
	Route      Route
	routerName string
	name       string
	caller     Caller
	cache      querycache.Cache
	ttl        time.Duration
}

// QueryKey returns the key parts of the query for args.
func (q *QueryUtils) QueryKey(args *Args) []string {
	return q.Route.QueryKey(q.routerName, q.name, args)
}

func (q *QueryUtils) cacheKey(args *Args) string {
	return querycache.Key(q.QueryKey(args)...)
}

// Invalidate drops the cached result for args and every result nested below
// it. With nil args all cached results of the route are dropped.
func (q *QueryUtils) Invalidate(ctx context.Context, args *Args) error {
	return q.cache.InvalidatePrefix(ctx, q.cacheKey(args))
}

// Fetch returns the cached result for args, calling the route on a miss.
func (q *QueryUtils) Fetch(ctx context.Context, args *Args) (json.RawMessage, error) {
	key := q.cacheKey(args)
	if b, ok, err := q.cache.Get(ctx, key); err == nil && ok {
		return b, nil
	}
	data, err := q.caller.Call(ctx, q.Route, args)
	if err != nil {
		return nil, err
	}
	if err := q.cache.Set(ctx, key, data, q.ttl); err != nil {
		return nil, err
	}
	return data, nil
}

// Prefetch warms the cache for args. A cached result is left untouched.
func (q *QueryUtils) Prefetch(ctx context.Context, args *Args) error {
	_, err := q.Fetch(ctx, args)
	return err
}

// GetData reads the cached result for args without calling the route.
func (q *QueryUtils) GetData(ctx context.Context, args *Args) (json.RawMessage, bool, error) {
	b, ok, err := q.cache.Get(ctx, q.cacheKey(args))
	return b, ok, err
}

// SetData replaces the cached result for args with the updater's output.
// old is nil when nothing is cached.
func (q *QueryUtils) SetData(ctx context.Context, args *Args, updater func(old json.RawMessage) (any, error)) error {
	key := q.cacheKey(args)
	old, ok, err := q.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		old = nil
	}
	next, err := updater(old)
	if err != nil {
		return err
	}
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return q.cache.Set(ctx, key, b, q.ttl)
}

// MutationUtils wrap a route that changes data.
type MutationUtils struct {
	Route  Route
	caller Caller
}

func (m *MutationUtils) Fetch(ctx context.Context, args *Args) (json.RawMessage, error) {
	return m.caller.Call(ctx, m.Route, args)
}

// Utils mirrors a Router: every route becomes QueryUtils or MutationUtils,
// every nested router becomes a child Utils.
type Utils struct {
	Queries   map[string]*QueryUtils
	Mutations map[string]*MutationUtils
	Children  map[string]*Utils
}

type utilsOptions struct {
	routerName string
	ttl        time.Duration
}

type UtilsOption func(*utilsOptions)

// WithRouterName overrides the leading query key part.
func WithRouterName(name string) UtilsOption {
	return func(o *utilsOptions) { o.routerName = name }
}

// WithTTL sets the lifetime of cached results. Zero keeps them until
// invalidated.
func WithTTL(ttl time.Duration) UtilsOption {
	return func(o *utilsOptions) { o.ttl = ttl }
}

// NewUtils derives cache utils from the router tree. Unless WithRouterName
// is given, the leading key part is the router's first key, or "api" for an
// empty router.
func NewUtils(router Router, caller Caller, cache querycache.Cache, opts ...UtilsOption) *Utils {
	o := utilsOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.routerName == "" {
		o.routerName = defaultRouterName(router)
	}
	return buildUtils(router, caller, cache, o)
}

func buildUtils(router Router, caller Caller, cache querycache.Cache, o utilsOptions) *Utils {
	u := &Utils{
		Queries:   map[string]*QueryUtils{},
		Mutations: map[string]*MutationUtils{},
		Children:  map[string]*Utils{},
	}
	for _, key := range sortedKeys(router) {
		switch node := router[key].(type) {
		case Route:
			if node.IsQuery() {
				u.Queries[key] = &QueryUtils{
					Route:      node,
					routerName: o.routerName,
					name:       key,
					caller:     caller,
					cache:      cache,
					ttl:        o.ttl,
				}
			} else {
				u.Mutations[key] = &MutationUtils{Route: node, caller: caller}
			}
		case Router:
			u.Children[key] = buildUtils(node, caller, cache, o)
		}
	}
	return u
}

func defaultRouterName(router Router) string {
	if keys := sortedKeys(router); len(keys) > 0 {
		return keys[0]
	}
	return "api"
}

// ErrNoRoute is returned when a utils path does not exist.
var ErrNoRoute = errors.New("contract: no such route")

// Query navigates to the query utils at path, e.g. Query("users", "list").
func (u *Utils) Query(path ...string) (*QueryUtils, error) {
	parent, leaf, err := u.descend(path)
	if err != nil {
		return nil, err
	}
	q, ok := parent.Queries[leaf]
	if !ok {
		return nil, ErrNoRoute
	}
	return q, nil
}

// Mutation navigates to the mutation utils at path.
func (u *Utils) Mutation(path ...string) (*MutationUtils, error) {
	parent, leaf, err := u.descend(path)
	if err != nil {
		return nil, err
	}
	m, ok := parent.Mutations[leaf]
	if !ok {
		return nil, ErrNoRoute
	}
	return m, nil
}

func (u *Utils) descend(path []string) (*Utils, string, error) {
	if len(path) == 0 {
		return nil, "", ErrNoRoute
	}
	cur := u
	for _, key := range path[:len(path)-1] {
		next, ok := cur.Children[key]
		if !ok {
			return nil, "", ErrNoRoute
		}
		cur = next
	}
	return cur, path[len(path)-1], nil
}
