package contract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-users-contract/pkg/dto"
	"github.com/oksasatya/go-users-contract/pkg/querycache"
)

type mockCaller struct {
	mock.Mock
}

func (m *mockCaller) Call(ctx context.Context, route Route, args *Args) (json.RawMessage, error) {
	a := m.Called(ctx, route.Path, args)
	if b := a.Get(0); b != nil {
		return b.(json.RawMessage), a.Error(1)
	}
	return nil, a.Error(1)
}

func TestPathParamsAndExpand(t *testing.T) {
	r := Route{Path: "/orgs/:org/users/:id"}
	assert.Equal(t, []string{"org", "id"}, PathParams(r.Path))
	assert.Nil(t, PathParams("/users"))

	p, err := r.Expand(map[string]string{"org": "a b", "id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/orgs/a%20b/users/7", p)

	_, err = r.Expand(map[string]string{"org": "x"})
	assert.ErrorContains(t, err, `missing path param "id"`)
}

func TestWalk_SortedDepthFirst(t *testing.T) {
	router := Router{
		"b": Route{Method: http.MethodGet, Path: "/b"},
		"a": Router{
			"z": Route{Method: http.MethodPost, Path: "/a/z"},
			"y": Route{Method: http.MethodGet, Path: "/a/y"},
		},
	}
	var seen []string
	Walk(router, func(path []string, r Route) {
		seen = append(seen, r.Path)
	})
	assert.Equal(t, []string{"/a/y", "/a/z", "/b"}, seen)
}

func TestLookup(t *testing.T) {
	r, ok := Lookup(Users, "users", "byId")
	require.True(t, ok)
	assert.Equal(t, "/users/:id", r.Path)

	_, ok = Lookup(Users, "users", "missing")
	assert.False(t, ok)
	_, ok = Lookup(Users, "users")
	assert.False(t, ok, "a router is not a route")
	assert.Panics(t, func() { MustLookup(Users, "nope") })
}

func TestQueryKey(t *testing.T) {
	byID := MustLookup(Users, "users", "byId")
	assert.Equal(t, []string{"users", "byId"}, byID.QueryKey("users", "byId", nil))
	assert.Equal(t, []string{"users", "byId", "42"},
		byID.QueryKey("users", "byId", &Args{Params: map[string]string{"id": "42", "unused": "x"}}))

	find := MustLookup(Users, "users", "findNames")
	key := find.QueryKey("users", "findNames", &Args{Query: map[string]string{"lastName": "Doe", "firstName": "Jo", "empty": ""}})
	assert.Equal(t, []string{"users", "findNames", "firstName=Jo", "lastName=Doe"}, key)

	assert.Equal(t, "users:byId:7", UsersQueryKey("byId", &Args{Params: map[string]string{"id": "7"}}))
	assert.Equal(t, "users:list", UsersQueryKey("list", nil))
}

func TestQueryKey_EscapesSeparators(t *testing.T) {
	split := UsersQueryKey("findNames", &Args{Query: map[string]string{"firstName": "Jo", "lastName": "Doe"}})
	packed := UsersQueryKey("findNames", &Args{Query: map[string]string{"firstName": "Jo:lastName=Doe"}})
	assert.Equal(t, "users:findNames:firstName=Jo:lastName=Doe", split)
	assert.Equal(t, "users:findNames:firstName=Jo%3AlastName%3DDoe", packed)
	assert.NotEqual(t, split, packed)

	byID := UsersQueryKey("byId", &Args{Params: map[string]string{"id": "1:2"}})
	assert.Equal(t, "users:byId:1%3A2", byID)

	// invalidating one filter leaves a longer value that merely starts with it
	ctx := context.Background()
	cache := querycache.NewMemory()
	short := UsersQueryKey("findNames", &Args{Query: map[string]string{"firstName": "a"}})
	long := UsersQueryKey("findNames", &Args{Query: map[string]string{"firstName": "a:b"}})
	require.NoError(t, cache.Set(ctx, short, []byte(`[]`), 0))
	require.NoError(t, cache.Set(ctx, long, []byte(`[]`), 0))
	require.NoError(t, cache.InvalidatePrefix(ctx, short))
	_, ok, _ := cache.Get(ctx, long)
	assert.True(t, ok)
}

func TestUsersSchemas(t *testing.T) {
	assert.Equal(t, CreateUserSchema.Fields, dto.SchemaOf[CreateUser]("CreateUser").Fields)
	assert.Equal(t, FindNamesQuerySchema.Fields, dto.SchemaOf[FindNamesQuery]("FindNamesQuery").Fields)
	assert.Equal(t, UserDetailsSchema.Names(), dto.SchemaOf[UserDetails]("UserDetails").Names())
	assert.Equal(t, UserNameDetailsSchema.Names(), dto.SchemaOf[UserNameDetails]("UserNameDetails").Names())
	assert.Empty(t, FindNamesQuerySchema.RequiredNames())
	assert.Equal(t, []string{"firstName", "lastName"}, CreateUserSchema.RequiredNames())
}

func TestNewUtils_Structure(t *testing.T) {
	u := NewUtils(Users, new(mockCaller), querycache.NewMemory())

	users, ok := u.Children["users"]
	require.True(t, ok)
	assert.Len(t, users.Queries, 4)
	assert.Len(t, users.Mutations, 1)
	assert.Contains(t, users.Mutations, "add")

	list, err := u.Query("users", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "list"}, list.QueryKey(nil))

	_, err = u.Query("users", "add")
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = u.Mutation("users", "list")
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = u.Query()
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = u.Query("orders", "list")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestNewUtils_RouterName(t *testing.T) {
	router := Router{
		"admin": Router{"stats": Route{Method: "head", Path: "/stats"}},
		"users": Router{"list": Route{Method: http.MethodGet, Path: "/users"}},
	}
	u := NewUtils(router, new(mockCaller), querycache.NewMemory())
	q, err := u.Query("users", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "list"}, q.QueryKey(nil), "first key names the router")

	u = NewUtils(router, new(mockCaller), querycache.NewMemory(), WithRouterName("api"))
	q, _ = u.Query("admin", "stats")
	assert.Equal(t, []string{"api", "stats"}, q.QueryKey(nil))

	empty := NewUtils(Router{}, new(mockCaller), querycache.NewMemory())
	assert.Empty(t, empty.Queries)
	assert.Equal(t, "api", defaultRouterName(Router{}))
}

func TestQueryUtils_FetchCachesAndInvalidate(t *testing.T) {
	ctx := context.Background()
	caller := new(mockCaller)
	cache := querycache.NewMemory()
	u := NewUtils(Users, caller, cache)
	list, _ := u.Query("users", "list")

	caller.On("Call", ctx, "/users", (*Args)(nil)).Return(json.RawMessage(`[]`), nil).Twice()

	b, err := list.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	b, err = list.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
	caller.AssertNumberOfCalls(t, "Call", 1)

	require.NoError(t, list.Invalidate(ctx, nil))
	_, err = list.Fetch(ctx, nil)
	require.NoError(t, err)
	caller.AssertNumberOfCalls(t, "Call", 2)
}

func TestQueryUtils_PrefetchAndSetData(t *testing.T) {
	ctx := context.Background()
	caller := new(mockCaller)
	u := NewUtils(Users, caller, querycache.NewMemory())
	byID, _ := u.Query("users", "byId")
	args := &Args{Params: map[string]string{"id": "1"}}

	caller.On("Call", ctx, "/users/:id", args).Return(json.RawMessage(`{"id":1,"firstName":"Jane"}`), nil).Once()
	require.NoError(t, byID.Prefetch(ctx, args))
	require.NoError(t, byID.Prefetch(ctx, args))
	caller.AssertExpectations(t)

	err := byID.SetData(ctx, args, func(old json.RawMessage) (any, error) {
		var u UserDetails
		require.NoError(t, json.Unmarshal(old, &u))
		u.FirstName = "Janet"
		return u, nil
	})
	require.NoError(t, err)

	got, ok, err := byID.GetData(ctx, args)
	require.NoError(t, err)
	require.True(t, ok)
	var u2 UserDetails
	require.NoError(t, json.Unmarshal(got, &u2))
	assert.Equal(t, "Janet", u2.FirstName)

	other := &Args{Params: map[string]string{"id": "2"}}
	err = byID.SetData(ctx, other, func(old json.RawMessage) (any, error) {
		assert.Nil(t, old)
		return UserDetails{ID: 2}, nil
	})
	require.NoError(t, err)

	// invalidating the route without args drops every id
	require.NoError(t, byID.Invalidate(ctx, nil))
	_, ok, _ = byID.GetData(ctx, args)
	assert.False(t, ok)
	_, ok, _ = byID.GetData(ctx, other)
	assert.False(t, ok)
}

func TestQueryUtils_FetchError(t *testing.T) {
	ctx := context.Background()
	caller := new(mockCaller)
	cache := querycache.NewMemory()
	u := NewUtils(Users, caller, cache)
	list, _ := u.Query("users", "list")

	caller.On("Call", ctx, "/users", (*Args)(nil)).Return(nil, errors.New("boom"))
	_, err := list.Fetch(ctx, nil)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 0, cache.Len())
}

func TestMutationUtils_Fetch(t *testing.T) {
	ctx := context.Background()
	caller := new(mockCaller)
	u := NewUtils(Users, caller, querycache.NewMemory())
	add, err := u.Mutation("users", "add")
	require.NoError(t, err)

	args := &Args{Body: CreateUser{FirstName: "A", LastName: "B"}}
	caller.On("Call", ctx, "/users", args).Return(json.RawMessage(`{"id":3}`), nil).Twice()

	_, err = add.Fetch(ctx, args)
	require.NoError(t, err)
	_, err = add.Fetch(ctx, args)
	require.NoError(t, err)
	caller.AssertNumberOfCalls(t, "Call", 2)
}

func TestOpenAPI(t *testing.T) {
	sw := OpenAPI(Users, "users", "1.0.0", "/api")

	require.Contains(t, sw.Paths.Paths, "/users")
	require.Contains(t, sw.Paths.Paths, "/users/{id}")
	require.Contains(t, sw.Paths.Paths, "/users/findNames")

	users := sw.Paths.Paths["/users"]
	require.NotNil(t, users.Get)
	require.NotNil(t, users.Post)
	assert.Equal(t, "users.list", users.Get.ID)
	assert.Contains(t, users.Post.Responses.StatusCodeResponses, http.StatusCreated)
	assert.Contains(t, users.Post.Responses.StatusCodeResponses, http.StatusBadRequest)

	byID := sw.Paths.Paths["/users/{id}"].Get
	require.NotNil(t, byID)
	require.Len(t, byID.Parameters, 1)
	assert.Equal(t, "id", byID.Parameters[0].Name)
	assert.Equal(t, "integer", byID.Parameters[0].Type)
	assert.Contains(t, byID.Responses.StatusCodeResponses, http.StatusNotFound)

	find := sw.Paths.Paths["/users/findNames"].Get
	require.Len(t, find.Parameters, 2)
	assert.False(t, find.Parameters[0].Required)

	create, ok := sw.Definitions["CreateUser"]
	require.True(t, ok)
	assert.Equal(t, []string{"firstName", "lastName"}, create.Required)
	assert.Equal(t, "John", create.Properties["firstName"].Example)

	details := sw.Definitions["UserDetails"]
	assert.Equal(t, int64(1), details.Properties["id"].Example)
	assert.Equal(t, "date-time", details.Properties["createdAt"].Format)

	b, err := json.Marshal(sw)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"swagger":"2.0"`)
}
