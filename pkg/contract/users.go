package contract

import (
	"net/http"
	"time"

	"github.com/oksasatya/go-users-contract/pkg/dto"
	"github.com/oksasatya/go-users-contract/pkg/querycache"
)

// UserBase lists every user field exposed at the API boundary. Route shapes
// are picked from it.
type UserBase struct {
	ID              int64     `json:"id" binding:"required,gt=0" example:"1"`
	FirstName       string    `json:"firstName" binding:"required,personname" example:"John"`
	LastName        string    `json:"lastName" binding:"required,personname" example:"Doe"`
	CapitalizedName string    `json:"capitalizedName" example:"JOHN DOE"`
	FullName        string    `json:"fullName" example:"John Doe"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type UserDetails struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	CapitalizedName string    `json:"capitalizedName"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CreateUser struct {
	FirstName string `json:"firstName" binding:"required,personname" example:"John"`
	LastName  string `json:"lastName" binding:"required,personname" example:"Doe"`
}

type FindNamesQuery struct {
	FirstName string `json:"firstName" binding:"omitempty,personname" example:"John"`
	LastName  string `json:"lastName" binding:"omitempty,personname" example:"Doe"`
}

type UserNameDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
}

type SearchQuery struct {
	Q    string `json:"q" binding:"required,min=1,max=200" example:"john"`
	Size int    `json:"size" binding:"omitempty,min=1,max=50" example:"10"`
}

var (
	UserBaseSchema = dto.SchemaOf[UserBase]("UserBase")

	UserDetailsSchema = UserBaseSchema.MustPick("UserDetails",
		[]string{"id", "firstName", "lastName", "capitalizedName", "createdAt", "updatedAt"}, false)
	UserNameDetailsSchema = UserBaseSchema.MustPick("UserNameDetails",
		[]string{"firstName", "lastName", "fullName"}, false)
	CreateUserSchema     = UserBaseSchema.MustPick("CreateUser", []string{"firstName", "lastName"}, false)
	FindNamesQuerySchema = UserBaseSchema.MustPick("FindNamesQuery", []string{"firstName", "lastName"}, true)
	UserIDParamsSchema   = UserBaseSchema.MustPick("UserIDParams", []string{"id"}, false)
	SearchQuerySchema    = dto.SchemaOf[SearchQuery]("SearchQuery")
)

// Users is the users API.
var Users = Router{
	"users": Router{
		"list": Route{
			Method:     http.MethodGet,
			Path:       "/users",
			Summary:    "List all users",
			Status:     http.StatusOK,
			Output:     &UserDetailsSchema,
			ListOutput: true,
		},
		"byId": Route{
			Method:  http.MethodGet,
			Path:    "/users/:id",
			Summary: "Get a user by id",
			Status:  http.StatusOK,
			Params:  &UserIDParamsSchema,
			Output:  &UserDetailsSchema,
		},
		"findNames": Route{
			Method:     http.MethodGet,
			Path:       "/users/findNames",
			Summary:    "Find users whose names contain the given fragments",
			Status:     http.StatusOK,
			Query:      &FindNamesQuerySchema,
			Output:     &UserNameDetailsSchema,
			ListOutput: true,
		},
		"search": Route{
			Method:     http.MethodGet,
			Path:       "/users/search",
			Summary:    "Full-text user search",
			Status:     http.StatusOK,
			Query:      &SearchQuerySchema,
			Output:     &UserDetailsSchema,
			ListOutput: true,
		},
		"add": Route{
			Method:  http.MethodPost,
			Path:    "/users",
			Summary: "Create a user",
			Status:  http.StatusCreated,
			Body:    &CreateUserSchema,
			Output:  &UserDetailsSchema,
		},
	},
}

// UsersRouterName is the leading part of every users query key.
const UsersRouterName = "users"

// UsersQueryKey is the cache key of a users route, identical to the one the
// utils built by NewUtils(Users, ...) use.
func UsersQueryKey(route string, args *Args) string {
	r := MustLookup(Users, UsersRouterName, route)
	return querycache.Key(r.QueryKey(UsersRouterName, route, args)...)
}
