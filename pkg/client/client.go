// Package client calls the users API through its contract.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/go-users-contract/pkg/contract"
	"github.com/oksasatya/go-users-contract/pkg/querycache"
)

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%d %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for k, v := range e.Details {
		parts = append(parts, k+" "+v)
	}
	return fmt.Sprintf("%d %s (%s)", e.Status, e.Message, strings.Join(parts, ", "))
}

// Client implements contract.Caller over HTTP. BaseURL includes the API
// prefix, e.g. http://localhost:3000/api.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

// Call performs the route and returns the envelope's data.
func (c *Client) Call(ctx context.Context, route contract.Route, args *contract.Args) (json.RawMessage, error) {
	if args == nil {
		args = &contract.Args{}
	}
	path, err := route.Expand(args.Params)
	if err != nil {
		return nil, err
	}
	u := c.BaseURL + path
	if len(args.Query) > 0 {
		q := url.Values{}
		for k, v := range args.Query {
			if v != "" {
				q.Set(k, v)
			}
		}
		if enc := q.Encode(); enc != "" {
			u += "?" + enc
		}
	}

	var body io.Reader
	if args.Body != nil {
		b, err := json.Marshal(args.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(route.Method), u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, &APIError{Status: res.StatusCode, Message: "undecodable response: " + err.Error()}
	}
	if res.StatusCode >= http.StatusBadRequest || !env.Success {
		return nil, &APIError{Status: res.StatusCode, Message: env.Message, Details: env.Error}
	}
	return env.Data, nil
}

// Utils derives cached query helpers for the users contract over this client.
func (c *Client) Utils(cache querycache.Cache, opts ...contract.UtilsOption) *contract.Utils {
	return contract.NewUtils(contract.Users, c, cache, opts...)
}

func call[T any](ctx context.Context, c *Client, name string, args *contract.Args) (T, error) {
	var out T
	raw, err := c.Call(ctx, contract.MustLookup(contract.Users, contract.UsersRouterName, name), args)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

func (c *Client) List(ctx context.Context) ([]contract.UserDetails, error) {
	return call[[]contract.UserDetails](ctx, c, "list", nil)
}

func (c *Client) ByID(ctx context.Context, id int64) (contract.UserDetails, error) {
	return call[contract.UserDetails](ctx, c, "byId", IDArgs(id))
}

func (c *Client) Add(ctx context.Context, in contract.CreateUser) (contract.UserDetails, error) {
	return call[contract.UserDetails](ctx, c, "add", &contract.Args{Body: in})
}

func (c *Client) FindNames(ctx context.Context, q contract.FindNamesQuery) ([]contract.UserNameDetails, error) {
	return call[[]contract.UserNameDetails](ctx, c, "findNames", FindNamesArgs(q))
}

func (c *Client) Search(ctx context.Context, q contract.SearchQuery) ([]contract.UserDetails, error) {
	args := &contract.Args{Query: map[string]string{"q": q.Q}}
	if q.Size > 0 {
		args.Query["size"] = strconv.Itoa(q.Size)
	}
	return call[[]contract.UserDetails](ctx, c, "search", args)
}

// IDArgs addresses users.byId.
func IDArgs(id int64) *contract.Args {
	return &contract.Args{Params: map[string]string{"id": strconv.FormatInt(id, 10)}}
}

// FindNamesArgs addresses users.findNames.
func FindNamesArgs(q contract.FindNamesQuery) *contract.Args {
	return &contract.Args{Query: map[string]string{"firstName": q.FirstName, "lastName": q.LastName}}
}
