// Package search keeps an Elasticsearch index of users for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
)

const (
	defaultSize = 10
	maxSize     = 50
	timeout     = 3 * time.Second
)

type document struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserIndex reads and writes user documents in one index.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

// Index upserts the user document keyed by user id.
func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(document{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index user %d: %s", u.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over the name fields. size is clamped to 1..50,
// with 10 used when it is out of range.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"full_name^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	// the index is created by the first Index call
	if res.StatusCode == http.StatusNotFound {
		return []*entity.User{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		u := &entity.User{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName}
		// timestamps are written by Index; a hand-edited document may lack them
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
		u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
		out = append(out, u)
	}
	return out, nil
}
