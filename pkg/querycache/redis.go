package querycache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared between server replicas. Keys are stored under
// Namespace.
type Redis struct {
	rdb       *redis.Client
	Namespace string
}

func NewRedis(rdb *redis.Client, namespace string) *Redis {
	return &Redis{rdb: rdb, Namespace: namespace}
}

func (r *Redis) key(k string) string {
	if r.Namespace == "" {
		return k
	}
	return r.Namespace + Sep + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) InvalidatePrefix(ctx context.Context, prefix string) error {
	full := r.key(prefix)
	if err := r.rdb.Del(ctx, full).Err(); err != nil {
		return err
	}
	iter := r.rdb.Scan(ctx, 0, globEscape(full)+Sep+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// query values end up in keys, so glob metacharacters must not widen a SCAN
func globEscape(s string) string {
	return globReplacer.Replace(s)
}

var _ Cache = (*Redis)(nil)
