package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// DefaultRedisKey is the hash holding doctor id -> name.
const DefaultRedisKey = "medledger:roster"

// Redis keeps the roster in a single hash. Concurrent lookups for the same id
// share one round trip.
type Redis struct {
	client redis.Cmdable
	key    string
	group  singleflight.Group
}

type lookupResult struct {
	name  string
	found bool
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Add sets the entry only if the field is absent, then compares against the
// stored name so a racing writer with a different name is reported.
func (r *Redis) Add(ctx context.Context, id domain.DoctorID, name string) error {
	field := id.String()
	set, err := r.client.HSetNX(ctx, r.key, field, name).Result()
	if err != nil {
		return fmt.Errorf("roster add %s: %w: %w", field, sentinel.ErrUnavailable, err)
	}
	if set {
		return nil
	}
	existing, err := r.client.HGet(ctx, r.key, field).Result()
	if err != nil {
		return fmt.Errorf("roster read %s: %w: %w", field, sentinel.ErrUnavailable, err)
	}
	if existing != name {
		return sentinel.ErrConflict
	}
	return nil
}

func (r *Redis) Lookup(ctx context.Context, id domain.DoctorID) (string, bool, error) {
	field := id.String()
	v, err, _ := r.group.Do(field, func() (any, error) {
		name, err := r.client.HGet(ctx, r.key, field).Result()
		if errors.Is(err, redis.Nil) {
			return lookupResult{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("roster lookup %s: %w: %w", field, sentinel.ErrUnavailable, err)
		}
		return lookupResult{name: name, found: true}, nil
	})
	if err != nil {
		return "", false, err
	}
	res := v.(lookupResult)
	return res.name, res.found, nil
}
