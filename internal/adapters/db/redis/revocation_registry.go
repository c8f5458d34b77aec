package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:user:"

// RevocationRegistry is the shared-store variant of the revocation
// registry, for deployments with more than one serving process or
// restarts shorter than the access-token lifetime.
type RevocationRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a registry whose entries expire after ttl. The ttl only
// needs to outlive the longest outstanding token, so callers pass the
// refresh-token lifetime; a crashed client can therefore never leak a
// key forever.
func New(client *redis.Client, ttl time.Duration) *RevocationRegistry {
	return &RevocationRegistry{client: client, ttl: ttl}
}

func (r *RevocationRegistry) Revoke(ctx context.Context, userID uuid.UUID) error {
	return r.client.Set(ctx, keyPrefix+userID.String(), "1", r.ttl).Err()
}

func (r *RevocationRegistry) Unrevoke(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, keyPrefix+userID.String()).Err()
}

func (r *RevocationRegistry) IsRevoked(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+userID.String()).Result()
	if err != nil {
		// fail closed: an unreachable registry must not let
		// revoked sessions through
		return true, err
	}
	return n > 0, nil
}
