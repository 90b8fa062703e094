package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

const defaultCacheTTL = 5 * time.Minute

// IdentityCache caches identities by (role, email) to spare the store a
// lookup on every signin. Key format: identity:<role>:<email>
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache creates an IdentityCache wrapping the given Redis client.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &IdentityCache{client: client, ttl: ttl}
}

// cachedIdentity spells out every field, including the hash the domain type
// hides from JSON. The cache is server-internal; entries never reach clients.
type cachedIdentity struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Get returns the cached identity, or ok=false on a miss.
func (c *IdentityCache) Get(ctx context.Context, email, role string) (*domain.Identity, bool, error) {
	raw, err := c.client.Get(ctx, c.key(email, role)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("identity cache get: %w", err)
	}

	var ci cachedIdentity
	if err := json.Unmarshal(raw, &ci); err != nil {
		// corrupt entry: treat as a miss, the store remains authoritative
		return nil, false, nil
	}

	return &domain.Identity{
		ID:           ci.ID,
		Username:     ci.Username,
		Email:        ci.Email,
		Role:         ci.Role,
		PasswordHash: ci.PasswordHash,
		CreatedAt:    ci.CreatedAt,
	}, true, nil
}

// Set stores the identity under its (role, email) key, expiring after the TTL.
func (c *IdentityCache) Set(ctx context.Context, identity *domain.Identity) error {
	raw, err := json.Marshal(cachedIdentity{
		ID:           identity.ID,
		Username:     identity.Username,
		Email:        identity.Email,
		Role:         identity.Role,
		PasswordHash: identity.PasswordHash,
		CreatedAt:    identity.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("identity cache marshal: %w", err)
	}
	return c.client.Set(ctx, c.key(identity.Email, identity.Role), raw, c.ttl).Err()
}

func (c *IdentityCache) key(email, role string) string {
	return fmt.Sprintf("identity:%s:%s", role, email)
}
