package redis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

// CachedIdentityRepository is a read-through decorator: lookups consult the
// cache first and fall back to the wrapped repository, priming the cache on
// the way out. Cache failures degrade to plain store access and are logged,
// never surfaced — Redis being down must not block a signin.
type CachedIdentityRepository struct {
	inner ports.IdentityRepository
	cache *IdentityCache
	log   zerolog.Logger
}

func NewCachedIdentityRepository(inner ports.IdentityRepository, cache *IdentityCache, log zerolog.Logger) *CachedIdentityRepository {
	return &CachedIdentityRepository{inner: inner, cache: cache, log: log}
}

func (r *CachedIdentityRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*domain.Identity, error) {
	identity, ok, err := r.cache.Get(ctx, email, role)
	if err != nil {
		r.log.Warn().Err(err).Str("email", email).Str("role", role).Msg("identity cache read failed")
	}
	if ok {
		return identity, nil
	}

	identity, err = r.inner.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, identity); err != nil {
		r.log.Warn().Err(err).Str("email", email).Str("role", role).Msg("identity cache write failed")
	}
	return identity, nil
}

func (r *CachedIdentityRepository) Insert(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	created, err := r.inner.Insert(ctx, identity)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, created); err != nil {
		r.log.Warn().Err(err).Str("email", created.Email).Str("role", created.Role).Msg("identity cache prime failed")
	}
	return created, nil
}
