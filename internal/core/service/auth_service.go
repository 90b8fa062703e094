package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

// AuthService implements signup and signin for the two platform roles.
// It holds no per-request state; uniqueness of (email, role) is enforced by
// the repository, not here.
type AuthService struct {
	repo     ports.IdentityRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	tokenTTL time.Duration
}

func NewAuthService(repo ports.IdentityRepository, hasher ports.PasswordHasher, tokens ports.TokenService, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, tokenTTL: tokenTTL}
}

// SignUp registers a new identity under (email, role). The pre-insert lookup
// gives the common duplicate a fast answer; the racing duplicate is caught by
// the repository's unique constraint and surfaces identically.
func (s *AuthService) SignUp(ctx context.Context, username, email, password, role string) (*domain.Identity, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	email = normalizeEmail(email)

	_, err := s.repo.FindByEmailAndRole(ctx, email, role)
	switch {
	case err == nil:
		return nil, domain.ErrAccountExists
	case errors.Is(err, domain.ErrAccountNotFound):
		// expected: the email is free for this role
	default:
		return nil, storeFailure(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Insert(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, domain.ErrAccountExists
		}
		return nil, storeFailure(err)
	}
	return created.Public(), nil
}

// SignIn verifies credentials for (email, role) and mints a bearer token.
// Not-found and wrong-password remain distinct outcomes here; whether to
// collapse them is the HTTP layer's call.
func (s *AuthService) SignIn(ctx context.Context, email, password, role string) (string, *domain.Identity, error) {
	if !domain.ValidRole(role) {
		return "", nil, domain.ErrInvalidRole
	}
	email = normalizeEmail(email)

	identity, err := s.repo.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrAccountNotFound
		}
		return "", nil, storeFailure(err)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		return "", nil, domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(domain.Claims{
		IdentityID: identity.ID,
		Email:      identity.Email,
		Role:       identity.Role,
	}, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, identity.Public(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storeFailure masks unexpected repository errors behind a single outcome so
// connectivity details never reach the caller; the original cause stays
// wrapped for server-side logs.
func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
