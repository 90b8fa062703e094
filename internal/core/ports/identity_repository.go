package ports

import (
	"context"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

// IdentityRepository defines the persistence contract for account identities.
// The implementation is the uniqueness authority for the (email, role) pair:
// Insert must fail atomically with domain.ErrAccountExists on a duplicate, so
// callers never need their own check-and-insert locking.
type IdentityRepository interface {
	// FindByEmailAndRole returns the identity registered under the given pair,
	// or domain.ErrAccountNotFound when no such account exists.
	FindByEmailAndRole(ctx context.Context, email, role string) (*domain.Identity, error)

	// Insert persists a new identity and returns it with its assigned id.
	Insert(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
