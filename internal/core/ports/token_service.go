package ports

import (
	"time"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

// TokenService issues and verifies self-contained signed bearer tokens.
// Verification is stateless: no server-side lookup, safe to call concurrently.
type TokenService interface {
	// Issue mints a signed token carrying claims with an absolute expiry of now+ttl.
	Issue(claims domain.Claims, ttl time.Duration) (string, error)

	// Verify validates signature, structure and expiry. Every failure collapses
	// into domain.ErrInvalidToken so callers cannot distinguish why a token was
	// rejected.
	Verify(token string) (*domain.Claims, error)
}
