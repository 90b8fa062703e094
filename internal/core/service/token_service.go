package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

// tokenClaims is the JWT payload. The subject carries the account email,
// matching what the frontend presents on subsequent requests.
type tokenClaims struct {
	Role       string `json:"role"`
	IdentityID int64  `json:"identity_id"`
	jwt.RegisteredClaims
}

// JWTTokenService signs and verifies HS256 bearer tokens with a symmetric
// secret. Tokens are self-contained: verification needs no store lookup.
// Clock skew between issuer and verifier is not compensated.
type JWTTokenService struct {
	secret []byte
}

func NewJWTTokenService(secret string) *JWTTokenService {
	return &JWTTokenService{secret: []byte(secret)}
}

func (s *JWTTokenService) Issue(claims domain.Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	tc := tokenClaims{
		Role:       claims.Role,
		IdentityID: claims.IdentityID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return t.SignedString(s.secret)
}

// Verify validates signature, structure and expiry. Any failure yields
// domain.ErrInvalidToken; callers learn nothing about which check tripped.
func (s *JWTTokenService) Verify(token string) (*domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Claims{
		IdentityID: tc.IdentityID,
		Email:      tc.Subject,
		Role:       tc.Role,
	}, nil
}
