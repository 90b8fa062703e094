package domain

import (
	"errors"
	"time"
)

const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
)

// ValidRole reports whether role is one of the two enumerated platform roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleLecturer
}

var ErrInvalidRole = errors.New("role must be either 'student' or 'lecturer'")
var ErrAccountExists = errors.New("account already exists for this email and role")
var ErrAccountNotFound = errors.New("account not found")
var ErrBadCredentials = errors.New("incorrect password")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrStoreUnavailable = errors.New("identity store unavailable")

// Identity models one account. The same email may exist once per role;
// the (email, role) pair is the unit of uniqueness.
type Identity struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy stripped of the password hash, safe to serialize.
func (i *Identity) Public() *Identity {
	if i == nil {
		return nil
	}
	clone := *i
	clone.PasswordHash = ""
	return &clone
}

// Claims is the set of facts a bearer token asserts about its holder.
// It is minted fresh per signin and never persisted.
type Claims struct {
	IdentityID int64
	Email      string
	Role       string
}

// AuditEvent is one recorded auth outcome, delivered off the request path.
type AuditEvent struct {
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Action     string    `json:"action"`
	Result     string    `json:"result"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	AuditActionSignUp = "signup"
	AuditActionSignIn = "signin"

	AuditResultOK       = "ok"
	AuditResultRejected = "rejected"
)
