package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

type stubIdentityRepo struct {
	identities map[string]*domain.Identity
	nextID     int64
	findErr    error
	insertErr  error
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{identities: make(map[string]*domain.Identity)}
}

func repoKey(email, role string) string {
	return email + "|" + role
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (r *stubIdentityRepo) FindByEmailAndRole(_ context.Context, email, role string) (*domain.Identity, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if i, ok := r.identities[repoKey(email, role)]; ok {
		return cloneIdentity(i), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubIdentityRepo) Insert(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	key := repoKey(identity.Email, identity.Role)
	if _, exists := r.identities[key]; exists {
		return nil, domain.ErrAccountExists
	}
	r.nextID++
	stored := cloneIdentity(identity)
	stored.ID = r.nextID
	r.identities[key] = stored
	return cloneIdentity(stored), nil
}

func newTestAuthService(repo *stubIdentityRepo) *AuthService {
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), NewJWTTokenService("secret"), time.Hour)
}

func TestAuthService_SignUp_Success(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := newTestAuthService(repo)

	identity, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if identity.ID != 1 {
		t.Fatalf("expected id 1, got %d", identity.ID)
	}
	if identity.PasswordHash != "" {
		t.Fatalf("expected hash to be stripped from the returned identity")
	}

	stored := repo.identities[repoKey("a@x.com", domain.RoleStudent)]
	if stored == nil {
		t.Fatalf("identity not persisted")
	}
	if stored.PasswordHash == "pw1" {
		t.Fatalf("expected stored password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_SignUp_InvalidRole(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	for _, role := range []string{"", "admin", "Student"} {
		if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", role); !errors.Is(err, domain.ErrInvalidRole) {
			t.Fatalf("role %q: expected ErrInvalidRole, got %v", role, err)
		}
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	// different username and password, same (email, role)
	if _, err := svc.SignUp(context.Background(), "alicia", "a@x.com", "pw2", domain.RoleStudent); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthService_SignUp_SameEmailDifferentRole(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("student signup failed: %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleLecturer); err != nil {
		t.Fatalf("lecturer signup with same email should succeed, got %v", err)
	}
}

func TestAuthService_SignUp_InsertConflict(t *testing.T) {
	// the store reports the duplicate only at insert time, as in a race
	// between two concurrent signups
	repo := newStubIdentityRepo()
	repo.insertErr = domain.ErrAccountExists
	svc := newTestAuthService(repo)

	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthService_SignUp_StoreFailure(t *testing.T) {
	repo := newStubIdentityRepo()
	repo.findErr = errors.New("connection refused")
	svc := newTestAuthService(repo)

	_, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token, identity, err := svc.SignIn(context.Background(), "a@x.com", "pw1", domain.RoleStudent)
	if err != nil {
		t.Fatalf("signin failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if identity.ID != 1 || identity.Username != "alice" || identity.Role != domain.RoleStudent {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.PasswordHash != "" {
		t.Fatalf("expected hash to be stripped from the returned identity")
	}

	claims, err := NewJWTTokenService("secret").Verify(token)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if claims.IdentityID != 1 || claims.Email != "a@x.com" || claims.Role != domain.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_SignIn_RoleScoping(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	// correct credentials under the wrong role never match the student account
	if _, _, err := svc.SignIn(context.Background(), "a@x.com", "pw1", domain.RoleLecturer); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_SignIn_BadPassword(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	if _, err := svc.SignUp(context.Background(), "alice", "a@x.com", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "a@x.com", "wrong", domain.RoleStudent); !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_InvalidRole(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	if _, _, err := svc.SignIn(context.Background(), "a@x.com", "pw1", "admin"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_SignIn_StoreFailure(t *testing.T) {
	repo := newStubIdentityRepo()
	repo.findErr = errors.New("connection refused")
	svc := newTestAuthService(repo)

	if _, _, err := svc.SignIn(context.Background(), "a@x.com", "pw1", domain.RoleStudent); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAuthService_EmailNormalization(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())

	if _, err := svc.SignUp(context.Background(), "alice", "  A@X.com ", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "a@x.com", "pw1", domain.RoleStudent); err != nil {
		t.Fatalf("expected normalized email to match, got %v", err)
	}
}

// The end-to-end account lifecycle across both roles.
func TestAuthService_Scenario(t *testing.T) {
	svc := newTestAuthService(newStubIdentityRepo())
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "alice", "a@x.com", "pw1", domain.RoleStudent)
	if err != nil || created.ID != 1 {
		t.Fatalf("signup: id=%v err=%v", created, err)
	}

	token, identity, err := svc.SignIn(ctx, "a@x.com", "pw1", domain.RoleStudent)
	if err != nil || token == "" || identity.ID != 1 {
		t.Fatalf("signin: token=%q identity=%+v err=%v", token, identity, err)
	}

	if _, _, err := svc.SignIn(ctx, "a@x.com", "pw1", domain.RoleLecturer); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "a@x.com", "wrong", domain.RoleStudent); !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "alice", "a@x.com", "pw2", domain.RoleStudent); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}
