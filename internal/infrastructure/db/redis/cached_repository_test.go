package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/pkg/logger"
)

type countingRepo struct {
	identities map[string]*domain.Identity
	findCalls  int
	nextID     int64
}

func newCountingRepo() *countingRepo {
	return &countingRepo{identities: make(map[string]*domain.Identity)}
}

func (r *countingRepo) FindByEmailAndRole(_ context.Context, email, role string) (*domain.Identity, error) {
	r.findCalls++
	if i, ok := r.identities[email+"|"+role]; ok {
		clone := *i
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *countingRepo) Insert(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	key := identity.Email + "|" + identity.Role
	if _, exists := r.identities[key]; exists {
		return nil, domain.ErrAccountExists
	}
	r.nextID++
	stored := *identity
	stored.ID = r.nextID
	r.identities[key] = &stored
	clone := stored
	return &clone, nil
}

func newTestCache(t *testing.T) (*IdentityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdentityCache(client, time.Minute), mr
}

func seedIdentity(t *testing.T, repo *countingRepo) *domain.Identity {
	t.Helper()
	created, err := repo.Insert(context.Background(), &domain.Identity{
		Username:     "alice",
		Email:        "a@x.com",
		Role:         domain.RoleStudent,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return created
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	cache, _ := newTestCache(t)
	inner := newCountingRepo()
	seedIdentity(t, inner)
	repo := NewCachedIdentityRepository(inner, cache, logger.Nop())
	ctx := context.Background()

	first, err := repo.FindByEmailAndRole(ctx, "a@x.com", domain.RoleStudent)
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	if inner.findCalls != 1 {
		t.Fatalf("expected one store lookup, got %d", inner.findCalls)
	}

	second, err := repo.FindByEmailAndRole(ctx, "a@x.com", domain.RoleStudent)
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if inner.findCalls != 1 {
		t.Fatalf("expected cache hit, store was queried %d times", inner.findCalls)
	}

	if second.ID != first.ID || second.Username != first.Username || second.PasswordHash != first.PasswordHash {
		t.Fatalf("cached identity differs: %+v vs %+v", second, first)
	}
}

func TestCachedRepository_InsertPrimesCache(t *testing.T) {
	cache, _ := newTestCache(t)
	inner := newCountingRepo()
	repo := NewCachedIdentityRepository(inner, cache, logger.Nop())
	ctx := context.Background()

	created, err := repo.Insert(ctx, &domain.Identity{
		Username:     "alice",
		Email:        "a@x.com",
		Role:         domain.RoleStudent,
		PasswordHash: "$2a$10$hash",
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	if _, err := repo.FindByEmailAndRole(ctx, "a@x.com", domain.RoleStudent); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if inner.findCalls != 0 {
		t.Fatalf("expected the insert to prime the cache, store was queried %d times", inner.findCalls)
	}
}

func TestCachedRepository_NotFoundPassesThrough(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := NewCachedIdentityRepository(newCountingRepo(), cache, logger.Nop())

	_, err := repo.FindByEmailAndRole(context.Background(), "ghost@x.com", domain.RoleStudent)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestCachedRepository_RedisDownDegradesToStore(t *testing.T) {
	cache, mr := newTestCache(t)
	inner := newCountingRepo()
	seedIdentity(t, inner)
	repo := NewCachedIdentityRepository(inner, cache, logger.Nop())

	mr.Close()

	identity, err := repo.FindByEmailAndRole(context.Background(), "a@x.com", domain.RoleStudent)
	if err != nil {
		t.Fatalf("lookup should fall back to the store: %v", err)
	}
	if identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestIdentityCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t)

	if err := mr.Set("identity:student:a@x.com", "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, ok, err := cache.Get(context.Background(), "a@x.com", domain.RoleStudent)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("corrupt entry should read as a miss")
	}
}

func TestIdentityCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, &domain.Identity{ID: 1, Username: "alice", Email: "a@x.com", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, _ := cache.Get(ctx, "a@x.com", domain.RoleStudent); ok {
		t.Fatalf("expected entry to expire")
	}
}
