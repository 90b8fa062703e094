package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

const (
	identityCollection = "identities"
	counterCollection  = "counters"
)

// MongoIdentityRepository persists identities in MongoDB. The compound unique
// index on (email, role) makes the database the uniqueness authority: two
// concurrent signups for the same pair race down to a single winner.
type MongoIdentityRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{
		coll:     db.Collection(identityCollection),
		counters: db.Collection(counterCollection),
	}
}

type mongoIdentity struct {
	ID           int64  `bson:"_id"`
	Username     string `bson:"username"`
	Email        string `bson:"email"`
	Role         string `bson:"role"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
}

// EnsureIndexes creates the (email, role) unique index. Call once at startup,
// before the first request is served.
func (r *MongoIdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "email", Value: 1},
			{Key: "role", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_email_role"),
	})
	if err != nil {
		return fmt.Errorf("create identity indexes: %w", err)
	}
	return nil
}

func (r *MongoIdentityRepository) Insert(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoIdentity{
		ID:           id,
		Username:     identity.Username,
		Email:        identity.Email,
		Role:         identity.Role,
		PasswordHash: identity.PasswordHash,
		CreatedAt:    identity.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	created := *identity
	created.ID = id
	return &created, nil
}

func (r *MongoIdentityRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*domain.Identity, error) {
	var mi mongoIdentity
	err := r.coll.FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&mi)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

// nextID increments the identity sequence counter atomically. The counter
// document is created on first use; ids start at 1.
func (r *MongoIdentityRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": identityCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next identity id: %w", err)
	}
	return counter.Seq, nil
}

func (mi *mongoIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           mi.ID,
		Username:     mi.Username,
		Email:        mi.Email,
		Role:         mi.Role,
		PasswordHash: mi.PasswordHash,
		CreatedAt:    unixToTime(mi.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
