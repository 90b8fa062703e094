package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codeplatform/auth-service/internal/core/domain"
)

const auditCollection = "auth_audit"

// MongoAuditRepository appends auth outcomes to the audit trail collection.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	Email      string `bson:"email"`
	Role       string `bson:"role"`
	Action     string `bson:"action"`
	Result     string `bson:"result"`
	OccurredAt int64  `bson:"occurred_at"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := mongoAuditEvent{
		Email:      event.Email,
		Role:       event.Role,
		Action:     event.Action,
		Result:     event.Result,
		OccurredAt: event.OccurredAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
