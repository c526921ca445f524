package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhive/task-api/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository is the append-only MongoDB store for audit events.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ActorID   string             `bson:"actor_id"`
	Action    string             `bson:"action"`
	SubjectID string             `bson:"subject_id,omitempty"`
	At        int64              `bson:"at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDoc{
		ActorID:   event.ActorID,
		Action:    string(event.Action),
		SubjectID: event.SubjectID,
		At:        event.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer cur.Close(ctx)

	events := make([]domain.AuditEvent, 0, limit)
	for cur.Next(ctx) {
		var doc auditDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		events = append(events, domain.AuditEvent{
			ID:        doc.ID.Hex(),
			ActorID:   doc.ActorID,
			Action:    domain.AuditAction(doc.Action),
			SubjectID: doc.SubjectID,
			At:        time.Unix(doc.At, 0).UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
