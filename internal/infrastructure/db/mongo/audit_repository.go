package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const auditCollection = "auth_events"

// auditDocument is the stored shape of a domain.AuthEvent.
type auditDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Type       string             `bson:"type"`
	Username   string             `bson:"username"`
	IdentityID string             `bson:"identity_id,omitempty"`
	ActorID    string             `bson:"actor_id,omitempty"`
	Timestamp  time.Time          `bson:"timestamp"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository on the auth_events collection.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

// Insert persists one event and sets its ID.
func (r *AuditRepository) Insert(ctx context.Context, e *domain.AuthEvent) error {
	doc := auditDocument{
		Type:       string(e.Type),
		Username:   e.Username,
		IdentityID: e.IdentityID,
		ActorID:    e.ActorID,
		Timestamp:  e.Timestamp.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

// List returns the newest events matching filter.
func (r *AuditRepository) List(ctx context.Context, f ports.AuditFilter) ([]*domain.AuthEvent, error) {
	filter := bson.M{}
	if f.Username != "" {
		filter["username"] = f.Username
	}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	out := make([]*domain.AuthEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.AuthEvent{
			ID:         d.ID.Hex(),
			Type:       domain.AuthEventType(d.Type),
			Username:   d.Username,
			IdentityID: d.IdentityID,
			ActorID:    d.ActorID,
			Timestamp:  d.Timestamp,
		})
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by List.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	return nil
}
