// Package mongo provides the MongoDB implementation of the alert repository
// backing the analyst review queue.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fraudlens-risk-platform/internal/domain/alert"
)

const (
	// AlertCollectionName is the name of the alert collection in MongoDB
	AlertCollectionName = "alerts"
)

// AlertRepository implements the alert.Repository interface for MongoDB
type AlertRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAlertRepository creates a new MongoDB alert repository
func NewAlertRepository(logger *slog.Logger, db *mongo.Database) alert.Repository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new alert unless a pending one already exists for the same
// transaction. Re-flagging a transaction that an analyst has not yet looked
// at must not pile up duplicate queue entries.
func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) (*alert.Alert, error) {
	collection := r.db.Collection(AlertCollectionName)

	filter := bson.M{
		"transaction_id": a.TransactionID,
		"status":         alert.StatusPending,
	}
	var existing alert.Alert
	err := collection.FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to check for pending alert",
			"transaction_id", a.TransactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to check for pending alert: %w", err)
	}

	if _, err := collection.InsertOne(ctx, a); err != nil {
		r.logger.Error("Failed to create alert",
			"transaction_id", a.TransactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return a, nil
}

// GetByID retrieves an alert by its identifier.
// Returns ErrAlertNotFound if no alert exists.
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	collection := r.db.Collection(AlertCollectionName)

	var a alert.Alert
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, alert.ErrAlertNotFound{AlertID: id}
		}
		r.logger.Error("Failed to get alert", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return &a, nil
}

// ListPending retrieves paginated pending alerts, newest first
func (r *AlertRepository) ListPending(ctx context.Context, limit, offset int) ([]*alert.Alert, error) {
	collection := r.db.Collection(AlertCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, bson.M{"status": alert.StatusPending}, opts)
	if err != nil {
		r.logger.Error("Failed to list pending alerts", "error", err)
		return nil, fmt.Errorf("failed to list pending alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*alert.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}

	return alerts, nil
}

// CountPending returns the number of alerts awaiting analyst review
func (r *AlertRepository) CountPending(ctx context.Context) (int64, error) {
	collection := r.db.Collection(AlertCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"status": alert.StatusPending})
	if err != nil {
		r.logger.Error("Failed to count pending alerts", "error", err)
		return 0, fmt.Errorf("failed to count pending alerts: %w", err)
	}

	return count, nil
}

// Update replaces the stored alert document
func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	collection := r.db.Collection(AlertCollectionName)

	result, err := collection.ReplaceOne(ctx, bson.M{"id": a.ID}, a)
	if err != nil {
		r.logger.Error("Failed to update alert", "id", a.ID.String(), "error", err)
		return fmt.Errorf("failed to update alert: %w", err)
	}

	if result.MatchedCount == 0 {
		return alert.ErrAlertNotFound{AlertID: a.ID}
	}

	return nil
}
