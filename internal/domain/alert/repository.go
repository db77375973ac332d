package alert

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines alert persistence operations
type Repository interface {
	// Create stores a new alert unless a pending one already exists for the
	// same transaction; in that case the existing alert is returned unchanged.
	Create(ctx context.Context, a *Alert) (*Alert, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListPending(ctx context.Context, limit, offset int) ([]*Alert, error)
	CountPending(ctx context.Context) (int64, error)
	Update(ctx context.Context, a *Alert) error
}

// ErrAlertNotFound indicates a missing alert
type ErrAlertNotFound struct {
	AlertID uuid.UUID
}

func (e ErrAlertNotFound) Error() string {
	return "alert not found: " + e.AlertID.String()
}
