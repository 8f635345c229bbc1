package repository

import (
	"context"

	"github.com/google/uuid"

	"sellwatch/internal/models"
)

// AlertRepository defines the interface for alert subscription storage
type AlertRepository interface {
	Repository
	Create(ctx context.Context, alert *models.AlertSubscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AlertSubscription, error)
	// ListActive returns active subscriptions ordered by creation time, then id
	ListActive(ctx context.Context, filter AlertFilter) ([]models.AlertSubscription, error)
	// Deactivate soft deletes a subscription. It reports false when the
	// subscription was already inactive and ErrNotFound when it does not exist.
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
}

// AlertFilter defines the options for listing subscriptions
type AlertFilter struct {
	// NewestFirst reverses the default oldest-first order
	NewestFirst bool
	Limit       *int
}
