package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sellwatch/internal/models"
	"sellwatch/internal/repository"
)

type alertRepository struct {
	repository.BaseRepository
}

// NewAlertRepository creates a new PostgreSQL alert subscription repository
func NewAlertRepository(db *sql.DB) repository.AlertRepository {
	return &alertRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const alertColumns = `id, email, push_token, min_price, time_window_from, time_window_to, is_active, created_at, deactivated_at`

func (r *alertRepository) Create(ctx context.Context, alert *models.AlertSubscription) error {
	if !alert.HasEmail() && !alert.HasPush() {
		return fmt.Errorf("%w: email or push token required", repository.ErrInvalidInput)
	}
	if alert.MinPrice <= 0 {
		return fmt.Errorf("%w: min price must be positive", repository.ErrInvalidInput)
	}

	query := `
		INSERT INTO alert_subscriptions (id, email, push_token, min_price, time_window_from, time_window_to, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
		RETURNING ` + alertColumns

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}

	row := r.DB().QueryRowContext(ctx, query,
		alert.ID,
		alert.Email,
		alert.PushToken,
		alert.MinPrice,
		alert.TimeWindowFrom,
		alert.TimeWindowTo,
		time.Now().UTC(),
	)
	return scanAlert(row, alert)
}

func (r *alertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AlertSubscription, error) {
	query := `SELECT ` + alertColumns + ` FROM alert_subscriptions WHERE id = $1`

	alert := &models.AlertSubscription{}
	err := scanAlert(r.DB().QueryRowContext(ctx, query, id), alert)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *alertRepository) ListActive(ctx context.Context, filter repository.AlertFilter) ([]models.AlertSubscription, error) {
	query := `SELECT ` + alertColumns + ` FROM alert_subscriptions WHERE is_active = TRUE`
	if filter.NewestFirst {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}

	args := make([]interface{}, 0, 1)
	if filter.Limit != nil {
		query += ` LIMIT $1`
		args = append(args, *filter.Limit)
	}

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]models.AlertSubscription, 0)
	for rows.Next() {
		var a models.AlertSubscription
		if err := scanAlert(rows, &a); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE alert_subscriptions
		SET is_active = FALSE, deactivated_at = $1
		WHERE id = $2 AND is_active = TRUE`, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected > 0 {
		return true, nil
	}

	var exists bool
	if err := r.DB().QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM alert_subscriptions WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrNotFound
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner, a *models.AlertSubscription) error {
	var (
		email, pushToken, from, to sql.NullString
		deactivatedAt              sql.NullTime
	)
	if err := row.Scan(
		&a.ID,
		&email,
		&pushToken,
		&a.MinPrice,
		&from,
		&to,
		&a.IsActive,
		&a.CreatedAt,
		&deactivatedAt,
	); err != nil {
		return err
	}

	a.Email = nullString(email)
	a.PushToken = nullString(pushToken)
	a.TimeWindowFrom = nullString(from)
	a.TimeWindowTo = nullString(to)
	a.DeactivatedAt = nil
	if deactivatedAt.Valid {
		t := deactivatedAt.Time
		a.DeactivatedAt = &t
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
