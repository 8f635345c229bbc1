package sqlite

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

// NewAlertRepository creates a new SQLite alert subscription repository
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

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	now := time.Now().UTC()

	_, err := r.DB().ExecContext(ctx,
		`INSERT INTO alert_subscriptions (id, email, push_token, min_price, time_window_from, time_window_to, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
		alert.ID.String(), alert.Email, alert.PushToken, alert.MinPrice,
		alert.TimeWindowFrom, alert.TimeWindowTo, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	alert.IsActive = true
	alert.CreatedAt = now.UTC().Round(0)
	alert.DeactivatedAt = nil
	return nil
}

func (r *alertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AlertSubscription, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alert_subscriptions WHERE id = ?`, id.String())

	alert, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *alertRepository) ListActive(ctx context.Context, filter repository.AlertFilter) ([]models.AlertSubscription, error) {
	query := `SELECT ` + alertColumns + ` FROM alert_subscriptions WHERE is_active = 1`
	if filter.NewestFirst {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}

	var args []interface{}
	if filter.Limit != nil {
		query += ` LIMIT ?`
		args = append(args, *filter.Limit)
	}

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.AlertSubscription, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func (r *alertRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.DB().ExecContext(ctx,
		`UPDATE alert_subscriptions SET is_active = 0, deactivated_at = ? WHERE id = ? AND is_active = 1`,
		formatTime(time.Now()), id.String(),
	)
	if err != nil {
		return false, fmt.Errorf("deactivate alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	var count int
	if err := r.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alert_subscriptions WHERE id = ?`, id.String(),
	).Scan(&count); err != nil {
		return false, fmt.Errorf("count alert: %w", err)
	}
	if count == 0 {
		return false, repository.ErrNotFound
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.AlertSubscription, error) {
	var (
		a                          models.AlertSubscription
		rawID, createdAt           string
		email, pushToken, from, to sql.NullString
		deactivatedAt              sql.NullString
		isActive                   int
	)
	if err := row.Scan(&rawID, &email, &pushToken, &a.MinPrice, &from, &to, &isActive, &createdAt, &deactivatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	a.ID = id
	a.IsActive = isActive == 1
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	a.Email = nullString(email)
	a.PushToken = nullString(pushToken)
	a.TimeWindowFrom = nullString(from)
	a.TimeWindowTo = nullString(to)
	if deactivatedAt.Valid {
		t, err := parseTime(deactivatedAt.String)
		if err != nil {
			return nil, err
		}
		a.DeactivatedAt = &t
	}
	return &a, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
