package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sellwatch/internal/models"
	"sellwatch/internal/repository"
)

type priceIntervalRepository struct {
	repository.BaseRepository
	logger zerolog.Logger
}

// NewPriceIntervalRepository creates a new SQLite price interval repository
func NewPriceIntervalRepository(db *sql.DB, logger zerolog.Logger) repository.PriceIntervalRepository {
	return &priceIntervalRepository{
		BaseRepository: repository.NewBaseRepository(db),
		logger:         logger.With().Str("component", "price_store").Logger(),
	}
}

func (r *priceIntervalRepository) Upsert(ctx context.Context, records []models.PriceInterval) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	upserted := 0
	for i := range records {
		if err := ctx.Err(); err != nil {
			return upserted, err
		}

		rec := &records[i]
		if err := repository.ValidateInterval(*rec); err != nil {
			r.logger.Error().Err(err).Str("date", rec.Date).Str("start_time", rec.StartTime).Msg("skipping invalid price record")
			continue
		}
		if err := r.upsertOne(ctx, rec); err != nil {
			r.logger.Error().Err(err).Str("date", rec.Date).Str("start_time", rec.StartTime).Msg("failed to upsert price record")
			continue
		}
		upserted++
	}

	return upserted, nil
}

func (r *priceIntervalRepository) upsertOne(ctx context.Context, rec *models.PriceInterval) error {
	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := formatTime(time.Now())

	var rawID, createdAt, updatedAt string
	err := r.DB().QueryRowContext(ctx, `
		INSERT INTO price_intervals (id, date, start_time, end_time, interval_minutes, price_eur_mwh, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, start_time) DO UPDATE
		SET end_time = excluded.end_time,
			interval_minutes = excluded.interval_minutes,
			price_eur_mwh = excluded.price_eur_mwh,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at`,
		id.String(), rec.Date, rec.StartTime, rec.EndTime, rec.IntervalMinutes, rec.PriceEurMwh, now, now,
	).Scan(&rawID, &createdAt, &updatedAt)
	if err != nil {
		return err
	}

	if rec.ID, err = uuid.Parse(rawID); err != nil {
		return fmt.Errorf("parse id: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return err
	}
	return nil
}

func (r *priceIntervalRepository) ListByDate(ctx context.Context, date string) ([]models.PriceInterval, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, date, start_time, end_time, interval_minutes, price_eur_mwh, created_at, updated_at
		FROM price_intervals
		WHERE date = ?
		ORDER BY start_time ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("query price intervals: %w", err)
	}
	defer rows.Close()

	intervals := make([]models.PriceInterval, 0, 96)
	for rows.Next() {
		var (
			p                    models.PriceInterval
			rawID                string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rawID, &p.Date, &p.StartTime, &p.EndTime, &p.IntervalMinutes, &p.PriceEurMwh, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan price interval: %w", err)
		}
		if p.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse id: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		intervals = append(intervals, p)
	}
	return intervals, rows.Err()
}

func (r *priceIntervalRepository) ListDates(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = repository.DefaultDatesLimit
	}

	rows, err := r.DB().QueryContext(ctx,
		`SELECT DISTINCT date FROM price_intervals ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0, limit)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
