package postgres

import (
	"context"
	"database/sql"
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

// NewPriceIntervalRepository creates a new PostgreSQL price interval repository
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
	if len(records) == 0 {
		return 0, nil
	}

	stmt, err := r.DB().PrepareContext(ctx, `
		INSERT INTO price_intervals (id, date, start_time, end_time, interval_minutes, price_eur_mwh, created_at, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (date, start_time) DO UPDATE
		SET end_time = EXCLUDED.end_time,
			interval_minutes = EXCLUDED.interval_minutes,
			price_eur_mwh = EXCLUDED.price_eur_mwh,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

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

		id := rec.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		err := stmt.QueryRowContext(ctx,
			id,
			rec.Date,
			rec.StartTime,
			rec.EndTime,
			rec.IntervalMinutes,
			rec.PriceEurMwh,
			time.Now().UTC(),
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Str("date", rec.Date).Str("start_time", rec.StartTime).Msg("failed to upsert price record")
			continue
		}
		upserted++
	}

	return upserted, nil
}

func (r *priceIntervalRepository) ListByDate(ctx context.Context, date string) ([]models.PriceInterval, error) {
	query := `
		SELECT id, to_char(date, 'YYYY-MM-DD'), start_time, end_time, interval_minutes, price_eur_mwh, created_at, updated_at
		FROM price_intervals
		WHERE date = $1::date
		ORDER BY start_time ASC`

	rows, err := r.DB().QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intervals := make([]models.PriceInterval, 0, 96)
	for rows.Next() {
		var p models.PriceInterval
		if err := rows.Scan(
			&p.ID,
			&p.Date,
			&p.StartTime,
			&p.EndTime,
			&p.IntervalMinutes,
			&p.PriceEurMwh,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		intervals = append(intervals, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return intervals, nil
}

func (r *priceIntervalRepository) ListDates(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = repository.DefaultDatesLimit
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT DISTINCT to_char(date, 'YYYY-MM-DD') AS day
		FROM price_intervals
		ORDER BY day DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]string, 0, limit)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
