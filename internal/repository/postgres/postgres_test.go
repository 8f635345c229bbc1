package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/models"
	"sellwatch/internal/repository"
	"sellwatch/internal/repository/postgres"
	"sellwatch/internal/testutil"
	testdb "sellwatch/internal/testutil/db"
)

func TestPriceIntervalRepository(t *testing.T) {
	db := testdb.SetupPostgresTestDB(t)
	repo := postgres.NewPriceIntervalRepository(db, zerolog.Nop())
	ctx := context.Background()

	records := []models.PriceInterval{
		testutil.PriceInterval("2025-03-20", "10:15", "10:30", 120),
		testutil.PriceInterval("2025-03-20", "10:00", "10:15", 90),
		{Date: "2025-03-20", StartTime: "99:99", EndTime: "10:15", IntervalMinutes: 15, PriceEurMwh: 1},
	}

	n, err := repo.Upsert(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Second run updates in place
	records[0].PriceEurMwh = 130
	n, err = repo.Upsert(ctx, records[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.ListByDate(ctx, "2025-03-20")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10:00", got[0].StartTime)
	assert.Equal(t, 130.0, got[1].PriceEurMwh)
	assert.Equal(t, "2025-03-20", got[0].Date)

	empty, err := repo.ListByDate(ctx, "2025-03-21")
	require.NoError(t, err)
	assert.Empty(t, empty)

	dates, err := repo.ListDates(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-20"}, dates)
}

func TestAlertRepository(t *testing.T) {
	db := testdb.SetupPostgresTestDB(t)
	repo := postgres.NewAlertRepository(db)
	ctx := context.Background()

	alert := &models.AlertSubscription{Email: testutil.String("seller@example.com"), MinPrice: 100}
	require.NoError(t, repo.Create(ctx, alert))
	require.NotEqual(t, uuid.Nil, alert.ID)

	err := repo.Create(ctx, &models.AlertSubscription{MinPrice: 100})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	active, err := repo.ListActive(ctx, repository.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)

	changed, err := repo.Deactivate(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Deactivate(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.Deactivate(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrNotFound)
}
