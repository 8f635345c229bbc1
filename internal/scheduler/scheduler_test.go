package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobsUntilCancelled(t *testing.T) {
	s := New(nil, zerolog.Nop())

	var runs atomic.Int32
	s.Add(Job{
		Name:     "tick",
		Schedule: "@every 1s",
		Run: func(ctx context.Context) {
			runs.Add(1)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
	}{
		{name: "Empty", schedule: ""},
		{name: "Garbage", schedule: "every day at noon"},
		{name: "Seconds Field", schedule: "0 15 13 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(time.UTC, zerolog.Nop())
			s.Add(Job{Name: "bad", Schedule: tt.schedule, Run: func(context.Context) {}})

			err := s.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad")
		})
	}
}
