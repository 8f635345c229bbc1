package push

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellwatch/internal/models"
)

func TestRender(t *testing.T) {
	n := Render("2025-06-01", 4, 120)
	assert.Equal(t, "4 intervals on 2025-06-01 at or above 120.00 EUR/MWh", n.Body)
	assert.NotEmpty(t, n.Title)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	require.NoError(t, s.Send(context.Background(), "abcdefghijklmnop", Render("2025-06-01", 1, 10)))
	assert.Contains(t, buf.String(), "abcd***mnop")
	assert.NotContains(t, buf.String(), "abcdefghijklmnop")
}

func TestLogSender_PendingToken(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	err := s.Send(context.Background(), models.PendingPushToken, Render("2025-06-01", 1, 10))
	require.ErrorIs(t, err, ErrNotRegistered)
	assert.Empty(t, buf.String())
}

func TestDisabled(t *testing.T) {
	require.ErrorIs(t, Disabled{}.Send(context.Background(), "t", Notification{}), ErrDisabled)
}
