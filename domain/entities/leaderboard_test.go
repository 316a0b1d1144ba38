package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeaderboardPeriod(t *testing.T) {
	p, err := ParseLeaderboardPeriod("")
	require.NoError(t, err)
	assert.Equal(t, LeaderboardAllTime, p)

	p, err = ParseLeaderboardPeriod("weekly")
	require.NoError(t, err)
	assert.Equal(t, LeaderboardWeekly, p)

	_, err = ParseLeaderboardPeriod("monthly")
	assert.Error(t, err)
}

func TestLeaderboardPeriod_Since(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, LeaderboardAllTime.Since(now))
	assert.Equal(t, now.Add(-24*time.Hour), *LeaderboardDaily.Since(now))
	assert.Equal(t, now.Add(-7*24*time.Hour), *LeaderboardWeekly.Since(now))
}

func TestPendingPayout_RetryDelay(t *testing.T) {
	p := &PendingPayout{}
	assert.Equal(t, 30*time.Second, p.RetryDelay(30*time.Second))

	p.Attempts = 3
	assert.Equal(t, 2*time.Minute, p.RetryDelay(30*time.Second))

	p.Attempts = 500
	assert.Equal(t, 30*time.Minute, p.RetryDelay(30*time.Second))
}
