package repository

import (
	"context"
	"testing"
	"time"

	"bingohall/domain/entities"
	"bingohall/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingRoundRecordRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPendingRoundRecordRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	due := testutil.CreateTestPendingRoundRecord("room-due", now.Add(-time.Minute))
	later := testutil.CreateTestPendingRoundRecord("room-later", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, due))
	require.NoError(t, repo.Create(ctx, later))
	assert.NotZero(t, due.ID)

	t.Run("a room is queued once", func(t *testing.T) {
		assert.Error(t, repo.Create(ctx, testutil.CreateTestPendingRoundRecord("room-due", now)))
	})

	t.Run("record round-trips through the queue", func(t *testing.T) {
		pending, err := repo.GetDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		got := pending[0]
		assert.Equal(t, due.ID, got.ID)
		assert.Equal(t, "room-due", got.Record.RoomID)
		require.Len(t, got.Record.Results, 2)
		assert.Equal(t, 1, got.Record.Results[0].Position)
		assert.Equal(t, int64(16), got.Record.Results[0].PrizeAmount)
		assert.True(t, got.Record.Results[0].FinishedAt.Equal(due.Record.Results[0].FinishedAt))
		assert.Equal(t, []entities.PlayerStats{
			{PlayerID: 1, Delta: entities.StatsDelta{Played: 1, Won: 1, Winnings: 16}},
			{PlayerID: 2, Delta: entities.StatsDelta{Played: 1}},
		}, got.Record.Stats)
	})

	t.Run("failed attempt pushes next attempt out", func(t *testing.T) {
		require.NoError(t, repo.MarkAttemptFailed(ctx, due.ID, "db down", now.Add(time.Minute)))

		pending, err := repo.GetDue(ctx, now, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)

		pending, err = repo.GetDue(ctx, now.Add(2*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].Attempts)
	})

	t.Run("settled records leave the queue once", func(t *testing.T) {
		require.NoError(t, repo.MarkSettled(ctx, due.ID, now))
		assert.Error(t, repo.MarkSettled(ctx, due.ID, now))

		count, err := repo.CountUnsettled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
