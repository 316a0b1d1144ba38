package repository

import (
	"context"
	"testing"
	"time"

	"bingohall/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameResultRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGameResultRepository(testDB.DB)
	userRepo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for id, name := range map[int64]string{1: "alice", 2: "bob", 3: "carol"} {
		_, err := userRepo.Create(ctx, id, name, 0)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	lastWeek := now.Add(-8 * 24 * time.Hour)
	rows := []struct {
		room     string
		player   int64
		position int
		prize    int64
		at       time.Time
	}{
		{"r1", 1, 1, 16, lastWeek},
		{"r1", 2, 2, 0, lastWeek},
		{"r2", 1, 1, 16, lastWeek},
		{"r3", 2, 1, 40, now.Add(-time.Hour)},
		{"r3", 1, 2, 0, now.Add(-time.Hour)},
		{"r4", 3, 1, 8, now.Add(-time.Minute)},
	}
	for _, r := range rows {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestGameResult(r.room, r.player, r.position, r.prize, r.at)))
	}

	t.Run("duplicate row rejected", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestGameResult("r1", 1, 1, 16, lastWeek))
		assert.Error(t, err)
	})

	t.Run("by player newest first", func(t *testing.T) {
		results, err := repo.GetByPlayer(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "r3", results[0].RoomID)
		assert.False(t, results[0].IsWin())
	})

	t.Run("by room", func(t *testing.T) {
		results, err := repo.GetByRoom(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, int64(1), results[0].PlayerID)
		assert.Equal(t, 1, results[0].Position)
	})

	t.Run("all time leaderboard", func(t *testing.T) {
		entries, err := repo.GetTopWinners(ctx, nil, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, int64(1), entries[0].PlayerID)
		assert.Equal(t, "alice", entries[0].Username)
		assert.Equal(t, 2, entries[0].Wins)
		assert.Equal(t, int64(32), entries[0].TotalPrize)
		// bob and carol tie on wins; bob has the bigger prize
		assert.Equal(t, int64(2), entries[1].PlayerID)
		assert.Equal(t, int64(3), entries[2].PlayerID)
	})

	t.Run("windowed leaderboard", func(t *testing.T) {
		since := now.Add(-24 * time.Hour)
		entries, err := repo.GetTopWinners(ctx, &since, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(2), entries[0].PlayerID)
		assert.Equal(t, int64(40), entries[0].TotalPrize)
	})
}
