package repository

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"bingohall/domain/bingo"
	"bingohall/domain/entities"
	"bingohall/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRoomRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and get waiting room", func(t *testing.T) {
		testDB.TruncateAll(t)
		room := testutil.CreateTestRoom("room-1", 10, 1001)

		require.NoError(t, repo.Create(ctx, room))

		got, err := repo.GetByID(ctx, "room-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entities.RoomStatusWaiting, got.Status)
		assert.Equal(t, int64(10), got.Tier)
		assert.Equal(t, 0, got.CurrentDraw)
		assert.Empty(t, got.DrawHistory)
		require.Len(t, got.Players, 1)
		assert.Equal(t, room.Players[0].Card, got.Players[0].Card)
		holder, ok := got.CartelaHolder(1)
		assert.True(t, ok)
		assert.Equal(t, int64(1001), holder)
		assert.Nil(t, got.StartedAt)
	})

	t.Run("missing room is nil", func(t *testing.T) {
		testDB.TruncateAll(t)

		got, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update playing state round trips", func(t *testing.T) {
		testDB.TruncateAll(t)
		room := testutil.CreateTestRoom("room-1", 20, 1001)
		require.NoError(t, repo.Create(ctx, room))

		joiner := room.AddPlayer(1002, "bob", time.Now())
		joiner.HasJoined = true
		room.Start(time.Now().UTC(), 3*time.Second, 5*time.Minute, 100)
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 5; i++ {
			_, ok := room.DrawNumber(rng)
			require.True(t, ok)
		}
		joiner.Mark(room.DrawHistory[0])
		require.NoError(t, repo.Update(ctx, room))

		got, err := repo.GetByID(ctx, "room-1")
		require.NoError(t, err)
		assert.Equal(t, entities.RoomStatusPlaying, got.Status)
		assert.Equal(t, room.DrawHistory, got.DrawHistory)
		assert.Equal(t, room.CurrentDraw, got.CurrentDraw)
		assert.Equal(t, 3*time.Second, got.DrawCadence)
		assert.Equal(t, 5*time.Minute, got.MaxDuration)
		require.NotNil(t, got.StartedAt)
		assert.Equal(t, []int{room.DrawHistory[0]}, got.FindPlayer(1002).MarkedNumbers)
		assert.Equal(t, 2, got.FindPlayer(1002).CartelaIndex)
	})

	t.Run("finished room keeps winners", func(t *testing.T) {
		testDB.TruncateAll(t)
		room := testutil.CreateTestRoom("room-1", 10, 1001)
		require.NoError(t, repo.Create(ctx, room))

		room.Finish(time.Now().UTC(), []entities.Winner{
			{PlayerID: 1001, DisplayName: "creator", PrizeAmount: 16, Pattern: bingo.PatternRow},
		}, false)
		require.NoError(t, repo.Update(ctx, room))

		got, err := repo.GetByID(ctx, "room-1")
		require.NoError(t, err)
		require.Len(t, got.Winners, 1)
		assert.Equal(t, int64(16), got.Winners[0].PrizeAmount)
		assert.Equal(t, bingo.PatternRow, got.Winners[0].Pattern)
		assert.True(t, got.FindPlayer(1001).HasWon)
		assert.NotNil(t, got.FinishedAt)
	})

	t.Run("update missing room fails", func(t *testing.T) {
		testDB.TruncateAll(t)
		assert.Error(t, repo.Update(ctx, testutil.CreateTestRoom("ghost", 10, 1)))
	})

	t.Run("list by status oldest first and delete", func(t *testing.T) {
		testDB.TruncateAll(t)
		older := testutil.CreateTestRoom("room-a", 10, 1)
		older.CreatedAt = older.CreatedAt.Add(-time.Minute)
		newer := testutil.CreateTestRoom("room-b", 10, 2)
		playing := testutil.CreateTestRoom("room-c", 10, 3)
		playing.Status = entities.RoomStatusPlaying
		for _, r := range []*entities.Room{newer, older, playing} {
			require.NoError(t, repo.Create(ctx, r))
		}

		waiting, err := repo.ListByStatus(ctx, entities.RoomStatusWaiting)
		require.NoError(t, err)
		require.Len(t, waiting, 2)
		assert.Equal(t, "room-a", waiting[0].ID)
		assert.Equal(t, "room-b", waiting[1].ID)

		require.NoError(t, repo.Delete(ctx, "room-a"))
		waiting, err = repo.ListByStatus(ctx, entities.RoomStatusWaiting)
		require.NoError(t, err)
		assert.Len(t, waiting, 1)
	})
}
