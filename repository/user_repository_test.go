package repository

import (
	"context"
	"testing"

	"bingohall/domain/entities"
	"bingohall/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		testDB.TruncateAll(t)

		created, err := repo.Create(ctx, 1001, "alice", 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), created.Balance)
		assert.True(t, created.IsRegistered)

		got, err := repo.GetByID(ctx, 1001)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("missing user is nil", func(t *testing.T) {
		testDB.TruncateAll(t)

		got, err := repo.GetByID(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := repo.Create(ctx, 1001, "alice", 1000)
		require.NoError(t, err)
		_, err = repo.Create(ctx, 1001, "alice", 1000)
		assert.Error(t, err)
	})

	t.Run("deduct respects balance", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, err := repo.Create(ctx, 1001, "alice", 15)
		require.NoError(t, err)

		user, err := repo.DeductBalance(ctx, 1001, 10)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(5), user.Balance)

		user, err = repo.DeductBalance(ctx, 1001, 10)
		require.NoError(t, err)
		assert.Nil(t, user)

		got, err := repo.GetByID(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Balance)
	})

	t.Run("add balance", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, err := repo.Create(ctx, 1001, "alice", 0)
		require.NoError(t, err)

		user, err := repo.AddBalance(ctx, 1001, 40)
		require.NoError(t, err)
		assert.Equal(t, int64(40), user.Balance)

		_, err = repo.AddBalance(ctx, 404, 40)
		assert.Error(t, err)
	})

	t.Run("increment stats", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, err := repo.Create(ctx, 1001, "alice", 0)
		require.NoError(t, err)

		require.NoError(t, repo.IncrementStats(ctx, 1001, entities.StatsDelta{Played: 1, Won: 1, Winnings: 16}))
		require.NoError(t, repo.IncrementStats(ctx, 1001, entities.StatsDelta{Played: 1}))

		got, err := repo.GetByID(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, 2, got.GamesPlayed)
		assert.Equal(t, 1, got.GamesWon)
		assert.Equal(t, int64(16), got.TotalWinnings)

		assert.Error(t, repo.IncrementStats(ctx, 404, entities.StatsDelta{Played: 1}))
	})
}

func TestBalanceHistoryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceHistoryRepository(testDB.DB)
	userRepo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 1001, "alice", 1000)
	require.NoError(t, err)

	roomID := "room-1"
	fee := testutil.CreateTestBalanceHistory(1001, entities.TransactionTypeEntryFee)
	fee.RoomID = &roomID
	require.NoError(t, repo.Record(ctx, fee))
	assert.NotZero(t, fee.ID)

	win := testutil.CreateTestBalanceHistory(1001, entities.TransactionTypeBingoWin)
	win.BalanceBefore, win.BalanceAfter, win.ChangeAmount = 990, 1006, 16
	win.RoomID = &roomID
	require.NoError(t, repo.Record(ctx, win))

	initial := testutil.CreateTestBalanceHistory(1001, entities.TransactionTypeInitial)
	initial.TransactionMetadata = nil
	require.NoError(t, repo.Record(ctx, initial))

	t.Run("by user newest first", func(t *testing.T) {
		histories, err := repo.GetByUser(ctx, 1001, 10)
		require.NoError(t, err)
		require.Len(t, histories, 3)
		assert.Equal(t, entities.TransactionTypeInitial, histories[0].TransactionType)
		assert.Nil(t, histories[0].RoomID)
		assert.Equal(t, true, histories[2].TransactionMetadata["test"])
	})

	t.Run("limit", func(t *testing.T) {
		histories, err := repo.GetByUser(ctx, 1001, 1)
		require.NoError(t, err)
		assert.Len(t, histories, 1)
	})

	t.Run("by room oldest first", func(t *testing.T) {
		histories, err := repo.GetByRoom(ctx, roomID)
		require.NoError(t, err)
		require.Len(t, histories, 2)
		assert.Equal(t, entities.TransactionTypeEntryFee, histories[0].TransactionType)
		assert.Equal(t, entities.TransactionTypeBingoWin, histories[1].TransactionType)
	})
}
