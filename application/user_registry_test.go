package application

import (
	"context"
	"errors"
	"testing"

	"bingohall/domain"
	"bingohall/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserRegistryUnderTest() (*UserRegistry, *fakeUnitOfWork) {
	uow := newFakeUnitOfWork()
	uow.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	return NewUserRegistry(&fakeUnitOfWorkFactory{uow: uow}, 1000), uow
}

func TestUserRegistry_RegisterCommits(t *testing.T) {
	ctx := context.Background()
	registry, uow := newUserRegistryUnderTest()

	created := &entities.User{ID: 42, Username: "alice", Balance: 1000, IsRegistered: true}
	uow.users.On("GetByID", ctx, int64(42)).Return(nil, nil).Once()
	uow.users.On("Create", ctx, int64(42), "alice", int64(1000)).Return(created, nil)
	uow.history.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.TransactionType == entities.TransactionTypeInitial && h.BalanceAfter == 1000
	})).Return(nil)

	user, isNew, err := registry.Register(ctx, 42, "alice")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, int64(1000), user.Balance)
	assert.Equal(t, 1, uow.commitCount())
	uow.users.AssertExpectations(t)
	uow.history.AssertExpectations(t)
}

func TestUserRegistry_IsRegistered(t *testing.T) {
	ctx := context.Background()
	registry, uow := newUserRegistryUnderTest()

	uow.users.On("GetByID", ctx, int64(1)).Return(&entities.User{ID: 1, IsRegistered: true, Balance: 50}, nil)
	uow.users.On("GetByID", ctx, int64(2)).Return(nil, nil)
	uow.users.On("GetByID", ctx, int64(3)).Return(nil, errors.New("connection reset"))

	registered, err := registry.IsRegistered(ctx, 1)
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = registry.IsRegistered(ctx, 2)
	require.NoError(t, err)
	assert.False(t, registered)

	_, err = registry.IsRegistered(ctx, 3)
	assert.Error(t, err)

	balance, err := registry.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	_, err = registry.GetBalance(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	// reads never commit
	assert.Equal(t, 0, uow.commitCount())
}

func TestUserRegistry_DebitInsufficientDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	registry, uow := newUserRegistryUnderTest()

	uow.users.On("GetByID", ctx, int64(7)).Return(&entities.User{ID: 7, IsRegistered: true, Balance: 5}, nil)
	uow.users.On("DeductBalance", ctx, int64(7), int64(20)).Return(nil, nil)

	err := registry.Debit(ctx, 7, 20, entities.TransactionTypeEntryFee, "room-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 0, uow.commitCount())
	uow.history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestUserRegistry_CreditRecordsHistory(t *testing.T) {
	ctx := context.Background()
	registry, uow := newUserRegistryUnderTest()

	uow.users.On("GetByID", ctx, int64(7)).Return(&entities.User{ID: 7, IsRegistered: true, Balance: 5}, nil)
	uow.users.On("AddBalance", ctx, int64(7), int64(16)).Return(&entities.User{ID: 7, IsRegistered: true, Balance: 21}, nil)
	uow.history.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.UserID == 7 && h.BalanceBefore == 5 && h.BalanceAfter == 21 &&
			h.TransactionType == entities.TransactionTypeBingoWin &&
			h.RoomID != nil && *h.RoomID == "room-9"
	})).Return(nil)

	require.NoError(t, registry.Credit(ctx, 7, 16, entities.TransactionTypeBingoWin, "room-9"))
	assert.Equal(t, 1, uow.commitCount())
	uow.history.AssertExpectations(t)
}

func TestUserRegistry_BeginFailure(t *testing.T) {
	registry, uow := newUserRegistryUnderTest()
	uow.beginErr = errors.New("pool closed")

	err := registry.IncrementStats(context.Background(), 1, entities.StatsDelta{Played: 1})
	assert.ErrorContains(t, err, "failed to begin transaction")
	uow.users.AssertNotCalled(t, "IncrementStats", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserRegistry_BalanceHistory(t *testing.T) {
	ctx := context.Background()
	registry, uow := newUserRegistryUnderTest()

	rows := []*entities.BalanceHistory{{UserID: 3, ChangeAmount: -10, TransactionType: entities.TransactionTypeEntryFee}}
	uow.history.On("GetByUser", ctx, int64(3), 5).Return(rows, nil)

	history, err := registry.BalanceHistory(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, rows, history)
}
