package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"bingohall/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPayoutWorkerUnderTest(now time.Time) (*PayoutRetryWorker, *fakeUnitOfWork) {
	uow := newFakeUnitOfWork()
	uow.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	worker := NewPayoutRetryWorker(&fakeUnitOfWorkFactory{uow: uow}, time.Minute)
	worker.now = func() time.Time { return now }
	return worker, uow
}

func TestPayoutRetryWorker_EnqueueDefaultsNextAttempt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	payout := &entities.PendingPayout{RoomID: "room-1", PlayerID: 3, Amount: 16, TransactionType: entities.TransactionTypeBingoWin}
	uow.payouts.On("Create", ctx, payout).Return(nil)

	require.NoError(t, worker.Enqueue(ctx, payout))
	assert.Equal(t, now, payout.NextAttemptAt)
	assert.Equal(t, 1, uow.commitCount())
}

func TestPayoutRetryWorker_SettlesDuePayouts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	due := []*entities.PendingPayout{
		{ID: 11, RoomID: "room-1", PlayerID: 3, Amount: 16, TransactionType: entities.TransactionTypeBingoWin},
	}
	uow.payouts.On("GetDue", ctx, now, payoutBatchSize).Return(due, nil)
	uow.users.On("GetByID", ctx, int64(3)).Return(&entities.User{ID: 3, IsRegistered: true, Balance: 4}, nil)
	uow.users.On("AddBalance", ctx, int64(3), int64(16)).Return(&entities.User{ID: 3, IsRegistered: true, Balance: 20}, nil)
	uow.history.On("Record", ctx, mock.Anything).Return(nil)
	uow.payouts.On("MarkSettled", ctx, int64(11), now).Return(nil)

	settled, err := worker.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, uow.commitCount())
	uow.payouts.AssertExpectations(t)
}

func TestPayoutRetryWorker_FailedCreditBacksOff(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	due := []*entities.PendingPayout{
		{ID: 12, RoomID: "room-2", PlayerID: 5, Amount: 10, Attempts: 2, TransactionType: entities.TransactionTypeRefund},
	}
	uow.payouts.On("GetDue", ctx, now, payoutBatchSize).Return(due, nil)
	uow.users.On("GetByID", ctx, int64(5)).Return(nil, errors.New("timeout"))
	uow.payouts.On("MarkAttemptFailed", ctx, int64(12), mock.MatchedBy(func(msg string) bool {
		return msg != ""
	}), now.Add(3*time.Minute)).Return(nil)

	settled, err := worker.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
	assert.Equal(t, 1, uow.commitCount())
	uow.payouts.AssertNotCalled(t, "MarkSettled", mock.Anything, mock.Anything, mock.Anything)
	uow.payouts.AssertExpectations(t)
}

func TestPayoutRetryWorker_NothingDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	uow.payouts.On("GetDue", ctx, now, payoutBatchSize).Return([]*entities.PendingPayout{}, nil)

	settled, err := worker.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
	assert.Equal(t, 0, uow.commitCount())
}

func TestPayoutRetryWorker_EnqueueRoundDefaultsNextAttempt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	pending := &entities.PendingRoundRecord{RoomID: "room-1", Record: entities.RoundRecord{RoomID: "room-1"}}
	uow.rounds.On("Create", ctx, pending).Return(nil)

	require.NoError(t, worker.EnqueueRound(ctx, pending))
	assert.Equal(t, now, pending.NextAttemptAt)
	assert.Equal(t, 1, uow.commitCount())
}

func TestPayoutRetryWorker_SettlesDueRounds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	due := []*entities.PendingRoundRecord{{
		ID:     21,
		RoomID: "room-3",
		Record: entities.RoundRecord{
			RoomID:  "room-3",
			Results: []*entities.GameResult{{RoomID: "room-3", PlayerID: 4, Position: 1, PrizeAmount: 16}},
			Stats:   []entities.PlayerStats{{PlayerID: 4, Delta: entities.StatsDelta{Played: 1, Won: 1, Winnings: 16}}},
		},
	}}
	uow.rounds.On("GetDue", ctx, now, payoutBatchSize).Return(due, nil)
	uow.results.On("Create", ctx, due[0].Record.Results[0]).Return(nil).Once()
	uow.users.On("IncrementStats", ctx, int64(4), entities.StatsDelta{Played: 1, Won: 1, Winnings: 16}).Return(nil).Once()
	uow.rounds.On("MarkSettled", ctx, int64(21), now).Return(nil).Once()

	settled, err := worker.ProcessDueRounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, uow.commitCount())
	uow.results.AssertExpectations(t)
	uow.rounds.AssertExpectations(t)
}

func TestPayoutRetryWorker_FailedRoundBacksOff(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	pending := &entities.PendingRoundRecord{
		ID:       22,
		RoomID:   "room-4",
		Attempts: 1,
		Record: entities.RoundRecord{
			RoomID:  "room-4",
			Results: []*entities.GameResult{{RoomID: "room-4", PlayerID: 6, Position: 2}},
		},
	}
	uow.rounds.On("GetDue", ctx, now, payoutBatchSize).Return([]*entities.PendingRoundRecord{pending}, nil)
	uow.results.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
	uow.rounds.On("MarkAttemptFailed", ctx, int64(22), mock.MatchedBy(func(msg string) bool {
		return msg != ""
	}), now.Add(pending.RetryDelay(time.Minute))).Return(nil).Once()

	settled, err := worker.ProcessDueRounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
	assert.Equal(t, 1, uow.commitCount())
	uow.rounds.AssertNotCalled(t, "MarkSettled", mock.Anything, mock.Anything, mock.Anything)
	uow.rounds.AssertExpectations(t)
}

func TestPayoutRetryWorker_StartStops(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	worker, uow := newPayoutWorkerUnderTest(now)

	polled := make(chan struct{}, 1)
	uow.payouts.On("GetDue", mock.Anything, now, payoutBatchSize).
		Run(func(args mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return([]*entities.PendingPayout{}, nil)
	uow.rounds.On("GetDue", mock.Anything, now, payoutBatchSize).Return([]*entities.PendingRoundRecord{}, nil).Maybe()

	stop := worker.Start(ctx)
	defer stop()

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never polled for due payouts")
	}
}
