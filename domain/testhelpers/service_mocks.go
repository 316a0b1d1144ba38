package testhelpers

import (
	"context"

	"bingohall/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockUserRegistry is a mock implementation of UserRegistry
type MockUserRegistry struct {
	mock.Mock
}

func (m *MockUserRegistry) IsRegistered(ctx context.Context, playerID int64) (bool, error) {
	args := m.Called(ctx, playerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRegistry) GetBalance(ctx context.Context, playerID int64) (int64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRegistry) Debit(ctx context.Context, playerID int64, amount int64, reason entities.TransactionType, roomID string) error {
	args := m.Called(ctx, playerID, amount, reason, roomID)
	return args.Error(0)
}

func (m *MockUserRegistry) Credit(ctx context.Context, playerID int64, amount int64, reason entities.TransactionType, roomID string) error {
	args := m.Called(ctx, playerID, amount, reason, roomID)
	return args.Error(0)
}

func (m *MockUserRegistry) IncrementStats(ctx context.Context, playerID int64, delta entities.StatsDelta) error {
	args := m.Called(ctx, playerID, delta)
	return args.Error(0)
}

// MockRoomStore is a mock implementation of RoomStore
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Create(ctx context.Context, room *entities.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomStore) GetByID(ctx context.Context, roomID string) (*entities.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Room), args.Error(1)
}

func (m *MockRoomStore) Update(ctx context.Context, room *entities.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomStore) Delete(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoomStore) ListByStatus(ctx context.Context, status entities.RoomStatus) ([]*entities.Room, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Room), args.Error(1)
}

// MockResultLedger is a mock implementation of ResultLedger
type MockResultLedger struct {
	mock.Mock
}

func (m *MockResultLedger) Append(ctx context.Context, result *entities.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultLedger) RecordRound(ctx context.Context, record *entities.RoundRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockResultLedger) QueryByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.GameResult, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameResult), args.Error(1)
}

func (m *MockResultLedger) AggregateTopWinners(ctx context.Context, period entities.LeaderboardPeriod, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, period, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockPayoutQueue is a mock implementation of PayoutQueue
type MockPayoutQueue struct {
	mock.Mock
}

func (m *MockPayoutQueue) Enqueue(ctx context.Context, payout *entities.PendingPayout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockPayoutQueue) EnqueueRound(ctx context.Context, pending *entities.PendingRoundRecord) error {
	args := m.Called(ctx, pending)
	return args.Error(0)
}
