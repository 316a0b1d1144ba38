package testhelpers

import (
	"context"
	"time"

	"bingohall/domain/entities"
	"bingohall/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, userID int64, username string, initialBalance int64) (*entities.User, error) {
	args := m.Called(ctx, userID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) (*entities.User, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, userID int64, amount int64) (*entities.User, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) IncrementStats(ctx context.Context, userID int64, delta entities.StatsDelta) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

func (m *MockBalanceHistoryRepository) GetByRoom(ctx context.Context, roomID string) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockRoomRepository is a mock implementation of RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Create(ctx context.Context, room *entities.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) GetByID(ctx context.Context, roomID string) (*entities.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Room), args.Error(1)
}

func (m *MockRoomRepository) Update(ctx context.Context, room *entities.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoomRepository) ListByStatus(ctx context.Context, status entities.RoomStatus) ([]*entities.Room, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Room), args.Error(1)
}

// MockGameResultRepository is a mock implementation of GameResultRepository
type MockGameResultRepository struct {
	mock.Mock
}

func (m *MockGameResultRepository) Create(ctx context.Context, result *entities.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockGameResultRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.GameResult, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameResult), args.Error(1)
}

func (m *MockGameResultRepository) GetByRoom(ctx context.Context, roomID string) ([]*entities.GameResult, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameResult), args.Error(1)
}

func (m *MockGameResultRepository) GetTopWinners(ctx context.Context, since *time.Time, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

// MockPendingPayoutRepository is a mock implementation of PendingPayoutRepository
type MockPendingPayoutRepository struct {
	mock.Mock
}

func (m *MockPendingPayoutRepository) Create(ctx context.Context, payout *entities.PendingPayout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockPendingPayoutRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*entities.PendingPayout, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingPayout), args.Error(1)
}

func (m *MockPendingPayoutRepository) MarkSettled(ctx context.Context, payoutID int64, settledAt time.Time) error {
	args := m.Called(ctx, payoutID, settledAt)
	return args.Error(0)
}

func (m *MockPendingPayoutRepository) MarkAttemptFailed(ctx context.Context, payoutID int64, lastError string, nextAttemptAt time.Time) error {
	args := m.Called(ctx, payoutID, lastError, nextAttemptAt)
	return args.Error(0)
}

func (m *MockPendingPayoutRepository) CountUnsettled(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockPendingRoundRecordRepository is a mock implementation of PendingRoundRecordRepository
type MockPendingRoundRecordRepository struct {
	mock.Mock
}

func (m *MockPendingRoundRecordRepository) Create(ctx context.Context, pending *entities.PendingRoundRecord) error {
	args := m.Called(ctx, pending)
	return args.Error(0)
}

func (m *MockPendingRoundRecordRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*entities.PendingRoundRecord, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingRoundRecord), args.Error(1)
}

func (m *MockPendingRoundRecordRepository) MarkSettled(ctx context.Context, pendingID int64, settledAt time.Time) error {
	args := m.Called(ctx, pendingID, settledAt)
	return args.Error(0)
}

func (m *MockPendingRoundRecordRepository) MarkAttemptFailed(ctx context.Context, pendingID int64, lastError string, nextAttemptAt time.Time) error {
	args := m.Called(ctx, pendingID, lastError, nextAttemptAt)
	return args.Error(0)
}

func (m *MockPendingRoundRecordRepository) CountUnsettled(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
