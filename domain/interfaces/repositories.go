package interfaces

import (
	"context"
	"time"

	"bingohall/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user, returning nil when the user does not exist
	GetByID(ctx context.Context, userID int64) (*entities.User, error)

	// Create creates a registered user with the initial balance
	Create(ctx context.Context, userID int64, username string, initialBalance int64) (*entities.User, error)

	// DeductBalance atomically subtracts amount if the balance covers it.
	// It returns the updated user, or nil when the balance was too low.
	DeductBalance(ctx context.Context, userID int64, amount int64) (*entities.User, error)

	// AddBalance atomically adds amount and returns the updated user
	AddBalance(ctx context.Context, userID int64, amount int64) (*entities.User, error)

	// IncrementStats adds to the game counters
	IncrementStats(ctx context.Context, userID int64, delta entities.StatsDelta) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent balance history for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceHistory, error)

	// GetByRoom returns every balance change tied to a room
	GetByRoom(ctx context.Context, roomID string) ([]*entities.BalanceHistory, error)
}

// RoomRepository persists rooms
type RoomRepository interface {
	// Create inserts a new room
	Create(ctx context.Context, room *entities.Room) error

	// GetByID retrieves a room, returning nil when it does not exist
	GetByID(ctx context.Context, roomID string) (*entities.Room, error)

	// Update overwrites the stored room state
	Update(ctx context.Context, room *entities.Room) error

	// Delete removes a room
	Delete(ctx context.Context, roomID string) error

	// ListByStatus returns rooms in the given status, oldest first
	ListByStatus(ctx context.Context, status entities.RoomStatus) ([]*entities.Room, error)
}

// GameResultRepository stores finished-round outcomes
type GameResultRepository interface {
	// Create appends one result row
	Create(ctx context.Context, result *entities.GameResult) error

	// GetByPlayer returns a player's results, newest first
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.GameResult, error)

	// GetByRoom returns every result of a room ordered by position
	GetByRoom(ctx context.Context, roomID string) ([]*entities.GameResult, error)

	// GetTopWinners aggregates winning rows since the given time (nil for all time)
	GetTopWinners(ctx context.Context, since *time.Time, limit int) ([]*entities.LeaderboardEntry, error)
}

// PendingPayoutRepository queues credits that failed and need to be retried
type PendingPayoutRepository interface {
	// Create enqueues a payout
	Create(ctx context.Context, payout *entities.PendingPayout) error

	// GetDue returns unsettled payouts whose next attempt is due
	GetDue(ctx context.Context, now time.Time, limit int) ([]*entities.PendingPayout, error)

	// MarkSettled records a successful credit. It fails when the payout is already settled,
	// so the credit made in the same transaction rolls back.
	MarkSettled(ctx context.Context, payoutID int64, settledAt time.Time) error

	// MarkAttemptFailed records a failed attempt and when to try again
	MarkAttemptFailed(ctx context.Context, payoutID int64, lastError string, nextAttemptAt time.Time) error

	// CountUnsettled returns how many payouts are still owed
	CountUnsettled(ctx context.Context) (int, error)
}

// PendingRoundRecordRepository queues round records that failed at finalization
type PendingRoundRecordRepository interface {
	// Create enqueues a record. A room is queued at most once.
	Create(ctx context.Context, pending *entities.PendingRoundRecord) error

	// GetDue returns unsettled records whose next attempt is due
	GetDue(ctx context.Context, now time.Time, limit int) ([]*entities.PendingRoundRecord, error)

	// MarkSettled records a successful write. It fails when the record is already settled,
	// so the rows written in the same transaction roll back.
	MarkSettled(ctx context.Context, pendingID int64, settledAt time.Time) error

	// MarkAttemptFailed records a failed attempt and when to try again
	MarkAttemptFailed(ctx context.Context, pendingID int64, lastError string, nextAttemptAt time.Time) error

	// CountUnsettled returns how many round records are still unwritten
	CountUnsettled(ctx context.Context) (int, error)
}
