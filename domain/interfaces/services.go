package interfaces

import (
	"context"

	"bingohall/domain/entities"
	"bingohall/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// UserRegistry is the wallet the room engine charges and pays through.
// Every operation is atomic on its own.
type UserRegistry interface {
	// IsRegistered reports whether the player may play
	IsRegistered(ctx context.Context, playerID int64) (bool, error)

	// GetBalance returns the current balance
	GetBalance(ctx context.Context, playerID int64) (int64, error)

	// Debit subtracts amount, failing with domain.ErrInsufficientBalance when it is not covered
	Debit(ctx context.Context, playerID int64, amount int64, reason entities.TransactionType, roomID string) error

	// Credit adds amount
	Credit(ctx context.Context, playerID int64, amount int64, reason entities.TransactionType, roomID string) error

	// IncrementStats adds to the player's game counters
	IncrementStats(ctx context.Context, playerID int64, delta entities.StatsDelta) error
}

// RoomStore durably keeps room state
type RoomStore interface {
	Create(ctx context.Context, room *entities.Room) error
	GetByID(ctx context.Context, roomID string) (*entities.Room, error)
	Update(ctx context.Context, room *entities.Room) error
	Delete(ctx context.Context, roomID string) error
	ListByStatus(ctx context.Context, status entities.RoomStatus) ([]*entities.Room, error)
}

// ResultLedger is the append-only record of round outcomes
type ResultLedger interface {
	// Append writes one result row
	Append(ctx context.Context, result *entities.GameResult) error

	// RecordRound writes a finished room's result rows and player stats in one transaction
	RecordRound(ctx context.Context, record *entities.RoundRecord) error

	// QueryByPlayer returns a player's results, newest first
	QueryByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.GameResult, error)

	// AggregateTopWinners returns the leaderboard for the period
	AggregateTopWinners(ctx context.Context, period entities.LeaderboardPeriod, limit int) ([]*entities.LeaderboardEntry, error)
}

// PayoutQueue holds finalization writes that could not be applied immediately
type PayoutQueue interface {
	// Enqueue stores a credit for retry
	Enqueue(ctx context.Context, payout *entities.PendingPayout) error

	// EnqueueRound stores a round record for retry
	EnqueueRound(ctx context.Context, pending *entities.PendingRoundRecord) error
}

// WalletService applies balance rules on top of the user and balance history repositories.
// It runs inside the caller's unit of work.
type WalletService interface {
	// Register creates a player with the starting balance. created is false when the player already existed.
	Register(ctx context.Context, userID int64, username string, startingBalance int64) (user *entities.User, created bool, err error)

	// GetUser returns the player or domain.ErrNotRegistered
	GetUser(ctx context.Context, userID int64) (*entities.User, error)

	// Debit takes amount from a registered player
	Debit(ctx context.Context, userID int64, amount int64, reason entities.TransactionType, roomID string) (*entities.User, error)

	// Credit pays amount to a registered player
	Credit(ctx context.Context, userID int64, amount int64, reason entities.TransactionType, roomID string) (*entities.User, error)

	// IncrementStats adds to the player's game counters
	IncrementStats(ctx context.Context, userID int64, delta entities.StatsDelta) error
}

// TransactionalEventPublisher holds events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every held event. Called after commit.
	Flush(ctx context.Context) error

	// Discard drops every held event. Called on rollback.
	Discard()
}
