package entities

import "time"

// PendingPayout is a credit owed to a player that failed at finalization and awaits retry
type PendingPayout struct {
	ID              int64           `db:"id"`
	RoomID          string          `db:"room_id"`
	PlayerID        int64           `db:"player_id"`
	Amount          int64           `db:"amount"`
	TransactionType TransactionType `db:"transaction_type"`
	Attempts        int             `db:"attempts"`
	LastError       *string         `db:"last_error"`
	NextAttemptAt   time.Time       `db:"next_attempt_at"`
	SettledAt       *time.Time      `db:"settled_at"`
	CreatedAt       time.Time       `db:"created_at"`
}

// IsSettled returns true once the credit went through
func (p *PendingPayout) IsSettled() bool {
	return p.SettledAt != nil
}

// RetryDelay is the wait before the next attempt
func (p *PendingPayout) RetryDelay(base time.Duration) time.Duration {
	return retryDelay(base, p.Attempts)
}

// retryDelay grows linearly with the attempts made so far and is capped at 30 minutes
func retryDelay(base time.Duration, attempts int) time.Duration {
	delay := base * time.Duration(attempts+1)
	if limit := 30 * time.Minute; delay > limit {
		return limit
	}
	return delay
}
