package entities

import "time"

// PlayerStats is the counter increment one player earns from a round
type PlayerStats struct {
	PlayerID int64      `json:"playerId"`
	Delta    StatsDelta `json:"delta"`
}

// RoundRecord is what a finished round writes besides payouts: one result row and one stats increment per player.
// It is written in a single transaction so rows and counters never disagree.
type RoundRecord struct {
	RoomID  string        `json:"roomId"`
	Results []*GameResult `json:"results"`
	Stats   []PlayerStats `json:"stats"`
}

// IsEmpty returns true when there is nothing to write
func (r *RoundRecord) IsEmpty() bool {
	return len(r.Results) == 0 && len(r.Stats) == 0
}

// PendingRoundRecord is a round record that failed at finalization and awaits retry
type PendingRoundRecord struct {
	ID            int64       `db:"id"`
	RoomID        string      `db:"room_id"`
	Record        RoundRecord `db:"record"`
	Attempts      int         `db:"attempts"`
	LastError     *string     `db:"last_error"`
	NextAttemptAt time.Time   `db:"next_attempt_at"`
	SettledAt     *time.Time  `db:"settled_at"`
	CreatedAt     time.Time   `db:"created_at"`
}

// IsSettled returns true once the record was written
func (p *PendingRoundRecord) IsSettled() bool {
	return p.SettledAt != nil
}

// RetryDelay is the wait before the next attempt
func (p *PendingRoundRecord) RetryDelay(base time.Duration) time.Duration {
	return retryDelay(base, p.Attempts)
}
