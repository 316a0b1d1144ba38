package entities

import "time"

// GameResult is the append-only record of one player's outcome in a finished room
type GameResult struct {
	ID                int64     `db:"id" json:"id,omitempty"`
	RoomID            string    `db:"room_id" json:"roomId"`
	PlayerID          int64     `db:"player_id" json:"playerId"`
	Tier              int64     `db:"tier" json:"tier"`
	Position          int       `db:"position" json:"position"` // 1 for winners
	PrizeAmount       int64     `db:"prize_amount" json:"prizeAmount"`
	NumbersDrawnCount int       `db:"numbers_drawn_count" json:"numbersDrawnCount"`
	FinishedAt        time.Time `db:"finished_at" json:"finishedAt"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// IsWin returns true for winning rows
func (g *GameResult) IsWin() bool {
	return g.Position == 1
}
