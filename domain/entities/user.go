package entities

import "time"

// User is a registered player and their wallet
type User struct {
	ID            int64     `db:"id"`
	Username      string    `db:"username"`
	Balance       int64     `db:"balance"`
	IsRegistered  bool      `db:"is_registered"`
	GamesPlayed   int       `db:"games_played"`
	GamesWon      int       `db:"games_won"`
	TotalWinnings int64     `db:"total_winnings"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// CanAfford returns true if the balance covers the amount
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}

// WinRate returns the share of games won, 0 when nothing was played
func (u *User) WinRate() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.GamesWon) / float64(u.GamesPlayed)
}

// StatsDelta is an increment applied to a user's game counters
type StatsDelta struct {
	Played   int   `json:"played"`
	Won      int   `json:"won"`
	Winnings int64 `json:"winnings"`
}
