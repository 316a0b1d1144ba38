package entities

import (
	"fmt"
	"time"
)

// LeaderboardPeriod filters which results count toward the leaderboard
type LeaderboardPeriod string

const (
	LeaderboardAllTime LeaderboardPeriod = "all"
	LeaderboardDaily   LeaderboardPeriod = "daily"
	LeaderboardWeekly  LeaderboardPeriod = "weekly"
)

// ParseLeaderboardPeriod accepts "all", "daily" or "weekly"; empty means all
func ParseLeaderboardPeriod(raw string) (LeaderboardPeriod, error) {
	switch LeaderboardPeriod(raw) {
	case "", LeaderboardAllTime:
		return LeaderboardAllTime, nil
	case LeaderboardDaily, LeaderboardWeekly:
		return LeaderboardPeriod(raw), nil
	}
	return "", fmt.Errorf("unknown leaderboard period %q", raw)
}

// Since returns the earliest finish time included in the period, or nil for all time
func (p LeaderboardPeriod) Since(now time.Time) *time.Time {
	var since time.Time
	switch p {
	case LeaderboardDaily:
		since = now.Add(-24 * time.Hour)
	case LeaderboardWeekly:
		since = now.Add(-7 * 24 * time.Hour)
	default:
		return nil
	}
	return &since
}

// LeaderboardEntry aggregates a player's wins
type LeaderboardEntry struct {
	PlayerID   int64  `db:"player_id"`
	Username   string `db:"username"`
	Wins       int    `db:"wins"`
	TotalPrize int64  `db:"total_prize"`
}
