package application

import (
	"fmt"
	"time"
)

// ForcedCompletionLimit is the most cells forced resolution may mark for a single player
const ForcedCompletionLimit = 2

// RoomSettings holds the tunables of every room the orchestrator runs
type RoomSettings struct {
	Tiers      []int64
	MinPlayers int
	MaxPlayers int
	MaxCartela int

	JoinCountdown time.Duration
	CountdownTick time.Duration

	// Rolled per round within these bounds
	DrawCadenceMin time.Duration
	DrawCadenceMax time.Duration
	MaxDurationMin time.Duration
	MaxDurationMax time.Duration

	// GuaranteeWinner lets forced resolution complete near-miss cards instead of ending with no winner
	GuaranteeWinner bool
}

// DefaultRoomSettings returns the production defaults
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		Tiers:          []int64{10, 20, 30, 40, 50, 100},
		MinPlayers:     2,
		MaxPlayers:     10,
		MaxCartela:     100,
		JoinCountdown:  10 * time.Second,
		CountdownTick:  time.Second,
		DrawCadenceMin: 1500 * time.Millisecond,
		DrawCadenceMax: 2000 * time.Millisecond,
		MaxDurationMin: 120 * time.Second,
		MaxDurationMax: 150 * time.Second,
	}
}

// IsValidTier reports whether rooms can be opened at this entry fee
func (s RoomSettings) IsValidTier(tier int64) bool {
	for _, t := range s.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Validate checks the settings are usable
func (s RoomSettings) Validate() error {
	if len(s.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	if s.MinPlayers < 1 || s.MaxPlayers < s.MinPlayers {
		return fmt.Errorf("invalid player bounds %d..%d", s.MinPlayers, s.MaxPlayers)
	}
	if s.MaxCartela < s.MaxPlayers {
		return fmt.Errorf("max cartela %d cannot seat %d players", s.MaxCartela, s.MaxPlayers)
	}
	if s.CountdownTick <= 0 || s.JoinCountdown < s.CountdownTick {
		return fmt.Errorf("invalid countdown %v with tick %v", s.JoinCountdown, s.CountdownTick)
	}
	if s.DrawCadenceMin <= 0 || s.DrawCadenceMax < s.DrawCadenceMin {
		return fmt.Errorf("invalid draw cadence bounds %v..%v", s.DrawCadenceMin, s.DrawCadenceMax)
	}
	if s.MaxDurationMin <= 0 || s.MaxDurationMax < s.MaxDurationMin {
		return fmt.Errorf("invalid max duration bounds %v..%v", s.MaxDurationMin, s.MaxDurationMax)
	}
	return nil
}
