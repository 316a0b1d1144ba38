package testutil

import (
	"time"

	"bingohall/domain/entities"
)

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    990,
		ChangeAmount:    -10,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestRoom creates a waiting room with the creator seated and a cartela selected
func CreateTestRoom(id string, tier int64, creatorID int64) *entities.Room {
	now := time.Now().UTC().Truncate(time.Millisecond)
	room := entities.NewRoom(id, tier, 2, 4, 42, creatorID, "creator", now)
	room.AssignCartela(room.Players[0], 1)
	return room
}

// CreateTestGameResult creates a result row for a finished round
func CreateTestGameResult(roomID string, playerID int64, position int, prize int64, finishedAt time.Time) *entities.GameResult {
	return &entities.GameResult{
		RoomID:            roomID,
		PlayerID:          playerID,
		Tier:              10,
		Position:          position,
		PrizeAmount:       prize,
		NumbersDrawnCount: 30,
		FinishedAt:        finishedAt,
	}
}

// CreateTestPendingPayout creates a payout due at the given time
func CreateTestPendingPayout(roomID string, playerID int64, amount int64, due time.Time) *entities.PendingPayout {
	return &entities.PendingPayout{
		RoomID:          roomID,
		PlayerID:        playerID,
		Amount:          amount,
		TransactionType: entities.TransactionTypeBingoWin,
		NextAttemptAt:   due,
	}
}

// CreateTestPendingRoundRecord creates a queued round record with a winner and a loser
func CreateTestPendingRoundRecord(roomID string, due time.Time) *entities.PendingRoundRecord {
	finishedAt := due.Add(-time.Minute)
	return &entities.PendingRoundRecord{
		RoomID: roomID,
		Record: entities.RoundRecord{
			RoomID: roomID,
			Results: []*entities.GameResult{
				CreateTestGameResult(roomID, 1, 1, 16, finishedAt),
				CreateTestGameResult(roomID, 2, 2, 0, finishedAt),
			},
			Stats: []entities.PlayerStats{
				{PlayerID: 1, Delta: entities.StatsDelta{Played: 1, Won: 1, Winnings: 16}},
				{PlayerID: 2, Delta: entities.StatsDelta{Played: 1}},
			},
		},
		NextAttemptAt: due,
	}
}
