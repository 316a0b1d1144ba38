package application

import (
	"context"
	"fmt"
	"time"

	"bingohall/domain/entities"
	"bingohall/domain/services"
)

const defaultLeaderboardLimit = 10

// ResultLedger appends and queries game results through the unit of work.
// Player stats travel with the results so the two are committed together.
type ResultLedger struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewResultLedger creates a result ledger
func NewResultLedger(uowFactory UnitOfWorkFactory) *ResultLedger {
	return &ResultLedger{
		uowFactory: uowFactory,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Append writes one result row
func (l *ResultLedger) Append(ctx context.Context, result *entities.GameResult) error {
	return l.RecordRound(ctx, &entities.RoundRecord{
		RoomID:  result.RoomID,
		Results: []*entities.GameResult{result},
	})
}

// RecordRound writes every result row and stats increment of a finished room in one transaction
func (l *ResultLedger) RecordRound(ctx context.Context, record *entities.RoundRecord) error {
	if record.IsEmpty() {
		return nil
	}

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := writeRound(ctx, uow, record); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// writeRound applies a round record inside the caller's unit of work
func writeRound(ctx context.Context, uow UnitOfWork, record *entities.RoundRecord) error {
	for _, result := range record.Results {
		if err := uow.GameResultRepository().Create(ctx, result); err != nil {
			return fmt.Errorf("failed to append result for player %d in room %s: %w", result.PlayerID, result.RoomID, err)
		}
	}

	wallet := services.NewWalletService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
	for _, stats := range record.Stats {
		if err := wallet.IncrementStats(ctx, stats.PlayerID, stats.Delta); err != nil {
			return err
		}
	}
	return nil
}

// QueryByPlayer returns the player's results, newest first
func (l *ResultLedger) QueryByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.GameResult, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	results, err := uow.GameResultRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for player %d: %w", playerID, err)
	}
	return results, nil
}

// AggregateTopWinners ranks players by wins, then by prize money, within the period
func (l *ResultLedger) AggregateTopWinners(ctx context.Context, period entities.LeaderboardPeriod, limit int) ([]*entities.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.GameResultRepository().GetTopWinners(ctx, period.Since(l.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s leaderboard: %w", period, err)
	}
	return entries, nil
}
