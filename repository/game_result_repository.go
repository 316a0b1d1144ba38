package repository

import (
	"context"
	"fmt"
	"time"

	"bingohall/database"
	"bingohall/domain/entities"

	"github.com/jackc/pgx/v5"
)

// GameResultRepository is the append-only ledger of round outcomes
type GameResultRepository struct {
	q Queryable
}

// NewGameResultRepository creates a new game result repository
func NewGameResultRepository(db *database.DB) *GameResultRepository {
	return &GameResultRepository{q: db.Pool}
}

// newGameResultRepositoryWithTx creates a new game result repository bound to a transaction
func newGameResultRepositoryWithTx(tx Queryable) *GameResultRepository {
	return &GameResultRepository{q: tx}
}

// Create appends one result row
func (r *GameResultRepository) Create(ctx context.Context, result *entities.GameResult) error {
	query := `
		INSERT INTO game_results (room_id, player_id, tier, position, prize_amount, numbers_drawn_count, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		result.RoomID,
		result.PlayerID,
		result.Tier,
		result.Position,
		result.PrizeAmount,
		result.NumbersDrawnCount,
		result.FinishedAt,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game result for player %d in room %s: %w", result.PlayerID, result.RoomID, err)
	}
	return nil
}

// GetByPlayer returns a player's results, newest first
func (r *GameResultRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.GameResult, error) {
	query := `
		SELECT id, room_id, player_id, tier, position, prize_amount, numbers_drawn_count, finished_at, created_at
		FROM game_results
		WHERE player_id = $1
		ORDER BY finished_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for player %d: %w", playerID, err)
	}
	return scanGameResults(rows)
}

// GetByRoom returns every result of a room ordered by position
func (r *GameResultRepository) GetByRoom(ctx context.Context, roomID string) ([]*entities.GameResult, error) {
	query := `
		SELECT id, room_id, player_id, tier, position, prize_amount, numbers_drawn_count, finished_at, created_at
		FROM game_results
		WHERE room_id = $1
		ORDER BY position ASC, id ASC
	`
	rows, err := r.q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for room %s: %w", roomID, err)
	}
	return scanGameResults(rows)
}

// GetTopWinners groups winning rows by player, most wins first, then most prize money
func (r *GameResultRepository) GetTopWinners(ctx context.Context, since *time.Time, limit int) ([]*entities.LeaderboardEntry, error) {
	query := `
		SELECT gr.player_id, COALESCE(u.username, ''), COUNT(*) AS wins, COALESCE(SUM(gr.prize_amount), 0)::BIGINT AS total_prize
		FROM game_results gr
		LEFT JOIN users u ON u.id = gr.player_id
		WHERE gr.position = 1
		  AND ($1::timestamptz IS NULL OR gr.finished_at >= $1)
		GROUP BY gr.player_id, u.username
		ORDER BY wins DESC, total_prize DESC, gr.player_id ASC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top winners: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		var entry entities.LeaderboardEntry
		if err := rows.Scan(&entry.PlayerID, &entry.Username, &entry.Wins, &entry.TotalPrize); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}

func scanGameResults(rows pgx.Rows) ([]*entities.GameResult, error) {
	defer rows.Close()

	var results []*entities.GameResult
	for rows.Next() {
		var result entities.GameResult
		err := rows.Scan(
			&result.ID,
			&result.RoomID,
			&result.PlayerID,
			&result.Tier,
			&result.Position,
			&result.PrizeAmount,
			&result.NumbersDrawnCount,
			&result.FinishedAt,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game results: %w", err)
	}
	return results, nil
}
