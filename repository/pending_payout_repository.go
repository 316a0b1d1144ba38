package repository

import (
	"context"
	"fmt"
	"time"

	"bingohall/database"
	"bingohall/domain/entities"
)

// PendingPayoutRepository queues credits that failed at round finish
type PendingPayoutRepository struct {
	q Queryable
}

// NewPendingPayoutRepository creates a new pending payout repository
func NewPendingPayoutRepository(db *database.DB) *PendingPayoutRepository {
	return &PendingPayoutRepository{q: db.Pool}
}

// newPendingPayoutRepositoryWithTx creates a new pending payout repository bound to a transaction
func newPendingPayoutRepositoryWithTx(tx Queryable) *PendingPayoutRepository {
	return &PendingPayoutRepository{q: tx}
}

// Create enqueues a payout
func (r *PendingPayoutRepository) Create(ctx context.Context, payout *entities.PendingPayout) error {
	query := `
		INSERT INTO pending_payouts (room_id, player_id, amount, transaction_type, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, attempts, created_at
	`
	err := r.q.QueryRow(ctx, query,
		payout.RoomID,
		payout.PlayerID,
		payout.Amount,
		payout.TransactionType,
		payout.NextAttemptAt,
	).Scan(&payout.ID, &payout.Attempts, &payout.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue payout for player %d in room %s: %w", payout.PlayerID, payout.RoomID, err)
	}
	return nil
}

// GetDue returns unsettled payouts whose next attempt is due.
// The rows are a snapshot: two workers may both pick up a payout, and MarkSettled decides which one credits it.
func (r *PendingPayoutRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*entities.PendingPayout, error) {
	query := `
		SELECT id, room_id, player_id, amount, transaction_type, attempts, last_error, next_attempt_at, settled_at, created_at
		FROM pending_payouts
		WHERE settled_at IS NULL AND next_attempt_at <= $1
		ORDER BY next_attempt_at ASC, id ASC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*entities.PendingPayout
	for rows.Next() {
		var payout entities.PendingPayout
		err := rows.Scan(
			&payout.ID,
			&payout.RoomID,
			&payout.PlayerID,
			&payout.Amount,
			&payout.TransactionType,
			&payout.Attempts,
			&payout.LastError,
			&payout.NextAttemptAt,
			&payout.SettledAt,
			&payout.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending payout: %w", err)
		}
		payouts = append(payouts, &payout)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending payouts: %w", err)
	}
	return payouts, nil
}

// MarkSettled records a successful credit.
// The conditional update takes the row lock, so a second worker settling the same payout
// waits for the first and then fails, rolling back its credit.
func (r *PendingPayoutRepository) MarkSettled(ctx context.Context, payoutID int64, settledAt time.Time) error {
	query := `
		UPDATE pending_payouts
		SET settled_at = $2, attempts = attempts + 1, last_error = NULL
		WHERE id = $1 AND settled_at IS NULL
	`
	result, err := r.q.Exec(ctx, query, payoutID, settledAt)
	if err != nil {
		return fmt.Errorf("failed to settle payout %d: %w", payoutID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("payout %d not found or already settled", payoutID)
	}
	return nil
}

// MarkAttemptFailed records a failed attempt and when to try again
func (r *PendingPayoutRepository) MarkAttemptFailed(ctx context.Context, payoutID int64, lastError string, nextAttemptAt time.Time) error {
	query := `
		UPDATE pending_payouts
		SET attempts = attempts + 1, last_error = $2, next_attempt_at = $3
		WHERE id = $1 AND settled_at IS NULL
	`
	if _, err := r.q.Exec(ctx, query, payoutID, lastError, nextAttemptAt); err != nil {
		return fmt.Errorf("failed to record failed attempt for payout %d: %w", payoutID, err)
	}
	return nil
}

// CountUnsettled returns how many payouts are still owed
func (r *PendingPayoutRepository) CountUnsettled(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM pending_payouts WHERE settled_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unsettled payouts: %w", err)
	}
	return count, nil
}
