package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bingohall/database"
	"bingohall/domain/entities"
)

// PendingRoundRecordRepository queues round records that failed at round finish
type PendingRoundRecordRepository struct {
	q Queryable
}

// NewPendingRoundRecordRepository creates a new pending round record repository
func NewPendingRoundRecordRepository(db *database.DB) *PendingRoundRecordRepository {
	return &PendingRoundRecordRepository{q: db.Pool}
}

// newPendingRoundRecordRepositoryWithTx creates a new pending round record repository bound to a transaction
func newPendingRoundRecordRepositoryWithTx(tx Queryable) *PendingRoundRecordRepository {
	return &PendingRoundRecordRepository{q: tx}
}

// Create enqueues a round record. room_id is unique, so a room cannot be queued twice.
func (r *PendingRoundRecordRepository) Create(ctx context.Context, pending *entities.PendingRoundRecord) error {
	recordJSON, err := json.Marshal(pending.Record)
	if err != nil {
		return fmt.Errorf("failed to encode round record for room %s: %w", pending.RoomID, err)
	}

	query := `
		INSERT INTO pending_round_records (room_id, record, next_attempt_at)
		VALUES ($1, $2, $3)
		RETURNING id, attempts, created_at
	`
	err = r.q.QueryRow(ctx, query,
		pending.RoomID,
		recordJSON,
		pending.NextAttemptAt,
	).Scan(&pending.ID, &pending.Attempts, &pending.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue round record for room %s: %w", pending.RoomID, err)
	}
	return nil
}

// GetDue returns unsettled round records whose next attempt is due.
// Like payouts, the rows are a snapshot and MarkSettled decides which worker writes a record.
func (r *PendingRoundRecordRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*entities.PendingRoundRecord, error) {
	query := `
		SELECT id, room_id, record, attempts, last_error, next_attempt_at, settled_at, created_at
		FROM pending_round_records
		WHERE settled_at IS NULL AND next_attempt_at <= $1
		ORDER BY next_attempt_at ASC, id ASC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due round records: %w", err)
	}
	defer rows.Close()

	var pending []*entities.PendingRoundRecord
	for rows.Next() {
		var p entities.PendingRoundRecord
		var recordJSON []byte
		err := rows.Scan(
			&p.ID,
			&p.RoomID,
			&recordJSON,
			&p.Attempts,
			&p.LastError,
			&p.NextAttemptAt,
			&p.SettledAt,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending round record: %w", err)
		}
		if err := json.Unmarshal(recordJSON, &p.Record); err != nil {
			return nil, fmt.Errorf("failed to decode round record %d: %w", p.ID, err)
		}
		pending = append(pending, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending round records: %w", err)
	}
	return pending, nil
}

// MarkSettled records a successful write.
// A second worker writing the same record waits on the row lock and then fails, rolling back its rows.
func (r *PendingRoundRecordRepository) MarkSettled(ctx context.Context, pendingID int64, settledAt time.Time) error {
	query := `
		UPDATE pending_round_records
		SET settled_at = $2, attempts = attempts + 1, last_error = NULL
		WHERE id = $1 AND settled_at IS NULL
	`
	result, err := r.q.Exec(ctx, query, pendingID, settledAt)
	if err != nil {
		return fmt.Errorf("failed to settle round record %d: %w", pendingID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("round record %d not found or already settled", pendingID)
	}
	return nil
}

// MarkAttemptFailed records a failed attempt and when to try again
func (r *PendingRoundRecordRepository) MarkAttemptFailed(ctx context.Context, pendingID int64, lastError string, nextAttemptAt time.Time) error {
	query := `
		UPDATE pending_round_records
		SET attempts = attempts + 1, last_error = $2, next_attempt_at = $3
		WHERE id = $1 AND settled_at IS NULL
	`
	if _, err := r.q.Exec(ctx, query, pendingID, lastError, nextAttemptAt); err != nil {
		return fmt.Errorf("failed to record failed attempt for round record %d: %w", pendingID, err)
	}
	return nil
}

// CountUnsettled returns how many round records are still unwritten
func (r *PendingRoundRecordRepository) CountUnsettled(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM pending_round_records WHERE settled_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unsettled round records: %w", err)
	}
	return count, nil
}
