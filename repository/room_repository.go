package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bingohall/database"
	"bingohall/domain/entities"

	"github.com/jackc/pgx/v5"
)

const roomColumns = `id, tier, status, players, draw_history, current_draw, min_players, max_players,
	card_seed, draw_cadence_ms, max_duration_ms, winners, cancelled, created_by, created_at, started_at, finished_at`

// RoomRepository stores rooms with players and winners as JSONB
type RoomRepository struct {
	q Queryable
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{q: db.Pool}
}

// newRoomRepositoryWithTx creates a new room repository bound to a transaction
func newRoomRepositoryWithTx(tx Queryable) *RoomRepository {
	return &RoomRepository{q: tx}
}

// roomRow holds the encoded columns of a room
type roomRow struct {
	players     []byte
	winners     []byte
	drawHistory []int32
	currentDraw *int32
}

func encodeRoom(room *entities.Room) (*roomRow, error) {
	players := room.Players
	if players == nil {
		players = []*entities.Player{}
	}
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal players: %w", err)
	}

	winners := room.Winners
	if winners == nil {
		winners = []entities.Winner{}
	}
	winnersJSON, err := json.Marshal(winners)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal winners: %w", err)
	}

	row := &roomRow{
		players:     playersJSON,
		winners:     winnersJSON,
		drawHistory: make([]int32, len(room.DrawHistory)),
	}
	for i, n := range room.DrawHistory {
		row.drawHistory[i] = int32(n)
	}
	if room.CurrentDraw > 0 {
		current := int32(room.CurrentDraw)
		row.currentDraw = &current
	}
	return row, nil
}

// Create inserts a new room
func (r *RoomRepository) Create(ctx context.Context, room *entities.Room) error {
	row, err := encodeRoom(room)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rooms (` + roomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = r.q.Exec(ctx, query,
		room.ID,
		room.Tier,
		room.Status,
		row.players,
		row.drawHistory,
		row.currentDraw,
		room.MinPlayers,
		room.MaxPlayers,
		room.CardSeed,
		room.DrawCadence.Milliseconds(),
		room.MaxDuration.Milliseconds(),
		row.winners,
		room.Cancelled,
		room.CreatedBy,
		room.CreatedAt,
		room.StartedAt,
		room.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room %s: %w", room.ID, err)
	}
	return nil
}

// GetByID retrieves a room, returning nil when it does not exist
func (r *RoomRepository) GetByID(ctx context.Context, roomID string) (*entities.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.q.QueryRow(ctx, query, roomID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", roomID, err)
	}
	return room, nil
}

// Update overwrites the mutable state of a room
func (r *RoomRepository) Update(ctx context.Context, room *entities.Room) error {
	row, err := encodeRoom(room)
	if err != nil {
		return err
	}

	query := `
		UPDATE rooms
		SET status = $2,
		    players = $3,
		    draw_history = $4,
		    current_draw = $5,
		    draw_cadence_ms = $6,
		    max_duration_ms = $7,
		    winners = $8,
		    cancelled = $9,
		    started_at = $10,
		    finished_at = $11,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query,
		room.ID,
		room.Status,
		row.players,
		row.drawHistory,
		row.currentDraw,
		room.DrawCadence.Milliseconds(),
		room.MaxDuration.Milliseconds(),
		row.winners,
		room.Cancelled,
		room.StartedAt,
		room.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update room %s: %w", room.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s not found", room.ID)
	}
	return nil
}

// Delete removes a room
func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomID, err)
	}
	return nil
}

// ListByStatus returns rooms in the given status, oldest first
func (r *RoomRepository) ListByStatus(ctx context.Context, status entities.RoomStatus) ([]*entities.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE status = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s rooms: %w", status, err)
	}
	defer rows.Close()

	var rooms []*entities.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

func scanRoom(row pgx.Row) (*entities.Room, error) {
	var room entities.Room
	var playersJSON, winnersJSON []byte
	var drawHistory []int32
	var currentDraw *int32
	var cadenceMs, maxDurationMs int64

	err := row.Scan(
		&room.ID,
		&room.Tier,
		&room.Status,
		&playersJSON,
		&drawHistory,
		&currentDraw,
		&room.MinPlayers,
		&room.MaxPlayers,
		&room.CardSeed,
		&cadenceMs,
		&maxDurationMs,
		&winnersJSON,
		&room.Cancelled,
		&room.CreatedBy,
		&room.CreatedAt,
		&room.StartedAt,
		&room.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(playersJSON, &room.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}
	if err := json.Unmarshal(winnersJSON, &room.Winners); err != nil {
		return nil, fmt.Errorf("failed to unmarshal winners: %w", err)
	}

	room.DrawHistory = make([]int, len(drawHistory))
	for i, n := range drawHistory {
		room.DrawHistory[i] = int(n)
	}
	if currentDraw != nil {
		room.CurrentDraw = int(*currentDraw)
	}
	room.DrawCadence = time.Duration(cadenceMs) * time.Millisecond
	room.MaxDuration = time.Duration(maxDurationMs) * time.Millisecond
	room.RebuildTakenCartelas()

	return &room, nil
}
