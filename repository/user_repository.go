package repository

import (
	"context"
	"errors"
	"fmt"

	"bingohall/database"
	"bingohall/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, balance, is_registered, games_played, games_won, total_winnings, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository bound to a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}

// Create creates a new registered user with the initial balance
func (r *UserRepository) Create(ctx context.Context, userID int64, username string, initialBalance int64) (*entities.User, error) {
	query := `
		INSERT INTO users (id, username, balance, is_registered)
		VALUES ($1, $2, $3, TRUE)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, userID, username, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, err)
	}
	return user, nil
}

// DeductBalance subtracts amount only when the balance covers it.
// A nil user with a nil error means the balance was too low.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) (*entities.User, error) {
	query := `
		UPDATE users
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to deduct %d from user %d: %w", amount, userID, err)
	}
	return user, nil
}

// AddBalance adds amount and returns the updated user
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, amount int64) (*entities.User, error) {
	query := `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to add %d to user %d: %w", amount, userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user with id %d not found", userID)
	}
	return user, nil
}

// IncrementStats adds to the game counters
func (r *UserRepository) IncrementStats(ctx context.Context, userID int64, delta entities.StatsDelta) error {
	query := `
		UPDATE users
		SET games_played = games_played + $2,
		    games_won = games_won + $3,
		    total_winnings = total_winnings + $4,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, userID, delta.Played, delta.Won, delta.Winnings)
	if err != nil {
		return fmt.Errorf("failed to increment stats for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with id %d not found", userID)
	}
	return nil
}

// scanUser returns nil, nil when the row does not exist
func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Balance,
		&user.IsRegistered,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.TotalWinnings,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
