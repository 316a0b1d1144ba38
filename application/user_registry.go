package application

import (
	"context"
	"fmt"

	"bingohall/domain"
	"bingohall/domain/entities"
	"bingohall/domain/interfaces"
	"bingohall/domain/services"
)

// UserRegistry runs each wallet operation in its own unit of work
type UserRegistry struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewUserRegistry creates a user registry backed by the unit of work factory
func NewUserRegistry(uowFactory UnitOfWorkFactory, startingBalance int64) *UserRegistry {
	return &UserRegistry{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// Register creates a player with the starting balance. created is false when they already existed.
func (r *UserRegistry) Register(ctx context.Context, playerID int64, username string) (*entities.User, bool, error) {
	var user *entities.User
	var created bool
	err := r.inTransaction(ctx, func(uow UnitOfWork, wallet interfaces.WalletService) error {
		var err error
		user, created, err = wallet.Register(ctx, playerID, username, r.startingBalance)
		return err
	})
	return user, created, err
}

// IsRegistered reports whether the player may play
func (r *UserRegistry) IsRegistered(ctx context.Context, playerID int64) (bool, error) {
	user, err := r.GetUser(ctx, playerID)
	if err != nil {
		if domain.IsGameError(err) {
			return false, nil
		}
		return false, err
	}
	return user.IsRegistered, nil
}

// GetBalance returns the player's balance
func (r *UserRegistry) GetBalance(ctx context.Context, playerID int64) (int64, error) {
	user, err := r.GetUser(ctx, playerID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// GetUser returns the registered player or domain.ErrNotRegistered
func (r *UserRegistry) GetUser(ctx context.Context, playerID int64) (*entities.User, error) {
	var user *entities.User
	err := r.readOnly(ctx, func(uow UnitOfWork, wallet interfaces.WalletService) error {
		var err error
		user, err = wallet.GetUser(ctx, playerID)
		return err
	})
	return user, err
}

// Debit takes amount from the player, failing with domain.ErrInsufficientBalance when it is not covered
func (r *UserRegistry) Debit(ctx context.Context, playerID int64, amount int64, reason entities.TransactionType, roomID string) error {
	return r.inTransaction(ctx, func(uow UnitOfWork, wallet interfaces.WalletService) error {
		_, err := wallet.Debit(ctx, playerID, amount, reason, roomID)
		return err
	})
}

// Credit pays amount to the player
func (r *UserRegistry) Credit(ctx context.Context, playerID int64, amount int64, reason entities.TransactionType, roomID string) error {
	return r.inTransaction(ctx, func(uow UnitOfWork, wallet interfaces.WalletService) error {
		_, err := wallet.Credit(ctx, playerID, amount, reason, roomID)
		return err
	})
}

// IncrementStats adds to the player's game counters
func (r *UserRegistry) IncrementStats(ctx context.Context, playerID int64, delta entities.StatsDelta) error {
	return r.inTransaction(ctx, func(uow UnitOfWork, wallet interfaces.WalletService) error {
		return wallet.IncrementStats(ctx, playerID, delta)
	})
}

// BalanceHistory returns the player's most recent balance changes
func (r *UserRegistry) BalanceHistory(ctx context.Context, playerID int64, limit int) ([]*entities.BalanceHistory, error) {
	var history []*entities.BalanceHistory
	err := r.readOnly(ctx, func(uow UnitOfWork, wallet interfaces.WalletService) error {
		var err error
		history, err = uow.BalanceHistoryRepository().GetByUser(ctx, playerID, limit)
		return err
	})
	return history, err
}

// inTransaction commits when fn succeeds. Balance events are flushed by the unit of work after commit.
func (r *UserRegistry) inTransaction(ctx context.Context, fn func(uow UnitOfWork, wallet interfaces.WalletService) error) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow, r.walletFor(uow)); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *UserRegistry) readOnly(ctx context.Context, fn func(uow UnitOfWork, wallet interfaces.WalletService) error) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return fn(uow, r.walletFor(uow))
}

func (r *UserRegistry) walletFor(uow UnitOfWork) interfaces.WalletService {
	return services.NewWalletService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
}
