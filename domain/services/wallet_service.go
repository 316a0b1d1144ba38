package services

import (
	"context"
	"fmt"

	"bingohall/domain"
	"bingohall/domain/entities"
	"bingohall/domain/interfaces"
	"bingohall/domain/utils"
)

type walletService struct {
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(userRepo interfaces.UserRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher) interfaces.WalletService {
	return &walletService{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *walletService) Register(ctx context.Context, userID int64, username string, startingBalance int64) (*entities.User, bool, error) {
	if startingBalance < 0 {
		return nil, false, fmt.Errorf("starting balance must not be negative")
	}

	existing, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user, err := s.userRepo.Create(ctx, userID, username, startingBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	if startingBalance > 0 {
		history := &entities.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   0,
			BalanceAfter:    startingBalance,
			ChangeAmount:    startingBalance,
			TransactionType: entities.TransactionTypeInitial,
			TransactionMetadata: map[string]any{
				"username": username,
			},
		}
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return nil, false, fmt.Errorf("failed to record starting balance: %w", err)
		}
	}

	return user, true, nil
}

func (s *walletService) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsRegistered {
		return nil, domain.ErrNotRegistered
	}
	return user, nil
}

func (s *walletService) Debit(ctx context.Context, userID int64, amount int64, reason entities.TransactionType, roomID string) (*entities.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive")
	}
	if !reason.IsDebit() {
		return nil, fmt.Errorf("transaction type %s is not a debit", reason)
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.DeductBalance(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct balance: %w", err)
	}
	if updated == nil {
		return nil, domain.WrapGameError(domain.ErrInsufficientBalance, fmt.Errorf("user %d cannot cover %d", userID, amount))
	}

	if err := s.record(ctx, updated, -amount, reason, roomID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *walletService) Credit(ctx context.Context, userID int64, amount int64, reason entities.TransactionType, roomID string) (*entities.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive")
	}
	if !reason.IsCredit() {
		return nil, fmt.Errorf("transaction type %s is not a credit", reason)
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.AddBalance(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to add balance: %w", err)
	}

	if err := s.record(ctx, updated, amount, reason, roomID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *walletService) IncrementStats(ctx context.Context, userID int64, delta entities.StatsDelta) error {
	if delta == (entities.StatsDelta{}) {
		return nil
	}
	if err := s.userRepo.IncrementStats(ctx, userID, delta); err != nil {
		return fmt.Errorf("failed to update stats for user %d: %w", userID, err)
	}
	return nil
}

// record writes the history row for a change already applied to updated
func (s *walletService) record(ctx context.Context, updated *entities.User, change int64, reason entities.TransactionType, roomID string) error {
	history := &entities.BalanceHistory{
		UserID:          updated.ID,
		BalanceBefore:   updated.Balance - change,
		BalanceAfter:    updated.Balance,
		ChangeAmount:    change,
		TransactionType: reason,
		TransactionMetadata: map[string]any{
			"room_id": roomID,
		},
	}
	if roomID != "" {
		history.RoomID = &roomID
	}

	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record balance change: %w", err)
	}
	return nil
}
