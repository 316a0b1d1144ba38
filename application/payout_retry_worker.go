package application

import (
	"context"
	"fmt"
	"time"

	"bingohall/domain/entities"
	"bingohall/domain/services"

	log "github.com/sirupsen/logrus"
)

const payoutBatchSize = 50

// PayoutRetryWorker settles credits and round records that failed when a round finished
type PayoutRetryWorker struct {
	uowFactory UnitOfWorkFactory
	interval   time.Duration
	now        func() time.Time
}

// NewPayoutRetryWorker creates a new payout retry worker
func NewPayoutRetryWorker(uowFactory UnitOfWorkFactory, interval time.Duration) *PayoutRetryWorker {
	return &PayoutRetryWorker{
		uowFactory: uowFactory,
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue stores a payout for the next retry pass
func (w *PayoutRetryWorker) Enqueue(ctx context.Context, payout *entities.PendingPayout) error {
	if payout.NextAttemptAt.IsZero() {
		payout.NextAttemptAt = w.now()
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PendingPayoutRepository().Create(ctx, payout); err != nil {
		return fmt.Errorf("failed to enqueue payout: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"payoutID": payout.ID,
		"roomID":   payout.RoomID,
		"playerID": payout.PlayerID,
		"amount":   payout.Amount,
	}).Warn("Payout queued for retry")
	return nil
}

// EnqueueRound stores a round record for the next retry pass
func (w *PayoutRetryWorker) EnqueueRound(ctx context.Context, pending *entities.PendingRoundRecord) error {
	if pending.NextAttemptAt.IsZero() {
		pending.NextAttemptAt = w.now()
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PendingRoundRecordRepository().Create(ctx, pending); err != nil {
		return fmt.Errorf("failed to enqueue round record: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"pendingID": pending.ID,
		"roomID":    pending.RoomID,
		"results":   len(pending.Record.Results),
	}).Warn("Round record queued for retry")
	return nil
}

// Start begins the payout retry worker
func (w *PayoutRetryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", w.interval).Info("Payout retry worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if _, err := w.ProcessDue(ctx); err != nil {
				log.Errorf("Error processing pending payouts: %v", err)
			}
			if _, err := w.ProcessDueRounds(ctx); err != nil {
				log.Errorf("Error processing pending round records: %v", err)
			}

			select {
			case <-ctx.Done():
				log.Info("Payout retry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Payout retry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	// Return cleanup function
	return func() {
		close(stopChan)
	}
}

// ProcessDue retries every payout whose next attempt is due and returns how many settled
func (w *PayoutRetryWorker) ProcessDue(ctx context.Context) (int, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	due, err := uow.PendingPayoutRepository().GetDue(ctx, w.now(), payoutBatchSize)
	uow.Rollback() // Close the read transaction; settle relies on MarkSettled, not row locks
	if err != nil {
		return 0, fmt.Errorf("failed to get due payouts: %w", err)
	}

	if len(due) == 0 {
		return 0, nil
	}

	var settled, failed int
	for _, payout := range due {
		if err := w.settle(ctx, payout); err != nil {
			failed++
			w.recordFailure(ctx, payout, err)
			continue
		}
		settled++
	}

	log.WithFields(log.Fields{
		"due":     len(due),
		"settled": settled,
		"failed":  failed,
	}).Info("Completed payout retry pass")

	return settled, nil
}

// settle credits the player and marks the payout settled in one transaction
func (w *PayoutRetryWorker) settle(ctx context.Context, payout *entities.PendingPayout) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet := services.NewWalletService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
	if _, err := wallet.Credit(ctx, payout.PlayerID, payout.Amount, payout.TransactionType, payout.RoomID); err != nil {
		return err
	}

	if err := uow.PendingPayoutRepository().MarkSettled(ctx, payout.ID, w.now()); err != nil {
		return fmt.Errorf("failed to mark payout settled: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (w *PayoutRetryWorker) recordFailure(ctx context.Context, payout *entities.PendingPayout, cause error) {
	next := w.now().Add(payout.RetryDelay(w.interval))
	fields := log.Fields{
		"payoutID":    payout.ID,
		"playerID":    payout.PlayerID,
		"attempts":    payout.Attempts + 1,
		"nextAttempt": next,
	}
	log.WithError(cause).WithFields(fields).Warn("Payout retry failed")

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to begin transaction for payout failure")
		return
	}
	defer uow.Rollback()

	if err := uow.PendingPayoutRepository().MarkAttemptFailed(ctx, payout.ID, cause.Error(), next); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to record payout failure")
		return
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to commit payout failure")
	}
}

// ProcessDueRounds writes every round record whose next attempt is due and returns how many settled
func (w *PayoutRetryWorker) ProcessDueRounds(ctx context.Context) (int, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	due, err := uow.PendingRoundRecordRepository().GetDue(ctx, w.now(), payoutBatchSize)
	uow.Rollback()
	if err != nil {
		return 0, fmt.Errorf("failed to get due round records: %w", err)
	}

	if len(due) == 0 {
		return 0, nil
	}

	var settled, failed int
	for _, pending := range due {
		if err := w.settleRound(ctx, pending); err != nil {
			failed++
			w.recordRoundFailure(ctx, pending, err)
			continue
		}
		settled++
	}

	log.WithFields(log.Fields{
		"due":     len(due),
		"settled": settled,
		"failed":  failed,
	}).Info("Completed round record retry pass")

	return settled, nil
}

// settleRound writes the results and stats and marks the record settled in one transaction
func (w *PayoutRetryWorker) settleRound(ctx context.Context, pending *entities.PendingRoundRecord) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := writeRound(ctx, uow, &pending.Record); err != nil {
		return err
	}

	if err := uow.PendingRoundRecordRepository().MarkSettled(ctx, pending.ID, w.now()); err != nil {
		return fmt.Errorf("failed to mark round record settled: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (w *PayoutRetryWorker) recordRoundFailure(ctx context.Context, pending *entities.PendingRoundRecord, cause error) {
	next := w.now().Add(pending.RetryDelay(w.interval))
	fields := log.Fields{
		"pendingID":   pending.ID,
		"roomID":      pending.RoomID,
		"attempts":    pending.Attempts + 1,
		"nextAttempt": next,
	}
	log.WithError(cause).WithFields(fields).Warn("Round record retry failed")

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to begin transaction for round record failure")
		return
	}
	defer uow.Rollback()

	if err := uow.PendingRoundRecordRepository().MarkAttemptFailed(ctx, pending.ID, cause.Error(), next); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to record round record failure")
		return
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to commit round record failure")
	}
}
