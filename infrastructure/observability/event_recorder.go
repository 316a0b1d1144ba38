package observability

import (
	"context"

	"bingohall/domain/entities"
	"bingohall/domain/events"
)

// EventRecorder turns domain events from the in-process bus into metrics
type EventRecorder struct {
	metrics *MetricsProvider
}

// NewEventRecorder creates a recorder writing to the given provider
func NewEventRecorder(metrics *MetricsProvider) *EventRecorder {
	return &EventRecorder{metrics: metrics}
}

// Subscribe registers the recorder for every event on the bus
func (r *EventRecorder) Subscribe(bus *events.Bus) {
	bus.SubscribeAll(r.Handle)
}

// Handle records one event
func (r *EventRecorder) Handle(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.RoundStartedEvent:
		r.metrics.RecordRoundStarted(e.Tier)

	case events.NumberDrawnEvent:
		r.metrics.RecordNumberDrawn()

	case events.RoundFinishedEvent:
		r.metrics.RecordRoundFinished(e.Tier, roundOutcome(e), e.DrawnCount)

	case events.BalanceChangeEvent:
		r.metrics.RecordBalanceTransaction(string(e.TransactionType))
		if e.TransactionType == entities.TransactionTypeBingoWin {
			r.metrics.RecordPayout(e.ChangeAmount)
		}
	}
}

func roundOutcome(e events.RoundFinishedEvent) string {
	switch {
	case e.Cancelled:
		return OutcomeCancelled
	case len(e.Winners) == 0:
		return OutcomeNoWinner
	default:
		return OutcomeWon
	}
}
