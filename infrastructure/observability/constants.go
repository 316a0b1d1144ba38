package observability

// Metric name prefixes
const (
	MetricPrefix = "bingohall"
)

// Metric names
const (
	// Room metrics
	RoomsActive         = MetricPrefix + ".rooms.active"
	RoundsStartedTotal  = MetricPrefix + ".rounds.started_total"
	RoundsFinishedTotal = MetricPrefix + ".rounds.finished_total"
	NumbersDrawnTotal   = MetricPrefix + ".draws.total"
	RoundDrawCount      = MetricPrefix + ".rounds.draw_count"

	// Payout metrics
	PayoutsTotal        = MetricPrefix + ".payouts.total"
	PayoutAmountTotal   = MetricPrefix + ".payouts.amount_total"
	PayoutsPending      = MetricPrefix + ".payouts.pending"
	RoundRecordsPending = MetricPrefix + ".round_records.pending"
	BalanceChangeTotal  = MetricPrefix + ".balance.transactions_total"
)

// Label keys
const (
	LabelTier      = "tier"
	LabelOutcome   = "outcome"
	LabelType      = "type"
	LabelEventType = "event_type"
)

// Round outcomes
const (
	OutcomeWon       = "won"
	OutcomeNoWinner  = "no_winner"
	OutcomeCancelled = "cancelled"
)
