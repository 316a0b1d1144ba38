package observability

import (
	"context"
	"testing"

	"bingohall/config"
	"bingohall/domain/entities"
	"bingohall/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.initializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func sumValue(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if len(attrs) == 0 || dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordRoundStarted(10)
		mp.RecordNumberDrawn()
		mp.RecordPayout(16)
	})
	assert.NoError(t, mp.ObserveGauge(RoomsActive, "rooms", func(ctx context.Context) (int64, error) { return 1, nil }))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	assert.Error(t, NewMetricsProvider(cfg).Initialize(context.Background()))
}

func TestEventRecorder_RecordsRoundLifecycle(t *testing.T) {
	mp, reader := newTestProvider(t)
	recorder := NewEventRecorder(mp)
	ctx := context.Background()

	recorder.Handle(ctx, events.RoundStartedEvent{RoomID: "r1", Tier: 10})
	recorder.Handle(ctx, events.NumberDrawnEvent{RoomID: "r1", Value: 3})
	recorder.Handle(ctx, events.NumberDrawnEvent{RoomID: "r1", Value: 9})
	recorder.Handle(ctx, events.RoundFinishedEvent{RoomID: "r1", Tier: 10, DrawnCount: 2, Winners: []entities.Winner{{PlayerID: 1, PrizeAmount: 16}}})
	recorder.Handle(ctx, events.RoundFinishedEvent{RoomID: "r2", Tier: 20, Cancelled: true})
	recorder.Handle(ctx, events.BalanceChangeEvent{UserID: 1, ChangeAmount: 16, TransactionType: entities.TransactionTypeBingoWin})
	recorder.Handle(ctx, events.BalanceChangeEvent{UserID: 2, ChangeAmount: -10, TransactionType: entities.TransactionTypeEntryFee})

	metrics := collect(t, reader)

	assert.Equal(t, int64(1), sumValue(t, metrics[RoundsStartedTotal]))
	assert.Equal(t, int64(2), sumValue(t, metrics[NumbersDrawnTotal]))
	assert.Equal(t, int64(1), sumValue(t, metrics[RoundsFinishedTotal],
		attribute.Int64(LabelTier, 10), attribute.String(LabelOutcome, OutcomeWon)))
	assert.Equal(t, int64(1), sumValue(t, metrics[RoundsFinishedTotal],
		attribute.Int64(LabelTier, 20), attribute.String(LabelOutcome, OutcomeCancelled)))
	assert.Equal(t, int64(1), sumValue(t, metrics[PayoutsTotal]))
	assert.Equal(t, int64(16), sumValue(t, metrics[PayoutAmountTotal]))
	assert.Equal(t, int64(2), sumValue(t, metrics[BalanceChangeTotal]))
}

func TestMetricsProvider_ObserveGauge(t *testing.T) {
	mp, reader := newTestProvider(t)
	active := int64(3)
	require.NoError(t, mp.ObserveGauge(RoomsActive, "Rooms waiting or playing", func(ctx context.Context) (int64, error) {
		return active, nil
	}))

	metrics := collect(t, reader)

	gauge, ok := metrics[RoomsActive].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
}
