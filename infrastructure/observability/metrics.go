package observability

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"bingohall/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Gauge reports a current value when metrics are collected
type Gauge func(ctx context.Context) (int64, error)

// MetricsProvider manages OpenTelemetry metrics for the bingo hall
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	roundsStartedCounter  metric.Int64Counter
	roundsFinishedCounter metric.Int64Counter
	numbersDrawnCounter   metric.Int64Counter
	roundDrawCountHist    metric.Int64Histogram
	payoutsCounter        metric.Int64Counter
	payoutAmountCounter   metric.Int64Counter
	balanceChangeCounter  metric.Int64Counter
	registrations         []metric.Registration
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		log.Println("OpenTelemetry metrics disabled")
		return mp.markInitialized(false)
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Println("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Printf("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

	case "none":
		log.Println("Metrics export disabled (exporter_type='none')")
		return mp.markInitialized(false)

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.initializeWithReader(reader); err != nil {
		return err
	}
	otel.SetMeterProvider(mp.meterProvider)

	log.Println("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) markInitialized(enabled bool) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.initialized = true
	mp.enabled = enabled
	return nil
}

// initializeWithReader builds the meter provider around a reader
func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Println("Metrics provider already initialized")
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter(MetricPrefix)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.roundsStartedCounter, err = mp.meter.Int64Counter(
		RoundsStartedTotal,
		metric.WithDescription("Total number of rounds that started drawing"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rounds started counter: %w", err)
	}

	mp.roundsFinishedCounter, err = mp.meter.Int64Counter(
		RoundsFinishedTotal,
		metric.WithDescription("Total number of finished rounds by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rounds finished counter: %w", err)
	}

	mp.numbersDrawnCounter, err = mp.meter.Int64Counter(
		NumbersDrawnTotal,
		metric.WithDescription("Total number of balls drawn"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create draws counter: %w", err)
	}

	mp.roundDrawCountHist, err = mp.meter.Int64Histogram(
		RoundDrawCount,
		metric.WithDescription("Balls drawn before a round finished"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(5, 10, 15, 20, 30, 40, 50, 60, 75),
	)
	if err != nil {
		return fmt.Errorf("failed to create round draw count histogram: %w", err)
	}

	mp.payoutsCounter, err = mp.meter.Int64Counter(
		PayoutsTotal,
		metric.WithDescription("Total number of winner payouts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payouts counter: %w", err)
	}

	mp.payoutAmountCounter, err = mp.meter.Int64Counter(
		PayoutAmountTotal,
		metric.WithDescription("Total amount paid to winners"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payout amount counter: %w", err)
	}

	mp.balanceChangeCounter, err = mp.meter.Int64Counter(
		BalanceChangeTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	return nil
}

// ObserveGauge registers a callback read on every collection
func (mp *MetricsProvider) ObserveGauge(name, description string, gauge Gauge) error {
	if !mp.isEnabled() {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	instrument, err := mp.meter.Int64ObservableGauge(
		name,
		metric.WithDescription(description),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge %s: %w", name, err)
	}

	registration, err := mp.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		value, err := gauge(ctx)
		if err != nil {
			return err
		}
		o.ObserveInt64(instrument, value)
		return nil
	}, instrument)
	if err != nil {
		return fmt.Errorf("failed to register gauge %s: %w", name, err)
	}
	mp.registrations = append(mp.registrations, registration)
	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, r := range mp.registrations {
		_ = r.Unregister()
	}
	mp.registrations = nil

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordRoundStarted counts a round that began drawing
func (mp *MetricsProvider) RecordRoundStarted(tier int64) {
	if !mp.isEnabled() {
		return
	}

	mp.roundsStartedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Int64(LabelTier, tier)),
	)
}

// RecordRoundFinished counts a finished round and how many balls it took
func (mp *MetricsProvider) RecordRoundFinished(tier int64, outcome string, drawnCount int) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Int64(LabelTier, tier),
		attribute.String(LabelOutcome, outcome),
	)
	mp.roundsFinishedCounter.Add(context.Background(), 1, attrs)
	if outcome != OutcomeCancelled {
		mp.roundDrawCountHist.Record(context.Background(), int64(drawnCount), attrs)
	}
}

// RecordNumberDrawn counts one ball
func (mp *MetricsProvider) RecordNumberDrawn() {
	if !mp.isEnabled() {
		return
	}
	mp.numbersDrawnCounter.Add(context.Background(), 1)
}

// RecordPayout counts a prize credited to a winner
func (mp *MetricsProvider) RecordPayout(amount int64) {
	if !mp.isEnabled() {
		return
	}
	mp.payoutsCounter.Add(context.Background(), 1)
	mp.payoutAmountCounter.Add(context.Background(), amount)
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceChangeCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, transactionType),
		),
	)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
