package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"bingohall/application"
	"bingohall/config"
	"bingohall/database"
	"bingohall/domain/events"
	"bingohall/infrastructure"
	"bingohall/infrastructure/observability"
	"bingohall/repository"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Run initializes and starts the bingo hall
func Run(ctx context.Context) error {
	log.Println("Starting bingo hall...")

	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize metrics
	log.Println("Initializing metrics...")
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	// Initialize local event bus
	log.Println("Initializing event bus...")
	bus := events.NewBus()
	observability.NewEventRecorder(metrics).Subscribe(bus)

	// Connect to NATS
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper(), bus)
	if err := publisher.EnsureEventStream(natsClient); err != nil {
		log.Printf("Warning: failed to ensure event stream, events will not be persisted: %v", err)
	}
	log.Println("NATS connection established successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)

	// Initialize services
	log.Println("Initializing services...")
	users := application.NewUserRegistry(uowFactory, cfg.StartingBalance)
	ledger := application.NewResultLedger(uowFactory)
	payoutWorker := application.NewPayoutRetryWorker(uowFactory, cfg.PayoutRetryInterval)
	orchestrator := application.NewOrchestrator(
		cfg.GameSettings(),
		users,
		repository.NewRoomRepository(db),
		ledger,
		payoutWorker,
		publisher,
		nil,
		nil,
	)
	log.Println("Services initialized successfully")

	// Cancel rounds orphaned by a previous run
	recovered, err := orchestrator.RecoverRooms(ctx)
	if err != nil {
		log.Printf("Warning: room recovery incomplete: %v", err)
	}
	log.Printf("Recovered %d rooms from previous run", recovered)

	stopPayoutWorker := payoutWorker.Start(ctx)

	// Register gauges
	pendingPayouts := repository.NewPendingPayoutRepository(db)
	if err := metrics.ObserveGauge(observability.RoomsActive, "Rooms waiting or playing", func(ctx context.Context) (int64, error) {
		return int64(orchestrator.ActiveRooms()), nil
	}); err != nil {
		log.Printf("Warning: %v", err)
	}
	if err := metrics.ObserveGauge(observability.PayoutsPending, "Winner payouts waiting for retry", func(ctx context.Context) (int64, error) {
		count, err := pendingPayouts.CountUnsettled(ctx)
		return int64(count), err
	}); err != nil {
		log.Printf("Warning: %v", err)
	}
	pendingRounds := repository.NewPendingRoundRecordRepository(db)
	if err := metrics.ObserveGauge(observability.RoundRecordsPending, "Round records waiting for retry", func(ctx context.Context) (int64, error) {
		count, err := pendingRounds.CountUnsettled(ctx)
		return int64(count), err
	}); err != nil {
		log.Printf("Warning: %v", err)
	}

	// Start command gateway
	log.Println("Starting command gateway...")
	gateway := infrastructure.NewCommandGateway(orchestrator, users, ledger)
	if err := gateway.Start(natsClient); err != nil {
		stopPayoutWorker()
		orchestrator.Shutdown()
		natsClient.Close()
		db.Close()
		return fmt.Errorf("failed to start command gateway: %w", err)
	}
	log.Println("Command gateway started successfully")

	// Start Discord announcer
	var session *discordgo.Session
	if cfg.HasDiscord() {
		log.Println("Connecting to Discord...")
		session, err = discordgo.New("Bot " + cfg.DiscordToken)
		if err == nil {
			err = session.Open()
		}
		if err != nil {
			log.Printf("Warning: Discord announcements disabled: %v", err)
			session = nil
		} else {
			infrastructure.NewDiscordAnnouncer(session, cfg.AnnounceChannelID).Subscribe(bus)
			log.Println("Discord announcer started successfully")
		}
	}

	log.Println("Bingo hall is running. Press CTRL-C to exit.")

	// Wait for context cancellation
	<-ctx.Done()

	log.Println("Shutting down bingo hall...")

	// Create a timeout context for shutdown operations
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orchestrator.Shutdown()
	stopPayoutWorker()

	if session != nil {
		if err := session.Close(); err != nil {
			log.Printf("Error closing Discord session: %v", err)
		}
	}

	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics: %v", err)
	}

	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Bingo hall shut down successfully")
	}

	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
