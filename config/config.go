package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"bingohall/application"
	"bingohall/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken      string
	AnnounceChannelID string // Channel where round starts and results are announced

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Wallet configuration
	StartingBalance int64

	// Room configuration
	RoomTiers       []int64
	MinPlayers      int
	MaxPlayers      int
	MaxCartela      int
	JoinCountdown   time.Duration
	CountdownTick   time.Duration
	DrawCadenceMin  time.Duration
	DrawCadenceMax  time.Duration
	MaxDurationMin  time.Duration
	MaxDurationMax  time.Duration
	GuaranteeWinner bool

	// Payout retry configuration
	PayoutRetryInterval time.Duration

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
	LogLevel    string
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// GameSettings projects the room configuration into the orchestrator's settings
func (c *Config) GameSettings() application.RoomSettings {
	return application.RoomSettings{
		Tiers:           append([]int64(nil), c.RoomTiers...),
		MinPlayers:      c.MinPlayers,
		MaxPlayers:      c.MaxPlayers,
		MaxCartela:      c.MaxCartela,
		JoinCountdown:   c.JoinCountdown,
		CountdownTick:   c.CountdownTick,
		DrawCadenceMin:  c.DrawCadenceMin,
		DrawCadenceMax:  c.DrawCadenceMax,
		MaxDurationMin:  c.MaxDurationMin,
		MaxDurationMax:  c.MaxDurationMax,
		GuaranteeWinner: c.GuaranteeWinner,
	}
}

// HasDiscord reports whether round announcements can be posted
func (c *Config) HasDiscord() bool {
	return c.DiscordToken != "" && c.AnnounceChannelID != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine, the process environment still applies
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		AnnounceChannelID: os.Getenv("ANNOUNCE_CHANNEL_ID"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Wallet
		StartingBalance: getEnvInt64("STARTING_BALANCE", 100),

		// Rooms
		RoomTiers:       []int64{10, 20, 30, 40, 50, 100},
		MinPlayers:      getEnvInt("MIN_PLAYERS", 2),
		MaxPlayers:      getEnvInt("MAX_PLAYERS", 10),
		MaxCartela:      getEnvInt("MAX_CARTELA", 100),
		JoinCountdown:   time.Duration(getEnvInt("JOIN_COUNTDOWN_SECONDS", 10)) * time.Second,
		CountdownTick:   time.Second,
		DrawCadenceMin:  time.Duration(getEnvInt("DRAW_CADENCE_MIN_MS", 1500)) * time.Millisecond,
		DrawCadenceMax:  time.Duration(getEnvInt("DRAW_CADENCE_MAX_MS", 2000)) * time.Millisecond,
		MaxDurationMin:  time.Duration(getEnvInt("MAX_DURATION_MIN_MS", 120000)) * time.Millisecond,
		MaxDurationMax:  time.Duration(getEnvInt("MAX_DURATION_MAX_MS", 150000)) * time.Millisecond,
		GuaranteeWinner: getEnvBool("GUARANTEE_WINNER", false),

		// Payout retries
		PayoutRetryInterval: time.Duration(getEnvInt("PAYOUT_RETRY_INTERVAL_SECONDS", 30)) * time.Second,

		// OpenTelemetry
		OTelEnabled:              getEnvBool("OTEL_ENABLED", false),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "bingohall"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: getEnvInt("OTEL_EXPORT_INTERVAL_MS", 30000),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if tiers := os.Getenv("ROOM_TIERS"); tiers != "" {
		parsed, err := parseTiers(tiers)
		if err != nil {
			return nil, err
		}
		config.RoomTiers = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks required settings and the room bounds
func (c *Config) validate() error {
	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if c.MinPlayers < 1 {
		return fmt.Errorf("MIN_PLAYERS must be at least 1")
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("MAX_PLAYERS (%d) must not be below MIN_PLAYERS (%d)", c.MaxPlayers, c.MinPlayers)
	}
	if c.MaxCartela < c.MaxPlayers {
		return fmt.Errorf("MAX_CARTELA (%d) must cover MAX_PLAYERS (%d)", c.MaxCartela, c.MaxPlayers)
	}
	if c.DrawCadenceMin <= 0 || c.DrawCadenceMax < c.DrawCadenceMin {
		return fmt.Errorf("invalid draw cadence bounds %v..%v", c.DrawCadenceMin, c.DrawCadenceMax)
	}
	if c.MaxDurationMin <= 0 || c.MaxDurationMax < c.MaxDurationMin {
		return fmt.Errorf("invalid max duration bounds %v..%v", c.MaxDurationMin, c.MaxDurationMax)
	}
	if len(c.RoomTiers) == 0 {
		return fmt.Errorf("ROOM_TIERS must list at least one tier")
	}
	return nil
}

// parseTiers parses a comma-separated list of positive entry fees
func parseTiers(raw string) ([]int64, error) {
	var tiers []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tier, err := strconv.ParseInt(part, 10, 64)
		if err != nil || tier <= 0 {
			return nil, fmt.Errorf("invalid tier %q in ROOM_TIERS", part)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		LogLevel:            "debug",
		StartingBalance:     100,
		RoomTiers:           []int64{10, 20, 30, 40, 50, 100},
		MinPlayers:          2,
		MaxPlayers:          10,
		MaxCartela:          100,
		JoinCountdown:       10 * time.Second,
		CountdownTick:       time.Second,
		DrawCadenceMin:      1500 * time.Millisecond,
		DrawCadenceMax:      2000 * time.Millisecond,
		MaxDurationMin:      120 * time.Second,
		MaxDurationMax:      150 * time.Second,
		PayoutRetryInterval: 30 * time.Second,
		OTelServiceName:     "bingohall-test",
		OTelExporterType:    "none",
	}
}
