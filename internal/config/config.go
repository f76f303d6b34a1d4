package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	RedisAddress string

	EscrowBrokers []string
	EscrowTopic   string
	EscrowGroup   string
	NotifyTopic   string

	PayoutNodeAddress string

	AnnouncePrivateKey string
	AnnounceRelays     []string
	// AnnounceExpirationWindow is added to publish time to derive the
	// expiration tag of every published announcement.
	AnnounceExpirationWindow time.Duration

	AuthSecret  string
	AdminSecret string

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultRedisAddress    = "localhost:6379"
	defaultEscrowTopic     = "escrow.invoices"
	defaultEscrowGroup     = "escrowd"
	defaultNotifyTopic     = "trade.notifications"
	defaultAuthSecret      = "change-me-in-production"
	defaultExpirationSecs  = 86400
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from .env, environment variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:               getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:              getString(lookup, "DATABASE_URI", ""),
		RedisAddress:             getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		EscrowBrokers:            getList(lookup, "ESCROW_BROKERS", nil),
		EscrowTopic:              getString(lookup, "ESCROW_TOPIC", defaultEscrowTopic),
		EscrowGroup:              getString(lookup, "ESCROW_GROUP", defaultEscrowGroup),
		NotifyTopic:              getString(lookup, "NOTIFY_TOPIC", defaultNotifyTopic),
		PayoutNodeAddress:        getString(lookup, "PAYOUT_NODE_ADDRESS", ""),
		AnnouncePrivateKey:       getString(lookup, "ANNOUNCE_PRIVATE_KEY", ""),
		AnnounceRelays:           getList(lookup, "ANNOUNCE_RELAYS", nil),
		AnnounceExpirationWindow: time.Duration(getInt(lookup, "ANNOUNCE_EXPIRATION_WINDOW", defaultExpirationSecs)) * time.Second,
		AuthSecret:               getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		AdminSecret:              getString(lookup, "ADMIN_SECRET", ""),
		ShutdownTimeout:          getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("escrowd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		brokersStr         = strings.Join(cfg.EscrowBrokers, ",")
		relaysStr          = strings.Join(cfg.AnnounceRelays, ",")
		expirationSecs     = int64(cfg.AnnounceExpirationWindow / time.Second)
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddress, "r", cfg.RedisAddress, "Redis address for the listing board")
	fs.StringVar(&brokersStr, "escrow-brokers", brokersStr, "Kafka brokers carrying escrow invoice notifications")
	fs.StringVar(&cfg.EscrowTopic, "escrow-topic", cfg.EscrowTopic, "Kafka topic with escrow invoice notifications")
	fs.StringVar(&cfg.EscrowGroup, "escrow-group", cfg.EscrowGroup, "Kafka consumer group for the escrow feed")
	fs.StringVar(&cfg.NotifyTopic, "notify-topic", cfg.NotifyTopic, "Kafka topic for semantic notifications")
	fs.StringVar(&cfg.PayoutNodeAddress, "payout-node", cfg.PayoutNodeAddress, "Payment node gateway base URL")
	fs.StringVar(&cfg.AnnouncePrivateKey, "announce-key", cfg.AnnouncePrivateKey, "Hex private key signing announcements")
	fs.StringVar(&relaysStr, "announce-relays", relaysStr, "Relay URLs receiving announcements")
	fs.Int64Var(&expirationSecs, "announce-expiration", expirationSecs, "Announcement expiration window in seconds")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for verifying party tokens")
	fs.StringVar(&cfg.AdminSecret, "admin-secret", cfg.AdminSecret, "Secret for verifying admin tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg.EscrowBrokers = splitList(brokersStr)
	cfg.AnnounceRelays = splitList(relaysStr)

	if expirationSecs <= 0 {
		expirationSecs = defaultExpirationSecs
	}
	cfg.AnnounceExpirationWindow = time.Duration(expirationSecs) * time.Second

	var err error
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	if len(cfg.EscrowBrokers) == 0 {
		return nil, fmt.Errorf("escrow brokers must be provided")
	}
	if cfg.PayoutNodeAddress == "" {
		return nil, fmt.Errorf("payout node address must be provided")
	}
	if cfg.AnnouncePrivateKey == "" {
		return nil, fmt.Errorf("announcement private key must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string, def []string) []string {
	if v, ok := lookup(key); ok && v != "" {
		return splitList(v)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
