package config

import (
	"testing"
	"time"
)

func lookupFrom(env map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"DATABASE_URI":         "postgres://localhost/escrowd",
		"ESCROW_BROKERS":       "localhost:9092",
		"PAYOUT_NODE_ADDRESS":  "http://localhost:9911",
		"ANNOUNCE_PRIVATE_KEY": "0000000000000000000000000000000000000000000000000000000000000001",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(nil, lookupFrom(requiredEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RunAddress != defaultRunAddress {
		t.Errorf("run address = %q, want %q", cfg.RunAddress, defaultRunAddress)
	}
	if cfg.RedisAddress != defaultRedisAddress {
		t.Errorf("redis address = %q, want %q", cfg.RedisAddress, defaultRedisAddress)
	}
	if cfg.EscrowTopic != defaultEscrowTopic {
		t.Errorf("escrow topic = %q, want %q", cfg.EscrowTopic, defaultEscrowTopic)
	}
	if cfg.NotifyTopic != defaultNotifyTopic {
		t.Errorf("notify topic = %q, want %q", cfg.NotifyTopic, defaultNotifyTopic)
	}
	if cfg.AnnounceExpirationWindow != defaultExpirationSecs*time.Second {
		t.Errorf("expiration window = %s, want %ds", cfg.AnnounceExpirationWindow, defaultExpirationSecs)
	}
	if cfg.ShutdownTimeout != defaultShutdownTimeout {
		t.Errorf("shutdown timeout = %s, want %s", cfg.ShutdownTimeout, defaultShutdownTimeout)
	}
}

func TestLoadRequiresDatabaseURI(t *testing.T) {
	env := requiredEnv()
	delete(env, "DATABASE_URI")
	if _, err := load(nil, lookupFrom(env)); err == nil {
		t.Fatal("expected error for missing database URI")
	}
}

func TestLoadRequiresBrokers(t *testing.T) {
	env := requiredEnv()
	delete(env, "ESCROW_BROKERS")
	if _, err := load(nil, lookupFrom(env)); err == nil {
		t.Fatal("expected error for missing escrow brokers")
	}
}

func TestLoadRequiresAnnounceKey(t *testing.T) {
	env := requiredEnv()
	delete(env, "ANNOUNCE_PRIVATE_KEY")
	if _, err := load(nil, lookupFrom(env)); err == nil {
		t.Fatal("expected error for missing announcement key")
	}
}

func TestLoadParsesLists(t *testing.T) {
	env := requiredEnv()
	env["ESCROW_BROKERS"] = "k1:9092, k2:9092 ,"
	env["ANNOUNCE_RELAYS"] = "wss://relay.one,wss://relay.two"

	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.EscrowBrokers) != 2 || cfg.EscrowBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.EscrowBrokers)
	}
	if len(cfg.AnnounceRelays) != 2 {
		t.Fatalf("unexpected relays %v", cfg.AnnounceRelays)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	env := requiredEnv()
	env["RUN_ADDRESS"] = ":9000"

	cfg, err := load([]string{"-a", ":7000", "-announce-expiration", "3600"}, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunAddress != ":7000" {
		t.Errorf("run address = %q, want :7000", cfg.RunAddress)
	}
	if cfg.AnnounceExpirationWindow != time.Hour {
		t.Errorf("expiration window = %s, want 1h", cfg.AnnounceExpirationWindow)
	}
}

func TestLoadNormalizesInvalidExpiration(t *testing.T) {
	env := requiredEnv()
	env["ANNOUNCE_EXPIRATION_WINDOW"] = "-5"

	cfg, err := load(nil, lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AnnounceExpirationWindow != defaultExpirationSecs*time.Second {
		t.Errorf("expiration window = %s, want default", cfg.AnnounceExpirationWindow)
	}
}
