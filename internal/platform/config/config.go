package config

import (
	"os"
	"strings"
	"time"

	pkgstrings "trustledger/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	AdminToken    string
	OwnerAddress  string
	JWTSigningKey string
}

// Postgres captures the relational store configuration. An empty DSN selects
// the in-memory store.
type Postgres struct {
	DSN string
}

// Redis captures the revocation mirror configuration. An empty URL disables
// the mirror.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the event stream configuration. No brokers means events are
// dropped.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is everything main needs to wire the ledger.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("TRUSTLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	adminToken := os.Getenv("TRUSTLEDGER_ADMIN_TOKEN")
	if adminToken == "" {
		// Use a default for development - should be overridden in production
		adminToken = "dev-admin-token-change-in-production"
	}

	jwtSigningKey := os.Getenv("TRUSTLEDGER_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("TRUSTLEDGER_KAFKA_TOPIC")
	if topic == "" {
		topic = "trustledger.events"
	}

	var brokers []string
	if raw := os.Getenv("TRUSTLEDGER_KAFKA_BROKERS"); raw != "" {
		brokers = pkgstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Config{
		Server: Server{
			Addr:          addr,
			AdminToken:    adminToken,
			OwnerAddress:  os.Getenv("TRUSTLEDGER_OWNER_ADDRESS"),
			JWTSigningKey: jwtSigningKey,
		},
		Postgres: Postgres{
			DSN: os.Getenv("TRUSTLEDGER_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("TRUSTLEDGER_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
