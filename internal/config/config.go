// Package config provides configuration structures and validation for the importer services.
// It handles environment-based configuration for the HTTP API, the import worker,
// their databases, the message broker, file storage and the currency rate table.
package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration and is validated during
// application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Currency    CurrencyConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig names the running service
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig selects the slog level
type LoggingConfig struct {
	Level string
}

// ServerConfig configures the API gateway HTTP listener
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration // Upper bound for draining in-flight requests
	ReadTimeout     time.Duration // Covers reading a whole CSV upload
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig covers the import job topic, its consumer group and the DLQ
type KafkaConfig struct {
	Brokers           string
	ImportJobTopic    string
	NumPartitions     int // Used when the topics are created at startup
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Receives undecodable jobs and jobs for unknown import requests
}

// BrokerList splits the comma separated KAFKA_BROKERS value
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PostgresConfig configures the pool holding import requests, transactions and the outbox
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32         // Connections kept open while idle
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Directory or file:// URL of the schema migrations
}

// MongoDBConfig configures the rejected row audit store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains the settings of the job claim store
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	ClaimTTL  time.Duration // Lease length of a job claim; renewed every third of it while running
	KeyPrefix string
}

// Storage backends
const (
	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

// StorageConfig contains uploaded file storage configuration
type StorageConfig struct {
	Backend       string // "local" or "gcs"
	LocalDir      string
	GCSBucket     string
	MaxUploadSize int64 // Bytes
}

// CurrencyConfig contains the static exchange rate table
type CurrencyConfig struct {
	BaseCurrency string
	Rates        map[string]decimal.Decimal // Multiplier into BaseCurrency per currency code
}

// OutboxConfig tunes the import job dispatch poller
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Publish attempts before a dispatch is marked FAILED_TO_PUBLISH
}

// WorkerPoolConfig bounds concurrent imports in the worker
type WorkerPoolConfig struct {
	Size int // Maximum number of imports running at once
}
