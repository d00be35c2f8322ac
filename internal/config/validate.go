package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// minClaimTTL leaves room for the claim renewals that run every third of the ttl
const minClaimTTL = 3 * time.Second

// problems collects every invalid setting so a single startup error names all of them
type problems []string

func (p *problems) required(name, value string) {
	if value == "" {
		*p = append(*p, name+" is required")
	}
}

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func positive[T int | int32 | int64 | uint64 | time.Duration](p *problems, name string, value T) {
	if value <= 0 {
		*p = append(*p, name+" must be greater than 0")
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New(strings.Join(p, ", "))
}

// validate checks the loaded configuration. Sections that only one binary uses
// are still checked so both binaries share a single config contract.
func (c *Config) validate() error {
	var p problems

	positive(&p, "SERVER_PORT", c.Server.Port)
	positive(&p, "SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	positive(&p, "SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	positive(&p, "SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	positive(&p, "SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)

	p.required("KAFKA_BROKERS", c.Kafka.Brokers)
	p.required("KAFKA_IMPORT_JOB_TOPIC", c.Kafka.ImportJobTopic)
	p.required("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	p.required("KAFKA_DLQ_TOPIC", c.Kafka.DLQTopic)
	positive(&p, "KAFKA_CONSUMER_MIN_BYTES", c.Kafka.MinBytes)
	positive(&p, "KAFKA_CONSUMER_MAX_BYTES", c.Kafka.MaxBytes)
	positive(&p, "KAFKA_CONSUMER_MAX_WAIT", c.Kafka.MaxWait)
	if c.Kafka.MinBytes > c.Kafka.MaxBytes {
		p.add("KAFKA_CONSUMER_MIN_BYTES must not exceed KAFKA_CONSUMER_MAX_BYTES")
	}
	if c.Kafka.ImportJobTopic != "" && c.Kafka.ImportJobTopic == c.Kafka.DLQTopic {
		p.add("KAFKA_DLQ_TOPIC must differ from KAFKA_IMPORT_JOB_TOPIC")
	}

	p.required("POSTGRES_URL", c.Postgres.URL)
	positive(&p, "POSTGRES_MAX_CONNS", c.Postgres.MaxConns)
	positive(&p, "POSTGRES_MIN_CONNS", c.Postgres.MinConns)
	positive(&p, "POSTGRES_MAX_CONN_LIFETIME", c.Postgres.ConnMaxLifetime)
	positive(&p, "POSTGRES_MAX_CONN_IDLE_TIME", c.Postgres.ConnMaxIdleTime)
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		p.add("POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}

	p.required("MONGO_URI", c.MongoDB.URI)
	p.required("MONGO_DATABASE", c.MongoDB.Database)
	positive(&p, "MONGO_TIMEOUT", c.MongoDB.Timeout)
	positive(&p, "MONGO_MAX_POOL_SIZE", c.MongoDB.MaxPoolSize)
	positive(&p, "MONGO_MIN_POOL_SIZE", c.MongoDB.MinPoolSize)
	positive(&p, "MONGO_MAX_CONN_IDLE_TIME", c.MongoDB.MaxConnIdleTime)

	p.required("REDIS_ADDR", c.Redis.Addr)
	if c.Redis.ClaimTTL < minClaimTTL {
		p.add("REDIS_CLAIM_TTL must be at least %s", minClaimTTL)
	}

	switch c.Storage.Backend {
	case StorageBackendLocal:
		if c.Storage.LocalDir == "" {
			p.add("STORAGE_LOCAL_DIR is required for the local backend")
		}
	case StorageBackendGCS:
		if c.Storage.GCSBucket == "" {
			p.add("STORAGE_GCS_BUCKET is required for the gcs backend")
		}
	default:
		p.add("STORAGE_BACKEND must be one of: local, gcs")
	}
	positive(&p, "STORAGE_MAX_UPLOAD_SIZE", c.Storage.MaxUploadSize)

	if len(c.Currency.BaseCurrency) != 3 {
		p.add("CURRENCY_BASE must be a 3-letter code")
	}
	for code, rate := range c.Currency.Rates {
		if !rate.IsPositive() {
			p.add("CURRENCY_RATES rate for %s must be greater than 0", code)
		}
	}

	positive(&p, "OUTBOX_POLLING_INTERVAL", c.Outbox.PollingInterval)
	positive(&p, "OUTBOX_BATCH_SIZE", c.Outbox.BatchSize)
	positive(&p, "OUTBOX_MAX_RETRY_ATTEMPTS", c.Outbox.MaxRetryAttempts)

	positive(&p, "WORKER_POOL_SIZE", c.WorkerPool.Size)

	return p.err()
}
