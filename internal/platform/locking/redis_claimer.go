// Package locking guards import jobs against concurrent duplicate runs.
package locking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Both scripts only touch the key while it still holds this worker's owner value
const (
	releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`
	renewScript   = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("PEXPIRE", KEYS[1], ARGV[2]) end return 0`
)

// Commands is the subset of the redis client used by RedisClaimer
type Commands interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisClaimer reserves import job ids with SETNX so a redelivered Kafka
// message does not start a second run of the same job.
//
// A claim is a lease: it expires after ttl unless KeepAlive renews it, so a
// worker that dies mid-import frees the job for redelivery.
type RedisClaimer struct {
	client Commands
	prefix string
	ttl    time.Duration
	owner  string
	logger *slog.Logger
}

// NewRedisClaimer creates a claimer. owner is stored as the key value and
// identifies the worker holding a claim.
func NewRedisClaimer(logger *slog.Logger, client Commands, prefix string, ttl time.Duration, owner string) *RedisClaimer {
	return &RedisClaimer{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		owner:  owner,
		logger: logger,
	}
}

func (c *RedisClaimer) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

// Claim returns true when the caller now owns the job id, and false when
// another delivery already claimed it
func (c *RedisClaimer) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.key(id), c.owner, c.ttl).Result()
	if err != nil {
		c.logger.Error("Redis claim error", "import_request_id", id.String(), "error", err)
		return false, fmt.Errorf("failed to claim import job %s: %w", id, err)
	}
	if !ok {
		c.logger.Debug("Import job already claimed", "import_request_id", id.String())
	}
	return ok, nil
}

// Release drops this worker's claim so the job can be retried. A claim that
// expired or belongs to another worker is left alone.
func (c *RedisClaimer) Release(ctx context.Context, id uuid.UUID) error {
	n, err := c.client.Eval(ctx, releaseScript, []string{c.key(id)}, c.owner).Int64()
	if err != nil {
		c.logger.Error("Redis release error", "import_request_id", id.String(), "error", err)
		return fmt.Errorf("failed to release import job %s: %w", id, err)
	}
	if n == 0 {
		c.logger.Warn("Import job claim was no longer held on release", "import_request_id", id.String())
	}
	return nil
}

// Renew extends this worker's claim by ttl. It reports false when the claim was lost.
func (c *RedisClaimer) Renew(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := c.client.Eval(ctx, renewScript, []string{c.key(id)}, c.owner, c.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to renew import job claim %s: %w", id, err)
	}
	return n == 1, nil
}

// KeepAlive renews the claim every third of its ttl until the returned stop
// function is called. stop waits for the renewal goroutine to exit.
func (c *RedisClaimer) KeepAlive(ctx context.Context, id uuid.UUID) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(max(c.ttl/3, time.Millisecond))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				held, err := c.Renew(ctx, id)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					c.logger.Warn("Failed to renew import job claim", "import_request_id", id.String(), "error", err)
					continue
				}
				if !held {
					c.logger.Warn("Import job claim lost while running", "import_request_id", id.String())
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}
