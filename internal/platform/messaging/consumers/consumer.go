package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/transaction-importer/internal/config"
)

const (
	defaultRetryBackoff = time.Second
	maxHandlerAttempts  = 7
	fetchErrorBackoff   = time.Second
	commitTimeout       = 10 * time.Second
)

// MessageHandler processes one message. A returned error is treated as
// transient and the message is retried before the consumer gives up on it.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageReader wraps kafka.Reader methods for testing
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher receives messages the handler kept failing on
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, original kafka.Message, reason string) error
}

// KafkaConsumer implements Consumer using Kafka.
//
// Up to concurrency messages are handled at once. Offsets are committed per
// partition in fetch order, so a message still running or failed holds back
// the commit of every later message of its partition.
type KafkaConsumer struct {
	reader       MessageReader
	logger       *slog.Logger
	topic        string
	groupID      string
	retryBackoff time.Duration
	concurrency  int
	deadLetters  DeadLetterPublisher
	done         chan struct{}

	commitMu sync.Mutex
	offsets  *offsetTracker
}

// Option customizes a KafkaConsumer
type Option func(*KafkaConsumer)

// WithConcurrency sets how many messages may be in flight at once
func WithConcurrency(n int) Option {
	return func(c *KafkaConsumer) {
		c.concurrency = max(n, 1)
	}
}

// WithDeadLetters parks messages on p once every attempt failed. Without it
// the consumer stops instead of committing past the failed message.
func WithDeadLetters(p DeadLetterPublisher) Option {
	return func(c *KafkaConsumer) {
		c.deadLetters = p
	}
}

// NewKafkaConsumer creates a group consumer for the import job topic
func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, opts ...Option) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.BrokerList(),
		Topic:       cfg.ImportJobTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
	return NewReaderConsumer(logger, reader, cfg.ImportJobTopic, cfg.ConsumerGroup, opts...)
}

// NewReaderConsumer runs the consume loop over any MessageReader
func NewReaderConsumer(logger *slog.Logger, reader MessageReader, topic, groupID string, opts ...Option) *KafkaConsumer {
	c := &KafkaConsumer{
		reader:       reader,
		logger:       logger,
		topic:        topic,
		groupID:      groupID,
		retryBackoff: defaultRetryBackoff,
		concurrency:  1,
		done:         make(chan struct{}),
		offsets:      newOffsetTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe starts consuming in the background until ctx is canceled.
// Done is closed once the loop and every message it started have finished.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic",
		"topic", c.topic,
		"group_id", c.groupID,
		"concurrency", c.concurrency,
	)

	go func() {
		defer close(c.done)
		c.run(ctx, handler)
	}()

	return nil
}

// Done is closed when the consume loop started by Subscribe returns
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	slots := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case slots <- struct{}{}:
		case <-loopCtx.Done():
			c.logger.Info("Stopping consumer", "topic", c.topic, "group_id", c.groupID)
			return
		}
		if loopCtx.Err() != nil {
			c.logger.Info("Stopping consumer", "topic", c.topic, "group_id", c.groupID)
			return
		}

		msg, err := c.reader.FetchMessage(loopCtx)
		if err != nil {
			<-slots
			if loopCtx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}
			c.logger.Error("Failed to fetch message from Kafka",
				"topic", c.topic,
				"group_id", c.groupID,
				"error", err,
			)
			if !sleepCtx(loopCtx, fetchErrorBackoff) {
				return
			}
			continue
		}

		c.logger.Debug("Received message from Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		entry := c.offsets.add(msg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()

			if !c.process(ctx, handler, msg) {
				stop()
				return
			}
			c.commit(ctx, entry)
		}()
	}
}

// process handles msg and, when every attempt failed, parks it on the DLQ.
// It reports whether the offset of msg may be committed.
func (c *KafkaConsumer) process(ctx context.Context, handler MessageHandler, msg kafka.Message) bool {
	err := c.handle(ctx, handler, msg)
	if err == nil {
		return true
	}
	if ctx.Err() != nil {
		// Shutting down. The next owner of the partition redelivers msg.
		return false
	}

	if c.deadLetters == nil {
		c.logger.Error("Giving up on message with no DLQ configured, stopping consumer",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)
		return false
	}

	reason := fmt.Sprintf("handler failed after %d attempts: %v", maxHandlerAttempts, err)
	if dlqErr := c.deadLetters.PublishToDLQ(ctx, msg, reason); dlqErr != nil {
		c.logger.Error("Failed to park message on DLQ, stopping consumer",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"dlq_error", dlqErr,
			"error", err,
		)
		return false
	}

	c.logger.Warn("Parked message on DLQ after repeated failures",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
		"error", err,
	)
	return true
}

// handle runs handler with retries and returns the last error, or nil once it succeeded
func (c *KafkaConsumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) error {
	backoff := c.retryBackoff
	var err error
	for attempt := 1; attempt <= maxHandlerAttempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}

		c.logger.Error("Failed to process message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"attempt", attempt,
			"error", err,
		)
		if attempt == maxHandlerAttempts || !sleepCtx(ctx, backoff) {
			break
		}
		backoff *= 2
	}
	return err
}

// commit marks entry finished and commits the longest finished prefix of its partition.
// Commits are serialized so a partition's committed offset never moves backwards.
func (c *KafkaConsumer) commit(ctx context.Context, entry *inflight) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	msg, ok := c.offsets.complete(entry)
	if !ok {
		return
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
		c.logger.Error("Failed to commit message after successful processing",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"error", err,
		)
		return
	}
	c.logger.Debug("Message committed successfully",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
