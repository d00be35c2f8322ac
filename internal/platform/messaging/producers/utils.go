package producers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	topicLookupAttempts = 5
	topicLookupDelay    = 2 * time.Second
)

// ensureTopic creates topicName when no partitions can be read for it.
// Partition reads are retried since a freshly started broker may not answer yet.
func ensureTopic(admin topicAdmin, topicName string, numPartitions, replicationFactor int, retryDelay time.Duration, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	log.Info("Checking if Kafka topic exists", "topic", topicName)
	for attempt := 1; attempt <= topicLookupAttempts; attempt++ {
		partitions, err = admin.ReadPartitions(topicName)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions, retrying", "topic", topicName, "attempt", attempt, "error", err)
		if attempt < topicLookupAttempts {
			time.Sleep(retryDelay)
		}
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}

	log.Info("Creating Kafka topic",
		"topic", topicName,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor,
		"last_read_error", err,
	)
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}

	log.Info("Successfully created Kafka topic", "topic", topicName)
	return nil
}

// dialAndEnsureTopic opens a connection to the first reachable broker just long enough to provision topicName
func dialAndEnsureTopic(brokers []string, topicName string, numPartitions, replicationFactor int, log *slog.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	var conn *kafka.Conn
	var err error
	for _, broker := range brokers {
		conn, err = kafka.Dial("tcp", broker)
		if err == nil {
			break
		}
		log.Warn("Failed to dial kafka broker", "broker", broker, "error", err)
	}
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return ensureTopic(conn, topicName, numPartitions, replicationFactor, topicLookupDelay, log)
}
