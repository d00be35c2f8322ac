package producers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/transaction-importer/internal/config"
	"github.com/transaction-importer/internal/domain/shared"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestImportJobProducer_Publish(t *testing.T) {
	ctx := context.Background()
	topic := "import_jobs"

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &ImportJobProducer{logger: newTestLogger(), writer: mockWriter, topic: topic}

		job := &shared.ImportJobMessage{ImportRequestID: uuid.New(), CorrelationID: "corr-1", RequestedAt: time.Now().UTC()}
		expected, err := json.Marshal(job)
		require.NoError(t, err)
		key := job.ImportRequestID.String()

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 &&
				string(msgs[0].Key) == key &&
				string(msgs[0].Value) == string(expected) &&
				len(msgs[0].Headers) == 1
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, key, job))
		mockWriter.AssertExpectations(t)
	})

	t.Run("RawPayloadIsWrittenAsIs", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &ImportJobProducer{logger: newTestLogger(), writer: mockWriter, topic: topic}
		payload := json.RawMessage(`{"import_request_id":"6f1c1f0e-4b3a-4a52-9c43-2f5e1d0c9a10"}`)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 && string(msgs[0].Value) == string(payload)
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, "k", payload))
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &ImportJobProducer{logger: newTestLogger(), writer: mockWriter, topic: topic}
		writerError := errors.New("kafka write error")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, "k", map[string]string{"a": "b"})
		assert.ErrorIs(t, err, writerError)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnMarshalFailure", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &ImportJobProducer{logger: newTestLogger(), writer: mockWriter, topic: topic}

		err := producer.Publish(ctx, "k", make(chan int))
		assert.ErrorContains(t, err, "failed to marshal import job message")
		mockWriter.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})
}

func TestImportJobProducer_Close(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	producer := &ImportJobProducer{logger: newTestLogger(), writer: mockWriter, topic: "import_jobs"}
	closeErr := errors.New("close failed")

	mockWriter.On("Close").Return(closeErr).Once()

	assert.ErrorIs(t, producer.Close(), closeErr)
	mockWriter.AssertExpectations(t)
}

func TestNewImportJobProducer_RequiresTopic(t *testing.T) {
	producer, err := NewImportJobProducer(context.Background(), newTestLogger(), &config.KafkaConfig{Brokers: "localhost:9092"})
	assert.Nil(t, producer)
	assert.ErrorContains(t, err, "import job topic is not configured")
}
