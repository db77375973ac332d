package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func TestAlertEventProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	topic := "test-alerts"
	ctx := context.Background()

	type event struct {
		AlertID   uuid.UUID `json:"alert_id"`
		RiskScore float64   `json:"risk_score"`
	}

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AlertEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		key := "test-key"
		value := &event{AlertID: uuid.New(), RiskScore: 0.85}
		expectedJSONValue, _ := json.Marshal(value)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			return string(msg.Key) == key && string(msg.Value) == string(expectedJSONValue)
		})).Return(nil).Once()

		err := producer.Publish(ctx, key, value)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AlertEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		writerErr := errors.New("broker unavailable")
		mockWriter.On("WriteMessages", ctx, mock.Anything).Return(writerErr).Once()

		err := producer.Publish(ctx, "key", &event{})
		require.Error(t, err)
		assert.ErrorIs(t, err, writerErr)
		assert.Contains(t, err.Error(), topic)
		mockWriter.AssertExpectations(t)
	})

	t.Run("UnmarshalableValueFails", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AlertEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		err := producer.Publish(ctx, "key", make(chan int))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "marshal")
		mockWriter.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})
}

func TestAlertEventProducer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Success", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AlertEventProducer{logger: logger, writer: mockWriter, topic: "test-alerts"}

		mockWriter.On("Close").Return(nil).Once()
		assert.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &AlertEventProducer{logger: logger, writer: mockWriter, topic: "test-alerts"}

		closeErr := errors.New("close failed")
		mockWriter.On("Close").Return(closeErr).Once()

		err := producer.Close()
		require.Error(t, err)
		assert.ErrorIs(t, err, closeErr)
	})
}
