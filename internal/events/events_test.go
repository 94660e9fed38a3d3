package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pizza-maniac/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	return m.Called().Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	order := &model.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Items:       []model.OrderItem{},
		TotalAmount: decimal.RequireFromString("12.50"),
		Status:      model.OrderStatusNew,
	}

	producer := new(MockProducer)
	var written []kafka.Message
	producer.On("WriteMessages", ctx, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message) }).
		Return(nil)

	p := NewKafkaPublisher(producer, "order.events", zerolog.Nop())
	require.NoError(t, p.Publish(ctx, TypeOrderPlaced, order))

	require.Len(t, written, 1)
	msg := written[0]
	assert.Equal(t, "order.events", msg.Topic)
	assert.Equal(t, order.ID.String(), string(msg.Key))
	require.NotEmpty(t, msg.Headers)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderPlaced, string(msg.Headers[0].Value))

	var event struct {
		Type  string `json:"type"`
		Order struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, TypeOrderPlaced, event.Type)
	assert.Equal(t, order.ID, event.Order.ID)
	assert.Equal(t, "NEW", event.Order.Status)

	producer.AssertExpectations(t)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	ctx := context.Background()
	producer := new(MockProducer)
	producer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker down"))

	p := NewKafkaPublisher(producer, "order.events", zerolog.Nop())
	err := p.Publish(ctx, TypeOrderStatusUpdated, &model.Order{ID: uuid.New()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestKafkaPublisher_Close(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Close").Return(nil)

	p := NewKafkaPublisher(producer, "order.events", zerolog.Nop())
	assert.NoError(t, p.Close())
	producer.AssertExpectations(t)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TypeOrderPlaced, &model.Order{}))
	assert.NoError(t, p.Close())
}
