package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaProducerWithWriter(w, zap.NewNop())

	user := &models.User{ID: uuid.New(), Name: "Frodo Baggins", Bio: "ring bearer"}
	event := NewUserEvent(MsgUserCreated, user.ID.String(), user)
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, user.ID.String(), string(msg.Key))
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, "user.created", string(msg.Headers[0].Value))

	var decoded UserEventMessage
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, MsgUserCreated, decoded.Type)
	assert.Equal(t, "usersapi", decoded.Source)
	require.NotNil(t, decoded.User)
	assert.Equal(t, "Frodo Baggins", decoded.User.Name)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducerDeleteEventOmitsUser(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaProducerWithWriter(w, zap.NewNop())

	id := uuid.NewString()
	require.NoError(t, p.Publish(context.Background(), NewUserEvent(MsgUserDeleted, id, nil)))

	require.Len(t, w.messages, 1)
	assert.NotContains(t, string(w.messages[0].Value), `"user":`)
	assert.Contains(t, string(w.messages[0].Value), id)
}

func TestKafkaProducerWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaProducerWithWriter(w, zap.NewNop())

	err := p.Publish(context.Background(), NewUserEvent(MsgUserUpdated, "x", nil))
	assert.ErrorContains(t, err, "broker down")
}

func TestNewKafkaProducerConfig(t *testing.T) {
	_, err := NewKafkaProducer(&KafkaConfig{Topic: "users.events"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewKafkaProducer(&KafkaConfig{Brokers: []string{"localhost:9092"}}, zap.NewNop())
	assert.Error(t, err)

	p, err := NewKafkaProducer(nil, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
