package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"carematch/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("appt-1").
		WithValue(map[string]string{"status": "pending"}).
		WithEventType("appointment.created").
		Build()
	require.NoError(t, err)
	return msg
}

func TestMessageBuilder(t *testing.T) {
	msg := buildMessage(t)

	assert.Equal(t, "appt-1", msg.Key)
	assert.JSONEq(t, `{"status":"pending"}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	assert.Equal(t, "appointment.created", msg.GetEventType())

	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err, "unencodable values are reported by Build")
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "appointments.lifecycle"}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "appt-1", string(w.msgs[0].Key))
	assert.Equal(t, "appointment.created", header(w.msgs[0], HeaderEventType))
	assert.Equal(t, "appointments.lifecycle", seenTopic)
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "t"}

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	cause := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := &Producer{writer: &fakeWriter{err: cause}, dlqWriter: dlq, topic: "appointments.lifecycle"}

	err := p.Publish(context.Background(), buildMessage(t))
	assert.ErrorIs(t, err, cause)

	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "appointments.lifecycle", header(dlq.msgs[0], HeaderOriginalTopic))
	assert.Equal(t, cause.Error(), header(dlq.msgs[0], HeaderDLQError))
}

func TestConsumer_RetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	c := &Consumer{
		topic:      "t",
		maxRetries: 3,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			if attempts < 3 {
				return NewTransientError("mongo down", errors.New("connection refused"))
			}
			return nil
		},
	}

	require.NoError(t, c.processMessage(context.Background(), buildMessage(t)))
	assert.Equal(t, 3, attempts)
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	attempts := 0
	c := &Consumer{
		topic:      "t",
		groupID:    "g",
		maxRetries: 3,
		dlqWriter:  dlq,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			return NewPermanentError("bad payload", errors.New("unexpected end of JSON input"))
		},
	}

	err := c.processMessage(context.Background(), buildMessage(t))
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "g", header(dlq.msgs[0], "dlq-consumer-group"))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: Connection Refused")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(context.DeadlineExceeded))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("invalid character 'x'")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(NewPermanentError("x", errors.New("timeout"))))

	assert.False(t, ShouldRetry(errors.New("timeout"), 3, 3))
	assert.True(t, ShouldRetry(errors.New("timeout"), 0, 3))
}
