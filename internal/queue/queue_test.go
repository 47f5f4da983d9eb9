package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: "class_cancelled", Body: []byte(`{"slotId":"s1"}`)}))
	require.NoError(t, q.Publish(ctx, Message{Type: "other", Body: []byte("x")}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	first := <-msgs
	assert.Equal(t, "class_cancelled", first.Type)
	assert.Equal(t, `{"slotId":"s1"}`, string(first.Body))
	second := <-msgs
	assert.Equal(t, "other", second.Type)
}

func TestInMemoryPublishRespectsContext(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Publish(ctx, Message{Type: "a"}))

	// Buffer is full; a cancelled context must unblock the publisher.
	cancel()
	err := q.Publish(ctx, Message{Type: "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryConsumeStopsOnCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-msgs:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("consume channel did not close after cancel")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{name: "typed", msg: Message{Type: "class_cancelled", Body: []byte(`{"date":"2025-06-10"}`)}},
		{name: "body with pipes", msg: Message{Type: "t", Body: []byte("a|b|c")}},
		{name: "empty body", msg: Message{Type: "ping", Body: []byte("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deserialize(serialize(tt.msg))
			assert.Equal(t, tt.msg.Type, got.Type)
			assert.Equal(t, string(tt.msg.Body), string(got.Body))
		})
	}
}

func TestDeserializeWithoutSeparator(t *testing.T) {
	got := deserialize("raw-payload")
	assert.Empty(t, got.Type)
	assert.Equal(t, "raw-payload", string(got.Body))
}
