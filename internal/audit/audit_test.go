package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dingauth/internal/platform/kafka"
)

type recordingProducer struct {
	mu       sync.Mutex
	messages []*kafka.Message
	err      error
}

func (p *recordingProducer) Produce(_ context.Context, msg *kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("sink down") }

func TestPublisherSync(t *testing.T) {
	store := NewInMemoryStore(10)
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	p := NewPublisher(store)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionLoginSucceeded, Username: "zhangsan"}))

	events := store.ListByUsername("zhangsan")
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestPublisherSyncPropagatesStoreError(t *testing.T) {
	p := NewPublisher(failingStore{})
	assert.Error(t, p.Emit(context.Background(), Event{Action: ActionLoginFailed}))
}

func TestPublisherAsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore(100)
	p := NewPublisher(store, WithAsyncBuffer(64))

	for range 20 {
		require.NoError(t, p.Emit(context.Background(), Event{Action: ActionLoginFailed, AppKey: "app"}))
	}
	p.Close()

	assert.Len(t, store.List(), 20)
}

func TestPublisherAsyncSwallowsStoreError(t *testing.T) {
	p := NewPublisher(failingStore{}, WithAsyncBuffer(4))
	assert.NoError(t, p.Emit(context.Background(), Event{Action: ActionLoginFailed}))
	p.Close()
}

func TestPublisherRejectsAfterClose(t *testing.T) {
	p := NewPublisher(NewInMemoryStore(10), WithAsyncBuffer(4))
	p.Close()
	p.Close()

	err := p.Emit(context.Background(), Event{Action: ActionLoginSucceeded})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestInMemoryStoreIsBounded(t *testing.T) {
	store := NewInMemoryStore(2)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(context.Background(), Event{Username: name}))
	}

	events := store.List()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Username)
	assert.Equal(t, "c", events[1].Username)

	store.Clear()
	assert.Empty(t, store.List())
}

func TestKafkaStore(t *testing.T) {
	producer := &recordingProducer{}
	store := NewKafkaStore(producer, "dingauth.audit.login")

	event := Event{
		Timestamp:    time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Action:       ActionLoginFailed,
		AppKey:       "dingoa-test-app",
		Flow:         "code",
		Kind:         "provider_rejected",
		UpstreamCode: 40078,
	}
	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "dingauth.audit.login", msg.Topic)
	assert.Equal(t, []byte("dingoa-test-app"), msg.Key)
	assert.Equal(t, "dingtalk_login_failed", msg.Headers["action"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaStorePropagatesProducerError(t *testing.T) {
	store := NewKafkaStore(&recordingProducer{err: errors.New("broker down")}, "topic")
	assert.ErrorContains(t, store.Append(context.Background(), Event{}), "broker down")
}
