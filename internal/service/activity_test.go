package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingForwarder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *recordingForwarder) Publish(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *recordingForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	return pubSub
}

func TestActivityFlowsToForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newPubSub(t)
	forwarder := &recordingForwarder{}
	consumer := NewActivityConsumer(pubSub, "activity", forwarder, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewActivityPublisher(pubSub, "activity", logger.NewNopLogger())
	publisher.Publish(ctx, events.New(events.NoteCreated, map[string]interface{}{"note_id": "n-1"}))
	publisher.Publish(ctx, events.New(events.NoteDeleted, map[string]interface{}{"note_id": "n-1"}))

	require.Eventually(t, func() bool { return forwarder.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	forwarder.mu.Lock()
	defer forwarder.mu.Unlock()
	assert.Equal(t, events.NoteCreated, forwarder.events[0].EventType())
	assert.Equal(t, "n-1", forwarder.events[0].Payload()["note_id"])
	assert.Equal(t, events.NoteDeleted, forwarder.events[1].EventType())
}

func TestActivityConsumerSurvivesBadInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newPubSub(t)
	forwarder := &recordingForwarder{err: errors.New("nats unavailable")}
	require.NoError(t, NewActivityConsumer(pubSub, "activity", forwarder, logger.NewNopLogger()).Consume(ctx))

	require.NoError(t, pubSub.Publish("activity", message.NewMessage(watermill.NewUUID(), []byte("garbage"))))
	NewActivityPublisher(pubSub, "activity", logger.NewNopLogger()).Publish(ctx, events.New(events.UserLogin, nil))
	NewActivityPublisher(pubSub, "activity", logger.NewNopLogger()).Publish(ctx, events.New(events.UserLogin, nil))

	// The undecodable message is dropped; failed forwards do not stall the topic.
	require.Eventually(t, func() bool { return forwarder.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestActivityConsumerWithoutForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := newPubSub(t)
	require.NoError(t, NewActivityConsumer(pubSub, "activity", nil, logger.NewNopLogger()).Consume(ctx))

	assert.NotPanics(t, func() {
		NewActivityPublisher(pubSub, "activity", logger.NewNopLogger()).Publish(ctx, events.New(events.UserLogin, nil))
	})
}
