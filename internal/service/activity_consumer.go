package service

import (
	"context"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder ships events off-process; the NATS publisher implements it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type activityConsumer struct {
	subscriber message.Subscriber
	topic      string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewActivityConsumer logs every activity event and forwards it when
// forwarder is non-nil.
func NewActivityConsumer(subscriber message.Subscriber, topic string, forwarder EventForwarder, log logger.ILogger) IConsumerService {
	return &activityConsumer{
		subscriber: subscriber,
		topic:      topic,
		forwarder:  forwarder,
		logger:     log,
	}
}

// Consume subscribes and processes messages in the background until ctx is done.
func (c *activityConsumer) Consume(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (c *activityConsumer) processMessage(ctx context.Context, msg *message.Message) {
	// Activity events are never redelivered.
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		c.logger.Warn("activity_consumer", "dropping undecodable message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}

	c.logger.Info("activity_consumer", event.EventType(), map[string]interface{}{
		"payload":     event.Payload(),
		"occurred_at": event.Timestamp(),
	})

	if c.forwarder == nil {
		return
	}
	if err := c.forwarder.Publish(ctx, event); err != nil {
		c.logger.Error("activity_consumer", "failed to forward event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err,
		})
	}
}
