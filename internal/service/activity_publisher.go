package service

import (
	"context"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IActivityPublisher records what users did. Publishing is best effort: a
// failure is logged and never reaches the caller.
type IActivityPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type activityPublisher struct {
	publisher message.Publisher
	topic     string
	logger    logger.ILogger
}

func NewActivityPublisher(publisher message.Publisher, topic string, log logger.ILogger) IActivityPublisher {
	return &activityPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    log,
	}
}

func (p *activityPublisher) Publish(ctx context.Context, event events.Event) {
	payload, err := events.Marshal(event)
	if err != nil {
		p.logger.Warn("activity_publisher", "failed to encode event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err,
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Warn("activity_publisher", "failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"topic":      p.topic,
			"error":      err,
		})
	}
}

type noopActivityPublisher struct{}

func NewNoopActivityPublisher() IActivityPublisher {
	return noopActivityPublisher{}
}

func (noopActivityPublisher) Publish(context.Context, events.Event) {}
