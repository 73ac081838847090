// Package events publishes resource lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is the payload published for every change to a resource.
type Event struct {
	Resource   string    `json:"resource"`
	Action     Action    `json:"action"`
	ID         string    `json:"id"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// MessagePublisher is satisfied by *mqtt.Client.
type MessagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher writes events as JSON to <prefix>/<resource>/<action>.
type MQTTPublisher struct {
	client MessagePublisher
	prefix string
	qos    byte
	log    *zap.Logger
}

func NewMQTTPublisher(client MessagePublisher, prefix string, log *zap.Logger) *MQTTPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQTTPublisher{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		qos:    1,
		log:    log,
	}
}

func (p *MQTTPublisher) Topic(resource string, action Action) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, resource, action)
}

func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Resource, err)
	}

	topic := p.Topic(event.Resource, event.Action)
	if err := p.client.Publish(topic, p.qos, false, payload); err != nil {
		return err
	}

	p.log.Debug("Event published",
		zap.String("topic", topic),
		zap.String("id", event.ID),
	)
	return nil
}
