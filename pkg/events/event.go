package events

import (
	"context"
	"time"
)

const (
	TypeTokenSet       = "SESSION_TOKEN_SET"
	TypeTokenCleared   = "SESSION_TOKEN_CLEARED"
	TypeUnauthorized   = "SESSION_UNAUTHORIZED"
	TypeWorkflowStep   = "WORKFLOW_STEP_CHANGED"
	TypeWorkflowReset  = "WORKFLOW_RESET"
	TypeWorkflowFinish = "WORKFLOW_FINISHED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_TOKEN_SET").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is implemented by every sink an event can be sent to.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Fanout publishes to every sink, returning the first error after trying all of them.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var first error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
