// Package eventbus provides event-driven communication infrastructure for
// workflow orchestration.
package eventbus

import (
	"context"

	"github.com/formationhq/formation/pkg/events"
)

// Event is any payload with a declared event type.
type Event interface {
	GetType() events.EventType
}

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event any) error

// EventBus publishes and subscribes to workflow lifecycle events.
type EventBus interface {
	Publish(ctx context.Context, key string, event Event) error
	Subscribe(ctx context.Context) error
	Handle(eventType events.EventType, handler EventHandler) error
	GenerateID() string
	Close() error
}
