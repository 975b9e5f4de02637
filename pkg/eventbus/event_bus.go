// Package eventbus delivers editor notifications to rendering collaborators.
package eventbus

import (
	"context"
	"fmt"

	"github.com/dukex/operion-canvas/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

// HistoryTypes lists every event type carrying a HistoryChanged payload.
var HistoryTypes = []events.EventType{
	events.HistoryCommittedEvent,
	events.HistoryUndoneEvent,
	events.HistoryRedoneEvent,
	events.HistoryClearedEvent,
	events.PreviewChangedEvent,
}

// HandleHistory registers fn for the given history event types, or for all of
// them when none are given.
func HandleHistory(sub EventSubscriber, fn func(ctx context.Context, change *events.HistoryChanged) error, eventTypes ...events.EventType) error {
	if len(eventTypes) == 0 {
		eventTypes = HistoryTypes
	}

	handler := func(ctx context.Context, event any) error {
		change, ok := event.(*events.HistoryChanged)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		return fn(ctx, change)
	}

	for _, eventType := range eventTypes {
		if err := sub.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return nil
}
