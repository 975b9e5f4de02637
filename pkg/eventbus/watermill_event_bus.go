package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/operion-canvas/pkg/events"
	"github.com/dukex/operion-canvas/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// WatermillEventBus publishes history events on a single watermill topic.
// The event type travels in the message metadata together with the trace
// context of the publishing request.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	logger        *slog.Logger
	mu            sync.RWMutex
	subscriptions map[events.EventType]EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) EventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		logger:        log.WithModule("eventbus"),
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Metadata))

	return eb.publisher.Publish(events.Topic, msg)
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eb.dispatch(ctx, msg)
		}
	}()

	return nil
}

// dispatch decodes a message and hands it to its handler. Messages without a
// handler are acked; undecodable messages and handler failures are nacked.
func (eb *WatermillEventBus) dispatch(ctx context.Context, msg *message.Message) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

	eb.mu.RLock()
	handler, exists := eb.subscriptions[eventType]
	eb.mu.RUnlock()

	if !exists {
		msg.Ack()

		return
	}

	if !slices.Contains(HistoryTypes, eventType) {
		eb.logger.WarnContext(ctx, "unknown event type", "event_type", eventType, "message_id", msg.UUID)
		msg.Nack()

		return
	}

	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
	event := &events.HistoryChanged{}

	if err := json.Unmarshal(msg.Payload, event); err != nil {
		eb.logger.ErrorContext(ctx, "failed to decode event", "event_type", eventType, "error", err)
		msg.Nack()

		return
	}

	if err := handler(ctx, event); err != nil {
		eb.logger.ErrorContext(ctx, "event handler failed", "event_type", eventType, "canvas_id", event.CanvasID, "error", err)
		msg.Nack()

		return
	}

	msg.Ack()
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscriptions[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
