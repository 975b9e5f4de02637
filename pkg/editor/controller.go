package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/operion-canvas/pkg/eventbus"
	"github.com/dukex/operion-canvas/pkg/events"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Trigger is a user action that steps through history.
type Trigger string

const (
	TriggerUndo Trigger = "undo"
	TriggerRedo Trigger = "redo"
)

// Renderer is called synchronously after every change to the graph. It
// receives the change summary and re-derives its view from the canvas state.
type Renderer func(ctx context.Context, change events.HistoryChanged)

// Outcome reports what an undo or redo did.
type Outcome struct {
	Trigger   Trigger `json:"trigger"`
	Label     string  `json:"label,omitempty"`
	Noop      bool    `json:"noop"`
	UndoDepth int     `json:"undo_depth"`
	RedoDepth int     `json:"redo_depth"`
}

// Controller maps user triggers to undo and redo, and tells the rendering
// side about every change.
type Controller struct {
	canvasID  string
	store     *graph.Store
	stack     *history.Stack
	recorder  *history.Recorder
	renderer  Renderer
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Undo reverts the most recent entry. With nothing to undo it reports a
// no-op outcome and no error. It is refused while a gesture is recording.
func (c *Controller) Undo(ctx context.Context) (Outcome, error) {
	return c.step(ctx, TriggerUndo)
}

// Redo re-applies the most recently undone entry. With nothing to redo it
// reports a no-op outcome and no error. It is refused while a gesture is
// recording.
func (c *Controller) Redo(ctx context.Context) (Outcome, error) {
	return c.step(ctx, TriggerRedo)
}

// Dispatch runs the trigger.
func (c *Controller) Dispatch(ctx context.Context, trigger Trigger) (Outcome, error) {
	switch trigger {
	case TriggerUndo, TriggerRedo:
		return c.step(ctx, trigger)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownTrigger, trigger)
	}
}

// Shortcut runs the trigger bound to a key combination such as "ctrl+z",
// "meta+shift+z" or "ctrl+y". Modifier order and case do not matter.
func (c *Controller) Shortcut(ctx context.Context, keys string) (Outcome, error) {
	trigger, ok := ParseShortcut(keys)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownShortcut, keys)
	}

	return c.step(ctx, trigger)
}

// ParseShortcut resolves a key combination to its trigger.
func ParseShortcut(keys string) (Trigger, bool) {
	var ctrl, meta, shift, other bool

	key := ""

	for _, part := range strings.Split(strings.ToLower(strings.TrimSpace(keys)), "+") {
		switch part = strings.TrimSpace(part); part {
		case "ctrl", "control":
			ctrl = true
		case "meta", "cmd", "command":
			meta = true
		case "shift":
			shift = true
		case "alt", "option":
			other = true
		default:
			if key != "" {
				return "", false
			}

			key = part
		}
	}

	if other || ctrl == meta {
		return "", false
	}

	switch {
	case key == "z" && !shift:
		return TriggerUndo, true
	case key == "z" && shift:
		return TriggerRedo, true
	case key == "y" && ctrl && !shift:
		return TriggerRedo, true
	}

	return "", false
}

func (c *Controller) step(ctx context.Context, trigger Trigger) (Outcome, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "canvas.history."+string(trigger),
		attribute.String(otelhelper.CanvasIDKey, c.canvasID),
		attribute.String(otelhelper.HistoryActionKey, string(trigger)),
	)
	defer span.End()

	if tx, open := c.recorder.Active(); open {
		err := fmt.Errorf("%s while recording %q: %w", trigger, tx.Label(), history.ErrRecorderConflict)
		otelhelper.SetError(span, err)

		return Outcome{}, err
	}

	var (
		entry     history.Entry
		err       error
		eventType events.EventType
	)

	if trigger == TriggerUndo {
		entry, err = c.stack.Undo()
		eventType = events.HistoryUndoneEvent
	} else {
		entry, err = c.stack.Redo()
		eventType = events.HistoryRedoneEvent
	}

	if history.IsEmptyHistory(err) {
		otelhelper.SetNoop(span, err.Error())
		c.logger.DebugContext(ctx, "nothing to "+string(trigger))

		return c.outcome(trigger, nil), nil
	}

	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.CanvasIDKey, c.canvasID))
		c.logger.ErrorContext(ctx, "history step failed", "trigger", trigger, "error", err)

		return Outcome{}, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.EntryLabelKey, entry.Label()),
		attribute.Int(otelhelper.EntrySizeKey, len(entry.Commands())),
		attribute.Int(otelhelper.UndoDepthKey, c.stack.UndoDepth()),
		attribute.Int(otelhelper.RedoDepthKey, c.stack.RedoDepth()),
	)

	c.logger.DebugContext(ctx, "history step", "trigger", trigger, "label", entry.Label())
	c.notify(ctx, eventType, entry)

	return c.outcome(trigger, entry), nil
}

func (c *Controller) outcome(trigger Trigger, entry history.Entry) Outcome {
	out := Outcome{
		Trigger:   trigger,
		Noop:      entry == nil,
		UndoDepth: c.stack.UndoDepth(),
		RedoDepth: c.stack.RedoDepth(),
	}

	if entry != nil {
		out.Label = entry.Label()
	}

	return out
}

// committed announces a new entry.
func (c *Controller) committed(ctx context.Context, entry history.Entry) {
	c.notify(ctx, events.HistoryCommittedEvent, entry)
}

// previewed announces a live change inside an open gesture.
func (c *Controller) previewed(ctx context.Context, label string) {
	change := c.change(events.PreviewChangedEvent, nil)
	change.Label = label
	c.emit(ctx, change)
}

// cleared announces a freshly loaded graph with empty history.
func (c *Controller) cleared(ctx context.Context) {
	c.notify(ctx, events.HistoryClearedEvent, nil)
}

func (c *Controller) notify(ctx context.Context, eventType events.EventType, entry history.Entry) {
	c.emit(ctx, c.change(eventType, entry))
}

func (c *Controller) change(eventType events.EventType, entry history.Entry) events.HistoryChanged {
	change := events.HistoryChanged{
		BaseEvent:       events.NewBaseEvent(eventType, c.canvasID),
		UndoDepth:       c.stack.UndoDepth(),
		RedoDepth:       c.stack.RedoDepth(),
		NodeCount:       c.store.NodeCount(),
		ConnectionCount: c.store.ConnectionCount(),
	}

	if entry == nil {
		return change
	}

	change.Label = entry.Label()

	seen := make(map[string]bool)
	for _, cmd := range entry.Commands() {
		change.Commands = append(change.Commands, string(cmd.Kind()))

		for _, id := range cmd.NodeIDs() {
			if !seen[id] {
				seen[id] = true
				change.NodeIDs = append(change.NodeIDs, id)
			}
		}
	}

	return change
}

// emit hands the change to the renderer, then publishes it. The graph has
// already changed, so a failed publish is logged and not returned.
func (c *Controller) emit(ctx context.Context, change events.HistoryChanged) {
	if c.renderer != nil {
		c.renderer(ctx, change)
	}

	if c.publisher == nil {
		return
	}

	if err := c.publisher.Publish(ctx, c.canvasID, change); err != nil {
		c.logger.WarnContext(ctx, "failed to publish history change",
			"event_type", change.Type,
			"error", err,
		)
	}
}
