// Package events defines the notifications the editor emits after the graph
// changes, for rendering collaborators to redraw from.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every history notification.
const Topic = "operion.canvas.history"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// HistoryCommittedEvent follows a gesture committed to history.
	HistoryCommittedEvent EventType = "history.committed"
	// HistoryUndoneEvent follows a successful undo.
	HistoryUndoneEvent EventType = "history.undone"
	// HistoryRedoneEvent follows a successful redo.
	HistoryRedoneEvent EventType = "history.redone"
	// HistoryClearedEvent follows loading a fresh graph.
	HistoryClearedEvent EventType = "history.cleared"
	// PreviewChangedEvent follows a live preview inside an open gesture, or
	// its cancellation.
	PreviewChangedEvent EventType = "preview.changed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	CanvasID  string         `json:"canvas_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a new event for the canvas.
func NewBaseEvent(eventType EventType, canvasID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		CanvasID:  canvasID,
	}
}

// HistoryChanged describes one transition of the graph. Renderers re-derive
// their view from the canvas state when they receive it; the graph is
// consistent by the time the event is published.
type HistoryChanged struct {
	BaseEvent

	Label           string   `json:"label,omitempty"`
	Commands        []string `json:"commands,omitempty"`
	NodeIDs         []string `json:"node_ids,omitempty"`
	UndoDepth       int      `json:"undo_depth"`
	RedoDepth       int      `json:"redo_depth"`
	NodeCount       int      `json:"node_count"`
	ConnectionCount int      `json:"connection_count"`
}

func (h HistoryChanged) GetType() EventType {
	return h.Type
}
