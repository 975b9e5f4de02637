// Package editor turns user gestures on a workflow canvas into undoable
// history entries and steps the canvas back and forth through them.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-canvas/pkg/config"
	"github.com/dukex/operion-canvas/pkg/eventbus"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/log"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/dukex/operion-canvas/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// Canvas is one open workflow: its graph, its history and the gestures that
// edit it. A Canvas is not safe for concurrent use; Sessions serializes
// access per canvas.
type Canvas struct {
	id         string
	cfg        config.Config
	store      *graph.Store
	stack      *history.Stack
	recorder   *history.Recorder
	controller *Controller
	logger     *slog.Logger
	newID      func() string

	details *NodeDetails
	drag    *Drag
}

// Option configures a Canvas.
type Option func(*canvasOptions)

type canvasOptions struct {
	cfg       config.Config
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	renderer  Renderer
	tracer    trace.Tracer
	newID     func() string
}

// WithConfig sets history depth, layout and the node-type catalog.
func WithConfig(cfg config.Config) Option {
	return func(o *canvasOptions) { o.cfg = cfg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *canvasOptions) { o.logger = logger }
}

// WithPublisher publishes every history change on the event bus.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(o *canvasOptions) { o.publisher = publisher }
}

// WithRenderer calls renderer after every history change.
func WithRenderer(renderer Renderer) Option {
	return func(o *canvasOptions) { o.renderer = renderer }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *canvasOptions) { o.tracer = tracer }
}

// WithIDGenerator replaces the node id generator, mostly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(o *canvasOptions) { o.newID = newID }
}

// NewCanvas creates an empty canvas.
func NewCanvas(id string, opts ...Option) *Canvas {
	o := canvasOptions{
		cfg:    config.Default(),
		logger: log.WithModule("editor"),
		tracer: otelhelper.NoopTracer(),
		newID:  models.NewNodeID,
	}

	for _, opt := range opts {
		opt(&o)
	}

	store := graph.NewStore()
	stack := history.NewStack(store, o.cfg.History.MaxEntries)
	recorder := history.NewRecorder(store, stack)
	logger := o.logger.With("canvas_id", id)

	return &Canvas{
		id:       id,
		cfg:      o.cfg,
		store:    store,
		stack:    stack,
		recorder: recorder,
		controller: &Controller{
			canvasID:  id,
			store:     store,
			stack:     stack,
			recorder:  recorder,
			renderer:  o.renderer,
			publisher: o.publisher,
			tracer:    o.tracer,
			logger:    logger,
		},
		logger: logger,
		newID:  o.newID,
	}
}

func (c *Canvas) ID() string { return c.id }

// Controller returns the undo/redo controller of the canvas.
func (c *Canvas) Controller() *Controller { return c.controller }

// Undo reverts the most recent gesture.
func (c *Canvas) Undo(ctx context.Context) (Outcome, error) {
	return c.controller.Undo(ctx)
}

// Redo re-applies the most recently undone gesture.
func (c *Canvas) Redo(ctx context.Context) (Outcome, error) {
	return c.controller.Redo(ctx)
}

// State returns a snapshot of the graph.
func (c *Canvas) State() graph.State {
	return c.store.State()
}

// Node returns a copy of the node with the given id.
func (c *Canvas) Node(id string) (*models.Node, bool) {
	return c.store.Node(id)
}

// NodeByName returns a copy of the node with the given name.
func (c *Canvas) NodeByName(name string) (*models.Node, bool) {
	return c.store.NodeByName(name)
}

// Load replaces the graph and clears its history. It is refused while a
// gesture is recording.
func (c *Canvas) Load(ctx context.Context, state graph.State) error {
	if tx, open := c.recorder.Active(); open {
		return fmt.Errorf("load while recording %q: %w", tx.Label(), history.ErrRecorderConflict)
	}

	if err := c.store.Load(state); err != nil {
		return &GestureError{Gesture: "load", Err: fmt.Errorf("%w: %w", graph.ErrInvalidCommand, err)}
	}

	c.stack.Clear()
	c.logger.InfoContext(ctx, "canvas loaded",
		"nodes", c.store.NodeCount(),
		"connections", c.store.ConnectionCount(),
	)
	c.controller.cleared(ctx)

	return nil
}

// Summary describes the history of a canvas.
type Summary struct {
	Undo      []string `json:"undo"`
	Redo      []string `json:"redo"`
	CanUndo   bool     `json:"can_undo"`
	CanRedo   bool     `json:"can_redo"`
	Recording string   `json:"recording,omitempty"`
}

// History returns the entry labels on both stacks, oldest undo first and
// next redo first.
func (c *Canvas) History() Summary {
	undo, redo := c.stack.Labels()

	summary := Summary{
		Undo:    undo,
		Redo:    redo,
		CanUndo: c.stack.CanUndo(),
		CanRedo: c.stack.CanRedo(),
	}

	if tx, open := c.recorder.Active(); open {
		summary.Recording = tx.Label()
	}

	return summary
}

// record runs a synchronous gesture as one history entry and announces it.
func (c *Canvas) record(ctx context.Context, label string, fn func(tx *history.Transaction) error) (history.Entry, error) {
	entry, err := c.recorder.Record(label, fn)
	if err != nil {
		c.logger.WarnContext(ctx, "gesture refused", "gesture", label, "error", err)

		return nil, &GestureError{Gesture: label, Err: err}
	}

	if entry == nil {
		c.logger.DebugContext(ctx, "gesture changed nothing", "gesture", label)

		return nil, nil
	}

	c.logger.DebugContext(ctx, "gesture recorded", "gesture", label, "commands", len(entry.Commands()))
	c.controller.committed(ctx, entry)

	return entry, nil
}

// begin opens a transaction for a gesture that spans several calls.
func (c *Canvas) begin(label string) (*history.Transaction, error) {
	tx, err := c.recorder.Begin(label)
	if err != nil {
		return nil, &GestureError{Gesture: label, Err: err}
	}

	return tx, nil
}

// finish commits a multi-call gesture and announces the entry, if any.
func (c *Canvas) finish(ctx context.Context, tx *history.Transaction) (history.Entry, error) {
	entry, err := tx.Commit()
	if err != nil {
		return nil, &GestureError{Gesture: tx.Label(), Err: err}
	}

	if entry != nil {
		c.controller.committed(ctx, entry)
	} else {
		c.controller.previewed(ctx, tx.Label())
	}

	return entry, nil
}

// abandon reverts a multi-call gesture and announces the restored graph.
func (c *Canvas) abandon(ctx context.Context, tx *history.Transaction) error {
	err := tx.Abandon()
	c.controller.previewed(ctx, tx.Label())

	if err != nil {
		c.logger.ErrorContext(ctx, "failed to revert gesture", "gesture", tx.Label(), "error", err)

		return &GestureError{Gesture: tx.Label(), Err: err}
	}

	return nil
}
