package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/operion-canvas/pkg/clipboard"
	"github.com/dukex/operion-canvas/pkg/cmd"
	"github.com/dukex/operion-canvas/pkg/config"
	"github.com/dukex/operion-canvas/pkg/editor"
	"github.com/dukex/operion-canvas/pkg/eventbus"
	"github.com/dukex/operion-canvas/pkg/events"
	"github.com/dukex/operion-canvas/pkg/otelhelper"
	"github.com/dukex/operion-canvas/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

// Options selects the infrastructure behind the API.
type Options struct {
	ConfigPath   string
	EventBus     string
	ClipboardURL string
	ClipboardTTL time.Duration
	OTelEnabled  bool
}

type API struct {
	logger    *slog.Logger
	cfg       config.Config
	sessions  *editor.Sessions
	eventBus  eventbus.EventBus
	clipboard clipboard.Store
	validate  *validator.Validate
	shutdown  otelhelper.Shutdown
}

func NewAPI(ctx context.Context, logger *slog.Logger, opts Options) (*API, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	api := &API{
		logger:   logger,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	tracer := otelhelper.NoopTracer()

	if opts.OTelEnabled {
		var t trace.Tracer

		t, api.shutdown, err = otelhelper.NewTracer(ctx, "operion-canvas")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		tracer = t
	}

	api.eventBus, err = cmd.NewEventBus(opts.EventBus, logger)
	if err != nil {
		api.Close(ctx)

		return nil, err
	}

	if err := api.subscribe(ctx); err != nil {
		api.Close(ctx)

		return nil, err
	}

	api.clipboard, err = cmd.NewClipboard(ctx, opts.ClipboardURL, opts.ClipboardTTL)
	if err != nil {
		api.Close(ctx)

		return nil, err
	}

	api.sessions = editor.NewSessions(cfg.Sessions, func(id string) *editor.Canvas {
		return editor.NewCanvas(id,
			editor.WithConfig(cfg),
			editor.WithLogger(logger),
			editor.WithPublisher(api.eventBus),
			editor.WithTracer(tracer),
		)
	})

	return api, nil
}

// subscribe logs every committed, undone, redone and cleared history change
// published on the bus.
func (a *API) subscribe(ctx context.Context) error {
	err := eventbus.HandleHistory(a.eventBus, a.logChange,
		events.HistoryCommittedEvent,
		events.HistoryUndoneEvent,
		events.HistoryRedoneEvent,
		events.HistoryClearedEvent,
	)
	if err != nil {
		return err
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) logChange(ctx context.Context, change *events.HistoryChanged) error {
	a.logger.DebugContext(ctx, "history changed",
		"canvas_id", change.CanvasID,
		"event_type", change.Type,
		"label", change.Label,
		"undo_depth", change.UndoDepth,
		"redo_depth", change.RedoDepth,
	)

	return nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.sessions, a.clipboard, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Canvas API")
	})

	web.RegisterRoutes(app, handlers)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	if err := a.sessions.Start(); err != nil {
		return err
	}
	defer a.sessions.Stop()

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

// Close releases the event bus, the clipboard and the tracer.
func (a *API) Close(ctx context.Context) {
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}

	if a.clipboard != nil {
		if err := a.clipboard.Close(); err != nil {
			a.logger.ErrorContext(ctx, "Failed to close clipboard", "error", err)
		}
	}

	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	}
}
