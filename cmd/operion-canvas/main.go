// Package main provides the canvas editor API server.
package main

import (
	"context"
	"os"
	"time"

	"github.com/dukex/operion-canvas/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9092

func main() {
	cmd := &cli.Command{
		Name:                  "operion-canvas",
		Usage:                 "Edit workflow graphs with undo and redo",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML editor configuration",
				Sources: cli.EnvVars("CANVAS_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type for history notifications (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "clipboard-url",
				Usage:   "Clipboard store URL (empty for in-memory, redis://host:port/db)",
				Sources: cli.EnvVars("CLIPBOARD_URL"),
			},
			&cli.DurationFlag{
				Name:    "clipboard-ttl",
				Usage:   "How long copied nodes stay on a Redis clipboard",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("CLIPBOARD_TTL"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export undo and redo traces over OTLP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")
	logger.InfoContext(ctx, "Initializing canvas API")

	api, err := NewAPI(ctx, logger, Options{
		ConfigPath:   command.String("config"),
		EventBus:     command.String("event-bus"),
		ClipboardURL: command.String("clipboard-url"),
		ClipboardTTL: command.Duration("clipboard-ttl"),
		OTelEnabled:  command.Bool("otel-enabled"),
	})
	if err != nil {
		return err
	}

	defer api.Close(ctx)

	if err := api.Start(command.Int("port")); err != nil {
		logger.ErrorContext(ctx, "Failed to start canvas API", "error", err)

		return err
	}

	return nil
}
