package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/webdemo/internal/commands"
	"github.com/okra-platform/webdemo/internal/config"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	serveFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "port to listen on",
			Sources: cli.EnvVars("PORT"),
			Value:   config.DefaultPort,
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Usage:   "port for the Prometheus /metrics listener (0 disables it)",
			Sources: cli.EnvVars("METRICS_PORT"),
			Value:   0,
		},
		&cli.DurationFlag{
			Name:  "shutdown-timeout",
			Usage: "how long to wait for in-flight requests on shutdown",
			Value: config.DefaultShutdownTimeout,
		},
	}

	serveAction := func(ctx context.Context, c *cli.Command) error {
		return ctrl.Serve(ctx, commands.ServeOptions{
			Port:            int(c.Int("port")),
			MetricsPort:     int(c.Int("metrics-port")),
			ShutdownTimeout: c.Duration("shutdown-timeout"),
		})
	}

	app := &cli.Command{
		Name:    "webdemo",
		Usage:   `Minimal web UI demo server with a static page and two JSON endpoints.`,
		Version: build(),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		}, serveFlags...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			ctrl.Flags.LogLevel = level.String()
			log.Logger = log.Level(level)

			return ctx, nil
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the demo page and API",
				Action: serveAction,
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run webdemo")
	}
}
