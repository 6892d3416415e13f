package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okra-platform/webdemo/internal/config"
	"github.com/okra-platform/webdemo/internal/serve"
)

// ServeOptions contains options for the serve command
type ServeOptions struct {
	Port            int
	MetricsPort     int
	ShutdownTimeout time.Duration
}

// config builds the server configuration, falling back to defaults for
// unset fields
func (o ServeOptions) config() *config.Config {
	cfg := config.Default()
	cfg.Port = o.Port
	cfg.MetricsPort = o.MetricsPort
	if o.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = o.ShutdownTimeout
	}
	return cfg
}

func (c *Controller) Serve(ctx context.Context, opts ServeOptions) error {
	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid serve options: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Setup signal handling before the banner so a signal sent after it is
	// always delivered here
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger := c.logger("webdemo")
	logger.Debug().
		Str("log_level", logger.GetLevel().String()).
		Int("port", cfg.Port).
		Int("metrics_port", cfg.MetricsPort).
		Msg("starting webdemo")
	srv := serve.NewServer(cfg, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Wait for the listener before announcing it
	select {
	case <-srv.Ready():
	case err := <-errChan:
		return fmt.Errorf("failed to start server: %w", err)
	}

	c.printBanner(srv.Addr())

	select {
	case sig := <-sigChan:
		logger.Debug().Stringer("signal", sig).Msg("received signal")
		fmt.Fprintln(c.out(), "\nShutting down server...")
		cancel()
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Debug().Msg("context cancelled, shutting down")
	}

	if err := <-errChan; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// printBanner prints the bound address and example endpoints
func (c *Controller) printBanner(addr string) {
	port := addr
	if _, p, err := net.SplitHostPort(addr); err == nil {
		port = p
	}

	out := c.out()
	fmt.Fprintf(out, "Server running at http://localhost:%s/\n", port)
	fmt.Fprintln(out, "Try these endpoints in your browser:")
	fmt.Fprintf(out, "- http://localhost:%s/ (Main UI)\n", port)
	fmt.Fprintf(out, "- http://localhost:%s/api/data (API endpoint)\n", port)
}
