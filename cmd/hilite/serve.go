package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gossip-lsp/hilite"
	"github.com/gossip-lsp/hilite/middleware"
)

var (
	serveListen       string
	serveTrace        string
	serveSettingsFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the highlight server",
	Long: `Serve the hilite/* protocol over JSON-RPC. --listen takes stdio (the
default), tcp://host:port, unix:///path/to.sock or ws://host:port/path. The
network forms accept a single client.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "stdio", "Transport to serve on")
	serveCmd.Flags().StringVar(&serveTrace, "trace", "", "Write request spans as JSON to this file, or - for stderr")
	serveCmd.Flags().StringVar(&serveSettingsFile, "settings-file", "", "Workspace settings file to watch instead of .hilite.toml")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr)

	opts := []hilite.Option{
		hilite.WithLogger(logger),
		hilite.WithSettings(settings),
		hilite.WithMiddleware(middleware.Recovery(logger), middleware.Logging(logger)),
	}
	if serveSettingsFile != "" {
		opts = append(opts, hilite.WithSettingsFile(serveSettingsFile))
	}

	if serveTrace != "" {
		w := os.Stderr
		if serveTrace != "-" {
			f, err := os.Create(serveTrace)
			if err != nil {
				return fmt.Errorf("opening trace file: %w", err)
			}
			defer f.Close()
			w = f
		}
		tp, err := newTracerProvider(w)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("flushing spans", "error", err)
			}
		}()
		opts = append(opts, hilite.WithTracer(tp.Tracer()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := hilite.NewServer("hilite", version, opts...)
	return hilite.Serve(s, hilite.WithTarget(serveListen), hilite.WithContext(ctx))
}
