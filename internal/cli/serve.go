package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over an HTTP JSON API",
	Long: `Start the HTTP API and the background sweeps. The server runs until
interrupted.

Examples:
  taskboard serve
  taskboard serve --addr 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sched := env.scheduler()
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv := server.New(env.svc, logger.Global())

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(addr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", logger.Err(err))
			return err
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
