package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		listen := serveListen
		if listen == "" {
			listen = e.cfg.Server.Listen
		}

		server := api.New(e.apiDeps())

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Listen(listen)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		e.logger.Info("shutting down the server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err := <-errCh; err != nil {
			e.logger.Warn("server stopped with error", zap.Error(err))
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default from server.listen)")
}
