package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"litegpt/internal/app"
	"litegpt/internal/version"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state.logger.Info("starting litegpt",
				"version", version.Version,
				"commit", version.Commit,
				"build_date", version.Date,
			)

			application, err := app.New(app.Config{
				AppConfig: state.config,
				Logger:    state.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			// Handle graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- application.Start(application.Addr())
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			shutdownErr := application.Shutdown(shutdownCtx)
			return errors.Join(shutdownErr, <-errCh)
		},
	}

	cmd.Flags().String("port", "", "listen port (overrides PORT)")

	return cmd
}
