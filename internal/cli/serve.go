package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marketlens/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis HTTP server",
		Long: `Start an HTTP server exposing the analysis pipeline.

Endpoints:
  POST /api/analyze   run analysis for a symbol
  GET  /api/reports   list stored reports for a symbol
  GET  /api/health    liveness check`,
		Example: `  marketlens serve
  marketlens serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			srvCfg := server.DefaultConfig()
			srvCfg.Host = app.Config.Server.Host
			srvCfg.Port = app.Config.Server.Port
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				srvCfg.Port = port
			}

			srv := server.New(srvCfg, app.Analyzer, app.Store, app.Logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			output.Info("Listening on %s:%d (Ctrl+C to stop)", srvCfg.Host, srvCfg.Port)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				output.Println()
				output.Info("Shutting down...")
				if err := srv.Shutdown(context.Background()); err != nil {
					output.Error("Shutdown error: %v", err)
					return err
				}
				return nil
			}
		},
	}

	cmd.Flags().Int("port", 0, "override the configured port")

	return cmd
}
