package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/varcalc/internal/api"
	"github.com/wonny/varcalc/internal/api/handlers"
	"github.com/wonny/varcalc/internal/risk"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive web UI",
	Long: `Start the HTTP server with the estimate form.

Endpoints:
  GET  /               - Estimate form
  POST /estimate       - Run an estimate from the form
  GET  /api/estimate   - Run an estimate from query parameters (JSON)
  GET  /health         - Health check

Example:
  go run ./cmd/varcalc serve
  go run ./cmd/varcalc serve --port 9000`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if servePort != "" {
		a.cfg.Port = servePort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing server")

	estimator := risk.NewEstimator(a.provider, a.log)
	estimateHandler := handlers.NewEstimateHandler(estimator, a.cfg.Defaults, a.log)
	router := api.NewRouter(estimateHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	PrintList(out, []string{
		"GET  /",
		"POST /estimate",
		"GET  /api/estimate",
		"GET  /health",
	})
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			a.log.WithError(err).Error("Server failed")
			return err
		}
		return nil
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
