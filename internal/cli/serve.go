package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veracitylab/veracity/internal/logging"
	"github.com/veracitylab/veracity/internal/pipeline"
	"github.com/veracitylab/veracity/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis API",
	Long: `Serve exposes the analyzer over HTTP:

  POST /analyze       {"url": "https://..."} -> report
  GET  /healthz       liveness probe
  GET  /reports       recent analyses (when history is enabled)
  GET  /reports/{id}  one stored report (when history is enabled)

Example:
  veracity serve
  veracity serve --addr :9090 --history ./veracity.db`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&historyPath, "history", "", "sqlite file to record reports in")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "content assessment provider (gemini, openai, ollama)")
	serveCmd.Flags().BoolVar(&noLLM, "no-llm", false, "disable the generative content assessment")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if historyPath != "" {
		cfg.History.Path = historyPath
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if noLLM {
		cfg.LLM.Provider = ""
	}

	logger := logging.NewJSONLogger("server")

	p, err := pipeline.New(cfg, logger.With("pipeline"))
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	srv := server.New(cfg.Server, p, p.History(), logger).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.F("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", logging.F("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
