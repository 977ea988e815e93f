package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veracitylab/veracity/internal/logging"
	"github.com/veracitylab/veracity/internal/pipeline"
	"github.com/veracitylab/veracity/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple URLs from a file in parallel",
	Long: `Batch reads URLs from a file (one per line, # comments allowed),
analyzes them concurrently, and writes one JSON report per URL.

Example:
  veracity batch urls.txt
  veracity batch urls.txt --concurrency 8 --output-dir ./reports
  veracity batch urls.txt --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (0 = configured default)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./veracity-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache (force fresh analyses)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "content assessment provider (gemini, openai, ollama)")
	batchCmd.Flags().BoolVar(&noLLM, "no-llm", false, "disable the generative content assessment")
	batchCmd.Flags().StringVar(&historyPath, "history", "", "sqlite file to record the reports in")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if noLLM {
		cfg.LLM.Provider = ""
	}
	if historyPath != "" {
		cfg.History.Path = historyPath
	}
	workers := cfg.Concurrency.BatchWorkers
	if concurrency > 0 {
		workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var logger logging.Logger = logging.Nop{}
	if verbose {
		logger = logging.NewJSONLogger("batch")
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	processor := worker.NewBatchProcessor(p, workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.URL, result.Error)
			continue
		}

		successCount++

		path := filepath.Join(outputDir, reportFilename(result.URL))
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: write report: %v\n", result.URL, err)
			continue
		}
		writeErr := pipeline.RenderJSON(f, result.Report)
		if closeErr := f.Close(); writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: write report: %v\n", result.URL, writeErr)
			continue
		}

		fmt.Fprintf(os.Stderr, "OK   %s (score %d/100, %s)\n", result.URL, result.Report.VeracityScore, result.Report.Verdict)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// reportFilename derives a stable, filesystem-safe name from the URL
func reportFilename(rawURL string) string {
	host := "report"
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		host = strings.ReplaceAll(parsed.Host, ":", "_")
	}

	sum := sha256.Sum256([]byte(rawURL))
	return host + "-" + hex.EncodeToString(sum[:6]) + ".json"
}
