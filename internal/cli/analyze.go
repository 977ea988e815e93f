package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veracitylab/veracity/internal/logging"
	"github.com/veracitylab/veracity/internal/pipeline"
)

var (
	asJSON      bool
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noRobots    bool
	insecureTLS bool
	llmProvider string
	llmModel    string
	noLLM       bool
	historyPath string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single URL and print its veracity report",
	Long: `Analyze fetches the page, consults the configured signal sources
concurrently, and prints the resulting report.

Sources that time out or have no data degrade the report instead of
failing it; only an invalid or unsafe URL aborts the analysis.

Example:
  veracity analyze https://example.com/article
  veracity analyze https://example.com/article --json
  veracity analyze https://example.com --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	// HTTP flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read (0 = configured default)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache (force fresh analysis)")
	analyzeCmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt when fetching the page")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "content assessment provider (gemini, openai, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "content assessment model name")
	analyzeCmd.Flags().BoolVar(&noLLM, "no-llm", false, "disable the generative content assessment")

	analyzeCmd.Flags().StringVar(&historyPath, "history", "", "sqlite file to record the report in")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	cfg.HTTP.InsecureTLS = insecureTLS
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noLLM {
		cfg.LLM.Provider = ""
	}
	if historyPath != "" {
		cfg.History.Path = historyPath
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", url)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	var logger logging.Logger = logging.Nop{}
	if verbose {
		logger = logging.NewJSONLogger("analyze")
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	report, err := p.Analyze(ctx, url)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if asJSON {
		return pipeline.RenderJSON(os.Stdout, report)
	}

	pipeline.RenderText(os.Stdout, report)
	return nil
}
