package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlab/sift/internal/model"
	"github.com/siftlab/sift/internal/pipeline"
)

var (
	analyzeURL     string
	analyzeTimeout time.Duration
	analyzeOut     string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Fact-check a piece of text or a URL",
	Long: `Analyze runs the full pipeline once and prints the result as JSON:
claim extraction, evidence retrieval, source crawling, ranking, and
verdict synthesis.

Example:
  sift analyze "COVID-19 vaccines cause autism."
  sift analyze --url https://example.com/article
  sift analyze "..." --out result.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "analyze a web page instead of text")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write JSON result to file instead of stdout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeURL == "" && len(args) == 0 {
		return fmt.Errorf("provide text to analyze or --url")
	}
	if analyzeURL != "" && len(args) > 0 {
		return fmt.Errorf("provide either text or --url, not both")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	analyzer, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	var result *model.AnalysisResult
	if analyzeURL != "" {
		result = analyzer.AnalyzeURL(ctx, analyzeURL)
	} else {
		result = analyzer.AnalyzeText(ctx, args[0])
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if analyzeOut != "" {
		if err := os.WriteFile(analyzeOut, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Result written to %s\n", analyzeOut)
		return nil
	}

	fmt.Println(string(out))
	return nil
}
