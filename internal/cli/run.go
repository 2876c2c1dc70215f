package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runTimeout      time.Duration
	noCache         bool
	noPublish       bool
	allowLowQuality bool
	articlesDir     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full discovery-to-publication cycle",
	Long: `Run discovers a trending error message, collects solution material,
generates an article, checks its quality, stores it in a numbered article
directory, and posts it to WordPress when configured.

Example:
  errorgen run
  errorgen run --no-publish --allow-low-quality
  errorgen run --timeout 15m -v`,
	Args: cobra.NoArgs,
	RunE: runFullCycle,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall run timeout")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response cache (force fresh fetches)")
	runCmd.Flags().BoolVar(&noPublish, "no-publish", false, "store the article without posting to WordPress")
	runCmd.Flags().BoolVar(&allowLowQuality, "allow-low-quality", false, "store and publish even when the quality gate fails")
	runCmd.Flags().StringVar(&articlesDir, "articles-dir", "", "articles directory (default from config)")
}

func runFullCycle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noPublish {
		cfg.WordPress.BaseURL = ""
	}
	if allowLowQuality {
		cfg.Quality.AllowLowQuality = true
	}
	if articlesDir != "" {
		cfg.Storage.ArticlesDir = articlesDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if result != nil {
		printRunResult(result)
	}
	return err
}

func printRunResult(result *pipeline.RunResult) {
	fmt.Printf("Status: %s\n", result.Status)

	if result.Selection != nil {
		fmt.Printf("Error message: %s\n", result.Selection.Candidate.Text)
		fmt.Printf("Source: %s (confidence %.2f)\n", result.Selection.Candidate.Provider, result.Selection.Candidate.Confidence)
	}
	if result.Article != nil {
		fmt.Printf("Article title: %s\n", result.Article.Title)
	}
	if result.Quality != nil {
		fmt.Printf("Quality score: %.1f (passed=%v)\n", result.Quality.OverallScore, result.Quality.Passed)
		for _, issue := range result.Quality.Issues {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", issue.Severity, issue.Message)
		}
	}
	if result.ArticleDir != "" {
		fmt.Printf("Article directory: %s\n", result.ArticleDir)
	}
	if result.Publish != nil {
		fmt.Printf("WordPress URL: %s\n", result.Publish.URL)
	}
}
