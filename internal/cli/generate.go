package cli

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	generateError   string
	generateTimeout time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate --error <message>",
	Short: "Generate an article for a specific error message",
	Long: `Generate skips discovery and builds an article for the given error
message. The article is stored in a numbered directory; it is not posted
to WordPress.

Example:
  errorgen generate --error "FILE_NOT_FOUND 0x80070002"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateError, "error", "", "error message to write about (required)")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 10*time.Minute, "overall timeout")
	_ = generateCmd.MarkFlagRequired("error")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}

	result, err := p.GenerateFromError(ctx, generateError)
	if result != nil {
		printRunResult(result)
	}
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}
