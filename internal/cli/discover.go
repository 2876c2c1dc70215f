package cli

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/discover"
	"github.com/daishir0/AutoErrorArticleGen/internal/discover/sources"
	"github.com/daishir0/AutoErrorArticleGen/internal/store"
	"github.com/spf13/cobra"
)

var discoverTimeout time.Duration

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover a trending error message without generating an article",
	Long: `Discover queries the configured sources (Stack Overflow, Reddit, trend
catalog), scores and filters the candidates, and prints the one that a full
run would pick. Nothing is collected, generated, or stored.

Example:
  errorgen discover
  errorgen discover -v`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 3*time.Minute, "discovery timeout")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	articles, err := store.NewManager(cfg.Storage.ArticlesDir)
	if err != nil {
		return err
	}
	history := func(text string) bool {
		processed, err := articles.AlreadyProcessed(text)
		return err == nil && processed
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	registry := sources.DefaultRegistry(cfg, rng)

	raws, err := registry.DiscoverAll(ctx)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	scored := discover.NewScorer(rng).ScorePool(raws)
	pool := discover.NewFilter(cfg.Discovery.Selection, history).Apply(scored)

	selection, ok := discover.Select(pool, rng)
	if !ok {
		fmt.Println("No new error candidates found")
		return nil
	}

	fmt.Printf("Discovered error: %s\n", selection.Candidate.Text)
	fmt.Printf("Source: %s\n", selection.Candidate.Provider)
	fmt.Printf("Confidence: %.2f\n", selection.Candidate.Confidence)
	fmt.Printf("Pool: rank %d of %d (window %d)\n", selection.Rank+1, selection.PoolSize, selection.WindowSize)
	return nil
}
