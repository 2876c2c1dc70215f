package cli

import (
	"fmt"

	"github.com/daishir0/AutoErrorArticleGen/internal/store"
	"github.com/spf13/cobra"
)

var listArticlesDir string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if listArticlesDir != "" {
			cfg.Storage.ArticlesDir = listArticlesDir
		}

		articles, err := store.NewManager(cfg.Storage.ArticlesDir)
		if err != nil {
			return err
		}
		entries, err := articles.List()
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No articles stored yet")
			return nil
		}

		for _, entry := range entries {
			fmt.Printf("%04d  %s\n", entry.Number, entry.Title)
			fmt.Printf("      error: %s\n", entry.ErrorMessage)
			if entry.WordPressURL != "" {
				fmt.Printf("      wordpress: %s\n", entry.WordPressURL)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listArticlesDir, "articles-dir", "", "articles directory (default from config)")
}
