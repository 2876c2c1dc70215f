package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "errorgen",
	Short: "Automated error-solution article generator",
	Long: `errorgen discovers trending technical error messages, collects solution
material from official documentation and community answers, generates an
SEO-optimized Japanese article with OpenAI, gates it on quality, and
publishes it to WordPress.

Each processed error is stored in a numbered article directory and never
processed twice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("errorgen v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.errorgen/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.errorgen")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ERRORGEN_*
	viper.SetEnvPrefix("ERRORGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the effective configuration: defaults, then the
// config file, then well-known credential environment variables, then flags
// already bound through viper.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// credentials come from the environment by default
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Generation.APIKey = key
	}
	if key := os.Getenv("STACKOVERFLOW_API_KEY"); key != "" {
		cfg.Discovery.Sources.StackOverflow.APIKey = key
	}
	if id := os.Getenv("REDDIT_CLIENT_ID"); id != "" {
		cfg.Discovery.Sources.Reddit.ClientID = id
	}
	if secret := os.Getenv("REDDIT_CLIENT_SECRET"); secret != "" {
		cfg.Discovery.Sources.Reddit.ClientSecret = secret
	}
	if pass := os.Getenv("WORDPRESS_APP_PASSWORD"); pass != "" {
		cfg.WordPress.AppPassword = pass
	}

	cfg.Output.Verbose = verbose

	return cfg, nil
}
