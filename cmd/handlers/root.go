package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"giga/internal/config"
	"giga/internal/core"
	"giga/internal/logger"
	"giga/internal/pipeline"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "giga",
		Short: "Keyword research and ad copy generation with Google Ads and Gemini.",
		Long: `giga expands seed keywords with the Google Ads Keyword Planner, ranks the
ideas by search volume growth and asks Gemini for trend insights, topic
clusters, campaigns and ad copy.

Credentials come from .giga.yaml, a .env file or the environment:
  GOOGLE_ADS_DEVELOPER_TOKEN, GOOGLE_ADS_ACCOUNT_ID, GOOGLE_ADS_LOGIN_CUSTOMER_ID
  GOOGLE_CLOUD_PROJECT, GEMINI_MODEL
Google Ads and Vertex AI calls authenticate with Application Default Credentials.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.giga.yaml or $HOME/.giga.yaml)")

	rootCmd.AddCommand(NewIdeasCmd())
	rootCmd.AddCommand(NewInsightsCmd())
	rootCmd.AddCommand(NewClustersCmd())
	rootCmd.AddCommand(NewCampaignsCmd())
	rootCmd.AddCommand(NewTrendsCmd())
	rootCmd.AddCommand(NewNewTermsCmd())
	rootCmd.AddCommand(NewAdsCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
}

// newPipeline builds the pipeline from the loaded configuration
func newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return pipeline.NewBuilder(cfg).Build(ctx)
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// parseSeeds turns the --seeds flag into at most pipeline.MaxSeedKeywords
// keywords, warning about the rest.
func parseSeeds(input string) ([]string, error) {
	seeds, overflow := pipeline.ParseSeedKeywords(input)
	if len(seeds) == 0 {
		return nil, pipeline.ErrNoSeedKeywords
	}
	if len(overflow) > 0 {
		logger.Warn("Only the first seed keywords are used", "max", pipeline.MaxSeedKeywords, "ignored", strings.Join(overflow, ", "))
	}
	return seeds, nil
}

// loadIdeas reads keyword ideas written by the ideas command: either the
// full result object or a bare array of ideas.
func loadIdeas(path string) ([]core.KeywordIdea, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ideas []core.KeywordIdea
		if err := json.Unmarshal(trimmed, &ideas); err != nil {
			return nil, fmt.Errorf("failed to parse ideas from %s: %w", path, err)
		}
		return ideas, nil
	}
	var result pipeline.IdeasResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ideas from %s: %w", path, err)
	}
	return result.Ideas, nil
}

// readInput reads a file, or stdin when path is "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
