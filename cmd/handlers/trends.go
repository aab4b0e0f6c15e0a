package handlers

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// NewTrendsCmd creates the trends command
func NewTrendsCmd() *cobra.Command {
	var seeds, template string
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Find trending search terms with grounded Gemini",
		Long: `Ask Gemini, grounded with Google Search, for search terms currently trending
around the seed keywords. The terms are printed as a JSON array and can be
fed back to 'giga ideas' as seeds.

Examples:
  giga trends --seeds "coffee, tea"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrends(cmd.Context(), cmd.OutOrStdout(), seeds, template)
		},
	}
	cmd.Flags().StringVarP(&seeds, "seeds", "s", "", "Comma-separated seed keywords")
	cmd.Flags().StringVar(&template, "template", "", "Trends prompt template (default from config)")
	return cmd
}

func runTrends(ctx context.Context, stdout io.Writer, seedsFlag, template string) error {
	seeds, err := parseSeeds(seedsFlag)
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()
	keywords, err := p.Trends(ctx, seeds, template)
	if err != nil {
		return err
	}
	return writeJSON(stdout, keywords)
}
