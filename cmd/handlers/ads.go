package handlers

import (
	"context"
	"io"
	"strings"

	"giga/internal/pipeline"

	"github.com/spf13/cobra"
)

// NewAdsCmd creates the ads command group
func NewAdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ads",
		Short: "Work with responsive search ads",
	}
	cmd.AddCommand(NewAdsSuggestCmd())
	return cmd
}

// NewAdsSuggestCmd creates the ads suggest command
func NewAdsSuggestCmd() *cobra.Command {
	var (
		opts     pipeline.SuggestAdsOptions
		keywords string
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Write new responsive search ads in the style of the best ones",
		Long: `Fetch the account's best responsive search ads of the lookback window,
ranked by --metric, with the broad match keywords of their ad groups, and
ask Gemini for new headlines and descriptions for the given keywords.

Examples:
  giga ads suggest --keywords "vegan dog food, grain free dog food"
  giga ads suggest --keywords "running shoes" --top-n 10 --metric conversions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Keywords = strings.Split(keywords, ",")
			return runSuggestAds(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&keywords, "keywords", "k", "", "Comma-separated keywords to write ads for")
	cmd.Flags().StringVar(&opts.CustomerID, "customer-id", "", "Google Ads customer ID (default from config)")
	cmd.Flags().IntVar(&opts.TopN, "top-n", 5, "Number of example ads")
	cmd.Flags().IntVar(&opts.LookbackDays, "lookback-days", 30, "Days of ad performance to rank by")
	cmd.Flags().StringVar(&opts.Metric, "metric", "", "Metric to rank ads by (default clicks)")
	return cmd
}

func runSuggestAds(ctx context.Context, stdout io.Writer, opts pipeline.SuggestAdsOptions) error {
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()
	suggestions, err := p.SuggestAds(ctx, opts)
	if err != nil {
		return err
	}
	return writeJSON(stdout, suggestions)
}
