package handlers

import (
	"context"
	"io"

	"giga/internal/logger"
	"giga/internal/pipeline"

	"github.com/spf13/cobra"
)

// NewNewTermsCmd creates the new-terms command
func NewNewTermsCmd() *cobra.Command {
	var (
		opts         pipeline.NewTermsOptions
		baselineDays int
	)
	cmd := &cobra.Command{
		Use:   "new-terms",
		Short: "Turn search terms that are new this week into keywords",
		Long: `Compare the account's search terms report of the recent window with the
baseline window before it. Terms above the reporting metric threshold that
only appear in the recent window are summarized by Gemini into broad match
keyword suggestions.

The recent window ends yesterday. With --baseline-days 0 every term of the
recent window counts as new.

Examples:
  giga new-terms --customer-id 123-456-7890
  giga new-terms --recent-days 14 --baseline-days 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("baseline-days") {
				opts.BaselineDays = &baselineDays
			}
			return runNewTerms(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.CustomerID, "customer-id", "", "Google Ads customer ID (default from config)")
	cmd.Flags().IntVar(&opts.RecentDays, "recent-days", 0, "Length of the recent window in days (default from config)")
	cmd.Flags().IntVar(&baselineDays, "baseline-days", 0, "Length of the baseline window in days (default from config)")
	cmd.Flags().StringVar(&opts.Language, "output-language", "", "Language of the keyword suggestions (default from config)")
	return cmd
}

func runNewTerms(ctx context.Context, stdout io.Writer, opts pipeline.NewTermsOptions) error {
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()
	res, err := p.NewSearchTermKeywords(ctx, opts)
	if err != nil {
		return err
	}
	logger.Info("New search terms", "run_id", res.RunID, "terms", len(res.Terms), "keywords", len(res.Keywords))
	return writeJSON(stdout, res)
}
