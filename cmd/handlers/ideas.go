package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"giga/internal/logger"
	"giga/internal/pipeline"

	"github.com/spf13/cobra"
)

type ideasFlags struct {
	seeds    string
	country  string
	language string
	maxIdeas int
	out      string
}

func (f *ideasFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.seeds, "seeds", "s", "", "Comma-separated seed keywords (at most 20)")
	cmd.Flags().StringVar(&f.country, "country", "", "Target country name or geo criterion ID (default from config)")
	cmd.Flags().StringVar(&f.language, "language", "", "Keyword language name or criterion ID (default from config)")
	cmd.Flags().IntVar(&f.maxIdeas, "max-ideas", 0, "Maximum ideas per seed batch (default from config)")
}

func (f *ideasFlags) options() (pipeline.IdeasOptions, error) {
	seeds, err := parseSeeds(f.seeds)
	if err != nil {
		return pipeline.IdeasOptions{}, err
	}
	return pipeline.IdeasOptions{Seeds: seeds, Country: f.country, Language: f.language, MaxIdeas: f.maxIdeas}, nil
}

// NewIdeasCmd creates the ideas command
func NewIdeasCmd() *cobra.Command {
	f := &ideasFlags{}
	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Fetch keyword ideas with monthly search volumes",
		Long: `Expand seed keywords into keyword ideas with the Google Ads Keyword Planner.

Ideas whose latest monthly search volume is at or below
pipeline.min_latest_search_volume are dropped. The result is printed as JSON
and can be passed to insights and clusters with --ideas.

Examples:
  giga ideas --seeds "dog food, cat food" --country Germany --language German
  giga ideas --seeds "running shoes" --out ideas.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdeas(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the JSON result to this file instead of stdout")
	return cmd
}

func runIdeas(ctx context.Context, stdout io.Writer, f *ideasFlags) error {
	opts, err := f.options()
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()

	res, err := p.Ideas(ctx, opts)
	if err != nil {
		return err
	}
	logger.Info("Ideas fetched", "run_id", res.RunID, "fetched", res.Fetched, "kept", len(res.Ideas), "duration", res.Duration.String())

	if f.out == "" {
		return writeJSON(stdout, res)
	}
	file, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.out, err)
	}
	defer file.Close()
	if err := writeJSON(file, res); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.out, err)
	}
	fmt.Fprintf(stdout, "Wrote %d ideas to %s\n", len(res.Ideas), f.out)
	return nil
}
