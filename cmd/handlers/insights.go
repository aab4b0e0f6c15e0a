package handlers

import (
	"context"
	"fmt"
	"io"

	"giga/internal/core"
	"giga/internal/growth"
	"giga/internal/pipeline"
	"giga/internal/render"

	"github.com/spf13/cobra"
)

type insightsFlags struct {
	ideasFlags
	ideasFile      string
	metric         string
	outputLanguage string
	text           bool
	reportDir      string
}

// NewInsightsCmd creates the insights command
func NewInsightsCmd() *cobra.Command {
	f := &insightsFlags{}
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Rank ideas by growth and generate a trend insights report",
		Long: `Rank keyword ideas by a growth metric, keep those growing by more than
pipeline.min_growth and ask Gemini for an HTML trend report.

Ideas are read from --ideas (output of 'giga ideas', "-" for stdin) or
fetched from --seeds.

Metrics: yoy, mom, latest_vs_avg, latest_vs_max, three_months_vs_avg

Examples:
  giga insights --seeds "dog food" --metric mom --text
  giga ideas --seeds "dog food" | giga insights --ideas - --report-dir reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsights(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.ideasFile, "ideas", "", "Read ideas from a JSON file instead of fetching them")
	cmd.Flags().StringVar(&f.metric, "metric", "", "Growth metric (default from config)")
	cmd.Flags().StringVar(&f.outputLanguage, "output-language", "", "Language of the report (default from config)")
	cmd.Flags().BoolVar(&f.text, "text", false, "Print the report as plain text instead of JSON")
	cmd.Flags().StringVar(&f.reportDir, "report-dir", "", "Also write the report as an HTML page to this directory")
	return cmd
}

func runInsights(ctx context.Context, stdout io.Writer, f *insightsFlags) error {
	var metric growth.Metric
	if f.metric != "" {
		m, err := growth.ParseMetric(f.metric)
		if err != nil {
			return err
		}
		metric = m
	}
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()
	ideas, seeds, err := resolveIdeas(ctx, p, f.ideasFile, &f.ideasFlags)
	if err != nil {
		return err
	}

	res, err := p.Insights(ctx, pipeline.InsightsOptions{
		Seeds:    seeds,
		Ideas:    ideas,
		Metric:   metric,
		Language: f.outputLanguage,
	})
	if err != nil {
		return err
	}

	if f.reportDir != "" {
		path, err := render.WriteReport(render.Page("Keyword insights", res.HTML), f.reportDir, "insights-"+res.RunID+".html")
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", path)
	}
	if f.text {
		text, err := render.PlainText(res.HTML)
		if err != nil {
			return fmt.Errorf("failed to render insights as text: %w", err)
		}
		_, err = fmt.Fprintln(stdout, text)
		return err
	}
	return writeJSON(stdout, res)
}

// resolveIdeas loads ideas from file, or fetches them for the seed flags.
// The returned seeds are those given on the command line, if any.
func resolveIdeas(ctx context.Context, p *pipeline.Pipeline, file string, f *ideasFlags) ([]core.KeywordIdea, []string, error) {
	if file != "" {
		ideas, err := loadIdeas(file)
		if err != nil {
			return nil, nil, err
		}
		var seeds []string
		if f.seeds != "" {
			seeds, _ = pipeline.ParseSeedKeywords(f.seeds)
		}
		return ideas, seeds, nil
	}

	opts, err := f.options()
	if err != nil {
		return nil, nil, fmt.Errorf("either --ideas or --seeds is required: %w", err)
	}
	res, err := p.Ideas(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return res.Ideas, res.Seeds, nil
}
