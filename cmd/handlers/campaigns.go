package handlers

import (
	"context"
	"fmt"
	"io"

	"giga/internal/pipeline"
	"giga/internal/render"

	"github.com/spf13/cobra"
)

type campaignsFlags struct {
	ideasFlags
	insightsFile   string
	brand          string
	styleGuideFile string
	examplesFile   string
	topAds         bool
	customerID     string
	outputLanguage string
	text           bool
	reportDir      string
}

// NewCampaignsCmd creates the campaigns command
func NewCampaignsCmd() *cobra.Command {
	f := &campaignsFlags{}
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Turn a trend insights report into ad campaigns",
		Long: `Generate ready-to-use search campaigns (ad groups, keywords, headlines and
descriptions) from an insights report.

The report is read from --insights (HTML from 'giga insights', "-" for
stdin) or generated from --seeds. Ads written in the account's voice can be
given with --ad-examples, or taken from the account's best responsive
search ads with --top-ads.

Examples:
  giga campaigns --insights insights.html --brand Acme --text
  giga campaigns --seeds "dog food" --top-ads --report-dir reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaigns(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.insightsFile, "insights", "", "Read the insights HTML from a file instead of generating it")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand name (default from config)")
	cmd.Flags().StringVar(&f.styleGuideFile, "style-guide", "", "File with the ad copy style guide")
	cmd.Flags().StringVar(&f.examplesFile, "ad-examples", "", "File with example ads to imitate")
	cmd.Flags().BoolVar(&f.topAds, "top-ads", false, "Use the account's top performing ads as examples")
	cmd.Flags().StringVar(&f.customerID, "customer-id", "", "Google Ads customer ID for --top-ads (default from config)")
	cmd.Flags().StringVar(&f.outputLanguage, "output-language", "", "Language of the campaigns (default from config)")
	cmd.Flags().BoolVar(&f.text, "text", false, "Print the campaigns as plain text instead of JSON")
	cmd.Flags().StringVar(&f.reportDir, "report-dir", "", "Also write the campaigns as an HTML page to this directory")
	return cmd
}

func runCampaigns(ctx context.Context, stdout io.Writer, f *campaignsFlags) error {
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()

	insights, err := campaignInsights(ctx, p, f)
	if err != nil {
		return err
	}
	opts := pipeline.CampaignOptions{
		Insights:  insights,
		Language:  f.outputLanguage,
		BrandName: f.brand,
	}
	if f.styleGuideFile != "" {
		data, err := readInput(f.styleGuideFile)
		if err != nil {
			return err
		}
		opts.StyleGuide = string(data)
	}
	switch {
	case f.examplesFile != "":
		data, err := readInput(f.examplesFile)
		if err != nil {
			return err
		}
		opts.AdExamples = string(data)
	case f.topAds:
		examples, err := p.TopAdExamples(ctx, f.customerID)
		if err != nil {
			return err
		}
		opts.AdExamples = examples
	}

	html, err := p.Campaigns(ctx, opts)
	if err != nil {
		return err
	}

	if f.reportDir != "" {
		path, err := render.WriteReport(render.Page("Ad campaigns", html), f.reportDir, "campaigns.html")
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Campaigns written to %s\n", path)
	}
	if f.text {
		text, err := render.PlainText(html)
		if err != nil {
			return fmt.Errorf("failed to render campaigns as text: %w", err)
		}
		_, err = fmt.Fprintln(stdout, text)
		return err
	}
	return writeJSON(stdout, map[string]string{"html": html})
}

func campaignInsights(ctx context.Context, p *pipeline.Pipeline, f *campaignsFlags) (string, error) {
	if f.insightsFile != "" {
		data, err := readInput(f.insightsFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if f.seeds == "" {
		return "", fmt.Errorf("either --insights or --seeds is required")
	}
	ideas, seeds, err := resolveIdeas(ctx, p, "", &f.ideasFlags)
	if err != nil {
		return "", err
	}
	res, err := p.Insights(ctx, pipeline.InsightsOptions{Seeds: seeds, Ideas: ideas, Language: f.outputLanguage})
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}
