package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"giga/internal/core"
	"giga/internal/logger"
	"giga/internal/pipeline"

	"github.com/spf13/cobra"
)

type clustersFlags struct {
	ideasFlags
	ideasFile string
	keywords  string
	template  string
}

// NewClustersCmd creates the clusters command
func NewClustersCmd() *cobra.Command {
	f := &clustersFlags{}
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Group keyword ideas into topics",
		Long: `Ask Gemini to group keyword ideas into topics, then check every proposed
keyword against the ideas. Keywords the model invented are removed and
listed under "hallucinations". Each cluster carries its summed search
volume history and growth metrics.

With --keywords the comma separated keywords are clustered as they are,
and their search volumes come from the historical metrics service.

Examples:
  giga clusters --ideas ideas.json
  giga clusters --keywords "espresso machine, milk frother, coffee grinder"
  giga clusters --seeds "coffee, tea" --template "Group these drinks keywords by occasion:"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClusters(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.ideasFile, "ideas", "", "Read ideas from a JSON file instead of fetching them")
	cmd.Flags().StringVar(&f.keywords, "keywords", "", "Comma separated keywords to cluster instead of ideas")
	cmd.Flags().StringVar(&f.template, "template", "", "Clustering prompt template (default from config)")
	return cmd
}

func runClusters(ctx context.Context, stdout io.Writer, f *clustersFlags) error {
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.LogUsage()
	ideas, err := clusterIdeas(ctx, p, f)
	if err != nil {
		return err
	}

	res, err := p.Clusters(ctx, ideas, f.template)
	if err != nil {
		return err
	}
	logger.Info("Clustering done", "clusters", len(res.Clusters), "hallucinations", len(res.Hallucinations))
	return writeJSON(stdout, res)
}

func clusterIdeas(ctx context.Context, p *pipeline.Pipeline, f *clustersFlags) ([]core.KeywordIdea, error) {
	if f.keywords == "" {
		ideas, _, err := resolveIdeas(ctx, p, f.ideasFile, &f.ideasFlags)
		return ideas, err
	}
	ideas := pipeline.KeywordIdeas(strings.Split(f.keywords, ","))
	if len(ideas) == 0 {
		return nil, fmt.Errorf("--keywords has no keyword")
	}
	return ideas, nil
}
