// Package clustering reconciles model-proposed topic clusters with the
// keyword ideas they were generated from.
package clustering

import (
	"strings"

	"giga/internal/core"
	"giga/internal/growth"
	"giga/internal/logger"
)

// Result holds reconciled clusters and the proposed keywords that were
// dropped because they are not in the idea universe.
type Result struct {
	Clusters       []core.Cluster       `json:"clusters"`
	Hallucinations []core.Hallucination `json:"hallucinations"`
}

// Reconcile keeps only proposed keywords present in universe (matched
// case-insensitively) and aggregates their histories. Kept keywords take
// their universe spelling and appear once per cluster. A cluster may end up
// with no keywords; it is still returned.
func Reconcile(proposals []core.ClusterProposal, universe map[string][]float64) Result {
	known := make(map[string]string, len(universe))
	for keyword := range universe {
		key := core.FoldKey(keyword)
		if prev, ok := known[key]; !ok || keyword < prev {
			known[key] = keyword
		}
	}

	result := Result{Clusters: make([]core.Cluster, 0, len(proposals))}
	for _, p := range proposals {
		cluster := core.Cluster{Topic: p.Topic, Keywords: []string{}, SearchVolumes: [][]float64{}}
		seen := make(map[string]bool, len(p.Keywords))
		var missing []string
		for _, keyword := range p.Keywords {
			key := core.FoldKey(keyword)
			canonical, ok := known[key]
			if !ok {
				missing = append(missing, keyword)
				result.Hallucinations = append(result.Hallucinations, core.Hallucination{Topic: p.Topic, Keyword: keyword})
				continue
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			cluster.Keywords = append(cluster.Keywords, canonical)
			cluster.SearchVolumes = append(cluster.SearchVolumes, universe[canonical])
		}
		if len(missing) > 0 {
			logger.Warn("Clustering produced keywords not found in ideas",
				"topic", p.Topic, "keywords", strings.Join(missing, ", "))
		}

		cluster.SearchVolumeHistory = growth.SumHistories(cluster.SearchVolumes)
		if n := len(cluster.SearchVolumeHistory); n > 0 {
			cluster.SearchVolume = cluster.SearchVolumeHistory[n-1]
		}
		cluster.Growth = growth.Compute(cluster.SearchVolumeHistory)
		result.Clusters = append(result.Clusters, cluster)
	}
	return result
}

// Universe maps each idea's lowercased text to its history.
func Universe(ideas []core.KeywordIdea) map[string][]float64 {
	u := make(map[string][]float64, len(ideas))
	for _, idea := range ideas {
		u[strings.ToLower(idea.Text)] = idea.History()
	}
	return u
}
