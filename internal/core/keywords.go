package core

import (
	"sort"
	"time"
)

// MonthlyVolume is one point of a keyword's search volume history.
type MonthlyVolume struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Searches int64      `json:"searches"`
}

// KeywordIdea is a keyword suggestion with its monthly search volume
// history, ordered oldest to newest.
type KeywordIdea struct {
	Text                 string          `json:"text"`
	MonthlySearchVolumes []MonthlyVolume `json:"monthly_search_volumes"`
	AvgMonthlySearches   int64           `json:"avg_monthly_searches"`
}

// History returns the monthly search counts, oldest first.
func (k KeywordIdea) History() []float64 {
	h := make([]float64, len(k.MonthlySearchVolumes))
	for i, m := range k.MonthlySearchVolumes {
		h[i] = float64(m.Searches)
	}
	return h
}

// LatestSearches returns the most recent month's count, or 0 without history.
func (k KeywordIdea) LatestSearches() int64 {
	if len(k.MonthlySearchVolumes) == 0 {
		return 0
	}
	return k.MonthlySearchVolumes[len(k.MonthlySearchVolumes)-1].Searches
}

// GrowthMetrics are relative changes derived from a volume history. Each
// ratio is 0 when its denominator is 0.
type GrowthMetrics struct {
	YoY              float64 `json:"yoy"`
	MoM              float64 `json:"mom"`
	LatestVsAvg      float64 `json:"latest_vs_avg"`
	LatestVsMax      float64 `json:"latest_vs_max"`
	ThreeMonthsVsAvg float64 `json:"three_months_vs_avg"`
}

// IdeaGrowth pairs a keyword idea with one selected growth value.
type IdeaGrowth struct {
	Text   string  `json:"text"`
	Growth float64 `json:"growth"`
}

// ClusterProposal is a topic cluster as returned by the model.
type ClusterProposal struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords"`
}

// Cluster is a reconciled topic cluster. Keywords only ever contains
// keywords present in the idea universe it was reconciled against.
type Cluster struct {
	Topic               string        `json:"topic"`
	Keywords            []string      `json:"keywords"`
	SearchVolumes       [][]float64   `json:"search_volumes"`
	SearchVolumeHistory []float64     `json:"search_volume_history"`
	SearchVolume        float64       `json:"search_volume"`
	Growth              GrowthMetrics `json:"growth"`
}

// Hallucination records a model-proposed keyword missing from the source data.
type Hallucination struct {
	Topic   string `json:"topic"`
	Keyword string `json:"keyword"`
}

// AdExample is a top performing responsive search ad with the broad match
// keywords of its ad group.
type AdExample struct {
	AdGroupID    string   `json:"ad_group_id"`
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	Keywords     []string `json:"keywords"`
}

// AdCopy is a generated responsive search ad.
type AdCopy struct {
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
}

// SearchTermSet is a deduplicated set of search terms.
type SearchTermSet map[string]struct{}

// NewSearchTermSet builds a set from terms, dropping duplicates.
func NewSearchTermSet(terms ...string) SearchTermSet {
	s := make(SearchTermSet, len(terms))
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add inserts a term.
func (s SearchTermSet) Add(term string) { s[term] = struct{}{} }

// Has reports whether term is in the set.
func (s SearchTermSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Diff returns the terms of s that are not in other.
func (s SearchTermSet) Diff(other SearchTermSet) SearchTermSet {
	out := make(SearchTermSet)
	for t := range s {
		if !other.Has(t) {
			out.Add(t)
		}
	}
	return out
}

// Sorted returns the terms in lexical order.
func (s SearchTermSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
