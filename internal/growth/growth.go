// Package growth derives trend signals from monthly search volume histories.
//
// Every function here is pure and total: a ratio whose denominator is zero,
// including an offset that falls before the start of the history, is 0.
package growth

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"giga/internal/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric names one of the growth ratios.
type Metric string

const (
	YoY              Metric = "yoy"
	MoM              Metric = "mom"
	LatestVsAvg      Metric = "latest_vs_avg"
	LatestVsMax      Metric = "latest_vs_max"
	ThreeMonthsVsAvg Metric = "three_months_vs_avg"
)

// ErrUnknownMetric is returned by ParseMetric for unsupported names.
var ErrUnknownMetric = errors.New("unknown growth metric")

var labels = map[Metric]string{
	YoY:              "YoY",
	MoM:              "MoM",
	LatestVsAvg:      "Latest vs Average",
	LatestVsMax:      "Last Month vs Max",
	ThreeMonthsVsAvg: "Last 3 Months vs Average",
}

// Metrics lists the supported metrics in display order.
func Metrics() []Metric {
	return []Metric{YoY, MoM, LatestVsAvg, LatestVsMax, ThreeMonthsVsAvg}
}

// ParseMetric resolves a metric name case-insensitively.
func ParseMetric(name string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := labels[m]; !ok {
		return "", fmt.Errorf("%w: %q (supported: yoy, mom, latest_vs_avg, latest_vs_max, three_months_vs_avg)", ErrUnknownMetric, name)
	}
	return m, nil
}

// Label is the human readable name used in prompts.
func (m Metric) Label() string {
	return labels[m]
}

// Value selects the metric from computed growth values.
func Value(g core.GrowthMetrics, m Metric) float64 {
	switch m {
	case YoY:
		return g.YoY
	case MoM:
		return g.MoM
	case LatestVsAvg:
		return g.LatestVsAvg
	case LatestVsMax:
		return g.LatestVsMax
	case ThreeMonthsVsAvg:
		return g.ThreeMonthsVsAvg
	}
	return 0
}

// Compute derives all growth metrics from a history ordered oldest to newest.
func Compute(history []float64) core.GrowthMetrics {
	n := len(history)
	latest := at(history, n-1)

	return core.GrowthMetrics{
		YoY:              ratio(latest, at(history, n-13)),
		MoM:              ratio(latest, at(history, n-2)),
		LatestVsAvg:      ratio(latest, mean(history)),
		LatestVsMax:      ratio(latest, maxOf(window(history, 0, n-1))),
		ThreeMonthsVsAvg: ratio(mean(window(history, n-3, n)), mean(window(history, n-24, n-3))),
	}
}

// SumHistories adds histories element-wise. Shorter histories are aligned
// on their newest month.
func SumHistories(histories [][]float64) []float64 {
	n := 0
	for _, h := range histories {
		if len(h) > n {
			n = len(h)
		}
	}
	sum := make([]float64, n)
	for _, h := range histories {
		floats.Add(sum[n-len(h):], h)
	}
	return sum
}

// Rank computes the chosen metric for every idea, keeps those whose growth
// is strictly above minGrowth and sorts them by growth, highest first.
func Rank(ideas []core.KeywordIdea, m Metric, minGrowth float64) []core.IdeaGrowth {
	ranked := make([]core.IdeaGrowth, 0, len(ideas))
	for _, idea := range ideas {
		g := Value(Compute(idea.History()), m)
		if g > minGrowth {
			ranked = append(ranked, core.IdeaGrowth{Text: idea.Text, Growth: g})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Growth != ranked[j].Growth {
			return ranked[i].Growth > ranked[j].Growth
		}
		return ranked[i].Text < ranked[j].Text
	})
	return ranked
}

func ratio(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	r := (value - base) / base
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// at reads h[i], treating out-of-range offsets as 0.
func at(h []float64, i int) float64 {
	if i < 0 || i >= len(h) {
		return 0
	}
	return h[i]
}

// window returns h[from:to] with both bounds clamped to the history.
func window(h []float64, from, to int) []float64 {
	from = min(max(from, 0), len(h))
	to = min(max(to, from), len(h))
	return h[from:to]
}

func mean(h []float64) float64 {
	if len(h) == 0 {
		return 0
	}
	return stat.Mean(h, nil)
}

func maxOf(h []float64) float64 {
	if len(h) == 0 {
		return 0
	}
	return floats.Max(h)
}
