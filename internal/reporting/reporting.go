// Package reporting queries Google Ads performance reports: search terms
// that are new in a recent window and the best performing search ads.
package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"giga/internal/core"
	"giga/internal/logger"
)

const (
	DefaultMetric          = "clicks"
	DefaultMetricThreshold = 100
	DefaultLimit           = 10000

	dateLayout = "2006-01-02"
)

// ErrInvalidMetric is returned for metric names that are not GAQL field names.
var ErrInvalidMetric = errors.New("invalid metric name")

// Searcher runs GAQL queries. *ads.Client implements it.
type Searcher interface {
	Search(ctx context.Context, customerID, query string) ([]json.RawMessage, error)
}

// DateRange is the half-open day range [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Clause renders the range as a GAQL segments.date condition.
func (r DateRange) Clause() string {
	return fmt.Sprintf(`segments.date >= "%s" AND segments.date < "%s"`, r.Start.Format(dateLayout), r.End.Format(dateLayout))
}

// Days is the number of calendar days covered.
func (r DateRange) Days() int {
	return int(calendarDay(r.End).Sub(calendarDay(r.Start)).Hours() / 24)
}

// calendarDay moves t's date to UTC midnight so day arithmetic ignores
// daylight saving shifts.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(dateLayout), r.End.Format(dateLayout))
}

// Windows returns the recent window of the last recentDays full days and the
// baseline window of baselineDays immediately before it. Today is excluded.
func Windows(now time.Time, recentDays, baselineDays int) (recent, baseline DateRange) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	middle := today.AddDate(0, 0, -recentDays)
	recent = DateRange{Start: middle, End: today}
	baseline = DateRange{Start: middle.AddDate(0, 0, -baselineDays), End: middle}
	return recent, baseline
}

// Diff returns the terms of recent missing from baseline, sorted.
func Diff(recent, baseline core.SearchTermSet) []string {
	return recent.Diff(baseline).Sorted()
}

// Engine builds and runs the report queries.
type Engine struct {
	searcher  Searcher
	now       func() time.Time
	metric    string
	threshold int
	limit     int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock sets the clock windows are computed from.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetric sets the metric search terms must exceed threshold on.
func WithMetric(metric string, threshold int) Option {
	return func(e *Engine) {
		e.metric = metric
		e.threshold = threshold
	}
}

// WithLimit caps the rows of a search term report.
func WithLimit(limit int) Option {
	return func(e *Engine) { e.limit = limit }
}

// NewEngine creates a report engine on top of searcher.
func NewEngine(searcher Searcher, opts ...Option) *Engine {
	e := &Engine{
		searcher:  searcher,
		now:       time.Now,
		metric:    DefaultMetric,
		threshold: DefaultMetricThreshold,
		limit:     DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var fieldName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func checkMetric(metric string) error {
	if !fieldName.MatchString(metric) {
		return fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}
	return nil
}

type searchTermRow struct {
	SearchTermView struct {
		SearchTerm string `json:"searchTerm"`
	} `json:"searchTermView"`
}

// SearchTerms returns the deduplicated search terms of r whose metric is
// above the engine threshold.
func (e *Engine) SearchTerms(ctx context.Context, customerID string, r DateRange) (core.SearchTermSet, error) {
	if err := checkMetric(e.metric); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT
  search_term_view.search_term,
  metrics.%[1]s
FROM search_term_view
WHERE %[2]s
  AND search_term_view.search_term != ''
  AND metrics.%[1]s > %[3]d
ORDER BY metrics.%[1]s DESC
LIMIT %[4]d`, e.metric, r.Clause(), e.threshold, e.limit)

	rows, err := e.searcher.Search(ctx, customerID, query)
	if err != nil {
		return nil, fmt.Errorf("search term report %s: %w", r, err)
	}
	terms := core.NewSearchTermSet()
	for _, raw := range rows {
		var row searchTermRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode search term row: %w", err)
		}
		if row.SearchTermView.SearchTerm != "" {
			terms.Add(row.SearchTermView.SearchTerm)
		}
	}
	logger.Debug("Fetched search terms", "window", r.String(), "terms", len(terms))
	return terms, nil
}

// NewSearchTerms returns the search terms of the last recentDays days that
// did not occur in the baselineDays before. With baselineDays 0 every term of
// the recent window is returned.
func (e *Engine) NewSearchTerms(ctx context.Context, customerID string, recentDays, baselineDays int) ([]string, error) {
	recent, baseline := Windows(e.now(), recentDays, baselineDays)

	recentTerms, err := e.SearchTerms(ctx, customerID, recent)
	if err != nil {
		return nil, err
	}
	if baselineDays == 0 {
		return recentTerms.Sorted(), nil
	}
	baselineTerms, err := e.SearchTerms(ctx, customerID, baseline)
	if err != nil {
		return nil, err
	}

	diff := Diff(recentTerms, baselineTerms)
	logger.Info("Compared search term windows",
		"recent", recent.String(), "recent_days", recent.Days(), "recent_terms", len(recentTerms),
		"baseline", baseline.String(), "baseline_days", baseline.Days(), "baseline_terms", len(baselineTerms),
		"new_terms", len(diff))
	return diff, nil
}

type textAsset struct {
	Text string `json:"text"`
}

type adRow struct {
	AdGroup struct {
		ID json.Number `json:"id"`
	} `json:"adGroup"`
	AdGroupAd struct {
		Ad struct {
			ResponsiveSearchAd struct {
				Headlines    []textAsset `json:"headlines"`
				Descriptions []textAsset `json:"descriptions"`
			} `json:"responsiveSearchAd"`
		} `json:"ad"`
	} `json:"adGroupAd"`
}

type keywordRow struct {
	AdGroup struct {
		ID json.Number `json:"id"`
	} `json:"adGroup"`
	AdGroupCriterion struct {
		Keyword struct {
			Text string `json:"text"`
		} `json:"keyword"`
	} `json:"adGroupCriterion"`
}

func texts(assets []textAsset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Text
	}
	return out
}

// TopPerformingAds returns the topN enabled responsive search ads ranked by
// metric over the last lookbackDays, each with the broad match keywords of
// its ad group.
func (e *Engine) TopPerformingAds(ctx context.Context, customerID string, topN, lookbackDays int, metric string) ([]core.AdExample, error) {
	if metric == "" {
		metric = DefaultMetric
	}
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	window, _ := Windows(e.now(), lookbackDays, 0)

	adsQuery := fmt.Sprintf(`SELECT
  ad_group.id,
  ad_group_ad.ad.id,
  ad_group_ad.ad.responsive_search_ad.headlines,
  ad_group_ad.ad.responsive_search_ad.descriptions,
  ad_group_ad.ad_strength,
  metrics.%[1]s
FROM ad_group_ad
WHERE campaign.advertising_channel_type = 'SEARCH'
  AND ad_group_ad.ad.type = 'RESPONSIVE_SEARCH_AD'
  AND %[2]s
  AND ad_group_ad.status = 'ENABLED'
  AND ad_group.status = 'ENABLED'
  AND campaign.status = 'ENABLED'
ORDER BY metrics.%[1]s DESC
LIMIT %[3]d`, metric, window.Clause(), topN)

	rows, err := e.searcher.Search(ctx, customerID, adsQuery)
	if err != nil {
		return nil, fmt.Errorf("top ads report: %w", err)
	}

	ads := make([]core.AdExample, 0, len(rows))
	var groupIDs []string
	seen := make(map[string]bool)
	for _, raw := range rows {
		var row adRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode ad row: %w", err)
		}
		id := row.AdGroup.ID.String()
		rsa := row.AdGroupAd.Ad.ResponsiveSearchAd
		ads = append(ads, core.AdExample{
			AdGroupID:    id,
			Headlines:    texts(rsa.Headlines),
			Descriptions: texts(rsa.Descriptions),
		})
		if !seen[id] {
			seen[id] = true
			groupIDs = append(groupIDs, id)
		}
	}
	if len(groupIDs) == 0 {
		return ads, nil
	}

	keywords, err := e.adGroupKeywords(ctx, customerID, groupIDs, window)
	if err != nil {
		return nil, err
	}
	for i := range ads {
		ads[i].Keywords = keywords[ads[i].AdGroupID]
	}
	return ads, nil
}

// adGroupKeywords maps ad group IDs to their broad match keywords.
func (e *Engine) adGroupKeywords(ctx context.Context, customerID string, groupIDs []string, window DateRange) (map[string][]string, error) {
	query := fmt.Sprintf(`SELECT
  ad_group_criterion.keyword.text,
  ad_group.id
FROM keyword_view
WHERE ad_group.id IN (%s)
  AND ad_group_criterion.status != 'REMOVED'
  AND %s
  AND ad_group_criterion.keyword.match_type = 'BROAD'`, strings.Join(groupIDs, ","), window.Clause())

	rows, err := e.searcher.Search(ctx, customerID, query)
	if err != nil {
		return nil, fmt.Errorf("keyword report: %w", err)
	}
	out := make(map[string][]string, len(groupIDs))
	for _, raw := range rows {
		var row keywordRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode keyword row: %w", err)
		}
		id := row.AdGroup.ID.String()
		out[id] = append(out[id], row.AdGroupCriterion.Keyword.Text)
	}
	return out, nil
}
