package ads

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"giga/internal/core"
)

// int64Value decodes the Ads REST encoding of int64 fields, which arrive as
// JSON strings, while also accepting plain numbers.
type int64Value int64

func (v *int64Value) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*v = int64Value(n)
	return nil
}

// yearMonth is the API's {year, month} pair with an enum month name.
type yearMonth struct {
	Year  int    `json:"year"`
	Month string `json:"month"`
}

type yearMonthRange struct {
	Start yearMonth `json:"start"`
	End   yearMonth `json:"end"`
}

type historicalMetricsOptions struct {
	IncludeAverageCpc bool           `json:"includeAverageCpc"`
	YearMonthRange    yearMonthRange `json:"yearMonthRange"`
}

// historicalOptions covers lookbackYears of full months ending last month.
func historicalOptions(now time.Time, lookbackYears int) historicalMetricsOptions {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	start := end.AddDate(-lookbackYears, 0, 0)
	return historicalMetricsOptions{
		IncludeAverageCpc: true,
		YearMonthRange: yearMonthRange{
			Start: yearMonth{Year: start.Year(), Month: strings.ToUpper(start.Month().String())},
			End:   yearMonth{Year: end.Year(), Month: strings.ToUpper(end.Month().String())},
		},
	}
}

type monthlySearchVolume struct {
	Year            int64Value `json:"year"`
	Month           string     `json:"month"`
	MonthlySearches int64Value `json:"monthlySearches"`
}

type keywordMetrics struct {
	AvgMonthlySearches   int64Value            `json:"avgMonthlySearches"`
	MonthlySearchVolumes []monthlySearchVolume `json:"monthlySearchVolumes"`
	Competition          string                `json:"competition"`
}

// keywordResult is shared by generateKeywordIdeas (keywordIdeaMetrics) and
// generateKeywordHistoricalMetrics (keywordMetrics).
type keywordResult struct {
	Text               string          `json:"text"`
	KeywordIdeaMetrics *keywordMetrics `json:"keywordIdeaMetrics"`
	KeywordMetrics     *keywordMetrics `json:"keywordMetrics"`
}

func (r keywordResult) toIdea() core.KeywordIdea {
	idea := core.KeywordIdea{Text: r.Text}
	m := r.KeywordIdeaMetrics
	if m == nil {
		m = r.KeywordMetrics
	}
	if m == nil {
		return idea
	}
	idea.AvgMonthlySearches = int64(m.AvgMonthlySearches)
	idea.MonthlySearchVolumes = make([]core.MonthlyVolume, len(m.MonthlySearchVolumes))
	for i, v := range m.MonthlySearchVolumes {
		idea.MonthlySearchVolumes[i] = core.MonthlyVolume{
			Year:     int(v.Year),
			Month:    parseMonth(v.Month),
			Searches: int64(v.MonthlySearches),
		}
	}
	return idea
}

var months = func() map[string]time.Month {
	m := make(map[string]time.Month, 12)
	for i := time.January; i <= time.December; i++ {
		m[strings.ToUpper(i.String())] = i
	}
	return m
}()

// parseMonth maps an enum like "JANUARY" to time.January; unknown values
// yield 0.
func parseMonth(s string) time.Month {
	return months[strings.ToUpper(s)]
}

type keywordsResponse struct {
	Results       []keywordResult `json:"results"`
	NextPageToken string          `json:"nextPageToken"`
}

type searchResponse struct {
	Results       []json.RawMessage `json:"results"`
	NextPageToken string            `json:"nextPageToken"`
}
