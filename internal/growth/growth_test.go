package growth

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"giga/internal/core"
)

func repeat(v float64, n int) []float64 {
	h := make([]float64, n)
	for i := range h {
		h[i] = v
	}
	return h
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeYoY(t *testing.T) {
	history := append(repeat(100, 12), 200)

	got := Compute(history)
	if !approx(got.YoY, 1.0) {
		t.Errorf("Expected yoy 1.0, got %v", got.YoY)
	}
	if !approx(got.MoM, 1.0) {
		t.Errorf("Expected mom 1.0, got %v", got.MoM)
	}
	if !approx(got.LatestVsMax, 1.0) {
		t.Errorf("Expected latest vs max 1.0 (max excludes latest), got %v", got.LatestVsMax)
	}
}

func TestComputeMoMZeroDenominator(t *testing.T) {
	if got := Compute([]float64{50, 0}).MoM; !approx(got, -1.0) {
		t.Errorf("Expected mom -1.0 for [50 0], got %v", got)
	}
	if got := Compute([]float64{0, 50}).MoM; got != 0 {
		t.Errorf("Expected mom 0 for [0 50], got %v", got)
	}
}

func TestComputeYoYRequiresThirteenMonths(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		want    float64
	}{
		{"twelve months", repeat(10, 12), 0},
		{"thirteen months", append([]float64{10}, repeat(15, 12)...), 0.5},
		{"zero a year ago", append([]float64{0}, repeat(15, 12)...), 0},
		{"twenty four months", append(repeat(1, 11), append([]float64{40}, repeat(20, 12)...)...), -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.history).YoY; !approx(got, tt.want) {
				t.Errorf("yoy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLatestVsAvg(t *testing.T) {
	got := Compute([]float64{10, 20, 30}).LatestVsAvg
	if !approx(got, 0.5) {
		t.Errorf("Expected (30-20)/20 = 0.5, got %v", got)
	}
}

func TestComputeThreeMonthsVsAvg(t *testing.T) {
	// 21 baseline months averaging 10, last three averaging 20.
	history := append(repeat(10, 21), 15, 20, 25)
	if got := Compute(history).ThreeMonthsVsAvg; !approx(got, 1.0) {
		t.Errorf("Expected 1.0, got %v", got)
	}

	// Months older than the 24 month window do not count.
	longer := append([]float64{1000, 1000}, history...)
	if got := Compute(longer).ThreeMonthsVsAvg; !approx(got, 1.0) {
		t.Errorf("Expected months before the window to be ignored, got %v", got)
	}

	// Shorter histories use what is available.
	short := []float64{10, 10, 30, 30, 30}
	if got := Compute(short).ThreeMonthsVsAvg; !approx(got, 2.0) {
		t.Errorf("Expected (30-10)/10 = 2.0, got %v", got)
	}

	// No baseline months at all.
	if got := Compute([]float64{5, 6}).ThreeMonthsVsAvg; got != 0 {
		t.Errorf("Expected 0 without baseline months, got %v", got)
	}
}

func TestComputeNeverReturnsNaN(t *testing.T) {
	histories := [][]float64{
		nil,
		{},
		{0},
		{7},
		{0, 0, 0},
		repeat(0, 30),
		{math.MaxFloat64, math.MaxFloat64},
		append(repeat(0, 20), 1, 2, 3, 4),
	}

	for _, h := range histories {
		g := Compute(h)
		for _, v := range []float64{g.YoY, g.MoM, g.LatestVsAvg, g.LatestVsMax, g.ThreeMonthsVsAvg} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("Compute(%v) produced non-finite value: %+v", h, g)
			}
		}
	}
}

func TestSumHistories(t *testing.T) {
	got := SumHistories([][]float64{{1, 2, 3}, {10, 20, 30}, {100}})
	want := []float64{11, 22, 133}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := SumHistories(nil); len(got) != 0 {
		t.Errorf("Expected empty sum, got %v", got)
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics() {
		got, err := ParseMetric(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMetric(%q) = %q, %v", m, got, err)
		}
		if m.Label() == "" {
			t.Errorf("Metric %q has no label", m)
		}
	}

	if got, err := ParseMetric(" YoY "); err != nil || got != YoY {
		t.Errorf("Expected case-insensitive parse, got %q, %v", got, err)
	}

	if _, err := ParseMetric("velocity"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("Expected ErrUnknownMetric, got %v", err)
	}
}

func TestValueMatchesCompute(t *testing.T) {
	g := core.GrowthMetrics{YoY: 1, MoM: 2, LatestVsAvg: 3, LatestVsMax: 4, ThreeMonthsVsAvg: 5}
	want := map[Metric]float64{YoY: 1, MoM: 2, LatestVsAvg: 3, LatestVsMax: 4, ThreeMonthsVsAvg: 5}
	for m, v := range want {
		if got := Value(g, m); got != v {
			t.Errorf("Value(%s) = %v, want %v", m, got, v)
		}
	}
}

func idea(text string, volumes ...int64) core.KeywordIdea {
	k := core.KeywordIdea{Text: text}
	for _, v := range volumes {
		k.MonthlySearchVolumes = append(k.MonthlySearchVolumes, core.MonthlyVolume{Searches: v})
	}
	return k
}

func TestRank(t *testing.T) {
	ideas := []core.KeywordIdea{
		idea("flat", 100, 100),
		idea("double", 100, 200),
		idea("triple", 100, 300),
		idea("slight", 100, 105),
		idea("also double", 50, 100),
	}

	got := Rank(ideas, MoM, 0.1)
	want := []core.IdeaGrowth{
		{Text: "triple", Growth: 2},
		{Text: "also double", Growth: 1},
		{Text: "double", Growth: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank = %+v, want %+v", got, want)
	}
}
