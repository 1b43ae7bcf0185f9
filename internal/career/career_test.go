package career

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/statline-ff/statline/internal/model"
)

func games(pts []float64, rks []int) []Game {
	out := make([]Game, len(pts))
	for i := range pts {
		out[i] = Game{Week: i + 1, Points: pts[i], Rank: rks[i]}
	}
	return out
}

// ---------------------------------------------------------------------------
// SummarizeSeason
// ---------------------------------------------------------------------------

func TestSummarizeSeason_QuarterbackScenario(t *testing.T) {
	g := games([]float64{20, 10, 30, 0}, []int{5, 20, 2, 25})
	s := SummarizeSeason(2024, model.QB, g)

	want := TierCounts{Tier1: 2, Tier2: 0, Tier3: 0, Bust: 2}
	if s.Tiers != want {
		t.Errorf("Tiers = %+v, want %+v", s.Tiers, want)
	}
	if s.PointsPerGame != 15 {
		t.Errorf("PointsPerGame = %v, want 15", s.PointsPerGame)
	}
	if s.Tier1Pct != 50 || s.BustPct != 50 {
		t.Errorf("pcts = %+v, want tier1 50 bust 50", s.TierPercents)
	}
	sd := SampleStdDev([]float64{20, 10, 30, 0})
	if math.Abs(sd-math.Sqrt(500.0/3)) > 1e-9 {
		t.Errorf("SampleStdDev = %v, want sqrt(500/3)", sd)
	}
	if VolatilityLabel(sd) != "High" {
		t.Errorf("label = %s, want High", VolatilityLabel(sd))
	}
}

func TestSummarizeSeason_ZeroGames(t *testing.T) {
	s := SummarizeSeason(2022, model.WR, nil)
	if s.GamesPlayed != 0 || s.PointsPerGame != 0 || s.DurabilityPct != 0 {
		t.Errorf("zero season = %+v", s)
	}
	if s.TierPercents != (TierPercents{}) {
		t.Errorf("TierPercents = %+v, want zeros", s.TierPercents)
	}
	if _, err := json.Marshal(s); err != nil {
		t.Errorf("json.Marshal: %v (NaN/Inf likely present)", err)
	}
}

func TestSummarizeSeason_TierCountsExhaustive(t *testing.T) {
	rks := []int{1, 12, 13, 24, 25, 36, 37, 0, 0, 99, 3}
	pts := make([]float64, len(rks))
	for _, pos := range []model.Position{model.QB, model.RB, model.WR, model.TE, model.K} {
		s := SummarizeSeason(2024, pos, games(pts, rks))
		if s.Tiers.Total() != s.GamesPlayed {
			t.Errorf("%s: tier total %d != games %d", pos, s.Tiers.Total(), s.GamesPlayed)
		}
		if s.Tiers.Unranked != 2 {
			t.Errorf("%s: unranked = %d, want 2", pos, s.Tiers.Unranked)
		}
	}
}

func TestSummarizeSeason_Durability(t *testing.T) {
	pts := make([]float64, 17)
	rks := make([]int, 17)
	s := SummarizeSeason(2024, model.RB, games(pts, rks))
	if s.DurabilityPct != 100 {
		t.Errorf("DurabilityPct = %v, want 100", s.DurabilityPct)
	}
}

// ---------------------------------------------------------------------------
// SampleStdDev / VolatilityLabel
// ---------------------------------------------------------------------------

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{14}, 0},
		{"AllEqual", []float64{7.5, 7.5, 7.5}, 0},
		{"Pair", []float64{10, 20}, math.Sqrt(50)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SampleStdDev(tc.values)
			if got < 0 {
				t.Fatalf("SampleStdDev = %v, negative", got)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("SampleStdDev = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVolatilityLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "Low"},
		{5.99, "Low"},
		{6, "Moderate"},
		{8.99, "Moderate"},
		{9, "High"},
		{20, "High"},
	}
	for _, tc := range tests {
		if got := VolatilityLabel(tc.v); got != tc.want {
			t.Errorf("VolatilityLabel(%v) = %s, want %s", tc.v, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// BuildProfile
// ---------------------------------------------------------------------------

func TestBuildProfile_NoGames(t *testing.T) {
	p := BuildProfile(model.WR, []SeasonGames{{Season: 2024}, {Season: 2023}})
	if p != nil {
		t.Errorf("profile = %+v, want nil", p)
	}
}

func TestBuildProfile_SingleSeasonOnly(t *testing.T) {
	p := BuildProfile(model.WR, []SeasonGames{
		{Season: 2024, Games: games([]float64{10, 12}, []int{3, 4})},
		{Season: 2023},
	})
	if p != nil {
		t.Errorf("profile = %+v, want nil for one qualifying season", p)
	}
}

func TestBuildProfile_WindowEndsAtActiveSeason(t *testing.T) {
	seasons := []SeasonGames{
		{Season: 2025}, // no games: not the active season
		{Season: 2024, Games: games([]float64{20, 10}, []int{5, 20})},
		{Season: 2023, Games: games([]float64{30, 0}, []int{2, 25})},
		{Season: 2021, Games: games([]float64{50}, []int{1})}, // outside the window
	}
	p := BuildProfile(model.QB, seasons)
	if p == nil {
		t.Fatal("profile is nil")
	}
	if p.ActiveSeason != 2024 {
		t.Errorf("ActiveSeason = %d, want 2024", p.ActiveSeason)
	}
	if len(p.Seasons) != 2 || p.Seasons[0] != 2024 || p.Seasons[1] != 2023 {
		t.Errorf("Seasons = %v, want [2024 2023]", p.Seasons)
	}
	if p.GamesPlayed != 4 || p.MaxPossibleGames != 34 {
		t.Errorf("games = %d/%d, want 4/34", p.GamesPlayed, p.MaxPossibleGames)
	}
	if p.PointsPerGame != 15 {
		t.Errorf("PointsPerGame = %v, want 15", p.PointsPerGame)
	}
	if math.Abs(p.Volatility-12.9099) > 0.0001 || p.VolatilityLabel != "High" {
		t.Errorf("volatility = %v %s, want 12.9099 High", p.Volatility, p.VolatilityLabel)
	}
	if p.Tiers.Tier1 != 2 || p.Tiers.Bust != 2 {
		t.Errorf("Tiers = %+v", p.Tiers)
	}
	if p.Tier1Pct != 50 || p.BustPct != 50 {
		t.Errorf("pooled pcts = %+v", p.TierPercents)
	}
	if p.DurabilityPct != 11.76 {
		t.Errorf("DurabilityPct = %v, want 11.76", p.DurabilityPct)
	}
	if !p.SmallSampleFlag {
		t.Error("SmallSampleFlag should be set for 4 games")
	}
}

func TestBuildProfile_PoolsCountsNotAverages(t *testing.T) {
	// 2024: 1 game tier1; 2023: 3 games bust. Pooled tier1 = 25%, not (100+0)/2.
	seasons := []SeasonGames{
		{Season: 2024, Games: games([]float64{25}, []int{1})},
		{Season: 2023, Games: games([]float64{2, 3, 4}, []int{40, 40, 40})},
	}
	p := BuildProfile(model.WR, seasons)
	if p == nil {
		t.Fatal("profile is nil")
	}
	if p.Tier1Pct != 25 || p.BustPct != 75 {
		t.Errorf("pcts = %+v, want tier1 25 bust 75", p.TierPercents)
	}
}

func TestBuildProfile_LargeSampleNotFlagged(t *testing.T) {
	pts := []float64{10, 10, 10, 10, 10}
	rks := []int{1, 1, 1, 1, 1}
	p := BuildProfile(model.TE, []SeasonGames{
		{Season: 2023, Games: games(pts, rks)},
		{Season: 2022, Games: games(pts, rks)},
	})
	if p == nil {
		t.Fatal("profile is nil")
	}
	if p.SmallSampleFlag {
		t.Error("SmallSampleFlag set for 10 games")
	}
	if p.Volatility != 0 || p.VolatilityLabel != "Low" {
		t.Errorf("volatility = %v %s, want 0 Low", p.Volatility, p.VolatilityLabel)
	}
}

func TestBuildProfile_VolatilityLabelUsesExactStdDev(t *testing.T) {
	// Sample stdev of [0, 10, 17.96] is 8.99929, which would round to 9.00.
	p := BuildProfile(model.WR, []SeasonGames{
		{Season: 2024, Games: games([]float64{0, 10}, []int{10, 10})},
		{Season: 2023, Games: games([]float64{17.96}, []int{10})},
	})
	if p == nil {
		t.Fatal("profile is nil")
	}
	if p.Volatility >= 9 || math.Abs(p.Volatility-8.99929) > 0.00001 {
		t.Errorf("Volatility = %v, want 8.99929 unrounded", p.Volatility)
	}
	if p.VolatilityLabel != "Moderate" {
		t.Errorf("VolatilityLabel = %s, want Moderate", p.VolatilityLabel)
	}
}

func TestBuildProfile_TinySpreadIsNotZeroVolatility(t *testing.T) {
	pts := make([]float64, 0, 17)
	rks := make([]int, 0, 17)
	for i := 0; i < 16; i++ {
		pts = append(pts, 10)
		rks = append(rks, 5)
	}
	pts = append(pts, 10.01)
	rks = append(rks, 5)
	p := BuildProfile(model.RB, []SeasonGames{
		{Season: 2024, Games: games(pts, rks)},
		{Season: 2023, Games: games([]float64{10}, []int{5})},
	})
	if p == nil {
		t.Fatal("profile is nil")
	}
	if p.Volatility <= 0 {
		t.Errorf("Volatility = %v, want > 0 when values differ", p.Volatility)
	}
	if p.VolatilityLabel != "Low" {
		t.Errorf("VolatilityLabel = %s, want Low", p.VolatilityLabel)
	}
}

func TestBuildProfile_TierPercentsRoundPerTier(t *testing.T) {
	// One tier1, one tier2, one bust: each share rounds to 33.33 on its own.
	p := BuildProfile(model.WR, []SeasonGames{
		{Season: 2024, Games: games([]float64{20, 12}, []int{3, 15})},
		{Season: 2023, Games: games([]float64{2}, []int{40})},
	})
	if p == nil {
		t.Fatal("profile is nil")
	}
	if p.Tier1Pct != 33.33 || p.Tier2Pct != 33.33 || p.BustPct != 33.33 {
		t.Errorf("pcts = %+v, want 33.33 each", p.TierPercents)
	}
	if p.Tiers.Total() != p.GamesPlayed {
		t.Errorf("tier counts %d != games %d", p.Tiers.Total(), p.GamesPlayed)
	}
	sum := p.Tier1Pct + p.Tier2Pct + p.Tier3Pct + p.BustPct
	if math.Abs(sum-100) > 0.02 {
		t.Errorf("pct sum = %v, want within 0.02 of 100", sum)
	}
}
