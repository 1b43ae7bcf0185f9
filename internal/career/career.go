package career

import (
	"math"
	"sort"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/points"
	"github.com/statline-ff/statline/internal/ranks"
)

// windowYears is how many seasons the trailing career window spans.
const windowYears = 3

const smallSampleGames = 8

// Game is one participating week. Rank is 0 when the week had no positional rank.
type Game struct {
	Week   int
	Points float64
	Rank   int
}

// SeasonGames is a player's participating weeks for one season.
type SeasonGames struct {
	Season int
	Games  []Game
}

type TierCounts struct {
	Tier1    int `json:"tier1"`
	Tier2    int `json:"tier2"`
	Tier3    int `json:"tier3"`
	Bust     int `json:"bust"`
	Unranked int `json:"unranked"`
}

func (c *TierCounts) add(t ranks.Tier) {
	switch t {
	case ranks.Tier1:
		c.Tier1++
	case ranks.Tier2:
		c.Tier2++
	case ranks.Tier3:
		c.Tier3++
	case ranks.Bust:
		c.Bust++
	default:
		c.Unranked++
	}
}

func (c TierCounts) Total() int {
	return c.Tier1 + c.Tier2 + c.Tier3 + c.Bust + c.Unranked
}

type TierPercents struct {
	Tier1Pct float64 `json:"tier1Pct"`
	Tier2Pct float64 `json:"tier2Pct"`
	Tier3Pct float64 `json:"tier3Pct"`
	BustPct  float64 `json:"bustPct"`
}

func percents(c TierCounts, games int) TierPercents {
	return TierPercents{
		Tier1Pct: pct(c.Tier1, games),
		Tier2Pct: pct(c.Tier2, games),
		Tier3Pct: pct(c.Tier3, games),
		BustPct:  pct(c.Bust, games),
	}
}

// SeasonSummary is the per-season line of a player's multi-season table.
type SeasonSummary struct {
	Season        int        `json:"season"`
	GamesPlayed   int        `json:"gamesPlayed"`
	TotalPoints   float64    `json:"totalPoints"`
	PointsPerGame float64    `json:"pointsPerGame"`
	DurabilityPct float64    `json:"durabilityPct"`
	Tiers         TierCounts `json:"tierCounts"`
	SeasonRank    *int       `json:"seasonRank"`
	TierPercents
}

// SummarizeSeason totals one season. Every ratio is zero when no games were played.
func SummarizeSeason(season int, pos model.Position, games []Game) SeasonSummary {
	s := SeasonSummary{Season: season, GamesPlayed: len(games)}
	total := 0.0
	for _, g := range games {
		total += g.Points
		s.Tiers.add(ranks.TierFor(g.Rank, pos))
	}
	s.TotalPoints = points.Round2(total)
	s.PointsPerGame = ratio(total, len(games))
	s.DurabilityPct = pct(len(games), model.MaxGamesPerSeason)
	s.TierPercents = percents(s.Tiers, len(games))
	return s
}

// Profile summarises the trailing window ending at the player's last active season.
type Profile struct {
	ActiveSeason     int        `json:"activeSeason"`
	Seasons          []int      `json:"seasons"`
	PointsPerGame    float64    `json:"pointsPerGame"`
	GamesPlayed      int        `json:"gamesPlayed"`
	MaxPossibleGames int        `json:"maxPossibleGames"`
	DurabilityPct    float64    `json:"durabilityPct"`
	Tiers            TierCounts `json:"tierCounts"`
	TierPercents
	Volatility      float64 `json:"volatility"`
	VolatilityLabel string  `json:"volatilityLabel"`
	SmallSampleFlag bool    `json:"smallSampleFlag"`
}

// ActiveSeason is the latest season with at least one game, or 0.
func ActiveSeason(seasons []SeasonGames) int {
	active := 0
	for _, s := range seasons {
		if len(s.Games) > 0 && s.Season > active {
			active = s.Season
		}
	}
	return active
}

// BuildProfile pools the player's games over the trailing window. It returns
// nil when fewer than two seasons in the window have games.
func BuildProfile(pos model.Position, seasons []SeasonGames) *Profile {
	active := ActiveSeason(seasons)
	if active == 0 {
		return nil
	}

	window := make([]SeasonGames, 0, windowYears)
	for _, s := range seasons {
		if len(s.Games) == 0 {
			continue
		}
		if s.Season <= active && s.Season > active-windowYears {
			window = append(window, s)
		}
	}
	if len(window) < 2 {
		return nil
	}
	sort.Slice(window, func(i, j int) bool { return window[i].Season > window[j].Season })

	p := &Profile{ActiveSeason: active}
	values := make([]float64, 0, len(window)*model.MaxGamesPerSeason)
	for _, s := range window {
		p.Seasons = append(p.Seasons, s.Season)
		for _, g := range s.Games {
			values = append(values, g.Points)
			p.Tiers.add(ranks.TierFor(g.Rank, pos))
		}
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	p.GamesPlayed = len(values)
	p.MaxPossibleGames = len(window) * model.MaxGamesPerSeason
	p.PointsPerGame = ratio(total, p.GamesPlayed)
	p.DurabilityPct = pct(p.GamesPlayed, p.MaxPossibleGames)
	p.TierPercents = percents(p.Tiers, p.GamesPlayed)
	// Left unrounded: the label bands and the zero check apply to the exact stdev.
	p.Volatility = SampleStdDev(values)
	p.VolatilityLabel = VolatilityLabel(p.Volatility)
	p.SmallSampleFlag = p.GamesPlayed < smallSampleGames
	return p
}

// SampleStdDev uses the n-1 divisor and is 0 for fewer than two values.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0
	}
	return sd
}

func VolatilityLabel(v float64) string {
	switch {
	case v < 6:
		return "Low"
	case v < 9:
		return "Moderate"
	default:
		return "High"
	}
}

func ratio(total float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return points.Round2(total / float64(n))
}

func pct(count int, of int) float64 {
	if of <= 0 {
		return 0
	}
	return points.Round2(float64(count) / float64(of) * 100)
}
