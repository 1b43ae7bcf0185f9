package reconcile

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/points"
)

// tolerance absorbs provider rounding.
const tolerance = 0.01

type Mismatch struct {
	PlayerID string         `json:"player_id"`
	Position model.Position `json:"position"`
	Week     int            `json:"week"`
	Provider float64        `json:"provider_pts_ppr"`
	Computed float64        `json:"computed_pts_ppr"`
	Diff     float64        `json:"diff"`
}

type Report struct {
	Season          int        `json:"season"`
	GeneratedAtUTC  string     `json:"generated_at_utc"`
	EntriesChecked  int        `json:"entries_checked"`
	ProviderPointed int        `json:"entries_with_provider_points"`
	UnknownPlayers  []string   `json:"unknown_players"`
	Mismatches      []Mismatch `json:"mismatches"`
}

func ReportPath(season int) string {
	return fmt.Sprintf("reconcile/%d.json", season)
}

// BuildReport compares provider-shipped PPR points with the baseline formula.
// Kicker weeks disagree by design, since the baseline ignores kicking.
func BuildReport(log model.SeasonLog, positions map[string]model.Position) *Report {
	r := &Report{
		Season:         log.Season,
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		UnknownPlayers: make([]string, 0),
		Mismatches:     make([]Mismatch, 0),
	}
	unknown := make(map[string]bool)

	for _, e := range log.Entries {
		r.EntriesChecked++
		pos, ok := positions[e.PlayerID]
		if !ok {
			if !unknown[e.PlayerID] {
				unknown[e.PlayerID] = true
				r.UnknownPlayers = append(r.UnknownPlayers, e.PlayerID)
			}
			continue
		}
		provided, ok := e.Stats.Lookup("pts_ppr")
		if !ok {
			continue
		}
		r.ProviderPointed++
		computed := points.IngestionPoints(points.Extract(e.Stats, pos))
		diff := points.Round2(provided - computed)
		if math.Abs(diff) <= tolerance {
			continue
		}
		r.Mismatches = append(r.Mismatches, Mismatch{
			PlayerID: e.PlayerID,
			Position: pos,
			Week:     e.Week,
			Provider: provided,
			Computed: computed,
			Diff:     diff,
		})
	}

	sort.Strings(r.UnknownPlayers)
	sort.Slice(r.Mismatches, func(i, j int) bool {
		a, b := r.Mismatches[i], r.Mismatches[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.PlayerID < b.PlayerID
	})
	return r
}
