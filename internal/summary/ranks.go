package summary

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/ranks"
	"github.com/statline-ff/statline/internal/store"
)

type WeekBucket struct {
	Week     int             `json:"week"`
	Position model.Position  `json:"position"`
	Rows     []ranks.WeekRow `json:"rows"`
}

// RankSummary is the derived document for one (season, format).
type RankSummary struct {
	Season         int                                    `json:"season"`
	Format         model.Format                           `json:"format"`
	GeneratedAtUTC string                                 `json:"generated_at_utc"`
	Weeks          []WeekBucket                           `json:"weeks"`
	SeasonRanks    []ranks.SeasonRank                     `json:"season_ranks"`
	Defense        map[model.Position][]ranks.DefenseRank `json:"defense"`
}

func RankSummaryPath(season int, format model.Format) string {
	return fmt.Sprintf("ranks/%d/%s.json", season, format)
}

func BuildRankSummary(t *ranks.Tables) RankSummary {
	out := RankSummary{
		Season:         t.Season,
		Format:         t.Format,
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Weeks:          make([]WeekBucket, 0),
		SeasonRanks:    make([]ranks.SeasonRank, 0, len(t.Seasons)),
		Defense:        make(map[model.Position][]ranks.DefenseRank),
	}

	for week := 1; week <= model.MaxWeek; week++ {
		for _, pos := range model.RankedPositions {
			rows := t.Leaderboard(week, pos)
			if len(rows) == 0 {
				continue
			}
			out.Weeks = append(out.Weeks, WeekBucket{Week: week, Position: pos, Rows: rows})
		}
	}

	for _, sr := range t.Seasons {
		out.SeasonRanks = append(out.SeasonRanks, sr)
	}
	posOrder := make(map[model.Position]int, len(model.RankedPositions))
	for i, p := range model.RankedPositions {
		posOrder[p] = i
	}
	sort.Slice(out.SeasonRanks, func(i, j int) bool {
		a, b := out.SeasonRanks[i], out.SeasonRanks[j]
		if a.Position != b.Position {
			return posOrder[a.Position] < posOrder[b.Position]
		}
		return a.Rank < b.Rank
	})

	for _, pos := range model.RankedPositions {
		if rows := t.Defense.Sorted(pos); len(rows) > 0 {
			out.Defense[pos] = rows
		}
	}
	return out
}

// Tables rebuilds the rank tables from the stored weekly rows.
func (s RankSummary) Tables() *ranks.Tables {
	scored := make([]ranks.Scored, 0)
	for _, b := range s.Weeks {
		for _, r := range b.Rows {
			scored = append(scored, ranks.Scored{
				PlayerID: r.PlayerID,
				Position: b.Position,
				Week:     b.Week,
				Opponent: r.Opponent,
				Points:   r.Points,
			})
		}
	}
	return ranks.FromScored(s.Season, s.Format, scored)
}

func WriteRankSummary(st *store.JSONStore, s RankSummary) error {
	return WriteJSON(st, RankSummaryPath(s.Season, s.Format), s)
}

func LoadRankSummary(st *store.JSONStore, season int, format model.Format) (*RankSummary, error) {
	raw, err := st.ReadRaw(RankSummaryPath(season, format))
	if err != nil {
		return nil, err
	}
	var out RankSummary
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", RankSummaryPath(season, format), err)
	}
	return &out, nil
}

func WriteJSON(st *store.JSONStore, rel string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return st.WriteRaw(rel, b, false)
}
