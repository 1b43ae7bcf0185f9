package ranks

import "github.com/statline-ff/statline/internal/model"

// Tables is everything derived from one season under one scoring format.
type Tables struct {
	Season  int
	Format  model.Format
	Scored  []Scored
	Weekly  PositionRankTable
	Seasons map[string]SeasonRank
	Defense OpponentDefenseRankTable
}

// Build scores the season once and derives all rank tables from it.
func Build(log model.SeasonLog, positions map[string]model.Position, format model.Format) *Tables {
	return FromScored(log.Season, format, Score(log.Entries, positions, format))
}

// FromScored derives the rank tables from already-scored weeks.
func FromScored(season int, format model.Format, scored []Scored) *Tables {
	return &Tables{
		Season:  season,
		Format:  format,
		Scored:  scored,
		Weekly:  BuildWeekly(scored),
		Seasons: BuildSeasonRanks(scored),
		Defense: BuildOpponent(scored),
	}
}

// WeekRow is one line of a weekly positional leaderboard.
type WeekRow struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Opponent string  `json:"opponent,omitempty"`
	Points   float64 `json:"points"`
}

// Leaderboard returns the ranked rows for one (week, position) bucket.
func (t *Tables) Leaderboard(week int, pos model.Position) []WeekRow {
	rows := make([]Scored, 0)
	for _, s := range t.Scored {
		if s.Week == week && s.Position == pos {
			rows = append(rows, s)
		}
	}
	sortByPoints(rows)
	out := make([]WeekRow, 0, len(rows))
	for i, r := range rows {
		out = append(out, WeekRow{Rank: i + 1, PlayerID: r.PlayerID, Opponent: r.Opponent, Points: r.Points})
	}
	return out
}
