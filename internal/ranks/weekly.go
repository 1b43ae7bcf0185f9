package ranks

import (
	"sort"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/points"
)

// Scored is a participating week ready for ranking.
type Scored struct {
	PlayerID string
	Position model.Position
	Week     int
	Opponent string
	Points   float64
}

type playerWeek struct {
	playerID string
	week     int
}

// Score extracts and scores every participating entry of the log. Entries for
// players missing from positions, or at a position that is not aggregated,
// are dropped. A repeated (player, week) keeps the first entry.
func Score(entries []model.WeeklyStatEntry, positions map[string]model.Position, format model.Format) []Scored {
	out := make([]Scored, 0, len(entries))
	seen := make(map[playerWeek]bool, len(entries))
	for _, e := range entries {
		pos, ok := positions[e.PlayerID]
		if !ok || !pos.Aggregated() {
			continue
		}
		if e.Week < 1 || e.Week > model.MaxWeek {
			continue
		}
		k := playerWeek{playerID: e.PlayerID, week: e.Week}
		if seen[k] {
			continue
		}
		seen[k] = true
		st := points.Extract(e.Stats, pos)
		if !points.HasParticipation(st, pos) {
			continue
		}
		opp := ""
		if e.HasOpponent() {
			opp = e.Opponent
		}
		out = append(out, Scored{
			PlayerID: e.PlayerID,
			Position: pos,
			Week:     e.Week,
			Opponent: opp,
			Points:   points.FantasyPoints(st, format),
		})
	}
	return out
}

type bucketKey struct {
	week int
	pos  model.Position
}

// PositionRankTable holds weekly positional ranks: player id -> week -> rank.
type PositionRankTable map[string]map[int]int

func (t PositionRankTable) Rank(playerID string, week int) (int, bool) {
	weeks, ok := t[playerID]
	if !ok {
		return 0, false
	}
	r, ok := weeks[week]
	return r, ok
}

// BuildWeekly ranks every (week, position) bucket by points, best first.
// Equal points fall back to player id so the order never depends on input order.
func BuildWeekly(scored []Scored) PositionRankTable {
	buckets := make(map[bucketKey][]Scored)
	for _, s := range scored {
		k := bucketKey{week: s.Week, pos: s.Position}
		buckets[k] = append(buckets[k], s)
	}

	table := make(PositionRankTable)
	for _, rows := range buckets {
		sortByPoints(rows)
		for i, r := range rows {
			weeks, ok := table[r.PlayerID]
			if !ok {
				weeks = make(map[int]int)
				table[r.PlayerID] = weeks
			}
			weeks[r.Week] = i + 1
		}
	}
	return table
}

// SeasonRank is a player's standing at their position on season totals.
type SeasonRank struct {
	PlayerID    string         `json:"player_id"`
	Position    model.Position `json:"position"`
	Rank        int            `json:"rank"`
	TotalPoints float64        `json:"total_points"`
	Games       int            `json:"games"`
}

// BuildSeasonRanks ranks players within their position by total points over
// participating weeks. Only players with at least one game are ranked.
func BuildSeasonRanks(scored []Scored) map[string]SeasonRank {
	totals := make(map[string]*SeasonRank)
	for _, s := range scored {
		sr, ok := totals[s.PlayerID]
		if !ok {
			sr = &SeasonRank{PlayerID: s.PlayerID, Position: s.Position}
			totals[s.PlayerID] = sr
		}
		sr.TotalPoints += s.Points
		sr.Games++
	}

	byPos := make(map[model.Position][]*SeasonRank)
	for _, sr := range totals {
		sr.TotalPoints = points.Round2(sr.TotalPoints)
		byPos[sr.Position] = append(byPos[sr.Position], sr)
	}

	out := make(map[string]SeasonRank, len(totals))
	for _, rows := range byPos {
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].TotalPoints != rows[j].TotalPoints {
				return rows[i].TotalPoints > rows[j].TotalPoints
			}
			return rows[i].PlayerID < rows[j].PlayerID
		})
		for i, sr := range rows {
			sr.Rank = i + 1
			out[sr.PlayerID] = *sr
		}
	}
	return out
}

func sortByPoints(rows []Scored) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
}
