package ranks

import (
	"math"
	"sort"
	"strings"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/points"
)

// DefenseRank is how generous a defense has been to one position.
type DefenseRank struct {
	Team       string         `json:"team"`
	Position   model.Position `json:"position"`
	Rank       int            `json:"rank"`
	AvgAllowed float64        `json:"avg_allowed"`
	Games      int            `json:"games"`
}

// OpponentDefenseRankTable maps position -> team -> rank info.
type OpponentDefenseRankTable map[model.Position]map[string]DefenseRank

func (t OpponentDefenseRankTable) Rank(team string, pos model.Position) (int, bool) {
	teams, ok := t[pos]
	if !ok {
		return 0, false
	}
	dr, ok := teams[strings.ToUpper(team)]
	if !ok {
		return 0, false
	}
	return dr.Rank, true
}

// Sorted lists the position's defenses from rank 1 down.
func (t OpponentDefenseRankTable) Sorted(pos model.Position) []DefenseRank {
	out := make([]DefenseRank, 0, len(t[pos]))
	for _, dr := range t[pos] {
		out = append(out, dr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

type teamPos struct {
	team string
	pos  model.Position
}

type allowed struct {
	sum   float64
	games int
}

// BuildOpponent averages the points each defense gave up per position and ranks
// teams ascending, so rank 1 allowed the fewest. Ties fall back to team code.
func BuildOpponent(scored []Scored) OpponentDefenseRankTable {
	groups := make(map[teamPos]*allowed)
	for _, s := range scored {
		if s.Opponent == "" {
			continue
		}
		k := teamPos{team: strings.ToUpper(s.Opponent), pos: s.Position}
		a, ok := groups[k]
		if !ok {
			a = &allowed{}
			groups[k] = a
		}
		a.sum += s.Points
		a.games++
	}

	byPos := make(map[model.Position][]DefenseRank)
	for k, a := range groups {
		avg := 0.0
		if a.games > 0 {
			avg = a.sum / float64(a.games)
		}
		if math.IsNaN(avg) || math.IsInf(avg, 0) {
			avg = 0
		}
		byPos[k.pos] = append(byPos[k.pos], DefenseRank{
			Team:       k.team,
			Position:   k.pos,
			AvgAllowed: points.Round2(avg),
			Games:      a.games,
		})
	}

	table := make(OpponentDefenseRankTable, len(byPos))
	for pos, rows := range byPos {
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].AvgAllowed != rows[j].AvgAllowed {
				return rows[i].AvgAllowed < rows[j].AvgAllowed
			}
			return rows[i].Team < rows[j].Team
		})
		teams := make(map[string]DefenseRank, len(rows))
		for i, r := range rows {
			r.Rank = i + 1
			teams[r.Team] = r
		}
		table[pos] = teams
	}
	return table
}
