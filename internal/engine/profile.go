package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/statline-ff/statline/internal/career"
	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/points"
	"github.com/statline-ff/statline/internal/ranks"
)

const (
	StatusActive = "active"
	StatusOut    = "out"
	StatusBye    = "bye"
)

type GameLogRequest struct {
	PlayerID string
	Season   int // 0 = latest available
	Format   model.Format
}

// GameLogRow is one week of a player's season. Weeks with no data are
// placeholders: status "out", zero points, no rank.
type GameLogRow struct {
	Week                   int           `json:"week"`
	Team                   string        `json:"team,omitempty"`
	Opponent               string        `json:"opponent,omitempty"`
	Status                 string        `json:"status"`
	Participated           bool          `json:"participated"`
	FantasyPoints          float64       `json:"fantasyPoints"`
	Rank                   *int          `json:"rank"`
	OpponentRankVsPosition *int          `json:"opponentRankVsPosition"`
	Stats                  *points.Stats `json:"stats,omitempty"`
}

type GameLog struct {
	PlayerID string         `json:"playerId"`
	Position model.Position `json:"position"`
	Season   int            `json:"season"`
	Format   model.Format   `json:"format"`
	Rows     []GameLogRow   `json:"gameLog"`
}

type ProfileRequest struct {
	PlayerID string
	Season   int // 0 = latest available
	Format   model.Format
}

type Trends struct {
	WeeklyFantasyPoints []float64 `json:"weeklyFantasyPoints"`
}

type Profile struct {
	PlayerID         string                 `json:"playerId"`
	Name             string                 `json:"name"`
	Position         model.Position         `json:"position"`
	Team             string                 `json:"team"`
	Format           model.Format           `json:"format"`
	Season           int                    `json:"season"`
	SeasonLabel      string                 `json:"seasonLabel"`
	SeasonRank       *int                   `json:"seasonRank"`
	Trends           *Trends                `json:"trends"`
	GameLog          []GameLogRow           `json:"gameLog"`
	MultiSeasonStats []career.SeasonSummary `json:"multiSeasonStats"`
	CareerProfile    *career.Profile        `json:"careerProfile"`
}

func SeasonLabel(season int) string {
	if season <= 0 {
		return ""
	}
	return fmt.Sprintf("%d Season", season)
}

func (e *Engine) aggregatedPlayer(id string) (model.Player, error) {
	p, err := e.Player(id)
	if err != nil {
		return p, err
	}
	if !p.Position.Aggregated() {
		return p, fmt.Errorf("%w: %s is %s", ErrPositionNotAggregated, id, p.Position)
	}
	return p, nil
}

// GameLog returns the 18-week annotated log for one season.
func (e *Engine) GameLog(ctx context.Context, req GameLogRequest) (*GameLog, error) {
	p, err := e.aggregatedPlayer(req.PlayerID)
	if err != nil {
		return nil, err
	}
	season, err := e.resolveSeason(req.Season)
	if err != nil {
		return nil, err
	}
	format := model.ParseFormat(string(req.Format))
	rows, _, err := e.gameLog(ctx, p, season, format)
	if err != nil {
		return nil, err
	}
	return &GameLog{PlayerID: p.ID, Position: p.Position, Season: season, Format: format, Rows: rows}, nil
}

func (e *Engine) gameLog(ctx context.Context, p model.Player, season int, format model.Format) ([]GameLogRow, *ranks.Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	l, err := e.seasonLog(season)
	if err != nil {
		return nil, nil, err
	}
	t, err := e.Tables(season, format)
	if err != nil {
		return nil, nil, err
	}
	byWeek := l.ForPlayer(p.ID)

	rows := make([]GameLogRow, 0, model.MaxWeek)
	for week := 1; week <= model.MaxWeek; week++ {
		entry, ok := byWeek[week]
		if !ok {
			rows = append(rows, GameLogRow{Week: week, Status: StatusOut})
			continue
		}
		st := points.Extract(entry.Stats, p.Position)
		row := GameLogRow{
			Week:          week,
			Team:          entry.Team,
			FantasyPoints: points.FantasyPoints(st, format),
			Stats:         &st,
		}
		if entry.HasOpponent() {
			row.Opponent = entry.Opponent
			if r, ok := t.Defense.Rank(entry.Opponent, p.Position); ok {
				row.OpponentRankVsPosition = intPtr(r)
			}
		}
		row.Participated = points.HasParticipation(st, p.Position)
		switch {
		case row.Participated:
			row.Status = StatusActive
			if r, ok := t.Weekly.Rank(p.ID, week); ok {
				row.Rank = intPtr(r)
			}
		case !entry.HasOpponent():
			row.Status = StatusBye
		default:
			row.Status = StatusOut
		}
		rows = append(rows, row)
	}
	return rows, t, nil
}

// Profile assembles the season view plus multi-season and career summaries for
// every available season up to the requested one.
func (e *Engine) Profile(ctx context.Context, req ProfileRequest) (*Profile, error) {
	p, err := e.aggregatedPlayer(req.PlayerID)
	if err != nil {
		return nil, err
	}
	format := model.ParseFormat(string(req.Format))
	season, err := e.resolveSeason(req.Season)
	if err != nil {
		return nil, err
	}

	out := &Profile{
		PlayerID:         p.ID,
		Name:             p.Name,
		Position:         p.Position,
		Team:             p.Team,
		Format:           format,
		Season:           season,
		SeasonLabel:      SeasonLabel(season),
		MultiSeasonStats: make([]career.SeasonSummary, 0),
	}

	rows, t, err := e.gameLog(ctx, p, season, format)
	if err != nil {
		return nil, err
	}
	out.GameLog = rows
	if sr, ok := t.Seasons[p.ID]; ok {
		out.SeasonRank = intPtr(sr.Rank)
	}
	weekly := make([]float64, 0, model.MaxWeek)
	for _, r := range rows {
		if r.Participated {
			weekly = append(weekly, r.FantasyPoints)
		}
	}
	if len(weekly) > 0 {
		out.Trends = &Trends{WeeklyFantasyPoints: weekly}
	}

	available, err := e.Seasons()
	if err != nil {
		return nil, err
	}
	history := make([]career.SeasonGames, 0, len(available))
	for _, s := range available {
		if s > season {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := e.Tables(s, format)
		if err != nil {
			return nil, err
		}
		games := playerGames(st, p.ID)
		if len(games) == 0 {
			continue
		}
		history = append(history, career.SeasonGames{Season: s, Games: games})
		sum := career.SummarizeSeason(s, p.Position, games)
		if sr, ok := st.Seasons[p.ID]; ok {
			sum.SeasonRank = intPtr(sr.Rank)
		}
		out.MultiSeasonStats = append(out.MultiSeasonStats, sum)
	}
	out.CareerProfile = career.BuildProfile(p.Position, history)

	e.log.WithFields(logrus.Fields{
		"player":  p.ID,
		"season":  season,
		"format":  format,
		"seasons": len(out.MultiSeasonStats),
	}).Debug("profile built")
	return out, nil
}

// playerGames pulls the player's scored weeks, in week order, with their ranks.
func playerGames(t *ranks.Tables, playerID string) []career.Game {
	byWeek := make(map[int]career.Game)
	for _, s := range t.Scored {
		if s.PlayerID != playerID {
			continue
		}
		g := career.Game{Week: s.Week, Points: s.Points}
		if r, ok := t.Weekly.Rank(playerID, s.Week); ok {
			g.Rank = r
		}
		byWeek[s.Week] = g
	}
	out := make([]career.Game, 0, len(byWeek))
	for week := 1; week <= model.MaxWeek; week++ {
		if g, ok := byWeek[week]; ok {
			out = append(out, g)
		}
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
