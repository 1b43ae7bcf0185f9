package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/ranks"
	"github.com/statline-ff/statline/internal/store"
	"github.com/statline-ff/statline/internal/summary"
)

var (
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPositionNotAggregated = errors.New("position has no game-log aggregation")
	ErrInvalidWeek           = errors.New("invalid week")
)

// Source supplies the pre-baked roster and season logs.
type Source interface {
	Players() ([]model.Player, error)
	Seasons() ([]int, error)
	SeasonLog(season int) (model.SeasonLog, error)
}

type Options struct {
	// Derived, when set, is checked for baked rank tables before computing.
	Derived        *store.JSONStore
	WriteDerived   bool
	ComputeMissing bool
	Logger         *logrus.Entry
}

// Engine is the single aggregation entry point shared by every transport.
type Engine struct {
	src   Source
	opts  Options
	cache *Cache
	log   *logrus.Entry
}

func New(src Source, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	if opts.Derived == nil {
		opts.ComputeMissing = true
	}
	return &Engine{
		src:   src,
		opts:  opts,
		cache: NewCache(),
		log:   log.WithField("component", "engine"),
	}
}

func (e *Engine) Cache() *Cache {
	return e.cache
}

func (e *Engine) loadRoster() (*roster, error) {
	if r := e.cache.getRoster(); r != nil {
		return r, nil
	}
	players, err := e.src.Players()
	if err != nil {
		return nil, err
	}
	r := &roster{
		byID:      make(map[string]model.Player, len(players)),
		positions: make(map[string]model.Position, len(players)),
	}
	for _, p := range players {
		r.byID[p.ID] = p
		r.positions[p.ID] = p.Position
	}
	e.cache.putRoster(r)
	e.log.WithField("players", len(players)).Debug("roster loaded")
	return r, nil
}

func (e *Engine) Player(id string) (model.Player, error) {
	r, err := e.loadRoster()
	if err != nil {
		return model.Player{}, err
	}
	p, ok := r.byID[id]
	if !ok {
		return model.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

// Seasons lists available seasons, newest first.
func (e *Engine) Seasons() ([]int, error) {
	return e.src.Seasons()
}

// LatestSeason is the newest available season, or 0 when there is none.
func (e *Engine) LatestSeason() (int, error) {
	seasons, err := e.src.Seasons()
	if err != nil {
		return 0, err
	}
	if len(seasons) == 0 {
		return 0, nil
	}
	return seasons[0], nil
}

func (e *Engine) resolveSeason(season int) (int, error) {
	if season > 0 {
		return season, nil
	}
	return e.LatestSeason()
}

func (e *Engine) seasonLog(season int) (model.SeasonLog, error) {
	if l, ok := e.cache.getLog(season); ok {
		return l, nil
	}
	l, err := e.src.SeasonLog(season)
	if err != nil {
		return model.SeasonLog{}, err
	}
	e.cache.putLog(l)
	e.log.WithFields(logrus.Fields{"season": season, "entries": len(l.Entries)}).Debug("season log loaded")
	return l, nil
}

// Tables returns the rank tables for (season, format): memory first, then the
// derived store, then a fresh build.
func (e *Engine) Tables(season int, format model.Format) (*ranks.Tables, error) {
	if t, ok := e.cache.getTables(season, format); ok {
		return t, nil
	}
	fields := logrus.Fields{"season": season, "format": format}

	if e.opts.Derived != nil {
		doc, err := summary.LoadRankSummary(e.opts.Derived, season, format)
		switch {
		case err == nil:
			t := doc.Tables()
			e.cache.putTables(t)
			e.log.WithFields(fields).Debug("rank tables loaded from derived store")
			return t, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		case !e.opts.ComputeMissing:
			return nil, fmt.Errorf("missing derived rank tables: %s", e.opts.Derived.Path(summary.RankSummaryPath(season, format)))
		}
	}

	r, err := e.loadRoster()
	if err != nil {
		return nil, err
	}
	l, err := e.seasonLog(season)
	if err != nil {
		return nil, err
	}
	t := ranks.Build(l, r.positions, format)
	e.cache.putTables(t)
	e.log.WithFields(fields).WithField("scored", len(t.Scored)).Info("rank tables built")

	if e.opts.Derived != nil && e.opts.WriteDerived {
		if err := summary.WriteRankSummary(e.opts.Derived, summary.BuildRankSummary(t)); err != nil {
			e.log.WithFields(fields).WithError(err).Warn("write derived rank tables")
		}
	}
	return t, nil
}

// WeeklyRanks is the leaderboard for one week and position.
func (e *Engine) WeeklyRanks(season int, format model.Format, week int, pos model.Position) ([]ranks.WeekRow, error) {
	if week < 1 || week > model.MaxWeek {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidWeek, week, model.MaxWeek)
	}
	if !pos.Aggregated() {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotAggregated, pos)
	}
	season, err := e.resolveSeason(season)
	if err != nil {
		return nil, err
	}
	t, err := e.Tables(season, format)
	if err != nil {
		return nil, err
	}
	return t.Leaderboard(week, pos), nil
}

// DefenseRanks lists defenses by points allowed to pos, stingiest first.
func (e *Engine) DefenseRanks(season int, format model.Format, pos model.Position) ([]ranks.DefenseRank, error) {
	if !pos.Aggregated() {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotAggregated, pos)
	}
	season, err := e.resolveSeason(season)
	if err != nil {
		return nil, err
	}
	t, err := e.Tables(season, format)
	if err != nil {
		return nil, err
	}
	return t.Defense.Sorted(pos), nil
}
