package model

import (
	"strings"
)

// Weeks in a regular season schedule and games a player can appear in.
const (
	MaxWeek           = 18
	MaxGamesPerSeason = 17
)

type Position string

const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DEF Position = "DEF"
)

// RankedPositions lists the positions that take part in game-log aggregation.
var RankedPositions = []Position{QB, RB, WR, TE, K}

func ParsePosition(s string) (Position, bool) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case QB, RB, WR, TE, K, DEF:
		return p, true
	case "PK":
		return K, true
	case "DST", "D/ST":
		return DEF, true
	default:
		return "", false
	}
}

// Aggregated reports whether weekly logs for the position feed ranks and profiles.
func (p Position) Aggregated() bool {
	switch p {
	case QB, RB, WR, TE, K:
		return true
	default:
		return false
	}
}

type Format string

const (
	Standard Format = "standard"
	Half     Format = "half"
	PPR      Format = "ppr"
)

var Formats = []Format{Standard, Half, PPR}

// ParseFormat never fails: anything it does not recognise becomes PPR.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "std", "non-ppr":
		return Standard
	case "half", "half-ppr", "half_ppr", "halfppr", "0.5":
		return Half
	default:
		return PPR
	}
}

// PerReception is the reception credit of the format.
func (f Format) PerReception() float64 {
	switch f {
	case Standard:
		return 0
	case Half:
		return 0.5
	default:
		return 1
	}
}

type Player struct {
	ID       string   `json:"player_id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Team     string   `json:"team"`
}

// RawStats maps provider stat names to counts. Absent names read as zero.
type RawStats map[string]*float64

func (r RawStats) Get(name string) float64 {
	if r == nil {
		return 0
	}
	v := r[name]
	if v == nil {
		return 0
	}
	return *v
}

// Lookup distinguishes an absent or null stat from a zero one.
func (r RawStats) Lookup(name string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// NoOpponent is the opponent value providers use for bye weeks.
const NoOpponent = "BYE"

type WeeklyStatEntry struct {
	PlayerID string   `json:"player_id"`
	Week     int      `json:"week"`
	Team     string   `json:"team"`
	Opponent string   `json:"opponent"`
	Stats    RawStats `json:"stats"`
}

func (e WeeklyStatEntry) HasOpponent() bool {
	opp := strings.ToUpper(strings.TrimSpace(e.Opponent))
	return opp != "" && opp != NoOpponent
}

type SeasonLog struct {
	Season  int               `json:"season"`
	Entries []WeeklyStatEntry `json:"entries"`
}

// ForPlayer returns the player's entries keyed by week. A duplicated week keeps the
// first entry seen.
func (l SeasonLog) ForPlayer(playerID string) map[int]WeeklyStatEntry {
	out := make(map[int]WeeklyStatEntry)
	for _, e := range l.Entries {
		if e.PlayerID != playerID {
			continue
		}
		if _, ok := out[e.Week]; ok {
			continue
		}
		out[e.Week] = e
	}
	return out
}

func Float(v float64) *float64 {
	return &v
}
