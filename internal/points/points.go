package points

import (
	"math"

	"github.com/statline-ff/statline/internal/model"
)

// Stats is the canonical weekly record. Fields that do not apply to the
// player's position stay zero.
type Stats struct {
	Position model.Position `json:"position"`

	PassAttempts    float64 `json:"pass_att,omitempty"`
	PassCompletions float64 `json:"pass_cmp,omitempty"`
	PassYards       float64 `json:"pass_yd,omitempty"`
	PassTDs         float64 `json:"pass_td,omitempty"`
	Interceptions   float64 `json:"pass_int,omitempty"`

	RushAttempts float64 `json:"rush_att,omitempty"`
	RushYards    float64 `json:"rush_yd,omitempty"`
	RushTDs      float64 `json:"rush_td,omitempty"`

	Targets        float64 `json:"rec_tgt,omitempty"`
	Receptions     float64 `json:"rec,omitempty"`
	ReceivingYards float64 `json:"rec_yd,omitempty"`
	ReceivingTDs   float64 `json:"rec_td,omitempty"`

	FumblesLost float64 `json:"fum_lost,omitempty"`
	PassTwoPt   float64 `json:"pass_2pt,omitempty"`
	RushTwoPt   float64 `json:"rush_2pt,omitempty"`
	RecTwoPt    float64 `json:"rec_2pt,omitempty"`

	FieldGoalsMade      float64 `json:"fgm,omitempty"`
	FieldGoalAttempts   float64 `json:"fga,omitempty"`
	FieldGoalLong       float64 `json:"fgm_lng,omitempty"`
	ExtraPointsMade     float64 `json:"xpm,omitempty"`
	ExtraPointsAttempts float64 `json:"xpa,omitempty"`

	PointsPPR     float64 `json:"pts_ppr"`
	PointsHalfPPR float64 `json:"pts_half_ppr"`
}

// Extract maps a provider stat blob onto the canonical record for pos.
func Extract(raw model.RawStats, pos model.Position) Stats {
	s := Stats{Position: pos}

	// Scoring inputs are read for every position so trick plays still count.
	s.PassYards = raw.Get("pass_yd")
	s.PassTDs = raw.Get("pass_td")
	s.Interceptions = raw.Get("pass_int")
	s.RushYards = raw.Get("rush_yd")
	s.RushTDs = raw.Get("rush_td")
	s.Receptions = raw.Get("rec")
	s.ReceivingYards = raw.Get("rec_yd")
	s.ReceivingTDs = raw.Get("rec_td")
	s.FumblesLost = raw.Get("fum_lost")
	s.PassTwoPt = raw.Get("pass_2pt")
	s.RushTwoPt = raw.Get("rush_2pt")
	s.RecTwoPt = raw.Get("rec_2pt")
	s.PassAttempts = raw.Get("pass_att")
	s.RushAttempts = raw.Get("rush_att")
	s.Targets = raw.Get("rec_tgt")

	switch pos {
	case model.QB:
		s.PassCompletions = raw.Get("pass_cmp")
	case model.K:
		s.FieldGoalsMade = raw.Get("fgm")
		s.FieldGoalAttempts = raw.Get("fga")
		s.FieldGoalLong = raw.Get("fgm_lng")
		s.ExtraPointsMade = raw.Get("xpm")
		s.ExtraPointsAttempts = raw.Get("xpa")
	}

	if v, ok := raw.Lookup("pts_ppr"); ok {
		s.PointsPPR = v
	} else {
		s.PointsPPR = IngestionPoints(s)
	}
	if v, ok := raw.Lookup("pts_half_ppr"); ok {
		s.PointsHalfPPR = v
	} else {
		s.PointsHalfPPR = Round2(s.PointsPPR - 0.5*s.Receptions)
	}
	return s
}

// IngestionPoints is the PPR baseline used when a provider ships no points.
// Kicking is not part of it.
func IngestionPoints(s Stats) float64 {
	return Round2(basePoints(s) + s.Receptions)
}

// FantasyPoints scores a week under format f, kicking included.
func FantasyPoints(s Stats, f model.Format) float64 {
	pts := basePoints(s) +
		f.PerReception()*s.Receptions +
		3*s.FieldGoalsMade +
		s.ExtraPointsMade
	return Round2(pts)
}

func basePoints(s Stats) float64 {
	return 0.04*s.PassYards + 4*s.PassTDs - s.Interceptions +
		0.1*s.RushYards + 6*s.RushTDs +
		0.1*s.ReceivingYards + 6*s.ReceivingTDs -
		2*s.FumblesLost +
		2*(s.PassTwoPt+s.RushTwoPt+s.RecTwoPt)
}

// Round2 rounds to cents, halves away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// HasParticipation reports whether the week shows the player on the field.
func HasParticipation(s Stats, pos model.Position) bool {
	switch pos {
	case model.QB:
		return s.PassAttempts > 0 || s.RushAttempts > 0
	case model.K:
		return s.FieldGoalAttempts > 0 || s.ExtraPointsAttempts > 0
	default:
		return s.Targets > 0 || s.Receptions > 0 || s.RushAttempts > 0 || s.PassAttempts > 0
	}
}
