package ranks

import "github.com/statline-ff/statline/internal/model"

type Tier int

const (
	Unranked Tier = iota
	Tier1
	Tier2
	Tier3
	Bust
)

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	case Bust:
		return "bust"
	default:
		return "unranked"
	}
}

const (
	tier1Max = 12
	tier2Max = 24
)

// BustThreshold is the worst weekly rank that still counts as a usable start.
func BustThreshold(pos model.Position) int {
	switch pos {
	case model.QB, model.TE:
		return 18
	case model.WR:
		return 36
	default:
		return 30
	}
}

// HasTier3 reports whether ranks between 25 and the bust threshold form their own band.
// Any threshold above 24 qualifies, so RB and K get a tier 3 alongside WR.
func HasTier3(pos model.Position) bool {
	return BustThreshold(pos) > tier2Max
}

// TierFor buckets a weekly rank. A rank below 1 means the week had no rank.
func TierFor(rank int, pos model.Position) Tier {
	if rank < 1 {
		return Unranked
	}
	bust := BustThreshold(pos)
	switch {
	case rank <= tier1Max:
		return Tier1
	case rank > bust:
		return Bust
	case HasTier3(pos) && rank > tier2Max:
		return Tier3
	default:
		return Tier2
	}
}
