package engine

import "math"

const (
	// synergyPrior smooths the win rate as (wins+2)/(games+4) so tiny samples
	// start near 50%.
	synergyPriorWins  = 2.0
	synergyPriorGames = 4.0
	// synergyShrink scales the logit by games/(games+shrink), suppressing
	// magnitude until a partnership has real history.
	synergyShrink = 6.0
)

type pairRecord struct {
	games int
	wins  int
}

// LearnSynergy folds the match history into a per-partnership chemistry score.
// A partnership with no recorded games has no entry; lookups default to zero.
func LearnSynergy(matches []Match) map[string]float64 {
	records := make(map[string]*pairRecord)
	tally := func(a, b string, won bool) {
		key := PairKey(a, b)
		rec := records[key]
		if rec == nil {
			rec = &pairRecord{}
			records[key] = rec
		}
		rec.games++
		if won {
			rec.wins++
		}
	}

	for _, m := range matches {
		if !validShape(m) {
			continue
		}
		tally(m.Teams[0].PlayerIDs[0], m.Teams[0].PlayerIDs[1], m.Winner == 1)
		tally(m.Teams[1].PlayerIDs[0], m.Teams[1].PlayerIDs[1], m.Winner == 2)
	}

	synergy := make(map[string]float64, len(records))
	for key, rec := range records {
		games := float64(rec.games)
		p := (float64(rec.wins) + synergyPriorWins) / (games + synergyPriorGames)
		p = clamp(p, 0.01, 0.99)
		synergy[key] = math.Log(p/(1-p)) * (games / (games + synergyShrink))
	}
	return synergy
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
