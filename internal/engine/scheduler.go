package engine

import (
	"sort"

	"github.com/charmbracelet/log"
)

// ScheduleMatches pairs teams into matches, strongest team first, each time
// picking the opponent minimizing the strength/structure cost with a heavy
// penalty for repeating a recent 4-player composition. Teams are consumed two
// at a time; with an odd team count the last one is left out with a warning.
func ScheduleMatches(pairs []Pair, synergy map[string]float64, recentMatches map[string]bool) []MatchProposal {
	remaining := make([]Pair, len(pairs))
	copy(remaining, pairs)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Strength > remaining[j].Strength
	})

	var proposals []MatchProposal
	for len(remaining) >= 2 {
		team1 := remaining[0]
		best := -1
		bestCost := 0.0
		for i := 1; i < len(remaining); i++ {
			c := matchCost(team1, remaining[i], recentMatches)
			if best == -1 || c < bestCost {
				best = i
				bestCost = c
			}
		}
		team2 := remaining[best]
		remaining = append(remaining[1:best], remaining[best+1:]...)

		proposals = append(proposals, buildProposal(team1, team2, bestCost, synergy))
	}

	if len(remaining) == 1 {
		log.Warn("Odd team count, leaving one team unscheduled", "team", remaining[0].Names())
	}
	return proposals
}

// buildProposal assembles a proposal with handicap and the display analysis.
// Quality here is the scheduler's unnormalized max(0, 100-cost) scale.
func buildProposal(team1, team2 Pair, cost float64, synergy map[string]float64) MatchProposal {
	return MatchProposal{
		Team1:    team1,
		Team2:    team2,
		Cost:     cost,
		Handicap: computeHandicap(team1, team2),
		Analysis: Analysis{
			Team1Synergy: pairSynergy(team1, synergy),
			Team2Synergy: pairSynergy(team2, synergy),
			Team1Form:    combinedForm(team1),
			Team2Form:    combinedForm(team2),
			Quality:      qualityFromCost(cost),
		},
	}
}

func qualityFromCost(cost float64) float64 {
	return max(0, 100-cost)
}
