package engine

import "fmt"

const (
	// targetGap is the ideal effective-rating gap between partners: one
	// carries, the other supports.
	targetGap = 1.4
	// minGap marks partners that are too similar, maxGap a broken team.
	minGap            = 0.6
	maxGap            = 2.0
	similarPenalty    = 1.5
	mismatchPenalty   = 3.0
	// supportCutoff marks a support player; two of them on one team is
	// severely penalized.
	supportCutoff      = 2.6
	weakPairPenalty    = 10.0
	synergyCutoff      = 0.35
	synergyWeight      = 2.0
	repeatPairPenalty  = 15.0
	repeatMatchPenalty = 50.0
	structureWeight    = 0.7
)

// PairingCost scores two candidate partners; lower is better and the result
// is never negative or normalized. It is symmetric: synergy and recency are
// looked up under the canonical sorted pair key.
func PairingCost(p1, p2 *PlayerForm, synergy map[string]float64, recentPairs map[string]bool) float64 {
	diff := abs(p1.Effective - p2.Effective)

	cost := (diff - targetGap) * (diff - targetGap)
	if diff < minGap {
		cost += similarPenalty
	}
	if diff > maxGap {
		cost += mismatchPenalty
	}
	if p1.Effective < supportCutoff && p2.Effective < supportCutoff {
		cost += weakPairPenalty
	}

	key := PairKey(p1.ID, p2.ID)
	if s := synergy[key]; abs(s) > synergyCutoff {
		// Strongly known partnerships, over- or under-performing, are
		// discouraged to promote variety.
		cost += abs(s) * synergyWeight
	}
	if recentPairs[key] {
		cost += repeatPairPenalty
	}
	return cost
}

// matchCost scores a candidate opponent pairing. The structure term rewards
// teams with similar internal gaps playing each other.
func matchCost(t1, t2 Pair, recentMatches map[string]bool) float64 {
	ds := t1.Strength - t2.Strength
	dst := t1.Structure - t2.Structure
	cost := ds*ds + structureWeight*dst*dst
	if recentMatches[matchKeyFor(t1, t2)] {
		cost += repeatMatchPenalty
	}
	return cost
}

// computeHandicap turns the strength gap into a point bonus for the weaker
// team. The top band is an uncapped step: any gap above 1.2 yields exactly 4
// points, plus one when the weaker team carries a support player.
func computeHandicap(t1, t2 Pair) *Handicap {
	diff := abs(t1.Strength - t2.Strength)
	points := handicapPoints(diff)
	if points == 0 {
		return nil
	}

	weakerTeam := 1
	weaker := t1
	if t2.Strength < t1.Strength {
		weakerTeam = 2
		weaker = t2
	}

	reason := fmt.Sprintf("strength gap of %.2f", diff)
	for _, p := range weaker.Members() {
		if p.Effective < supportCutoff {
			points++
			reason += ", support player bonus"
			break
		}
	}

	return &Handicap{
		Team:   weakerTeam,
		Points: points,
		Reason: fmt.Sprintf("%s receives +%d points (%s)", weaker.Names(), points, reason),
	}
}

func handicapPoints(diff float64) int {
	switch {
	case diff <= 0.3:
		return 0
	case diff <= 0.6:
		return 1
	case diff <= 0.9:
		return 2
	case diff <= 1.2:
		return 3
	default:
		return 4
	}
}

// pairSynergy looks up the recorded chemistry for a doubles team; singles
// teams have no partnership so their synergy is zero.
func pairSynergy(p Pair, synergy map[string]float64) float64 {
	if p.P2 == nil {
		return 0
	}
	return synergy[p.Key()]
}

// combinedForm sums the members' learned form for the analysis block.
func combinedForm(p Pair) float64 {
	total := 0.0
	for _, m := range p.Members() {
		total += m.Form
	}
	return round2(total)
}
