package engine

import (
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"
)

// localSearchIterations is the fixed number of random swap attempts after
// greedy seeding.
const localSearchIterations = 200

// OptimizePairs builds two-player teams from the pool: greedy seeding weakest
// player first, then a stochastic local search swapping pair members whenever
// that strictly lowers total cost. The caller supplies the random source so
// runs can be reproduced; the result is near-optimal, not guaranteed optimal.
// An odd pool leaves one player unpaired; that player is dropped with a
// warning.
func OptimizePairs(pool []*PlayerForm, synergy map[string]float64, recentPairs map[string]bool, rng *rand.Rand) []Pair {
	pairs := greedySeed(pool, synergy, recentPairs)
	improvePairs(pairs, synergy, recentPairs, rng)
	return pairs
}

// greedySeed pairs each player, weakest first, with the unpaired partner
// minimizing the pairing cost. Weakest first means weak players get first
// pick of their best-fit partner.
func greedySeed(pool []*PlayerForm, synergy map[string]float64, recentPairs map[string]bool) []Pair {
	sorted := make([]*PlayerForm, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Effective < sorted[j].Effective
	})

	paired := make([]bool, len(sorted))
	var pairs []Pair
	for i, p := range sorted {
		if paired[i] {
			continue
		}
		best := -1
		bestCost := 0.0
		for j := i + 1; j < len(sorted); j++ {
			if paired[j] {
				continue
			}
			c := PairingCost(p, sorted[j], synergy, recentPairs)
			if best == -1 || c < bestCost {
				best = j
				bestCost = c
			}
		}
		if best == -1 {
			log.Warn("Odd player pool, dropping unpaired player", "player", p.Name, "id", p.ID)
			continue
		}
		paired[i] = true
		paired[best] = true
		pairs = append(pairs, newPair(p, sorted[best], bestCost))
	}
	return pairs
}

// improvePairs runs the fixed-budget hill climb: pick two pairs at random,
// try crossing their second members, keep the swap only on strict
// improvement. Total cost never increases.
func improvePairs(pairs []Pair, synergy map[string]float64, recentPairs map[string]bool, rng *rand.Rand) {
	if len(pairs) < 2 {
		return
	}
	for iter := 0; iter < localSearchIterations; iter++ {
		i := rng.Intn(len(pairs))
		j := rng.Intn(len(pairs))
		if i == j {
			continue
		}

		a, b := pairs[i], pairs[j]
		newCostA := PairingCost(a.P1, b.P2, synergy, recentPairs)
		newCostB := PairingCost(b.P1, a.P2, synergy, recentPairs)
		if newCostA+newCostB < a.Cost+b.Cost {
			pairs[i] = newPair(a.P1, b.P2, newCostA)
			pairs[j] = newPair(b.P1, a.P2, newCostB)
		}
	}
}

func totalCost(pairs []Pair) float64 {
	total := 0.0
	for _, p := range pairs {
		total += p.Cost
	}
	return total
}
