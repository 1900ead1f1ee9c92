package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// matchmakerRecencyWindow is how many recent matches feed the repeat
	// penalties during auto-matchmaking.
	matchmakerRecencyWindow = 20
	// matchupRecencyWindow is the wider window used by the fixed-team query.
	matchupRecencyWindow = 50
	// topMatchupLimit caps the fixed-team query result.
	topMatchupLimit = 10
)

type matchmaker struct {
	rng *rand.Rand
}

// New creates the engine. Pass a seeded rand.Rand for reproducible pairing;
// nil gets a time-seeded source.
func New(rng *rand.Rand) Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &matchmaker{rng: rng}
}

var _ Engine = (*matchmaker)(nil)

func (e *matchmaker) RunAutoMatchmaker(selectedIDs []string, players []Player, matches []Match) (*MatchmakingResult, error) {
	forms := LearnForms(players, matches)
	synergy := LearnSynergy(matches)

	pool := make([]*PlayerForm, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		f, ok := forms[id]
		if !ok {
			log.Warn("Selected player not in roster, skipping", "id", id)
			continue
		}
		pool = append(pool, f)
	}
	if len(pool)%2 != 0 {
		return nil, fmt.Errorf("cannot build pairs from an odd number of players (%d)", len(pool))
	}

	recentPairs, recentMatches := recentSets(matches, matchmakerRecencyWindow)
	pairs := OptimizePairs(pool, synergy, recentPairs, e.rng)
	proposals := ScheduleMatches(pairs, synergy, recentMatches)

	log.Info("Auto-matchmaker finished", "players", len(pool), "pairs", len(pairs), "matches", len(proposals))
	return &MatchmakingResult{
		Players: pool,
		Pairs:   pairs,
		Matches: proposals,
	}, nil
}

// FindTopMatchupsForTeam is a brute force over all C(n,2) candidate pairs and
// is only meant for pools below roughly 50 players.
func (e *matchmaker) FindTopMatchupsForTeam(fixedTeamIDs, poolIDs []string, players []Player, matches []Match) []MatchProposal {
	if len(fixedTeamIDs) != 2 {
		return nil
	}
	forms := LearnForms(players, matches)
	synergy := LearnSynergy(matches)
	recentPairs, recentMatches := recentSets(matches, matchupRecencyWindow)

	f1, ok1 := forms[fixedTeamIDs[0]]
	f2, ok2 := forms[fixedTeamIDs[1]]
	if !ok1 || !ok2 {
		return nil
	}
	fixed := newPair(f1, f2, PairingCost(f1, f2, synergy, recentPairs))

	var pool []*PlayerForm
	for _, id := range poolIDs {
		if id == fixedTeamIDs[0] || id == fixedTeamIDs[1] {
			continue
		}
		if f, ok := forms[id]; ok {
			pool = append(pool, f)
		}
	}

	var proposals []MatchProposal
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			candidate := newPair(pool[i], pool[j], PairingCost(pool[i], pool[j], synergy, recentPairs))
			// Bias toward opponents that are themselves a realistic pairing.
			cost := matchCost(fixed, candidate, recentMatches) + 0.5*candidate.Cost
			proposals = append(proposals, buildProposal(fixed, candidate, cost, synergy))
		}
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		pi, pj := handicapPointsOf(proposals[i]), handicapPointsOf(proposals[j])
		if (pi == 0) != (pj == 0) {
			return pi == 0
		}
		if pi != pj {
			return pi < pj
		}
		return proposals[i].Cost < proposals[j].Cost
	})

	if len(proposals) > topMatchupLimit {
		proposals = proposals[:topMatchupLimit]
	}
	return proposals
}

func (e *matchmaker) PredictMatchOutcome(team1IDs, team2IDs []string, players []Player, matches []Match) *MatchProposal {
	forms := LearnForms(players, matches)
	synergy := LearnSynergy(matches)

	team1, ok := resolvePair(team1IDs, forms)
	if !ok {
		return nil
	}
	team2, ok := resolvePair(team2IDs, forms)
	if !ok {
		return nil
	}

	diff := abs(team1.Strength - team2.Strength)
	proposal := buildProposal(team1, team2, matchCost(team1, team2, nil), synergy)
	// The predictor uses its own simpler quality scale, distinct from the
	// scheduler's cost-based one.
	proposal.Analysis.Quality = max(0, 100-diff*50)
	return &proposal
}

// resolvePair builds a singles or doubles team from a list of one or two ids.
func resolvePair(ids []string, forms map[string]*PlayerForm) (Pair, bool) {
	if len(ids) == 0 || len(ids) > 2 {
		return Pair{}, false
	}
	p1, ok := forms[ids[0]]
	if !ok {
		return Pair{}, false
	}
	if len(ids) == 1 {
		return newSinglesPair(p1), true
	}
	p2, ok := forms[ids[1]]
	if !ok {
		return Pair{}, false
	}
	return newPair(p1, p2, 0), true
}

func handicapPointsOf(p MatchProposal) int {
	if p.Handicap == nil {
		return 0
	}
	return p.Handicap.Points
}

// recentSets collects the partnership keys and 4-player match keys from the
// most recent window of matches, newest first.
func recentSets(matches []Match, window int) (map[string]bool, map[string]bool) {
	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayedAt > ordered[j].PlayedAt
	})
	if len(ordered) > window {
		ordered = ordered[:window]
	}

	recentPairs := make(map[string]bool)
	recentMatches := make(map[string]bool)
	for _, m := range ordered {
		if !validShape(m) {
			continue
		}
		recentPairs[PairKey(m.Teams[0].PlayerIDs[0], m.Teams[0].PlayerIDs[1])] = true
		recentPairs[PairKey(m.Teams[1].PlayerIDs[0], m.Teams[1].PlayerIDs[1])] = true
		recentMatches[matchKey(append(append([]string{}, m.Teams[0].PlayerIDs...), m.Teams[1].PlayerIDs...))] = true
	}
	return recentPairs, recentMatches
}
