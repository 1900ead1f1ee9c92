package engine

import (
	"math"
	"sort"
)

const (
	// defaultRating replaces missing ratings and anything from the legacy
	// large-magnitude scale.
	defaultRating = 3.0
	// maxRawRating is the threshold above which a raw rating is assumed to
	// belong to the legacy scale and is collapsed to defaultRating.
	maxRawRating = 20.0
	// formK scales the per-match form update.
	formK = 0.18
	// formSensitivity is the logistic divisor; a larger value flattens the
	// expected-outcome curve.
	formSensitivity = 1.2
)

// LearnForms replays the match history in chronological order and returns a
// fresh form state per roster player. The input slices are never mutated; each
// call produces a new result map.
func LearnForms(players []Player, matches []Match) map[string]*PlayerForm {
	forms := make(map[string]*PlayerForm, len(players))
	for _, p := range players {
		forms[p.ID] = &PlayerForm{
			ID:   p.ID,
			Name: p.Name,
			Base: normalizeRating(p.Rating),
		}
	}

	// Replay order changes the outcome, so the sort is mandatory.
	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayedAt < ordered[j].PlayedAt
	})

	for _, m := range ordered {
		team1, team2, ok := resolveTeams(m, forms)
		if !ok {
			continue
		}

		eff1 := currentEffective(team1[0]) + currentEffective(team1[1])
		eff2 := currentEffective(team2[0]) + currentEffective(team2[1])

		expected1 := 1 / (1 + math.Pow(10, (eff2-eff1)/formSensitivity))
		actual := 0.0
		if m.Winner == 1 {
			actual = 1.0
		}

		// The delta is shared between teammates, not applied individually,
		// which keeps every match zero-sum across the four players.
		delta := formK * (actual - expected1)
		half := delta / 2
		team1[0].Form += half
		team1[1].Form += half
		team2[0].Form -= half
		team2[1].Form -= half
	}

	for _, f := range forms {
		f.Effective = round2(f.Base + f.Form)
	}
	return forms
}

// normalizeRating collapses legacy-scale and missing values onto the skill
// scale's default mid point.
func normalizeRating(raw float64) float64 {
	if raw > 0 && raw <= maxRawRating {
		return raw
	}
	return defaultRating
}

// resolveTeams validates the two-versus-two shape and resolves every player
// against the roster. A match with any unresolvable reference is skipped
// entirely so no partial update is ever applied.
func resolveTeams(m Match, forms map[string]*PlayerForm) ([2]*PlayerForm, [2]*PlayerForm, bool) {
	var t1, t2 [2]*PlayerForm
	if !validShape(m) {
		return t1, t2, false
	}
	for i, id := range m.Teams[0].PlayerIDs {
		f, ok := forms[id]
		if !ok {
			return t1, t2, false
		}
		t1[i] = f
	}
	for i, id := range m.Teams[1].PlayerIDs {
		f, ok := forms[id]
		if !ok {
			return t1, t2, false
		}
		t2[i] = f
	}
	return t1, t2, true
}

// validShape reports whether a match is exactly two teams of two players with
// a usable winner indicator.
func validShape(m Match) bool {
	if len(m.Teams) != 2 {
		return false
	}
	for _, t := range m.Teams {
		if len(t.PlayerIDs) != 2 {
			return false
		}
		for _, id := range t.PlayerIDs {
			if id == "" {
				return false
			}
		}
	}
	return m.Winner == 1 || m.Winner == 2
}

// currentEffective is the mid-replay effective rating, unrounded.
func currentEffective(f *PlayerForm) float64 {
	return f.Base + f.Form
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
