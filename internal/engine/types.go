package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Player is a roster entry as supplied by the league store. Rating is the raw
// stored value and may come from the legacy large-magnitude scale.
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// MatchTeam is one side of a recorded match.
type MatchTeam struct {
	PlayerIDs []string `json:"player_ids"`
}

// Match is a completed match from the league's history. The engine only
// considers matches with exactly two teams of exactly two resolvable players;
// anything else is skipped, never errored.
type Match struct {
	ID       string      `json:"id"`
	PlayedAt int64       `json:"played_at"` // unix seconds
	Teams    []MatchTeam `json:"teams"`
	Winner   int         `json:"winner"` // 1 or 2
}

// PlayerForm is a player's learned state after replaying the match history.
// Effective is always round2(Base + Form); Form is only ever mutated by the
// chronological replay in LearnForms.
type PlayerForm struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Base      float64 `json:"base"`
	Form      float64 `json:"form"`
	Effective float64 `json:"effective"`
}

// Pair is a team of one or two players. P2 is nil for a singles team; a
// singles team is never modeled by duplicating the player into both slots.
type Pair struct {
	P1        *PlayerForm `json:"p1"`
	P2        *PlayerForm `json:"p2,omitempty"`
	Strength  float64     `json:"strength"`  // literal sum of member effective ratings
	Structure float64     `json:"structure"` // absolute gap between members, always >= 0
	Cost      float64     `json:"cost"`      // pairing cost that produced this team
}

// newPair builds a doubles team, recording the cost that produced it.
func newPair(p1, p2 *PlayerForm, cost float64) Pair {
	return Pair{
		P1:        p1,
		P2:        p2,
		Strength:  p1.Effective + p2.Effective,
		Structure: abs(p1.Effective - p2.Effective),
		Cost:      cost,
	}
}

// newSinglesPair builds a one-player team. Strength is the single member's
// effective rating and structure is zero by definition.
func newSinglesPair(p *PlayerForm) Pair {
	return Pair{P1: p, Strength: p.Effective}
}

// Members returns the team's players, one entry for singles, two for doubles.
func (p Pair) Members() []*PlayerForm {
	if p.P2 == nil {
		return []*PlayerForm{p.P1}
	}
	return []*PlayerForm{p.P1, p.P2}
}

// Key returns the canonical partnership key for a doubles team. Singles teams
// have no partnership, so their key is just the single member's id.
func (p Pair) Key() string {
	if p.P2 == nil {
		return p.P1.ID
	}
	return PairKey(p.P1.ID, p.P2.ID)
}

// Names renders the team for logs and notifications.
func (p Pair) Names() string {
	if p.P2 == nil {
		return p.P1.Name
	}
	return p.P1.Name + " & " + p.P2.Name
}

// Handicap is a point bonus recommended for the weaker team.
type Handicap struct {
	Team   int    `json:"team"` // 1 or 2, the receiving team
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// Analysis is the display block attached to a proposal.
type Analysis struct {
	Team1Synergy float64 `json:"team1_synergy"`
	Team2Synergy float64 `json:"team2_synergy"`
	Team1Form    float64 `json:"team1_form"`
	Team2Form    float64 `json:"team2_form"`
	Quality      float64 `json:"quality"` // 0-100, ad hoc display scale
}

// MatchProposal is a scheduled or predicted match between two teams.
type MatchProposal struct {
	Team1    Pair      `json:"team1"`
	Team2    Pair      `json:"team2"`
	Cost     float64   `json:"cost"`
	Handicap *Handicap `json:"handicap,omitempty"`
	Analysis Analysis  `json:"analysis"`
}

// Key returns the canonical key for the proposal's full player set.
func (m MatchProposal) Key() string {
	return matchKeyFor(m.Team1, m.Team2)
}

// matchKeyFor builds the canonical key for the combined player set of two
// teams.
func matchKeyFor(t1, t2 Pair) string {
	var ids []string
	for _, p := range t1.Members() {
		ids = append(ids, p.ID)
	}
	for _, p := range t2.Members() {
		ids = append(ids, p.ID)
	}
	return matchKey(ids)
}

// MatchmakingResult is the full output of one auto-matchmaker run.
type MatchmakingResult struct {
	Players []*PlayerForm   `json:"players"`
	Pairs   []Pair          `json:"pairs"`
	Matches []MatchProposal `json:"matches"`
}

// PairKey builds the canonical, order-independent key for a partnership.
// Identifiers are compared as strings so numeric-looking ids never collide.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// matchKey builds the canonical key for a full match player set.
func matchKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func (h *Handicap) String() string {
	if h == nil {
		return "even match"
	}
	return fmt.Sprintf("+%d points to team %d", h.Points, h.Team)
}
