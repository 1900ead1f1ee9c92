package engine

// Engine is the matchmaking and prediction surface exposed to the HTTP and
// notification layers. All methods recompute form and synergy from the full
// history on every call; the engine holds no derived state between calls.
type Engine interface {
	// RunAutoMatchmaker builds balanced teams and match proposals for the
	// selected players. It fails on an odd selection and never partially
	// applies.
	RunAutoMatchmaker(selectedIDs []string, players []Player, matches []Match) (*MatchmakingResult, error)

	// FindTopMatchupsForTeam brute-forces every candidate opponent pair from
	// the pool against the fixed team and returns the best proposals.
	FindTopMatchupsForTeam(fixedTeamIDs, poolIDs []string, players []Player, matches []Match) []MatchProposal

	// PredictMatchOutcome scores a hypothetical singles or doubles match.
	// It returns nil when a team cannot be resolved against the roster.
	PredictMatchOutcome(team1IDs, team2IDs []string, players []Player, matches []Match) *MatchProposal
}
