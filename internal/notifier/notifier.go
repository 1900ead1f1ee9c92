package notifier

import (
	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For auto-matchmaker output
	SendMatchProposals(result *engine.MatchmakingResult, dryRun bool) error
	// For completed matches
	SendResultNotification(match *league.Match, dryRun bool) error
	// For slash commands
	SendLeaderboard(stats []league.PlayerStats, dryRun bool) error
	SendRatingLeaderboard(players []engine.PlayerForm, dryRun bool) error
	SendPlayerStats(stats *league.PlayerStats, query string, dryRun bool) error
	SendPlayerNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(stats []league.PlayerStats) (any, error)
	FormatRatingLeaderboardResponse(players []engine.PlayerForm) (any, error)
	FormatMatchupsResponse(proposals []engine.MatchProposal) (any, error)
	FormatPredictionResponse(proposal *engine.MatchProposal) (any, error)
	FormatPlayerStatsResponse(stats *league.PlayerStats, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
