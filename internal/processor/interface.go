package processor

import (
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatchesForProcessing() ([]*league.Match, error)
	UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error
	UpsertPlayers(players []league.PlayerInfo) error
	UpdatePlayerStats(match *league.Match)
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
