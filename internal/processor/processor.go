package processor

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// resultNotificationWindow suppresses result notifications for historic
// imports so backfilling old matches stays quiet.
const resultNotificationWindow = 24 * time.Hour

// New creates a new Processor.
func New(store Store, notifier Notifier, metricsSvc metrics.Metrics, pubsubClient pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsubClient,
		notifier: notifier,
		metrics:  metricsSvc,
	}
}

// ProcessMatches fetches matches that need processing and advances them through the state machine.
func (p *Processor) ProcessMatches(dryRun bool) {
	log.Info("Starting match processing...")
	matches, err := p.store.GetMatchesForProcessing()
	if err != nil {
		log.Error("Failed to get matches for processing", "error", err)
		return
	}

	if len(matches) == 0 {
		log.Info("No matches to process.")
		return
	}

	log.Info("Found matches to process", "count", len(matches))
	for _, match := range matches {
		startTime := time.Now()
		p.processMatch(match, dryRun)
		duration := time.Since(startTime).Seconds()
		p.metrics.ObserveProcessingDuration(duration)
		p.metrics.IncMatchesProcessed()
	}
	log.Info("Match processing finished.")
}

func (p *Processor) processMatch(match *league.Match, dryRun bool) {
	log.Info("Processing match", "matchID", match.ID, "initial_status", match.ProcessingStatus, "winner", match.Winner)
	for {
		currentState := match.ProcessingStatus
		log.Debug("Evaluating match state", "matchID", match.ID, "status", currentState)

		switch currentState {
		case league.StatusNew:
			// Ensure all players from the match are in our database.
			var playersToUpsert []league.PlayerInfo
			for _, team := range match.Teams {
				for _, player := range team.Players {
					playersToUpsert = append(playersToUpsert, league.PlayerInfo{
						ID:   player.ID,
						Name: player.Name,
					})
				}
			}
			if len(playersToUpsert) > 0 {
				if err := p.store.UpsertPlayers(playersToUpsert); err != nil {
					log.Error("Failed to upsert players for match", "error", err, "matchID", match.ID)
				}
			}

			if match.Winner == 0 {
				// No result reported yet. Leave the match in NEW until one arrives.
				log.Info("Match has no result yet. Waiting.", "matchID", match.ID)
				return
			}

			playedAt := time.Unix(match.PlayedAt, 0)
			// Historic imports should not spam the channel with old results.
			if time.Since(playedAt) < resultNotificationWindow {
				p.notifier.SendResultNotification(match, dryRun)
			} else {
				log.Info("Match is older than the notification window. Skipping result notification.", "matchID", match.ID)
			}
			p.updateStatus(match, league.StatusResultNotified, dryRun)

		case league.StatusResultNotified:
			log.Info("Match result has been notified. Updating player stats.", "matchID", match.ID)
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventUpdatePlayerStats, match)
			}
			p.updateStatus(match, league.StatusStatsUpdated, dryRun)

		case league.StatusStatsUpdated:
			log.Info("Player stats updated. Marking match as complete.", "matchID", match.ID)
			p.updateStatus(match, league.StatusCompleted, dryRun)

		case league.StatusCompleted:
			log.Debug("Match is complete. No further processing needed.", "matchID", match.ID)
			return // End of the line for this match

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", match.ID)
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this match for now.
		if match.ProcessingStatus == currentState {
			log.Debug("Match state did not change. Finished processing for now.", "matchID", match.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing match", "matchID", match.ID, "final_status", match.ProcessingStatus)
}

// UpdatePlayerStats folds a match into the leaderboard. Called when the
// update-player-stats event comes back around from pubsub.
func (p *Processor) UpdatePlayerStats(match *league.Match) {
	log.Debug("Updating player stats", "matchID", match.ID)
	p.store.UpdatePlayerStats(match)
}

func (p *Processor) updateStatus(match *league.Match, newStatus league.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update match status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(match.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", match.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
