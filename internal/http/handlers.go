package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			return
		}
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
	}
}

// MembersHandler lists the roster on GET and registers a player on POST.
func (s *Server) MembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req struct {
				ID     string  `json:"id"`
				Name   string  `json:"name"`
				Rating float64 `json:"rating"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if req.Name == "" {
				http.Error(w, "Player name is required", http.StatusBadRequest)
				return
			}
			if req.ID == "" {
				req.ID = uuid.NewString()
			}
			s.Store.AddPlayer(req.ID, req.Name, req.Rating)
			log.Info("Registered player", "id", req.ID, "name", req.Name, "rating", req.Rating)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			if err := json.NewEncoder(w).Encode(req); err != nil {
				log.Error("Failed to write response", "error", err)
			}
			return
		}

		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

// LeaderboardHandler returns a handler that serves the player statistics leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetPlayerStats()
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Error("Failed to encode player stats to JSON", "error", err)
		}
	}
}

// RecordResultHandler records a manually reported match and publishes it for
// downstream processing.
func (s *Server) RecordResultHandler() http.HandlerFunc {
	type request struct {
		Team1    []string `json:"team1"`
		Team2    []string `json:"team2"`
		Winner   int      `json:"winner"`
		PlayedAt int64    `json:"played_at"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if len(req.Team1) == 0 || len(req.Team1) > 2 || len(req.Team2) == 0 || len(req.Team2) > 2 {
			http.Error(w, "Each team needs one or two players", http.StatusBadRequest)
			return
		}
		if req.Winner < 0 || req.Winner > 2 {
			http.Error(w, "Winner must be 0, 1 or 2", http.StatusBadRequest)
			return
		}

		teams := make([]league.MatchTeam, 0, 2)
		for _, ids := range [][]string{req.Team1, req.Team2} {
			players, err := s.Store.GetPlayers(ids)
			if err != nil {
				http.Error(w, "Failed to resolve players", http.StatusInternalServerError)
				log.Error("Failed to resolve players", "error", err)
				return
			}
			byID := make(map[string]league.PlayerInfo, len(players))
			for _, p := range players {
				byID[p.ID] = p
			}
			var team league.MatchTeam
			for _, id := range ids {
				p, ok := byID[id]
				if !ok {
					http.Error(w, "Unknown player in team", http.StatusBadRequest)
					return
				}
				team.Players = append(team.Players, league.MatchPlayer{ID: p.ID, Name: p.Name})
			}
			teams = append(teams, team)
		}

		playedAt := req.PlayedAt
		if playedAt == 0 {
			playedAt = time.Now().Unix()
		}
		match := &league.Match{
			ID:               uuid.NewString(),
			PlayedAt:         playedAt,
			CreatedAt:        time.Now().Unix(),
			Source:           league.SourceManual,
			Teams:            teams,
			Winner:           req.Winner,
			ProcessingStatus: league.StatusNew,
		}

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would have recorded match", "matchID", match.ID)
		} else {
			if err := s.Store.RecordMatch(match); err != nil {
				http.Error(w, "Failed to record match", http.StatusInternalServerError)
				log.Error("Failed to record match", "error", err)
				return
			}
			if err := s.pubsub.SendMessage(pubsub.EventMatchRecorded, match); err != nil {
				log.Error("Failed to publish recorded match", "matchID", match.ID, "error", err)
			}
		}

		log.Info("Recorded match result", "matchID", match.ID, "winner", match.Winner)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) FetchMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match fetch...")
		s.Metrics.IncFetcherRuns()
		isDryRun := isDryRunFromContext(r)

		daysStr := r.URL.Query().Get("days")
		daysToSubtract := 0
		if daysStr != "" {
			parsedDays, err := strconv.Atoi(daysStr)
			if err == nil && parsedDays > 0 {
				daysToSubtract = parsedDays
				log.Info("Fetching historical matches", "days", daysToSubtract)
			} else {
				log.Warn("Invalid 'days' parameter provided. Defaulting to 0.", "days_param", daysStr)
			}
		}

		startDate := time.Now().AddDate(0, 0, -daysToSubtract)

		params := &playtomic.SearchMatchesParams{
			SportID:       "PADEL",
			HasPlayers:    true,
			Sort:          "start_date,ASC",
			TenantIDs:     []string{s.Cfg.TenantID},
			FromStartDate: startDate.Format("2006-01-02") + "T00:00:00",
		}
		log.Info("Fetching matches from", "startDate", startDate)
		summaries, err := s.PlaytomicClient.GetMatches(params)
		if err != nil {
			log.Error("Error fetching Playtomic matches", "error", err)
			http.Error(w, "Failed to fetch matches", http.StatusInternalServerError)
			return
		}

		log.Info("Found matches from API", "count", len(summaries))

		var clubMatches []*playtomic.PadelMatch
		var mu sync.Mutex
		var wg sync.WaitGroup

		for _, summary := range summaries {
			wg.Add(1)
			go func(summary playtomic.MatchSummary) {
				defer wg.Done()
				if summary.OwnerID == nil || !s.Store.IsKnownPlayer(*summary.OwnerID) {
					log.Debug("Skipping non-club match", "matchID", summary.MatchID)
					return
				}
				specificMatch, err := s.PlaytomicClient.GetSpecificMatch(summary.MatchID)
				if err != nil {
					log.Error("Error fetching specific match", "matchID", summary.MatchID, "error", err)
					return
				}

				if !isClubMatch(specificMatch, s.Store) {
					log.Debug("Skipping non-club match", "matchID", summary.MatchID)
					return
				}

				mu.Lock()
				clubMatches = append(clubMatches, &specificMatch)
				mu.Unlock()
			}(summary)
		}
		wg.Wait()

		if len(clubMatches) > 0 {
			matches := make([]*league.Match, 0, len(clubMatches))
			var roster []league.PlayerInfo
			for _, m := range clubMatches {
				matches = append(matches, playtomic.ToLeagueMatch(m))
				roster = append(roster, playtomic.ToRoster(m)...)
			}

			if isDryRun {
				log.Info("[Dry Run] Would have upserted club matches", "count", len(matches))
			} else {
				log.Info("Upserting club matches", "count", len(matches))
				if err := s.Store.UpsertPlayers(roster); err != nil {
					log.Error("Failed to upsert roster", "error", err)
					http.Error(w, "Failed to save players", http.StatusInternalServerError)
					return
				}
				if err := s.Store.UpsertMatches(matches); err != nil {
					log.Error("Failed to bulk upsert matches", "error", err)
					http.Error(w, "Failed to save matches", http.StatusInternalServerError)
					return
				}
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match fetch completed.")
		log.Info("Match fetch finished.", "total_api_matches", len(summaries), "club_matches_found", len(clubMatches))
	}
}

// isClubMatch keeps only matches that are genuinely the club's: a full court
// of known players, or a short-handed booking made up entirely of them.
func isClubMatch(match playtomic.PadelMatch, store league.LeagueStore) bool {
	knownPlayers := 0
	totalPlayers := 0
	for _, team := range match.Teams {
		totalPlayers += len(team.Players)
		for _, player := range team.Players {
			if store.IsKnownPlayer(player.UserID) {
				knownPlayers++
			}
		}
	}

	if totalPlayers >= 4 && knownPlayers >= 4 {
		return true
	}
	if totalPlayers > 0 && totalPlayers < 4 && knownPlayers == totalPlayers {
		return true
	}
	return false
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessMatches(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match processing completed.")
		log.Info("Match processing finished.")
	}
}

// decodePushEnvelope unwraps a Pub/Sub push delivery: the outer JSON wrapper
// carries a base64-encoded MessagePack payload in message.data.
func decodePushEnvelope(r *http.Request) ([]byte, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var pushMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pushMsg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return rawData, nil
}

func (s *Server) UpdatePlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushEnvelope(r)
		if err != nil {
			log.Error("Invalid push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}

		match := league.Match{}
		if err := s.pubsub.ProcessMessage(rawData, &match); err != nil {
			log.Error("Failed to decode match payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		s.Processor.UpdatePlayerStats(&match)
		w.Write([]byte("OK"))
	}
}

func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushEnvelope(r)
		if err != nil {
			log.Error("Invalid push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		match := league.Match{}
		if err := s.pubsub.ProcessMessage(rawData, &match); err != nil {
			log.Error("Failed to decode match payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.Notifier.SendResultNotification(&match, isDryRun); err != nil {
			log.Error("Failed to notify result", "matchID", match.ID, "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetPlayerStats()
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(stats)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := r.FormValue("text")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", playerName)

		stats, err := s.Store.GetPlayerStatsByName(playerName)
		var msg any
		if err != nil || stats == nil {
			log.Warn("Could not find player stats", "player", playerName, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName)
		} else {
			msg, err = s.Notifier.FormatPlayerStatsResponse(stats, playerName)
		}

		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// RatingLeaderboardCommandHandler returns a handler for the /rating-leaderboard
// Slack command. Ratings are recomputed from the full match history on every
// invocation so the board always reflects current form.
func (s *Server) RatingLeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := s.currentForms()
		if err != nil {
			http.Error(w, "Failed to compute ratings", http.StatusInternalServerError)
			log.Error("Failed to compute ratings", "error", err)
			return
		}

		msg, err := s.Notifier.FormatRatingLeaderboardResponse(forms)
		if err != nil {
			http.Error(w, "Failed to format rating leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format rating leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// currentForms replays the full match history and returns every roster
// player's learned form, strongest first.
func (s *Server) currentForms() ([]engine.PlayerForm, error) {
	players, matches, err := s.engineInputs()
	if err != nil {
		return nil, err
	}
	formsByID := engine.LearnForms(players, matches)

	forms := make([]engine.PlayerForm, 0, len(formsByID))
	for _, f := range formsByID {
		forms = append(forms, *f)
	}
	sortFormsByEffective(forms)
	return forms, nil
}
