package http

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/slack-go/slack"
)

// engineInputs loads the full roster and match history in the engine's input
// shape. Every engine endpoint replays the same history, so there is no
// cached state to invalidate.
func (s *Server) engineInputs() ([]engine.Player, []engine.Match, error) {
	players, err := s.Store.GetAllPlayers()
	if err != nil {
		return nil, nil, err
	}
	matches, err := s.Store.GetAllMatches()
	if err != nil {
		return nil, nil, err
	}
	return league.EnginePlayers(players), league.EngineMatches(matches), nil
}

func sortFormsByEffective(forms []engine.PlayerForm) {
	sort.SliceStable(forms, func(i, j int) bool {
		return forms[i].Effective > forms[j].Effective
	})
}

// splitIDs parses a comma-separated id list, dropping empty entries.
func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// MatchmakeHandler runs the auto-matchmaker over the selected players
// (`players` query param, comma-separated ids; defaults to the full roster)
// and returns the pairing and schedule. With `notify=true` the proposals are
// also posted to Slack.
func (s *Server) MatchmakeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncMatchmakerRuns()
		isDryRun := isDryRunFromContext(r)

		players, matches, err := s.engineInputs()
		if err != nil {
			http.Error(w, "Failed to load league data", http.StatusInternalServerError)
			log.Error("Failed to load league data", "error", err)
			return
		}

		selected := splitIDs(r.URL.Query().Get("players"))
		if len(selected) == 0 {
			for _, p := range players {
				selected = append(selected, p.ID)
			}
		}

		start := time.Now()
		result, err := s.Engine.RunAutoMatchmaker(selected, players, matches)
		s.Metrics.ObserveEngineDuration(time.Since(start).Seconds())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			log.Warn("Matchmaker rejected selection", "error", err)
			return
		}

		if r.URL.Query().Get("notify") == "true" {
			if err := s.Notifier.SendMatchProposals(result, isDryRun); err != nil {
				log.Error("Failed to send match proposals", "error", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Error("Failed to encode matchmaking result", "error", err)
		}
	}
}

// MatchupsHandler serves the fixed-team query: the best opponent pairs for the
// `team` given (two comma-separated ids), drawn from `pool` (defaults to the
// full roster).
func (s *Server) MatchupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamIDs := splitIDs(r.URL.Query().Get("team"))
		if len(teamIDs) != 2 {
			http.Error(w, "Parameter 'team' needs exactly two player ids", http.StatusBadRequest)
			return
		}

		players, matches, err := s.engineInputs()
		if err != nil {
			http.Error(w, "Failed to load league data", http.StatusInternalServerError)
			log.Error("Failed to load league data", "error", err)
			return
		}

		poolIDs := splitIDs(r.URL.Query().Get("pool"))
		if len(poolIDs) == 0 {
			for _, p := range players {
				poolIDs = append(poolIDs, p.ID)
			}
		}

		start := time.Now()
		proposals := s.Engine.FindTopMatchupsForTeam(teamIDs, poolIDs, players, matches)
		s.Metrics.ObserveEngineDuration(time.Since(start).Seconds())

		if proposals == nil {
			http.Error(w, "Could not resolve the fixed team", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(proposals); err != nil {
			log.Error("Failed to encode matchups", "error", err)
		}
	}
}

// PredictHandler predicts the outcome of a hypothetical match between `team1`
// and `team2` (each one or two comma-separated ids).
func (s *Server) PredictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team1 := splitIDs(r.URL.Query().Get("team1"))
		team2 := splitIDs(r.URL.Query().Get("team2"))
		if len(team1) == 0 || len(team2) == 0 {
			http.Error(w, "Parameters 'team1' and 'team2' are required", http.StatusBadRequest)
			return
		}

		players, matches, err := s.engineInputs()
		if err != nil {
			http.Error(w, "Failed to load league data", http.StatusInternalServerError)
			log.Error("Failed to load league data", "error", err)
			return
		}

		s.Metrics.IncPredictions()
		start := time.Now()
		proposal := s.Engine.PredictMatchOutcome(team1, team2, players, matches)
		s.Metrics.ObserveEngineDuration(time.Since(start).Seconds())

		if proposal == nil {
			http.Error(w, "Could not resolve all players", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(proposal); err != nil {
			log.Error("Failed to encode prediction", "error", err)
		}
	}
}

// MatchmakeCommandHandler returns a handler for the /matchmake Slack command.
// The command text is a comma-separated list of player names; an empty text
// runs the matchmaker over the whole roster.
func (s *Server) MatchmakeCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		text := r.FormValue("text")
		log.Info("Received matchmake command", "text", text)
		s.Metrics.IncMatchmakerRuns()

		players, matches, err := s.engineInputs()
		if err != nil {
			http.Error(w, "Failed to load league data", http.StatusInternalServerError)
			log.Error("Failed to load league data", "error", err)
			return
		}

		selected, unknown := resolveSelection(text, players)
		if len(unknown) > 0 {
			msg, err := s.Notifier.FormatPlayerNotFoundResponse(strings.Join(unknown, ", "))
			if err != nil {
				http.Error(w, "Failed to format response", http.StatusInternalServerError)
				return
			}
			if slackMsg, ok := msg.(slack.Message); ok {
				respondWithSlackMsg(w, slackMsg)
				return
			}
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			return
		}
		if len(selected) == 0 {
			for _, p := range players {
				selected = append(selected, p.ID)
			}
		}

		start := time.Now()
		result, err := s.Engine.RunAutoMatchmaker(selected, players, matches)
		s.Metrics.ObserveEngineDuration(time.Since(start).Seconds())
		if err != nil {
			log.Warn("Matchmaker rejected selection", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		msg, err := s.Notifier.FormatMatchupsResponse(result.Matches)
		if err != nil {
			http.Error(w, "Failed to format proposals", http.StatusInternalServerError)
			log.Error("Failed to format proposals", "error", err)
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

// resolveSelection maps comma-separated player names to roster ids. Matching
// is case-insensitive; names that resolve to nobody come back in unknown.
func resolveSelection(text string, players []engine.Player) (selected []string, unknown []string) {
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		found := false
		for _, p := range players {
			if strings.EqualFold(p.Name, name) {
				selected = append(selected, p.ID)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}
