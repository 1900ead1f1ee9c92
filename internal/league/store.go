package league

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

// AddPlayer inserts a player if missing. Errors are logged, not returned,
// since callers treat roster seeding as best effort.
func (s *store) AddPlayer(playerID, name string, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT OR IGNORE INTO players (id, name, rating) VALUES (?, ?, ?)", playerID, name, rating)
	if err != nil {
		log.Error("Failed to add player", "error", err, "playerID", playerID)
	}
}

// UpsertPlayers inserts or updates a batch of roster entries. A zero rating
// never overwrites a known rating.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rating = CASE WHEN excluded.rating > 0 THEN excluded.rating ELSE players.rating END;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name, p.Rating); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, rating FROM players ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := s.db.Query("SELECT id, name, rating FROM players WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players by id: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (s *store) GetPlayersSortedByRating() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, rating FROM players ORDER BY rating DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query players by rating: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRow("SELECT id FROM players WHERE id = ?", playerID).Scan(&id)
	return err == nil
}

// RecordMatch inserts a new match in the NEW processing state.
func (s *store) RecordMatch(match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamsBlob, err := msgpack.Marshal(match.Teams)
	if err != nil {
		return fmt.Errorf("failed to marshal teams: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO matches (id, played_at, created_at, source, winner, teams_blob, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, match.ID, match.PlayedAt, match.CreatedAt, string(match.Source), match.Winner, teamsBlob, string(StatusNew))
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}

	log.Info("Recorded match", "matchID", match.ID, "source", match.Source)
	return nil
}

// UpsertMatches inserts or updates matches without touching the processing
// status of existing rows, so an import never rewinds the state machine.
func (s *store) UpsertMatches(matches []*Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO matches (id, played_at, created_at, source, winner, teams_blob, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			played_at = excluded.played_at,
			source = excluded.source,
			winner = excluded.winner,
			teams_blob = excluded.teams_blob;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		teamsBlob, err := msgpack.Marshal(m.Teams)
		if err != nil {
			return fmt.Errorf("failed to marshal teams for match %s: %w", m.ID, err)
		}
		if _, err := stmt.Exec(m.ID, m.PlayedAt, m.CreatedAt, string(m.Source), m.Winner, teamsBlob, string(StatusNew)); err != nil {
			return fmt.Errorf("failed to upsert match %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) GetAllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, played_at, created_at, source, winner, teams_blob, processing_status
		FROM matches
		ORDER BY played_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	return s.scanMatches(rows)
}

// GetMatchesForProcessing retrieves all matches that have not completed the
// state machine yet.
func (s *store) GetMatchesForProcessing() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, played_at, created_at, source, winner, teams_blob, processing_status
		FROM matches
		WHERE processing_status != ?
		ORDER BY played_at ASC
	`, string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for processing: %w", err)
	}
	defer rows.Close()

	return s.scanMatches(rows)
}

// UpdateProcessingStatus transitions a match to a new state.
func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET processing_status = ? WHERE id = ?", string(status), matchID)
	if err != nil {
		return fmt.Errorf("failed to update processing status for %s: %w", matchID, err)
	}
	return nil
}

// UpdatePlayerStats folds a finished match into the leaderboard counters.
func (s *store) UpdatePlayerStats(match *Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.Winner != 1 && match.Winner != 2 {
		log.Warn("Match has no winner, skipping stats update", "matchID", match.ID)
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for stats update", "error", err, "matchID", match.ID)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO player_stats (player_id, matches_played, matches_won, matches_lost)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			matches_played = matches_played + 1,
			matches_won = matches_won + excluded.matches_won,
			matches_lost = matches_lost + excluded.matches_lost;
	`)
	if err != nil {
		log.Error("Failed to prepare stats update", "error", err, "matchID", match.ID)
		return
	}
	defer stmt.Close()

	for i, team := range match.Teams {
		won := 0
		if i+1 == match.Winner {
			won = 1
		}
		for _, player := range team.Players {
			if _, err := stmt.Exec(player.ID, won, 1-won); err != nil {
				log.Error("Failed to update stats for player", "error", err, "playerID", player.ID)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit stats update", "error", err, "matchID", match.ID)
	}
}

func (s *store) GetPlayerStats() ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ps.player_id, p.name, ps.matches_played, ps.matches_won, ps.matches_lost
		FROM player_stats ps
		JOIN players p ON p.id = ps.player_id
		ORDER BY ps.matches_won DESC, ps.matches_played ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stats: %w", err)
	}
	defer rows.Close()

	var stats []PlayerStats
	for rows.Next() {
		var st PlayerStats
		if err := rows.Scan(&st.PlayerID, &st.PlayerName, &st.MatchesPlayed, &st.MatchesWon, &st.MatchesLost); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		if st.MatchesPlayed > 0 {
			st.WinPercentage = float64(st.MatchesWon) / float64(st.MatchesPlayed) * 100
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *store) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	stats, err := s.GetPlayerStats()
	if err != nil {
		return nil, err
	}
	for i := range stats {
		if strings.EqualFold(stats[i].PlayerName, playerName) {
			return &stats[i], nil
		}
	}
	return nil, nil
}

// Clear wipes all league data. Used by tests and the /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"player_stats", "matches", "players"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "error", err, "table", table)
		}
	}
	log.Info("League store cleared")
}

func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID); err != nil {
		log.Error("Failed to clear match", "error", err, "matchID", matchID)
	}
}

func scanPlayers(rows *sql.Rows) ([]PlayerInfo, error) {
	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name, &p.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		p.Name = name.String
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) scanMatches(rows *sql.Rows) ([]*Match, error) {
	var matches []*Match
	for rows.Next() {
		var m Match
		var source, status string
		var teamsBlob []byte
		if err := rows.Scan(&m.ID, &m.PlayedAt, &m.CreatedAt, &source, &m.Winner, &teamsBlob, &status); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		m.Source = MatchSource(source)
		m.ProcessingStatus = ProcessingStatus(status)
		if teamsBlob != nil {
			if err := msgpack.Unmarshal(teamsBlob, &m.Teams); err != nil {
				log.Warn("Failed to unmarshal team blob, skipping match", "error", err, "matchID", m.ID)
				continue
			}
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}
