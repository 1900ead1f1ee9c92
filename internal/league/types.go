package league

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ProcessingStatus defines the internal processing state of a recorded match.
type ProcessingStatus string

const (
	StatusNew            ProcessingStatus = "NEW"
	StatusResultNotified ProcessingStatus = "RESULT_NOTIFIED"
	StatusStatsUpdated   ProcessingStatus = "STATS_UPDATED"
	StatusCompleted      ProcessingStatus = "COMPLETED"
)

// MatchSource tells where a match record came from.
type MatchSource string

const (
	SourceManual    MatchSource = "MANUAL"
	SourcePlaytomic MatchSource = "PLAYTOMIC"
)

// PlayerInfo represents a roster entry.
type PlayerInfo struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// MatchPlayer is a player reference embedded in a match's team blob.
type MatchPlayer struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
}

// MatchTeam is one side of a match.
type MatchTeam struct {
	Players []MatchPlayer `json:"players" msgpack:"players"`
}

// Match is a recorded league match. Winner is 1 or 2; zero means the result
// has not been reported yet.
type Match struct {
	ID               string           `json:"id"`
	PlayedAt         int64            `json:"played_at"`
	CreatedAt        int64            `json:"created_at"`
	Source           MatchSource      `json:"source"`
	Teams            []MatchTeam      `json:"teams"`
	Winner           int              `json:"winner"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

// PlayerStats represents a player's statistics for the leaderboard.
type PlayerStats struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	MatchesPlayed int     `json:"matches_played"`
	MatchesWon    int     `json:"matches_won"`
	MatchesLost   int     `json:"matches_lost"`
	WinPercentage float64 `json:"win_percentage"`
}
