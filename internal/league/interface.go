package league

// LeagueStore defines the interface for interacting with the league's data.
type LeagueStore interface {
	AddPlayer(playerID, name string, rating float64)
	UpsertPlayers(players []PlayerInfo) error
	GetAllPlayers() ([]PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	GetPlayersSortedByRating() ([]PlayerInfo, error)
	IsKnownPlayer(playerID string) bool
	RecordMatch(match *Match) error
	UpsertMatches(matches []*Match) error
	GetAllMatches() ([]*Match, error)
	GetMatchesForProcessing() ([]*Match, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error
	UpdatePlayerStats(match *Match)
	GetPlayerStats() ([]PlayerStats, error)
	GetPlayerStatsByName(playerName string) (*PlayerStats, error)
	Clear()
	ClearMatch(matchID string)
}
