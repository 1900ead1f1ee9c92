package league

import "sync"

// MockStore is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc               func(playerID, name string, rating float64)
	UpsertPlayersFunc           func(players []PlayerInfo) error
	GetAllPlayersFunc           func() ([]PlayerInfo, error)
	GetPlayersFunc              func(playerIDs []string) ([]PlayerInfo, error)
	GetPlayersSortedByRatingFunc func() ([]PlayerInfo, error)
	IsKnownPlayerFunc           func(playerID string) bool
	RecordMatchFunc             func(match *Match) error
	UpsertMatchesFunc           func(matches []*Match) error
	GetAllMatchesFunc           func() ([]*Match, error)
	GetMatchesForProcessingFunc func() ([]*Match, error)
	UpdateProcessingStatusFunc  func(matchID string, status ProcessingStatus) error
	UpdatePlayerStatsFunc       func(match *Match)
	GetPlayerStatsFunc          func() ([]PlayerStats, error)
	GetPlayerStatsByNameFunc    func(playerName string) (*PlayerStats, error)

	// Call records
	AddPlayerCalls   []PlayerInfo
	RecordMatchCalls []*Match
	UpsertMatchCalls [][]*Match
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  ProcessingStatus
	}
	UpdatePlayerStatsCalls []*Match
	ClearCalls             int
	ClearMatchCalls        []string
}

var _ LeagueStore = (*MockStore)(nil)

// NewMock creates a new mock LeagueStore.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) AddPlayer(playerID, name string, rating float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, PlayerInfo{ID: playerID, Name: name, Rating: rating})
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name, rating)
	}
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetPlayersSortedByRating() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersSortedByRatingFunc != nil {
		return m.GetPlayersSortedByRatingFunc()
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) RecordMatch(match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordMatchCalls = append(m.RecordMatchCalls, match)
	if m.RecordMatchFunc != nil {
		return m.RecordMatchFunc(match)
	}
	return nil
}

func (m *MockStore) UpsertMatches(matches []*Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchCalls = append(m.UpsertMatchCalls, matches)
	if m.UpsertMatchesFunc != nil {
		return m.UpsertMatchesFunc(matches)
	}
	return nil
}

func (m *MockStore) GetAllMatches() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) GetMatchesForProcessing() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchesForProcessingFunc != nil {
		return m.GetMatchesForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) UpdatePlayerStats(match *Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatePlayerStatsCalls = append(m.UpdatePlayerStatsCalls, match)
	if m.UpdatePlayerStatsFunc != nil {
		m.UpdatePlayerStatsFunc(match)
	}
}

func (m *MockStore) GetPlayerStats() ([]PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerStatsFunc != nil {
		return m.GetPlayerStatsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerStatsByNameFunc != nil {
		return m.GetPlayerStatsByNameFunc(playerName)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}

func (m *MockStore) ClearMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearMatchCalls = append(m.ClearMatchCalls, matchID)
}
