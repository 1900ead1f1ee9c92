package notifier

import (
	"sync"

	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMatchProposalsCalls     []*engine.MatchmakingResult
	SendResultNotificationCalls []struct{ Match *league.Match }
	SendLeaderboardCalls        [][]league.PlayerStats
	SendRatingLeaderboardCalls  [][]engine.PlayerForm
	SendPlayerStatsCalls        []struct {
		Stats *league.PlayerStats
		Query string
	}
	SendPlayerNotFoundCalls []string

	// Spies for send functions
	SendMatchProposalsFunc     func(result *engine.MatchmakingResult, dryRun bool) error
	SendResultNotificationFunc func(match *league.Match, dryRun bool) error

	// Spies for format functions
	FormatLeaderboardResponseFunc       func(stats []league.PlayerStats) (any, error)
	FormatRatingLeaderboardResponseFunc func(players []engine.PlayerForm) (any, error)
	FormatMatchupsResponseFunc          func(proposals []engine.MatchProposal) (any, error)
	FormatPredictionResponseFunc        func(proposal *engine.MatchProposal) (any, error)
	FormatPlayerStatsResponseFunc       func(stats *league.PlayerStats, query string) (any, error)
	FormatPlayerNotFoundResponseFunc    func(query string) (any, error)

	// Call records for format functions
	LastLeaderboardResponse       any
	LastRatingLeaderboardResponse any
	LastPlayerStatsResponse       any
	LastPlayerNotFoundResponse    any
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchProposalsCalls = nil
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.SendRatingLeaderboardCalls = nil
	m.SendPlayerStatsCalls = nil
	m.SendPlayerNotFoundCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastRatingLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendMatchProposals(result *engine.MatchmakingResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchProposalsCalls = append(m.SendMatchProposalsCalls, result)
	if m.SendMatchProposalsFunc != nil {
		return m.SendMatchProposalsFunc(result, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(match *league.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct{ Match *league.Match }{match})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(stats []league.PlayerStats, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, stats)
	return nil
}

func (m *Mock) SendRatingLeaderboard(players []engine.PlayerForm, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingLeaderboardCalls = append(m.SendRatingLeaderboardCalls, players)
	return nil
}

func (m *Mock) SendPlayerStats(stats *league.PlayerStats, query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerStatsCalls = append(m.SendPlayerStatsCalls, struct {
		Stats *league.PlayerStats
		Query string
	}{stats, query})
	return nil
}

func (m *Mock) SendPlayerNotFound(query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerNotFoundCalls = append(m.SendPlayerNotFoundCalls, query)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(stats []league.PlayerStats) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(stats)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatRatingLeaderboardResponse(players []engine.PlayerForm) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatRatingLeaderboardResponseFunc != nil {
		resp, err := m.FormatRatingLeaderboardResponseFunc(players)
		m.LastRatingLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_rating_leaderboard", nil
}

func (m *Mock) FormatMatchupsResponse(proposals []engine.MatchProposal) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatMatchupsResponseFunc != nil {
		return m.FormatMatchupsResponseFunc(proposals)
	}
	return "formatted_matchups", nil
}

func (m *Mock) FormatPredictionResponse(proposal *engine.MatchProposal) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPredictionResponseFunc != nil {
		return m.FormatPredictionResponseFunc(proposal)
	}
	return "formatted_prediction", nil
}

func (m *Mock) FormatPlayerStatsResponse(stats *league.PlayerStats, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(stats, query)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}
