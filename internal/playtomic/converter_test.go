package playtomic

import (
	"testing"

	"github.com/mauv0809/courtside/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLeagueMatch(t *testing.T) {
	m := &PadelMatch{
		MatchID:   "match-abc",
		Start:     1000,
		CreatedAt: 900,
		Teams: []Team{
			{ID: "1", Players: []Player{{UserID: "u1", Name: "Player A"}, {UserID: "u2", Name: "Player B"}}},
			{ID: "2", TeamResult: "WON", Players: []Player{{UserID: "u3", Name: "Player C"}, {UserID: "u4", Name: "Player D"}}},
		},
	}

	got := ToLeagueMatch(m)

	assert.Equal(t, "match-abc", got.ID)
	assert.Equal(t, int64(1000), got.PlayedAt)
	assert.Equal(t, league.SourcePlaytomic, got.Source)
	assert.Equal(t, 2, got.Winner)
	require.Len(t, got.Teams, 2)
	assert.Equal(t, "u1", got.Teams[0].Players[0].ID)
	assert.Equal(t, "Player D", got.Teams[1].Players[1].Name)
}

func TestToLeagueMatchNoResult(t *testing.T) {
	m := &PadelMatch{
		MatchID: "match-abc",
		Start:   1000,
		Teams: []Team{
			{ID: "1", Players: []Player{{UserID: "u1", Name: "Player A"}}},
			{ID: "2", Players: []Player{{UserID: "u2", Name: "Player B"}}},
		},
	}

	got := ToLeagueMatch(m)
	assert.Equal(t, 0, got.Winner)
	assert.Equal(t, int64(1000), got.CreatedAt, "missing created_at falls back to start time")
}

func TestToRoster(t *testing.T) {
	m := &PadelMatch{
		Teams: []Team{
			{Players: []Player{{UserID: "u1", Name: "Player A", Level: 3.5}, {UserID: "", Name: "Guest"}}},
			{Players: []Player{{UserID: "u2", Name: "Player B"}}},
		},
	}

	roster := ToRoster(m)
	require.Len(t, roster, 2, "players without an id are skipped")
	assert.Equal(t, league.PlayerInfo{ID: "u1", Name: "Player A", Rating: 3.5}, roster[0])
	assert.Equal(t, 0.0, roster[1].Rating)
}
