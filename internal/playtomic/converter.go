package playtomic

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/league"
)

// ToLeagueMatch converts a fetched Playtomic match into a league match record.
// The winner is taken from the team results; zero means no result yet.
func ToLeagueMatch(m *PadelMatch) *league.Match {
	teams := make([]league.MatchTeam, 0, len(m.Teams))
	for _, team := range m.Teams {
		var players []league.MatchPlayer
		for _, p := range team.Players {
			players = append(players, league.MatchPlayer{ID: p.UserID, Name: p.Name})
		}
		teams = append(teams, league.MatchTeam{Players: players})
	}

	winner := 0
	for i, team := range m.Teams {
		if team.TeamResult == "WON" {
			if winner != 0 {
				log.Warn("Multiple winning teams reported, keeping first", "matchID", m.MatchID)
				break
			}
			winner = i + 1
		}
	}

	return &league.Match{
		ID:       m.MatchID,
		PlayedAt: m.Start,
		CreatedAt: func() int64 {
			if m.CreatedAt != 0 {
				return m.CreatedAt
			}
			return m.Start
		}(),
		Source: league.SourcePlaytomic,
		Teams:  teams,
		Winner: winner,
	}
}

// ToRoster extracts the roster entries seen in a fetched match. Playtomic
// levels become base ratings; unknown levels come through as zero and never
// overwrite a stored rating.
func ToRoster(m *PadelMatch) []league.PlayerInfo {
	var roster []league.PlayerInfo
	for _, team := range m.Teams {
		for _, p := range team.Players {
			if p.UserID == "" {
				continue
			}
			roster = append(roster, league.PlayerInfo{ID: p.UserID, Name: p.Name, Rating: p.Level})
		}
	}
	return roster
}
