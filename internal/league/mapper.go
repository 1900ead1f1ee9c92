package league

import "github.com/mauv0809/courtside/internal/engine"

// EnginePlayers converts roster entries into the engine's input shape.
func EnginePlayers(players []PlayerInfo) []engine.Player {
	out := make([]engine.Player, len(players))
	for i, p := range players {
		out[i] = engine.Player{ID: p.ID, Name: p.Name, Rating: p.Rating}
	}
	return out
}

// EngineMatches converts recorded matches into the engine's input shape.
// Matches without a reported winner are passed through as-is; the engine
// skips them on its own.
func EngineMatches(matches []*Match) []engine.Match {
	out := make([]engine.Match, 0, len(matches))
	for _, m := range matches {
		em := engine.Match{
			ID:       m.ID,
			PlayedAt: m.PlayedAt,
			Winner:   m.Winner,
		}
		for _, t := range m.Teams {
			ids := make([]string, len(t.Players))
			for i, p := range t.Players {
				ids[i] = p.ID
			}
			em.Teams = append(em.Teams, engine.MatchTeam{PlayerIDs: ids})
		}
		out = append(out, em)
	}
	return out
}
