package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func playerForm(id, name string, effective float64) *engine.PlayerForm {
	return &engine.PlayerForm{ID: id, Name: name, Base: effective, Effective: effective}
}

func pairOf(p1, p2 *engine.PlayerForm) engine.Pair {
	pair := engine.Pair{P1: p1, P2: p2}
	pair.Strength = p1.Effective
	if p2 != nil {
		pair.Strength += p2.Effective
	}
	return pair
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendMatchProposals_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	result := &engine.MatchmakingResult{
		Matches: []engine.MatchProposal{
			{
				Team1: pairOf(playerForm("p1", "Player A", 3.0), playerForm("p2", "Player B", 4.0)),
				Team2: pairOf(playerForm("p3", "Player C", 3.5), playerForm("p4", "Player D", 3.5)),
			},
		},
	}

	err := notifier.SendMatchProposals(result, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendMatchProposals")
}

func TestFormatMatchProposals(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats a scheduled match with handicap", func(t *testing.T) {
		result := &engine.MatchmakingResult{
			Matches: []engine.MatchProposal{
				{
					Team1:    pairOf(playerForm("p1", "Player A", 3.0), playerForm("p2", "Player B", 4.0)),
					Team2:    pairOf(playerForm("p3", "Player C", 3.5), playerForm("p4", "Player D", 4.5)),
					Handicap: &engine.Handicap{Team: 1, Points: 2, Reason: "Team 1 starts each set with 2 points"},
					Analysis: engine.Analysis{Quality: 88},
				},
			},
		}

		msg := client.formatMatchProposals(result)
		require.Len(t, msg.Blocks.BlockSet, 3, "Expected header + match + context")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok, "First block should be a HeaderBlock")
		assert.Equal(t, "🎾 Tonight's matches 🎾", header.Text.Text)
		assert.True(t, *header.Text.Emoji)

		match, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok, "Second block should be a SectionBlock")
		assert.Contains(t, match.Text.Text, "Player A & Player B (7.0)")
		assert.Contains(t, match.Text.Text, "Player C & Player D (8.0)")

		contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
		require.True(t, ok, "Third block should be a ContextBlock")
		require.Len(t, contextBlock.ContextElements.Elements, 2)

		handicapElement, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
		require.True(t, ok)
		assert.Equal(t, "Team 1 starts each set with 2 points", handicapElement.Text)

		balanceElement, ok := contextBlock.ContextElements.Elements[1].(*slackapi.TextBlockObject)
		require.True(t, ok)
		assert.Equal(t, "Balance: 88/100", balanceElement.Text)
	})

	t.Run("separates multiple matches with dividers", func(t *testing.T) {
		proposal := engine.MatchProposal{
			Team1: pairOf(playerForm("p1", "Player A", 3.0), playerForm("p2", "Player B", 4.0)),
			Team2: pairOf(playerForm("p3", "Player C", 3.5), playerForm("p4", "Player D", 3.5)),
		}
		result := &engine.MatchmakingResult{Matches: []engine.MatchProposal{proposal, proposal}}

		msg := client.formatMatchProposals(result)
		require.Len(t, msg.Blocks.BlockSet, 6, "Expected header + 2x(match+context) + divider")

		_, ok := msg.Blocks.BlockSet[3].(*slackapi.DividerBlock)
		assert.True(t, ok, "Fourth block should be a DividerBlock")
	})

	t.Run("displays message when nothing was scheduled", func(t *testing.T) {
		msg := client.formatMatchProposals(&engine.MatchmakingResult{})
		require.Len(t, msg.Blocks.BlockSet, 2)

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No matches could be scheduled.", message.Text.Text)
	})
}

func TestFormatResultNotification(t *testing.T) {
	match := &league.Match{
		ID:       "m1",
		PlayedAt: time.Date(2026, 7, 8, 20, 0, 0, 0, time.UTC).Unix(),
		Winner:   1,
		Teams: []league.MatchTeam{
			{Players: []league.MatchPlayer{{ID: "p1", Name: "Player A"}, {ID: "p2", Name: "Player B"}}},
			{Players: []league.MatchPlayer{{ID: "p3", Name: "Player C"}, {ID: "p4", Name: "Player D"}}},
		},
	}
	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(match)

	require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks")

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "🎾 Match finished! 🎾", header.Text.Text)

	result, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Result: Player A & Player B won! 🏆", result.Text.Text)

	teams, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "• Player A & Player B\n• Player C & Player D", teams.Text.Text)
}

func TestFormatResultNotification_NoWinner(t *testing.T) {
	match := &league.Match{
		ID:       "m1",
		PlayedAt: time.Now().Unix(),
		Teams: []league.MatchTeam{
			{Players: []league.MatchPlayer{{ID: "p1", Name: "Player A"}}},
			{Players: []league.MatchPlayer{{ID: "p2", Name: "Player B"}}},
		},
	}
	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(match)

	result, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Result: No winner reported.", result.Text.Text)
}

func TestFormatLeaderboard(t *testing.T) {
	t.Run("displays leaderboard with stats", func(t *testing.T) {
		stats := []league.PlayerStats{
			{PlayerName: "Player A", MatchesPlayed: 10, MatchesWon: 8, WinPercentage: 80.0},
			{PlayerName: "Player B", MatchesPlayed: 10, MatchesWon: 6, WinPercentage: 60.0},
			{PlayerName: "Player C", MatchesPlayed: 10, MatchesWon: 4, WinPercentage: 40.0},
		}

		client := &Notifier{channelID: "C123"}
		msg := client.formatLeaderboard(stats)

		require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks (header + 3 players)")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Player Leaderboard 🏆", header.Text.Text)

		player1, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player1.Text.Text, "1. 🥇 Player A")
		assert.Contains(t, player1.Text.Text, "> Match Win %: 80.00% (8/10)")

		player2, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player2.Text.Text, "2. 🥈 Player B")

		player3, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player3.Text.Text, "3. 🥉 Player C")
	})

	t.Run("displays message when no stats are available", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatLeaderboard([]league.PlayerStats{})

		require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks (header + message)")

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No stats available yet. Go play some matches!", message.Text.Text)
	})
}

func TestFormatRatingLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats leaderboard with players", func(t *testing.T) {
		players := []engine.PlayerForm{
			{Name: "Player A", Base: 4.3, Form: 0.2, Effective: 4.5},
			{Name: "Player B", Base: 3.6, Form: -0.1, Effective: 3.5},
			{Name: "Player C", Base: 2.0, Effective: 2.0},
		}

		msg := client.formatRatingLeaderboard(players)
		require.Len(t, msg.Blocks.BlockSet, 4) // Header + 3 players

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Player Leaderboard (by Rating) 🏆", header.Text.Text)

		player1, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player1.Text.Text, "1. 🥇 Player A")
		assert.Contains(t, player1.Text.Text, "> *Rating*: 4.50 (form +0.20)")

		player2, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player2.Text.Text, "2. 🥈 Player B")
		assert.Contains(t, player2.Text.Text, "> *Rating*: 3.50 (form -0.10)")
	})

	t.Run("formats message for no players", func(t *testing.T) {
		msg := client.formatRatingLeaderboard([]engine.PlayerForm{})
		require.Len(t, msg.Blocks.BlockSet, 2) // Header + message

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No players found.", message.Text.Text)
	})
}

func TestFormatMatchups(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("lists opponents with handicap info", func(t *testing.T) {
		fixed := pairOf(playerForm("p1", "Player A", 3.0), playerForm("p2", "Player B", 4.0))
		proposals := []engine.MatchProposal{
			{
				Team1:    fixed,
				Team2:    pairOf(playerForm("p3", "Player C", 3.5), playerForm("p4", "Player D", 3.5)),
				Analysis: engine.Analysis{Quality: 97},
			},
			{
				Team1:    fixed,
				Team2:    pairOf(playerForm("p5", "Player E", 4.0), playerForm("p6", "Player F", 4.0)),
				Handicap: &engine.Handicap{Team: 1, Points: 2, Reason: "handicap"},
				Analysis: engine.Analysis{Quality: 80},
			},
		}

		msg := client.formatMatchups(proposals)
		require.Len(t, msg.Blocks.BlockSet, 3) // Header + 2 matchups

		first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, first.Text.Text, "1. Player C & Player D (7.0)")
		assert.Contains(t, first.Text.Text, "even game")

		second, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, second.Text.Text, "+2 points to Player A & Player B")
	})

	t.Run("formats message for no opponents", func(t *testing.T) {
		msg := client.formatMatchups(nil)
		require.Len(t, msg.Blocks.BlockSet, 2)

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No opponents available.", message.Text.Text)
	})
}

func TestFormatPrediction(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats a prediction including singles teams", func(t *testing.T) {
		proposal := &engine.MatchProposal{
			Team1:    pairOf(playerForm("p1", "Player A", 4.0), nil),
			Team2:    pairOf(playerForm("p2", "Player B", 3.0), nil),
			Handicap: &engine.Handicap{Team: 2, Points: 3, Reason: "Team 2 starts each set with 3 points"},
			Analysis: engine.Analysis{Quality: 50},
		}

		msg := client.formatPrediction(proposal)
		require.Len(t, msg.Blocks.BlockSet, 3)

		teams, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, teams.Text.Text, "Player A (4.0)")
		assert.Contains(t, teams.Text.Text, "Player B (3.0)")

		contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
		require.True(t, ok)
		require.Len(t, contextBlock.ContextElements.Elements, 2)
	})

	t.Run("formats message for an unresolvable prediction", func(t *testing.T) {
		msg := client.formatPrediction(nil)
		require.Len(t, msg.Blocks.BlockSet, 2)

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Could not resolve all players.", message.Text.Text)
	})
}

func TestFormatPlayerStats(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats stats for a found player", func(t *testing.T) {
		stat := &league.PlayerStats{
			PlayerName:    "Morten Voss",
			MatchesPlayed: 10,
			MatchesWon:    8,
			MatchesLost:   2,
			WinPercentage: 80.0,
		}

		msg := client.formatPlayerStats(stat, "Morten")
		require.Len(t, msg.Blocks.BlockSet, 2)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Stats for Morten Voss 🏆", header.Text.Text)

		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "> *Match Win %*: 80.00% (8/10)")
		assert.Contains(t, section.Text.Text, "> *Matches Lost*: 2")
	})

	t.Run("formats message for a player not found", func(t *testing.T) {
		msg := client.formatPlayerNotFound("Unknown Player")
		require.Len(t, msg.Blocks.BlockSet, 1)

		section, ok := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Sorry, I couldn't find a player matching *Unknown Player*. Try a different name.", section.Text.Text)
	})
}
