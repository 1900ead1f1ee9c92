package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface

func (s *Notifier) SendMatchProposals(result *engine.MatchmakingResult, dryRun bool) error {
	msg := s.formatMatchProposals(result)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendResultNotification(match *league.Match, dryRun bool) error {
	msg := s.formatResultNotification(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(stats []league.PlayerStats, dryRun bool) error {
	msg := s.formatLeaderboard(stats)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendRatingLeaderboard(players []engine.PlayerForm, dryRun bool) error {
	msg := s.formatRatingLeaderboard(players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerStats(stats *league.PlayerStats, query string, dryRun bool) error {
	msg := s.formatPlayerStats(stats, query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerNotFound(query string, dryRun bool) error {
	msg := s.formatPlayerNotFound(query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(stats []league.PlayerStats) (any, error) {
	return s.formatLeaderboard(stats), nil
}

// FormatRatingLeaderboardResponse formats a rating leaderboard message for a slash command response.
func (s *Notifier) FormatRatingLeaderboardResponse(players []engine.PlayerForm) (any, error) {
	return s.formatRatingLeaderboard(players), nil
}

// FormatMatchupsResponse formats a matchup suggestion list for a slash command response.
func (s *Notifier) FormatMatchupsResponse(proposals []engine.MatchProposal) (any, error) {
	return s.formatMatchups(proposals), nil
}

// FormatPredictionResponse formats a match prediction for a slash command response.
func (s *Notifier) FormatPredictionResponse(proposal *engine.MatchProposal) (any, error) {
	return s.formatPrediction(proposal), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(stats *league.PlayerStats, query string) (any, error) {
	return s.formatPlayerStats(stats, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

// formatMatchProposals creates the Slack message for an auto-matchmaker run using Block Kit.
func (s *Notifier) formatMatchProposals(result *engine.MatchmakingResult) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Tonight's matches 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if result == nil || len(result.Matches) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No matches could be scheduled.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, match := range result.Matches {
		matchText := fmt.Sprintf("Match %d\n%s (%.1f)\nvs\n%s (%.1f)",
			i+1,
			match.Team1.Names(), match.Team1.Strength,
			match.Team2.Names(), match.Team2.Strength,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", matchText, true, false), nil, nil))

		var contextElements []slack.MixedElement
		if match.Handicap != nil {
			contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", match.Handicap.Reason, true, false))
		}
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("Balance: %.0f/100", match.Analysis.Quality), true, false))
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))

		if i < len(result.Matches)-1 {
			blocks = append(blocks, slack.NewDividerBlock())
		}
	}

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification creates the Slack message for a finished match using Block Kit.
func (s *Notifier) formatResultNotification(match *league.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match finished! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	loc, err := time.LoadLocation("Europe/Copenhagen")
	var timeStr string
	if err == nil {
		timeStr = time.Unix(match.PlayedAt, 0).In(loc).Format("Monday 02 Jan, 15:04")
	} else {
		timeStr = time.Unix(match.PlayedAt, 0).Format("Monday 02 Jan, 15:04")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Played "+timeStr, false, false), nil, nil))

	teamNames := make([]string, len(match.Teams))
	for i, team := range match.Teams {
		var names []string
		for _, player := range team.Players {
			if player.Name != "" {
				names = append(names, player.Name)
			}
		}
		teamNames[i] = strings.Join(names, " & ")
	}

	var resultText string
	switch {
	case match.Winner >= 1 && match.Winner <= len(teamNames):
		resultText = fmt.Sprintf("Result: %s won! 🏆", teamNames[match.Winner-1])
	default:
		resultText = "Result: No winner reported."
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	if len(teamNames) == 2 {
		teamsText := fmt.Sprintf("• %s\n• %s", teamNames[0], teamNames[1])
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", teamsText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(stats []league.PlayerStats) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(stats) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, stat := range stats {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> Match Win %%: %.2f%% (%d/%d)",
			rank,
			medalFor(rank),
			stat.PlayerName,
			stat.WinPercentage,
			stat.MatchesWon,
			stat.MatchesPlayed,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatRatingLeaderboard creates a Slack message to display players by effective rating.
func (s *Notifier) formatRatingLeaderboard(players []engine.PlayerForm) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard (by Rating) 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players found.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, player := range players {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> *Rating*: %.2f (form %+.2f)",
			rank,
			medalFor(rank),
			player.Name,
			player.Effective,
			player.Form,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMatchups creates a Slack message listing suggested opponents for a fixed team.
func (s *Notifier) formatMatchups(proposals []engine.MatchProposal) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Suggested opponents 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(proposals) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No opponents available.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, proposal := range proposals {
		handicapText := "even game"
		if proposal.Handicap != nil {
			handicapText = fmt.Sprintf("+%d points to %s", proposal.Handicap.Points, teamLabel(proposal, proposal.Handicap.Team))
		}
		matchText := fmt.Sprintf("%d. %s (%.1f)\n> %s, balance %.0f/100",
			i+1,
			proposal.Team2.Names(),
			proposal.Team2.Strength,
			handicapText,
			proposal.Analysis.Quality,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", matchText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPrediction creates a Slack message for a single predicted match.
func (s *Notifier) formatPrediction(proposal *engine.MatchProposal) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🔮 Match prediction 🔮", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if proposal == nil {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Could not resolve all players.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	teamsText := fmt.Sprintf("%s (%.1f)\nvs\n%s (%.1f)",
		proposal.Team1.Names(), proposal.Team1.Strength,
		proposal.Team2.Names(), proposal.Team2.Strength,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", teamsText, true, false), nil, nil))

	var contextElements []slack.MixedElement
	if proposal.Handicap != nil {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", proposal.Handicap.Reason, true, false))
	}
	contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("Balance: %.0f/100", proposal.Analysis.Quality), true, false))
	blocks = append(blocks, slack.NewContextBlock("", contextElements...))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(stat *league.PlayerStats, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", stat.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Match Win %%*: %.2f%% (%d/%d)\n> *Matches Lost*: %d",
		stat.WinPercentage,
		stat.MatchesWon,
		stat.MatchesPlayed,
		stat.MatchesLost,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

func medalFor(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func teamLabel(proposal engine.MatchProposal, team int) string {
	if team == 1 {
		return proposal.Team1.Names()
	}
	return proposal.Team2.Names()
}
