package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	matchmakePlayers string
	matchmakeNotify  bool
	matchupsTeam     string
	matchupsPool     string
	predictTeam1     string
	predictTeam2     string
	fetchDays        int
)

func init() {
	matchmakeCmd.Flags().StringVar(&matchmakePlayers, "players", "", "Comma-separated player ids (defaults to the whole roster)")
	matchmakeCmd.Flags().BoolVar(&matchmakeNotify, "notify", false, "Post the proposals to Slack")
	matchupsCmd.Flags().StringVar(&matchupsTeam, "team", "", "The fixed team, two comma-separated player ids")
	matchupsCmd.Flags().StringVar(&matchupsPool, "pool", "", "Opponent pool, comma-separated player ids (defaults to the whole roster)")
	predictCmd.Flags().StringVar(&predictTeam1, "team1", "", "First team, one or two comma-separated player ids")
	predictCmd.Flags().StringVar(&predictTeam2, "team2", "", "Second team, one or two comma-separated player ids")
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "How many days of history to fetch")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(matchmakeCmd)
	rootCmd.AddCommand(matchupsCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the players in the league store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all recorded matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the win/loss leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var recordCmd = &cobra.Command{
	Use:   "record [json]",
	Short: "Record a match result from a JSON payload",
	Long: `Record a match result. The payload looks like:
  {"team1":["id1","id2"],"team2":["id3","id4"],"winner":1}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/record-result", args[0])
	},
}

var matchmakeCmd = &cobra.Command{
	Use:   "matchmake",
	Short: "Run the auto-matchmaker and print the proposed matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if matchmakePlayers != "" {
			params.Set("players", matchmakePlayers)
		}
		if matchmakeNotify {
			params.Set("notify", "true")
		}
		return performGetRequest(withQuery("/matchmake", params))
	},
}

var matchupsCmd = &cobra.Command{
	Use:   "matchups",
	Short: "Find the best opponents for a fixed team",
	RunE: func(cmd *cobra.Command, args []string) error {
		if matchupsTeam == "" {
			return fmt.Errorf("--team is required")
		}
		params := url.Values{}
		params.Set("team", matchupsTeam)
		if matchupsPool != "" {
			params.Set("pool", matchupsPool)
		}
		return performGetRequest(withQuery("/matchups", params))
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the outcome of a hypothetical match",
	RunE: func(cmd *cobra.Command, args []string) error {
		if predictTeam1 == "" || predictTeam2 == "" {
			return fmt.Errorf("--team1 and --team2 are required")
		}
		params := url.Values{}
		params.Set("team1", predictTeam1)
		params.Set("team2", predictTeam2)
		return performGetRequest(withQuery("/predict", params))
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch matches from Playtomic into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if fetchDays > 0 {
			params.Set("days", fmt.Sprintf("%d", fetchDays))
		}
		return performGetRequest(withQuery("/fetch", params))
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the match processing pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func withQuery(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint, payload string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	contentType := "application/json"
	if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return fmt.Errorf("payload must be a JSON object")
	}
	resp, err := http.Post(url, contentType, bytes.NewBufferString(payload))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
