package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/processor"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, playtomicClient playtomic.PlaytomicClient, notif notifier.Notifier, slackSigningSecret string) (*Server, *pubsub.MockPubSubClient, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	proc := processor.New(store, notif, metricsSvc, ps)
	// Seeded engine so pairing output is stable across runs.
	eng := engine.New(rand.New(rand.NewSource(1)))
	server := NewServer(store, eng, metricsSvc, metricsHandler, cfg, playtomicClient, notif, proc, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, ps, teardown
}

// seedRoster registers four players so doubles matches can be formed.
func seedRoster(t *testing.T, server *Server) {
	t.Helper()
	server.Store.AddPlayer("p1", "Player One", 1.0)
	server.Store.AddPlayer("p2", "Player Two", 1.2)
	server.Store.AddPlayer("p3", "Player Three", 1.4)
	server.Store.AddPlayer("p4", "Player Four", 1.6)
}

// seedMatch records a finished doubles match directly in the store.
func seedMatch(t *testing.T, server *Server, id string, winner int, playedAt int64) *league.Match {
	t.Helper()
	match := &league.Match{
		ID:        id,
		PlayedAt:  playedAt,
		CreatedAt: playedAt,
		Source:    league.SourceManual,
		Teams: []league.MatchTeam{
			{Players: []league.MatchPlayer{{ID: "p1", Name: "Player One"}, {ID: "p2", Name: "Player Two"}}},
			{Players: []league.MatchPlayer{{ID: "p3", Name: "Player Three"}, {ID: "p4", Name: "Player Four"}}},
		},
		Winner:           winner,
		ProcessingStatus: league.StatusNew,
	}
	require.NoError(t, server.Store.RecordMatch(match))
	return match
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := strings.NewReader(form.Encode())
	req, err := http.NewRequest("POST", targetURL, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	bodyBytes, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	// Reset the request body for the actual handler after reading for signature calculation.
	req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))

	req.Header.Set("X-Slack-Signature", "v0="+signature)

	return req
}

// createPushRequest wraps a payload the way a Pub/Sub push subscription
// delivers it: msgpack-encoded, base64'd, inside the JSON envelope.
func createPushRequest(t *testing.T, targetURL string, payload any) *http.Request {
	t.Helper()

	raw, err := msgpack.Marshal(payload)
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/test",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(raw),
		},
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", targetURL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestMembersHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()

	t.Run("lists the roster", func(t *testing.T) {
		server.Store.AddPlayer("player1", "Player One", 1.0)
		server.Store.AddPlayer("player2", "Player Two", 1.0)

		req, err := http.NewRequest("GET", "/members", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Player One")
		assert.Contains(t, rr.Body.String(), "player2")
	})

	t.Run("registers a player", func(t *testing.T) {
		body := strings.NewReader(`{"name":"New Player","rating":2.5}`)
		req, err := http.NewRequest("POST", "/members", body)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var created struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID, "missing id should be generated")
		assert.True(t, server.Store.IsKnownPlayer(created.ID))
	})

	t.Run("rejects a nameless player", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/members", strings.NewReader(`{"rating":2.5}`))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRecordResultHandler(t *testing.T) {
	t.Run("records and publishes a match", func(t *testing.T) {
		server, ps, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		seedRoster(t, server)

		body := strings.NewReader(`{"team1":["p1","p2"],"team2":["p3","p4"],"winner":1}`)
		req, err := http.NewRequest("POST", "/record-result", body)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		matches, err := server.Store.GetAllMatches()
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, 1, matches[0].Winner)
		assert.Equal(t, league.SourceManual, matches[0].Source)
		assert.Equal(t, league.StatusNew, matches[0].ProcessingStatus)
		assert.Equal(t, "Player One", matches[0].Teams[0].Players[0].Name)

		require.Len(t, ps.SendMessageCalls, 1)
		assert.Equal(t, string(pubsub.EventMatchRecorded), ps.SendMessageCalls[0].Topic)
	})

	t.Run("rejects unknown players", func(t *testing.T) {
		server, ps, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		seedRoster(t, server)

		body := strings.NewReader(`{"team1":["p1","ghost"],"team2":["p3","p4"],"winner":1}`)
		req, err := http.NewRequest("POST", "/record-result", body)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, ps.SendMessageCalls)
	})

	t.Run("rejects oversized teams", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		seedRoster(t, server)

		body := strings.NewReader(`{"team1":["p1","p2","p3"],"team2":["p4"],"winner":1}`)
		req, err := http.NewRequest("POST", "/record-result", body)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("dry run records nothing", func(t *testing.T) {
		server, ps, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		seedRoster(t, server)

		body := strings.NewReader(`{"team1":["p1","p2"],"team2":["p3","p4"],"winner":2}`)
		req, err := http.NewRequest("POST", "/record-result?dry_run=true", body)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		matches, err := server.Store.GetAllMatches()
		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Empty(t, ps.SendMessageCalls)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	seedRoster(t, server)

	match := seedMatch(t, server, "m1", 1, time.Now().Unix())
	server.Store.UpdatePlayerStats(match)

	req, err := http.NewRequest("GET", "/leaderboard", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var stats []league.PlayerStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Len(t, stats, 4)
	for _, s := range stats {
		assert.Equal(t, 1, s.MatchesPlayed)
	}
}

func TestFetchMatchesHandler(t *testing.T) {
	mockClient := playtomic.NewMockClient()
	ownerID := "p1"
	mockClient.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		return []playtomic.MatchSummary{
			{MatchID: "m1", OwnerID: &ownerID},
			{MatchID: "m2", OwnerID: nil}, // No owner, should be skipped
		}, nil
	}
	mockClient.GetSpecificMatchFunc = func(matchID string) (playtomic.PadelMatch, error) {
		return playtomic.PadelMatch{
			MatchID: matchID,
			OwnerID: ownerID,
			Start:   time.Now().Unix(),
			Teams: []playtomic.Team{
				{ID: "t1", TeamResult: "WON", Players: []playtomic.Player{{UserID: "p1", Name: "Player One"}, {UserID: "p2", Name: "Player Two"}}},
				{ID: "t2", Players: []playtomic.Player{{UserID: "p3", Name: "Player Three"}, {UserID: "p4", Name: "Player Four"}}},
			},
		}, nil
	}

	server, _, teardown := setupTestServer(t, mockClient, notifier.NewMock(), "")
	defer teardown()
	seedRoster(t, server)

	req, err := http.NewRequest("GET", "/fetch", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	matches, err := server.Store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)
	assert.Equal(t, league.SourcePlaytomic, matches[0].Source)
	assert.Equal(t, 1, matches[0].Winner)
	assert.Equal(t, league.StatusNew, matches[0].ProcessingStatus)
}

func TestProcessMatchesHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, ps, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, "")
	defer teardown()
	seedRoster(t, server)
	seedMatch(t, server, "m1", 2, time.Now().Unix())

	req, err := http.NewRequest("GET", "/process", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	matches, err := server.Store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, league.StatusCompleted, matches[0].ProcessingStatus)
	assert.Len(t, mockNotifier.SendResultNotificationCalls, 1)

	require.Len(t, ps.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventUpdatePlayerStats), ps.SendMessageCalls[0].Topic)
}

func TestMatchmakeHandler(t *testing.T) {
	t.Run("pairs the whole roster by default", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		seedRoster(t, server)

		req, err := http.NewRequest("GET", "/matchmake", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result engine.MatchmakingResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Len(t, result.Players, 4)
		assert.Len(t, result.Pairs, 2)
		assert.Len(t, result.Matches, 1)
	})

	t.Run("rejects an odd selection", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		seedRoster(t, server)

		req, err := http.NewRequest("GET", "/matchmake?players=p1,p2,p3", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("notify posts the proposals", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, "")
		defer teardown()
		seedRoster(t, server)

		req, err := http.NewRequest("GET", "/matchmake?notify=true", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, mockNotifier.SendMatchProposalsCalls, 1)
	})
}

func TestMatchupsHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	seedRoster(t, server)

	t.Run("returns proposals for the fixed team", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matchups?team=p1,p2", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var proposals []engine.MatchProposal
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &proposals))
		require.Len(t, proposals, 1)
		opponents := []string{proposals[0].Team2.P1.ID, proposals[0].Team2.P2.ID}
		assert.ElementsMatch(t, []string{"p3", "p4"}, opponents)
	})

	t.Run("rejects a malformed team", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matchups?team=p1", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPredictHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	seedRoster(t, server)

	t.Run("predicts a doubles match", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/predict?team1=p1,p2&team2=p3,p4", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var proposal engine.MatchProposal
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &proposal))
		assert.Equal(t, "p1", proposal.Team1.P1.ID)
		assert.GreaterOrEqual(t, proposal.Analysis.Quality, 0.0)
		assert.LessOrEqual(t, proposal.Analysis.Quality, 100.0)
	})

	t.Run("rejects unknown players", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/predict?team1=p1,ghost&team2=p3,p4", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("rejects missing teams", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/predict?team1=p1,p2", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdatePlayerStatsHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	seedRoster(t, server)

	match := league.Match{
		ID:       "m1",
		PlayedAt: time.Now().Unix(),
		Source:   league.SourceManual,
		Teams: []league.MatchTeam{
			{Players: []league.MatchPlayer{{ID: "p1", Name: "Player One"}, {ID: "p2", Name: "Player Two"}}},
			{Players: []league.MatchPlayer{{ID: "p3", Name: "Player Three"}, {ID: "p4", Name: "Player Four"}}},
		},
		Winner: 1,
	}

	req := createPushRequest(t, "/update-player-stats", &match)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	stats, err := server.Store.GetPlayerStatsByName("Player One")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.MatchesWon)
}

func TestNotifyResultHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, "")
	defer teardown()

	match := league.Match{
		ID:       "m1",
		PlayedAt: time.Now().Unix(),
		Teams: []league.MatchTeam{
			{Players: []league.MatchPlayer{{ID: "p1", Name: "Player One"}, {ID: "p2", Name: "Player Two"}}},
			{Players: []league.MatchPlayer{{ID: "p3", Name: "Player Three"}, {ID: "p4", Name: "Player Four"}}},
		},
		Winner: 2,
	}

	req := createPushRequest(t, "/notify-result", &match)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, mockNotifier.SendResultNotificationCalls, 1)
	assert.Equal(t, "m1", mockNotifier.SendResultNotificationCalls[0].Match.ID)
}

func TestNotifyResultHandlerRejectsGarbage(t *testing.T) {
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), "")
	defer teardown()

	req, err := http.NewRequest("POST", "/notify-result", strings.NewReader("not json"))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayerStatsCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatPlayerStatsResponseFunc = func(stats *league.PlayerStats, query string) (any, error) {
		return slack.Message{}, nil
	}
	mockNotifier.FormatPlayerNotFoundResponseFunc = func(query string) (any, error) {
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, testSlackSigningSecret)
	defer teardown()
	seedRoster(t, server)

	match := seedMatch(t, server, "m1", 1, time.Now().Unix())
	server.Store.UpdatePlayerStats(match)

	t.Run("handles found player", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Player One")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("handles not found player", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Unknown")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("handles missing player name", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{}, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Player One")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Player One")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Player One")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(stats []league.PlayerStats) (any, error) {
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, testSlackSigningSecret)
	defer teardown()
	seedRoster(t, server)

	req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, mockNotifier.LastLeaderboardResponse)
}

func TestRatingLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	var received []engine.PlayerForm
	mockNotifier.FormatRatingLeaderboardResponseFunc = func(players []engine.PlayerForm) (any, error) {
		received = players
		return slack.Message{}, nil
	}
	server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, testSlackSigningSecret)
	defer teardown()
	seedRoster(t, server)

	req := createSlackCommandRequest(t, "/slack/command/rating-leaderboard", url.Values{}, testSlackSigningSecret)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, received, 4)
	for i := 1; i < len(received); i++ {
		assert.GreaterOrEqual(t, received[i-1].Effective, received[i].Effective, "board must be strongest first")
	}
}

func TestMatchmakeCommandHandler(t *testing.T) {
	t.Run("runs the matchmaker for named players", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		mockNotifier.FormatMatchupsResponseFunc = func(proposals []engine.MatchProposal) (any, error) {
			return slack.Message{}, nil
		}
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, testSlackSigningSecret)
		defer teardown()
		seedRoster(t, server)

		form := url.Values{}
		form.Set("text", "Player One, Player Two, Player Three, Player Four")

		req := createSlackCommandRequest(t, "/slack/command/matchmake", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("reports unknown names", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		var notFoundQuery string
		mockNotifier.FormatPlayerNotFoundResponseFunc = func(query string) (any, error) {
			notFoundQuery = query
			return slack.Message{}, nil
		}
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), mockNotifier, testSlackSigningSecret)
		defer teardown()
		seedRoster(t, server)

		form := url.Values{}
		form.Set("text", "Player One, Nobody")

		req := createSlackCommandRequest(t, "/slack/command/matchmake", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Nobody", notFoundQuery)
	})

	t.Run("rejects an odd selection", func(t *testing.T) {
		server, _, teardown := setupTestServer(t, playtomic.NewMockClient(), notifier.NewMock(), testSlackSigningSecret)
		defer teardown()
		seedRoster(t, server)

		form := url.Values{}
		form.Set("text", "Player One, Player Two, Player Three")

		req := createSlackCommandRequest(t, "/slack/command/matchmake", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
