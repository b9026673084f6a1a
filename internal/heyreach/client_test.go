package heyreach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		baseURL:    server.URL,
		apiKey:     "test-key",
		httpClient: server.Client(),
	}
}

func TestGetOverallStatsUsesOverallStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/stats/GetOverallStats", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))

		var req statsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int64{42}, req.AccountIDs)
		assert.Equal(t, []int64{}, req.CampaignIDs)
		assert.Equal(t, "2025-01-11T00:00:00.000Z", req.StartDate)

		json.NewEncoder(w).Encode(map[string]any{
			"overallStats": map[string]any{"connectionsSent": 25, "connectionsAccepted": 10},
			"byDayStats":   map[string]any{"2025-01-11": map[string]any{"connectionsSent": 999}},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	stats, err := client.GetOverallStats(context.Background(), []int64{42}, nil,
		"2025-01-11T00:00:00.000Z", "2025-01-17T23:59:59.999Z")
	require.NoError(t, err)

	// overallStats wins over byDayStats when populated
	assert.Equal(t, 25.0, extractField(stats, fieldAliases["connections_sent"]))
}

func TestGetOverallStatsSumsByDayStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"overallStats": map[string]any{},
			"byDayStats": map[string]any{
				"2025-01-11": map[string]any{"connectionsSent": 3, "totalMessageStarted": 2},
				"2025-01-12": map[string]any{"connectionsSent": 4, "totalMessageStarted": 1},
				"2025-01-13": "not-a-day-object",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	stats, err := client.GetOverallStats(context.Background(), []int64{1}, nil, "", "")
	require.NoError(t, err)

	c := ExtractCounters(stats)
	assert.Equal(t, 7.0, c.ConnectionsSent)
	assert.Equal(t, 3.0, c.MessagesSent)
}

func TestGetOverallStatsNestedShapes(t *testing.T) {
	for _, key := range []string{"data", "result", "stats"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				key: map[string]any{"connectionsSent": 11},
			})
		}))

		client := newTestClient(server)
		stats, err := client.GetOverallStats(context.Background(), nil, nil, "", "")
		require.NoError(t, err)
		assert.Equal(t, 11.0, extractField(stats, fieldAliases["connections_sent"]), "shape %q", key)
		server.Close()
	}
}

func TestGetOverallStatsFlatShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// JSON served under a text/plain content type still parses
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(`{"connectionsSent": 5, "totalMessageReplies": 2}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	stats, err := client.GetOverallStats(context.Background(), nil, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, 5.0, extractField(stats, fieldAliases["connections_sent"]))
}

func TestGetOverallStatsNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Service temporarily unavailable"))
	}))
	defer server.Close()

	client := newTestClient(server)
	stats, err := client.GetOverallStats(context.Background(), nil, nil, "", "")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestGetOverallStatsRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.GetOverallStats(context.Background(), nil, nil, "", "")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestIsRateLimited(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.False(t, IsRateLimited(errors.New("connection refused")))
	assert.True(t, IsRateLimited(errors.New("upstream said Rate Limit exceeded")))
	assert.True(t, IsRateLimited(errors.New("too many requests")))
	assert.True(t, IsRateLimited(&apiError{status: 429, body: ""}))
	assert.False(t, IsRateLimited(&apiError{status: 500, body: "boom"}))
}

func TestListAccountsResponseShapes(t *testing.T) {
	shapes := map[string]string{
		"items": `{"items": [{"id": 1, "linkedInUserListName": "Alice"}, {"id": "2", "name": "Bob"}]}`,
		"data":  `{"data": [{"id": 1, "linkedInUserListName": "Alice"}, {"id": "2", "name": "Bob"}]}`,
		"bare":  `[{"id": 1, "linkedInUserListName": "Alice"}, {"id": "2", "name": "Bob"}]`,
	}

	for name, payload := range shapes {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))

		client := newTestClient(server)
		accounts, err := client.ListAccounts(context.Background())
		require.NoError(t, err, "shape %q", name)
		require.Len(t, accounts, 2, "shape %q", name)
		assert.Equal(t, Account{ID: 1, Label: "Alice"}, accounts[0], "shape %q", name)
		// String IDs are normalized to int64
		assert.Equal(t, Account{ID: 2, Label: "Bob"}, accounts[1], "shape %q", name)
		server.Close()
	}
}

func TestListAccountsDropsRowsWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"name": "No ID"}, {"id": "abc"}, {"id": 7, "name": "Keep"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	accounts, err := client.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(7), accounts[0].ID)
}

func TestEndpointDiscoveryProbesCandidates(t *testing.T) {
	workingPath := "/" + accountPathCandidates[2]
	var probed []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probed = append(probed, r.URL.Path)
		if r.URL.Path != workingPath {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"items": [{"id": 9, "name": "Probe Hit"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	accounts, err := client.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(9), accounts[0].ID)

	// Discovery stopped at the first working candidate, then the real
	// list call reused it.
	assert.Equal(t, []string{
		"/" + accountPathCandidates[0],
		"/" + accountPathCandidates[1],
		workingPath,
		workingPath,
	}, probed)

	// The discovered config is cached for subsequent calls.
	probed = nil
	_, err = client.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{workingPath}, probed)
}
