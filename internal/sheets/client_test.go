package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		apiBase:       server.URL,
		spreadsheetID: "sheet123",
		httpClient:    server.Client(),
	}
}

const metadataPayload = `{"sheets": [
	{"properties": {"sheetId": 0, "title": "Weekly Report", "gridProperties": {"columnCount": 5}}},
	{"properties": {"sheetId": 77, "title": "Acme Weekly", "gridProperties": {"columnCount": 8}}}
]}`

func TestWorksheetNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sheet123", r.URL.Path)
		assert.Equal(t, "sheets.properties", r.URL.Query().Get("fields"))
		w.Write([]byte(metadataPayload))
	}))
	defer server.Close()

	names, err := newTestClient(server).WorksheetNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Weekly Report", "Acme Weekly"}, names)
}

func TestValuesConvertsGrid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sheet123/values/'Weekly Report'", r.URL.Path)
		w.Write([]byte(`{"values": [["Alice", 5, null], ["Bob"]]}`))
	}))
	defer server.Close()

	grid, err := newTestClient(server).Values(context.Background(), "Weekly Report")
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"Alice", "5", ""}, grid[0])
	assert.Equal(t, []string{"Bob"}, grid[1])
}

func TestUpdateCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/sheet123/values/'Weekly Report'!B3", r.URL.Path)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))

		var payload struct {
			Values [][]string `json:"values"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, [][]string{{"42"}}, payload.Values)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := newTestClient(server).UpdateCell(context.Background(), "Weekly Report", 3, 2, "42")
	require.NoError(t, err)
}

func TestAppendColumn(t *testing.T) {
	var batchCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sheet123":
			w.Write([]byte(metadataPayload))
		case "/sheet123:batchUpdate":
			batchCalled = true
			var payload struct {
				Requests []struct {
					AppendDimension struct {
						SheetID   int64  `json:"sheetId"`
						Dimension string `json:"dimension"`
						Length    int    `json:"length"`
					} `json:"appendDimension"`
				} `json:"requests"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Len(t, payload.Requests, 1)
			assert.Equal(t, int64(77), payload.Requests[0].AppendDimension.SheetID)
			assert.Equal(t, "COLUMNS", payload.Requests[0].AppendDimension.Dimension)
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	col, err := newTestClient(server).AppendColumn(context.Background(), "Acme Weekly")
	require.NoError(t, err)
	assert.True(t, batchCalled)
	assert.Equal(t, 9, col)
}

func TestAppendColumnUnknownWorksheet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(metadataPayload))
	}))
	defer server.Close()

	_, err := newTestClient(server).AppendColumn(context.Background(), "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDoRequestErrorSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"status": "PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server).WorksheetNames(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
}
