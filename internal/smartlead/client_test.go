package smartlead

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		baseURL:    server.URL,
		apiKey:     "sl-test-key",
		httpClient: server.Client(),
	}
}

func TestGetCampaigns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/campaigns", r.URL.Path)
		// API key travels as a query parameter
		assert.Equal(t, "sl-test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`[{"id": 1, "name": "Q1 Outreach", "status": "ACTIVE"}]`))
	}))
	defer server.Close()

	client := newTestClient(server)
	campaigns, err := client.GetCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, Campaign{ID: 1, Name: "Q1 Outreach", Status: "ACTIVE"}, campaigns[0])
}

func TestGetEmailAccountsWrappedAndBare(t *testing.T) {
	payloads := []string{
		`{"email_accounts": [{"id": 5, "from_email": "alice@example.com"}]}`,
		`[{"id": 5, "from_email": "alice@example.com"}]`,
	}

	for _, payload := range payloads {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/email-accounts", r.URL.Path)
			w.Write([]byte(payload))
		}))

		client := newTestClient(server)
		accounts, err := client.GetEmailAccounts(context.Background())
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "alice@example.com", accounts[0].FromEmail)
		server.Close()
	}
}

func TestSummaryMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/campaigns":
			w.Write([]byte(`[{"id": 1, "name": "A", "status": "ACTIVE"}, {"id": 2, "name": "B", "status": "PAUSED"}]`))
		case "/api/v1/campaigns/1/analytics":
			w.Write([]byte(`{"emails_sent": 100, "emails_delivered": 90, "emails_opened": 45, "links_clicked": 9, "replies": 18, "bounced": 10, "unsubscribed": 1}`))
		case "/api/v1/campaigns/2/analytics":
			w.Write([]byte(`{"emails_sent": 50, "emails_delivered": 40, "emails_opened": 10, "links_clicked": 2, "replies": 4, "bounced": 5, "unsubscribed": 0}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server)
	summary, err := client.SummaryMetrics(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Email (Smartlead)", summary.Platform)
	assert.Equal(t, 7, summary.DateRangeDays)
	assert.Equal(t, 2, summary.TotalCampaigns)
	assert.Equal(t, int64(150), summary.TotalSent)
	assert.Equal(t, int64(130), summary.TotalDelivered)
	assert.Equal(t, 86.67, summary.DeliveryRate)
	assert.Equal(t, 42.31, summary.OpenRate)
	assert.Equal(t, 16.92, summary.ReplyRate)
	assert.Equal(t, 10.0, summary.BounceRate)

	require.Len(t, summary.Campaigns, 2)
	assert.Equal(t, "A", summary.Campaigns[0].CampaignName)
	assert.Equal(t, int64(1), summary.Campaigns[0].CampaignID)
}

func TestSummaryMetricsZeroFillsFailedCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/campaigns":
			w.Write([]byte(`[{"id": 1, "name": "A", "status": "ACTIVE"}, {"id": 2, "name": "B", "status": "ACTIVE"}]`))
		case "/api/v1/campaigns/1/analytics":
			w.Write([]byte(`{"emails_sent": 10, "emails_delivered": 8}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := newTestClient(server)
	summary, err := client.SummaryMetrics(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.TotalSent)
	require.Len(t, summary.Campaigns, 2)
	assert.Equal(t, int64(0), summary.Campaigns[1].EmailsSent)
	assert.Equal(t, "B", summary.Campaigns[1].CampaignName)
}

func TestSummaryMetricsNoCampaigns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server)
	summary, err := client.SummaryMetrics(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCampaigns)
	assert.Equal(t, 0.0, summary.DeliveryRate)
}

func TestDoRequestErrorIncludesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.GetCampaigns(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("status %d", http.StatusUnauthorized))
}
