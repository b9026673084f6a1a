// Package smartlead is a client for the Smartlead email outreach API.
package smartlead

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/pkg/httpretry"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// Client is a Smartlead API client. Smartlead authenticates with an
// api_key query parameter rather than a header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new Smartlead API client.
func NewClient(cfg config.SmartleadConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// doRequest makes a GET request to the Smartlead API.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	fullURL := c.baseURL + "/" + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, fmt.Errorf("smartlead API error (status %d): %s", resp.StatusCode, snippet)
	}

	return body, nil
}

// GetCampaigns fetches all campaigns.
func (c *Client) GetCampaigns(ctx context.Context) ([]Campaign, error) {
	body, err := c.doRequest(ctx, "api/v1/campaigns", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}

	var campaigns []Campaign
	if err := json.Unmarshal(body, &campaigns); err != nil {
		return nil, fmt.Errorf("parsing campaigns: %w", err)
	}
	return campaigns, nil
}

// GetCampaignAnalytics fetches metrics for one campaign.
func (c *Client) GetCampaignAnalytics(ctx context.Context, campaignID int64) (*CampaignAnalytics, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("api/v1/campaigns/%d/analytics", campaignID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching campaign %d analytics: %w", campaignID, err)
	}

	var analytics CampaignAnalytics
	if err := json.Unmarshal(body, &analytics); err != nil {
		return nil, fmt.Errorf("parsing campaign %d analytics: %w", campaignID, err)
	}
	analytics.CampaignID = campaignID
	return &analytics, nil
}

// GetEmailAccounts fetches all connected sending mailboxes.
func (c *Client) GetEmailAccounts(ctx context.Context) ([]EmailAccount, error) {
	body, err := c.doRequest(ctx, "api/v1/email-accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching email accounts: %w", err)
	}

	// The accounts list arrives either wrapped or bare
	var wrapped struct {
		EmailAccounts []EmailAccount `json:"email_accounts"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.EmailAccounts != nil {
		return wrapped.EmailAccounts, nil
	}

	var accounts []EmailAccount
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("parsing email accounts: %w", err)
	}
	return accounts, nil
}

// SummaryMetrics aggregates analytics across every campaign. A
// campaign whose analytics fetch fails contributes zeros instead of
// failing the summary.
func (c *Client) SummaryMetrics(ctx context.Context, daysBack int) (*Summary, error) {
	campaigns, err := c.GetCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Platform:      "Email (Smartlead)",
		DateRangeDays: daysBack,
		Campaigns:     make([]CampaignAnalytics, 0, len(campaigns)),
	}

	for _, campaign := range campaigns {
		analytics, err := c.GetCampaignAnalytics(ctx, campaign.ID)
		if err != nil {
			logger.Warn("smartlead: campaign analytics fetch failed, recording zeros",
				"campaign_id", campaign.ID, "error", err.Error())
			analytics = &CampaignAnalytics{CampaignID: campaign.ID}
		}
		analytics.CampaignName = campaign.Name
		analytics.Status = campaign.Status

		summary.TotalSent += analytics.EmailsSent
		summary.TotalDelivered += analytics.EmailsDelivered
		summary.TotalOpened += analytics.EmailsOpened
		summary.TotalClicked += analytics.LinksClicked
		summary.TotalReplied += analytics.Replies
		summary.TotalBounced += analytics.Bounced
		summary.TotalUnsubs += analytics.Unsubscribed

		summary.Campaigns = append(summary.Campaigns, *analytics)
	}

	summary.TotalCampaigns = len(summary.Campaigns)
	summary.DeliveryRate = rate(summary.TotalDelivered, summary.TotalSent)
	summary.OpenRate = rate(summary.TotalOpened, summary.TotalDelivered)
	summary.ClickRate = rate(summary.TotalClicked, summary.TotalDelivered)
	summary.ReplyRate = rate(summary.TotalReplied, summary.TotalDelivered)
	summary.BounceRate = rate(summary.TotalBounced, summary.TotalSent)

	return summary, nil
}

func rate(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}
