package heyreach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/pkg/httpretry"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// statsPath is the one stable HeyReach endpoint; account listing goes
// through endpoint discovery instead (see discovery.go).
const statsPath = "api/public/stats/GetOverallStats"

// Account is a LinkedIn account row from the remote directory with
// its ID already normalized.
type Account struct {
	ID    int64
	Label string
}

// Client is a HeyReach API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer

	discoverOnce sync.Once
	endpoints    EndpointConfig
}

// NewClient creates a new HeyReach API client.
func NewClient(cfg config.HeyReachConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// apiError is a non-2xx response. It keeps the status code so callers
// can distinguish rate limiting from other failures.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("heyreach API error (status %d): %s", e.status, e.body)
}

// IsRateLimited reports whether err looks like an upstream rate-limit
// rejection, by status code or by message text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var ae *apiError
	if errors.As(err, &ae) && ae.status == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many")
}

// doRequest makes a POST request to the HeyReach API and returns the
// raw response body.
func (c *Client) doRequest(ctx context.Context, path, accept string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(respBody)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, &apiError{status: resp.StatusCode, body: snippet}
	}

	return respBody, nil
}

// decodePayload parses a response body leniently. The API declares
// text/plain on some endpoints while still returning JSON, so content
// type is ignored and the body is parsed if it looks like JSON.
func decodePayload(body []byte) (any, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, nil
	}
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		logger.Warn("heyreach: response is not JSON", "snippet", truncate(text, 200))
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// listRequest is the standard paging body for HeyReach list endpoints.
type listRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ListAccounts fetches the LinkedIn account directory from the API,
// using the discovered endpoint. Response items appear under "items",
// "data", or as a bare list depending on API version.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	endpoints := c.endpointConfig(ctx)

	body, err := c.doRequest(ctx, endpoints.AccountsPath, endpoints.Accept, listRequest{Offset: 0, Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return parseAccounts(payload), nil
}

// parseAccounts extracts account rows from any of the known list
// response shapes. Rows without a usable ID are dropped.
func parseAccounts(payload any) []Account {
	items := extractItems(payload)

	accounts := make([]Account, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := normalizeAnyID(row["id"])
		if !ok {
			continue
		}
		label, _ := row["linkedInUserListName"].(string)
		if label == "" {
			label, _ = row["name"].(string)
		}
		accounts = append(accounts, Account{ID: id, Label: label})
	}
	return accounts
}

func extractItems(payload any) []any {
	switch data := payload.(type) {
	case map[string]any:
		if items, ok := data["items"].([]any); ok {
			return items
		}
		if items, ok := data["data"].([]any); ok {
			return items
		}
	case []any:
		return data
	}
	return nil
}

// normalizeAnyID coerces an upstream ID (number or numeric string)
// into an int64.
func normalizeAnyID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(id), 64)
		if err != nil {
			return 0, false
		}
		return int64(parsed), true
	case json.Number:
		f, err := id.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// statsRequest is the GetOverallStats request body. IDs are always
// sent as integers; the endpoint rejects string IDs.
type statsRequest struct {
	AccountIDs  []int64 `json:"accountIds"`
	CampaignIDs []int64 `json:"campaignIds"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// GetOverallStats fetches aggregated stats for the given accounts and
// date window, and normalizes the response into a flat stats map.
// Empty accountIDs means all senders. The returned map may be empty;
// that is valid data meaning no activity in the window.
func (c *Client) GetOverallStats(ctx context.Context, accountIDs, campaignIDs []int64, startDate, endDate string) (map[string]any, error) {
	if accountIDs == nil {
		accountIDs = []int64{}
	}
	if campaignIDs == nil {
		campaignIDs = []int64{}
	}

	body, err := c.doRequest(ctx, statsPath, "text/plain", statsRequest{
		AccountIDs:  accountIDs,
		CampaignIDs: campaignIDs,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching overall stats: %w", err)
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("fetching overall stats: %w", err)
	}

	return normalizeStats(payload), nil
}

// byDayFields are the daily counters summed when only byDayStats is
// populated.
var byDayFields = []string{
	"connectionsSent",
	"connectionsAccepted",
	"messagesSent",
	"totalMessageReplies",
	"totalMessageStarted",
	"totalInmailReplies",
	"inmailMessagesSent",
}

// normalizeStats reduces the known GetOverallStats response shapes to
// one flat map:
//
//  1. a non-empty overallStats object wins;
//  2. otherwise byDayStats daily rows are summed;
//  3. otherwise a nested data/result/stats object is unwrapped;
//  4. a list response uses its first element;
//  5. anything else is treated as the flat stats map itself.
func normalizeStats(payload any) map[string]any {
	switch data := payload.(type) {
	case map[string]any:
		if overall, ok := data["overallStats"].(map[string]any); ok && len(overall) > 0 {
			return overall
		}
		if byDay, ok := data["byDayStats"].(map[string]any); ok {
			return sumByDayStats(byDay)
		}
		for _, key := range []string{"data", "result", "stats"} {
			if nested, ok := data[key].(map[string]any); ok {
				return nested
			}
		}
		return data
	case []any:
		if len(data) > 0 {
			if first, ok := data[0].(map[string]any); ok {
				return first
			}
		}
	}
	return map[string]any{}
}

func sumByDayStats(byDay map[string]any) map[string]any {
	totals := make(map[string]any, len(byDayFields))
	sums := make(map[string]float64, len(byDayFields))

	for _, dayPayload := range byDay {
		day, ok := dayPayload.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range byDayFields {
			if v, ok := day[field]; ok && v != nil {
				sums[field] += numericValue(v)
			}
		}
	}

	for _, field := range byDayFields {
		totals[field] = sums[field]
	}
	return totals
}
