// Package sheets writes aggregated outreach metrics into a Google
// Sheets report workbook through the Sheets v4 values API.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/pkg/httpretry"
)

const (
	defaultAPIBase   = "https://sheets.googleapis.com/v4/spreadsheets"
	spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"
)

// Client talks to the Sheets v4 API for a single spreadsheet.
type Client struct {
	apiBase       string
	spreadsheetID string
	httpClient    httpretry.HTTPDoer
}

// NewClient builds a Sheets client from an offline OAuth grant. The
// refresh token mints short-lived access tokens on demand.
func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	id, ok := ExtractSpreadsheetID(cfg.SpreadsheetURL)
	if !ok {
		return nil, fmt.Errorf("sheets: invalid spreadsheet URL %q", cfg.SpreadsheetURL)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("sheets: oauth client id, secret and refresh token are required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{spreadsheetScope},
	}
	source := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &Client{
		apiBase:       defaultAPIBase,
		spreadsheetID: id,
		httpClient:    httpretry.NewRetryClient(oauth2.NewClient(ctx, source), 3),
	}, nil
}

type sheetProperties struct {
	SheetID        int64  `json:"sheetId"`
	Title          string `json:"title"`
	GridProperties struct {
		ColumnCount int `json:"columnCount"`
	} `json:"gridProperties"`
}

func (c *Client) doRequest(ctx context.Context, method, requestURL string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(respBody)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, fmt.Errorf("sheets API error (status %d): %s", resp.StatusCode, snippet)
	}

	return respBody, nil
}

func (c *Client) sheetProperties(ctx context.Context) ([]sheetProperties, error) {
	requestURL := fmt.Sprintf("%s/%s?fields=sheets.properties", c.apiBase, c.spreadsheetID)
	body, err := c.doRequest(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Sheets []struct {
			Properties sheetProperties `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing spreadsheet metadata: %w", err)
	}

	props := make([]sheetProperties, 0, len(parsed.Sheets))
	for _, sheet := range parsed.Sheets {
		props = append(props, sheet.Properties)
	}
	return props, nil
}

// WorksheetNames lists the worksheet titles in the spreadsheet.
func (c *Client) WorksheetNames(ctx context.Context) ([]string, error) {
	props, err := c.sheetProperties(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Title)
	}
	return names, nil
}

// Values fetches the full value grid of one worksheet.
func (c *Client) Values(ctx context.Context, worksheet string) ([][]string, error) {
	rangeRef := url.PathEscape("'" + worksheet + "'")
	requestURL := fmt.Sprintf("%s/%s/values/%s", c.apiBase, c.spreadsheetID, rangeRef)

	body, err := c.doRequest(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching values for %q: %w", worksheet, err)
	}

	var parsed struct {
		Values [][]any `json:"values"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing values for %q: %w", worksheet, err)
	}

	grid := make([][]string, len(parsed.Values))
	for i, row := range parsed.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			if s, ok := cell.(string); ok {
				cells[j] = s
			} else {
				cells[j] = fmt.Sprint(cell)
			}
		}
		grid[i] = cells
	}
	return grid, nil
}

// UpdateCell writes one cell, 1-indexed.
func (c *Client) UpdateCell(ctx context.Context, worksheet string, row, col int, value string) error {
	rangeRef := url.PathEscape(fmt.Sprintf("'%s'!%s", worksheet, cellRef(row, col)))
	requestURL := fmt.Sprintf("%s/%s/values/%s?valueInputOption=USER_ENTERED", c.apiBase, c.spreadsheetID, rangeRef)

	payload := map[string]any{"values": [][]string{{value}}}
	if _, err := c.doRequest(ctx, http.MethodPut, requestURL, payload); err != nil {
		return fmt.Errorf("updating cell (%d,%d) in %q: %w", row, col, worksheet, err)
	}
	return nil
}

// AppendColumn grows the worksheet by one column and returns its
// 1-indexed position.
func (c *Client) AppendColumn(ctx context.Context, worksheet string) (int, error) {
	props, err := c.sheetProperties(ctx)
	if err != nil {
		return 0, err
	}

	var target *sheetProperties
	for i := range props {
		if props[i].Title == worksheet {
			target = &props[i]
			break
		}
	}
	if target == nil {
		return 0, fmt.Errorf("sheets: worksheet %q not found", worksheet)
	}

	requestURL := fmt.Sprintf("%s/%s:batchUpdate", c.apiBase, c.spreadsheetID)
	payload := map[string]any{
		"requests": []map[string]any{{
			"appendDimension": map[string]any{
				"sheetId":   target.SheetID,
				"dimension": "COLUMNS",
				"length":    1,
			},
		}},
	}
	if _, err := c.doRequest(ctx, http.MethodPost, requestURL, payload); err != nil {
		return 0, fmt.Errorf("appending column to %q: %w", worksheet, err)
	}

	return target.GridProperties.ColumnCount + 1, nil
}

// cellRef converts 1-indexed row and column to A1 notation.
func cellRef(row, col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters) + strconv.Itoa(row)
}
