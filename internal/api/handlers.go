package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/outreach-monitor/internal/cache"
	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/heyreach"
	"github.com/ignite/outreach-monitor/internal/pkg/httputil"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
	"github.com/ignite/outreach-monitor/internal/sheets"
	"github.com/ignite/outreach-monitor/internal/smartlead"
)

// SenderDirectory resolves the LinkedIn sender directory.
type SenderDirectory interface {
	ResolveSenders(ctx context.Context, forceRemote bool) []heyreach.Sender
}

// Aggregator produces per-sender weekly performance data.
type Aggregator interface {
	Aggregate(ctx context.Context, senders []heyreach.Sender, weeks []heyreach.Week, start, end time.Time) *heyreach.AggregationResult
}

// EmailSummarizer aggregates Smartlead campaign metrics.
type EmailSummarizer interface {
	SummaryMetrics(ctx context.Context, daysBack int) (*smartlead.Summary, error)
}

// SheetPopulator writes an aggregation result into a worksheet.
type SheetPopulator interface {
	Populate(ctx context.Context, worksheet string, result *heyreach.AggregationResult) (*sheets.PopulateResult, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	directory  SenderDirectory
	aggregator Aggregator
	config     *config.Config

	smartlead EmailSummarizer
	sheetSink SheetPopulator
	cache     *cache.ResultCache
	archive   ReportArchiver
	tasks     TaskStore
}

// ReportArchiver persists CSV exports.
type ReportArchiver interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}

// NewHandlers creates a new Handlers instance
func NewHandlers(directory SenderDirectory, aggregator Aggregator, cfg *config.Config) *Handlers {
	return &Handlers{
		directory:  directory,
		aggregator: aggregator,
		config:     cfg,
	}
}

// SetSmartlead sets the Smartlead summarizer
func (h *Handlers) SetSmartlead(s EmailSummarizer) { h.smartlead = s }

// SetSheetSink sets the Google Sheets sink
func (h *Handlers) SetSheetSink(s SheetPopulator) { h.sheetSink = s }

// SetCache sets the result cache
func (h *Handlers) SetCache(c *cache.ResultCache) { h.cache = c }

// SetArchive sets the CSV report archive
func (h *Handlers) SetArchive(a ReportArchiver) { h.archive = a }

// SetTaskStore sets the task manager store
func (h *Handlers) SetTaskStore(s TaskStore) { h.tasks = s }

type senderEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sendersResponse struct {
	Senders []senderEntry `json:"senders"`
	Warning string        `json:"warning,omitempty"`
}

// GetSenders returns the resolved sender directory. The synthetic
// "all" entry always comes first so dashboards can offer an
// unfiltered view. An empty directory is still a 200, with a warning.
//
//	GET /api/senders
func (h *Handlers) GetSenders(w http.ResponseWriter, r *http.Request) {
	resolved := h.directory.ResolveSenders(r.Context(), false)

	resp := sendersResponse{
		Senders: []senderEntry{{ID: "all", Name: "All Senders"}},
	}
	for _, sender := range resolved {
		resp.Senders = append(resp.Senders, senderEntry{
			ID:   strconv.FormatInt(sender.ID, 10),
			Name: sender.Name,
		})
	}
	if len(resolved) == 0 {
		resp.Warning = "no senders resolved; check the sender ID configuration and API key"
	}

	httputil.OK(w, resp)
}

// parseDateRange reads start_date/end_date query params, defaulting to
// the last 7 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	return parseRequestRange(q.Get("start_date"), q.Get("end_date"))
}

// parseRequestRange parses a YYYY-MM-DD date pair, defaulting either
// empty side to the last 7 days ending today.
func parseRequestRange(startDate, endDate string) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -6)

	var err error
	if startDate != "" {
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endDate != "" {
		if end, err = time.Parse("2006-01-02", endDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// aggregate runs one aggregation, consulting the result cache first.
func (h *Handlers) aggregate(ctx context.Context, senderFilter string, start, end time.Time) *heyreach.AggregationResult {
	key := cache.Key(senderFilter, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, ok := h.cache.Get(ctx, key); ok {
		return cached
	}

	senders := h.directory.ResolveSenders(ctx, false)
	if senderFilter != "" && senderFilter != "all" {
		id, err := strconv.ParseInt(senderFilter, 10, 64)
		if err == nil {
			filtered := senders[:0]
			for _, sender := range senders {
				if sender.ID == id {
					filtered = append(filtered, sender)
				}
			}
			senders = filtered
		}
	}

	weeks := heyreach.PartitionWeeks(start, end)
	result := h.aggregator.Aggregate(ctx, senders, weeks, start, end)

	h.cache.Set(ctx, key, result)
	return result
}

// GetPerformance returns per-sender weekly performance. Upstream
// failures surface as zero-valued cells, never as HTTP errors.
//
//	GET /api/performance?sender_id=&start_date=&end_date=
func (h *Handlers) GetPerformance(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		httputil.BadRequest(w, "dates must be formatted YYYY-MM-DD")
		return
	}

	result := h.aggregate(r.Context(), r.URL.Query().Get("sender_id"), start, end)
	httputil.OK(w, result)
}

type summaryResponse struct {
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	TotalSenders        int     `json:"total_senders"`
	ConnectionsSent     int64   `json:"connections_sent"`
	ConnectionsAccepted int64   `json:"connections_accepted"`
	AcceptanceRate      float64 `json:"acceptance_rate"`
	MessagesSent        int64   `json:"messages_sent"`
	MessageReplies      int64   `json:"message_replies"`
	ReplyRate           float64 `json:"reply_rate"`
}

// GetSummary returns totals and overall rates across all senders.
//
//	GET /api/summary?start_date=&end_date=
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		httputil.BadRequest(w, "dates must be formatted YYYY-MM-DD")
		return
	}

	result := h.aggregate(r.Context(), "", start, end)

	resp := summaryResponse{
		StartDate:    result.StartDate,
		EndDate:      result.EndDate,
		TotalSenders: len(result.Senders),
	}
	for _, weeksData := range result.Senders {
		for _, week := range weeksData {
			resp.ConnectionsSent += week.ConnectionsSent
			resp.ConnectionsAccepted += week.ConnectionsAccepted
			resp.MessagesSent += week.MessagesSent
			resp.MessageReplies += week.MessageReplies
		}
	}
	if resp.ConnectionsSent > 0 {
		resp.AcceptanceRate = heyreach.Round2(float64(resp.ConnectionsAccepted) / float64(resp.ConnectionsSent) * 100)
	}
	if resp.MessagesSent > 0 {
		resp.ReplyRate = heyreach.Round2(float64(resp.MessageReplies) / float64(resp.MessagesSent) * 100)
	}

	httputil.OK(w, resp)
}

// GetSmartleadSummary returns aggregated email campaign metrics.
//
//	GET /api/smartlead/summary?days_back=
func (h *Handlers) GetSmartleadSummary(w http.ResponseWriter, r *http.Request) {
	if h.smartlead == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "smartlead is not configured")
		return
	}

	daysBack := 30
	if v := r.URL.Query().Get("days_back"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			httputil.BadRequest(w, "days_back must be a positive integer")
			return
		}
		daysBack = parsed
	}

	summary, err := h.smartlead.SummaryMetrics(r.Context(), daysBack)
	if err != nil {
		logger.Error("smartlead summary failed", "error", err.Error())
		httputil.Error(w, http.StatusBadGateway, "smartlead summary unavailable")
		return
	}
	httputil.OK(w, summary)
}

type populateRequest struct {
	Worksheet string `json:"worksheet"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PopulateSheets runs an aggregation and writes it into the given
// worksheet.
//
//	POST /api/sheets/populate
func (h *Handlers) PopulateSheets(w http.ResponseWriter, r *http.Request) {
	if h.sheetSink == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "google sheets is not configured")
		return
	}

	var req populateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Worksheet == "" {
		httputil.BadRequest(w, "worksheet is required")
		return
	}

	start, end, err := parseRequestRange(req.StartDate, req.EndDate)
	if err != nil {
		httputil.BadRequest(w, "dates must be formatted YYYY-MM-DD")
		return
	}

	result := h.aggregate(r.Context(), "", start, end)

	outcome, err := h.sheetSink.Populate(r.Context(), req.Worksheet, result)
	if err != nil {
		logger.Error("sheet populate failed", "worksheet", req.Worksheet, "error", err.Error())
		httputil.Error(w, http.StatusBadGateway, "sheet populate failed")
		return
	}
	httputil.OK(w, outcome)
}
