package sheets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ignite/outreach-monitor/internal/heyreach"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// SheetAPI is the worksheet surface the populate flow needs. *Client
// implements it.
type SheetAPI interface {
	Values(ctx context.Context, worksheet string) ([][]string, error)
	UpdateCell(ctx context.Context, worksheet string, row, col int, value string) error
	AppendColumn(ctx context.Context, worksheet string) (int, error)
}

// Sink writes aggregation results into a report worksheet.
type Sink struct {
	api SheetAPI
}

// NewSink creates a sheet sink over the given API.
func NewSink(api SheetAPI) *Sink {
	return &Sink{api: api}
}

// PopulateResult reports how a populate run went.
type PopulateResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// Populate writes each sender's weekly metrics into the worksheet's
// matching date columns. Cells that already hold a value are left
// alone, and missing date columns are appended. When the worksheet
// title matches a client group, only that client's senders are
// considered.
func (s *Sink) Populate(ctx context.Context, worksheet string, result *heyreach.AggregationResult) (*PopulateResult, error) {
	outcome := &PopulateResult{Errors: []string{}}

	values, err := s.api.Values(ctx, worksheet)
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", worksheet, err)
	}

	structure := ParseStructure(values)
	if len(structure.Senders) == 0 {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("no senders found in worksheet %q", worksheet))
		return outcome, nil
	}

	senderData := scopeSenderData(result, worksheet)
	dataNames := make([]string, 0, len(senderData))
	for name := range senderData {
		dataNames = append(dataNames, name)
	}

	for idx, block := range structure.Senders {
		blockEnd := len(values) + 1
		if idx+1 < len(structure.Senders) {
			blockEnd = structure.Senders[idx+1].Row
		}
		rows := metricRows(values, block.Row, blockEnd)

		matched, ok := heyreach.MatchName(block.Name, dataNames)
		if !ok {
			logger.Debug("sheets: no aggregation data for sheet sender", "sender", block.Name)
			continue
		}

		for _, week := range senderData[matched] {
			if week.WeekEnd == "" {
				continue
			}
			dateCol, err := s.findOrCreateDateColumn(ctx, worksheet, &structure, week.WeekEnd)
			if err != nil {
				outcome.Errors = append(outcome.Errors,
					fmt.Sprintf("date column for week %s: %v", week.WeekEnd, err))
				continue
			}

			for metric, value := range metricValues(week) {
				row, ok := rows[metric]
				if !ok {
					continue
				}
				if !cellEmpty(values, row, dateCol) {
					continue
				}
				if err := s.api.UpdateCell(ctx, worksheet, row, dateCol, value); err != nil {
					outcome.Errors = append(outcome.Errors,
						fmt.Sprintf("updating %s week %s %s: %v", block.Name, week.WeekEnd, metric, err))
					continue
				}
				outcome.Updated++
			}
		}
	}

	logger.Info("sheets: populate finished",
		"worksheet", worksheet, "updated", outcome.Updated, "errors", len(outcome.Errors))
	return outcome, nil
}

// scopeSenderData picks the sender map to populate from. A client
// group whose name matches the worksheet title narrows the data to
// that client's senders.
func scopeSenderData(result *heyreach.AggregationResult, worksheet string) map[string][]heyreach.WeekStats {
	title := strings.ToLower(strings.TrimSpace(worksheet))

	clients := make([]string, 0, len(result.Clients))
	for name := range result.Clients {
		clients = append(clients, name)
	}
	sort.Strings(clients)

	for _, client := range clients {
		clientTitle := strings.ToLower(strings.TrimSpace(client))
		if clientTitle == title || strings.Contains(title, clientTitle) || strings.Contains(clientTitle, title) {
			return result.Clients[client]
		}
	}
	return result.Senders
}

func (s *Sink) findOrCreateDateColumn(ctx context.Context, worksheet string, st *Structure, target string) (int, error) {
	iso, ok := NormalizeDate(target)
	if !ok {
		return 0, fmt.Errorf("unparsable date %q", target)
	}
	if col, ok := st.DateColumns[iso]; ok {
		return col, nil
	}

	col, err := s.api.AppendColumn(ctx, worksheet)
	if err != nil {
		return 0, err
	}
	headerRow := st.DateRow
	if headerRow == 0 {
		headerRow = 1
	}
	if err := s.api.UpdateCell(ctx, worksheet, headerRow, col, iso); err != nil {
		return 0, err
	}

	st.DateColumns[iso] = col
	logger.Info("sheets: added date column", "date", iso, "column", col)
	return col, nil
}

// metricValues renders one week of stats as the strings written into
// the sheet. Rates carry a percent sign.
func metricValues(week heyreach.WeekStats) map[string]string {
	return map[string]string{
		"connections_sent":     strconv.FormatInt(week.ConnectionsSent, 10),
		"connections_accepted": strconv.FormatInt(week.ConnectionsAccepted, 10),
		"acceptance_rate":      fmt.Sprintf("%.2f%%", week.AcceptanceRate),
		"messages_sent":        strconv.FormatInt(week.MessagesSent, 10),
		"message_replies":      strconv.FormatInt(week.MessageReplies, 10),
		"reply_rate":           fmt.Sprintf("%.2f%%", week.ReplyRate),
		"open_conversations":   strconv.FormatInt(week.OpenConversations, 10),
		"interested":           strconv.FormatInt(week.Interested, 10),
		"leads_not_enrolled":   strconv.FormatInt(week.LeadsNotEnrolled, 10),
	}
}

// cellEmpty reports whether a 1-indexed cell is blank in the fetched
// grid. Cells beyond the grid are blank, including freshly appended
// columns.
func cellEmpty(values [][]string, row, col int) bool {
	if row-1 >= len(values) {
		return true
	}
	gridRow := values[row-1]
	if col-1 >= len(gridRow) {
		return true
	}
	return strings.TrimSpace(gridRow[col-1]) == ""
}
