// Package report renders aggregation results as CSV downloads and
// archives them to S3.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ignite/outreach-monitor/internal/heyreach"
)

var csvHeader = []string{
	"sender", "week_start", "week_end",
	"connections_sent", "connections_accepted", "acceptance_rate",
	"messages_sent", "message_replies", "reply_rate",
	"open_conversations", "interested", "leads_not_enrolled",
}

// WriteCSV renders one row per sender per week, senders in
// alphabetical order.
func WriteCSV(w io.Writer, result *heyreach.AggregationResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	names := make([]string, 0, len(result.Senders))
	for name := range result.Senders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, week := range result.Senders[name] {
			row := []string{
				name, week.WeekStart, week.WeekEnd,
				strconv.FormatInt(week.ConnectionsSent, 10),
				strconv.FormatInt(week.ConnectionsAccepted, 10),
				strconv.FormatFloat(week.AcceptanceRate, 'f', 2, 64),
				strconv.FormatInt(week.MessagesSent, 10),
				strconv.FormatInt(week.MessageReplies, 10),
				strconv.FormatFloat(week.ReplyRate, 'f', 2, 64),
				strconv.FormatInt(week.OpenConversations, 10),
				strconv.FormatInt(week.Interested, 10),
				strconv.FormatInt(week.LeadsNotEnrolled, 10),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("writing csv row for %s: %w", name, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// Filename names a CSV export after its date range.
func Filename(startDate, endDate string) string {
	return fmt.Sprintf("linkedin_performance_%s_%s.csv", startDate, endDate)
}
