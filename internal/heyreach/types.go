// Package heyreach aggregates LinkedIn outreach metrics from the HeyReach
// API into per-sender weekly performance data.
package heyreach

import (
	"math"
	"time"
)

// Sender is a LinkedIn sending account in the resolved directory.
type Sender struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Week is a Saturday-to-Friday reporting window. Start and End are
// clipped to the requested date range; Key is the calendar Friday of
// the week formatted YYYY-MM-DD, so partial edge weeks keep a stable
// identifier.
type Week struct {
	Start time.Time
	End   time.Time
	Key   string
}

// Counters holds the raw per-week metric counters for one sender.
// Values stay float64 until formatting because the upstream API
// returns counters as numbers or numeric strings interchangeably.
type Counters struct {
	ConnectionsSent     float64
	ConnectionsAccepted float64
	MessagesSent        float64
	MessageReplies      float64
	OpenConversations   float64
	Interested          float64
	LeadsNotEnrolled    float64
}

// WeekStats is one formatted week of sender performance.
type WeekStats struct {
	WeekStart           string  `json:"week_start"`
	WeekEnd             string  `json:"week_end"`
	ConnectionsSent     int64   `json:"connections_sent"`
	ConnectionsAccepted int64   `json:"connections_accepted"`
	AcceptanceRate      float64 `json:"acceptance_rate"`
	MessagesSent        int64   `json:"messages_sent"`
	MessageReplies      int64   `json:"message_replies"`
	ReplyRate           float64 `json:"reply_rate"`
	OpenConversations   int64   `json:"open_conversations"`
	Interested          int64   `json:"interested"`
	LeadsNotEnrolled    int64   `json:"leads_not_enrolled"`
}

// AggregationResult is the full response shape for a weekly
// performance aggregation. Senders always holds every sender; Clients
// is a projection of the senders that belong to a configured client
// group.
type AggregationResult struct {
	StartDate string                            `json:"start_date"`
	EndDate   string                            `json:"end_date"`
	Senders   map[string][]WeekStats            `json:"senders"`
	Clients   map[string]map[string][]WeekStats `json:"clients"`
}

// formatWeek turns raw counters into a formatted record with derived
// rates. Division by zero yields a zero rate, never NaN.
func formatWeek(week Week, c Counters) WeekStats {
	var acceptanceRate, replyRate float64
	if c.ConnectionsSent > 0 {
		acceptanceRate = c.ConnectionsAccepted / c.ConnectionsSent * 100
	}
	if c.MessagesSent > 0 {
		replyRate = c.MessageReplies / c.MessagesSent * 100
	}

	return WeekStats{
		WeekStart:           week.Start.Format("2006-01-02"),
		WeekEnd:             week.End.Format("2006-01-02"),
		ConnectionsSent:     int64(c.ConnectionsSent),
		ConnectionsAccepted: int64(c.ConnectionsAccepted),
		AcceptanceRate:      Round2(acceptanceRate),
		MessagesSent:        int64(c.MessagesSent),
		MessageReplies:      int64(c.MessageReplies),
		ReplyRate:           Round2(replyRate),
		OpenConversations:   int64(c.OpenConversations),
		Interested:          int64(c.Interested),
		LeadsNotEnrolled:    int64(c.LeadsNotEnrolled),
	}
}

// Round2 rounds a rate to two decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
