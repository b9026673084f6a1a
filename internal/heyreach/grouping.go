package heyreach

import (
	"sort"
	"time"

	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// BuildResult assembles the final aggregation response: a flat senders
// map plus a clients projection for senders that belong to a
// configured client group. Every grouped sender also appears in the
// flat map, so the clients view is always a subset.
func BuildResult(senders []Sender, weeks []Week, counters map[string]map[string]Counters,
	names []string, clientGroups map[string][]int64, start, end time.Time) *AggregationResult {

	result := &AggregationResult{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Senders:   make(map[string][]WeekStats),
		Clients:   make(map[string]map[string][]WeekStats),
	}

	weekByKey := make(map[string]Week, len(weeks))
	for _, week := range weeks {
		weekByKey[week.Key] = week
	}

	senderToClient := clientIndex(clientGroups)
	nameToID := NameIndex(senders)

	for _, name := range names {
		cells, ok := counters[name]
		if !ok {
			continue
		}
		formatted := formatWeeks(cells, weekByKey)

		var client string
		if id, ok := nameToID[name]; ok {
			client = senderToClient[id]
		}

		if client != "" {
			bucket, ok := result.Clients[client]
			if !ok {
				bucket = make(map[string][]WeekStats)
				result.Clients[client] = bucket
			}
			bucket[name] = formatted
		}

		if _, ok := result.Senders[name]; !ok {
			result.Senders[name] = formatted
		}
	}

	logger.Info("heyreach: built aggregation result",
		"senders", len(result.Senders), "clients", len(result.Clients))
	return result
}

// clientIndex builds the senderID -> client reverse index. Clients are
// walked in sorted name order so a sender listed under two groups is
// always assigned deterministically, first match wins.
func clientIndex(clientGroups map[string][]int64) map[int64]string {
	index := make(map[int64]string)

	clients := make([]string, 0, len(clientGroups))
	for client := range clientGroups {
		clients = append(clients, client)
	}
	sort.Strings(clients)

	for _, client := range clients {
		for _, id := range clientGroups[client] {
			if _, taken := index[id]; !taken {
				index[id] = client
			}
		}
	}
	return index
}

// NameIndex maps sender display names back to their IDs. Each ID is
// incorporated at most once; a duplicate row for an already-seen ID is
// skipped.
func NameIndex(senders []Sender) map[string]int64 {
	index := make(map[string]int64, len(senders))
	seen := make(map[int64]bool, len(senders))
	for _, sender := range senders {
		if seen[sender.ID] {
			continue
		}
		seen[sender.ID] = true
		if _, ok := index[sender.Name]; !ok {
			index[sender.Name] = sender.ID
		}
	}
	return index
}

// formatWeeks orders a sender's weekly cells chronologically and
// formats each one. Weeks missing from the partition (stale cache
// keys) fall back to the key itself for both boundary dates.
func formatWeeks(cells map[string]Counters, weekByKey map[string]Week) []WeekStats {
	keys := make([]string, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	formatted := make([]WeekStats, 0, len(keys))
	for _, key := range keys {
		week, ok := weekByKey[key]
		if !ok {
			week = Week{Key: key}
		}
		ws := formatWeek(week, cells[key])
		if !ok {
			ws.WeekStart = key
			ws.WeekEnd = key
		}
		formatted = append(formatted, ws)
	}
	return formatted
}
