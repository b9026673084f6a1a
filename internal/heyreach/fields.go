package heyreach

import (
	"encoding/json"
	"strconv"
	"strings"
)

// fieldAliases maps each canonical counter to the upstream field names
// observed for it, in priority order. The HeyReach API has shipped
// several namings for the same counters; extraction tries each alias
// and takes the first non-null value.
//
// Note: totalMessageStarted is deliberately first for messages sent
// (started conversations are what the dashboard counts as sends) and
// doubles as the last-resort alias for open conversations.
var fieldAliases = map[string][]string{
	"connections_sent": {
		"connectionsSent",
		"connectionRequestsSent", "connectionRequests",
		"invitesSent", "sentConnections", "totalConnectionsSent",
		"connectionRequestsCount", "invitesSentCount",
	},
	"connections_accepted": {
		"connectionsAccepted",
		"acceptedConnections", "invitesAccepted",
		"acceptedInvites", "totalConnectionsAccepted",
		"acceptedConnectionRequests", "acceptedInvitesCount",
	},
	"messages_sent": {
		"totalMessageStarted",
		"messagesSent",
		"sentMessages", "totalMessagesSent", "messages",
		"messageCount", "totalMessages", "messagesSentCount",
	},
	"message_replies": {
		"totalMessageReplies",
		"repliesReceived", "replies", "messageReplies",
		"totalReplies", "repliesCount", "replyCount",
	},
	"open_conversations": {
		"openConversations", "activeConversations",
		"conversations", "activeChats", "messageStarted",
		"totalMessageStarted",
	},
	"interested": {
		"interested", "interestedLeads",
		"leadsInterested", "interestedCount", "interestedLeadsCount",
	},
	"leads_not_enrolled": {
		"leadsNotEnrolled", "pendingLeads",
		"notEnrolled", "pending", "pendingLeadsCount",
	},
}

// ExtractCounters pulls the canonical counters out of a normalized
// stats map. Missing fields default to zero.
func ExtractCounters(stats map[string]any) Counters {
	return Counters{
		ConnectionsSent:     extractField(stats, fieldAliases["connections_sent"]),
		ConnectionsAccepted: extractField(stats, fieldAliases["connections_accepted"]),
		MessagesSent:        extractField(stats, fieldAliases["messages_sent"]),
		MessageReplies:      extractField(stats, fieldAliases["message_replies"]),
		OpenConversations:   extractField(stats, fieldAliases["open_conversations"]),
		Interested:          extractField(stats, fieldAliases["interested"]),
		LeadsNotEnrolled:    extractField(stats, fieldAliases["leads_not_enrolled"]),
	}
}

// extractField tries each alias against the stats map, exact key
// first, then case-insensitive. The first alias present with a
// non-null value wins; an unparsable value resolves to zero rather
// than falling through to later aliases.
func extractField(stats map[string]any, aliases []string) float64 {
	for _, alias := range aliases {
		if v, ok := stats[alias]; ok && v != nil {
			return numericValue(v)
		}
		for key, v := range stats {
			if strings.EqualFold(key, alias) && v != nil {
				return numericValue(v)
			}
		}
	}
	return 0
}

func numericValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
