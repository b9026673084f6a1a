package sheets

import (
	"regexp"
	"strings"
	"time"
)

// Structure describes the layout of a report worksheet: where the date
// header row sits, which column each ISO date occupies, and where each
// sender block begins.
type Structure struct {
	Senders     []SenderBlock
	DateRow     int            // 1-indexed, 0 when no date header was found
	DateColumns map[string]int // ISO date -> 1-indexed column
}

// SenderBlock marks the header row of one sender's block of metric rows.
type SenderBlock struct {
	Name string
	Row  int // 1-indexed
}

var (
	spreadsheetIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`),
		regexp.MustCompile(`id=([a-zA-Z0-9-_]+)`),
	}
	monthDayPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)
)

// ExtractSpreadsheetID pulls the spreadsheet ID out of a Google Sheets
// URL.
func ExtractSpreadsheetID(url string) (string, bool) {
	for _, pattern := range spreadsheetIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

var dateFormats = []string{"2006-01-02", "1/2/2006", "1/2/06", "2006/1/2"}

// NormalizeDate parses a sheet date header into ISO YYYY-MM-DD form.
// Headers without a year (MM/DD) assume the current year.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	if monthDayPattern.MatchString(value) {
		if t, err := time.Parse("1/2/2006", value+"/"+time.Now().Format("2006")); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	return "", false
}

// metricLabels are the first-column labels a report sheet uses for its
// metric rows, keyed by the canonical metric name. Matching is by
// case-insensitive containment, first alias wins.
var metricLabels = map[string][]string{
	"connections_sent":     {"connections sent"},
	"connections_accepted": {"connections accepted"},
	"acceptance_rate":      {"acceptance rate"},
	"messages_sent":        {"messages sent"},
	"message_replies":      {"message replies"},
	"reply_rate":           {"reply rate"},
	"open_conversations":   {"open conversations"},
	"interested":           {"interested"},
	"leads_not_enrolled":   {"leads not yet enrolled", "leads not enrolled"},
}

func isMetricLabel(cell string) bool {
	for _, aliases := range metricLabels {
		for _, alias := range aliases {
			if cell == alias {
				return true
			}
		}
	}
	return false
}

// ParseStructure scans a worksheet's value grid for the date header row
// and the sender block headers. A sender header is a non-empty first
// cell that is not a metric label, a bare number, or a date.
func ParseStructure(values [][]string) Structure {
	st := Structure{DateColumns: make(map[string]int)}

	// The first row containing any date-like cell is the date header
	// row; every date in it maps to its column.
	for rowIdx, row := range values {
		for colIdx, cell := range row {
			if iso, ok := NormalizeDate(cell); ok {
				if st.DateRow == 0 {
					st.DateRow = rowIdx + 1
				}
				st.DateColumns[iso] = colIdx + 1
			}
		}
		if len(st.DateColumns) > 0 {
			break
		}
	}

	for rowIdx, row := range values {
		if len(row) == 0 {
			continue
		}
		first := strings.TrimSpace(row[0])
		if first == "" || isMetricLabel(strings.ToLower(first)) {
			continue
		}
		if isNumeric(first) {
			continue
		}
		if _, ok := NormalizeDate(first); ok {
			continue
		}
		st.Senders = append(st.Senders, SenderBlock{Name: first, Row: rowIdx + 1})
	}

	return st
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// metricRows locates the 1-indexed row of each metric inside one
// sender's block. The block spans (startRow, endRow) exclusive, both
// 1-indexed.
func metricRows(values [][]string, startRow, endRow int) map[string]int {
	rows := make(map[string]int)
	for rowIdx := startRow; rowIdx < endRow-1; rowIdx++ {
		if rowIdx >= len(values) {
			break
		}
		row := values[rowIdx]
		if len(row) == 0 {
			continue
		}
		first := strings.ToLower(strings.TrimSpace(row[0]))
		if first == "" {
			continue
		}
		for metric, aliases := range metricLabels {
			if _, seen := rows[metric]; seen {
				continue
			}
			for _, alias := range aliases {
				if strings.Contains(first, alias) {
					rows[metric] = rowIdx + 1
					break
				}
			}
		}
	}
	return rows
}
