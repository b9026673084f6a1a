package heyreach

import "strings"

// MatchName finds the candidate that refers to the same person as
// target, tolerating the formatting drift between configured names and
// spreadsheet labels. Matching tiers, strictest first:
//
//  1. exact match, case-insensitive;
//  2. containment in either direction;
//  3. first token within edit distance 1 and last token within edit
//     distance 2 (catches short-form first names like Jon/John and
//     transposed or slightly misspelled surnames).
//
// The first candidate to satisfy a tier wins.
func MatchName(target string, candidates []string) (string, bool) {
	normalizedTarget := normalizeName(target)
	if normalizedTarget == "" {
		return "", false
	}

	for _, candidate := range candidates {
		if normalizeName(candidate) == normalizedTarget {
			return candidate, true
		}
	}

	for _, candidate := range candidates {
		normalized := normalizeName(candidate)
		if normalized == "" {
			continue
		}
		if strings.Contains(normalized, normalizedTarget) || strings.Contains(normalizedTarget, normalized) {
			return candidate, true
		}
	}

	targetTokens := strings.Fields(normalizedTarget)
	for _, candidate := range candidates {
		tokens := strings.Fields(normalizeName(candidate))
		if len(tokens) == 0 || len(targetTokens) == 0 {
			continue
		}
		if levenshtein(tokens[0], targetTokens[0]) > 1 {
			continue
		}
		if levenshtein(tokens[len(tokens)-1], targetTokens[len(targetTokens)-1]) <= 2 {
			return candidate, true
		}
	}

	return "", false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// levenshtein computes the edit distance between two strings using the
// two-row dynamic programming form.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
