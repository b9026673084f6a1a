package heyreach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchNameExact(t *testing.T) {
	match, ok := MatchName("alice johnson", []string{"Bob Smith", "Alice Johnson"})
	assert.True(t, ok)
	assert.Equal(t, "Alice Johnson", match)
}

func TestMatchNameContainment(t *testing.T) {
	// Spreadsheet labels often carry suffixes.
	match, ok := MatchName("Alice Johnson", []string{"Alice Johnson (LinkedIn)", "Bob Smith"})
	assert.True(t, ok)
	assert.Equal(t, "Alice Johnson (LinkedIn)", match)

	// And containment works the other direction too.
	match, ok = MatchName("Alice Johnson - Sales", []string{"Alice Johnson"})
	assert.True(t, ok)
	assert.Equal(t, "Alice Johnson", match)
}

func TestMatchNameFuzzyLastToken(t *testing.T) {
	// Same first name, surname within edit distance 2.
	match, ok := MatchName("Alice Johnsen", []string{"Alice Johnson", "Bob Smith"})
	assert.True(t, ok)
	assert.Equal(t, "Alice Johnson", match)
}

func TestMatchNameFuzzyFirstToken(t *testing.T) {
	// Short-form first names within edit distance 1 still match when
	// the surname agrees.
	match, ok := MatchName("Jon Smith", []string{"Jon Davies", "John Smith"})
	assert.True(t, ok)
	assert.Equal(t, "John Smith", match)

	// A matching first name with a distant surname does not.
	_, ok = MatchName("Jon Smith", []string{"Jon Davies"})
	assert.False(t, ok)
}

func TestMatchNameFuzzyRequiresFirstToken(t *testing.T) {
	// A close surname alone is not enough.
	_, ok := MatchName("Carol Johnson", []string{"Alice Johnsen"})
	assert.False(t, ok)
}

func TestMatchNameNoMatch(t *testing.T) {
	_, ok := MatchName("Dave Miller", []string{"Alice Johnson", "Bob Smith"})
	assert.False(t, ok)

	_, ok = MatchName("", []string{"Alice Johnson"})
	assert.False(t, ok)

	_, ok = MatchName("Alice Johnson", nil)
	assert.False(t, ok)
}

func TestMatchNameExactBeatsContainment(t *testing.T) {
	match, ok := MatchName("Alice Johnson", []string{"Alice Johnson Jr", "Alice Johnson"})
	assert.True(t, ok)
	assert.Equal(t, "Alice Johnson", match)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("smith", "smith"))
	assert.Equal(t, 1, levenshtein("smith", "smyth"))
	assert.Equal(t, 1, levenshtein("johnson", "jonson"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "stone"))
	assert.Equal(t, 3, levenshtein("abc", ""))
}
