package heyreach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPartitionWeeksMidweekStart(t *testing.T) {
	// Wednesday through the Tuesday two weeks later
	weeks := PartitionWeeks(day("2025-01-15"), day("2025-01-28"))
	require.Len(t, weeks, 3)

	// First week is anchored at Saturday 2025-01-11 but clipped to the
	// range start; the key stays the calendar Friday.
	assert.Equal(t, day("2025-01-15"), weeks[0].Start)
	assert.Equal(t, day("2025-01-17"), weeks[0].End)
	assert.Equal(t, "2025-01-17", weeks[0].Key)

	// Middle week is a full Saturday-to-Friday window.
	assert.Equal(t, day("2025-01-18"), weeks[1].Start)
	assert.Equal(t, day("2025-01-24"), weeks[1].End)
	assert.Equal(t, "2025-01-24", weeks[1].Key)

	// Last week is clipped at the range end, key still the Friday.
	assert.Equal(t, day("2025-01-25"), weeks[2].Start)
	assert.Equal(t, day("2025-01-28"), weeks[2].End)
	assert.Equal(t, "2025-01-31", weeks[2].Key)
}

func TestPartitionWeeksSaturdayStart(t *testing.T) {
	weeks := PartitionWeeks(day("2025-01-04"), day("2025-01-10"))
	require.Len(t, weeks, 1)
	assert.Equal(t, day("2025-01-04"), weeks[0].Start)
	assert.Equal(t, day("2025-01-10"), weeks[0].End)
	assert.Equal(t, "2025-01-10", weeks[0].Key)
}

func TestPartitionWeeksSundayStart(t *testing.T) {
	weeks := PartitionWeeks(day("2025-01-05"), day("2025-01-05"))
	require.Len(t, weeks, 1)
	// Anchor Saturday is 2025-01-04, clipped to the single-day range.
	assert.Equal(t, day("2025-01-05"), weeks[0].Start)
	assert.Equal(t, day("2025-01-05"), weeks[0].End)
	assert.Equal(t, "2025-01-10", weeks[0].Key)
}

func TestPartitionWeeksSingleDay(t *testing.T) {
	// A Wednesday-only range still yields its containing week.
	weeks := PartitionWeeks(day("2025-06-11"), day("2025-06-11"))
	require.Len(t, weeks, 1)
	assert.Equal(t, day("2025-06-11"), weeks[0].Start)
	assert.Equal(t, day("2025-06-11"), weeks[0].End)
	assert.Equal(t, "2025-06-13", weeks[0].Key)
}

func TestPartitionWeeksCapped(t *testing.T) {
	weeks := PartitionWeeks(day("2023-01-01"), day("2025-12-31"))
	assert.Len(t, weeks, maxWeeks)
}

func TestPartitionWeeksEndBeforeStart(t *testing.T) {
	weeks := PartitionWeeks(day("2025-03-10"), day("2025-03-01"))
	assert.Empty(t, weeks)
}

func TestPartitionWeeksBoundariesWithinRange(t *testing.T) {
	start, end := day("2025-02-03"), day("2025-04-18")
	for _, week := range PartitionWeeks(start, end) {
		assert.False(t, week.Start.Before(start), "week start before range start")
		assert.False(t, week.End.After(end), "week end after range end")
		assert.False(t, week.End.Before(week.Start), "week end before week start")
		// Keys are Fridays
		assert.Equal(t, time.Friday, day(week.Key).Weekday())
	}
}
