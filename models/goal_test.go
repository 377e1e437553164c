package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) *string { return &s }

func TestGoalVisibleOn(t *testing.T) {
	const today = "2026-02-17"
	tests := []struct {
		name string
		goal Goal
		want bool
	}{
		{"created today", Goal{Date: today}, true},
		{"created today and completed", Goal{Date: today, Completed: true, CompletedAt: day(today)}, true},
		{"rolled over", Goal{Date: "2026-02-10"}, true},
		{"completed earlier", Goal{Date: "2026-02-10", Completed: true, CompletedAt: day("2026-02-12")}, false},
		{"old goal completed today", Goal{Date: "2026-02-10", Completed: true, CompletedAt: day(today)}, true},
		{"completed without date", Goal{Date: "2026-02-10", Completed: true}, false},
		{"future", Goal{Date: "2026-02-18"}, false},
		{"malformed date", Goal{Date: "17/02/2026"}, false},
		{"missing date", Goal{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.goal.VisibleOn(today))
		})
	}
}

func TestGoalVisibleOnMalformedToday(t *testing.T) {
	assert.False(t, Goal{Date: "2026-02-17"}.VisibleOn("yesterday"))
}

func TestVisibleGoalsKeepsInputOrder(t *testing.T) {
	goals := []Goal{
		{ID: "c", Date: "2026-02-16"},
		{ID: "x", Date: "2026-02-20"},
		{ID: "a", Date: "2026-02-17"},
	}
	got := VisibleGoals(goals, "2026-02-17")
	if assert.Len(t, got, 2) {
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "a", got[1].ID)
	}
	assert.Empty(t, VisibleGoals(nil, "2026-02-17"))
}

func TestSortForDisplay(t *testing.T) {
	base := time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)
	goals := []Goal{
		{ID: "done", Priority: PriorityHigh, Completed: true, CreatedAt: base},
		{ID: "low", Priority: PriorityLow, CreatedAt: base},
		{ID: "high-late", Priority: PriorityHigh, CreatedAt: base.Add(time.Hour)},
		{ID: "high-early", Priority: PriorityHigh, CreatedAt: base},
		{ID: "medium", Priority: PriorityMedium, CreatedAt: base},
	}
	SortForDisplay(goals)

	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	assert.Equal(t, []string{"high-early", "high-late", "medium", "low", "done"}, ids)
}

func TestDayHelpers(t *testing.T) {
	assert.Equal(t, "2026-03-01", AddDays("2026-02-28", 1))
	assert.Equal(t, "2025-12-31", AddDays("2026-01-01", -1))
	assert.Equal(t, "", AddDays("nope", 1))
	assert.Equal(t, "", NormalizeDay("2026-13-01"))

	loc := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, "2026-02-18", DayOf(time.Date(2026, 2, 17, 20, 0, 0, 0, time.UTC), loc))
}

func TestSessionSortKey(t *testing.T) {
	created := time.Date(2026, 2, 17, 9, 0, 0, 0, time.UTC)
	start := created.Add(time.Hour)
	end := start.Add(time.Hour)

	assert.Equal(t, end, StudySession{StartTime: &start, EndTime: &end, CreatedAt: created}.SortKey())
	assert.Equal(t, start, StudySession{StartTime: &start, CreatedAt: created}.SortKey())
	assert.Equal(t, created, StudySession{CreatedAt: created}.SortKey())
}

func TestSubjectAndPriorityValidity(t *testing.T) {
	assert.True(t, SubjectSocialScience.IsValid())
	assert.False(t, Subject("History").IsValid())
	assert.True(t, PriorityLow.IsValid())
	assert.False(t, Priority("Urgent").IsValid())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
}
