package models

import (
	"sort"
	"time"
)

// Goal is a unit of intended study work for one calendar day.
// Date never changes after creation; rollover only changes visibility.
type Goal struct {
	ID          string    `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	UserID      string    `gorm:"index;size:128;not null" bson:"user_id" json:"user_id"`
	Date        string    `gorm:"index;size:10;not null" bson:"date" json:"date"` // YYYY-MM-DD
	Title       string    `gorm:"not null" bson:"title" json:"title"`
	Subject     Subject   `gorm:"size:32" bson:"subject" json:"subject"`
	TargetHours float64   `bson:"target_hours" json:"target_hours"`
	Completed   bool      `bson:"completed" json:"completed"`
	Priority    Priority  `gorm:"size:8" bson:"priority" json:"priority"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	CompletedAt *string   `gorm:"size:10" bson:"completed_at,omitempty" json:"completed_at,omitempty"` // set iff Completed
}

// VisibleOn reports whether the goal belongs in the list for today:
// created today, rolled over while incomplete, or completed today.
// Records with a malformed date never match.
func (g Goal) VisibleOn(today string) bool {
	t, ok := ParseDay(today)
	if !ok {
		return false
	}
	d, ok := ParseDay(g.Date)
	if !ok {
		return false
	}
	switch {
	case d.Equal(t):
		return true
	case d.After(t):
		return false
	case !g.Completed:
		return true
	}
	if g.CompletedAt == nil {
		return false
	}
	c, ok := ParseDay(*g.CompletedAt)
	return ok && c.Equal(t)
}

// VisibleGoals filters goals down to today's view. Order follows the input.
func VisibleGoals(goals []Goal, today string) []Goal {
	out := make([]Goal, 0, len(goals))
	for _, g := range goals {
		if g.VisibleOn(today) {
			out = append(out, g)
		}
	}
	return out
}

// SortForDisplay orders goals open-first, then by priority, then oldest first.
func SortForDisplay(goals []Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
