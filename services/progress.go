package services

import (
	"math"
	"sort"
	"time"

	"studytrack/models"
)

// Pure aggregation over a goal/session snapshot. Nothing here touches a
// store, so the same input always yields the same output.

// ---------- per-goal progress ----------

type GoalProgress struct {
	models.Goal
	ActualMinutes float64 `json:"actual_minutes"`
	ActualHours   float64 `json:"actual_hours"` // one decimal, display only
	OnPace        bool    `json:"on_pace"`
	// Ambiguous marks goals sharing subject+title with another visible goal.
	// Matching sessions are credited to each of them.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Hours is the unrounded time invested.
func (p GoalProgress) Hours() float64 { return p.ActualMinutes / 60 }

type attribution struct {
	subject models.Subject
	title   string
}

// ProgressForGoals credits today's sessions to goals by exact
// (subject, topic == title) match.
func ProgressForGoals(goals []models.Goal, sessions []models.StudySession, today string) []GoalProgress {
	today = models.NormalizeDay(today)

	minutes := map[attribution]float64{}
	if today != "" {
		for _, s := range sessions {
			if models.NormalizeDay(s.Date) != today {
				continue
			}
			minutes[attribution{s.Subject, s.Topic}] += s.DurationMinutes
		}
	}

	owners := map[attribution]int{}
	for _, g := range goals {
		owners[attribution{g.Subject, g.Title}]++
	}

	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		k := attribution{g.Subject, g.Title}
		m := minutes[k]
		hours := m / 60
		out = append(out, GoalProgress{
			Goal:          g,
			ActualMinutes: m,
			ActualHours:   round1(hours),
			OnPace:        hours >= g.TargetHours,
			Ambiguous:     owners[k] > 1,
		})
	}
	return out
}

// ---------- daily totals ----------

type DailyTotals struct {
	StudiedMinutes float64 `json:"studied_minutes"`
	TargetMinutes  float64 `json:"target_minutes"`
	Percent        float64 `json:"percent"`
}

// ComputeDailyTotals compares today's studied minutes with the targets of
// the visible goals. Percent is 0 when there is no target.
func ComputeDailyTotals(goals []models.Goal, sessions []models.StudySession, today string) DailyTotals {
	today = models.NormalizeDay(today)
	var out DailyTotals
	for _, s := range sessions {
		if today != "" && models.NormalizeDay(s.Date) == today {
			out.StudiedMinutes += s.DurationMinutes
		}
	}
	for _, g := range goals {
		out.TargetMinutes += g.TargetHours * 60
	}
	if out.TargetMinutes > 0 {
		out.Percent = round2(out.StudiedMinutes / out.TargetMinutes * 100)
	}
	return out
}

// ---------- subject distribution ----------

// Window is an inclusive range of days. Empty bounds are open.
type Window struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func AllTime() Window { return Window{} }

func DayWindow(today string) Window { return Window{From: today, To: today} }

// LastDays is the rolling window of n days ending today.
func LastDays(today string, n int) Window {
	if n < 1 {
		n = 1
	}
	return Window{From: models.AddDays(today, -(n - 1)), To: today}
}

func (w Window) contains(day string) bool {
	if w.From == "" && w.To == "" {
		return true
	}
	d, ok := models.ParseDay(day)
	if !ok {
		return false
	}
	if from, ok := models.ParseDay(w.From); ok && d.Before(from) {
		return false
	}
	if to, ok := models.ParseDay(w.To); ok && d.After(to) {
		return false
	}
	return true
}

type SubjectTime struct {
	Subject string  `json:"subject"`
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// SubjectDistribution groups minutes by the literal subject string.
// Subjects with no time are left out.
func SubjectDistribution(sessions []models.StudySession, w Window) []SubjectTime {
	totals := map[string]float64{}
	for _, s := range sessions {
		if !w.contains(s.Date) {
			continue
		}
		totals[string(s.Subject)] += s.DurationMinutes
	}
	out := make([]SubjectTime, 0, len(totals))
	for subject, m := range totals {
		if m == 0 {
			continue
		}
		out = append(out, SubjectTime{Subject: subject, Minutes: m, Hours: round2(m / 60)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// ---------- trend ----------

const (
	ShortTrendDays    = 14
	PresenceTrendDays = 30
)

type TrendPoint struct {
	Date    string  `json:"date"`
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// Trend returns one point per day of the window ending today, oldest first,
// including days with nothing logged.
func Trend(sessions []models.StudySession, today string, days int) []TrendPoint {
	end, ok := models.ParseDay(today)
	if !ok || days < 1 {
		return []TrendPoint{}
	}
	start := end.AddDate(0, 0, -(days - 1))

	out := make([]TrendPoint, days)
	idx := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := models.FormatDay(start.AddDate(0, 0, i))
		out[i].Date = key
		idx[key] = i
	}
	for _, s := range sessions {
		if i, ok := idx[models.NormalizeDay(s.Date)]; ok {
			out[i].Minutes += s.DurationMinutes
		}
	}
	for i := range out {
		out[i].Hours = round2(out[i].Minutes / 60)
	}
	return out
}

// ---------- streak ----------

// Streak counts consecutive study days ending today, or ending yesterday
// when nothing has been logged yet today.
func Streak(sessions []models.StudySession, today string) int {
	t, ok := models.ParseDay(today)
	if !ok {
		return 0
	}
	studied := map[string]bool{}
	for _, s := range sessions {
		if d := models.NormalizeDay(s.Date); d != "" {
			studied[d] = true
		}
	}

	cur := t
	if !studied[models.FormatDay(cur)] {
		cur = cur.AddDate(0, 0, -1)
		if !studied[models.FormatDay(cur)] {
			return 0
		}
	}
	n := 0
	for studied[models.FormatDay(cur)] {
		n++
		cur = cur.AddDate(0, 0, -1)
	}
	return n
}

// ---------- best day ----------

type BestDay struct {
	Weekday int     `json:"weekday"` // 0=Sunday
	Name    string  `json:"name"`
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// FindBestDay buckets minutes by weekday of the session's logical day.
// Ties go to the lowest weekday index. Nil when nothing has been logged.
func FindBestDay(sessions []models.StudySession) *BestDay {
	var buckets [7]float64
	for _, s := range sessions {
		d, ok := models.ParseDay(s.Date)
		if !ok {
			continue
		}
		buckets[int(d.Weekday())] += s.DurationMinutes
	}
	best := 0
	for i := 1; i < len(buckets); i++ {
		if buckets[i] > buckets[best] {
			best = i
		}
	}
	if buckets[best] <= 0 {
		return nil
	}
	return &BestDay{
		Weekday: best,
		Name:    time.Weekday(best).String(),
		Minutes: buckets[best],
		Hours:   round2(buckets[best] / 60),
	}
}

// ---------- confidence ----------

// AverageConfidence is the rounded mean score, nil when there are no entries.
func AverageConfidence(entries []models.ConfidenceEntry) *int {
	if len(entries) == 0 {
		return nil
	}
	sum := 0
	for _, e := range entries {
		sum += e.Score
	}
	avg := int(math.Round(float64(sum) / float64(len(entries))))
	return &avg
}

func totalMinutes(sessions []models.StudySession) float64 {
	var m float64
	for _, s := range sessions {
		m += s.DurationMinutes
	}
	return m
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
