package services

import (
	"context"

	"studytrack/models"
	"studytrack/store"
)

// AnalyticsService fetches a fresh snapshot per call and hands it to the
// pure aggregation functions.
type AnalyticsService struct {
	store store.Store
}

func NewAnalyticsService(st store.Store) *AnalyticsService { return &AnalyticsService{store: st} }

// ---------- Dashboard ----------

type Dashboard struct {
	Date     string         `json:"date"`
	Goals    []GoalProgress `json:"goals"`
	Totals   DailyTotals    `json:"totals"`
	Subjects []SubjectTime  `json:"subjects"`
	Streak   int            `json:"streak"`
}

func (s *AnalyticsService) Dashboard(ctx context.Context, userID, today string) (*Dashboard, error) {
	goals, err := s.store.GetGoals(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	models.SortForDisplay(goals)

	todays, err := s.store.GetSessions(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.GetSessions(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Date:     today,
		Goals:    ProgressForGoals(goals, todays, today),
		Totals:   ComputeDailyTotals(goals, todays, today),
		Subjects: SubjectDistribution(todays, DayWindow(today)),
		Streak:   Streak(append(recent, todays...), today),
	}, nil
}

// ---------- Trend ----------

func (s *AnalyticsService) Trend(ctx context.Context, userID, today string, days int) ([]TrendPoint, error) {
	if days < 1 || days > 366 {
		return nil, invalid("days must be between 1 and 366")
	}
	sessions, err := s.store.GetSessions(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return Trend(sessions, today, days), nil
}

// ---------- Subjects ----------

func (s *AnalyticsService) Subjects(ctx context.Context, userID string, w Window) ([]SubjectTime, error) {
	date := ""
	if w.From != "" && w.From == w.To {
		date = w.From
	}
	sessions, err := s.store.GetSessions(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return SubjectDistribution(sessions, w), nil
}

// ---------- Summary ----------

type Summary struct {
	Date              string       `json:"date"`
	Streak            int          `json:"streak"`
	BestDay           *BestDay     `json:"best_day,omitempty"`
	AverageConfidence *int         `json:"average_confidence,omitempty"`
	SessionCount      int          `json:"session_count"`
	TotalMinutes      float64      `json:"total_minutes"`
	TotalHours        float64      `json:"total_hours"`
	Presence          []TrendPoint `json:"presence"`
}

func (s *AnalyticsService) Summary(ctx context.Context, userID, today string) (*Summary, error) {
	sessions, err := s.store.GetSessions(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	history, err := s.store.GetConfidenceHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := totalMinutes(sessions)
	return &Summary{
		Date:              today,
		Streak:            Streak(sessions, today),
		BestDay:           FindBestDay(sessions),
		AverageConfidence: AverageConfidence(history),
		SessionCount:      len(sessions),
		TotalMinutes:      total,
		TotalHours:        round2(total / 60),
		Presence:          Trend(sessions, today, PresenceTrendDays),
	}, nil
}
