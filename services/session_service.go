package services

import (
	"context"
	"strings"
	"time"

	"studytrack/models"
	"studytrack/store"
)

// MaxSessionMinutes bounds a single session to one day.
const MaxSessionMinutes = 24 * 60

type SessionService struct {
	store  store.SessionStore
	notify Notifier
	now    func() time.Time
}

func NewSessionService(st store.SessionStore, n Notifier) *SessionService {
	return &SessionService{store: st, notify: orNop(n), now: time.Now}
}

// SessionInput covers both the stopwatch (start and end) and manual entry
// (duration only) paths.
type SessionInput struct {
	Subject         models.Subject `json:"subject" validate:"required,subject"`
	Topic           string         `json:"topic"`
	StartTime       *time.Time     `json:"start_time"`
	EndTime         *time.Time     `json:"end_time"`
	DurationMinutes *float64       `json:"duration_minutes"`
}

type SessionUpdate struct {
	Subject         *models.Subject `json:"subject"`
	Topic           *string         `json:"topic"`
	DurationMinutes *float64        `json:"duration_minutes"`
}

func (s *SessionService) List(ctx context.Context, userID, date string) ([]models.StudySession, error) {
	if date != "" {
		d := models.NormalizeDay(date)
		if d == "" {
			return nil, invalid("date must be a YYYY-MM-DD date")
		}
		date = d
	}
	return s.store.GetSessions(ctx, userID, date)
}

// Create logs a session on today. Missing instants are synthesized from the
// duration, and a missing duration is derived from the instants.
func (s *SessionService) Create(ctx context.Context, userID, today string, in SessionInput) (*models.StudySession, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	start, end, minutes, err := resolveInterval(in.StartTime, in.EndTime, in.DurationMinutes, s.now())
	if err != nil {
		return nil, err
	}
	ss := &models.StudySession{
		Subject:         in.Subject,
		Topic:           in.Topic,
		StartTime:       &start,
		EndTime:         &end,
		DurationMinutes: minutes,
		Date:            today,
	}
	if err := s.store.AddSession(ctx, userID, ss); err != nil {
		return nil, err
	}
	s.notify.Publish(userID, invalidated("session", ss.ID))
	return ss, nil
}

func resolveInterval(start, end *time.Time, duration *float64, now time.Time) (time.Time, time.Time, float64, error) {
	if duration != nil && *duration < 0 {
		return time.Time{}, time.Time{}, 0, invalid("duration_minutes must be at least 0")
	}
	if duration != nil && *duration > MaxSessionMinutes {
		return time.Time{}, time.Time{}, 0, invalid("duration_minutes must be at most %d", MaxSessionMinutes)
	}
	if start != nil && end != nil && end.Before(*start) {
		return time.Time{}, time.Time{}, 0, invalid("end_time must not be before start_time")
	}
	switch {
	case start != nil && end != nil:
		minutes := end.Sub(*start).Minutes()
		if duration != nil {
			minutes = *duration
		}
		return *start, *end, minutes, nil
	case duration == nil:
		return time.Time{}, time.Time{}, 0, invalid("duration_minutes or both start_time and end_time are required")
	}
	span := time.Duration(*duration * float64(time.Minute))
	switch {
	case start != nil:
		return *start, start.Add(span), *duration, nil
	case end != nil:
		return end.Add(-span), *end, *duration, nil
	default:
		return now.Add(-span), now, *duration, nil
	}
}

func (s *SessionService) Update(ctx context.Context, userID, sessionID string, in SessionUpdate) error {
	patch := store.SessionPatch{Subject: in.Subject, DurationMinutes: in.DurationMinutes}
	if in.Subject != nil && !in.Subject.IsValid() {
		return invalid("subject is not a known subject")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return invalid("duration_minutes must be at least 0")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes > MaxSessionMinutes {
		return invalid("duration_minutes must be at most %d", MaxSessionMinutes)
	}
	if in.Topic != nil {
		t := strings.TrimSpace(*in.Topic)
		patch.Topic = &t
	}
	if err := s.store.UpdateSession(ctx, userID, sessionID, patch); err != nil {
		return err
	}
	s.notify.Publish(userID, invalidated("session", sessionID))
	return nil
}

func (s *SessionService) Delete(ctx context.Context, userID, sessionID string) error {
	if err := s.store.DeleteSession(ctx, userID, sessionID); err != nil {
		return err
	}
	s.notify.Publish(userID, invalidated("session", sessionID))
	return nil
}
