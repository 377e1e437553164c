// Package store holds the persistence backends for goals, sessions,
// confidence scores and notes. Every backend implements Store; the
// service layer never knows which one it is talking to.
package store

import (
	"context"
	"errors"
	"fmt"

	"studytrack/models"
)

// DefaultSessionPageSize caps unfiltered session listings.
const DefaultSessionPageSize = 500

var ErrNotFound = errors.New("record not found")

// OpError ties a backend failure to the operation and record it hit.
type OpError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrapErr(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}

// GoalPatch carries the editable goal fields; nil means unchanged.
// Date is deliberately absent.
type GoalPatch struct {
	Title       *string
	Subject     *models.Subject
	TargetHours *float64
	Priority    *models.Priority
}

func (p GoalPatch) IsEmpty() bool {
	return p.Title == nil && p.Subject == nil && p.TargetHours == nil && p.Priority == nil
}

// SessionPatch carries the editable session fields; nil means unchanged.
type SessionPatch struct {
	Subject         *models.Subject
	Topic           *string
	DurationMinutes *float64
}

func (p SessionPatch) IsEmpty() bool {
	return p.Subject == nil && p.Topic == nil && p.DurationMinutes == nil
}

// GoalStore persists goals.
type GoalStore interface {
	// GetGoals returns the goals visible on today (see models.Goal.VisibleOn).
	GetGoals(ctx context.Context, userID, today string) ([]models.Goal, error)
	// AllGoals returns every goal the user owns.
	AllGoals(ctx context.Context, userID string) ([]models.Goal, error)
	// AddGoal stores g, assigning ID and CreatedAt when empty.
	AddGoal(ctx context.Context, userID string, g *models.Goal) error
	UpdateGoal(ctx context.Context, userID, goalID string, patch GoalPatch) error
	DeleteGoal(ctx context.Context, userID, goalID string) error
	// ToggleGoal flips the completion flag from current and sets or clears
	// CompletedAt in the same write.
	ToggleGoal(ctx context.Context, userID, goalID string, current bool, today string) error
}

// SessionStore persists study sessions.
type SessionStore interface {
	// GetSessions returns the sessions logged on date, or, when date is
	// empty, the newest sessions by end time capped at the page size.
	GetSessions(ctx context.Context, userID, date string) ([]models.StudySession, error)
	// AllSessions returns every session the user owns, newest first, uncapped.
	AllSessions(ctx context.Context, userID string) ([]models.StudySession, error)
	AddSession(ctx context.Context, userID string, s *models.StudySession) error
	UpdateSession(ctx context.Context, userID, sessionID string, patch SessionPatch) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

// ConfidenceStore persists daily confidence scores.
type ConfidenceStore interface {
	// GetConfidence returns the entry for date, or the latest entry when
	// date is empty. It returns nil, nil when nothing matches.
	GetConfidence(ctx context.Context, userID, date string) (*models.ConfidenceEntry, error)
	LogConfidence(ctx context.Context, userID, date string, score int) error
	GetConfidenceHistory(ctx context.Context, userID string) ([]models.ConfidenceEntry, error)
}

// NoteStore persists the per-user note.
type NoteStore interface {
	GetNote(ctx context.Context, userID string) (string, error)
	SaveNote(ctx context.Context, userID, content string) error
}

// Store combines all persistence operations.
type Store interface {
	GoalStore
	SessionStore
	ConfidenceStore
	NoteStore
	Close(ctx context.Context) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
	_ Store = (*MongoStore)(nil)
)
