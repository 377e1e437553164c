package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studytrack/models"
	"studytrack/store"
)

// Uploader stores a blob and returns where it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Backup is everything one user owns, as written by Export.
type Backup struct {
	UserID     string                   `json:"user_id"`
	ExportedAt time.Time                `json:"exported_at"`
	Goals      []models.Goal            `json:"goals"`
	Sessions   []models.StudySession    `json:"sessions"`
	Confidence []models.ConfidenceEntry `json:"confidence"`
	Note       string                   `json:"note"`
}

type ExportService struct {
	store    store.Store
	uploader Uploader
	now      func() time.Time
}

func NewExportService(st store.Store, up Uploader) *ExportService {
	return &ExportService{store: st, uploader: up, now: time.Now}
}

func (s *ExportService) Snapshot(ctx context.Context, userID string) (*Backup, error) {
	goals, err := s.store.AllGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.AllSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.GetConfidenceHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	note, err := s.store.GetNote(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Backup{
		UserID:     userID,
		ExportedAt: s.now().UTC(),
		Goals:      goals,
		Sessions:   sessions,
		Confidence: history,
		Note:       note,
	}, nil
}

// Export uploads a JSON backup and returns its location.
func (s *ExportService) Export(ctx context.Context, userID string) (string, error) {
	if s.uploader == nil {
		return "", ErrExportDisabled
	}
	b, err := s.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	key := fmt.Sprintf("exports/%s/%s.json", userID, b.ExportedAt.Format("20060102T150405Z"))
	return s.uploader.Upload(ctx, key, raw, "application/json")
}
