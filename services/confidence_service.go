package services

import (
	"context"

	"studytrack/models"
	"studytrack/store"
)

type ConfidenceService struct {
	store  store.ConfidenceStore
	notify Notifier
}

func NewConfidenceService(st store.ConfidenceStore, n Notifier) *ConfidenceService {
	return &ConfidenceService{store: st, notify: orNop(n)}
}

type ConfidenceInput struct {
	Date  string `json:"date" validate:"omitempty,day"`
	Score *int   `json:"score" validate:"required,gte=0,lte=100"`
}

// Get returns the entry for date, or the latest one when date is empty.
func (s *ConfidenceService) Get(ctx context.Context, userID, date string) (*models.ConfidenceEntry, error) {
	if date != "" {
		if date = models.NormalizeDay(date); date == "" {
			return nil, invalid("date must be a YYYY-MM-DD date")
		}
	}
	return s.store.GetConfidence(ctx, userID, date)
}

// Log records the score for a day, replacing any earlier score for it.
func (s *ConfidenceService) Log(ctx context.Context, userID, today string, in ConfidenceInput) (*models.ConfidenceEntry, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	date := today
	if in.Date != "" {
		date = models.NormalizeDay(in.Date)
	}
	if err := s.store.LogConfidence(ctx, userID, date, *in.Score); err != nil {
		return nil, err
	}
	s.notify.Publish(userID, invalidated("confidence", date))
	return &models.ConfidenceEntry{UserID: userID, Date: date, Score: *in.Score}, nil
}

func (s *ConfidenceService) History(ctx context.Context, userID string) ([]models.ConfidenceEntry, error) {
	return s.store.GetConfidenceHistory(ctx, userID)
}

type NoteService struct {
	store store.NoteStore
}

func NewNoteService(st store.NoteStore) *NoteService { return &NoteService{store: st} }

func (s *NoteService) Get(ctx context.Context, userID string) (string, error) {
	return s.store.GetNote(ctx, userID)
}

func (s *NoteService) Save(ctx context.Context, userID, content string) error {
	return s.store.SaveNote(ctx, userID, content)
}
