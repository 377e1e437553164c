package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studytrack/models"
)

// GormStore keeps everything in a relational database through GORM.
type GormStore struct {
	db       *gorm.DB
	pageSize int
}

// NewGormStore migrates the schema and returns a store backed by db.
func NewGormStore(db *gorm.DB, pageSize int) (*GormStore, error) {
	if pageSize <= 0 {
		pageSize = DefaultSessionPageSize
	}
	err := db.AutoMigrate(
		&models.Goal{},
		&models.StudySession{},
		&models.ConfidenceEntry{},
		&models.Note{},
	)
	if err != nil {
		return nil, wrapErr("migrate", "schema", "", err)
	}
	return &GormStore{db: db, pageSize: pageSize}, nil
}

// ---------- goals ----------

func (s *GormStore) GetGoals(ctx context.Context, userID, today string) ([]models.Goal, error) {
	var goals []models.Goal
	// date <= today narrows the scan; VisibleOn applies the actual rules.
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date <= ?", userID, today).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, wrapErr("list", "goal", "", err)
	}
	return models.VisibleGoals(goals, today), nil
}

func (s *GormStore) AllGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&goals).Error
	return goals, wrapErr("list", "goal", "", err)
}

func (s *GormStore) AddGoal(ctx context.Context, userID string, g *models.Goal) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UserID = userID
	return wrapErr("create", "goal", g.ID, s.db.WithContext(ctx).Create(g).Error)
}

func (s *GormStore) UpdateGoal(ctx context.Context, userID, goalID string, patch GoalPatch) error {
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Subject != nil {
		fields["subject"] = *patch.Subject
	}
	if patch.TargetHours != nil {
		fields["target_hours"] = *patch.TargetHours
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	return s.updateGoal(ctx, "update", userID, goalID, fields)
}

func (s *GormStore) ToggleGoal(ctx context.Context, userID, goalID string, current bool, today string) error {
	fields := map[string]any{"completed": !current, "completed_at": nil}
	if !current {
		fields["completed_at"] = today
	}
	return s.updateGoal(ctx, "toggle", userID, goalID, fields)
}

func (s *GormStore) updateGoal(ctx context.Context, op, userID, goalID string, fields map[string]any) error {
	if len(fields) == 0 {
		return s.exists(ctx, op, "goal", &models.Goal{}, userID, goalID)
	}
	res := s.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("user_id = ? AND id = ?", userID, goalID).
		Updates(fields)
	if res.Error != nil {
		return wrapErr(op, "goal", goalID, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr(op, "goal", goalID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, goalID).
		Delete(&models.Goal{})
	if res.Error != nil {
		return wrapErr("delete", "goal", goalID, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete", "goal", goalID, ErrNotFound)
	}
	return nil
}

// ---------- sessions ----------

func (s *GormStore) GetSessions(ctx context.Context, userID, date string) ([]models.StudySession, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	} else {
		q = q.Limit(s.pageSize)
	}
	return s.findSessions(q)
}

func (s *GormStore) AllSessions(ctx context.Context, userID string) ([]models.StudySession, error) {
	return s.findSessions(s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *GormStore) findSessions(q *gorm.DB) ([]models.StudySession, error) {
	var sessions []models.StudySession
	if err := q.Order("end_time DESC").Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, wrapErr("list", "session", "", err)
	}
	// NULL ordering differs between dialects; settle it in Go.
	SortSessionsNewestFirst(sessions)
	return sessions, nil
}

func (s *GormStore) AddSession(ctx context.Context, userID string, ss *models.StudySession) error {
	if ss.ID == "" {
		ss.ID = uuid.NewString()
	}
	if ss.CreatedAt.IsZero() {
		ss.CreatedAt = time.Now().UTC()
	}
	ss.UserID = userID
	return wrapErr("create", "session", ss.ID, s.db.WithContext(ctx).Create(ss).Error)
}

func (s *GormStore) UpdateSession(ctx context.Context, userID, sessionID string, patch SessionPatch) error {
	fields := map[string]any{}
	if patch.Subject != nil {
		fields["subject"] = *patch.Subject
	}
	if patch.Topic != nil {
		fields["topic"] = *patch.Topic
	}
	if patch.DurationMinutes != nil {
		fields["duration_minutes"] = *patch.DurationMinutes
	}
	if len(fields) == 0 {
		return s.exists(ctx, "update", "session", &models.StudySession{}, userID, sessionID)
	}
	res := s.db.WithContext(ctx).
		Model(&models.StudySession{}).
		Where("user_id = ? AND id = ?", userID, sessionID).
		Updates(fields)
	if res.Error != nil {
		return wrapErr("update", "session", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("update", "session", sessionID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteSession(ctx context.Context, userID, sessionID string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, sessionID).
		Delete(&models.StudySession{})
	if res.Error != nil {
		return wrapErr("delete", "session", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete", "session", sessionID, ErrNotFound)
	}
	return nil
}

// ---------- confidence ----------

func (s *GormStore) GetConfidence(ctx context.Context, userID, date string) (*models.ConfidenceEntry, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var entry models.ConfidenceEntry
	if err := q.Order("date DESC").First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapErr("get", "confidence", date, err)
	}
	return &entry, nil
}

func (s *GormStore) LogConfidence(ctx context.Context, userID, date string, score int) error {
	entry := models.ConfidenceEntry{UserID: userID, Date: date, Score: score}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Assign(map[string]any{"score": score}).
		FirstOrCreate(&entry).Error
	return wrapErr("upsert", "confidence", date, err)
}

func (s *GormStore) GetConfidenceHistory(ctx context.Context, userID string) ([]models.ConfidenceEntry, error) {
	var entries []models.ConfidenceEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&entries).Error
	return entries, wrapErr("list", "confidence", "", err)
}

// ---------- notes ----------

func (s *GormStore) GetNote(ctx context.Context, userID string) (string, error) {
	var note models.Note
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", wrapErr("get", "note", userID, err)
	}
	return note.Content, nil
}

func (s *GormStore) SaveNote(ctx context.Context, userID, content string) error {
	note := models.Note{UserID: userID, Content: content}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Assign(map[string]any{"content": content}).
		FirstOrCreate(&note).Error
	return wrapErr("upsert", "note", userID, err)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) exists(ctx context.Context, op, resource string, model any, userID, id string) error {
	var n int64
	err := s.db.WithContext(ctx).Model(model).Where("user_id = ? AND id = ?", userID, id).Count(&n).Error
	if err != nil {
		return wrapErr(op, resource, id, err)
	}
	if n == 0 {
		return wrapErr(op, resource, id, ErrNotFound)
	}
	return nil
}
