package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"studytrack/models"
)

// MemoryStore is the offline/demo backend. Data lives in per-user maps and,
// when a path is configured, is written through to a JSON file after every
// mutation so it survives restarts.
type MemoryStore struct {
	mu         sync.RWMutex
	path       string
	pageSize   int
	goals      map[string]map[string]*models.Goal         // userID -> goalID -> goal
	sessions   map[string]map[string]*models.StudySession // userID -> sessionID -> session
	confidence map[string]map[string]*models.ConfidenceEntry
	notes      map[string]*models.Note
}

type memorySnapshot struct {
	Goals      []models.Goal            `json:"goals"`
	Sessions   []models.StudySession    `json:"sessions"`
	Confidence []models.ConfidenceEntry `json:"confidence"`
	Notes      []models.Note            `json:"notes"`
}

// NewMemoryStore opens a mock store. An empty path keeps everything in memory.
func NewMemoryStore(path string, pageSize int) (*MemoryStore, error) {
	if pageSize <= 0 {
		pageSize = DefaultSessionPageSize
	}
	s := &MemoryStore{
		path:       path,
		pageSize:   pageSize,
		goals:      make(map[string]map[string]*models.Goal),
		sessions:   make(map[string]map[string]*models.StudySession),
		confidence: make(map[string]map[string]*models.ConfidenceEntry),
		notes:      make(map[string]*models.Note),
	}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, wrapErr("load", "snapshot", path, err)
	}
	var snap memorySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, wrapErr("decode", "snapshot", path, err)
	}
	for i := range snap.Goals {
		g := snap.Goals[i]
		s.goalsFor(g.UserID)[g.ID] = &g
	}
	for i := range snap.Sessions {
		ss := snap.Sessions[i]
		s.sessionsFor(ss.UserID)[ss.ID] = &ss
	}
	for i := range snap.Confidence {
		c := snap.Confidence[i]
		s.confidenceFor(c.UserID)[c.Date] = &c
	}
	for i := range snap.Notes {
		n := snap.Notes[i]
		s.notes[n.UserID] = &n
	}
	return s, nil
}

func (s *MemoryStore) goalsFor(userID string) map[string]*models.Goal {
	m := s.goals[userID]
	if m == nil {
		m = make(map[string]*models.Goal)
		s.goals[userID] = m
	}
	return m
}

func (s *MemoryStore) sessionsFor(userID string) map[string]*models.StudySession {
	m := s.sessions[userID]
	if m == nil {
		m = make(map[string]*models.StudySession)
		s.sessions[userID] = m
	}
	return m
}

func (s *MemoryStore) confidenceFor(userID string) map[string]*models.ConfidenceEntry {
	m := s.confidence[userID]
	if m == nil {
		m = make(map[string]*models.ConfidenceEntry)
		s.confidence[userID] = m
	}
	return m
}

// commit writes the snapshot and runs undo when that fails, so memory never
// holds a change the caller was told did not happen. mu must be held.
func (s *MemoryStore) commit(undo func()) error {
	if err := s.persist(); err != nil {
		undo()
		return err
	}
	return nil
}

func (s *MemoryStore) persist() error {
	if s.path == "" {
		return nil
	}
	var snap memorySnapshot
	for _, byID := range s.goals {
		for _, g := range byID {
			snap.Goals = append(snap.Goals, *g)
		}
	}
	for _, byID := range s.sessions {
		for _, ss := range byID {
			snap.Sessions = append(snap.Sessions, *ss)
		}
	}
	for _, byDate := range s.confidence {
		for _, c := range byDate {
			snap.Confidence = append(snap.Confidence, *c)
		}
	}
	for _, n := range s.notes {
		snap.Notes = append(snap.Notes, *n)
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return wrapErr("encode", "snapshot", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wrapErr("save", "snapshot", s.path, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return wrapErr("save", "snapshot", s.path, err)
	}
	return wrapErr("save", "snapshot", s.path, os.Rename(tmp, s.path))
}

// ---------- goals ----------

func (s *MemoryStore) GetGoals(ctx context.Context, userID, today string) ([]models.Goal, error) {
	all, err := s.AllGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.VisibleGoals(all, today), nil
}

func (s *MemoryStore) AllGoals(_ context.Context, userID string) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Goal, 0, len(s.goals[userID]))
	for _, g := range s.goals[userID] {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) AddGoal(_ context.Context, userID string, g *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UserID = userID
	cp := *g
	s.goalsFor(userID)[g.ID] = &cp
	return s.commit(func() { delete(s.goals[userID], cp.ID) })
}

func (s *MemoryStore) UpdateGoal(_ context.Context, userID, goalID string, patch GoalPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[userID][goalID]
	if !ok {
		return wrapErr("update", "goal", goalID, ErrNotFound)
	}
	prev := *g
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Subject != nil {
		g.Subject = *patch.Subject
	}
	if patch.TargetHours != nil {
		g.TargetHours = *patch.TargetHours
	}
	if patch.Priority != nil {
		g.Priority = *patch.Priority
	}
	return s.commit(func() { *g = prev })
}

func (s *MemoryStore) DeleteGoal(_ context.Context, userID, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[userID][goalID]
	if !ok {
		return wrapErr("delete", "goal", goalID, ErrNotFound)
	}
	delete(s.goals[userID], goalID)
	return s.commit(func() { s.goalsFor(userID)[goalID] = g })
}

func (s *MemoryStore) ToggleGoal(_ context.Context, userID, goalID string, current bool, today string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[userID][goalID]
	if !ok {
		return wrapErr("toggle", "goal", goalID, ErrNotFound)
	}
	prev := *g
	g.Completed = !current
	if g.Completed {
		day := today
		g.CompletedAt = &day
	} else {
		g.CompletedAt = nil
	}
	return s.commit(func() { *g = prev })
}

// ---------- sessions ----------

func (s *MemoryStore) GetSessions(_ context.Context, userID, date string) ([]models.StudySession, error) {
	limit := 0
	if date == "" {
		limit = s.pageSize
	}
	return s.listSessions(userID, date, limit), nil
}

func (s *MemoryStore) AllSessions(_ context.Context, userID string) ([]models.StudySession, error) {
	return s.listSessions(userID, "", 0), nil
}

// listSessions filters by date when set and keeps at most limit rows (0 = all).
func (s *MemoryStore) listSessions(userID, date string, limit int) []models.StudySession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StudySession, 0)
	for _, ss := range s.sessions[userID] {
		if date != "" && ss.Date != date {
			continue
		}
		out = append(out, *ss)
	}
	SortSessionsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) AddSession(_ context.Context, userID string, ss *models.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss.ID == "" {
		ss.ID = uuid.NewString()
	}
	if ss.CreatedAt.IsZero() {
		ss.CreatedAt = time.Now().UTC()
	}
	ss.UserID = userID
	cp := *ss
	s.sessionsFor(userID)[ss.ID] = &cp
	return s.commit(func() { delete(s.sessions[userID], cp.ID) })
}

func (s *MemoryStore) UpdateSession(_ context.Context, userID, sessionID string, patch SessionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[userID][sessionID]
	if !ok {
		return wrapErr("update", "session", sessionID, ErrNotFound)
	}
	prev := *ss
	if patch.Subject != nil {
		ss.Subject = *patch.Subject
	}
	if patch.Topic != nil {
		ss.Topic = *patch.Topic
	}
	if patch.DurationMinutes != nil {
		ss.DurationMinutes = *patch.DurationMinutes
	}
	return s.commit(func() { *ss = prev })
}

func (s *MemoryStore) DeleteSession(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[userID][sessionID]
	if !ok {
		return wrapErr("delete", "session", sessionID, ErrNotFound)
	}
	delete(s.sessions[userID], sessionID)
	return s.commit(func() { s.sessionsFor(userID)[sessionID] = ss })
}

// ---------- confidence ----------

func (s *MemoryStore) GetConfidence(_ context.Context, userID, date string) (*models.ConfidenceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDate := s.confidence[userID]
	if date != "" {
		c, ok := byDate[date]
		if !ok {
			return nil, nil
		}
		cp := *c
		return &cp, nil
	}
	var latest *models.ConfidenceEntry
	for _, c := range byDate {
		if latest == nil || c.Date > latest.Date {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) LogConfidence(_ context.Context, userID, date string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.confidence[userID][date]
	s.confidenceFor(userID)[date] = &models.ConfidenceEntry{
		UserID:    userID,
		Date:      date,
		Score:     score,
		UpdatedAt: time.Now().UTC(),
	}
	return s.commit(func() {
		if had {
			s.confidence[userID][date] = prev
		} else {
			delete(s.confidence[userID], date)
		}
	})
}

func (s *MemoryStore) GetConfidenceHistory(_ context.Context, userID string) ([]models.ConfidenceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ConfidenceEntry, 0, len(s.confidence[userID]))
	for _, c := range s.confidence[userID] {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ---------- notes ----------

func (s *MemoryStore) GetNote(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.notes[userID]; ok {
		return n.Content, nil
	}
	return "", nil
}

func (s *MemoryStore) SaveNote(_ context.Context, userID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.notes[userID]
	s.notes[userID] = &models.Note{UserID: userID, Content: content, UpdatedAt: time.Now().UTC()}
	return s.commit(func() {
		if had {
			s.notes[userID] = prev
		} else {
			delete(s.notes, userID)
		}
	})
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// SortSessionsNewestFirst orders sessions by end time, newest first.
func SortSessionsNewestFirst(sessions []models.StudySession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i].SortKey(), sessions[j].SortKey()
		if !a.Equal(b) {
			return a.After(b)
		}
		return sessions[i].ID > sessions[j].ID
	})
}
