package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studytrack/models"
)

type storeFactory func(t *testing.T) Store

func newTestMemoryStore(t *testing.T) Store {
	t.Helper()
	s, err := NewMemoryStore("", 3)
	require.NoError(t, err)
	return s
}

func newTestGormStore(t *testing.T) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	s, err := NewGormStore(db, 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": newTestMemoryStore,
		"gorm":   newTestGormStore,
	}
}

func strPtr(s string) *string { return &s }

func TestGoalLifecycle(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			old := &models.Goal{Date: "2026-01-01", Title: "Algebra", Subject: models.SubjectMaths, TargetHours: 1, Priority: models.PriorityLow}
			fresh := &models.Goal{Date: "2026-02-17", Title: "Ohm's Law", Subject: models.SubjectScience, TargetHours: 2, Priority: models.PriorityHigh}
			future := &models.Goal{Date: "2026-03-01", Title: "Poetry", Subject: models.SubjectEnglish, TargetHours: 1, Priority: models.PriorityMedium}
			for _, g := range []*models.Goal{old, fresh, future} {
				require.NoError(t, s.AddGoal(ctx, "u1", g))
				require.NotEmpty(t, g.ID)
			}
			require.NoError(t, s.AddGoal(ctx, "u2", &models.Goal{Date: "2026-02-17", Title: "Other user", Subject: models.SubjectIT, TargetHours: 1}))

			goals, err := s.GetGoals(ctx, "u1", "2026-02-17")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{old.ID, fresh.ID}, goalIDs(goals))

			// Completing the rolled-over goal today keeps it visible today only.
			require.NoError(t, s.ToggleGoal(ctx, "u1", old.ID, false, "2026-02-17"))
			goals, err = s.GetGoals(ctx, "u1", "2026-02-17")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{old.ID, fresh.ID}, goalIDs(goals))
			for _, g := range goals {
				if g.ID == old.ID {
					assert.True(t, g.Completed)
					require.NotNil(t, g.CompletedAt)
					assert.Equal(t, "2026-02-17", *g.CompletedAt)
					assert.Equal(t, "2026-01-01", g.Date)
				}
			}
			goals, err = s.GetGoals(ctx, "u1", "2026-02-18")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{fresh.ID}, goalIDs(goals))

			require.NoError(t, s.ToggleGoal(ctx, "u1", old.ID, true, "2026-02-18"))
			all, err := s.AllGoals(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, all, 3)
			for _, g := range all {
				if g.ID == old.ID {
					assert.False(t, g.Completed)
					assert.Nil(t, g.CompletedAt)
				}
			}

			title := "Kirchhoff"
			require.NoError(t, s.UpdateGoal(ctx, "u1", fresh.ID, GoalPatch{Title: &title}))
			require.NoError(t, s.UpdateGoal(ctx, "u1", fresh.ID, GoalPatch{}))
			err = s.UpdateGoal(ctx, "u2", fresh.ID, GoalPatch{Title: &title})
			assert.True(t, errors.Is(err, ErrNotFound), "other users cannot edit: %v", err)

			require.NoError(t, s.DeleteGoal(ctx, "u1", future.ID))
			assert.ErrorIs(t, s.DeleteGoal(ctx, "u1", future.ID), ErrNotFound)
			assert.ErrorIs(t, s.ToggleGoal(ctx, "u1", "missing", false, "2026-02-18"), ErrNotFound)
		})
	}
}

func TestSessionsNewestFirstAndCapped(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)
			base := time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)
			var ids []string
			for i := 0; i < 5; i++ {
				start := base.Add(time.Duration(i) * time.Hour)
				end := start.Add(30 * time.Minute)
				ss := &models.StudySession{
					Subject: models.SubjectMaths, Topic: "Algebra",
					StartTime: &start, EndTime: &end,
					DurationMinutes: 30, Date: "2026-02-17",
				}
				if i == 4 {
					ss.Date = "2026-02-16"
				}
				require.NoError(t, s.AddSession(ctx, "u1", ss))
				ids = append(ids, ss.ID)
			}

			page, err := s.GetSessions(ctx, "u1", "")
			require.NoError(t, err)
			assert.Equal(t, []string{ids[4], ids[3], ids[2]}, sessionIDs(page))

			day, err := s.GetSessions(ctx, "u1", "2026-02-17")
			require.NoError(t, err)
			assert.Len(t, day, 4)

			all, err := s.AllSessions(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, []string{ids[4], ids[3], ids[2], ids[1], ids[0]}, sessionIDs(all))

			d := 45.5
			require.NoError(t, s.UpdateSession(ctx, "u1", ids[0], SessionPatch{DurationMinutes: &d, Topic: strPtr("Geometry")}))
			day, err = s.GetSessions(ctx, "u1", "2026-02-17")
			require.NoError(t, err)
			for _, ss := range day {
				if ss.ID == ids[0] {
					assert.Equal(t, 45.5, ss.DurationMinutes)
					assert.Equal(t, "Geometry", ss.Topic)
				}
			}

			require.NoError(t, s.DeleteSession(ctx, "u1", ids[0]))
			assert.ErrorIs(t, s.DeleteSession(ctx, "u1", ids[0]), ErrNotFound)
			assert.ErrorIs(t, s.UpdateSession(ctx, "u1", ids[0], SessionPatch{DurationMinutes: &d}), ErrNotFound)
		})
	}
}

func TestConfidenceUpsertAndNote(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			entry, err := s.GetConfidence(ctx, "u1", "")
			require.NoError(t, err)
			assert.Nil(t, entry)

			require.NoError(t, s.LogConfidence(ctx, "u1", "2026-02-16", 40))
			require.NoError(t, s.LogConfidence(ctx, "u1", "2026-02-17", 70))
			require.NoError(t, s.LogConfidence(ctx, "u1", "2026-02-17", 0))

			entry, err = s.GetConfidence(ctx, "u1", "2026-02-17")
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, 0, entry.Score)

			latest, err := s.GetConfidence(ctx, "u1", "")
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.Equal(t, "2026-02-17", latest.Date)

			history, err := s.GetConfidenceHistory(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, "2026-02-16", history[0].Date)

			note, err := s.GetNote(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, note)
			require.NoError(t, s.SaveNote(ctx, "u1", "revise chapter 3"))
			require.NoError(t, s.SaveNote(ctx, "u1", ""))
			note, err = s.GetNote(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, note)
		})
	}
}

func TestMemoryStorePersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mock", "store.json")

	s, err := NewMemoryStore(path, 0)
	require.NoError(t, err)
	g := &models.Goal{Date: "2026-02-17", Title: "Trig", Subject: models.SubjectMaths, TargetHours: 1}
	require.NoError(t, s.AddGoal(ctx, "u1", g))
	require.NoError(t, s.SaveNote(ctx, "u1", "hello"))
	require.NoError(t, s.LogConfidence(ctx, "u1", "2026-02-17", 55))

	reopened, err := NewMemoryStore(path, 0)
	require.NoError(t, err)
	goals, err := reopened.AllGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, g.ID, goals[0].ID)
	note, err := reopened.GetNote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hello", note)
	entry, err := reopened.GetConfidence(ctx, "u1", "2026-02-17")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 55, entry.Score)
}

func TestMemoryStoreRollsBackFailedWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewMemoryStore(path, 0)
	require.NoError(t, err)

	kept := &models.Goal{Date: "2026-02-17", Title: "Algebra", Subject: models.SubjectMaths, TargetHours: 1, Priority: models.PriorityHigh}
	require.NoError(t, s.AddGoal(ctx, "u1", kept))
	sess := &models.StudySession{Subject: models.SubjectMaths, Topic: "Algebra", DurationMinutes: 30, Date: "2026-02-17"}
	require.NoError(t, s.AddSession(ctx, "u1", sess))
	require.NoError(t, s.LogConfidence(ctx, "u1", "2026-02-17", 40))
	require.NoError(t, s.SaveNote(ctx, "u1", "before"))

	// A directory where the temp file goes makes every write-through fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	assert.Error(t, s.AddGoal(ctx, "u1", &models.Goal{Date: "2026-02-17", Title: "Lost", Subject: models.SubjectIT, TargetHours: 1}))
	assert.Error(t, s.UpdateGoal(ctx, "u1", kept.ID, GoalPatch{Title: strPtr("Renamed")}))
	assert.Error(t, s.ToggleGoal(ctx, "u1", kept.ID, false, "2026-02-17"))
	goals, err := s.GetGoals(ctx, "u1", "2026-02-17")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Algebra", goals[0].Title)
	assert.False(t, goals[0].Completed)
	assert.Nil(t, goals[0].CompletedAt)

	assert.Error(t, s.DeleteGoal(ctx, "u1", kept.ID))
	goals, err = s.GetGoals(ctx, "u1", "2026-02-17")
	require.NoError(t, err)
	assert.Len(t, goals, 1)

	assert.Error(t, s.AddSession(ctx, "u1", &models.StudySession{Subject: models.SubjectIT, DurationMinutes: 10, Date: "2026-02-17"}))
	d := 99.0
	assert.Error(t, s.UpdateSession(ctx, "u1", sess.ID, SessionPatch{DurationMinutes: &d}))
	assert.Error(t, s.DeleteSession(ctx, "u1", sess.ID))
	sessions, err := s.AllSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 30.0, sessions[0].DurationMinutes)

	assert.Error(t, s.LogConfidence(ctx, "u1", "2026-02-17", 90))
	assert.Error(t, s.LogConfidence(ctx, "u1", "2026-02-18", 90))
	history, err := s.GetConfidenceHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 40, history[0].Score)

	assert.Error(t, s.SaveNote(ctx, "u1", "after"))
	note, err := s.GetNote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "before", note)
}

func TestSortSessionsNewestFirstWithoutEndTime(t *testing.T) {
	base := time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)
	end := base.Add(2 * time.Hour)
	start := base.Add(3 * time.Hour)
	sessions := []models.StudySession{
		{ID: "created-only", CreatedAt: base},
		{ID: "ended", EndTime: &end, CreatedAt: base},
		{ID: "started", StartTime: &start, CreatedAt: base},
	}
	SortSessionsNewestFirst(sessions)
	assert.Equal(t, []string{"started", "ended", "created-only"}, sessionIDs(sessions))
}

func TestOpErrorUnwraps(t *testing.T) {
	err := wrapErr("toggle", "goal", "g1", ErrNotFound)
	assert.EqualError(t, err, "toggle goal g1: record not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, wrapErr("toggle", "goal", "g1", nil))
}

func goalIDs(goals []models.Goal) []string {
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		out = append(out, g.ID)
	}
	return out
}

func sessionIDs(sessions []models.StudySession) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
