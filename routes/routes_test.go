package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/models"
	"studytrack/services"
	"studytrack/store"
	"studytrack/utils"
)

var secret = []byte("test-secret")

type harness struct {
	t      *testing.T
	router *gin.Engine
	hub    *services.RealtimeHub
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewMemoryStore("", 0)
	require.NoError(t, err)
	hub := services.NewRealtimeHub(nil)
	router := SetupRouter(Deps{
		Store:     st,
		Hub:       hub,
		JWTSecret: secret,
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2026, 2, 17, 15, 0, 0, 0, time.UTC) },
	})
	tok, err := utils.GenerateJWT(secret, "u1", "u1@example.com", time.Hour)
	require.NoError(t, err)
	return &harness{t: t, router: router, hub: hub, token: tok}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPublicEndpoints(t *testing.T) {
	h := newHarness(t)
	h.token = ""

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/metrics", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/goals", nil).Code)
}

func TestGoalFlow(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/goals", map[string]any{"title": "Algebra", "subject": "Maths", "target_hours": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	goal := decode[models.Goal](t, w)
	assert.Equal(t, "2026-02-17", goal.Date)

	w = h.do(http.MethodPost, "/goals", map[string]any{"title": "", "subject": "Maths", "target_hours": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodPost, "/goals", map[string]any{"title": "X", "subject": "Maths", "target_hours": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/goals/"+goal.ID+"/toggle", map[string]any{"completed": false})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	list := decode[struct {
		Date  string        `json:"date"`
		Goals []models.Goal `json:"goals"`
	}](t, h.do(http.MethodGet, "/goals", nil))
	assert.Equal(t, "2026-02-17", list.Date)
	require.Len(t, list.Goals, 1)
	assert.True(t, list.Goals[0].Completed)

	tomorrow := decode[struct {
		Goals []models.Goal `json:"goals"`
	}](t, h.do(http.MethodGet, "/goals?date=2026-02-18", nil))
	assert.Empty(t, tomorrow.Goals)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/goals?date=18-02-2026", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/goals/"+goal.ID+"/toggle", map[string]any{}).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPut, "/goals/missing", map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/goals/"+goal.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/goals/"+goal.ID, nil).Code)
}

func TestDashboardAndStats(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/goals",
		map[string]any{"title": "Algebra", "subject": "Maths", "target_hours": 1}).Code)
	for _, m := range []float64{30, 45} {
		w := h.do(http.MethodPost, "/sessions", map[string]any{"subject": "Maths", "topic": "Algebra", "duration_minutes": m})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/sessions?date=2026-02-16",
		map[string]any{"subject": "Science", "topic": "Cells", "duration_minutes": 20}).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/sessions",
		map[string]any{"subject": "Maths", "duration_minutes": -3}).Code)

	dash := decode[services.Dashboard](t, h.do(http.MethodGet, "/stats/dashboard", nil))
	require.Len(t, dash.Goals, 1)
	assert.Equal(t, 1.3, dash.Goals[0].ActualHours)
	assert.True(t, dash.Goals[0].OnPace)
	assert.Equal(t, 75.0, dash.Totals.StudiedMinutes)
	assert.Equal(t, 2, dash.Streak)

	trend := decode[struct {
		Points []services.TrendPoint `json:"points"`
	}](t, h.do(http.MethodGet, "/stats/trend", nil))
	require.Len(t, trend.Points, services.ShortTrendDays)
	assert.Equal(t, 20.0, trend.Points[12].Minutes)
	assert.Equal(t, 75.0, trend.Points[13].Minutes)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/stats/trend?days=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/stats/trend?days=0", nil).Code)

	subjects := decode[struct {
		Subjects []services.SubjectTime `json:"subjects"`
	}](t, h.do(http.MethodGet, "/stats/subjects?window=all", nil))
	require.Len(t, subjects.Subjects, 2)
	assert.Equal(t, "Maths", subjects.Subjects[0].Subject)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/stats/subjects?window=-2", nil).Code)

	summary := decode[services.Summary](t, h.do(http.MethodGet, "/stats/summary?date=2026-02-18", nil))
	assert.Equal(t, 2, summary.Streak)
	assert.Nil(t, summary.AverageConfidence)
	assert.Equal(t, 3, summary.SessionCount)
}

func TestConfidenceAndNote(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/confidence", map[string]any{"score": 120}).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/confidence", map[string]any{"score": 70}).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/confidence", map[string]any{"score": 81, "date": "2026-02-16"}).Code)

	got := decode[struct {
		Entry *models.ConfidenceEntry `json:"entry"`
	}](t, h.do(http.MethodGet, "/confidence?date=2026-02-17", nil))
	require.NotNil(t, got.Entry)
	assert.Equal(t, 70, got.Entry.Score)

	hist := decode[struct {
		History []models.ConfidenceEntry `json:"history"`
		Average *int                     `json:"average"`
	}](t, h.do(http.MethodGet, "/confidence/history", nil))
	assert.Len(t, hist.History, 2)
	require.NotNil(t, hist.Average)
	assert.Equal(t, 76, *hist.Average)

	require.Equal(t, http.StatusNoContent, h.do(http.MethodPut, "/note", map[string]any{"content": "chapter 4"}).Code)
	note := decode[map[string]string](t, h.do(http.MethodGet, "/note", nil))
	assert.Equal(t, "chapter 4", note["content"])
}

func TestExportAndReportDisabled(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusServiceUnavailable, h.do(http.MethodPost, "/export", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, h.do(http.MethodPost, "/report/email", nil).Code)
}

func TestUsersAreIsolated(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/goals",
		map[string]any{"title": "Algebra", "subject": "Maths", "target_hours": 1}).Code)

	other, err := utils.GenerateJWT(secret, "u2", "", time.Hour)
	require.NoError(t, err)
	h.token = other
	list := decode[struct {
		Goals []models.Goal `json:"goals"`
	}](t, h.do(http.MethodGet, "/goals", nil))
	assert.Empty(t, list.Goals)
}

func TestWebsocketReceivesInvalidation(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?access_token=" + h.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.hub.Connections("u1") == 1 }, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/goals",
		map[string]any{"title": "Algebra", "subject": "Maths", "target_hours": 1}).Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev services.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, services.KindStatsInvalidated, ev.Kind)
	assert.Equal(t, "goal", ev.Resource)
}
