package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"studytrack/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events map[string][]Event
}

func (r *recordingNotifier) Publish(userID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]Event{}
	}
	r.events[userID] = append(r.events[userID], ev)
}

func (r *recordingNotifier) count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[userID])
}

func newStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st, err := store.NewMemoryStore("", 0)
	require.NoError(t, err)
	return st
}

func ptr[T any](v T) *T { return &v }
