package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub registers the server side of a fresh websocket for userID and
// returns the client side.
func dialHub(t *testing.T, hub *RealtimeHub, userID string) (*websocket.Conn, *WSClient) {
	t.Helper()
	registered := make(chan *WSClient, 1)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cl := &WSClient{UserID: userID, Conn: conn}
		hub.Register(cl)
		registered <- cl
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case cl := <-registered:
		return conn, cl
	case <-time.After(2 * time.Second):
		t.Fatal("websocket was not registered")
		return nil, nil
	}
}

func TestRealtimeHubPublishesToOwnerOnly(t *testing.T) {
	hub := NewRealtimeHub(nil)
	mine, _ := dialHub(t, hub, "u1")
	theirs, _ := dialHub(t, hub, "u2")
	assert.Equal(t, 1, hub.Connections("u1"))

	hub.Publish("u1", invalidated("goal", "g1"))

	require.NoError(t, mine.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, mine.ReadJSON(&ev))
	assert.Equal(t, Event{Kind: KindStatsInvalidated, Resource: "goal", ID: "g1"}, ev)

	require.NoError(t, theirs.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := theirs.ReadMessage()
	assert.Error(t, err, "other users receive nothing")
}

func TestRealtimeHubSurvivesBrokenClient(t *testing.T) {
	hub := NewRealtimeHub(nil)
	_, broken := dialHub(t, hub, "u1")
	healthy, _ := dialHub(t, hub, "u1")
	require.Equal(t, 2, hub.Connections("u1"))

	// Writes to the closed socket fail; the healthy one still gets the event
	// and the hub stays usable for registration while publishing.
	require.NoError(t, broken.Conn.Close())
	done := make(chan struct{})
	go func() {
		hub.Publish("u1", invalidated("session", "s1"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * writeWait):
		t.Fatal("publish did not return")
	}

	require.NoError(t, healthy.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, healthy.ReadJSON(&ev))
	assert.Equal(t, "session", ev.Resource)

	hub.Unregister(broken)
	assert.Equal(t, 1, hub.Connections("u1"))
}
