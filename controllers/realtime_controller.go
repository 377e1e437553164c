package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studytrack/services"
)

type RealtimeController struct {
	Base
	RT *services.RealtimeHub
}

func NewRealtimeController(b Base, rt *services.RealtimeHub) *RealtimeController {
	return &RealtimeController{Base: b, RT: rt}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws streams stats.invalidated events for the caller.
func (rc *RealtimeController) StatsWS(c *gin.Context) {
	uid, ok := rc.user(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rc.Log.Warn("websocket upgrade failed", "user_id", uid, "error", err)
		return
	}
	cl := &services.WSClient{UserID: uid, Conn: conn}
	rc.RT.Register(cl)

	done := make(chan struct{})
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Ping(); err != nil {
					return
				}
			}
		}
	}()

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			rc.RT.Unregister(cl)
			return
		}
	}
}
