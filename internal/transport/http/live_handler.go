package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"powercars-survey-service/internal/app"
)

// LiveHandler streams dashboard stats over a websocket. Stats are pushed on
// connect and then on a fixed interval until the client goes away. Everything
// is request-scoped; there is no shared hub.
type LiveHandler struct {
	analytics *app.AnalyticsService
	interval  time.Duration
	upgrader  websocket.Upgrader
}

func NewLiveHandler(analytics *app.AnalyticsService, interval time.Duration) *LiveHandler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &LiveHandler{
		analytics: analytics,
		interval:  interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type liveMessage struct {
	Type    string             `json:"type"`
	Payload app.DashboardStats `json:"payload"`
}

// ServeWS handles GET /api/dashboard/live.
func (h *LiveHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only detects the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.push(r, conn) {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !h.push(r, conn) {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *LiveHandler) push(r *http.Request, conn *websocket.Conn) bool {
	stats, err := h.analytics.DashboardStats(r.Context())
	if err != nil {
		log.Printf("live stats failed: %v", err)
		return false
	}
	if err := conn.WriteJSON(liveMessage{Type: "stats", Payload: stats}); err != nil {
		return false
	}
	return true
}
