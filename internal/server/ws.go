package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is one event sent on /api/events.
type Message struct {
	Type   string         `json:"type"` // "gesture" or "calibration"
	Result control.Result `json:"result"`
}

// EventsHandler streams frame results to WebSocket clients.
type EventsHandler struct {
	hub    *app.Hub
	buffer int
}

// NewEventsHandler creates an EventsHandler publishing from hub.
func NewEventsHandler(hub *app.Hub) *EventsHandler {
	return &EventsHandler{hub: hub, buffer: app.DefaultSubscriberBuffer}
}

// ServeHTTP upgrades the request and forwards results until either side
// goes away.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("server: websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	id, ch, err := h.hub.Subscribe(h.buffer)
	if err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()),
			time.Now().Add(writeWait))
		return
	}
	defer h.hub.Unsubscribe(id)

	// Reading is only needed to notice the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case res, ok := <-ch:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(messageFor(res)); err != nil {
				slog.Debug("server: websocket write", "err", err)
				return
			}
		}
	}
}

func messageFor(res control.Result) Message {
	kind := "gesture"
	if res.Calibrating || res.Calibrated {
		kind = "calibration"
	}
	return Message{Type: kind, Result: res}
}
