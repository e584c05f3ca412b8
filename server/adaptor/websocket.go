package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ponyo877/signtalk/server/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Landmark frames are a few kilobytes of JSON numbers
	maxMessageSize = 64 << 10

	sendBuffer = 256
)

const (
	eventJoinRoom       = "join_room"
	eventLeaveRoom      = "leave_room"
	eventSendMessage    = "send_message"
	eventSendLandmarks  = "send_landmarks"
	eventReceiveMessage = "receive_message"
)

type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type wsRoomData struct {
	Room     string `json:"room"`
	RoomID   int    `json:"room_id"`
	Username string `json:"username"`
}

type wsTextData struct {
	wsRoomData
	Message string `json:"message"`
}

type wsLandmarkData struct {
	wsRoomData
	Message []float64 `json:"message"`
	StopBtn bool      `json:"stopBtn"`
}

type wsReceive struct {
	Sender     string   `json:"sender"`
	SenderName string   `json:"sender_name"`
	Message    string   `json:"message"`
	Gloss      string   `json:"gloss,omitempty"`
	URLs       []string `json:"urls,omitempty"`
	Miss       []string `json:"miss,omitempty"`
	Time       string   `json:"time"`
}

type wsConnection struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

func decodeEvent(data []byte) (domain.StreamRequest, error) {
	var envelope wsEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.StreamRequest{}, fmt.Errorf("decode envelope: %w", err)
	}
	switch envelope.Event {
	case eventJoinRoom, eventLeaveRoom:
		var d wsRoomData
		if err := json.Unmarshal(envelope.Data, &d); err != nil {
			return domain.StreamRequest{}, fmt.Errorf("decode %s: %w", envelope.Event, err)
		}
		if envelope.Event == eventJoinRoom {
			return domain.NewJoinRequest(roomOf(d), d.Username), nil
		}
		return domain.NewLeaveRequest(roomOf(d), d.Username), nil
	case eventSendMessage:
		var d wsTextData
		if err := json.Unmarshal(envelope.Data, &d); err != nil {
			return domain.StreamRequest{}, fmt.Errorf("decode %s: %w", envelope.Event, err)
		}
		return domain.NewSendRequest(d.Room, d.RoomID, d.Username, d.Message), nil
	case eventSendLandmarks:
		var d wsLandmarkData
		if err := json.Unmarshal(envelope.Data, &d); err != nil {
			return domain.StreamRequest{}, fmt.Errorf("decode %s: %w", envelope.Event, err)
		}
		return domain.NewLandmarkRequest(d.Room, d.RoomID, d.Username, domain.Frame(d.Message), d.StopBtn), nil
	}
	return domain.StreamRequest{}, fmt.Errorf("unknown event %q", envelope.Event)
}

func roomOf(d wsRoomData) string {
	if d.Room == "" && d.RoomID > 0 {
		return domain.RoomKeyFromID(d.RoomID)
	}
	return d.Room
}

func encodeReceive(receive domain.Receive) ([]byte, error) {
	data, err := json.Marshal(wsReceive{
		Sender:     receive.Sender,
		SenderName: receive.SenderName,
		Message:    receive.Message,
		Gloss:      receive.Gloss,
		URLs:       receive.URLs,
		Miss:       receive.Miss,
		Time:       receive.Time,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsEnvelope{Event: eventReceiveMessage, Data: data})
}

// handleWebSocket runs one browser connection as a stream session. The
// handler blocks on the read side; writes happen on their own goroutine.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &wsConnection{
		conn:      conn,
		sessionID: uuid.NewString(),
		send:      make(chan []byte, sendBuffer),
	}
	requestChan := make(chan domain.StreamRequest, streamBuffer)
	responseChan := make(chan domain.StreamResponse, streamBuffer)

	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		defer close(responseChan)
		err := h.stream.HandleStreamSession(ctx, requestChan, responseChan, c.sessionID, r.RemoteAddr)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("WebSocket session ended", "error", err, "sessionID", c.sessionID)
		}
	}()
	go c.forward(ctx, responseChan)
	go c.writePump(cancel)
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	c.readPump(ctx, requestChan)
	close(requestChan)
	cancel()
	<-sessionDone
}

func (c *wsConnection) forward(ctx context.Context, responses <-chan domain.StreamResponse) {
	defer close(c.send)
	for response := range responses {
		if response.IsError() {
			slog.Warn("Stream event rejected", "error", response.Error, "trace", response.Trace, "sessionID", c.sessionID)
			continue
		}
		data, err := encodeReceive(response.Receive)
		if err != nil {
			slog.Error("Failed to encode receive message", "error", err, "sessionID", c.sessionID)
			continue
		}
		select {
		case c.send <- data:
		case <-ctx.Done():
		}
	}
}

func (c *wsConnection) writePump(cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsConnection) readPump(ctx context.Context, requestChan chan<- domain.StreamRequest) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "error", err, "sessionID", c.sessionID)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		request, err := decodeEvent(data)
		if err != nil {
			slog.Warn("Failed to decode websocket event", "error", err, "sessionID", c.sessionID)
			continue
		}
		select {
		case requestChan <- request:
		case <-ctx.Done():
			return
		}
	}
}
