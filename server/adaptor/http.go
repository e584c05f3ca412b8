package adaptor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/ponyo877/signtalk/server/domain"
)

const healthTimeout = 2 * time.Second

// Handler serves the browser facing HTTP API and the /ws stream.
type Handler struct {
	uc       Usecase
	stream   StreamUsecase
	model    HealthChecker
	upgrader websocket.Upgrader
}

func NewHandler(uc Usecase, stream StreamUsecase, model HealthChecker) *Handler {
	return &Handler{
		uc:     uc,
		stream: stream,
		model:  model,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/chat/history/{room_id:[0-9]+}", h.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/chat/search/{room_id:[0-9]+}", h.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/chat/room", h.handleRoom).Methods(http.MethodPost)
	router.HandleFunc("/translate", h.handleTranslate).Methods(http.MethodPost)
	router.HandleFunc("/ws", h.handleWebSocket)
	return router
}

type historyItem struct {
	Sender     string    `json:"sender"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

type roomRequest struct {
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
}

type translateRequest struct {
	Text any `json:"text"`
}

type translateResponse struct {
	Gloss      string         `json:"gloss"`
	CleanGloss string         `json:"clean_gloss"`
	URLs       []string       `json:"urls"`
	Miss       []string       `json:"miss"`
	Meta       map[string]any `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]string{"error": err.Error()})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.stream.GetStreamStats()
	model := "ok"
	if h.model != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.model.Health(ctx); err != nil {
			slog.Warn("Model server health check failed", "error", err)
			model = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  model,
		"stats": map[string]any{
			"active_rooms":     stats.ActiveRooms,
			"active_sessions":  stats.ActiveSessions,
			"total_messages":   stats.TotalMessages,
			"dropped_messages": stats.DroppedMessages,
			"uptime":           stats.Uptime,
		},
	})
}

func toHistoryItems(messages []domain.Message) []historyItem {
	items := make([]historyItem, len(messages))
	for i, m := range messages {
		items[i] = historyItem{
			Sender:     m.Sender,
			SenderName: m.SenderName,
			Message:    m.Content,
			CreatedAt:  m.CreatedAt,
		}
	}
	return items
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	roomID, _ := strconv.Atoi(mux.Vars(r)["room_id"])
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.uc.ListMessages(r.Context(), roomID, limit)
	if err != nil {
		slog.Error("Error listing messages", "error", err, "roomID", roomID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryItems(messages))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	roomID, _ := strconv.Atoi(mux.Vars(r)["room_id"])

	messages, err := h.uc.SearchMessages(r.Context(), roomID, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("Error searching messages", "error", err, "roomID", roomID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryItems(messages))
}

func (h *Handler) handleRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	roomID, err := h.uc.LookupRoom(r.Context(), req.UserA, req.UserB)
	if err != nil {
		slog.Error("Error looking up room", "error", err, "userA", req.UserA, "userB", req.UserB)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id": roomID,
		"room":    domain.PairRoomKey(req.UserA, req.UserB),
	})
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	result, err := h.uc.Translate(r.Context(), req.Text)
	if err != nil {
		slog.Error("Error translating text", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{
		Gloss:      result.Translation.Gloss,
		CleanGloss: result.CleanGloss,
		URLs:       nonNil(result.Mapping.URLs),
		Miss:       nonNil(result.Mapping.Misses),
		Meta:       result.Translation.Meta,
	})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
