package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/club-engine/live"
	"github.com/Dosada05/club-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Табло в зале и терминалы ходят с локальной сети клуба.
		return true
	},
}

type WebSocketHandler struct {
	hub       *live.Hub
	lifecycle services.LifecycleService
}

func NewWebSocketHandler(hub *live.Hub, lifecycle services.LifecycleService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, lifecycle: lifecycle}
}

// ServeWs подписывает клиента на события одного турнира.
// Подключение: GET /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
	if err != nil || tournamentID < 1 {
		http.Error(w, "invalid tournamentID", http.StatusBadRequest)
		return
	}

	// Комнату открываем только для существующего турнира.
	if _, err := h.lifecycle.GetTournamentByID(r.Context(), tournamentID); err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		slog.WarnContext(r.Context(), "websocket upgrade failed",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: strconv.Itoa(tournamentID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
