package http

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StatusHandler struct {
	hub  *status.Hub
	repo OrderReader
}

func NewStatusHandler(hub *status.Hub, repo OrderReader) *StatusHandler {
	return &StatusHandler{hub: hub, repo: repo}
}

// GET /api/v1/orders/{id}/status — websocket push of status changes for one
// order. Only the order's owner may watch it. The hub subscription is torn
// down on every exit path: client disconnect, read error, or handler return.
func (h *StatusHandler) Watch(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	orderID := chi.URLParam(r, "id")
	id, err := uuid.Parse(orderID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "order id must be a uuid")
		return
	}

	order, err := h.repo.GetOrderByID(r.Context(), id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}
	if order.UserID != userID {
		// Same no-leak gate as GetOrder
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("request %s: websocket upgrade failed: %v", getRequestID(r.Context()), err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	unsubscribe := h.hub.Subscribe(orderID, func(u status.Update) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(u); err != nil {
			log.Printf("status push failed for order %v: %v", orderID, err)
		}
	})
	defer unsubscribe()

	// Block on the read loop so the subscription lives until the client
	// goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
