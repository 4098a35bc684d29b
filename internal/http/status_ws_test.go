package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/status"
)

type orderReaderMock struct {
	order *domain.Order
}

func (m *orderReaderMock) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if m.order != nil && m.order.ID == id {
		return m.order, nil
	}
	return nil, orders.ErrOrderNotFound
}

func (m *orderReaderMock) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return nil, nil
}

func statusTestServer(hub *status.Hub, repo OrderReader, userID string) *httptest.Server {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), userIDKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler := NewStatusHandler(hub, repo)
	r.Get("/orders/{id}/status", handler.Watch)
	return httptest.NewServer(r)
}

func TestWatch_Unauthorized(t *testing.T) {
	handler := NewStatusHandler(status.NewHub(), &orderReaderMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request = withURLParams(request, "", uuid.NewString())

	handler.Watch(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestWatch_InvalidID(t *testing.T) {
	handler := NewStatusHandler(status.NewHub(), &orderReaderMock{})

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("GET", "/", nil), "u1")
	request = withURLParams(request, "", "not-a-uuid")

	handler.Watch(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestWatch_NonOwnerGets404(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), UserID: "owner"}
	handler := NewStatusHandler(status.NewHub(), &orderReaderMock{order: order})

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("GET", "/", nil), "somebody-else")
	request = withURLParams(request, "", order.ID.String())

	handler.Watch(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "not_found" {
		t.Errorf("Expected error code 'not_found', got '%s'", response.Code)
	}
}

func TestWatch_OwnerReceivesUpdates(t *testing.T) {
	hub := status.NewHub()
	order := &domain.Order{ID: uuid.New(), UserID: "u1"}
	srv := statusTestServer(hub, &orderReaderMock{order: order}, "u1")
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/orders/" + order.ID.String() + "/status"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to land before publishing
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers(order.ID.String()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(status.Update{
		OrderID:       order.ID.String(),
		Status:        domain.OrderStatusPaid,
		PaymentStatus: domain.PaymentStatusCompleted,
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got status.Update
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("Failed to read update: %v", err)
	}
	if got.OrderID != order.ID.String() {
		t.Errorf("Expected order id %s, got %s", order.ID, got.OrderID)
	}
	if got.Status != domain.OrderStatusPaid {
		t.Errorf("Expected status PAID, got %s", got.Status)
	}
}

func TestWatch_NonOwnerCannotConnect(t *testing.T) {
	hub := status.NewHub()
	order := &domain.Order{ID: uuid.New(), UserID: "owner"}
	srv := statusTestServer(hub, &orderReaderMock{order: order}, "somebody-else")
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/orders/" + order.ID.String() + "/status"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Expected dial to fail for non-owner")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected handshake rejection with 404, got %+v", resp)
	}
}
