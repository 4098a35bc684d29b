package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *PayPalClient) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewPayPalClient(srv.URL, "client-id", "secret")
}

func TestCreateOrder_Success(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/checkout/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload createOrderPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "CAPTURE", payload.Intent)
		require.Len(t, payload.PurchaseUnits, 1)
		assert.Equal(t, "126.62", payload.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "USD", payload.PurchaseUnits[0].Amount.CurrencyCode)

		json.NewEncoder(w).Encode(map[string]string{"id": "PP-123", "status": "CREATED"})
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		ReferenceID: "local-1",
		Amount:      126.62,
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "PP-123", order.ID)
	assert.Equal(t, "CREATED", order.Status)
}

func TestCaptureOrder_Completed(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/checkout/orders/PP-123/capture", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "PP-123",
			"status": "COMPLETED",
			"purchase_units": []map[string]interface{}{{
				"payments": map[string]interface{}{
					"captures": []map[string]string{{"id": "CAP-9", "status": "COMPLETED"}},
				},
			}},
		})
	})

	result, err := client.CaptureOrder(context.Background(), "PP-123")
	require.NoError(t, err)
	assert.Equal(t, CaptureStatusCompleted, result.Status)
	assert.Equal(t, "CAP-9", result.CaptureID)
}

func TestCaptureOrder_PendingVerification(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "PP-123",
			"status": "COMPLETED",
			"purchase_units": []map[string]interface{}{{
				"payments": map[string]interface{}{
					"captures": []map[string]string{{"id": "CAP-9", "status": "PENDING"}},
				},
			}},
		})
	})

	result, err := client.CaptureOrder(context.Background(), "PP-123")
	require.NoError(t, err)
	// The capture-level status wins over the order-level one
	assert.Equal(t, CaptureStatusPending, result.Status)
}

func TestCaptureOrder_NotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.CaptureOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateOrder_ServerError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 10, Currency: "USD"})
	assert.Error(t, err)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := client.CaptureOrder(ctx, "PP-123")
		require.Error(t, err)
	}

	// Breaker is open now; the request never reaches the server
	_, err := client.CaptureOrder(ctx, "PP-123")
	assert.Error(t, err)
}
