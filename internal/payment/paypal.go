package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// PayPalClient implements Provider against the PayPal Orders v2 REST API.
// Requests go through a circuit breaker; there is no automatic retry.
type PayPalClient struct {
	baseURL  string
	clientID string
	secret   string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(baseURL, clientID, secret string) *PayPalClient {
	settings := gobreaker.Settings{
		Name:    "paypal",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &PayPalClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		http:     &http.Client{Timeout: 15 * time.Second},
		breaker:  gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

type createOrderPayload struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Amount      amount `json:"amount"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (c *PayPalClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error) {
	payload := createOrderPayload{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: req.ReferenceID,
			Amount: amount{
				CurrencyCode: req.Currency,
				Value:        fmt.Sprintf("%.2f", req.Amount),
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal create order payload: %w", err)
	}

	data, err := c.post(ctx, "/v2/checkout/orders", body)
	if err != nil {
		return nil, fmt.Errorf("create provider order: %w", err)
	}

	var resp orderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal create order response: %w", err)
	}

	return &ProviderOrder{ID: resp.ID, Status: resp.Status}, nil
}

func (c *PayPalClient) CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", providerOrderID)
	data, err := c.post(ctx, path, []byte("{}"))
	if err != nil {
		return nil, fmt.Errorf("capture provider order %s: %w", providerOrderID, err)
	}

	var resp orderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal capture response: %w", err)
	}

	result := &CaptureResult{Status: mapCaptureStatus(resp.Status)}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		capture := resp.PurchaseUnits[0].Payments.Captures[0]
		result.CaptureID = capture.ID
		result.Status = mapCaptureStatus(capture.Status)
	}

	return result, nil
}

func mapCaptureStatus(s string) CaptureStatus {
	switch s {
	case "COMPLETED":
		return CaptureStatusCompleted
	case "PENDING":
		return CaptureStatusPending
	default:
		return CaptureStatusDeclined
	}
}

func (c *PayPalClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(body)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrOrderNotFound
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(data))
		}

		return data, nil
	})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a cached OAuth2 access token, fetching a fresh one when the
// cached token is within a minute of expiry.
func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("token request returned %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
