package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/pricing"
	"github.com/go-chi/chi/v5"
)

// CartService is what the cart endpoints need from the cart layer.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Estimate(c *domain.Cart) pricing.Totals
	AddItem(ctx context.Context, userID string, item domain.CartLine) error
	AdjustQuantity(ctx context.Context, userID string, ref domain.CatalogRef, delta int) error
	RemoveItem(ctx context.Context, userID string, ref domain.CatalogRef) error
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ID       string  `json:"id"`
	IsPart   bool    `json:"is_part"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

type CartResponseDTO struct {
	Items    []CartLineDTO  `json:"items"`
	Estimate pricing.Totals `json:"estimate"`
}

type CartLineDTO struct {
	ID       string  `json:"id"`
	IsPart   bool    `json:"is_part"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

func toCartResponse(c *domain.Cart, estimate pricing.Totals) CartResponseDTO {
	items := make([]CartLineDTO, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, CartLineDTO{
			ID:       line.Ref.ID,
			IsPart:   line.Ref.Kind == domain.KindPart,
			Name:     line.Name,
			Brand:    line.Brand,
			Category: line.Category,
			Price:    line.Price,
			Image:    line.Image,
			Quantity: line.Quantity,
		})
	}
	return CartResponseDTO{Items: items, Estimate: estimate}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	c, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	// The estimate is advisory. Authoritative totals come back from order
	// creation.
	respondJSON(w, http.StatusOK, toCartResponse(c, h.carts.Estimate(c)))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "missing_id", "id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	item := domain.CartLine{
		Ref:      domain.CatalogRef{ID: req.ID, Kind: domain.KindFromIsPart(req.IsPart)},
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Price:    req.Price,
		Image:    req.Image,
		Quantity: req.Quantity,
	}

	if err := h.carts.AddItem(ctx, userID, item); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusCreated)
}

type AdjustQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

// PATCH /api/v1/cart/items/{kind}/{id}
func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	ref, ok := refFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_kind", "kind must be part or product")
		return
	}

	var req AdjustQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be 1 or -1")
		return
	}

	if err := h.carts.AdjustQuantity(ctx, userID, ref, req.Delta); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to adjust quantity")
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

// DELETE /api/v1/cart/items/{kind}/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	ref, ok := refFromURL(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_kind", "kind must be part or product")
		return
	}

	if err := h.carts.RemoveItem(ctx, userID, ref); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}

	h.respondWithCart(ctx, w, userID, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	if err := h.carts.ClearCart(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respondWithCart(ctx context.Context, w http.ResponseWriter, userID string, status int) {
	c, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}
	respondJSON(w, status, toCartResponse(c, h.carts.Estimate(c)))
}

func refFromURL(r *http.Request) (domain.CatalogRef, bool) {
	kind := domain.ItemKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		return domain.CatalogRef{}, false
	}
	return domain.CatalogRef{ID: chi.URLParam(r, "id"), Kind: kind}, true
}
