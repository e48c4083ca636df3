package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dwarforca/storefront/internal/domain/cart"
)

type cartLineResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type cartResponse struct {
	Items     []cartLineResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Total     float64            `json:"total"`
	// Message carries the acknowledgment for a mutation that took effect.
	Message string `json:"message,omitempty"`
}

func summaryToCartResponse(s cart.Summary) cartResponse {
	items := make([]cartLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		items[i] = cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.InexactFloat64(),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().Round(2).InexactFloat64(),
		}
	}
	return cartResponse{
		Items:     items,
		ItemCount: s.Totals.ItemCount,
		// Rounding happens only here. The manager keeps exact values.
		Total: s.Totals.Total.Round(2).InexactFloat64(),
	}
}

// GetCart returns the current cart lines and totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, summaryToCartResponse(h.cart.Summary()))
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
}

// AddCartItem adds one unit of the requested product. An add the manager
// ignored (unknown or out-of-stock product) still answers 200: the body
// shows the unchanged cart and carries no acknowledgment message.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	before := h.cart.Totals()
	if err := h.cart.AddItem(r.Context(), req.ProductID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "cart update failed")
		return
	}

	resp := summaryToCartResponse(h.cart.Summary())
	if resp.ItemCount != before.ItemCount {
		if p, ok := h.catalog.Get(req.ProductID); ok {
			resp.Message = p.Name + " added to cart!"
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem overwrites the quantity of the line named in the path.
// Zero or negative removes the line; an absent line stays absent.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cart.SetQuantity(r.Context(), id, req.Quantity); err != nil {
		writeError(w, r, http.StatusInternalServerError, "cart update failed")
		return
	}
	writeJSON(w, r, http.StatusOK, summaryToCartResponse(h.cart.Summary()))
}

// RemoveCartItem deletes the line named in the path.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.cart.RemoveItem(r.Context(), id); err != nil {
		writeError(w, r, http.StatusInternalServerError, "cart update failed")
		return
	}
	writeJSON(w, r, http.StatusOK, summaryToCartResponse(h.cart.Summary()))
}

// Checkout reports the checkout outcome. There is no payment flow: an empty
// cart is a 400, anything else is the out-of-stock refusal. Cart state is
// never touched either way.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.cart.Empty() {
		writeError(w, r, http.StatusBadRequest, "cart is empty")
		return
	}
	writeError(w, r, http.StatusConflict, "checkout unavailable: items out of stock")
}
