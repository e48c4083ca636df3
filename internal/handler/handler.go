// Package handler exposes the storefront over HTTP. It is a thin layer:
// request decoding, delegation to the domain packages, response encoding.
// Cart mutations always answer 200 with the updated cart; whether the
// mutation took effect is visible in the body, not in the status code.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dwarforca/storefront/internal/catalog"
	"github.com/dwarforca/storefront/internal/domain/cart"
	"github.com/dwarforca/storefront/internal/domain/product"
	"github.com/dwarforca/storefront/internal/domain/user"
)

// Handler serves the storefront API, delegating business logic to the cart
// manager, catalog snapshot, and user service.
type Handler struct {
	cart    *cart.Manager
	catalog *product.Snapshot
	users   *user.Service
	faqs    []catalog.FAQ
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cartManager *cart.Manager,
	snapshot *product.Snapshot,
	users *user.Service,
	faqs []catalog.FAQ,
) *Handler {
	return &Handler{
		cart:    cartManager,
		catalog: snapshot,
		users:   users,
		faqs:    faqs,
	}
}

// Routes registers all API routes on a fresh ServeMux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.RemoveCartItem)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/faq", h.ListFAQs)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/profile", h.GetProfile)
	mux.HandleFunc("PUT /api/auth/profile", h.UpdateProfile)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	return mux
}

// errorResponse is the error body shape shared by all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: message})
}
