package handler

import (
	"net/http"

	"github.com/dwarforca/storefront/internal/domain/product"
)

type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	Categories []string          `json:"categories"`
}

// ListProducts returns the catalog, optionally filtered by the category
// query parameter. Filtering happens over the snapshot only; the cart never
// sees it.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products := make([]productResponse, 0, h.catalog.Len())
	for _, p := range h.catalog.List() {
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, domainToProductResponse(p))
	}

	writeJSON(w, r, http.StatusOK, productListResponse{
		Products:   products,
		Categories: h.catalog.Categories(),
	})
}

func domainToProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Category:    p.Category,
	}
}
