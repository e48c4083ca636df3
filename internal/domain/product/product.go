package product

import "github.com/shopspring/decimal"

// DefaultCategory is assumed for catalog records that carry no category of
// their own.
const DefaultCategory = "Merchandise"

// Product represents a catalog item available for purchase. Stock is the
// quantity on hand; zero means the item cannot be added to a cart.
type Product struct {
	ID          int64
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal
	Stock       int
	Category    string
}

// Available reports whether the product can currently be added to a cart.
func (p Product) Available() bool {
	return p.Stock > 0
}

// Snapshot is the set of product records available for validating cart
// mutations within one session. It preserves catalog order and indexes
// records by id. A Snapshot is immutable after construction.
type Snapshot struct {
	products []Product
	byID     map[int64]Product
}

// NewSnapshot builds a Snapshot from an ordered product list. When two
// records share an id, the first one wins.
func NewSnapshot(products []Product) *Snapshot {
	s := &Snapshot{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int64]Product, len(products)),
	}
	for _, p := range products {
		if p.Category == "" {
			p.Category = DefaultCategory
		}
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		s.products = append(s.products, p)
		s.byID[p.ID] = p
	}
	return s
}

// Get returns the product with the given id.
func (s *Snapshot) Get(id int64) (Product, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// List returns the products in catalog order.
func (s *Snapshot) List() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Categories returns the distinct categories in first-seen order.
func (s *Snapshot) Categories() []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.products)
}
