package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/dwarforca/storefront/internal/domain/product"
)

// Fallback returns the fixed catalog used whenever live retrieval fails.
// Every entry has zero stock: the storefront stays browsable and the cart
// operations stay well-defined, but nothing new can be added.
func Fallback() []product.Product {
	return []product.Product{
		{ID: 1, Name: "Killer Whale Plush - Small", Price: decimal.RequireFromString("14.99"), Image: "🐋", Description: "Adorable small orca plushie", Stock: 0},
		{ID: 2, Name: "Killer Whale Plush - Medium", Price: decimal.RequireFromString("24.99"), Image: "🐋", Description: "Medium-sized orca companion", Stock: 0},
		{ID: 3, Name: "Killer Whale Plush - Large", Price: decimal.RequireFromString("34.99"), Image: "🐋", Description: "Large orca plush", Stock: 0},
		{ID: 4, Name: "Killer Whale Figurine Set", Price: decimal.RequireFromString("19.99"), Image: "🐋", Description: "Set of 5 miniature figurines", Stock: 0},
		{ID: 5, Name: "Orca Enamel Pin", Price: decimal.RequireFromString("8.99"), Image: "📌", Description: "Cool enamel pin design", Stock: 0},
		{ID: 6, Name: "Killer Whale Bundle", Price: decimal.RequireFromString("49.99"), Image: "📦", Description: "Everything bundle", Stock: 0},
	}
}
