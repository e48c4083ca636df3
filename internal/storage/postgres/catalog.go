package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwarforca/storefront/internal/catalog"
	"github.com/dwarforca/storefront/internal/domain/product"
)

var _ catalog.Provider = (*CatalogProvider)(nil)

// CatalogProvider implements catalog.Provider from the products table.
// Prices are NUMERIC columns scanned straight into decimals via the
// pool's registered codec.
type CatalogProvider struct {
	pool *pgxpool.Pool
}

// NewCatalogProvider returns a CatalogProvider using the given pool.
func NewCatalogProvider(pool *pgxpool.Pool) *CatalogProvider {
	return &CatalogProvider{pool: pool}
}

// Fetch returns all products in catalog (id) order.
func (p *CatalogProvider) Fetch(ctx context.Context) ([]product.Product, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, description, image, price, stock, category
		 FROM products ORDER BY id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var prod product.Product
		if err := rows.Scan(
			&prod.ID, &prod.Name, &prod.Description, &prod.Image,
			&prod.Price, &prod.Stock, &prod.Category,
		); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read products")
	}

	return products, nil
}

// UpsertProduct inserts or updates one catalog record. Used by the seed and
// ingest tools.
func UpsertProduct(ctx context.Context, pool *pgxpool.Pool, prod product.Product) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, name, description, image, price, stock, category)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   description = EXCLUDED.description,
		   image = EXCLUDED.image,
		   price = EXCLUDED.price,
		   stock = EXCLUDED.stock,
		   category = EXCLUDED.category`,
		prod.ID, prod.Name, prod.Description, prod.Image,
		prod.Price, prod.Stock, prod.Category,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert product %d", prod.ID)
	}
	return nil
}
