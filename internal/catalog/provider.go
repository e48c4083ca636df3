// Package catalog retrieves the product inventory the storefront sells.
// Retrieval happens once per session; when it fails the storefront keeps
// running against the fixed fallback catalog rather than erroring out.
package catalog

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dwarforca/storefront/internal/domain/product"
)

// Provider supplies the ordered product list for one session.
type Provider interface {
	Fetch(ctx context.Context) ([]product.Product, error)
}

// Load fetches the catalog from p, substituting the fallback catalog on any
// failure. The degraded path is logged but never surfaced: it is a designed
// outcome, not an error state.
func Load(ctx context.Context, p Provider, lg *zap.Logger) *product.Snapshot {
	products, err := p.Fetch(ctx)
	if err != nil {
		lg.Warn("catalog retrieval failed, using fallback catalog", zap.Error(err))
		return product.NewSnapshot(Fallback())
	}
	lg.Info("catalog loaded", zap.Int("products", len(products)))
	return product.NewSnapshot(products)
}

// HTTPProvider fetches an inventory document over HTTP.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func (p *HTTPProvider) Fetch(ctx context.Context) ([]product.Product, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create inventory request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch inventory")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch inventory: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read inventory body")
	}

	return ParseInventory(data)
}

// FileProvider reads an inventory document from local disk.
type FileProvider struct {
	Path string
}

func (p *FileProvider) Fetch(_ context.Context) ([]product.Product, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, errors.Wrap(err, "read inventory file")
	}
	return ParseInventory(data)
}

// ParseInventory decodes an inventory document of the form
// {"products": [{id, name, price, stock, ...}, ...]}. Product records may
// carry arbitrary extra display fields (specs, leadTime, contents, ...);
// those are skipped, not rejected.
func ParseInventory(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)

	var products []product.Product
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "products" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			p, err := parseProduct(d)
			if err != nil {
				return err
			}
			products = append(products, p)
			return nil
		})
	}); err != nil {
		return nil, errors.Wrap(err, "decode inventory")
	}

	return products, nil
}

// ParseProductRecord decodes a single product object, as found in NDJSON
// supplier feeds.
func ParseProductRecord(data []byte) (product.Product, error) {
	return parseProduct(jx.DecodeBytes(data))
}

func parseProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			p.ID = v
			return err
		case "name":
			v, err := d.Str()
			p.Name = v
			return err
		case "description":
			v, err := d.Str()
			p.Description = v
			return err
		case "image":
			v, err := d.Str()
			p.Image = v
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(n.String())
			if err != nil {
				return errors.Wrap(err, "parse price")
			}
			p.Price = price
			return nil
		case "stock":
			v, err := d.Int()
			p.Stock = v
			return err
		case "category":
			v, err := d.Str()
			p.Category = v
			return err
		default:
			return d.Skip()
		}
	})
	return p, err
}
