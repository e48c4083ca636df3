package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// The serialized cart is a JSON array of {id, name, price, quantity}
// records, the exact shape earlier storefront builds kept under the same
// storage key. There is no version field; a format change would orphan
// existing carts.

func encodeLines(lines []Line) string {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, l := range lines {
			line := l
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Int64(line.ProductID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(line.Name) })
				e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(line.Price.String())) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(line.Quantity) })
			})
		}
	})
	return e.String()
}

// decodeLines parses a serialized cart. Structural errors fail the whole
// decode (the caller falls back to an empty cart). Records that violate
// cart invariants (quantity below one, duplicate product id) are dropped
// individually so one bad entry does not wipe the rest of the cart.
func decodeLines(raw string) ([]Line, error) {
	d := jx.DecodeStr(raw)

	var lines []Line
	seen := make(map[int64]struct{})

	if err := d.Arr(func(d *jx.Decoder) error {
		var l Line
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "id":
				v, err := d.Int64()
				l.ProductID = v
				return err
			case "name":
				v, err := d.Str()
				l.Name = v
				return err
			case "price":
				n, err := d.Num()
				if err != nil {
					return err
				}
				p, err := decimal.NewFromString(n.String())
				if err != nil {
					return errors.Wrap(err, "parse price")
				}
				l.Price = p
				return nil
			case "quantity":
				v, err := d.Int()
				l.Quantity = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}

		if l.Quantity < 1 {
			return nil
		}
		if _, dup := seen[l.ProductID]; dup {
			return nil
		}
		seen[l.ProductID] = struct{}{}
		lines = append(lines, l)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	return lines, nil
}
