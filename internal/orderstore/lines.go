package orderstore

import (
	"math"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/click2print/orderdesk/internal/model"
)

// Extension keys holding the product lines of an order, in lookup order.
const (
	FieldProducts = "products"
	FieldItems    = "items"
)

// QuoteLine is one product row of the quotation.
type QuoteLine struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// rawLine is a product row as the order views write it. Several names are
// in use for the unit price; the first non-empty one wins.
type rawLine struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Quantity       any    `json:"quantity"`
	UnitPrice      any    `json:"unitPrice"`
	UnitPriceSnake any    `json:"unit_price"`
	Price          any    `json:"price"`
	UnitCost       any    `json:"unitCost"`
	Cost           any    `json:"cost"`
}

// productLines reads the product rows from the draft. products takes
// precedence over items when both are set. Rows that are not objects are
// skipped; a row without a usable price or quantity totals zero.
func productLines(f model.FormData) []QuoteLine {
	src, ok := f.Extensions[FieldProducts]
	if !ok || src == nil {
		src = f.Extensions[FieldItems]
	}
	if src == nil {
		return nil
	}

	var rows []any
	if err := mapstructure.Decode(src, &rows); err != nil {
		return nil
	}

	lines := make([]QuoteLine, 0, len(rows))
	for _, row := range rows {
		var r rawLine
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &r,
		})
		if err != nil {
			continue
		}
		if err := dec.Decode(row); err != nil {
			continue
		}

		qty := model.ParseAmount(firstSet(r.Quantity)).OrZero().Truncate(0)
		price := model.ParseAmount(firstSet(r.UnitPrice, r.UnitPriceSnake, r.Price, r.UnitCost, r.Cost)).OrZero()
		lines = append(lines, QuoteLine{
			ID:        r.ID,
			Name:      r.Name,
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: qty.Mul(price),
		})
	}
	return lines
}

// firstSet returns the first value that is not nil, empty, zero or NaN.
func firstSet(vals ...any) any {
	for _, v := range vals {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if t == "" {
				continue
			}
		case bool:
			if !t {
				continue
			}
		case float64:
			if t == 0 || math.IsNaN(t) {
				continue
			}
		case int:
			if t == 0 {
				continue
			}
		case int64:
			if t == 0 {
				continue
			}
		}
		return v
	}
	return nil
}
