package service

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the money breakdown of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals derives tax and service charge from the pre-discount
// subtotal; total = subtotal + tax + service - discount.
func ComputeTotals(subtotal, taxPct, servicePct, discount decimal.Decimal) Totals {
	tax := subtotal.Mul(taxPct).Div(hundred).Round(2)
	service := subtotal.Mul(servicePct).Div(hundred).Round(2)
	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: service,
		Discount:      discount,
		Total:         subtotal.Add(tax).Add(service).Sub(discount),
	}
}

// LineSubtotal is price * quantity.
func LineSubtotal(price decimal.Decimal, quantity int32) decimal.Decimal {
	return price.Mul(decimal.NewFromInt32(quantity))
}

// SumItems re-sums line subtotals from the snapshotted unit prices.
func SumItems(items []database.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(LineSubtotal(numericToDecimal(it.Price), it.Quantity))
	}
	return sum
}

// RecalculateTotals recomputes an order's totals from its current items using
// the percentages and discount amount stored on the order.
func RecalculateTotals(order database.Order, items []database.OrderItem) Totals {
	return ComputeTotals(
		SumItems(items),
		numericToDecimal(order.TaxPercentage),
		numericToDecimal(order.ServiceChargePercentage),
		numericToDecimal(order.Discount),
	)
}

func totalsParams(order database.Order, t Totals) database.UpdateOrderTotalsParams {
	return database.UpdateOrderTotalsParams{
		ID:            order.ID,
		Subtotal:      decimalToNumeric(t.Subtotal),
		Tax:           decimalToNumeric(t.Tax),
		ServiceCharge: decimalToNumeric(t.ServiceCharge),
		Discount:      decimalToNumeric(t.Discount),
		Total:         decimalToNumeric(t.Total),
	}
}

// TotalsOf reads the stored breakdown of an order.
func TotalsOf(order database.Order) Totals {
	return Totals{
		Subtotal:      numericToDecimal(order.Subtotal),
		Tax:           numericToDecimal(order.Tax),
		ServiceCharge: numericToDecimal(order.ServiceCharge),
		Discount:      numericToDecimal(order.Discount),
		Total:         numericToDecimal(order.Total),
	}
}

// --- pgtype bridges ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// quantityToNumeric keeps the three decimal places used by stock columns.
func quantityToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(3))
	return n
}

// NumericToDecimal is exported for transport layers that render stored values.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	return numericToDecimal(n)
}
