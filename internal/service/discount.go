package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

// DiscountStore is satisfied by *database.Queries.
type DiscountStore interface {
	GetActiveDiscountByCode(ctx context.Context, arg database.GetActiveDiscountByCodeParams) (database.Discount, error)
	IncrementDiscountUsage(ctx context.Context, id uuid.UUID) error
}

// AppliedDiscount is the resolved code and amount taken off an order.
type AppliedDiscount struct {
	Code   string
	Amount decimal.Decimal
}

// DiscountAmount computes what a discount takes off subtotal. Percentage
// discounts are capped by max_discount when set; no discount exceeds the
// subtotal itself.
func DiscountAmount(d database.Discount, subtotal decimal.Decimal) decimal.Decimal {
	value := numericToDecimal(d.DiscountValue)

	var amount decimal.Decimal
	switch d.DiscountType {
	case enum.DiscountTypePercentage:
		amount = subtotal.Mul(value).Div(hundred).Round(2)
		if d.MaxDiscount.Valid {
			if limit := numericToDecimal(d.MaxDiscount); limit.IsPositive() && amount.GreaterThan(limit) {
				amount = limit
			}
		}
	default:
		amount = value
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount
}

// resolveDiscount validates code against the subtotal and the active window
// for today, and counts one use of it.
func resolveDiscount(ctx context.Context, store DiscountStore, code string, subtotal decimal.Decimal, today time.Time) (AppliedDiscount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return AppliedDiscount{Amount: decimal.Zero}, nil
	}

	d, err := store.GetActiveDiscountByCode(ctx, database.GetActiveDiscountByCodeParams{
		Code:  code,
		Today: pgtype.Date{Time: today, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AppliedDiscount{}, ErrInvalidDiscount
		}
		return AppliedDiscount{}, fmt.Errorf("get discount: %w", err)
	}

	if subtotal.LessThan(numericToDecimal(d.MinPurchase)) {
		return AppliedDiscount{}, fmt.Errorf("%w: minimum %s", ErrMinPurchaseNotMet, numericToDecimal(d.MinPurchase).StringFixed(2))
	}

	if err := store.IncrementDiscountUsage(ctx, d.ID); err != nil {
		return AppliedDiscount{}, fmt.Errorf("increment discount usage: %w", err)
	}

	return AppliedDiscount{Code: d.Code, Amount: DiscountAmount(d, subtotal)}, nil
}
