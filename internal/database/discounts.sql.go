package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const discountColumns = `id, code, discount_type, discount_value, min_purchase, max_discount,
    start_date, end_date, is_active, usage_count`

// GetActiveDiscountByCode only returns codes whose date window contains the given day.
const getActiveDiscountByCode = `-- name: GetActiveDiscountByCode :one
SELECT ` + discountColumns + `
FROM discounts
WHERE code = $1
  AND is_active
  AND (start_date IS NULL OR start_date <= $2)
  AND (end_date IS NULL OR end_date >= $2)`

type GetActiveDiscountByCodeParams struct {
	Code  string      `json:"code"`
	Today pgtype.Date `json:"today"`
}

func (q *Queries) GetActiveDiscountByCode(ctx context.Context, arg GetActiveDiscountByCodeParams) (Discount, error) {
	row := q.db.QueryRow(ctx, getActiveDiscountByCode, arg.Code, arg.Today)
	var i Discount
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.DiscountType,
		&i.DiscountValue,
		&i.MinPurchase,
		&i.MaxDiscount,
		&i.StartDate,
		&i.EndDate,
		&i.IsActive,
		&i.UsageCount,
	)
	return i, err
}

const incrementDiscountUsage = `-- name: IncrementDiscountUsage :exec
UPDATE discounts SET usage_count = usage_count + 1 WHERE id = $1`

func (q *Queries) IncrementDiscountUsage(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, incrementDiscountUsage, id)
	return err
}

const createDiscount = `-- name: CreateDiscount :one
INSERT INTO discounts (code, discount_type, discount_value, min_purchase, max_discount, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + discountColumns

type CreateDiscountParams struct {
	Code          string         `json:"code"`
	DiscountType  string         `json:"discount_type"`
	DiscountValue pgtype.Numeric `json:"discount_value"`
	MinPurchase   pgtype.Numeric `json:"min_purchase"`
	MaxDiscount   pgtype.Numeric `json:"max_discount"`
	StartDate     pgtype.Date    `json:"start_date"`
	EndDate       pgtype.Date    `json:"end_date"`
}

func (q *Queries) CreateDiscount(ctx context.Context, arg CreateDiscountParams) (Discount, error) {
	row := q.db.QueryRow(ctx, createDiscount,
		arg.Code,
		arg.DiscountType,
		arg.DiscountValue,
		arg.MinPurchase,
		arg.MaxDiscount,
		arg.StartDate,
		arg.EndDate,
	)
	var i Discount
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.DiscountType,
		&i.DiscountValue,
		&i.MinPurchase,
		&i.MaxDiscount,
		&i.StartDate,
		&i.EndDate,
		&i.IsActive,
		&i.UsageCount,
	)
	return i, err
}
