package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, payment_number, order_id, amount, payment_method, payment_status,
    paid_amount, change_amount, notes, processed_by, paid_at, refunded_at, refund_reason, created_at`

func paymentFields(p *Payment) []interface{} {
	return []interface{}{
		&p.ID,
		&p.PaymentNumber,
		&p.OrderID,
		&p.Amount,
		&p.PaymentMethod,
		&p.PaymentStatus,
		&p.PaidAmount,
		&p.ChangeAmount,
		&p.Notes,
		&p.ProcessedBy,
		&p.PaidAt,
		&p.RefundedAt,
		&p.RefundReason,
		&p.CreatedAt,
	}
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(paymentFields(&p)...)
	return p, err
}

const getLastPaymentNumber = `-- name: GetLastPaymentNumber :one
SELECT payment_number FROM payments
WHERE payment_number LIKE $1 || '%'
ORDER BY payment_number DESC
LIMIT 1`

func (q *Queries) GetLastPaymentNumber(ctx context.Context, prefix string) (string, error) {
	row := q.db.QueryRow(ctx, getLastPaymentNumber, prefix)
	var paymentNumber string
	err := row.Scan(&paymentNumber)
	return paymentNumber, err
}

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (
    payment_number, order_id, amount, payment_method, payment_status, paid_amount, change_amount, notes, processed_by
) VALUES ($1, $2, $3, $4, 'completed', $5, $6, $7, $8)
RETURNING ` + paymentColumns

type CreatePaymentParams struct {
	PaymentNumber string         `json:"payment_number"`
	OrderID       uuid.UUID      `json:"order_id"`
	Amount        pgtype.Numeric `json:"amount"`
	PaymentMethod string         `json:"payment_method"`
	PaidAmount    pgtype.Numeric `json:"paid_amount"`
	ChangeAmount  pgtype.Numeric `json:"change_amount"`
	Notes         pgtype.Text    `json:"notes"`
	ProcessedBy   pgtype.UUID    `json:"processed_by"`
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.PaymentNumber,
		arg.OrderID,
		arg.Amount,
		arg.PaymentMethod,
		arg.PaidAmount,
		arg.ChangeAmount,
		arg.Notes,
		arg.ProcessedBy,
	)
	return scanPayment(row)
}

const getPayment = `-- name: GetPayment :one
SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

func (q *Queries) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPayment, id))
}

const getPaymentForUpdate = `-- name: GetPaymentForUpdate :one
SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

func (q *Queries) GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPaymentForUpdate, id))
}

const refundPayment = `-- name: RefundPayment :one
UPDATE payments SET payment_status = 'refunded', refunded_at = now(), refund_reason = $2
WHERE id = $1
RETURNING ` + paymentColumns

type RefundPaymentParams struct {
	ID           uuid.UUID   `json:"id"`
	RefundReason pgtype.Text `json:"refund_reason"`
}

func (q *Queries) RefundPayment(ctx context.Context, arg RefundPaymentParams) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, refundPayment, arg.ID, arg.RefundReason))
}

const listPaymentsByOrder = `-- name: ListPaymentsByOrder :many
SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at`

func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(paymentFields(&p)...); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPayments = `-- name: ListPayments :many
SELECT p.id, p.payment_number, p.order_id, p.amount, p.payment_method, p.payment_status,
    p.paid_amount, p.change_amount, p.notes, p.processed_by, p.paid_at, p.refunded_at,
    p.refund_reason, p.created_at,
    o.order_number, t.table_number
FROM payments p
JOIN orders o ON o.id = p.order_id
LEFT JOIN tables t ON t.id = o.table_id
WHERE ($1::date IS NULL OR p.paid_at::date = $1)
  AND ($2::text IS NULL OR p.payment_status = $2)
  AND ($3::text IS NULL OR p.payment_method = $3)
ORDER BY p.paid_at DESC`

type ListPaymentsParams struct {
	Date          pgtype.Date `json:"date"`
	PaymentStatus pgtype.Text `json:"payment_status"`
	PaymentMethod pgtype.Text `json:"payment_method"`
}

type PaymentListRow struct {
	Payment
	OrderNumber string      `json:"order_number"`
	TableNumber pgtype.Text `json:"table_number"`
}

func (q *Queries) ListPayments(ctx context.Context, arg ListPaymentsParams) ([]PaymentListRow, error) {
	rows, err := q.db.Query(ctx, listPayments, arg.Date, arg.PaymentStatus, arg.PaymentMethod)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PaymentListRow{}
	for rows.Next() {
		var i PaymentListRow
		dest := append(paymentFields(&i.Payment), &i.OrderNumber, &i.TableNumber)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPaymentSplit = `-- name: CreatePaymentSplit :one
INSERT INTO payment_splits (payment_id, split_number, amount, payment_method, payment_status)
VALUES ($1, $2, $3, $4, 'completed')
RETURNING id, payment_id, split_number, amount, payment_method, payment_status, paid_at`

type CreatePaymentSplitParams struct {
	PaymentID     uuid.UUID      `json:"payment_id"`
	SplitNumber   int32          `json:"split_number"`
	Amount        pgtype.Numeric `json:"amount"`
	PaymentMethod string         `json:"payment_method"`
}

func (q *Queries) CreatePaymentSplit(ctx context.Context, arg CreatePaymentSplitParams) (PaymentSplit, error) {
	row := q.db.QueryRow(ctx, createPaymentSplit,
		arg.PaymentID,
		arg.SplitNumber,
		arg.Amount,
		arg.PaymentMethod,
	)
	var i PaymentSplit
	err := row.Scan(
		&i.ID,
		&i.PaymentID,
		&i.SplitNumber,
		&i.Amount,
		&i.PaymentMethod,
		&i.PaymentStatus,
		&i.PaidAt,
	)
	return i, err
}

const listPaymentSplits = `-- name: ListPaymentSplits :many
SELECT id, payment_id, split_number, amount, payment_method, payment_status, paid_at
FROM payment_splits WHERE payment_id = $1 ORDER BY split_number`

func (q *Queries) ListPaymentSplits(ctx context.Context, paymentID uuid.UUID) ([]PaymentSplit, error) {
	rows, err := q.db.Query(ctx, listPaymentSplits, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PaymentSplit{}
	for rows.Next() {
		var i PaymentSplit
		if err := rows.Scan(
			&i.ID,
			&i.PaymentID,
			&i.SplitNumber,
			&i.Amount,
			&i.PaymentMethod,
			&i.PaymentStatus,
			&i.PaidAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const refundPaymentSplits = `-- name: RefundPaymentSplits :exec
UPDATE payment_splits SET payment_status = 'refunded' WHERE payment_id = $1`

func (q *Queries) RefundPaymentSplits(ctx context.Context, paymentID uuid.UUID) error {
	_, err := q.db.Exec(ctx, refundPaymentSplits, paymentID)
	return err
}
