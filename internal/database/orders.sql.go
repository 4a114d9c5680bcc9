package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, table_id, customer_name, customer_phone, customer_email,
    order_type, order_source, status, subtotal, tax, tax_percentage, service_charge,
    service_charge_percentage, discount, discount_code, total, is_paid, notes,
    special_requests, cancellation_reason, created_by, created_at, updated_at,
    paid_at, completed_at, cancelled_at`

func orderFields(o *Order) []interface{} {
	return []interface{}{
		&o.ID,
		&o.OrderNumber,
		&o.TableID,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerEmail,
		&o.OrderType,
		&o.OrderSource,
		&o.Status,
		&o.Subtotal,
		&o.Tax,
		&o.TaxPercentage,
		&o.ServiceCharge,
		&o.ServiceChargePercentage,
		&o.Discount,
		&o.DiscountCode,
		&o.Total,
		&o.IsPaid,
		&o.Notes,
		&o.SpecialRequests,
		&o.CancellationReason,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.PaidAt,
		&o.CompletedAt,
		&o.CancelledAt,
	}
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(orderFields(&o)...)
	return o, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    order_number, table_id, customer_name, customer_phone, customer_email,
    order_type, order_source, status, subtotal, tax, tax_percentage,
    service_charge, service_charge_percentage, discount, discount_code, total,
    notes, special_requests, created_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, 'pending', $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber             string         `json:"order_number"`
	TableID                 pgtype.UUID    `json:"table_id"`
	CustomerName            pgtype.Text    `json:"customer_name"`
	CustomerPhone           pgtype.Text    `json:"customer_phone"`
	CustomerEmail           pgtype.Text    `json:"customer_email"`
	OrderType               string         `json:"order_type"`
	OrderSource             string         `json:"order_source"`
	Subtotal                pgtype.Numeric `json:"subtotal"`
	Tax                     pgtype.Numeric `json:"tax"`
	TaxPercentage           pgtype.Numeric `json:"tax_percentage"`
	ServiceCharge           pgtype.Numeric `json:"service_charge"`
	ServiceChargePercentage pgtype.Numeric `json:"service_charge_percentage"`
	Discount                pgtype.Numeric `json:"discount"`
	DiscountCode            pgtype.Text    `json:"discount_code"`
	Total                   pgtype.Numeric `json:"total"`
	Notes                   pgtype.Text    `json:"notes"`
	SpecialRequests         pgtype.Text    `json:"special_requests"`
	CreatedBy               pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.TableID,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerEmail,
		arg.OrderType,
		arg.OrderSource,
		arg.Subtotal,
		arg.Tax,
		arg.TaxPercentage,
		arg.ServiceCharge,
		arg.ServiceChargePercentage,
		arg.Discount,
		arg.DiscountCode,
		arg.Total,
		arg.Notes,
		arg.SpecialRequests,
		arg.CreatedBy,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderByNumber = `-- name: GetOrderByNumber :one
SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

func (q *Queries) GetOrderByNumber(ctx context.Context, orderNumber string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByNumber, orderNumber))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const updateOrderTotals = `-- name: UpdateOrderTotals :one
UPDATE orders
SET subtotal = $2, tax = $3, service_charge = $4, discount = $5, total = $6, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderTotalsParams struct {
	ID            uuid.UUID      `json:"id"`
	Subtotal      pgtype.Numeric `json:"subtotal"`
	Tax           pgtype.Numeric `json:"tax"`
	ServiceCharge pgtype.Numeric `json:"service_charge"`
	Discount      pgtype.Numeric `json:"discount"`
	Total         pgtype.Numeric `json:"total"`
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderTotals,
		arg.ID,
		arg.Subtotal,
		arg.Tax,
		arg.ServiceCharge,
		arg.Discount,
		arg.Total,
	)
	return scanOrder(row)
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2,
    completed_at = CASE WHEN $2 = 'completed' THEN now() ELSE completed_at END,
    updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders
SET status = 'cancelled', cancellation_reason = $2, cancelled_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID                 uuid.UUID   `json:"id"`
	CancellationReason pgtype.Text `json:"cancellation_reason"`
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.CancellationReason))
}

const markOrderPaid = `-- name: MarkOrderPaid :one
UPDATE orders
SET is_paid = true, paid_at = now(), status = 'completed', completed_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) MarkOrderPaid(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderPaid, id))
}

const revertOrderPayment = `-- name: RevertOrderPayment :one
UPDATE orders
SET is_paid = false, paid_at = NULL, status = 'cancelled', cancellation_reason = $2,
    cancelled_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type RevertOrderPaymentParams struct {
	ID                 uuid.UUID   `json:"id"`
	CancellationReason pgtype.Text `json:"cancellation_reason"`
}

func (q *Queries) RevertOrderPayment(ctx context.Context, arg RevertOrderPaymentParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, revertOrderPayment, arg.ID, arg.CancellationReason))
}

const listOrders = `-- name: ListOrders :many
SELECT o.id, o.order_number, o.table_id, o.customer_name, o.customer_phone, o.customer_email,
    o.order_type, o.order_source, o.status, o.subtotal, o.tax, o.tax_percentage, o.service_charge,
    o.service_charge_percentage, o.discount, o.discount_code, o.total, o.is_paid, o.notes,
    o.special_requests, o.cancellation_reason, o.created_by, o.created_at, o.updated_at,
    o.paid_at, o.completed_at, o.cancelled_at,
    t.table_number,
    (SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
FROM orders o
LEFT JOIN tables t ON t.id = o.table_id
WHERE ($1::text IS NULL OR o.status = $1)
  AND ($2::uuid IS NULL OR o.table_id = $2)
  AND ($3::text IS NULL OR o.order_type = $3)
  AND ($4::date IS NULL OR o.created_at::date >= $4)
  AND ($5::date IS NULL OR o.created_at::date <= $5)
ORDER BY o.created_at DESC
LIMIT $6 OFFSET $7`

type ListOrdersParams struct {
	Status    pgtype.Text `json:"status"`
	TableID   pgtype.UUID `json:"table_id"`
	OrderType pgtype.Text `json:"order_type"`
	DateFrom  pgtype.Date `json:"date_from"`
	DateTo    pgtype.Date `json:"date_to"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

type OrderSummaryRow struct {
	Order
	TableNumber pgtype.Text `json:"table_number"`
	ItemCount   int64       `json:"item_count"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]OrderSummaryRow, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Status,
		arg.TableID,
		arg.OrderType,
		arg.DateFrom,
		arg.DateTo,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderSummaries(rows)
}

const listActiveOrders = `-- name: ListActiveOrders :many
SELECT o.id, o.order_number, o.table_id, o.customer_name, o.customer_phone, o.customer_email,
    o.order_type, o.order_source, o.status, o.subtotal, o.tax, o.tax_percentage, o.service_charge,
    o.service_charge_percentage, o.discount, o.discount_code, o.total, o.is_paid, o.notes,
    o.special_requests, o.cancellation_reason, o.created_by, o.created_at, o.updated_at,
    o.paid_at, o.completed_at, o.cancelled_at,
    t.table_number,
    (SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
FROM orders o
LEFT JOIN tables t ON t.id = o.table_id
WHERE o.status NOT IN ('completed', 'cancelled')
ORDER BY o.created_at ASC`

func (q *Queries) ListActiveOrders(ctx context.Context) ([]OrderSummaryRow, error) {
	rows, err := q.db.Query(ctx, listActiveOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderSummaries(rows)
}

const listUnpaidOrders = `-- name: ListUnpaidOrders :many
SELECT o.id, o.order_number, o.table_id, o.customer_name, o.customer_phone, o.customer_email,
    o.order_type, o.order_source, o.status, o.subtotal, o.tax, o.tax_percentage, o.service_charge,
    o.service_charge_percentage, o.discount, o.discount_code, o.total, o.is_paid, o.notes,
    o.special_requests, o.cancellation_reason, o.created_by, o.created_at, o.updated_at,
    o.paid_at, o.completed_at, o.cancelled_at,
    t.table_number,
    (SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
FROM orders o
LEFT JOIN tables t ON t.id = o.table_id
WHERE o.is_paid = false AND o.status NOT IN ('completed', 'cancelled')
ORDER BY o.created_at ASC`

func (q *Queries) ListUnpaidOrders(ctx context.Context) ([]OrderSummaryRow, error) {
	rows, err := q.db.Query(ctx, listUnpaidOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderSummaries(rows)
}

func scanOrderSummaries(rows pgx.Rows) ([]OrderSummaryRow, error) {
	items := []OrderSummaryRow{}
	for rows.Next() {
		var i OrderSummaryRow
		dest := append(orderFields(&i.Order), &i.TableNumber, &i.ItemCount)
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
