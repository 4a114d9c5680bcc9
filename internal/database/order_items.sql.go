package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, order_id, menu_item_id, quantity, price, subtotal, status, notes,
    prepared_by, prepared_at, served_at, created_at`

func orderItemFields(i *OrderItem) []interface{} {
	return []interface{}{
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Quantity,
		&i.Price,
		&i.Subtotal,
		&i.Status,
		&i.Notes,
		&i.PreparedBy,
		&i.PreparedAt,
		&i.ServedAt,
		&i.CreatedAt,
	}
}

func scanOrderItem(row pgx.Row) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(orderItemFields(&i)...)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, quantity, price, subtotal, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	Quantity   int32          `json:"quantity"`
	Price      pgtype.Numeric `json:"price"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
	Notes      pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.Quantity,
		arg.Price,
		arg.Subtotal,
		arg.Notes,
	)
	return scanOrderItem(row)
}

const getOrderItem = `-- name: GetOrderItem :one
SELECT ` + orderItemColumns + ` FROM order_items WHERE id = $1`

func (q *Queries) GetOrderItem(ctx context.Context, id uuid.UUID) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItem, id))
}

const getOrderItemForUpdate = `-- name: GetOrderItemForUpdate :one
SELECT ` + orderItemColumns + ` FROM order_items WHERE id = $1 FOR UPDATE`

func (q *Queries) GetOrderItemForUpdate(ctx context.Context, id uuid.UUID) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItemForUpdate, id))
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at, id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(orderItemFields(&i)...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemDetails = `-- name: ListOrderItemDetails :many
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price, oi.subtotal, oi.status, oi.notes,
    oi.prepared_by, oi.prepared_at, oi.served_at, oi.created_at,
    m.name AS menu_name, m.preparation_time
FROM order_items oi
JOIN menu_items m ON m.id = oi.menu_item_id
WHERE oi.order_id = $1
ORDER BY oi.created_at, oi.id`

type OrderItemDetailRow struct {
	OrderItem
	MenuName        string `json:"menu_name"`
	PreparationTime int32  `json:"preparation_time"`
}

func (q *Queries) ListOrderItemDetails(ctx context.Context, orderID uuid.UUID) ([]OrderItemDetailRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemDetails, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItemDetailRow{}
	for rows.Next() {
		var i OrderItemDetailRow
		dest := append(orderItemFields(&i.OrderItem), &i.MenuName, &i.PreparationTime)
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

const deleteOrderItem = `-- name: DeleteOrderItem :exec
DELETE FROM order_items WHERE id = $1`

func (q *Queries) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItem, id)
	return err
}

const updateOrderItemStatus = `-- name: UpdateOrderItemStatus :one
UPDATE order_items
SET status = $2,
    prepared_by = COALESCE($3, prepared_by),
    prepared_at = COALESCE($4, prepared_at),
    served_at = COALESCE($5, served_at)
WHERE id = $1
RETURNING ` + orderItemColumns

type UpdateOrderItemStatusParams struct {
	ID         uuid.UUID          `json:"id"`
	Status     string             `json:"status"`
	PreparedBy pgtype.UUID        `json:"prepared_by"`
	PreparedAt pgtype.Timestamptz `json:"prepared_at"`
	ServedAt   pgtype.Timestamptz `json:"served_at"`
}

func (q *Queries) UpdateOrderItemStatus(ctx context.Context, arg UpdateOrderItemStatusParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, updateOrderItemStatus,
		arg.ID,
		arg.Status,
		arg.PreparedBy,
		arg.PreparedAt,
		arg.ServedAt,
	)
	return scanOrderItem(row)
}

// Items already at or past the target status are left untouched.
const advanceOrderItems = `-- name: AdvanceOrderItems :exec
UPDATE order_items
SET status = $2::text,
    prepared_at = CASE WHEN $2::text IN ('ready', 'served') THEN COALESCE(prepared_at, now()) ELSE prepared_at END,
    served_at = CASE WHEN $2::text = 'served' THEN COALESCE(served_at, now()) ELSE served_at END
WHERE order_id = $1
  AND array_position(ARRAY['pending', 'preparing', 'ready', 'served'], status)
    < array_position(ARRAY['pending', 'preparing', 'ready', 'served'], $2::text)`

type AdvanceOrderItemsParams struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

func (q *Queries) AdvanceOrderItems(ctx context.Context, arg AdvanceOrderItemsParams) error {
	_, err := q.db.Exec(ctx, advanceOrderItems, arg.OrderID, arg.Status)
	return err
}

const listKitchenItems = `-- name: ListKitchenItems :many
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price, oi.subtotal, oi.status, oi.notes,
    oi.prepared_by, oi.prepared_at, oi.served_at, oi.created_at,
    m.name AS menu_name, m.preparation_time,
    o.order_number, o.order_type, o.status AS order_status, o.created_at AS order_created_at,
    o.special_requests, t.table_number
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN menu_items m ON m.id = oi.menu_item_id
LEFT JOIN tables t ON t.id = o.table_id
WHERE oi.status = ANY($1::text[])
  AND o.status NOT IN ('completed', 'cancelled')
ORDER BY o.created_at ASC, oi.created_at ASC`

type KitchenItemRow struct {
	OrderItem
	MenuName        string      `json:"menu_name"`
	PreparationTime int32       `json:"preparation_time"`
	OrderNumber     string      `json:"order_number"`
	OrderType       string      `json:"order_type"`
	OrderStatus     string      `json:"order_status"`
	OrderCreatedAt  time.Time   `json:"order_created_at"`
	SpecialRequests pgtype.Text `json:"special_requests"`
	TableNumber     pgtype.Text `json:"table_number"`
}

func (q *Queries) ListKitchenItems(ctx context.Context, statuses []string) ([]KitchenItemRow, error) {
	rows, err := q.db.Query(ctx, listKitchenItems, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []KitchenItemRow{}
	for rows.Next() {
		var i KitchenItemRow
		dest := append(orderItemFields(&i.OrderItem),
			&i.MenuName,
			&i.PreparationTime,
			&i.OrderNumber,
			&i.OrderType,
			&i.OrderStatus,
			&i.OrderCreatedAt,
			&i.SpecialRequests,
			&i.TableNumber,
		)
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
