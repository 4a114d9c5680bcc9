package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryColumns = `id, item_name, category, unit, current_stock, minimum_stock, unit_price,
    last_restock_date, restock_quantity, created_at, updated_at`

func inventoryFields(i *InventoryItem) []interface{} {
	return []interface{}{
		&i.ID,
		&i.ItemName,
		&i.Category,
		&i.Unit,
		&i.CurrentStock,
		&i.MinimumStock,
		&i.UnitPrice,
		&i.LastRestockDate,
		&i.RestockQuantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

func scanInventoryItem(row pgx.Row) (InventoryItem, error) {
	var i InventoryItem
	err := row.Scan(inventoryFields(&i)...)
	return i, err
}

func scanInventoryItems(rows pgx.Rows) ([]InventoryItem, error) {
	items := []InventoryItem{}
	for rows.Next() {
		var i InventoryItem
		if err := rows.Scan(inventoryFields(&i)...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createInventoryItem = `-- name: CreateInventoryItem :one
INSERT INTO inventory (item_name, category, unit, current_stock, minimum_stock, unit_price)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + inventoryColumns

type CreateInventoryItemParams struct {
	ItemName     string         `json:"item_name"`
	Category     pgtype.Text    `json:"category"`
	Unit         string         `json:"unit"`
	CurrentStock pgtype.Numeric `json:"current_stock"`
	MinimumStock pgtype.Numeric `json:"minimum_stock"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, createInventoryItem,
		arg.ItemName,
		arg.Category,
		arg.Unit,
		arg.CurrentStock,
		arg.MinimumStock,
		arg.UnitPrice,
	)
	return scanInventoryItem(row)
}

const getInventoryItem = `-- name: GetInventoryItem :one
SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1`

func (q *Queries) GetInventoryItem(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, getInventoryItem, id))
}

const getInventoryItemForUpdate = `-- name: GetInventoryItemForUpdate :one
SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1 FOR UPDATE`

func (q *Queries) GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, getInventoryItemForUpdate, id))
}

const listInventoryItems = `-- name: ListInventoryItems :many
SELECT ` + inventoryColumns + `
FROM inventory
WHERE ($1::text IS NULL OR category = $1)
  AND (NOT $2::boolean OR current_stock <= minimum_stock)
  AND ($3::text IS NULL OR item_name ILIKE '%' || $3 || '%')
ORDER BY item_name`

type ListInventoryItemsParams struct {
	Category     pgtype.Text `json:"category"`
	LowStockOnly bool        `json:"low_stock_only"`
	Search       pgtype.Text `json:"search"`
}

func (q *Queries) ListInventoryItems(ctx context.Context, arg ListInventoryItemsParams) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, listInventoryItems, arg.Category, arg.LowStockOnly, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInventoryItems(rows)
}

const listLowStockInventory = `-- name: ListLowStockInventory :many
SELECT ` + inventoryColumns + ` FROM inventory WHERE current_stock <= minimum_stock`

func (q *Queries) ListLowStockInventory(ctx context.Context) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, listLowStockInventory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInventoryItems(rows)
}

// Stock is never written here; it only moves through the ledger queries.
const updateInventoryItem = `-- name: UpdateInventoryItem :one
UPDATE inventory
SET item_name = COALESCE($2, item_name),
    category = COALESCE($3, category),
    unit = COALESCE($4, unit),
    minimum_stock = COALESCE($5, minimum_stock),
    unit_price = COALESCE($6, unit_price),
    updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type UpdateInventoryItemParams struct {
	ID           uuid.UUID      `json:"id"`
	ItemName     pgtype.Text    `json:"item_name"`
	Category     pgtype.Text    `json:"category"`
	Unit         pgtype.Text    `json:"unit"`
	MinimumStock pgtype.Numeric `json:"minimum_stock"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
}

func (q *Queries) UpdateInventoryItem(ctx context.Context, arg UpdateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, updateInventoryItem,
		arg.ID,
		arg.ItemName,
		arg.Category,
		arg.Unit,
		arg.MinimumStock,
		arg.UnitPrice,
	)
	return scanInventoryItem(row)
}

const deleteInventoryItem = `-- name: DeleteInventoryItem :execrows
DELETE FROM inventory WHERE id = $1`

func (q *Queries) DeleteInventoryItem(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteInventoryItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Delta is signed; stock is allowed to go negative.
const adjustInventoryStock = `-- name: AdjustInventoryStock :one
UPDATE inventory SET current_stock = current_stock + $2, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type AdjustInventoryStockParams struct {
	ID    uuid.UUID      `json:"id"`
	Delta pgtype.Numeric `json:"delta"`
}

func (q *Queries) AdjustInventoryStock(ctx context.Context, arg AdjustInventoryStockParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, adjustInventoryStock, arg.ID, arg.Delta))
}

const restockInventoryItem = `-- name: RestockInventoryItem :one
UPDATE inventory
SET current_stock = current_stock + $2, last_restock_date = CURRENT_DATE,
    restock_quantity = $2, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type RestockInventoryItemParams struct {
	ID       uuid.UUID      `json:"id"`
	Quantity pgtype.Numeric `json:"quantity"`
}

func (q *Queries) RestockInventoryItem(ctx context.Context, arg RestockInventoryItemParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, restockInventoryItem, arg.ID, arg.Quantity))
}

const createInventoryMovement = `-- name: CreateInventoryMovement :one
INSERT INTO inventory_movements (
    inventory_item_id, movement_type, quantity, unit, reference_type, reference_id, reason, cost, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, inventory_item_id, movement_type, quantity, unit, reference_type, reference_id,
    reason, cost, created_by, created_at`

type CreateInventoryMovementParams struct {
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	MovementType    string         `json:"movement_type"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	ReferenceType   string         `json:"reference_type"`
	ReferenceID     pgtype.UUID    `json:"reference_id"`
	Reason          pgtype.Text    `json:"reason"`
	Cost            pgtype.Numeric `json:"cost"`
	CreatedBy       pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreateInventoryMovement(ctx context.Context, arg CreateInventoryMovementParams) (InventoryMovement, error) {
	row := q.db.QueryRow(ctx, createInventoryMovement,
		arg.InventoryItemID,
		arg.MovementType,
		arg.Quantity,
		arg.Unit,
		arg.ReferenceType,
		arg.ReferenceID,
		arg.Reason,
		arg.Cost,
		arg.CreatedBy,
	)
	var i InventoryMovement
	err := row.Scan(
		&i.ID,
		&i.InventoryItemID,
		&i.MovementType,
		&i.Quantity,
		&i.Unit,
		&i.ReferenceType,
		&i.ReferenceID,
		&i.Reason,
		&i.Cost,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listInventoryMovements = `-- name: ListInventoryMovements :many
SELECT m.id, m.inventory_item_id, m.movement_type, m.quantity, m.unit, m.reference_type,
    m.reference_id, m.reason, m.cost, m.created_by, m.created_at,
    i.item_name, u.full_name AS created_by_name
FROM inventory_movements m
JOIN inventory i ON i.id = m.inventory_item_id
LEFT JOIN users u ON u.id = m.created_by
WHERE ($1::uuid IS NULL OR m.inventory_item_id = $1)
  AND ($2::text IS NULL OR m.movement_type = $2)
  AND ($3::date IS NULL OR m.created_at::date >= $3)
  AND ($4::date IS NULL OR m.created_at::date <= $4)
ORDER BY m.created_at DESC
LIMIT $5`

type ListInventoryMovementsParams struct {
	InventoryItemID pgtype.UUID `json:"inventory_item_id"`
	MovementType    pgtype.Text `json:"movement_type"`
	DateFrom        pgtype.Date `json:"date_from"`
	DateTo          pgtype.Date `json:"date_to"`
	Limit           int32       `json:"limit"`
}

type InventoryMovementRow struct {
	InventoryMovement
	ItemName      string      `json:"item_name"`
	CreatedByName pgtype.Text `json:"created_by_name"`
}

func (q *Queries) ListInventoryMovements(ctx context.Context, arg ListInventoryMovementsParams) ([]InventoryMovementRow, error) {
	rows, err := q.db.Query(ctx, listInventoryMovements,
		arg.InventoryItemID,
		arg.MovementType,
		arg.DateFrom,
		arg.DateTo,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryMovementRow{}
	for rows.Next() {
		var i InventoryMovementRow
		if err := rows.Scan(
			&i.ID,
			&i.InventoryItemID,
			&i.MovementType,
			&i.Quantity,
			&i.Unit,
			&i.ReferenceType,
			&i.ReferenceID,
			&i.Reason,
			&i.Cost,
			&i.CreatedBy,
			&i.CreatedAt,
			&i.ItemName,
			&i.CreatedByName,
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
