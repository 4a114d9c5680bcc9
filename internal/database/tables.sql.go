package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, table_number, capacity, status, current_order_id, updated_at`

func scanTable(row pgx.Row) (Table, error) {
	var i Table
	err := row.Scan(
		&i.ID,
		&i.TableNumber,
		&i.Capacity,
		&i.Status,
		&i.CurrentOrderID,
		&i.UpdatedAt,
	)
	return i, err
}

const getTableForUpdate = `-- name: GetTableForUpdate :one
SELECT ` + tableColumns + ` FROM tables WHERE id = $1 FOR UPDATE`

func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTableForUpdate, id))
}

const occupyTable = `-- name: OccupyTable :one
UPDATE tables SET status = 'occupied', current_order_id = $2, updated_at = now()
WHERE id = $1
RETURNING ` + tableColumns

type OccupyTableParams struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
}

func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, occupyTable, arg.ID, arg.OrderID))
}

const releaseTable = `-- name: ReleaseTable :one
UPDATE tables SET status = 'available', current_order_id = NULL, updated_at = now()
WHERE id = $1
RETURNING ` + tableColumns

func (q *Queries) ReleaseTable(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, releaseTable, id))
}

const markTableCleaning = `-- name: MarkTableCleaning :one
UPDATE tables SET status = 'cleaning', current_order_id = NULL, updated_at = now()
WHERE id = $1
RETURNING ` + tableColumns

func (q *Queries) MarkTableCleaning(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, markTableCleaning, id))
}

const createTable = `-- name: CreateTable :one
INSERT INTO tables (table_number, capacity) VALUES ($1, $2)
RETURNING ` + tableColumns

type CreateTableParams struct {
	TableNumber string `json:"table_number"`
	Capacity    int32  `json:"capacity"`
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, createTable, arg.TableNumber, arg.Capacity))
}
