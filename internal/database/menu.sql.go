package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getMenuItemForOrder = `-- name: GetMenuItemForOrder :one
SELECT id, name, price, is_available FROM menu_items WHERE id = $1`

type GetMenuItemForOrderRow struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Price       pgtype.Numeric `json:"price"`
	IsAvailable bool           `json:"is_available"`
}

func (q *Queries) GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (GetMenuItemForOrderRow, error) {
	row := q.db.QueryRow(ctx, getMenuItemForOrder, id)
	var i GetMenuItemForOrderRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.IsAvailable,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (name, price, is_available, preparation_time)
VALUES ($1, $2, $3, $4)
RETURNING id, name, price, is_available, preparation_time, created_at`

type CreateMenuItemParams struct {
	Name            string         `json:"name"`
	Price           pgtype.Numeric `json:"price"`
	IsAvailable     bool           `json:"is_available"`
	PreparationTime int32          `json:"preparation_time"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Price,
		arg.IsAvailable,
		arg.PreparationTime,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.IsAvailable,
		&i.PreparationTime,
		&i.CreatedAt,
	)
	return i, err
}
