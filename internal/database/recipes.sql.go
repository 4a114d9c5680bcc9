package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listRecipeIngredients = `-- name: ListRecipeIngredients :many
SELECT r.id, r.menu_item_id, r.inventory_item_id, r.quantity, r.unit, r.notes,
    i.item_name, i.current_stock, i.unit AS stock_unit
FROM recipe_ingredients r
JOIN inventory i ON i.id = r.inventory_item_id
WHERE r.menu_item_id = $1
ORDER BY i.item_name`

type RecipeIngredientRow struct {
	RecipeIngredient
	ItemName     string         `json:"item_name"`
	CurrentStock pgtype.Numeric `json:"current_stock"`
	StockUnit    string         `json:"stock_unit"`
}

func (q *Queries) ListRecipeIngredients(ctx context.Context, menuItemID uuid.UUID) ([]RecipeIngredientRow, error) {
	rows, err := q.db.Query(ctx, listRecipeIngredients, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RecipeIngredientRow{}
	for rows.Next() {
		var i RecipeIngredientRow
		if err := rows.Scan(
			&i.ID,
			&i.MenuItemID,
			&i.InventoryItemID,
			&i.Quantity,
			&i.Unit,
			&i.Notes,
			&i.ItemName,
			&i.CurrentStock,
			&i.StockUnit,
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

const countRecipesUsingInventoryItem = `-- name: CountRecipesUsingInventoryItem :one
SELECT count(*) FROM recipe_ingredients WHERE inventory_item_id = $1`

func (q *Queries) CountRecipesUsingInventoryItem(ctx context.Context, inventoryItemID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countRecipesUsingInventoryItem, inventoryItemID).Scan(&count)
	return count, err
}

const deleteRecipeIngredients = `-- name: DeleteRecipeIngredients :exec
DELETE FROM recipe_ingredients WHERE menu_item_id = $1`

func (q *Queries) DeleteRecipeIngredients(ctx context.Context, menuItemID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteRecipeIngredients, menuItemID)
	return err
}

const createRecipeIngredient = `-- name: CreateRecipeIngredient :one
INSERT INTO recipe_ingredients (menu_item_id, inventory_item_id, quantity, unit, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, menu_item_id, inventory_item_id, quantity, unit, notes`

type CreateRecipeIngredientParams struct {
	MenuItemID      uuid.UUID      `json:"menu_item_id"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	Notes           pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateRecipeIngredient(ctx context.Context, arg CreateRecipeIngredientParams) (RecipeIngredient, error) {
	row := q.db.QueryRow(ctx, createRecipeIngredient,
		arg.MenuItemID,
		arg.InventoryItemID,
		arg.Quantity,
		arg.Unit,
		arg.Notes,
	)
	var i RecipeIngredient
	err := row.Scan(
		&i.ID,
		&i.MenuItemID,
		&i.InventoryItemID,
		&i.Quantity,
		&i.Unit,
		&i.Notes,
	)
	return i, err
}
