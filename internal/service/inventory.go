package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jwg-resto/pos-api/internal/audit"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

const recentMovementsLimit = 20

var reorderFactor = decimal.NewFromFloat(1.5)

// LedgerStore is what stock deduction needs. Satisfied by *database.Queries.
type LedgerStore interface {
	ListRecipeIngredients(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeIngredientRow, error)
	AdjustInventoryStock(ctx context.Context, arg database.AdjustInventoryStockParams) (database.InventoryItem, error)
	CreateInventoryMovement(ctx context.Context, arg database.CreateInventoryMovementParams) (database.InventoryMovement, error)
}

// deductForMenuItem consumes the recipe of menuItemID for quantity units sold.
// Stock is not clamped; negative stock is the over-deduction signal. Every
// decrement is paired with one auto_deduct movement referencing the order.
func deductForMenuItem(ctx context.Context, store LedgerStore, menuItemID uuid.UUID, quantity int32, orderID uuid.UUID, actor pgtype.UUID) error {
	ingredients, err := store.ListRecipeIngredients(ctx, menuItemID)
	if err != nil {
		return fmt.Errorf("%w: load recipe: %w", ErrInventoryDeductionFailed, err)
	}

	qty := decimal.NewFromInt32(quantity)
	for _, ing := range ingredients {
		amount := numericToDecimal(ing.Quantity).Mul(qty)

		_, err := store.AdjustInventoryStock(ctx, database.AdjustInventoryStockParams{
			ID:    ing.InventoryItemID,
			Delta: quantityToNumeric(amount.Neg()),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = ErrInventoryItemNotFound
			}
			return fmt.Errorf("%w: %s: %w", ErrInventoryDeductionFailed, ing.ItemName, err)
		}

		_, err = store.CreateInventoryMovement(ctx, database.CreateInventoryMovementParams{
			InventoryItemID: ing.InventoryItemID,
			MovementType:    enum.MovementTypeOut,
			Quantity:        quantityToNumeric(amount),
			Unit:            ing.Unit,
			ReferenceType:   enum.ReferenceTypeAutoDeduct,
			ReferenceID:     pgtype.UUID{Bytes: orderID, Valid: true},
			Reason:          pgtype.Text{String: "Auto-deducted for menu item " + menuItemID.String(), Valid: true},
			CreatedBy:       actor,
		})
		if err != nil {
			return fmt.Errorf("%w: %s: log movement: %w", ErrInventoryDeductionFailed, ing.ItemName, err)
		}
	}
	return nil
}

// StockStatus labels a stock level against its threshold.
func StockStatus(current, minimum decimal.Decimal) string {
	switch {
	case !current.IsPositive():
		return enum.StockStatusOutOfStock
	case current.LessThanOrEqual(minimum):
		return enum.StockStatusLowStock
	}
	return enum.StockStatusInStock
}

// LowStockItem is an inventory row at or under its minimum.
type LowStockItem struct {
	Item              database.InventoryItem
	StockStatus       string
	Shortage          decimal.Decimal
	ReorderSuggestion decimal.Decimal
	ratio             decimal.Decimal
}

// BuildLowStock filters items to those with current <= minimum and orders
// them most depleted first by current/minimum. Items with no minimum are
// ranked by raw stock. The reorder suggestion is ceil(shortage * 1.5).
func BuildLowStock(items []database.InventoryItem) []LowStockItem {
	out := []LowStockItem{}
	for _, it := range items {
		current := numericToDecimal(it.CurrentStock)
		minimum := numericToDecimal(it.MinimumStock)
		if current.GreaterThan(minimum) {
			continue
		}

		ratio := current
		if minimum.IsPositive() {
			ratio = current.Div(minimum)
		}
		shortage := minimum.Sub(current)
		out = append(out, LowStockItem{
			Item:              it,
			StockStatus:       StockStatus(current, minimum),
			Shortage:          shortage,
			ReorderSuggestion: shortage.Mul(reorderFactor).Ceil(),
			ratio:             ratio,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ratio.LessThan(out[j].ratio)
	})
	return out
}

// InventoryStore is satisfied by *database.Queries.
type InventoryStore interface {
	LedgerStore
	GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (database.GetMenuItemForOrderRow, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	ListInventoryItems(ctx context.Context, arg database.ListInventoryItemsParams) ([]database.InventoryItem, error)
	ListLowStockInventory(ctx context.Context) ([]database.InventoryItem, error)
	RestockInventoryItem(ctx context.Context, arg database.RestockInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) (int64, error)
	CountRecipesUsingInventoryItem(ctx context.Context, inventoryItemID uuid.UUID) (int64, error)
	ListInventoryMovements(ctx context.Context, arg database.ListInventoryMovementsParams) ([]database.InventoryMovementRow, error)
	DeleteRecipeIngredients(ctx context.Context, menuItemID uuid.UUID) error
	CreateRecipeIngredient(ctx context.Context, arg database.CreateRecipeIngredientParams) (database.RecipeIngredient, error)
}

// NewInventoryStore creates an InventoryStore from a DBTX (pool or tx).
type NewInventoryStore func(db database.DBTX) InventoryStore

// ActivityRecorder receives audit events after a successful commit.
// Satisfied by *audit.Recorder.
type ActivityRecorder interface {
	Record(ctx context.Context, e audit.Event)
}

// InventoryService is the inventory ledger and recipe index.
type InventoryService struct {
	pool     TxBeginner
	newStore NewInventoryStore
	audit    ActivityRecorder
}

func NewInventoryService(pool TxBeginner, newStore NewInventoryStore, rec ActivityRecorder) *InventoryService {
	return &InventoryService{pool: pool, newStore: newStore, audit: rec}
}

func (s *InventoryService) withTx(ctx context.Context, fn func(store InventoryStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(s.newStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InventoryView is an inventory row with its derived stock status.
type InventoryView struct {
	Item        database.InventoryItem
	StockStatus string
}

// InventoryDetail adds the most recent movements.
type InventoryDetail struct {
	InventoryView
	RecentMovements []database.InventoryMovementRow
}

func viewOf(it database.InventoryItem) InventoryView {
	return InventoryView{
		Item:        it,
		StockStatus: StockStatus(numericToDecimal(it.CurrentStock), numericToDecimal(it.MinimumStock)),
	}
}

type InventoryFilter struct {
	Category     string
	LowStockOnly bool
	Search       string
}

func (s *InventoryService) List(ctx context.Context, f InventoryFilter) ([]InventoryView, error) {
	var out []InventoryView
	err := s.withTx(ctx, func(store InventoryStore) error {
		items, err := store.ListInventoryItems(ctx, database.ListInventoryItemsParams{
			Category:     optionalText(f.Category),
			LowStockOnly: f.LowStockOnly,
			Search:       optionalText(f.Search),
		})
		if err != nil {
			return fmt.Errorf("list inventory: %w", err)
		}
		out = make([]InventoryView, len(items))
		for i, it := range items {
			out[i] = viewOf(it)
		}
		return nil
	})
	return out, err
}

func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*InventoryDetail, error) {
	var out *InventoryDetail
	err := s.withTx(ctx, func(store InventoryStore) error {
		it, err := store.GetInventoryItem(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInventoryItemNotFound
			}
			return fmt.Errorf("get inventory item: %w", err)
		}
		moves, err := store.ListInventoryMovements(ctx, database.ListInventoryMovementsParams{
			InventoryItemID: pgtype.UUID{Bytes: id, Valid: true},
			Limit:           recentMovementsLimit,
		})
		if err != nil {
			return fmt.Errorf("list movements: %w", err)
		}
		out = &InventoryDetail{InventoryView: viewOf(it), RecentMovements: moves}
		return nil
	})
	return out, err
}

type CreateInventoryRequest struct {
	ItemName     string
	Category     string
	Unit         string
	CurrentStock decimal.Decimal
	MinimumStock decimal.Decimal
	UnitPrice    decimal.NullDecimal
	Actor        uuid.NullUUID
}

// Create inserts an item. A positive opening stock is logged as an
// "Initial stock" manual movement.
func (s *InventoryService) Create(ctx context.Context, req CreateInventoryRequest) (*InventoryView, error) {
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.ItemName == "" || req.Unit == "" {
		return nil, ErrInvalidInventoryItem
	}
	if req.CurrentStock.IsNegative() || req.MinimumStock.IsNegative() {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrInvalidAmount)
	}

	var out InventoryView
	err := s.withTx(ctx, func(store InventoryStore) error {
		unitPrice := pgtype.Numeric{}
		if req.UnitPrice.Valid {
			unitPrice = decimalToNumeric(req.UnitPrice.Decimal)
		}
		it, err := store.CreateInventoryItem(ctx, database.CreateInventoryItemParams{
			ItemName:     req.ItemName,
			Category:     optionalText(req.Category),
			Unit:         req.Unit,
			CurrentStock: quantityToNumeric(req.CurrentStock),
			MinimumStock: quantityToNumeric(req.MinimumStock),
			UnitPrice:    unitPrice,
		})
		if err != nil {
			return fmt.Errorf("create inventory item: %w", err)
		}

		if req.CurrentStock.IsPositive() {
			_, err = store.CreateInventoryMovement(ctx, database.CreateInventoryMovementParams{
				InventoryItemID: it.ID,
				MovementType:    enum.MovementTypeIn,
				Quantity:        quantityToNumeric(req.CurrentStock),
				Unit:            it.Unit,
				ReferenceType:   enum.ReferenceTypeManual,
				Reason:          pgtype.Text{String: "Initial stock", Valid: true},
				CreatedBy:       actorUUID(req.Actor),
			})
			if err != nil {
				return fmt.Errorf("log initial stock: %w", err)
			}
		}
		out = viewOf(it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInventoryRequest changes item attributes. Nil or invalid fields are
// left as they are; current stock is only changed through the ledger.
type UpdateInventoryRequest struct {
	ID           uuid.UUID
	ItemName     *string
	Category     *string
	Unit         *string
	MinimumStock decimal.NullDecimal
	UnitPrice    decimal.NullDecimal
	Actor        uuid.NullUUID
}

func (s *InventoryService) Update(ctx context.Context, req UpdateInventoryRequest) (*InventoryView, error) {
	params := database.UpdateInventoryItemParams{ID: req.ID}
	changed := []string{}
	if req.ItemName != nil {
		name := strings.TrimSpace(*req.ItemName)
		if name == "" {
			return nil, ErrInvalidInventoryItem
		}
		params.ItemName = pgtype.Text{String: name, Valid: true}
		changed = append(changed, "item_name")
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return nil, ErrInvalidInventoryItem
		}
		params.Unit = pgtype.Text{String: unit, Valid: true}
		changed = append(changed, "unit")
	}
	if req.Category != nil {
		params.Category = pgtype.Text{String: strings.TrimSpace(*req.Category), Valid: true}
		changed = append(changed, "category")
	}
	if req.MinimumStock.Valid {
		if req.MinimumStock.Decimal.IsNegative() {
			return nil, fmt.Errorf("%w: minimum_stock must be >= 0", ErrInvalidAmount)
		}
		params.MinimumStock = quantityToNumeric(req.MinimumStock.Decimal)
		changed = append(changed, "minimum_stock")
	}
	if req.UnitPrice.Valid {
		if req.UnitPrice.Decimal.IsNegative() {
			return nil, fmt.Errorf("%w: unit_price must be >= 0", ErrInvalidAmount)
		}
		params.UnitPrice = decimalToNumeric(req.UnitPrice.Decimal)
		changed = append(changed, "unit_price")
	}

	var out InventoryView
	err := s.withTx(ctx, func(store InventoryStore) error {
		it, err := store.UpdateInventoryItem(ctx, params)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInventoryItemNotFound
			}
			return fmt.Errorf("update inventory item: %w", err)
		}
		out = viewOf(it)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionUpdateInventory,
		EntityType: audit.EntityInventory,
		EntityID:   req.ID,
		ActorID:    req.Actor,
		Details:    map[string]interface{}{"fields": changed},
	})
	return &out, nil
}

// Delete removes an item and its movements. Items still used by a recipe
// are kept.
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	var name string
	err := s.withTx(ctx, func(store InventoryStore) error {
		it, err := store.GetInventoryItemForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInventoryItemNotFound
			}
			return fmt.Errorf("get inventory item: %w", err)
		}
		name = it.ItemName

		used, err := store.CountRecipesUsingInventoryItem(ctx, id)
		if err != nil {
			return fmt.Errorf("count recipes: %w", err)
		}
		if used > 0 {
			return fmt.Errorf("%w: %s is in %d recipe(s)", ErrIngredientInUse, it.ItemName, used)
		}

		if _, err := store.DeleteInventoryItem(ctx, id); err != nil {
			return fmt.Errorf("delete inventory item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionDeleteInventory,
		EntityType: audit.EntityInventory,
		EntityID:   id,
		ActorID:    actor,
		Details:    map[string]interface{}{"item_name": name},
	})
	return nil
}

type AdjustStockRequest struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal // signed
	Reason   string
	Actor    uuid.NullUUID
}

// Adjust applies a manual signed correction and logs it as in or out with
// the absolute quantity.
func (s *InventoryService) Adjust(ctx context.Context, req AdjustStockRequest) (*InventoryView, error) {
	if req.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: quantity must be non-zero", ErrInvalidAmount)
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}

	direction := enum.MovementTypeIn
	if req.Quantity.IsNegative() {
		direction = enum.MovementTypeOut
	}

	var out InventoryView
	err := s.withTx(ctx, func(store InventoryStore) error {
		it, err := store.AdjustInventoryStock(ctx, database.AdjustInventoryStockParams{
			ID:    req.ItemID,
			Delta: quantityToNumeric(req.Quantity),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInventoryItemNotFound
			}
			return fmt.Errorf("adjust stock: %w", err)
		}
		_, err = store.CreateInventoryMovement(ctx, database.CreateInventoryMovementParams{
			InventoryItemID: it.ID,
			MovementType:    direction,
			Quantity:        quantityToNumeric(req.Quantity.Abs()),
			Unit:            it.Unit,
			ReferenceType:   enum.ReferenceTypeManual,
			Reason:          pgtype.Text{String: req.Reason, Valid: true},
			CreatedBy:       actorUUID(req.Actor),
		})
		if err != nil {
			return fmt.Errorf("log adjustment: %w", err)
		}
		out = viewOf(it)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionAdjustStock,
		EntityType: audit.EntityInventory,
		EntityID:   req.ItemID,
		ActorID:    req.Actor,
		Details: map[string]interface{}{
			"quantity": req.Quantity.String(),
			"reason":   req.Reason,
		},
	})
	return &out, nil
}

type RestockRequest struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
	Cost     decimal.NullDecimal
	Notes    string
	Actor    uuid.NullUUID
}

// Restock records a purchase: stock in, last restock date and quantity updated.
func (s *InventoryService) Restock(ctx context.Context, req RestockRequest) (*InventoryView, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrInvalidAmount)
	}
	if req.Cost.Valid && req.Cost.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: cost must be >= 0", ErrInvalidAmount)
	}
	reason := strings.TrimSpace(req.Notes)
	if reason == "" {
		reason = "Restock"
	}

	var out InventoryView
	err := s.withTx(ctx, func(store InventoryStore) error {
		it, err := store.RestockInventoryItem(ctx, database.RestockInventoryItemParams{
			ID:       req.ItemID,
			Quantity: quantityToNumeric(req.Quantity),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInventoryItemNotFound
			}
			return fmt.Errorf("restock: %w", err)
		}
		cost := pgtype.Numeric{}
		if req.Cost.Valid {
			cost = decimalToNumeric(req.Cost.Decimal)
		}
		_, err = store.CreateInventoryMovement(ctx, database.CreateInventoryMovementParams{
			InventoryItemID: it.ID,
			MovementType:    enum.MovementTypeIn,
			Quantity:        quantityToNumeric(req.Quantity),
			Unit:            it.Unit,
			ReferenceType:   enum.ReferenceTypePurchase,
			Reason:          pgtype.Text{String: reason, Valid: true},
			Cost:            cost,
			CreatedBy:       actorUUID(req.Actor),
		})
		if err != nil {
			return fmt.Errorf("log restock: %w", err)
		}
		out = viewOf(it)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionRestock,
		EntityType: audit.EntityInventory,
		EntityID:   req.ItemID,
		ActorID:    req.Actor,
		Details:    map[string]interface{}{"quantity": req.Quantity.String()},
	})
	return &out, nil
}

func (s *InventoryService) LowStock(ctx context.Context) ([]LowStockItem, error) {
	var out []LowStockItem
	err := s.withTx(ctx, func(store InventoryStore) error {
		items, err := store.ListLowStockInventory(ctx)
		if err != nil {
			return fmt.Errorf("list low stock: %w", err)
		}
		out = BuildLowStock(items)
		return nil
	})
	return out, err
}

type MovementFilter struct {
	ItemID       uuid.NullUUID
	MovementType string
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int32
}

func (s *InventoryService) Movements(ctx context.Context, f MovementFilter) ([]database.InventoryMovementRow, error) {
	if f.MovementType != "" && f.MovementType != enum.MovementTypeIn && f.MovementType != enum.MovementTypeOut {
		return nil, fmt.Errorf("%w: type must be in or out", ErrInvalidStatus)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	var out []database.InventoryMovementRow
	err := s.withTx(ctx, func(store InventoryStore) error {
		rows, err := store.ListInventoryMovements(ctx, database.ListInventoryMovementsParams{
			InventoryItemID: pgtype.UUID{Bytes: f.ItemID.UUID, Valid: f.ItemID.Valid},
			MovementType:    optionalText(f.MovementType),
			DateFrom:        optionalDate(f.DateFrom),
			DateTo:          optionalDate(f.DateTo),
			Limit:           f.Limit,
		})
		if err != nil {
			return fmt.Errorf("list movements: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}

// Recipe returns the ingredients one unit of a menu item consumes.
func (s *InventoryService) Recipe(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeIngredientRow, error) {
	var out []database.RecipeIngredientRow
	err := s.withTx(ctx, func(store InventoryStore) error {
		rows, err := store.ListRecipeIngredients(ctx, menuItemID)
		if err != nil {
			return fmt.Errorf("list recipe: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}

type RecipeIngredientInput struct {
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
	Unit            string
	Notes           string
}

// SaveRecipe replaces the recipe of a menu item.
func (s *InventoryService) SaveRecipe(ctx context.Context, menuItemID uuid.UUID, ingredients []RecipeIngredientInput) ([]database.RecipeIngredientRow, error) {
	seen := make(map[uuid.UUID]bool, len(ingredients))
	for i, ing := range ingredients {
		if !ing.Quantity.IsPositive() {
			return nil, fmt.Errorf("ingredient[%d]: %w: quantity must be > 0", i, ErrInvalidRecipe)
		}
		if seen[ing.InventoryItemID] {
			return nil, fmt.Errorf("ingredient[%d]: %w: duplicate inventory item", i, ErrInvalidRecipe)
		}
		seen[ing.InventoryItemID] = true
	}

	var out []database.RecipeIngredientRow
	err := s.withTx(ctx, func(store InventoryStore) error {
		if _, err := store.GetMenuItemForOrder(ctx, menuItemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("get menu item: %w", err)
		}
		if err := store.DeleteRecipeIngredients(ctx, menuItemID); err != nil {
			return fmt.Errorf("clear recipe: %w", err)
		}
		for i, ing := range ingredients {
			it, err := store.GetInventoryItem(ctx, ing.InventoryItemID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("ingredient[%d]: %w", i, ErrInventoryItemNotFound)
				}
				return fmt.Errorf("ingredient[%d]: get inventory item: %w", i, err)
			}
			unit := strings.TrimSpace(ing.Unit)
			if unit == "" {
				unit = it.Unit
			}
			_, err = store.CreateRecipeIngredient(ctx, database.CreateRecipeIngredientParams{
				MenuItemID:      menuItemID,
				InventoryItemID: ing.InventoryItemID,
				Quantity:        quantityToNumeric(ing.Quantity),
				Unit:            unit,
				Notes:           optionalText(ing.Notes),
			})
			if err != nil {
				return fmt.Errorf("ingredient[%d]: create: %w", i, err)
			}
		}
		rows, err := store.ListRecipeIngredients(ctx, menuItemID)
		if err != nil {
			return fmt.Errorf("list recipe: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optionalDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func actorUUID(actor uuid.NullUUID) pgtype.UUID {
	return pgtype.UUID{Bytes: actor.UUID, Valid: actor.Valid}
}
