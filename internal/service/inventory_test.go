package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jwg-resto/pos-api/internal/audit"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

func TestStockStatus(t *testing.T) {
	tests := []struct {
		current, minimum, want string
	}{
		{"0", "5", enum.StockStatusOutOfStock},
		{"-2", "5", enum.StockStatusOutOfStock},
		{"5", "5", enum.StockStatusLowStock},
		{"3.5", "5", enum.StockStatusLowStock},
		{"5.001", "5", enum.StockStatusInStock},
	}
	for _, tt := range tests {
		if got := StockStatus(d(tt.current), d(tt.minimum)); got != tt.want {
			t.Errorf("StockStatus(%s, %s) = %s, want %s", tt.current, tt.minimum, got, tt.want)
		}
	}
}

func TestBuildLowStock(t *testing.T) {
	item := func(name, current, minimum string) database.InventoryItem {
		return database.InventoryItem{
			ID:           uuid.New(),
			ItemName:     name,
			CurrentStock: makeQuantity(current),
			MinimumStock: makeQuantity(minimum),
		}
	}
	got := BuildLowStock([]database.InventoryItem{
		item("Rice", "8", "10"),
		item("Egg", "1", "20"),
		item("Oil", "50", "10"),
		item("Salt", "0.5", "1"),
	})

	if len(got) != 3 {
		t.Fatalf("expected 3 low items, got %d", len(got))
	}
	order := []string{got[0].Item.ItemName, got[1].Item.ItemName, got[2].Item.ItemName}
	if order[0] != "Egg" || order[1] != "Salt" || order[2] != "Rice" {
		t.Errorf("order: %v", order)
	}
	egg := got[0]
	if !egg.Shortage.Equal(d("19")) || !egg.ReorderSuggestion.Equal(d("29")) {
		t.Errorf("egg: shortage %s reorder %s", egg.Shortage, egg.ReorderSuggestion)
	}
	if !got[2].ReorderSuggestion.Equal(d("3")) {
		t.Errorf("rice reorder: got %s", got[2].ReorderSuggestion)
	}
}

func TestInventoryCreate_LogsInitialStock(t *testing.T) {
	env := newTestEnv()
	actor := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	view, err := env.inventory.Create(context.Background(), CreateInventoryRequest{
		ItemName:     "Rice",
		Category:     "staples",
		Unit:         "kg",
		CurrentStock: d("25"),
		MinimumStock: d("5"),
		Actor:        actor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.StockStatus != enum.StockStatusInStock {
		t.Errorf("stock status: %s", view.StockStatus)
	}
	if len(env.db.movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(env.db.movements))
	}
	m := env.db.movements[0]
	if m.MovementType != enum.MovementTypeIn || m.ReferenceType != enum.ReferenceTypeManual || m.Reason.String != "Initial stock" {
		t.Errorf("movement: %+v", m)
	}
	if !m.CreatedBy.Valid || m.CreatedBy.Bytes != actor.UUID {
		t.Error("movement should record the actor")
	}

	if _, err := env.inventory.Create(context.Background(), CreateInventoryRequest{ItemName: "Salt", Unit: "kg"}); err != nil {
		t.Fatalf("zero stock: %v", err)
	}
	if len(env.db.movements) != 1 {
		t.Error("zero opening stock must not log a movement")
	}

	if _, err := env.inventory.Create(context.Background(), CreateInventoryRequest{ItemName: " ", Unit: "kg"}); !errors.Is(err, ErrInvalidInventoryItem) {
		t.Errorf("expected ErrInvalidInventoryItem, got %v", err)
	}
}

func TestInventoryAdjust(t *testing.T) {
	env := newTestEnv()
	rice := env.db.addInventory("Rice", "kg", "10", "5")

	view, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: rice, Quantity: d("-7.5"), Reason: "spoiled"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numericEquals(view.Item.CurrentStock, "2.5") || view.StockStatus != enum.StockStatusLowStock {
		t.Errorf("after adjust: %s %s", numericToDecimal(view.Item.CurrentStock), view.StockStatus)
	}
	m := env.db.movements[len(env.db.movements)-1]
	if m.MovementType != enum.MovementTypeOut || !numericEquals(m.Quantity, "7.5") {
		t.Errorf("movement: %s %s", m.MovementType, numericToDecimal(m.Quantity))
	}
	if got := env.rec.actions(); len(got) != 1 || got[0] != audit.ActionAdjustStock {
		t.Errorf("audit: %v", got)
	}

	if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: rice, Quantity: decimal.Zero, Reason: "x"}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: rice, Quantity: d("1")}); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}
	if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: uuid.New(), Quantity: d("1"), Reason: "x"}); !errors.Is(err, ErrInventoryItemNotFound) {
		t.Errorf("expected ErrInventoryItemNotFound, got %v", err)
	}
}

func TestInventoryRestock(t *testing.T) {
	env := newTestEnv()
	egg := env.db.addInventory("Egg", "pcs", "4", "20")

	view, err := env.inventory.Restock(context.Background(), RestockRequest{
		ItemID:   egg,
		Quantity: d("60"),
		Cost:     decimal.NewNullDecimal(d("120000")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numericEquals(view.Item.CurrentStock, "64") || !numericEquals(view.Item.RestockQuantity, "60") || !view.Item.LastRestockDate.Valid {
		t.Errorf("item: %+v", view.Item)
	}
	m := env.db.movements[len(env.db.movements)-1]
	if m.ReferenceType != enum.ReferenceTypePurchase || !numericEquals(m.Cost, "120000") || m.Reason.String != "Restock" {
		t.Errorf("movement: %+v", m)
	}

	if _, err := env.inventory.Restock(context.Background(), RestockRequest{ItemID: egg, Quantity: d("-1")}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestInventoryGet_RecentMovements(t *testing.T) {
	env := newTestEnv()
	egg := env.db.addInventory("Egg", "pcs", "100", "20")
	for i := 0; i < 25; i++ {
		if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: egg, Quantity: d("-1"), Reason: "breakage"}); err != nil {
			t.Fatalf("adjust: %v", err)
		}
	}

	detail, err := env.inventory.Get(context.Background(), egg)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.RecentMovements) != recentMovementsLimit {
		t.Errorf("expected %d movements, got %d", recentMovementsLimit, len(detail.RecentMovements))
	}
	if !numericEquals(detail.Item.CurrentStock, "75") {
		t.Errorf("stock: %s", numericToDecimal(detail.Item.CurrentStock))
	}

	if _, err := env.inventory.Get(context.Background(), uuid.New()); !errors.Is(err, ErrInventoryItemNotFound) {
		t.Errorf("expected ErrInventoryItemNotFound, got %v", err)
	}
}

func TestInventoryListAndLowStock(t *testing.T) {
	env := newTestEnv()
	env.db.addInventory("Egg", "pcs", "2", "20")
	env.db.addInventory("Rice", "kg", "50", "10")
	env.db.addInventory("Brown Rice", "kg", "0", "5")

	all, err := env.inventory.List(context.Background(), InventoryFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list: %d err %v", len(all), err)
	}
	rice, _ := env.inventory.List(context.Background(), InventoryFilter{Search: "rice"})
	if len(rice) != 2 {
		t.Errorf("search: got %d", len(rice))
	}
	low, _ := env.inventory.List(context.Background(), InventoryFilter{LowStockOnly: true})
	if len(low) != 2 {
		t.Errorf("low only: got %d", len(low))
	}

	report, err := env.inventory.LowStock(context.Background())
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(report) != 2 || report[0].Item.ItemName != "Brown Rice" || report[0].StockStatus != enum.StockStatusOutOfStock {
		t.Errorf("report: %+v", report)
	}
}

func TestInventoryMovements_Filter(t *testing.T) {
	env := newTestEnv()
	egg := env.db.addInventory("Egg", "pcs", "10", "5")
	if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: egg, Quantity: d("5"), Reason: "found"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: egg, Quantity: d("-2"), Reason: "broke"}); err != nil {
		t.Fatal(err)
	}

	out, err := env.inventory.Movements(context.Background(), MovementFilter{MovementType: enum.MovementTypeOut})
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(out) != 1 || out[0].Reason.String != "broke" || out[0].ItemName != "Egg" {
		t.Errorf("movements: %+v", out)
	}
	if _, err := env.inventory.Movements(context.Background(), MovementFilter{MovementType: "sideways"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSaveRecipe_ReplacesIngredients(t *testing.T) {
	env := newTestEnv()
	nasi := env.db.addMenu("Nasi Goreng", "25000", true)
	egg := env.db.addInventory("Egg", "pcs", "100", "10")
	rice := env.db.addInventory("Rice", "kg", "50", "10")
	env.db.addRecipe(nasi, egg, "5")

	rows, err := env.inventory.SaveRecipe(context.Background(), nasi, []RecipeIngredientInput{
		{InventoryItemID: egg, Quantity: d("1")},
		{InventoryItemID: rice, Quantity: d("0.2"), Unit: "kg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || len(env.db.recipes) != 2 {
		t.Fatalf("expected 2 ingredients, got %d rows / %d stored", len(rows), len(env.db.recipes))
	}
	for _, r := range rows {
		if r.InventoryItemID == egg && (!numericEquals(r.Quantity, "1") || r.Unit != "pcs") {
			t.Errorf("egg ingredient: %+v", r)
		}
	}

	tests := []struct {
		name   string
		menu   uuid.UUID
		inputs []RecipeIngredientInput
		want   error
	}{
		{"unknown menu item", uuid.New(), []RecipeIngredientInput{{InventoryItemID: egg, Quantity: d("1")}}, ErrItemNotFound},
		{"unknown inventory item", nasi, []RecipeIngredientInput{{InventoryItemID: uuid.New(), Quantity: d("1")}}, ErrInventoryItemNotFound},
		{"zero quantity", nasi, []RecipeIngredientInput{{InventoryItemID: egg, Quantity: d("0")}}, ErrInvalidRecipe},
		{"duplicate", nasi, []RecipeIngredientInput{{InventoryItemID: egg, Quantity: d("1")}, {InventoryItemID: egg, Quantity: d("2")}}, ErrInvalidRecipe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.inventory.SaveRecipe(context.Background(), tt.menu, tt.inputs); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(env.db.recipes) != 2 {
				t.Fatalf("failed save must keep the old recipe, got %d", len(env.db.recipes))
			}
		})
	}
}

func TestInventoryUpdate_LeavesStockAlone(t *testing.T) {
	env := newTestEnv()
	id := env.db.addInventory("Gula", "kg", "4", "2")

	name, category := " Gula Pasir ", "Bahan Pokok"
	view, err := env.inventory.Update(context.Background(), UpdateInventoryRequest{
		ID:           id,
		ItemName:     &name,
		Category:     &category,
		MinimumStock: decimal.NewNullDecimal(decimal.NewFromInt(5)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Item.ItemName != "Gula Pasir" || view.Item.Category.String != "Bahan Pokok" {
		t.Errorf("item: %+v", view.Item)
	}
	if view.Item.Unit != "kg" {
		t.Errorf("unit changed to %q", view.Item.Unit)
	}
	if !env.db.stock(id).Equal(decimal.NewFromInt(4)) {
		t.Errorf("stock: got %s, want 4", env.db.stock(id))
	}
	// 4 against a new minimum of 5
	if view.StockStatus != enum.StockStatusLowStock {
		t.Errorf("status: got %s", view.StockStatus)
	}
	if len(env.db.movements) != 0 {
		t.Error("update must not touch the ledger")
	}
	if acts := env.rec.actions(); len(acts) != 1 || acts[0] != audit.ActionUpdateInventory {
		t.Errorf("audit: %v", acts)
	}

	blank := "  "
	if _, err := env.inventory.Update(context.Background(), UpdateInventoryRequest{ID: id, Unit: &blank}); !errors.Is(err, ErrInvalidInventoryItem) {
		t.Errorf("blank unit: expected ErrInvalidInventoryItem, got %v", err)
	}
	if _, err := env.inventory.Update(context.Background(), UpdateInventoryRequest{
		ID:           id,
		MinimumStock: decimal.NewNullDecimal(decimal.NewFromInt(-1)),
	}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative minimum: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := env.inventory.Update(context.Background(), UpdateInventoryRequest{ID: uuid.New(), Category: &category}); !errors.Is(err, ErrInventoryItemNotFound) {
		t.Errorf("missing: expected ErrInventoryItemNotFound, got %v", err)
	}
}

func TestInventoryDelete(t *testing.T) {
	env := newTestEnv()
	nasi := env.db.addMenu("Nasi Goreng", "25000", true)
	beras := env.db.addInventory("Beras", "kg", "10", "2")
	garam := env.db.addInventory("Garam", "kg", "1", "0")
	env.db.addRecipe(nasi, beras, "0.2")

	if _, err := env.inventory.Adjust(context.Background(), AdjustStockRequest{ItemID: garam, Quantity: decimal.NewFromInt(1), Reason: "found"}); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	if err := env.inventory.Delete(context.Background(), beras, uuid.NullUUID{}); !errors.Is(err, ErrIngredientInUse) {
		t.Errorf("in recipe: expected ErrIngredientInUse, got %v", err)
	}
	if _, ok := env.db.inventory[beras]; !ok {
		t.Error("recipe ingredient was deleted")
	}

	if err := env.inventory.Delete(context.Background(), garam, uuid.NullUUID{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := env.db.inventory[garam]; ok {
		t.Error("item still present")
	}
	for _, m := range env.db.movements {
		if m.InventoryItemID == garam {
			t.Error("movements of deleted item kept")
		}
	}
	acts := env.rec.actions()
	if acts[len(acts)-1] != audit.ActionDeleteInventory {
		t.Errorf("audit: %v", acts)
	}

	if err := env.inventory.Delete(context.Background(), garam, uuid.NullUUID{}); !errors.Is(err, ErrInventoryItemNotFound) {
		t.Errorf("second delete: expected ErrInventoryItemNotFound, got %v", err)
	}
}
