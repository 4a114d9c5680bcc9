package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/middleware"
	"github.com/jwg-resto/pos-api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// InventoryServicer defines the ledger operations needed by inventory handlers.
// Satisfied by *service.InventoryService.
type InventoryServicer interface {
	List(ctx context.Context, f service.InventoryFilter) ([]service.InventoryView, error)
	Get(ctx context.Context, id uuid.UUID) (*service.InventoryDetail, error)
	Create(ctx context.Context, req service.CreateInventoryRequest) (*service.InventoryView, error)
	Update(ctx context.Context, req service.UpdateInventoryRequest) (*service.InventoryView, error)
	Delete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error
	Adjust(ctx context.Context, req service.AdjustStockRequest) (*service.InventoryView, error)
	Restock(ctx context.Context, req service.RestockRequest) (*service.InventoryView, error)
	LowStock(ctx context.Context) ([]service.LowStockItem, error)
	Movements(ctx context.Context, f service.MovementFilter) ([]database.InventoryMovementRow, error)
	Recipe(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeIngredientRow, error)
	SaveRecipe(ctx context.Context, menuItemID uuid.UUID, ingredients []service.RecipeIngredientInput) ([]database.RecipeIngredientRow, error)
}

type InventoryHandler struct {
	svc    InventoryServicer
	logger logrus.FieldLogger
}

func NewInventoryHandler(svc InventoryServicer, logger logrus.FieldLogger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: logger}
}

func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Query)
	r.Post("/", h.Command)
}

// --- Request / Response types ---

type createInventoryRequest struct {
	ItemName     string              `json:"item_name"`
	Category     string              `json:"category"`
	Unit         string              `json:"unit"`
	CurrentStock decimal.Decimal     `json:"current_stock"`
	MinimumStock decimal.Decimal     `json:"minimum_stock"`
	UnitPrice    decimal.NullDecimal `json:"unit_price"`
}

// updateInventoryRequest omits current_stock; stock moves only through the ledger.
type updateInventoryRequest struct {
	ItemName     *string             `json:"item_name"`
	Category     *string             `json:"category"`
	Unit         *string             `json:"unit"`
	MinimumStock decimal.NullDecimal `json:"minimum_stock"`
	UnitPrice    decimal.NullDecimal `json:"unit_price"`
}

type adjustStockRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

type restockRequest struct {
	ItemID   string              `json:"item_id"`
	Quantity decimal.Decimal     `json:"quantity"`
	Cost     decimal.NullDecimal `json:"cost"`
	Notes    string              `json:"notes"`
}

type recipeIngredientRequest struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Notes           string          `json:"notes"`
}

type saveRecipeRequest struct {
	MenuItemID  string                    `json:"menu_item_id"`
	Ingredients []recipeIngredientRequest `json:"ingredients"`
}

type inventoryResponse struct {
	ID              uuid.UUID `json:"id"`
	ItemName        string    `json:"item_name"`
	Category        *string   `json:"category"`
	Unit            string    `json:"unit"`
	CurrentStock    string    `json:"current_stock"`
	MinimumStock    string    `json:"minimum_stock"`
	UnitPrice       *string   `json:"unit_price"`
	LastRestockDate *string   `json:"last_restock_date"`
	RestockQuantity *string   `json:"restock_quantity"`
	StockStatus     string    `json:"stock_status"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type movementResponse struct {
	ID              uuid.UUID  `json:"id"`
	InventoryItemID uuid.UUID  `json:"inventory_item_id"`
	ItemName        string     `json:"item_name"`
	MovementType    string     `json:"movement_type"`
	Quantity        string     `json:"quantity"`
	Unit            string     `json:"unit"`
	ReferenceType   string     `json:"reference_type"`
	ReferenceID     *uuid.UUID `json:"reference_id"`
	Reason          *string    `json:"reason"`
	Cost            *string    `json:"cost"`
	CreatedBy       *uuid.UUID `json:"created_by"`
	CreatedByName   *string    `json:"created_by_name"`
	CreatedAt       time.Time  `json:"created_at"`
}

type inventoryDetailResponse struct {
	inventoryResponse
	RecentMovements []movementResponse `json:"recent_movements"`
}

type lowStockResponse struct {
	inventoryResponse
	Shortage          string `json:"shortage"`
	ReorderSuggestion string `json:"reorder_suggestion"`
}

type recipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	MenuItemID      uuid.UUID `json:"menu_item_id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ItemName        string    `json:"item_name"`
	Quantity        string    `json:"quantity"`
	Unit            string    `json:"unit"`
	Notes           *string   `json:"notes"`
	CurrentStock    string    `json:"current_stock"`
	StockUnit       string    `json:"stock_unit"`
}

// --- Handlers ---

// Query handles GET /inventory?action=list|get|low-stock|movements|recipe.
func (h *InventoryHandler) Query(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "list":
		h.list(w, r)
	case "get":
		h.get(w, r)
	case "low-stock":
		h.lowStock(w, r)
	case "movements":
		h.movements(w, r)
	case "recipe":
		h.recipe(w, r)
	default:
		unknownAction(w, action)
	}
}

// Command handles POST /inventory?action=create|update|delete|adjust-stock|restock|recipe-save.
func (h *InventoryHandler) Command(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "create":
		h.create(w, r)
	case "update":
		h.update(w, r)
	case "delete":
		h.delete(w, r)
	case "adjust-stock":
		h.adjust(w, r)
	case "restock":
		h.restock(w, r)
	case "recipe-save":
		h.saveRecipe(w, r)
	default:
		unknownAction(w, action)
	}
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context(), service.InventoryFilter{
		Category:     r.URL.Query().Get("category"),
		LowStockOnly: queryBool(r, "low_stock"),
		Search:       r.URL.Query().Get("search"),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "list inventory", err)
		return
	}
	out := make([]inventoryResponse, len(views))
	for i, v := range views {
		out[i] = toInventoryResponse(v)
	}
	writeOK(w, http.StatusOK, "Inventory retrieved", out)
}

func (h *InventoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, "get inventory item", err)
		return
	}
	writeOK(w, http.StatusOK, "Inventory item retrieved", inventoryDetailResponse{
		inventoryResponse: toInventoryResponse(detail.InventoryView),
		RecentMovements:   toMovementResponses(detail.RecentMovements),
	})
}

func (h *InventoryHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "low stock", err)
		return
	}
	out := make([]lowStockResponse, len(items))
	for i, it := range items {
		out[i] = lowStockResponse{
			inventoryResponse: toInventoryResponse(service.InventoryView{Item: it.Item, StockStatus: it.StockStatus}),
			Shortage:          it.Shortage.String(),
			ReorderSuggestion: it.ReorderSuggestion.String(),
		}
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d items at or below minimum stock", len(out)), out)
}

func (h *InventoryHandler) movements(w http.ResponseWriter, r *http.Request) {
	f := service.MovementFilter{MovementType: r.URL.Query().Get("type")}

	var err error
	if f.ItemID, err = optionalQueryUUID(r, "item_id"); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.DateFrom, err = queryDate(r, "date_from"); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.DateTo, err = queryDate(r, "date_to"); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Limit, err = queryInt32(r, "limit"); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.svc.Movements(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, h.logger, "list movements", err)
		return
	}
	writeOK(w, http.StatusOK, "Movements retrieved", toMovementResponses(rows))
}

func (h *InventoryHandler) recipe(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := queryUUID(r, "menu_item_id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.svc.Recipe(r.Context(), menuItemID)
	if err != nil {
		writeServiceError(w, r, h.logger, "get recipe", err)
		return
	}
	writeOK(w, http.StatusOK, "Recipe retrieved", toRecipeResponses(rows))
}

func (h *InventoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var body createInventoryRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.svc.Create(r.Context(), service.CreateInventoryRequest{
		ItemName:     body.ItemName,
		Category:     body.Category,
		Unit:         body.Unit,
		CurrentStock: body.CurrentStock,
		MinimumStock: body.MinimumStock,
		UnitPrice:    body.UnitPrice,
		Actor:        middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "create inventory item", err)
		return
	}
	writeOK(w, http.StatusCreated, "Inventory item created", toInventoryResponse(*view))
}

func (h *InventoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	var body updateInventoryRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.svc.Update(r.Context(), service.UpdateInventoryRequest{
		ID:           id,
		ItemName:     body.ItemName,
		Category:     body.Category,
		Unit:         body.Unit,
		MinimumStock: body.MinimumStock,
		UnitPrice:    body.UnitPrice,
		Actor:        middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "update inventory item", err)
		return
	}
	writeOK(w, http.StatusOK, "Inventory item updated", toInventoryResponse(*view))
}

func (h *InventoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), id, middleware.ActorFromContext(r.Context())); err != nil {
		writeServiceError(w, r, h.logger, "delete inventory item", err)
		return
	}
	writeOK(w, http.StatusOK, "Inventory item deleted", nil)
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var body adjustStockRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := uuid.Parse(body.ItemID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid item_id")
		return
	}

	view, err := h.svc.Adjust(r.Context(), service.AdjustStockRequest{
		ItemID:   id,
		Quantity: body.Quantity,
		Reason:   body.Reason,
		Actor:    middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "adjust stock", err)
		return
	}
	writeOK(w, http.StatusOK, "Stock adjusted", toInventoryResponse(*view))
}

func (h *InventoryHandler) restock(w http.ResponseWriter, r *http.Request) {
	var body restockRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := uuid.Parse(body.ItemID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid item_id")
		return
	}

	view, err := h.svc.Restock(r.Context(), service.RestockRequest{
		ItemID:   id,
		Quantity: body.Quantity,
		Cost:     body.Cost,
		Notes:    body.Notes,
		Actor:    middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "restock", err)
		return
	}
	writeOK(w, http.StatusOK, "Item restocked", toInventoryResponse(*view))
}

func (h *InventoryHandler) saveRecipe(w http.ResponseWriter, r *http.Request) {
	var body saveRecipeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	menuItemID, err := uuid.Parse(body.MenuItemID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid menu_item_id")
		return
	}

	ingredients := make([]service.RecipeIngredientInput, len(body.Ingredients))
	for i, ing := range body.Ingredients {
		id, err := uuid.Parse(ing.InventoryItemID)
		if err != nil {
			writeFail(w, http.StatusBadRequest, fmt.Sprintf("ingredients[%d]: invalid inventory_item_id", i))
			return
		}
		ingredients[i] = service.RecipeIngredientInput{
			InventoryItemID: id,
			Quantity:        ing.Quantity,
			Unit:            ing.Unit,
			Notes:           ing.Notes,
		}
	}

	rows, err := h.svc.SaveRecipe(r.Context(), menuItemID, ingredients)
	if err != nil {
		writeServiceError(w, r, h.logger, "save recipe", err)
		return
	}
	writeOK(w, http.StatusOK, "Recipe saved", toRecipeResponses(rows))
}

// --- Conversions ---

func toInventoryResponse(v service.InventoryView) inventoryResponse {
	it := v.Item
	return inventoryResponse{
		ID:              it.ID,
		ItemName:        it.ItemName,
		Category:        textPtr(it.Category),
		Unit:            it.Unit,
		CurrentStock:    quantity(it.CurrentStock),
		MinimumStock:    quantity(it.MinimumStock),
		UnitPrice:       optionalMoney(it.UnitPrice),
		LastRestockDate: datePtr(it.LastRestockDate),
		RestockQuantity: optionalQuantity(it.RestockQuantity),
		StockStatus:     v.StockStatus,
		UpdatedAt:       it.UpdatedAt,
	}
}

func toMovementResponses(rows []database.InventoryMovementRow) []movementResponse {
	out := make([]movementResponse, len(rows))
	for i, m := range rows {
		out[i] = movementResponse{
			ID:              m.ID,
			InventoryItemID: m.InventoryItemID,
			ItemName:        m.ItemName,
			MovementType:    m.MovementType,
			Quantity:        quantity(m.Quantity),
			Unit:            m.Unit,
			ReferenceType:   m.ReferenceType,
			ReferenceID:     uuidPtr(m.ReferenceID),
			Reason:          textPtr(m.Reason),
			Cost:            optionalMoney(m.Cost),
			CreatedBy:       uuidPtr(m.CreatedBy),
			CreatedByName:   textPtr(m.CreatedByName),
			CreatedAt:       m.CreatedAt,
		}
	}
	return out
}

func toRecipeResponses(rows []database.RecipeIngredientRow) []recipeIngredientResponse {
	out := make([]recipeIngredientResponse, len(rows))
	for i, row := range rows {
		out[i] = recipeIngredientResponse{
			ID:              row.ID,
			MenuItemID:      row.MenuItemID,
			InventoryItemID: row.InventoryItemID,
			ItemName:        row.ItemName,
			Quantity:        quantity(row.Quantity),
			Unit:            row.Unit,
			Notes:           textPtr(row.Notes),
			CurrentStock:    quantity(row.CurrentStock),
			StockUnit:       row.StockUnit,
		}
	}
	return out
}
