package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/jwg-resto/pos-api/internal/middleware"
	"github.com/jwg-resto/pos-api/internal/service"
	"github.com/sirupsen/logrus"
)

// KitchenServicer is the read side of the kitchen display.
// Satisfied by *service.KitchenService.
type KitchenServicer interface {
	Queue(ctx context.Context, status string) ([]service.KitchenOrder, error)
	Alerts(ctx context.Context) ([]service.KitchenAlert, error)
}

// ItemStatusUpdater moves order items through the kitchen workflow.
// Satisfied by *service.FulfillmentService.
type ItemStatusUpdater interface {
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string, actor uuid.NullUUID) (*service.ItemStatusResult, error)
}

type KitchenHandler struct {
	svc    KitchenServicer
	items  ItemStatusUpdater
	logger logrus.FieldLogger
}

func NewKitchenHandler(svc KitchenServicer, items ItemStatusUpdater, logger logrus.FieldLogger) *KitchenHandler {
	return &KitchenHandler{svc: svc, items: items, logger: logger}
}

func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Query)
	r.Post("/", h.Command)
}

type kitchenItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	MenuItemID      uuid.UUID  `json:"menu_item_id"`
	MenuName        string     `json:"menu_name"`
	PreparationTime int32      `json:"preparation_time"`
	Quantity        int32      `json:"quantity"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes"`
	PreparedBy      *uuid.UUID `json:"prepared_by"`
	PreparedAt      *time.Time `json:"prepared_at"`
}

type kitchenOrderResponse struct {
	OrderID         uuid.UUID             `json:"order_id"`
	OrderNumber     string                `json:"order_number"`
	OrderType       string                `json:"order_type"`
	OrderStatus     string                `json:"order_status"`
	TableNumber     string                `json:"table_number"`
	SpecialRequests string                `json:"special_requests"`
	CreatedAt       time.Time             `json:"created_at"`
	WaitTime        int                   `json:"wait_time"`
	Items           []kitchenItemResponse `json:"items"`
}

type kitchenAlertResponse struct {
	Severity    string    `json:"severity"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	TableNumber string    `json:"table_number"`
	ItemID      uuid.UUID `json:"item_id"`
	MenuName    string    `json:"menu_name"`
	ItemStatus  string    `json:"item_status"`
	WaitTime    int       `json:"wait_time"`
	Message     string    `json:"message"`
}

// Query handles GET /kitchen?action=pending|preparing|ready|alerts.
func (h *KitchenHandler) Query(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	switch action {
	case enum.OrderItemStatusPending, enum.OrderItemStatusPreparing, enum.OrderItemStatusReady:
		orders, err := h.svc.Queue(r.Context(), action)
		if err != nil {
			writeServiceError(w, r, h.logger, "kitchen queue", err)
			return
		}
		writeOK(w, http.StatusOK, "Kitchen queue retrieved", toKitchenOrders(orders))
	case "alerts":
		alerts, err := h.svc.Alerts(r.Context())
		if err != nil {
			writeServiceError(w, r, h.logger, "kitchen alerts", err)
			return
		}
		writeOK(w, http.StatusOK, "Kitchen alerts retrieved", toKitchenAlerts(alerts))
	default:
		unknownAction(w, action)
	}
}

// Command handles POST /kitchen?action=start-preparing|mark-ready&id=.
// The chef is the authenticated actor.
func (h *KitchenHandler) Command(w http.ResponseWriter, r *http.Request) {
	var status string
	switch action := r.URL.Query().Get("action"); action {
	case "start-preparing":
		status = enum.OrderItemStatusPreparing
	case "mark-ready":
		status = enum.OrderItemStatusReady
	default:
		unknownAction(w, action)
		return
	}

	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.items.UpdateItemStatus(r.Context(), id, status, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, "kitchen item status", err)
		return
	}
	writeOK(w, http.StatusOK, "Item status updated", toItemStatusResponse(result))
}

func toKitchenOrders(orders []service.KitchenOrder) []kitchenOrderResponse {
	out := make([]kitchenOrderResponse, len(orders))
	for i, o := range orders {
		items := make([]kitchenItemResponse, len(o.Items))
		for j, it := range o.Items {
			items[j] = kitchenItemResponse{
				ID:              it.ID,
				MenuItemID:      it.MenuItemID,
				MenuName:        it.MenuName,
				PreparationTime: it.PreparationTime,
				Quantity:        it.Quantity,
				Status:          it.Status,
				Notes:           textPtr(it.Notes),
				PreparedBy:      uuidPtr(it.PreparedBy),
				PreparedAt:      timePtr(it.PreparedAt),
			}
		}
		out[i] = kitchenOrderResponse{
			OrderID:         o.OrderID,
			OrderNumber:     o.OrderNumber,
			OrderType:       o.OrderType,
			OrderStatus:     o.OrderStatus,
			TableNumber:     o.TableNumber,
			SpecialRequests: o.SpecialRequests,
			CreatedAt:       o.CreatedAt,
			WaitTime:        o.WaitTime,
			Items:           items,
		}
	}
	return out
}

func toKitchenAlerts(alerts []service.KitchenAlert) []kitchenAlertResponse {
	out := make([]kitchenAlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = kitchenAlertResponse(a)
	}
	return out
}
