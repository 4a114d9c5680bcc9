package handler

import (
	"context"
	"errors"
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

// OrderServicer defines the fulfillment operations needed by order handlers.
// Satisfied by *service.FulfillmentService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderDetail, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, f service.OrderFilter) ([]database.OrderSummaryRow, error)
	ActiveOrders(ctx context.Context) ([]database.OrderSummaryRow, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string, actor uuid.NullUUID) (*service.ItemStatusResult, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status, reason string, actor uuid.NullUUID) (*database.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason string, actor uuid.NullUUID) (*database.Order, error)
	AddItem(ctx context.Context, orderID uuid.UUID, item service.OrderItemInput, actor uuid.NullUUID) (*service.OrderDetail, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) (*service.OrderDetail, error)
}

// OrderHandler handles /orders.
type OrderHandler struct {
	svc    OrderServicer
	logger logrus.FieldLogger
}

func NewOrderHandler(svc OrderServicer, logger logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the action-dispatched order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Query)
	r.Post("/", h.Command)
}

// --- Request / Response types ---

type orderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Notes      string `json:"notes"`
}

type createOrderRequest struct {
	OrderType               string              `json:"order_type"`
	TableID                 string              `json:"table_id"`
	CustomerName            string              `json:"customer_name"`
	CustomerPhone           string              `json:"customer_phone"`
	CustomerEmail           string              `json:"customer_email"`
	Notes                   string              `json:"notes"`
	SpecialRequests         string              `json:"special_requests"`
	DiscountCode            string              `json:"discount_code"`
	TaxPercentage           decimal.NullDecimal `json:"tax_percentage"`
	ServiceChargePercentage decimal.NullDecimal `json:"service_charge_percentage"`
	Items                   []orderItemRequest  `json:"items"`
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	ID                      uuid.UUID  `json:"id"`
	OrderNumber             string     `json:"order_number"`
	TableID                 *uuid.UUID `json:"table_id"`
	CustomerName            *string    `json:"customer_name"`
	CustomerPhone           *string    `json:"customer_phone"`
	CustomerEmail           *string    `json:"customer_email"`
	OrderType               string     `json:"order_type"`
	OrderSource             string     `json:"order_source"`
	Status                  string     `json:"status"`
	Subtotal                string     `json:"subtotal"`
	Tax                     string     `json:"tax"`
	TaxPercentage           string     `json:"tax_percentage"`
	ServiceCharge           string     `json:"service_charge"`
	ServiceChargePercentage string     `json:"service_charge_percentage"`
	Discount                string     `json:"discount"`
	DiscountCode            *string    `json:"discount_code"`
	Total                   string     `json:"total"`
	IsPaid                  bool       `json:"is_paid"`
	Notes                   *string    `json:"notes"`
	SpecialRequests         *string    `json:"special_requests"`
	CancellationReason      *string    `json:"cancellation_reason"`
	CreatedBy               *uuid.UUID `json:"created_by"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
	PaidAt                  *time.Time `json:"paid_at"`
	CompletedAt             *time.Time `json:"completed_at"`
	CancelledAt             *time.Time `json:"cancelled_at"`
}

type orderItemResponse struct {
	ID         uuid.UUID  `json:"id"`
	OrderID    uuid.UUID  `json:"order_id"`
	MenuItemID uuid.UUID  `json:"menu_item_id"`
	MenuName   string     `json:"menu_name,omitempty"`
	Quantity   int32      `json:"quantity"`
	Price      string     `json:"price"`
	Subtotal   string     `json:"subtotal"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes"`
	PreparedBy *uuid.UUID `json:"prepared_by"`
	PreparedAt *time.Time `json:"prepared_at"`
	ServedAt   *time.Time `json:"served_at"`
}

type orderDetailResponse struct {
	orderResponse
	Items []orderItemResponse `json:"items"`
}

type orderSummaryResponse struct {
	orderResponse
	TableNumber *string `json:"table_number"`
	ItemCount   int64   `json:"item_count"`
}

type itemStatusResponse struct {
	Item  orderItemResponse `json:"item"`
	Order orderResponse     `json:"order"`
}

// --- Handlers ---

// Query handles GET /orders?action=get|list|active.
func (h *OrderHandler) Query(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "get":
		h.get(w, r)
	case "list":
		h.list(w, r)
	case "active":
		h.active(w, r)
	default:
		unknownAction(w, action)
	}
}

// Command handles POST /orders?action=create|update-item-status|update-status|add-item|remove-item|cancel.
func (h *OrderHandler) Command(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "create":
		h.create(w, r)
	case "update-item-status":
		h.updateItemStatus(w, r)
	case "update-status":
		h.updateStatus(w, r)
	case "add-item":
		h.addItem(w, r)
	case "remove-item":
		h.removeItem(w, r)
	case "cancel":
		h.cancel(w, r)
	default:
		unknownAction(w, action)
	}
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var body createOrderRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := body.toService()
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Actor = middleware.ActorFromContext(r.Context())

	detail, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, "create order", err)
		return
	}
	writeOK(w, http.StatusCreated, "Order created", toOrderDetailResponse(detail))
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	var (
		detail *service.OrderDetail
		err    error
	)
	if number := r.URL.Query().Get("order_number"); number != "" {
		detail, err = h.svc.GetOrderByNumber(r.Context(), number)
	} else {
		id, perr := queryUUID(r, "id")
		if perr != nil {
			writeFail(w, http.StatusBadRequest, perr.Error())
			return
		}
		detail, err = h.svc.GetOrder(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, r, h.logger, "get order", err)
		return
	}
	writeOK(w, http.StatusOK, "Order retrieved", toOrderDetailResponse(detail))
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.OrderFilter{
		Status:    q.Get("status"),
		OrderType: q.Get("order_type"),
	}

	var err error
	if f.TableID, err = optionalQueryUUID(r, "table_id"); err != nil {
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
	if f.Offset, err = queryInt32(r, "offset"); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.svc.ListOrders(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, h.logger, "list orders", err)
		return
	}
	writeOK(w, http.StatusOK, "Orders retrieved", toOrderSummaries(rows))
}

func (h *OrderHandler) active(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ActiveOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "active orders", err)
		return
	}
	writeOK(w, http.StatusOK, "Active orders retrieved", toOrderSummaries(rows))
}

func (h *OrderHandler) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.UpdateItemStatus(r.Context(), id, body.Status, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, "update item status", err)
		return
	}
	writeOK(w, http.StatusOK, "Item status updated", toItemStatusResponse(result))
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.UpdateOrderStatus(r.Context(), id, body.Status, body.Reason, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, "update order status", err)
		return
	}
	writeOK(w, http.StatusOK, "Order status updated", toOrderResponse(*order))
}

func (h *OrderHandler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := queryUUID(r, "order_id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	var body orderItemRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := body.toService()
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.svc.AddItem(r.Context(), orderID, item, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, "add item", err)
		return
	}
	writeOK(w, http.StatusCreated, "Item added", toOrderDetailResponse(detail))
}

func (h *OrderHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.svc.RemoveItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, "remove item", err)
		return
	}
	writeOK(w, http.StatusOK, "Item removed", toOrderDetailResponse(detail))
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	var body cancelRequest
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), id, body.Reason, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, "cancel order", err)
		return
	}
	writeOK(w, http.StatusOK, "Order cancelled", toOrderResponse(*order))
}

// --- Conversions ---

func (b orderItemRequest) toService() (service.OrderItemInput, error) {
	id, err := uuid.Parse(b.MenuItemID)
	if err != nil {
		return service.OrderItemInput{}, service.ErrInvalidID
	}
	return service.OrderItemInput{MenuItemID: id, Quantity: b.Quantity, Notes: b.Notes}, nil
}

func (b createOrderRequest) toService() (service.CreateOrderRequest, error) {
	tableID, err := parseOptionalUUID(b.TableID, "table_id")
	if err != nil {
		return service.CreateOrderRequest{}, err
	}

	items := make([]service.OrderItemInput, len(b.Items))
	for i, it := range b.Items {
		in, err := it.toService()
		if err != nil {
			return service.CreateOrderRequest{}, fmt.Errorf("items[%d]: %w", i, err)
		}
		items[i] = in
	}

	return service.CreateOrderRequest{
		OrderType:               b.OrderType,
		TableID:                 tableID,
		CustomerName:            b.CustomerName,
		CustomerPhone:           b.CustomerPhone,
		CustomerEmail:           b.CustomerEmail,
		Notes:                   b.Notes,
		SpecialRequests:         b.SpecialRequests,
		DiscountCode:            b.DiscountCode,
		TaxPercentage:           b.TaxPercentage,
		ServiceChargePercentage: b.ServiceChargePercentage,
		Items:                   items,
	}, nil
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:                      o.ID,
		OrderNumber:             o.OrderNumber,
		TableID:                 uuidPtr(o.TableID),
		CustomerName:            textPtr(o.CustomerName),
		CustomerPhone:           textPtr(o.CustomerPhone),
		CustomerEmail:           textPtr(o.CustomerEmail),
		OrderType:               o.OrderType,
		OrderSource:             o.OrderSource,
		Status:                  o.Status,
		Subtotal:                money(o.Subtotal),
		Tax:                     money(o.Tax),
		TaxPercentage:           money(o.TaxPercentage),
		ServiceCharge:           money(o.ServiceCharge),
		ServiceChargePercentage: money(o.ServiceChargePercentage),
		Discount:                money(o.Discount),
		DiscountCode:            textPtr(o.DiscountCode),
		Total:                   money(o.Total),
		IsPaid:                  o.IsPaid,
		Notes:                   textPtr(o.Notes),
		SpecialRequests:         textPtr(o.SpecialRequests),
		CancellationReason:      textPtr(o.CancellationReason),
		CreatedBy:               uuidPtr(o.CreatedBy),
		CreatedAt:               o.CreatedAt,
		UpdatedAt:               o.UpdatedAt,
		PaidAt:                  timePtr(o.PaidAt),
		CompletedAt:             timePtr(o.CompletedAt),
		CancelledAt:             timePtr(o.CancelledAt),
	}
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:         it.ID,
		OrderID:    it.OrderID,
		MenuItemID: it.MenuItemID,
		Quantity:   it.Quantity,
		Price:      money(it.Price),
		Subtotal:   money(it.Subtotal),
		Status:     it.Status,
		Notes:      textPtr(it.Notes),
		PreparedBy: uuidPtr(it.PreparedBy),
		PreparedAt: timePtr(it.PreparedAt),
		ServedAt:   timePtr(it.ServedAt),
	}
}

func toOrderItemDetails(rows []database.OrderItemDetailRow) []orderItemResponse {
	out := make([]orderItemResponse, len(rows))
	for i, row := range rows {
		out[i] = toOrderItemResponse(row.OrderItem)
		out[i].MenuName = row.MenuName
	}
	return out
}

func toOrderDetailResponse(d *service.OrderDetail) orderDetailResponse {
	return orderDetailResponse{
		orderResponse: toOrderResponse(d.Order),
		Items:         toOrderItemDetails(d.Items),
	}
}

func toOrderSummaries(rows []database.OrderSummaryRow) []orderSummaryResponse {
	out := make([]orderSummaryResponse, len(rows))
	for i, row := range rows {
		out[i] = orderSummaryResponse{
			orderResponse: toOrderResponse(row.Order),
			TableNumber:   textPtr(row.TableNumber),
			ItemCount:     row.ItemCount,
		}
	}
	return out
}

func toItemStatusResponse(res *service.ItemStatusResult) itemStatusResponse {
	return itemStatusResponse{
		Item:  toOrderItemResponse(res.Item),
		Order: toOrderResponse(res.Order),
	}
}
