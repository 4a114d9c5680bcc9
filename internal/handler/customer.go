package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jwg-resto/pos-api/internal/service"
	"github.com/sirupsen/logrus"
)

// CustomerOrderServicer is the QR self-ordering surface.
// Satisfied by *service.FulfillmentService.
type CustomerOrderServicer interface {
	SubmitCustomerOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderDetail, error)
	TrackOrder(ctx context.Context, orderNumber string) (*service.OrderProgress, error)
	CallWaiter(ctx context.Context, tableID uuid.UUID, request string) error
	RateOrder(ctx context.Context, orderID uuid.UUID, rating int, feedback string) error
}

// CustomerOrderHandler handles /customer/orders. Requests are anonymous.
type CustomerOrderHandler struct {
	svc    CustomerOrderServicer
	logger logrus.FieldLogger
}

func NewCustomerOrderHandler(svc CustomerOrderServicer, logger logrus.FieldLogger) *CustomerOrderHandler {
	return &CustomerOrderHandler{svc: svc, logger: logger}
}

func (h *CustomerOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Query)
	r.Post("/", h.Command)
}

type submitOrderRequest struct {
	TableID         string             `json:"table_id"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	Notes           string             `json:"notes"`
	SpecialRequests string             `json:"special_requests"`
	Items           []orderItemRequest `json:"items"`
}

type callWaiterRequest struct {
	TableID string `json:"table_id"`
	Request string `json:"request"`
}

type rateOrderRequest struct {
	OrderID  string `json:"order_id"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

type trackResponse struct {
	Order              orderResponse       `json:"order"`
	Items              []orderItemResponse `json:"items"`
	TotalItems         int                 `json:"total_items"`
	PreparedItems      int                 `json:"prepared_items"`
	ReadyItems         int                 `json:"ready_items"`
	ProgressPercentage int                 `json:"progress_percentage"`
	StatusMessage      string              `json:"status_message"`
}

// Query handles GET /customer/orders?action=track&order_number=.
func (h *CustomerOrderHandler) Query(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action != "track" {
		unknownAction(w, action)
		return
	}

	number := r.URL.Query().Get("order_number")
	if number == "" {
		writeFail(w, http.StatusBadRequest, "order_number is required")
		return
	}

	p, err := h.svc.TrackOrder(r.Context(), number)
	if err != nil {
		writeServiceError(w, r, h.logger, "track order", err)
		return
	}
	writeOK(w, http.StatusOK, p.StatusMessage, trackResponse{
		Order:              toOrderResponse(p.Order),
		Items:              toOrderItemDetails(p.Items),
		TotalItems:         p.TotalItems,
		PreparedItems:      p.PreparedItems,
		ReadyItems:         p.ReadyItems,
		ProgressPercentage: p.ProgressPercentage,
		StatusMessage:      p.StatusMessage,
	})
}

// Command handles POST /customer/orders?action=submit|call-waiter|rate.
func (h *CustomerOrderHandler) Command(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "submit":
		h.submit(w, r)
	case "call-waiter":
		h.callWaiter(w, r)
	case "rate":
		h.rate(w, r)
	default:
		unknownAction(w, action)
	}
}

func (h *CustomerOrderHandler) submit(w http.ResponseWriter, r *http.Request) {
	var body submitOrderRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := createOrderRequest{
		TableID:         body.TableID,
		CustomerName:    body.CustomerName,
		CustomerPhone:   body.CustomerPhone,
		Notes:           body.Notes,
		SpecialRequests: body.SpecialRequests,
		Items:           body.Items,
	}.toService()
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.svc.SubmitCustomerOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, "submit customer order", err)
		return
	}
	writeOK(w, http.StatusCreated, "Order submitted", toOrderDetailResponse(detail))
}

func (h *CustomerOrderHandler) callWaiter(w http.ResponseWriter, r *http.Request) {
	var body callWaiterRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	tableID, err := uuid.Parse(body.TableID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid table_id")
		return
	}
	if err := h.svc.CallWaiter(r.Context(), tableID, body.Request); err != nil {
		writeServiceError(w, r, h.logger, "call waiter", err)
		return
	}
	writeOK(w, http.StatusOK, "Waiter has been notified and will be with you shortly", nil)
}

func (h *CustomerOrderHandler) rate(w http.ResponseWriter, r *http.Request) {
	var body rateOrderRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid order_id")
		return
	}
	if err := h.svc.RateOrder(r.Context(), orderID, body.Rating, body.Feedback); err != nil {
		writeServiceError(w, r, h.logger, "rate order", err)
		return
	}
	writeOK(w, http.StatusOK, "Thank you for your feedback!", nil)
}
