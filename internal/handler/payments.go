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

// PaymentServicer defines the payment operations needed by payment handlers.
// Satisfied by *service.PaymentService.
type PaymentServicer interface {
	Process(ctx context.Context, req service.ProcessPaymentRequest) (*service.PaymentResult, error)
	SplitBill(ctx context.Context, req service.SplitBillRequest) (*service.PaymentResult, error)
	Refund(ctx context.Context, paymentID uuid.UUID, reason string, actor uuid.NullUUID) (*service.PaymentResult, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*service.PaymentResult, error)
	ListPayments(ctx context.Context, f service.PaymentFilter) (*service.PaymentList, error)
	PendingOrders(ctx context.Context) ([]database.OrderSummaryRow, error)
	Calculate(ctx context.Context, orderID uuid.UUID) (*service.Calculation, error)
}

type PaymentHandler struct {
	svc    PaymentServicer
	logger logrus.FieldLogger
}

func NewPaymentHandler(svc PaymentServicer, logger logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Query)
	r.Post("/", h.Command)
}

// --- Request / Response types ---

type processPaymentRequest struct {
	OrderID       string              `json:"order_id"`
	PaymentMethod string              `json:"payment_method"`
	PaidAmount    decimal.NullDecimal `json:"paid_amount"`
	Notes         string              `json:"notes"`
}

type splitRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

type splitBillRequest struct {
	OrderID string         `json:"order_id"`
	Splits  []splitRequest `json:"splits"`
}

type refundRequest struct {
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

type paymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	PaymentNumber string     `json:"payment_number"`
	OrderID       uuid.UUID  `json:"order_id"`
	Amount        string     `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	PaidAmount    *string    `json:"paid_amount"`
	ChangeAmount  string     `json:"change_amount"`
	Notes         *string    `json:"notes"`
	ProcessedBy   *uuid.UUID `json:"processed_by"`
	PaidAt        time.Time  `json:"paid_at"`
	RefundedAt    *time.Time `json:"refunded_at"`
	RefundReason  *string    `json:"refund_reason"`
}

type splitResponse struct {
	ID            uuid.UUID `json:"id"`
	SplitNumber   int32     `json:"split_number"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	PaidAt        time.Time `json:"paid_at"`
}

type paymentResultResponse struct {
	Payment paymentResponse `json:"payment"`
	Splits  []splitResponse `json:"splits"`
	Order   orderResponse   `json:"order"`
}

type paymentListItemResponse struct {
	paymentResponse
	OrderNumber string  `json:"order_number"`
	TableNumber *string `json:"table_number"`
}

type paymentSummaryResponse struct {
	Count          int               `json:"count"`
	TotalAmount    string            `json:"total_amount"`
	ByMethod       map[string]string `json:"by_method"`
	RefundedCount  int               `json:"refunded_count"`
	RefundedAmount string            `json:"refunded_amount"`
}

type paymentListResponse struct {
	Payments []paymentListItemResponse `json:"payments"`
	Summary  paymentSummaryResponse    `json:"summary"`
}

type calculationResponse struct {
	OrderID                 uuid.UUID `json:"order_id"`
	OrderNumber             string    `json:"order_number"`
	Subtotal                string    `json:"subtotal"`
	TaxPercentage           string    `json:"tax_percentage"`
	Tax                     string    `json:"tax"`
	ServiceChargePercentage string    `json:"service_charge_percentage"`
	ServiceCharge           string    `json:"service_charge"`
	Discount                string    `json:"discount"`
	Total                   string    `json:"total"`
	IsPaid                  bool      `json:"is_paid"`
}

// --- Handlers ---

// Query handles GET /payments?action=get|list|pending-orders|calculate.
func (h *PaymentHandler) Query(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "get":
		h.get(w, r)
	case "list":
		h.list(w, r)
	case "pending-orders":
		h.pendingOrders(w, r)
	case "calculate":
		h.calculate(w, r)
	default:
		unknownAction(w, action)
	}
}

// Command handles POST /payments?action=process|split|refund.
func (h *PaymentHandler) Command(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "process":
		h.process(w, r)
	case "split":
		h.split(w, r)
	case "refund":
		h.refund(w, r)
	default:
		unknownAction(w, action)
	}
}

func (h *PaymentHandler) process(w http.ResponseWriter, r *http.Request) {
	var body processPaymentRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid order_id")
		return
	}

	result, err := h.svc.Process(r.Context(), service.ProcessPaymentRequest{
		OrderID:    orderID,
		Method:     body.PaymentMethod,
		PaidAmount: body.PaidAmount,
		Notes:      body.Notes,
		Actor:      middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "process payment", err)
		return
	}
	writeOK(w, http.StatusCreated, "Payment processed", toPaymentResultResponse(result))
}

func (h *PaymentHandler) split(w http.ResponseWriter, r *http.Request) {
	var body splitBillRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid order_id")
		return
	}

	splits := make([]service.SplitInput, len(body.Splits))
	for i, sp := range body.Splits {
		splits[i] = service.SplitInput{Amount: sp.Amount, Method: sp.PaymentMethod}
	}

	result, err := h.svc.SplitBill(r.Context(), service.SplitBillRequest{
		OrderID: orderID,
		Splits:  splits,
		Actor:   middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "split bill", err)
		return
	}
	writeOK(w, http.StatusCreated, fmt.Sprintf("Bill split into %d payments", len(result.Splits)), toPaymentResultResponse(result))
}

func (h *PaymentHandler) refund(w http.ResponseWriter, r *http.Request) {
	var body refundRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.PaymentID == "" {
		body.PaymentID = r.URL.Query().Get("id")
	}
	id, err := uuid.Parse(body.PaymentID)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid payment_id")
		return
	}

	result, err := h.svc.Refund(r.Context(), id, body.Reason, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, "refund payment", err)
		return
	}
	writeOK(w, http.StatusOK, "Payment refunded", toPaymentResultResponse(result))
}

func (h *PaymentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := queryUUID(r, "id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.GetPayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, "get payment", err)
		return
	}
	writeOK(w, http.StatusOK, "Payment retrieved", toPaymentResultResponse(result))
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.svc.ListPayments(r.Context(), service.PaymentFilter{
		Date:   date,
		Status: r.URL.Query().Get("status"),
		Method: r.URL.Query().Get("method"),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, "list payments", err)
		return
	}

	resp := paymentListResponse{
		Payments: make([]paymentListItemResponse, len(list.Payments)),
		Summary:  toPaymentSummaryResponse(list.Summary),
	}
	for i, p := range list.Payments {
		resp.Payments[i] = paymentListItemResponse{
			paymentResponse: toPaymentResponse(p.Payment),
			OrderNumber:     p.OrderNumber,
			TableNumber:     textPtr(p.TableNumber),
		}
	}
	writeOK(w, http.StatusOK, "Payments retrieved", resp)
}

func (h *PaymentHandler) pendingOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.PendingOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "pending orders", err)
		return
	}
	writeOK(w, http.StatusOK, "Pending orders retrieved", toOrderSummaries(rows))
}

func (h *PaymentHandler) calculate(w http.ResponseWriter, r *http.Request) {
	orderID, err := queryUUID(r, "order_id")
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Calculate(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, h.logger, "calculate", err)
		return
	}
	writeOK(w, http.StatusOK, "Calculation retrieved", calculationResponse{
		OrderID:                 c.Order.ID,
		OrderNumber:             c.Order.OrderNumber,
		Subtotal:                c.Totals.Subtotal.StringFixed(2),
		TaxPercentage:           c.TaxPercentage.StringFixed(2),
		Tax:                     c.Totals.Tax.StringFixed(2),
		ServiceChargePercentage: c.ServiceChargePercentage.StringFixed(2),
		ServiceCharge:           c.Totals.ServiceCharge.StringFixed(2),
		Discount:                c.Totals.Discount.StringFixed(2),
		Total:                   c.Totals.Total.StringFixed(2),
		IsPaid:                  c.Order.IsPaid,
	})
}

// --- Conversions ---

func toPaymentResponse(p database.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		OrderID:       p.OrderID,
		Amount:        money(p.Amount),
		PaymentMethod: p.PaymentMethod,
		PaymentStatus: p.PaymentStatus,
		PaidAmount:    optionalMoney(p.PaidAmount),
		ChangeAmount:  money(p.ChangeAmount),
		Notes:         textPtr(p.Notes),
		ProcessedBy:   uuidPtr(p.ProcessedBy),
		PaidAt:        p.PaidAt,
		RefundedAt:    timePtr(p.RefundedAt),
		RefundReason:  textPtr(p.RefundReason),
	}
}

func toPaymentResultResponse(res *service.PaymentResult) paymentResultResponse {
	splits := make([]splitResponse, len(res.Splits))
	for i, sp := range res.Splits {
		splits[i] = splitResponse{
			ID:            sp.ID,
			SplitNumber:   sp.SplitNumber,
			Amount:        money(sp.Amount),
			PaymentMethod: sp.PaymentMethod,
			PaymentStatus: sp.PaymentStatus,
			PaidAt:        sp.PaidAt,
		}
	}
	return paymentResultResponse{
		Payment: toPaymentResponse(res.Payment),
		Splits:  splits,
		Order:   toOrderResponse(res.Order),
	}
}

func toPaymentSummaryResponse(s service.PaymentSummary) paymentSummaryResponse {
	byMethod := make(map[string]string, len(s.ByMethod))
	for method, amount := range s.ByMethod {
		byMethod[method] = amount.StringFixed(2)
	}
	return paymentSummaryResponse{
		Count:          s.Count,
		TotalAmount:    s.TotalAmount.StringFixed(2),
		ByMethod:       byMethod,
		RefundedCount:  s.RefundedCount,
		RefundedAmount: s.RefundedAmount.StringFixed(2),
	}
}
