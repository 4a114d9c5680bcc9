package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

const maxPaymentNumberRetries = 3

// splitTolerance is how far split amounts may drift from the order total.
var splitTolerance = decimal.NewFromFloat(0.01)

// PaymentStore is satisfied by *database.Queries.
type PaymentStore interface {
	TableStore

	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	MarkOrderPaid(ctx context.Context, id uuid.UUID) (database.Order, error)
	RevertOrderPayment(ctx context.Context, arg database.RevertOrderPaymentParams) (database.Order, error)
	ListUnpaidOrders(ctx context.Context) ([]database.OrderSummaryRow, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)

	GetLastPaymentNumber(ctx context.Context, prefix string) (string, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (database.Payment, error)
	GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (database.Payment, error)
	RefundPayment(ctx context.Context, arg database.RefundPaymentParams) (database.Payment, error)
	ListPayments(ctx context.Context, arg database.ListPaymentsParams) ([]database.PaymentListRow, error)
	CreatePaymentSplit(ctx context.Context, arg database.CreatePaymentSplitParams) (database.PaymentSplit, error)
	ListPaymentSplits(ctx context.Context, paymentID uuid.UUID) ([]database.PaymentSplit, error)
	RefundPaymentSplits(ctx context.Context, paymentID uuid.UUID) error
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// PaymentService settles orders: single payments, split bills and refunds.
type PaymentService struct {
	pool     TxBeginner
	newStore NewPaymentStore
	audit    ActivityRecorder
	now      func() time.Time
}

func NewPaymentService(pool TxBeginner, newStore NewPaymentStore, rec ActivityRecorder) *PaymentService {
	return &PaymentService{pool: pool, newStore: newStore, audit: rec, now: time.Now}
}

func (s *PaymentService) withTx(ctx context.Context, fn func(store PaymentStore) error) error {
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

// ProcessPaymentRequest is a single-tender payment. PaidAmount is only
// consulted for cash.
type ProcessPaymentRequest struct {
	OrderID    uuid.UUID
	Method     string
	PaidAmount decimal.NullDecimal
	Notes      string
	Actor      uuid.NullUUID
}

// PaymentResult is a recorded payment and the order it settled.
type PaymentResult struct {
	Payment database.Payment
	Splits  []database.PaymentSplit
	Order   database.Order
}

// Process settles an order with one tender. Cash must cover the total and
// gets change back; card and QR are recorded at exactly the total.
func (s *PaymentService) Process(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, error) {
	if !isTenderMethod(req.Method) {
		return nil, ErrInvalidPaymentMethod
	}
	if req.PaidAmount.Valid && req.PaidAmount.Decimal.IsNegative() {
		return nil, ErrInvalidAmount
	}

	result, err := s.withPaymentNumber(ctx, func(store PaymentStore, number string) (*PaymentResult, error) {
		order, err := lockPayableOrder(ctx, store, req.OrderID)
		if err != nil {
			return nil, err
		}
		total := numericToDecimal(order.Total)

		paid, change := total, decimal.Zero
		if req.Method == enum.PaymentMethodCash {
			if !req.PaidAmount.Valid {
				return nil, fmt.Errorf("%w: paid_amount is required for cash", ErrInvalidAmount)
			}
			paid = req.PaidAmount.Decimal
			if paid.LessThan(total) {
				return nil, fmt.Errorf("%w: need %s", ErrInsufficientPayment, total.StringFixed(2))
			}
			change = paid.Sub(total)
		}

		payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
			PaymentNumber: number,
			OrderID:       order.ID,
			Amount:        decimalToNumeric(total),
			PaymentMethod: req.Method,
			PaidAmount:    decimalToNumeric(paid),
			ChangeAmount:  decimalToNumeric(change),
			Notes:         optionalText(req.Notes),
			ProcessedBy:   actorUUID(req.Actor),
		})
		if err != nil {
			return nil, fmt.Errorf("create payment: %w", err)
		}

		order, err = settleOrder(ctx, store, order)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{Payment: payment, Order: order}, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionProcessPayment,
		EntityType: audit.EntityPayment,
		EntityID:   result.Payment.ID,
		ActorID:    req.Actor,
		Details: map[string]interface{}{
			"payment_number": result.Payment.PaymentNumber,
			"order_id":       result.Order.ID.String(),
			"method":         req.Method,
			"amount":         numericToDecimal(result.Payment.Amount).StringFixed(2),
			"change":         numericToDecimal(result.Payment.ChangeAmount).StringFixed(2),
		},
	})
	return result, nil
}

// SplitInput is one share of a split bill.
type SplitInput struct {
	Amount decimal.Decimal
	Method string
}

type SplitBillRequest struct {
	OrderID uuid.UUID
	Splits  []SplitInput
	Actor   uuid.NullUUID
}

// SplitBill settles an order with several tenders recorded under one parent
// payment. The shares must add up to the order total within 0.01; nothing is
// written otherwise.
func (s *PaymentService) SplitBill(ctx context.Context, req SplitBillRequest) (*PaymentResult, error) {
	if len(req.Splits) == 0 {
		return nil, ErrEmptySplits
	}
	sum := decimal.Zero
	for i, sp := range req.Splits {
		if !sp.Amount.IsPositive() {
			return nil, fmt.Errorf("split[%d]: %w", i, ErrInvalidAmount)
		}
		if !isTenderMethod(sp.Method) {
			return nil, fmt.Errorf("split[%d]: %w", i, ErrInvalidPaymentMethod)
		}
		sum = sum.Add(sp.Amount)
	}

	result, err := s.withPaymentNumber(ctx, func(store PaymentStore, number string) (*PaymentResult, error) {
		order, err := lockPayableOrder(ctx, store, req.OrderID)
		if err != nil {
			return nil, err
		}
		total := numericToDecimal(order.Total)
		if sum.Sub(total).Abs().GreaterThan(splitTolerance) {
			return nil, fmt.Errorf("%w: splits %s, total %s", ErrSplitMismatch, sum.StringFixed(2), total.StringFixed(2))
		}

		payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
			PaymentNumber: number,
			OrderID:       order.ID,
			Amount:        decimalToNumeric(total),
			PaymentMethod: enum.PaymentMethodSplit,
			PaidAmount:    decimalToNumeric(sum),
			ChangeAmount:  decimalToNumeric(decimal.Zero),
			Notes:         pgtype.Text{String: "Split bill", Valid: true},
			ProcessedBy:   actorUUID(req.Actor),
		})
		if err != nil {
			return nil, fmt.Errorf("create payment: %w", err)
		}

		splits := make([]database.PaymentSplit, 0, len(req.Splits))
		for i, sp := range req.Splits {
			row, err := store.CreatePaymentSplit(ctx, database.CreatePaymentSplitParams{
				PaymentID:     payment.ID,
				SplitNumber:   int32(i + 1),
				Amount:        decimalToNumeric(sp.Amount),
				PaymentMethod: sp.Method,
			})
			if err != nil {
				return nil, fmt.Errorf("split[%d]: create: %w", i, err)
			}
			splits = append(splits, row)
		}

		order, err = settleOrder(ctx, store, order)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{Payment: payment, Splits: splits, Order: order}, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionSplitBill,
		EntityType: audit.EntityPayment,
		EntityID:   result.Payment.ID,
		ActorID:    req.Actor,
		Details: map[string]interface{}{
			"payment_number": result.Payment.PaymentNumber,
			"order_id":       result.Order.ID.String(),
			"splits":         len(result.Splits),
			"amount":         numericToDecimal(result.Payment.Amount).StringFixed(2),
		},
	})
	return result, nil
}

// Refund reverses a completed payment. The order goes back to unpaid and is
// cancelled; stock consumed by the order stays consumed.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID, reason string, actor uuid.NullUUID) (*PaymentResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var out *PaymentResult
	err := s.withTx(ctx, func(store PaymentStore) error {
		payment, err := store.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("lock payment: %w", err)
		}
		if payment.PaymentStatus == enum.PaymentStatusRefunded {
			return ErrAlreadyRefunded
		}

		if _, err := store.GetOrderForUpdate(ctx, payment.OrderID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		payment, err = store.RefundPayment(ctx, database.RefundPaymentParams{
			ID:           paymentID,
			RefundReason: pgtype.Text{String: reason, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("refund payment: %w", err)
		}
		if err := store.RefundPaymentSplits(ctx, paymentID); err != nil {
			return fmt.Errorf("refund splits: %w", err)
		}
		splits, err := store.ListPaymentSplits(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("list splits: %w", err)
		}

		order, err := store.RevertOrderPayment(ctx, database.RevertOrderPaymentParams{
			ID:                 payment.OrderID,
			CancellationReason: pgtype.Text{String: "Refunded: " + reason, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("revert order payment: %w", err)
		}
		out = &PaymentResult{Payment: payment, Splits: splits, Order: order}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionRefundPayment,
		EntityType: audit.EntityPayment,
		EntityID:   paymentID,
		ActorID:    actor,
		Details: map[string]interface{}{
			"payment_number": out.Payment.PaymentNumber,
			"order_id":       out.Order.ID.String(),
			"amount":         numericToDecimal(out.Payment.Amount).StringFixed(2),
			"reason":         reason,
		},
	})
	return out, nil
}

// GetPayment returns a payment with its split rows.
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResult, error) {
	var out *PaymentResult
	err := s.withTx(ctx, func(store PaymentStore) error {
		payment, err := store.GetPayment(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("get payment: %w", err)
		}
		splits, err := store.ListPaymentSplits(ctx, id)
		if err != nil {
			return fmt.Errorf("list splits: %w", err)
		}
		order, err := store.GetOrder(ctx, payment.OrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		out = &PaymentResult{Payment: payment, Splits: splits, Order: order}
		return nil
	})
	return out, err
}

type PaymentFilter struct {
	Date   *time.Time
	Status string
	Method string
}

// PaymentSummary aggregates a payment listing. Refunded payments are
// excluded from TotalAmount and ByMethod.
type PaymentSummary struct {
	Count          int
	TotalAmount    decimal.Decimal
	ByMethod       map[string]decimal.Decimal
	RefundedCount  int
	RefundedAmount decimal.Decimal
}

type PaymentList struct {
	Payments []database.PaymentListRow
	Summary  PaymentSummary
}

func (s *PaymentService) ListPayments(ctx context.Context, f PaymentFilter) (*PaymentList, error) {
	if f.Status != "" && f.Status != enum.PaymentStatusCompleted && f.Status != enum.PaymentStatusRefunded {
		return nil, ErrInvalidStatus
	}
	if f.Method != "" && !isTenderMethod(f.Method) && f.Method != enum.PaymentMethodSplit {
		return nil, ErrInvalidPaymentMethod
	}

	var out *PaymentList
	err := s.withTx(ctx, func(store PaymentStore) error {
		rows, err := store.ListPayments(ctx, database.ListPaymentsParams{
			Date:          optionalDate(f.Date),
			PaymentStatus: optionalText(f.Status),
			PaymentMethod: optionalText(f.Method),
		})
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		out = &PaymentList{Payments: rows, Summary: SummarizePayments(rows)}
		return nil
	})
	return out, err
}

func SummarizePayments(rows []database.PaymentListRow) PaymentSummary {
	sum := PaymentSummary{
		Count:          len(rows),
		TotalAmount:    decimal.Zero,
		ByMethod:       map[string]decimal.Decimal{},
		RefundedAmount: decimal.Zero,
	}
	for _, p := range rows {
		amount := numericToDecimal(p.Amount)
		if p.PaymentStatus == enum.PaymentStatusRefunded {
			sum.RefundedCount++
			sum.RefundedAmount = sum.RefundedAmount.Add(amount)
			continue
		}
		sum.TotalAmount = sum.TotalAmount.Add(amount)
		sum.ByMethod[p.PaymentMethod] = sum.ByMethod[p.PaymentMethod].Add(amount)
	}
	return sum
}

// PendingOrders lists open orders still waiting for payment.
func (s *PaymentService) PendingOrders(ctx context.Context) ([]database.OrderSummaryRow, error) {
	var out []database.OrderSummaryRow
	err := s.withTx(ctx, func(store PaymentStore) error {
		rows, err := store.ListUnpaidOrders(ctx)
		if err != nil {
			return fmt.Errorf("list unpaid orders: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}

// Calculation is the bill breakdown shown before payment.
type Calculation struct {
	Order                   database.Order
	Totals                  Totals
	TaxPercentage           decimal.Decimal
	ServiceChargePercentage decimal.Decimal
}

// Calculate recomputes the bill from the order's items with the same rules
// used when the order was priced.
func (s *PaymentService) Calculate(ctx context.Context, orderID uuid.UUID) (*Calculation, error) {
	var out *Calculation
	err := s.withTx(ctx, func(store PaymentStore) error {
		order, err := store.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}
		items, err := store.ListOrderItemsByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		out = &Calculation{
			Order:                   order,
			Totals:                  RecalculateTotals(order, items),
			TaxPercentage:           numericToDecimal(order.TaxPercentage),
			ServiceChargePercentage: numericToDecimal(order.ServiceChargePercentage),
		}
		return nil
	})
	return out, err
}

// withPaymentNumber runs fn in a transaction with a freshly allocated payment
// number, retrying when a concurrent payment took the same number.
func (s *PaymentService) withPaymentNumber(ctx context.Context, fn func(store PaymentStore, number string) (*PaymentResult, error)) (*PaymentResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxPaymentNumberRetries; attempt++ {
		var result *PaymentResult
		err := s.withTx(ctx, func(store PaymentStore) error {
			number, err := nextPaymentNumber(ctx, store, s.now())
			if err != nil {
				return err
			}
			result, err = fn(store, number)
			return err
		})
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, "payments_payment_number_key") {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// nextPaymentNumber returns PAY-YYYYMMDD-NNNN, one past the day's highest.
func nextPaymentNumber(ctx context.Context, store PaymentStore, now time.Time) (string, error) {
	prefix := "PAY-" + now.Format("20060102") + "-"
	seq := 1
	last, err := store.GetLastPaymentNumber(ctx, prefix)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return "", fmt.Errorf("get last payment number: %w", err)
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("parse payment number %q: %w", last, err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func lockPayableOrder(ctx context.Context, store PaymentStore, orderID uuid.UUID) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("lock order: %w", err)
	}
	if order.IsPaid {
		return database.Order{}, ErrOrderAlreadyPaid
	}
	if order.Status == enum.OrderStatusCancelled {
		return database.Order{}, ErrOrderClosed
	}
	if !numericToDecimal(order.Total).IsPositive() {
		return database.Order{}, ErrNothingToPay
	}
	return order, nil
}

// settleOrder marks the order paid and completed and sends its table to
// cleaning.
func settleOrder(ctx context.Context, store PaymentStore, order database.Order) (database.Order, error) {
	paid, err := store.MarkOrderPaid(ctx, order.ID)
	if err != nil {
		return database.Order{}, fmt.Errorf("mark order paid: %w", err)
	}
	if order.TableID.Valid {
		if err := markTableCleaning(ctx, store, order.TableID.Bytes, order.ID); err != nil {
			return database.Order{}, err
		}
	}
	return paid, nil
}

func isTenderMethod(m string) bool {
	switch m {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodQR:
		return true
	}
	return false
}
