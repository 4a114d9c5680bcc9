package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jwg-resto/pos-api/internal/audit"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the fulfillment engine needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	SettingsStore
	DiscountStore
	TableStore
	LedgerStore

	GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (database.GetMenuItemForOrderRow, error)

	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.OrderSummaryRow, error)
	ListActiveOrders(ctx context.Context) ([]database.OrderSummaryRow, error)

	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderItem(ctx context.Context, id uuid.UUID) (database.OrderItem, error)
	GetOrderItemForUpdate(ctx context.Context, id uuid.UUID) (database.OrderItem, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemDetails(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemDetailRow, error)
	DeleteOrderItem(ctx context.Context, id uuid.UUID) error
	UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error)
	AdvanceOrderItems(ctx context.Context, arg database.AdvanceOrderItemsParams) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// OrderItemInput is one requested line.
type OrderItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int32
	Notes      string
}

// CreateOrderRequest is the validated input for creating an order.
// Percentages left unset are taken from Settings.
type CreateOrderRequest struct {
	OrderType               string
	Source                  string
	TableID                 uuid.NullUUID
	CustomerName            string
	CustomerPhone           string
	CustomerEmail           string
	Notes                   string
	SpecialRequests         string
	DiscountCode            string
	TaxPercentage           decimal.NullDecimal
	ServiceChargePercentage decimal.NullDecimal
	Items                   []OrderItemInput
	Actor                   uuid.NullUUID
}

// OrderDetail is an order with its items.
type OrderDetail struct {
	Order database.Order
	Items []database.OrderItemDetailRow
}

// FulfillmentService owns the order aggregate: creation, item edits, the
// kitchen workflow and cancellation. Tables and the inventory ledger are
// mutated inside the same transaction as the order.
type FulfillmentService struct {
	pool     TxBeginner
	newStore NewOrderStore
	settings *Settings
	audit    ActivityRecorder
	now      func() time.Time
}

func NewFulfillmentService(pool TxBeginner, newStore NewOrderStore, settings *Settings, rec ActivityRecorder) *FulfillmentService {
	return &FulfillmentService{
		pool:     pool,
		newStore: newStore,
		settings: settings,
		audit:    rec,
		now:      time.Now,
	}
}

func (s *FulfillmentService) withTx(ctx context.Context, fn func(store OrderStore) error) error {
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

// CreateOrder validates, prices and creates an order atomically.
// Retries up to maxOrderNumberRetries times on order_number collisions.
func (s *FulfillmentService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	if !isValidOrderType(req.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if req.Source == "" {
		req.Source = enum.OrderSourceAdmin
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	for _, pct := range []decimal.NullDecimal{req.TaxPercentage, req.ServiceChargePercentage} {
		if pct.Valid && !validPercentage(pct.Decimal) {
			return nil, ErrInvalidPercentage
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			s.audit.Record(ctx, audit.Event{
				Action:     audit.ActionCreateOrder,
				EntityType: audit.EntityOrder,
				EntityID:   result.Order.ID,
				ActorID:    req.Actor,
				Details: map[string]interface{}{
					"order_number": result.Order.OrderNumber,
					"order_type":   result.Order.OrderType,
					"source":       result.Order.OrderSource,
					"total":        numericToDecimal(result.Order.Total).StringFixed(2),
					"items":        len(result.Items),
				},
			})
			return result, nil
		}
		if isUniqueViolation(err, "orders_order_number_key") {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// SubmitCustomerOrder places an anonymous QR order for a table. Pricing comes
// from settings only and no discount code is accepted.
func (s *FulfillmentService) SubmitCustomerOrder(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	if !req.TableID.Valid {
		return nil, ErrTableRequired
	}
	req.OrderType = enum.OrderTypeQR
	req.Source = enum.OrderSourceCustomerQR
	req.DiscountCode = ""
	req.TaxPercentage = decimal.NullDecimal{}
	req.ServiceChargePercentage = decimal.NullDecimal{}
	return s.CreateOrder(ctx, req)
}

func (s *FulfillmentService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	var out *OrderDetail
	err := s.withTx(ctx, func(store OrderStore) error {
		pricing, err := s.settings.Load(ctx, store)
		if err != nil {
			return err
		}
		taxPct := pricing.TaxPercentage
		if req.TaxPercentage.Valid {
			taxPct = req.TaxPercentage.Decimal
		}
		servicePct := pricing.ServiceChargePercentage
		if req.ServiceChargePercentage.Valid {
			servicePct = req.ServiceChargePercentage.Decimal
		}

		subtotal := decimal.Zero
		lines := make([]database.CreateOrderItemParams, 0, len(req.Items))
		for i, item := range req.Items {
			price, err := s.priceItem(ctx, store, item.MenuItemID)
			if err != nil {
				return fmt.Errorf("item[%d]: %w", i, err)
			}
			lineSubtotal := LineSubtotal(price, item.Quantity)
			subtotal = subtotal.Add(lineSubtotal)
			lines = append(lines, database.CreateOrderItemParams{
				MenuItemID: item.MenuItemID,
				Quantity:   item.Quantity,
				Price:      decimalToNumeric(price),
				Subtotal:   decimalToNumeric(lineSubtotal),
				Notes:      optionalText(item.Notes),
			})
		}

		discount, err := resolveDiscount(ctx, store, req.DiscountCode, subtotal, s.now())
		if err != nil {
			return err
		}
		totals := ComputeTotals(subtotal, taxPct, servicePct, discount.Amount)

		order, err := store.CreateOrder(ctx, database.CreateOrderParams{
			OrderNumber:             newOrderNumber(req.Source, s.now()),
			TableID:                 pgtype.UUID{Bytes: req.TableID.UUID, Valid: req.TableID.Valid},
			CustomerName:            optionalText(req.CustomerName),
			CustomerPhone:           optionalText(req.CustomerPhone),
			CustomerEmail:           optionalText(req.CustomerEmail),
			OrderType:               req.OrderType,
			OrderSource:             req.Source,
			Subtotal:                decimalToNumeric(totals.Subtotal),
			Tax:                     decimalToNumeric(totals.Tax),
			TaxPercentage:           decimalToNumeric(taxPct),
			ServiceCharge:           decimalToNumeric(totals.ServiceCharge),
			ServiceChargePercentage: decimalToNumeric(servicePct),
			Discount:                decimalToNumeric(totals.Discount),
			DiscountCode:            optionalText(discount.Code),
			Total:                   decimalToNumeric(totals.Total),
			Notes:                   optionalText(req.Notes),
			SpecialRequests:         optionalText(req.SpecialRequests),
			CreatedBy:               actorUUID(req.Actor),
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for i, line := range lines {
			line.OrderID = order.ID
			if _, err := store.CreateOrderItem(ctx, line); err != nil {
				return fmt.Errorf("item[%d]: create order item: %w", i, err)
			}
			if pricing.AutoDeductInventory {
				if err := deductForMenuItem(ctx, store, line.MenuItemID, line.Quantity, order.ID, actorUUID(req.Actor)); err != nil {
					return fmt.Errorf("item[%d]: %w", i, err)
				}
			}
		}

		if req.TableID.Valid {
			if err := occupyTable(ctx, store, req.TableID.UUID, order.ID); err != nil {
				return err
			}
		}

		items, err := store.ListOrderItemDetails(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		out = &OrderDetail{Order: order, Items: items}
		return nil
	})
	return out, err
}

// priceItem returns the current menu price of an available item.
func (s *FulfillmentService) priceItem(ctx context.Context, store OrderStore, menuItemID uuid.UUID) (decimal.Decimal, error) {
	menu, err := store.GetMenuItemForOrder(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrItemNotFound
		}
		return decimal.Zero, fmt.Errorf("get menu item: %w", err)
	}
	if !menu.IsAvailable {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrItemUnavailable, menu.Name)
	}
	return numericToDecimal(menu.Price), nil
}

func (s *FulfillmentService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	return s.readOrder(ctx, func(store OrderStore) (database.Order, error) {
		return store.GetOrder(ctx, id)
	})
}

func (s *FulfillmentService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderDetail, error) {
	return s.readOrder(ctx, func(store OrderStore) (database.Order, error) {
		return store.GetOrderByNumber(ctx, strings.TrimSpace(orderNumber))
	})
}

func (s *FulfillmentService) readOrder(ctx context.Context, get func(OrderStore) (database.Order, error)) (*OrderDetail, error) {
	var out *OrderDetail
	err := s.withTx(ctx, func(store OrderStore) error {
		order, err := get(store)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}
		items, err := store.ListOrderItemDetails(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		out = &OrderDetail{Order: order, Items: items}
		return nil
	})
	return out, err
}

// OrderFilter narrows ListOrders. Zero values mean no filter.
type OrderFilter struct {
	Status    string
	TableID   uuid.NullUUID
	OrderType string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int32
	Offset    int32
}

func (s *FulfillmentService) ListOrders(ctx context.Context, f OrderFilter) ([]database.OrderSummaryRow, error) {
	if f.Status != "" && !IsValidOrderStatus(f.Status) {
		return nil, ErrInvalidStatus
	}
	if f.OrderType != "" && !isValidOrderType(f.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var out []database.OrderSummaryRow
	err := s.withTx(ctx, func(store OrderStore) error {
		rows, err := store.ListOrders(ctx, database.ListOrdersParams{
			Status:    optionalText(f.Status),
			TableID:   pgtype.UUID{Bytes: f.TableID.UUID, Valid: f.TableID.Valid},
			OrderType: optionalText(f.OrderType),
			DateFrom:  optionalDate(f.DateFrom),
			DateTo:    optionalDate(f.DateTo),
			Limit:     f.Limit,
			Offset:    f.Offset,
		})
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}

// ActiveOrders lists orders that are neither completed nor cancelled.
func (s *FulfillmentService) ActiveOrders(ctx context.Context) ([]database.OrderSummaryRow, error) {
	var out []database.OrderSummaryRow
	err := s.withTx(ctx, func(store OrderStore) error {
		rows, err := store.ListActiveOrders(ctx)
		if err != nil {
			return fmt.Errorf("list active orders: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}

// OrderProgress is what a customer sees when tracking an order.
type OrderProgress struct {
	Order              database.Order
	Items              []database.OrderItemDetailRow
	TotalItems         int
	PreparedItems      int
	ReadyItems         int
	ProgressPercentage int
	StatusMessage      string
}

// TrackOrder reports kitchen progress by order number. Items that are ready
// or served count as prepared; served items also count as ready.
func (s *FulfillmentService) TrackOrder(ctx context.Context, orderNumber string) (*OrderProgress, error) {
	detail, err := s.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return BuildProgress(detail), nil
}

func BuildProgress(detail *OrderDetail) *OrderProgress {
	p := &OrderProgress{
		Order:         detail.Order,
		Items:         detail.Items,
		TotalItems:    len(detail.Items),
		StatusMessage: statusMessages[detail.Order.Status],
	}
	for _, it := range detail.Items {
		switch it.Status {
		case enum.OrderItemStatusReady, enum.OrderItemStatusServed:
			p.PreparedItems++
			p.ReadyItems++
		}
	}
	if p.TotalItems > 0 {
		p.ProgressPercentage = p.PreparedItems * 100 / p.TotalItems
	}
	return p
}

var statusMessages = map[string]string{
	enum.OrderStatusPending:   "Your order has been received",
	enum.OrderStatusConfirmed: "Your order has been confirmed",
	enum.OrderStatusPreparing: "Your order is being prepared",
	enum.OrderStatusReady:     "Your order is ready",
	enum.OrderStatusServed:    "Your order has been served",
	enum.OrderStatusCompleted: "Thank you for your order",
	enum.OrderStatusCancelled: "Your order has been cancelled",
}

// ItemStatusResult is the item after a kitchen transition and the order
// status derived from all of its items.
type ItemStatusResult struct {
	Item  database.OrderItem
	Order database.Order
}

// UpdateItemStatus moves one item forward in the kitchen workflow and then
// re-derives the order status.
func (s *FulfillmentService) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string, actor uuid.NullUUID) (*ItemStatusResult, error) {
	if !IsValidItemStatus(status) {
		return nil, ErrInvalidStatus
	}

	var out *ItemStatusResult
	err := s.withTx(ctx, func(store OrderStore) error {
		line, err := store.GetOrderItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderItemNotFound
			}
			return fmt.Errorf("get order item: %w", err)
		}

		// Order row first, then the item: the same order every writer uses.
		order, err := s.lockOrder(ctx, store, line.OrderID)
		if err != nil {
			return err
		}
		if IsTerminal(order.Status) {
			return ErrOrderClosed
		}

		item, err := store.GetOrderItemForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderItemNotFound
			}
			return fmt.Errorf("lock order item: %w", err)
		}
		if err := ValidateItemTransition(item.Status, status); err != nil {
			return err
		}

		now := pgtype.Timestamptz{Time: s.now(), Valid: true}
		params := database.UpdateOrderItemStatusParams{ID: itemID, Status: status}
		switch status {
		case enum.OrderItemStatusPreparing:
			params.PreparedBy = actorUUID(actor)
		case enum.OrderItemStatusReady:
			params.PreparedBy = actorUUID(actor)
			params.PreparedAt = now
		case enum.OrderItemStatusServed:
			params.PreparedAt = now
			params.ServedAt = now
		}
		updated, err := store.UpdateOrderItemStatus(ctx, params)
		if err != nil {
			return fmt.Errorf("update order item status: %w", err)
		}

		items, err := store.ListOrderItemsByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		statuses := make([]string, len(items))
		for i, it := range items {
			statuses[i] = it.Status
		}
		if derived := DeriveOrderStatus(order.Status, statuses); derived != order.Status {
			order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: order.ID, Status: derived})
			if err != nil {
				return fmt.Errorf("update order status: %w", err)
			}
		}

		out = &ItemStatusResult{Item: updated, Order: order}
		return nil
	})
	return out, err
}

// UpdateOrderStatus applies a manual order transition. Kitchen statuses
// cascade to every item still behind them; cancelled is routed through
// CancelOrder.
func (s *FulfillmentService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status, reason string, actor uuid.NullUUID) (*database.Order, error) {
	if status == enum.OrderStatusCancelled {
		return s.CancelOrder(ctx, orderID, reason, actor)
	}
	if !IsValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	var out database.Order
	var previous string
	err := s.withTx(ctx, func(store OrderStore) error {
		order, err := s.lockOrder(ctx, store, orderID)
		if err != nil {
			return err
		}
		if err := ValidateOrderTransition(order.Status, status, order.IsPaid); err != nil {
			return err
		}
		previous = order.Status

		if cascadeStatuses[status] {
			if err := store.AdvanceOrderItems(ctx, database.AdvanceOrderItemsParams{OrderID: orderID, Status: status}); err != nil {
				return fmt.Errorf("advance order items: %w", err)
			}
		}
		out, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: orderID, Status: status})
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionUpdateOrderStatus,
		EntityType: audit.EntityOrder,
		EntityID:   orderID,
		ActorID:    actor,
		Details:    map[string]interface{}{"from": previous, "to": status},
	})
	return &out, nil
}

// CancelOrder cancels an unpaid, non-terminal order and frees its table.
func (s *FulfillmentService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string, actor uuid.NullUUID) (*database.Order, error) {
	var out database.Order
	err := s.withTx(ctx, func(store OrderStore) error {
		order, err := s.lockOrder(ctx, store, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return ErrOrderAlreadyPaid
		}
		if IsTerminal(order.Status) {
			return ErrOrderClosed
		}

		out, err = store.CancelOrder(ctx, database.CancelOrderParams{
			ID:                 orderID,
			CancellationReason: optionalText(reason),
		})
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		if order.TableID.Valid {
			if err := releaseTable(ctx, store, order.TableID.Bytes, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionCancelOrder,
		EntityType: audit.EntityOrder,
		EntityID:   orderID,
		ActorID:    actor,
		Details: map[string]interface{}{
			"order_number": out.OrderNumber,
			"reason":       strings.TrimSpace(reason),
		},
	})
	return &out, nil
}

// AddItem appends a line to an open, unpaid order and recalculates totals.
// Orders the kitchen has already finished take no new lines.
func (s *FulfillmentService) AddItem(ctx context.Context, orderID uuid.UUID, item OrderItemInput, actor uuid.NullUUID) (*OrderDetail, error) {
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var out *OrderDetail
	err := s.withTx(ctx, func(store OrderStore) error {
		order, err := s.lockEditable(ctx, store, orderID)
		if err != nil {
			return err
		}
		if orderStatusRank[order.Status] >= orderStatusRank[enum.OrderStatusReady] {
			return fmt.Errorf("%w: order is %s", ErrInvalidStateTransition, order.Status)
		}
		pricing, err := s.settings.Load(ctx, store)
		if err != nil {
			return err
		}

		price, err := s.priceItem(ctx, store, item.MenuItemID)
		if err != nil {
			return err
		}
		line, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    orderID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      decimalToNumeric(price),
			Subtotal:   decimalToNumeric(LineSubtotal(price, item.Quantity)),
			Notes:      optionalText(item.Notes),
		})
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
		if pricing.AutoDeductInventory {
			if err := deductForMenuItem(ctx, store, line.MenuItemID, line.Quantity, orderID, actorUUID(actor)); err != nil {
				return err
			}
		}

		out, err = s.recalculate(ctx, store, order)
		return err
	})
	return out, err
}

// RemoveItem deletes a line from an open, unpaid order and recalculates
// totals. Stock already deducted for the line is not returned. The last line
// cannot be removed, and a discounted order must still cover its discount and
// the code's minimum purchase afterwards.
func (s *FulfillmentService) RemoveItem(ctx context.Context, itemID uuid.UUID) (*OrderDetail, error) {
	var out *OrderDetail
	err := s.withTx(ctx, func(store OrderStore) error {
		line, err := store.GetOrderItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderItemNotFound
			}
			return fmt.Errorf("get order item: %w", err)
		}
		order, err := s.lockEditable(ctx, store, line.OrderID)
		if err != nil {
			return err
		}

		items, err := store.ListOrderItemsByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		remaining := make([]database.OrderItem, 0, len(items))
		for _, it := range items {
			if it.ID != itemID {
				remaining = append(remaining, it)
			}
		}
		if len(remaining) == 0 {
			return fmt.Errorf("%w: cannot remove the last item, cancel the order instead", ErrEmptyItems)
		}
		if err := s.checkDiscountStillApplies(ctx, store, order, SumItems(remaining)); err != nil {
			return err
		}

		if err := store.DeleteOrderItem(ctx, itemID); err != nil {
			return fmt.Errorf("delete order item: %w", err)
		}
		out, err = s.recalculate(ctx, store, order)
		return err
	})
	return out, err
}

// checkDiscountStillApplies rejects a subtotal that no longer covers the
// stored discount amount or, while the code is still active, its minimum
// purchase.
func (s *FulfillmentService) checkDiscountStillApplies(ctx context.Context, store OrderStore, order database.Order, subtotal decimal.Decimal) error {
	discount := numericToDecimal(order.Discount)
	if !discount.IsPositive() {
		return nil
	}
	if subtotal.LessThan(discount) {
		return fmt.Errorf("%w: subtotal %s below discount %s", ErrMinPurchaseNotMet, subtotal.StringFixed(2), discount.StringFixed(2))
	}
	if !order.DiscountCode.Valid {
		return nil
	}

	d, err := store.GetActiveDiscountByCode(ctx, database.GetActiveDiscountByCodeParams{
		Code:  order.DiscountCode.String,
		Today: pgtype.Date{Time: s.now(), Valid: true},
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get discount: %w", err)
	}
	if floor := numericToDecimal(d.MinPurchase); subtotal.LessThan(floor) {
		return fmt.Errorf("%w: minimum %s", ErrMinPurchaseNotMet, floor.StringFixed(2))
	}
	return nil
}

func (s *FulfillmentService) recalculate(ctx context.Context, store OrderStore, order database.Order) (*OrderDetail, error) {
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	updated, err := store.UpdateOrderTotals(ctx, totalsParams(order, RecalculateTotals(order, items)))
	if err != nil {
		return nil, fmt.Errorf("update order totals: %w", err)
	}
	details, err := store.ListOrderItemDetails(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return &OrderDetail{Order: updated, Items: details}, nil
}

func (s *FulfillmentService) lockOrder(ctx context.Context, store OrderStore, orderID uuid.UUID) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("lock order: %w", err)
	}
	return order, nil
}

// lockEditable locks an order whose items may still change.
func (s *FulfillmentService) lockEditable(ctx context.Context, store OrderStore, orderID uuid.UUID) (database.Order, error) {
	order, err := s.lockOrder(ctx, store, orderID)
	if err != nil {
		return database.Order{}, err
	}
	if order.IsPaid {
		return database.Order{}, ErrOrderAlreadyPaid
	}
	if IsTerminal(order.Status) {
		return database.Order{}, ErrOrderClosed
	}
	return order, nil
}

// --- Helpers ---

func isValidOrderType(t string) bool {
	switch t {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery, enum.OrderTypeQR:
		return true
	}
	return false
}

// newOrderNumber builds ORD-YYYYMMDD-XXXXXX (QR- for customer orders) with
// six random hex digits. Collisions are caught by the unique constraint.
func newOrderNumber(source string, now time.Time) string {
	prefix := "ORD"
	if source == enum.OrderSourceCustomerQR {
		prefix = "QR"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// isUniqueViolation checks for a 23505 on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}
