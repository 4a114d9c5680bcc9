package service

import (
	"context"
	"sort"
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

// --- Mock transaction ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
// Rollback before Commit restores the fakeDB to its state at Begin.
type mockTx struct {
	db        *fakeDB
	snapshot  *fakeDB
	done      bool
	commitErr error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.done = true
	m.db.commits++
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.done {
		m.db.restore(m.snapshot)
		m.db.rollbacks++
		m.done = true
	}
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	db        *fakeDB
	err       error
	commitErr error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &mockTx{db: m.db, snapshot: m.db.clone(), commitErr: m.commitErr}, nil
}

// fakeRecorder collects audit events.
type fakeRecorder struct {
	events []audit.Event
}

func (r *fakeRecorder) Record(ctx context.Context, e audit.Event) {
	r.events = append(r.events, e)
}

func (r *fakeRecorder) actions() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

// --- In-memory database ---

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeDB struct {
	users     map[uuid.UUID]string
	menu      map[uuid.UUID]database.MenuItem
	orders    map[uuid.UUID]database.Order
	items     []database.OrderItem
	tables    map[uuid.UUID]database.Table
	discounts map[string]database.Discount
	settings  map[string]string
	inventory map[uuid.UUID]database.InventoryItem
	movements []database.InventoryMovement
	recipes   []database.RecipeIngredient
	payments  []database.Payment
	splits    []database.PaymentSplit

	clock time.Time

	// Errors returned, in order, by the next CreateOrder / CreatePayment calls.
	createOrderErrs   []error
	createPaymentErrs []error
	adjustErr         error

	commits   int
	rollbacks int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     map[uuid.UUID]string{},
		menu:      map[uuid.UUID]database.MenuItem{},
		orders:    map[uuid.UUID]database.Order{},
		tables:    map[uuid.UUID]database.Table{},
		discounts: map[string]database.Discount{},
		settings:  map[string]string{},
		inventory: map[uuid.UUID]database.InventoryItem{},
		clock:     testNow,
	}
}

func (db *fakeDB) clone() *fakeDB {
	c := &fakeDB{
		users:     make(map[uuid.UUID]string, len(db.users)),
		menu:      make(map[uuid.UUID]database.MenuItem, len(db.menu)),
		orders:    make(map[uuid.UUID]database.Order, len(db.orders)),
		items:     append([]database.OrderItem(nil), db.items...),
		tables:    make(map[uuid.UUID]database.Table, len(db.tables)),
		discounts: make(map[string]database.Discount, len(db.discounts)),
		settings:  make(map[string]string, len(db.settings)),
		inventory: make(map[uuid.UUID]database.InventoryItem, len(db.inventory)),
		movements: append([]database.InventoryMovement(nil), db.movements...),
		recipes:   append([]database.RecipeIngredient(nil), db.recipes...),
		payments:  append([]database.Payment(nil), db.payments...),
		splits:    append([]database.PaymentSplit(nil), db.splits...),
	}
	for k, v := range db.users {
		c.users[k] = v
	}
	for k, v := range db.menu {
		c.menu[k] = v
	}
	for k, v := range db.orders {
		c.orders[k] = v
	}
	for k, v := range db.tables {
		c.tables[k] = v
	}
	for k, v := range db.discounts {
		c.discounts[k] = v
	}
	for k, v := range db.settings {
		c.settings[k] = v
	}
	for k, v := range db.inventory {
		c.inventory[k] = v
	}
	return c
}

func (db *fakeDB) restore(s *fakeDB) {
	db.users = s.users
	db.menu = s.menu
	db.orders = s.orders
	db.items = s.items
	db.tables = s.tables
	db.discounts = s.discounts
	db.settings = s.settings
	db.inventory = s.inventory
	db.movements = s.movements
	db.recipes = s.recipes
	db.payments = s.payments
	db.splits = s.splits
}

func (db *fakeDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// --- Seed helpers ---

func (db *fakeDB) addMenu(name, price string, available bool) uuid.UUID {
	id := uuid.New()
	db.menu[id] = database.MenuItem{
		ID:              id,
		Name:            name,
		Price:           makeNumeric(price),
		IsAvailable:     available,
		PreparationTime: 15,
		CreatedAt:       db.tick(),
	}
	return id
}

func (db *fakeDB) addTable(number string) uuid.UUID {
	id := uuid.New()
	db.tables[id] = database.Table{ID: id, TableNumber: number, Capacity: 4, Status: enum.TableStatusAvailable}
	return id
}

func (db *fakeDB) addInventory(name, unit, current, minimum string) uuid.UUID {
	id := uuid.New()
	db.inventory[id] = database.InventoryItem{
		ID:           id,
		ItemName:     name,
		Unit:         unit,
		CurrentStock: makeQuantity(current),
		MinimumStock: makeQuantity(minimum),
		CreatedAt:    db.tick(),
	}
	return id
}

func (db *fakeDB) addRecipe(menuItemID, inventoryItemID uuid.UUID, quantity string) {
	db.recipes = append(db.recipes, database.RecipeIngredient{
		ID:              uuid.New(),
		MenuItemID:      menuItemID,
		InventoryItemID: inventoryItemID,
		Quantity:        makeQuantity(quantity),
		Unit:            db.inventory[inventoryItemID].Unit,
	})
}

func (db *fakeDB) addDiscount(d database.Discount) {
	d.ID = uuid.New()
	if !d.MinPurchase.Valid {
		d.MinPurchase = makeNumeric("0")
	}
	d.IsActive = true
	db.discounts[d.Code] = d
}

func (db *fakeDB) stock(id uuid.UUID) decimal.Decimal {
	return numericToDecimal(db.inventory[id].CurrentStock)
}

func (db *fakeDB) itemsOf(orderID uuid.UUID) []database.OrderItem {
	var out []database.OrderItem
	for _, it := range db.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out
}

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func makeQuantity(val string) pgtype.Numeric {
	return quantityToNumeric(decimal.RequireFromString(val))
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// --- Store ---

// fakeStore satisfies OrderStore, PaymentStore, InventoryStore and
// KitchenStore over a fakeDB.
type fakeStore struct {
	db *fakeDB
}

func (s *fakeStore) ListSettings(ctx context.Context, keys []string) ([]database.Setting, error) {
	var out []database.Setting
	for _, k := range keys {
		if v, ok := s.db.settings[k]; ok {
			out = append(out, database.Setting{SettingKey: k, SettingValue: v})
		}
	}
	return out, nil
}

func (s *fakeStore) GetActiveDiscountByCode(ctx context.Context, arg database.GetActiveDiscountByCodeParams) (database.Discount, error) {
	d, ok := s.db.discounts[arg.Code]
	if !ok || !d.IsActive {
		return database.Discount{}, pgx.ErrNoRows
	}
	if d.StartDate.Valid && arg.Today.Time.Before(d.StartDate.Time) {
		return database.Discount{}, pgx.ErrNoRows
	}
	if d.EndDate.Valid && arg.Today.Time.After(d.EndDate.Time) {
		return database.Discount{}, pgx.ErrNoRows
	}
	return d, nil
}

func (s *fakeStore) IncrementDiscountUsage(ctx context.Context, id uuid.UUID) error {
	for code, d := range s.db.discounts {
		if d.ID == id {
			d.UsageCount++
			s.db.discounts[code] = d
		}
	}
	return nil
}

func (s *fakeStore) GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.Table, error) {
	t, ok := s.db.tables[id]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (s *fakeStore) OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.Table, error) {
	t := s.db.tables[arg.ID]
	t.Status = enum.TableStatusOccupied
	t.CurrentOrderID = pgtype.UUID{Bytes: arg.OrderID, Valid: true}
	s.db.tables[arg.ID] = t
	return t, nil
}

func (s *fakeStore) ReleaseTable(ctx context.Context, id uuid.UUID) (database.Table, error) {
	t := s.db.tables[id]
	t.Status = enum.TableStatusAvailable
	t.CurrentOrderID = pgtype.UUID{}
	s.db.tables[id] = t
	return t, nil
}

func (s *fakeStore) MarkTableCleaning(ctx context.Context, id uuid.UUID) (database.Table, error) {
	t := s.db.tables[id]
	t.Status = enum.TableStatusCleaning
	t.CurrentOrderID = pgtype.UUID{}
	s.db.tables[id] = t
	return t, nil
}

func (s *fakeStore) ListRecipeIngredients(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeIngredientRow, error) {
	out := []database.RecipeIngredientRow{}
	for _, r := range s.db.recipes {
		if r.MenuItemID != menuItemID {
			continue
		}
		inv := s.db.inventory[r.InventoryItemID]
		out = append(out, database.RecipeIngredientRow{
			RecipeIngredient: r,
			ItemName:         inv.ItemName,
			CurrentStock:     inv.CurrentStock,
			StockUnit:        inv.Unit,
		})
	}
	return out, nil
}

func (s *fakeStore) AdjustInventoryStock(ctx context.Context, arg database.AdjustInventoryStockParams) (database.InventoryItem, error) {
	if s.db.adjustErr != nil {
		return database.InventoryItem{}, s.db.adjustErr
	}
	it, ok := s.db.inventory[arg.ID]
	if !ok {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	it.CurrentStock = quantityToNumeric(numericToDecimal(it.CurrentStock).Add(numericToDecimal(arg.Delta)))
	it.UpdatedAt = s.db.tick()
	s.db.inventory[arg.ID] = it
	return it, nil
}

func (s *fakeStore) CreateInventoryMovement(ctx context.Context, arg database.CreateInventoryMovementParams) (database.InventoryMovement, error) {
	m := database.InventoryMovement{
		ID:              uuid.New(),
		InventoryItemID: arg.InventoryItemID,
		MovementType:    arg.MovementType,
		Quantity:        arg.Quantity,
		Unit:            arg.Unit,
		ReferenceType:   arg.ReferenceType,
		ReferenceID:     arg.ReferenceID,
		Reason:          arg.Reason,
		Cost:            arg.Cost,
		CreatedBy:       arg.CreatedBy,
		CreatedAt:       s.db.tick(),
	}
	s.db.movements = append(s.db.movements, m)
	return m, nil
}

func (s *fakeStore) GetMenuItemForOrder(ctx context.Context, id uuid.UUID) (database.GetMenuItemForOrderRow, error) {
	m, ok := s.db.menu[id]
	if !ok {
		return database.GetMenuItemForOrderRow{}, pgx.ErrNoRows
	}
	return database.GetMenuItemForOrderRow{ID: m.ID, Name: m.Name, Price: m.Price, IsAvailable: m.IsAvailable}, nil
}

func (s *fakeStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	if len(s.db.createOrderErrs) > 0 {
		err := s.db.createOrderErrs[0]
		s.db.createOrderErrs = s.db.createOrderErrs[1:]
		if err != nil {
			return database.Order{}, err
		}
	}
	for _, o := range s.db.orders {
		if o.OrderNumber == arg.OrderNumber {
			return database.Order{}, uniqueViolation("orders_order_number_key")
		}
	}
	now := s.db.tick()
	o := database.Order{
		ID:                      uuid.New(),
		OrderNumber:             arg.OrderNumber,
		TableID:                 arg.TableID,
		CustomerName:            arg.CustomerName,
		CustomerPhone:           arg.CustomerPhone,
		CustomerEmail:           arg.CustomerEmail,
		OrderType:               arg.OrderType,
		OrderSource:             arg.OrderSource,
		Status:                  enum.OrderStatusPending,
		Subtotal:                arg.Subtotal,
		Tax:                     arg.Tax,
		TaxPercentage:           arg.TaxPercentage,
		ServiceCharge:           arg.ServiceCharge,
		ServiceChargePercentage: arg.ServiceChargePercentage,
		Discount:                arg.Discount,
		DiscountCode:            arg.DiscountCode,
		Total:                   arg.Total,
		Notes:                   arg.Notes,
		SpecialRequests:         arg.SpecialRequests,
		CreatedBy:               arg.CreatedBy,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	s.db.orders[o.ID] = o
	return o, nil
}

func (s *fakeStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := s.db.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (s *fakeStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *fakeStore) GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error) {
	for _, o := range s.db.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (s *fakeStore) updateOrder(id uuid.UUID, fn func(o *database.Order)) (database.Order, error) {
	o, ok := s.db.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	fn(&o)
	o.UpdatedAt = s.db.tick()
	s.db.orders[id] = o
	return o, nil
}

func (s *fakeStore) UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error) {
	return s.updateOrder(arg.ID, func(o *database.Order) {
		o.Subtotal = arg.Subtotal
		o.Tax = arg.Tax
		o.ServiceCharge = arg.ServiceCharge
		o.Discount = arg.Discount
		o.Total = arg.Total
	})
}

func (s *fakeStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return s.updateOrder(arg.ID, func(o *database.Order) {
		o.Status = arg.Status
		if arg.Status == enum.OrderStatusCompleted {
			o.CompletedAt = pgtype.Timestamptz{Time: s.db.clock, Valid: true}
		}
	})
}

func (s *fakeStore) CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
	return s.updateOrder(arg.ID, func(o *database.Order) {
		o.Status = enum.OrderStatusCancelled
		o.CancellationReason = arg.CancellationReason
		o.CancelledAt = pgtype.Timestamptz{Time: s.db.clock, Valid: true}
	})
}

func (s *fakeStore) MarkOrderPaid(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return s.updateOrder(id, func(o *database.Order) {
		o.IsPaid = true
		o.PaidAt = pgtype.Timestamptz{Time: s.db.clock, Valid: true}
		o.Status = enum.OrderStatusCompleted
		o.CompletedAt = o.PaidAt
	})
}

func (s *fakeStore) RevertOrderPayment(ctx context.Context, arg database.RevertOrderPaymentParams) (database.Order, error) {
	return s.updateOrder(arg.ID, func(o *database.Order) {
		o.IsPaid = false
		o.PaidAt = pgtype.Timestamptz{}
		o.Status = enum.OrderStatusCancelled
		o.CancellationReason = arg.CancellationReason
		o.CancelledAt = pgtype.Timestamptz{Time: s.db.clock, Valid: true}
	})
}

func (s *fakeStore) summaries(keep func(o database.Order) bool) []database.OrderSummaryRow {
	out := []database.OrderSummaryRow{}
	for _, o := range s.db.orders {
		if !keep(o) {
			continue
		}
		row := database.OrderSummaryRow{Order: o, ItemCount: int64(len(s.db.itemsOf(o.ID)))}
		if o.TableID.Valid {
			row.TableNumber = pgtype.Text{String: s.db.tables[o.TableID.Bytes].TableNumber, Valid: true}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *fakeStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.OrderSummaryRow, error) {
	rows := s.summaries(func(o database.Order) bool {
		if arg.Status.Valid && o.Status != arg.Status.String {
			return false
		}
		if arg.TableID.Valid && (!o.TableID.Valid || o.TableID.Bytes != arg.TableID.Bytes) {
			return false
		}
		if arg.OrderType.Valid && o.OrderType != arg.OrderType.String {
			return false
		}
		return true
	})
	// newest first
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	start := int(arg.Offset)
	if start > len(rows) {
		start = len(rows)
	}
	end := start + int(arg.Limit)
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], nil
}

func (s *fakeStore) ListActiveOrders(ctx context.Context) ([]database.OrderSummaryRow, error) {
	return s.summaries(func(o database.Order) bool { return !IsTerminal(o.Status) }), nil
}

func (s *fakeStore) ListUnpaidOrders(ctx context.Context) ([]database.OrderSummaryRow, error) {
	return s.summaries(func(o database.Order) bool { return !o.IsPaid && !IsTerminal(o.Status) }), nil
}

func (s *fakeStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	it := database.OrderItem{
		ID:         uuid.New(),
		OrderID:    arg.OrderID,
		MenuItemID: arg.MenuItemID,
		Quantity:   arg.Quantity,
		Price:      arg.Price,
		Subtotal:   arg.Subtotal,
		Status:     enum.OrderItemStatusPending,
		Notes:      arg.Notes,
		CreatedAt:  s.db.tick(),
	}
	s.db.items = append(s.db.items, it)
	return it, nil
}

func (s *fakeStore) GetOrderItem(ctx context.Context, id uuid.UUID) (database.OrderItem, error) {
	for _, it := range s.db.items {
		if it.ID == id {
			return it, nil
		}
	}
	return database.OrderItem{}, pgx.ErrNoRows
}

func (s *fakeStore) GetOrderItemForUpdate(ctx context.Context, id uuid.UUID) (database.OrderItem, error) {
	return s.GetOrderItem(ctx, id)
}

func (s *fakeStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	out := s.db.itemsOf(orderID)
	if out == nil {
		out = []database.OrderItem{}
	}
	return out, nil
}

func (s *fakeStore) ListOrderItemDetails(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemDetailRow, error) {
	out := []database.OrderItemDetailRow{}
	for _, it := range s.db.itemsOf(orderID) {
		m := s.db.menu[it.MenuItemID]
		out = append(out, database.OrderItemDetailRow{OrderItem: it, MenuName: m.Name, PreparationTime: m.PreparationTime})
	}
	return out, nil
}

func (s *fakeStore) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	kept := s.db.items[:0:0]
	for _, it := range s.db.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.db.items = kept
	return nil
}

func (s *fakeStore) UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error) {
	for i, it := range s.db.items {
		if it.ID != arg.ID {
			continue
		}
		it.Status = arg.Status
		if arg.PreparedBy.Valid {
			it.PreparedBy = arg.PreparedBy
		}
		if arg.PreparedAt.Valid {
			it.PreparedAt = arg.PreparedAt
		}
		if arg.ServedAt.Valid {
			it.ServedAt = arg.ServedAt
		}
		s.db.items[i] = it
		return it, nil
	}
	return database.OrderItem{}, pgx.ErrNoRows
}

func (s *fakeStore) AdvanceOrderItems(ctx context.Context, arg database.AdvanceOrderItemsParams) error {
	now := pgtype.Timestamptz{Time: s.db.clock, Valid: true}
	for i, it := range s.db.items {
		if it.OrderID != arg.OrderID || itemStatusRank[it.Status] >= itemStatusRank[arg.Status] {
			continue
		}
		it.Status = arg.Status
		if (arg.Status == enum.OrderItemStatusReady || arg.Status == enum.OrderItemStatusServed) && !it.PreparedAt.Valid {
			it.PreparedAt = now
		}
		if arg.Status == enum.OrderItemStatusServed && !it.ServedAt.Valid {
			it.ServedAt = now
		}
		s.db.items[i] = it
	}
	return nil
}

func (s *fakeStore) ListKitchenItems(ctx context.Context, statuses []string) ([]database.KitchenItemRow, error) {
	want := map[string]bool{}
	for _, st := range statuses {
		want[st] = true
	}
	out := []database.KitchenItemRow{}
	for _, it := range s.db.items {
		o := s.db.orders[it.OrderID]
		if !want[it.Status] || IsTerminal(o.Status) {
			continue
		}
		m := s.db.menu[it.MenuItemID]
		row := database.KitchenItemRow{
			OrderItem:       it,
			MenuName:        m.Name,
			PreparationTime: m.PreparationTime,
			OrderNumber:     o.OrderNumber,
			OrderType:       o.OrderType,
			OrderStatus:     o.Status,
			OrderCreatedAt:  o.CreatedAt,
			SpecialRequests: o.SpecialRequests,
		}
		if o.TableID.Valid {
			row.TableNumber = pgtype.Text{String: s.db.tables[o.TableID.Bytes].TableNumber, Valid: true}
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderCreatedAt.Before(out[j].OrderCreatedAt) })
	return out, nil
}

func (s *fakeStore) GetLastPaymentNumber(ctx context.Context, prefix string) (string, error) {
	last := ""
	for _, p := range s.db.payments {
		if strings.HasPrefix(p.PaymentNumber, prefix) && p.PaymentNumber > last {
			last = p.PaymentNumber
		}
	}
	if last == "" {
		return "", pgx.ErrNoRows
	}
	return last, nil
}

func (s *fakeStore) CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error) {
	if len(s.db.createPaymentErrs) > 0 {
		err := s.db.createPaymentErrs[0]
		s.db.createPaymentErrs = s.db.createPaymentErrs[1:]
		if err != nil {
			return database.Payment{}, err
		}
	}
	for _, p := range s.db.payments {
		if p.PaymentNumber == arg.PaymentNumber {
			return database.Payment{}, uniqueViolation("payments_payment_number_key")
		}
	}
	now := s.db.tick()
	p := database.Payment{
		ID:            uuid.New(),
		PaymentNumber: arg.PaymentNumber,
		OrderID:       arg.OrderID,
		Amount:        arg.Amount,
		PaymentMethod: arg.PaymentMethod,
		PaymentStatus: enum.PaymentStatusCompleted,
		PaidAmount:    arg.PaidAmount,
		ChangeAmount:  arg.ChangeAmount,
		Notes:         arg.Notes,
		ProcessedBy:   arg.ProcessedBy,
		PaidAt:        now,
		CreatedAt:     now,
	}
	s.db.payments = append(s.db.payments, p)
	return p, nil
}

func (s *fakeStore) GetPayment(ctx context.Context, id uuid.UUID) (database.Payment, error) {
	for _, p := range s.db.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return database.Payment{}, pgx.ErrNoRows
}

func (s *fakeStore) GetPaymentForUpdate(ctx context.Context, id uuid.UUID) (database.Payment, error) {
	return s.GetPayment(ctx, id)
}

func (s *fakeStore) RefundPayment(ctx context.Context, arg database.RefundPaymentParams) (database.Payment, error) {
	for i, p := range s.db.payments {
		if p.ID != arg.ID {
			continue
		}
		p.PaymentStatus = enum.PaymentStatusRefunded
		p.RefundedAt = pgtype.Timestamptz{Time: s.db.tick(), Valid: true}
		p.RefundReason = arg.RefundReason
		s.db.payments[i] = p
		return p, nil
	}
	return database.Payment{}, pgx.ErrNoRows
}

func (s *fakeStore) ListPayments(ctx context.Context, arg database.ListPaymentsParams) ([]database.PaymentListRow, error) {
	out := []database.PaymentListRow{}
	for _, p := range s.db.payments {
		if arg.PaymentStatus.Valid && p.PaymentStatus != arg.PaymentStatus.String {
			continue
		}
		if arg.PaymentMethod.Valid && p.PaymentMethod != arg.PaymentMethod.String {
			continue
		}
		if arg.Date.Valid && p.PaidAt.Format("2006-01-02") != arg.Date.Time.Format("2006-01-02") {
			continue
		}
		out = append(out, database.PaymentListRow{Payment: p, OrderNumber: s.db.orders[p.OrderID].OrderNumber})
	}
	return out, nil
}

func (s *fakeStore) CreatePaymentSplit(ctx context.Context, arg database.CreatePaymentSplitParams) (database.PaymentSplit, error) {
	sp := database.PaymentSplit{
		ID:            uuid.New(),
		PaymentID:     arg.PaymentID,
		SplitNumber:   arg.SplitNumber,
		Amount:        arg.Amount,
		PaymentMethod: arg.PaymentMethod,
		PaymentStatus: enum.PaymentStatusCompleted,
		PaidAt:        s.db.tick(),
	}
	s.db.splits = append(s.db.splits, sp)
	return sp, nil
}

func (s *fakeStore) ListPaymentSplits(ctx context.Context, paymentID uuid.UUID) ([]database.PaymentSplit, error) {
	out := []database.PaymentSplit{}
	for _, sp := range s.db.splits {
		if sp.PaymentID == paymentID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *fakeStore) RefundPaymentSplits(ctx context.Context, paymentID uuid.UUID) error {
	for i, sp := range s.db.splits {
		if sp.PaymentID == paymentID {
			sp.PaymentStatus = enum.PaymentStatusRefunded
			s.db.splits[i] = sp
		}
	}
	return nil
}

func (s *fakeStore) CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error) {
	now := s.db.tick()
	it := database.InventoryItem{
		ID:           uuid.New(),
		ItemName:     arg.ItemName,
		Category:     arg.Category,
		Unit:         arg.Unit,
		CurrentStock: arg.CurrentStock,
		MinimumStock: arg.MinimumStock,
		UnitPrice:    arg.UnitPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.inventory[it.ID] = it
	return it, nil
}

func (s *fakeStore) GetInventoryItem(ctx context.Context, id uuid.UUID) (database.InventoryItem, error) {
	it, ok := s.db.inventory[id]
	if !ok {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (s *fakeStore) GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (database.InventoryItem, error) {
	return s.GetInventoryItem(ctx, id)
}

func (s *fakeStore) inventoryWhere(keep func(it database.InventoryItem) bool) []database.InventoryItem {
	out := []database.InventoryItem{}
	for _, it := range s.db.inventory {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out
}

func (s *fakeStore) ListInventoryItems(ctx context.Context, arg database.ListInventoryItemsParams) ([]database.InventoryItem, error) {
	return s.inventoryWhere(func(it database.InventoryItem) bool {
		if arg.Category.Valid && it.Category.String != arg.Category.String {
			return false
		}
		if arg.LowStockOnly && numericToDecimal(it.CurrentStock).GreaterThan(numericToDecimal(it.MinimumStock)) {
			return false
		}
		if arg.Search.Valid && !strings.Contains(strings.ToLower(it.ItemName), strings.ToLower(arg.Search.String)) {
			return false
		}
		return true
	}), nil
}

func (s *fakeStore) ListLowStockInventory(ctx context.Context) ([]database.InventoryItem, error) {
	return s.inventoryWhere(func(it database.InventoryItem) bool {
		return numericToDecimal(it.CurrentStock).LessThanOrEqual(numericToDecimal(it.MinimumStock))
	}), nil
}

func (s *fakeStore) RestockInventoryItem(ctx context.Context, arg database.RestockInventoryItemParams) (database.InventoryItem, error) {
	it, ok := s.db.inventory[arg.ID]
	if !ok {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	it.CurrentStock = quantityToNumeric(numericToDecimal(it.CurrentStock).Add(numericToDecimal(arg.Quantity)))
	it.RestockQuantity = arg.Quantity
	it.LastRestockDate = pgtype.Date{Time: s.db.clock, Valid: true}
	it.UpdatedAt = s.db.tick()
	s.db.inventory[arg.ID] = it
	return it, nil
}

func (s *fakeStore) UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error) {
	it, ok := s.db.inventory[arg.ID]
	if !ok {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	if arg.ItemName.Valid {
		it.ItemName = arg.ItemName.String
	}
	if arg.Category.Valid {
		it.Category = arg.Category
	}
	if arg.Unit.Valid {
		it.Unit = arg.Unit.String
	}
	if arg.MinimumStock.Valid {
		it.MinimumStock = arg.MinimumStock
	}
	if arg.UnitPrice.Valid {
		it.UnitPrice = arg.UnitPrice
	}
	it.UpdatedAt = s.db.tick()
	s.db.inventory[arg.ID] = it
	return it, nil
}

func (s *fakeStore) DeleteInventoryItem(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := s.db.inventory[id]; !ok {
		return 0, nil
	}
	delete(s.db.inventory, id)
	kept := s.db.movements[:0:0]
	for _, m := range s.db.movements {
		if m.InventoryItemID != id {
			kept = append(kept, m)
		}
	}
	s.db.movements = kept
	return 1, nil
}

func (s *fakeStore) CountRecipesUsingInventoryItem(ctx context.Context, inventoryItemID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range s.db.recipes {
		if r.InventoryItemID == inventoryItemID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ListInventoryMovements(ctx context.Context, arg database.ListInventoryMovementsParams) ([]database.InventoryMovementRow, error) {
	out := []database.InventoryMovementRow{}
	for i := len(s.db.movements) - 1; i >= 0; i-- {
		m := s.db.movements[i]
		if arg.InventoryItemID.Valid && m.InventoryItemID != arg.InventoryItemID.Bytes {
			continue
		}
		if arg.MovementType.Valid && m.MovementType != arg.MovementType.String {
			continue
		}
		out = append(out, database.InventoryMovementRow{InventoryMovement: m, ItemName: s.db.inventory[m.InventoryItemID].ItemName})
		if len(out) == int(arg.Limit) {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteRecipeIngredients(ctx context.Context, menuItemID uuid.UUID) error {
	kept := s.db.recipes[:0:0]
	for _, r := range s.db.recipes {
		if r.MenuItemID != menuItemID {
			kept = append(kept, r)
		}
	}
	s.db.recipes = kept
	return nil
}

func (s *fakeStore) CreateRecipeIngredient(ctx context.Context, arg database.CreateRecipeIngredientParams) (database.RecipeIngredient, error) {
	r := database.RecipeIngredient{
		ID:              uuid.New(),
		MenuItemID:      arg.MenuItemID,
		InventoryItemID: arg.InventoryItemID,
		Quantity:        arg.Quantity,
		Unit:            arg.Unit,
		Notes:           arg.Notes,
	}
	s.db.recipes = append(s.db.recipes, r)
	return r, nil
}

// --- Test environment ---

type testEnv struct {
	db        *fakeDB
	pool      *mockTxBeginner
	rec       *fakeRecorder
	orders    *FulfillmentService
	payments  *PaymentService
	inventory *InventoryService
	kitchen   *KitchenService
}

func newTestEnv() *testEnv {
	db := newFakeDB()
	pool := &mockTxBeginner{db: db}
	rec := &fakeRecorder{}
	store := &fakeStore{db: db}
	clock := func() time.Time { return testNow }

	settings := NewSettings(Pricing{
		TaxPercentage:           decimal.NewFromInt(10),
		ServiceChargePercentage: decimal.NewFromInt(5),
	})

	orders := NewFulfillmentService(pool, func(database.DBTX) OrderStore { return store }, settings, rec)
	orders.now = clock
	payments := NewPaymentService(pool, func(database.DBTX) PaymentStore { return store }, rec)
	payments.now = clock
	inventory := NewInventoryService(pool, func(database.DBTX) InventoryStore { return store }, rec)
	kitchen := NewKitchenService(store)
	kitchen.now = clock

	return &testEnv{
		db:        db,
		pool:      pool,
		rec:       rec,
		orders:    orders,
		payments:  payments,
		inventory: inventory,
		kitchen:   kitchen,
	}
}
