package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivityLog struct {
	ID         uuid.UUID   `json:"id"`
	UserID     pgtype.UUID `json:"user_id"`
	Action     string      `json:"action"`
	EntityType string      `json:"entity_type"`
	EntityID   pgtype.UUID `json:"entity_id"`
	Details    []byte      `json:"details"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Discount struct {
	ID            uuid.UUID      `json:"id"`
	Code          string         `json:"code"`
	DiscountType  string         `json:"discount_type"`
	DiscountValue pgtype.Numeric `json:"discount_value"`
	MinPurchase   pgtype.Numeric `json:"min_purchase"`
	MaxDiscount   pgtype.Numeric `json:"max_discount"`
	StartDate     pgtype.Date    `json:"start_date"`
	EndDate       pgtype.Date    `json:"end_date"`
	IsActive      bool           `json:"is_active"`
	UsageCount    int32          `json:"usage_count"`
}

type InventoryItem struct {
	ID              uuid.UUID      `json:"id"`
	ItemName        string         `json:"item_name"`
	Category        pgtype.Text    `json:"category"`
	Unit            string         `json:"unit"`
	CurrentStock    pgtype.Numeric `json:"current_stock"`
	MinimumStock    pgtype.Numeric `json:"minimum_stock"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	LastRestockDate pgtype.Date    `json:"last_restock_date"`
	RestockQuantity pgtype.Numeric `json:"restock_quantity"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type InventoryMovement struct {
	ID              uuid.UUID      `json:"id"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	MovementType    string         `json:"movement_type"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	ReferenceType   string         `json:"reference_type"`
	ReferenceID     pgtype.UUID    `json:"reference_id"`
	Reason          pgtype.Text    `json:"reason"`
	Cost            pgtype.Numeric `json:"cost"`
	CreatedBy       pgtype.UUID    `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
}

type MenuItem struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Price           pgtype.Numeric `json:"price"`
	IsAvailable     bool           `json:"is_available"`
	PreparationTime int32          `json:"preparation_time"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Order struct {
	ID                      uuid.UUID          `json:"id"`
	OrderNumber             string             `json:"order_number"`
	TableID                 pgtype.UUID        `json:"table_id"`
	CustomerName            pgtype.Text        `json:"customer_name"`
	CustomerPhone           pgtype.Text        `json:"customer_phone"`
	CustomerEmail           pgtype.Text        `json:"customer_email"`
	OrderType               string             `json:"order_type"`
	OrderSource             string             `json:"order_source"`
	Status                  string             `json:"status"`
	Subtotal                pgtype.Numeric     `json:"subtotal"`
	Tax                     pgtype.Numeric     `json:"tax"`
	TaxPercentage           pgtype.Numeric     `json:"tax_percentage"`
	ServiceCharge           pgtype.Numeric     `json:"service_charge"`
	ServiceChargePercentage pgtype.Numeric     `json:"service_charge_percentage"`
	Discount                pgtype.Numeric     `json:"discount"`
	DiscountCode            pgtype.Text        `json:"discount_code"`
	Total                   pgtype.Numeric     `json:"total"`
	IsPaid                  bool               `json:"is_paid"`
	Notes                   pgtype.Text        `json:"notes"`
	SpecialRequests         pgtype.Text        `json:"special_requests"`
	CancellationReason      pgtype.Text        `json:"cancellation_reason"`
	CreatedBy               pgtype.UUID        `json:"created_by"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
	PaidAt                  pgtype.Timestamptz `json:"paid_at"`
	CompletedAt             pgtype.Timestamptz `json:"completed_at"`
	CancelledAt             pgtype.Timestamptz `json:"cancelled_at"`
}

type OrderItem struct {
	ID         uuid.UUID          `json:"id"`
	OrderID    uuid.UUID          `json:"order_id"`
	MenuItemID uuid.UUID          `json:"menu_item_id"`
	Quantity   int32              `json:"quantity"`
	Price      pgtype.Numeric     `json:"price"`
	Subtotal   pgtype.Numeric     `json:"subtotal"`
	Status     string             `json:"status"`
	Notes      pgtype.Text        `json:"notes"`
	PreparedBy pgtype.UUID        `json:"prepared_by"`
	PreparedAt pgtype.Timestamptz `json:"prepared_at"`
	ServedAt   pgtype.Timestamptz `json:"served_at"`
	CreatedAt  time.Time          `json:"created_at"`
}

type Payment struct {
	ID            uuid.UUID          `json:"id"`
	PaymentNumber string             `json:"payment_number"`
	OrderID       uuid.UUID          `json:"order_id"`
	Amount        pgtype.Numeric     `json:"amount"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	PaidAmount    pgtype.Numeric     `json:"paid_amount"`
	ChangeAmount  pgtype.Numeric     `json:"change_amount"`
	Notes         pgtype.Text        `json:"notes"`
	ProcessedBy   pgtype.UUID        `json:"processed_by"`
	PaidAt        time.Time          `json:"paid_at"`
	RefundedAt    pgtype.Timestamptz `json:"refunded_at"`
	RefundReason  pgtype.Text        `json:"refund_reason"`
	CreatedAt     time.Time          `json:"created_at"`
}

type PaymentSplit struct {
	ID            uuid.UUID      `json:"id"`
	PaymentID     uuid.UUID      `json:"payment_id"`
	SplitNumber   int32          `json:"split_number"`
	Amount        pgtype.Numeric `json:"amount"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus string         `json:"payment_status"`
	PaidAt        time.Time      `json:"paid_at"`
}

type RecipeIngredient struct {
	ID              uuid.UUID      `json:"id"`
	MenuItemID      uuid.UUID      `json:"menu_item_id"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	Notes           pgtype.Text    `json:"notes"`
}

type Setting struct {
	SettingKey   string    `json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Table struct {
	ID             uuid.UUID   `json:"id"`
	TableNumber    string      `json:"table_number"`
	Capacity       int32       `json:"capacity"`
	Status         string      `json:"status"`
	CurrentOrderID pgtype.UUID `json:"current_order_id"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
