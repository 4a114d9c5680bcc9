package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderItemStatusPending   = "pending"
	OrderItemStatusPreparing = "preparing"
	OrderItemStatusReady     = "ready"
	OrderItemStatusServed    = "served"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusCleaning  = "cleaning"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
)

// ── Borderline (CHECK constrained in DB) ──

const (
	UserRoleAdmin   = "admin"
	UserRoleCashier = "cashier"
	UserRoleKitchen = "kitchen"
	UserRoleWaiter  = "waiter"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
	OrderTypeQR       = "qr"
)

const (
	OrderSourceAdmin      = "admin"
	OrderSourceCustomerQR = "customer_qr"
)

const (
	PaymentMethodCash  = "cash"
	PaymentMethodCard  = "card"
	PaymentMethodQR    = "qr"
	PaymentMethodSplit = "split"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

const (
	MovementTypeIn  = "in"
	MovementTypeOut = "out"
)

const (
	ReferenceTypeManual     = "manual"
	ReferenceTypePurchase   = "purchase"
	ReferenceTypeAutoDeduct = "auto_deduct"
)

// ── Derived labels (not stored) ──

const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// ── Settings keys ──

const (
	SettingTaxPercentage           = "tax_percentage"
	SettingServiceChargePercentage = "service_charge_percentage"
	SettingAutoDeductInventory     = "auto_deduct_inventory"
)
