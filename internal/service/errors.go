package service

import "errors"

// Kind classifies service errors for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindBusinessRule
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBusinessRule:
		return "business_rule"
	}
	return "internal"
}

// Validation errors.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidOrderType     = errors.New("invalid order_type")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidID            = errors.New("invalid id")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPercentage    = errors.New("percentage must be between 0 and 100")
	ErrTableRequired        = errors.New("table_id is required")
	ErrEmptySplits          = errors.New("splits are required")
	ErrInvalidInventoryItem = errors.New("item_name and unit are required")
	ErrInvalidRecipe        = errors.New("invalid recipe ingredient")
	ErrReasonRequired       = errors.New("reason is required")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
)

// Lookup failures.
var (
	ErrItemNotFound          = errors.New("menu item not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderItemNotFound     = errors.New("order item not found")
	ErrTableNotFound         = errors.New("table not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInventoryItemNotFound = errors.New("inventory item not found")
)

// State conflicts.
var (
	ErrOrderAlreadyPaid       = errors.New("order is already paid")
	ErrOrderClosed            = errors.New("order is completed or cancelled")
	ErrAlreadyRefunded        = errors.New("payment is already refunded")
	ErrTableUnavailable       = errors.New("table is not available")
	ErrSplitMismatch          = errors.New("split amounts do not match order total")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Business rule violations.
var (
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrInvalidDiscount     = errors.New("invalid or expired discount code")
	ErrMinPurchaseNotMet   = errors.New("minimum purchase not met for discount")
	ErrInsufficientPayment = errors.New("paid amount is less than order total")
	ErrOrderNotPaid        = errors.New("order must be paid before completion")
	ErrNothingToPay        = errors.New("order total must be greater than zero")
	ErrIngredientInUse     = errors.New("inventory item is used in a recipe")
)

// ErrInventoryDeductionFailed aborts the enclosing order operation.
var ErrInventoryDeductionFailed = errors.New("inventory deduction failed")

var errorKinds = []struct {
	err  error
	kind Kind
}{
	{ErrInventoryDeductionFailed, KindInternal},

	{ErrEmptyItems, KindValidation},
	{ErrInvalidOrderType, KindValidation},
	{ErrInvalidQuantity, KindValidation},
	{ErrInvalidID, KindValidation},
	{ErrInvalidStatus, KindValidation},
	{ErrInvalidPaymentMethod, KindValidation},
	{ErrInvalidAmount, KindValidation},
	{ErrInvalidPercentage, KindValidation},
	{ErrTableRequired, KindValidation},
	{ErrEmptySplits, KindValidation},
	{ErrInvalidInventoryItem, KindValidation},
	{ErrInvalidRecipe, KindValidation},
	{ErrReasonRequired, KindValidation},
	{ErrInvalidRating, KindValidation},

	{ErrItemNotFound, KindNotFound},
	{ErrOrderNotFound, KindNotFound},
	{ErrOrderItemNotFound, KindNotFound},
	{ErrTableNotFound, KindNotFound},
	{ErrPaymentNotFound, KindNotFound},
	{ErrInventoryItemNotFound, KindNotFound},

	{ErrOrderAlreadyPaid, KindConflict},
	{ErrOrderClosed, KindConflict},
	{ErrAlreadyRefunded, KindConflict},
	{ErrTableUnavailable, KindConflict},
	{ErrSplitMismatch, KindConflict},
	{ErrInvalidStateTransition, KindConflict},

	{ErrItemUnavailable, KindBusinessRule},
	{ErrInvalidDiscount, KindBusinessRule},
	{ErrMinPurchaseNotMet, KindBusinessRule},
	{ErrInsufficientPayment, KindBusinessRule},
	{ErrOrderNotPaid, KindBusinessRule},
	{ErrNothingToPay, KindBusinessRule},
	{ErrIngredientInUse, KindBusinessRule},
}

// KindOf reports the classification of err. Errors that wrap no known
// sentinel are KindInternal. ErrInventoryDeductionFailed is checked first so
// a wrapped lookup failure underneath it still surfaces as internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindInternal
}
