package service

import (
	"fmt"

	"github.com/jwg-resto/pos-api/internal/enum"
)

var orderStatusRank = map[string]int{
	enum.OrderStatusPending:   0,
	enum.OrderStatusConfirmed: 1,
	enum.OrderStatusPreparing: 2,
	enum.OrderStatusReady:     3,
	enum.OrderStatusServed:    4,
	enum.OrderStatusCompleted: 5,
}

var itemStatusRank = map[string]int{
	enum.OrderItemStatusPending:   0,
	enum.OrderItemStatusPreparing: 1,
	enum.OrderItemStatusReady:     2,
	enum.OrderItemStatusServed:    3,
}

// allowedTransitions defines the manual order transitions.
// Key is current status, value is the set of statuses it can move to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed: {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusServed, enum.OrderStatusCancelled},
	enum.OrderStatusServed:    {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// cascadeStatuses are order statuses that are pushed down to every item.
var cascadeStatuses = map[string]bool{
	enum.OrderStatusPreparing: true,
	enum.OrderStatusReady:     true,
	enum.OrderStatusServed:    true,
}

func IsValidOrderStatus(s string) bool {
	if s == enum.OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

func IsValidItemStatus(s string) bool {
	_, ok := itemStatusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(status string) bool {
	return status == enum.OrderStatusCompleted || status == enum.OrderStatusCancelled
}

// ValidateOrderTransition checks a manual order status change.
func ValidateOrderTransition(current, next string, isPaid bool) error {
	if !IsValidOrderStatus(next) {
		return ErrInvalidStatus
	}
	if next == enum.OrderStatusCancelled && isPaid {
		return ErrOrderAlreadyPaid
	}
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: order is %s", ErrInvalidStateTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			if next == enum.OrderStatusCompleted && !isPaid {
				return ErrOrderNotPaid
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidStateTransition, current, next)
}

// ValidateItemTransition allows only forward moves through the kitchen workflow.
func ValidateItemTransition(current, next string) error {
	if !IsValidItemStatus(next) {
		return ErrInvalidStatus
	}
	if itemStatusRank[next] <= itemStatusRank[current] {
		return fmt.Errorf("%w: item %s to %s", ErrInvalidStateTransition, current, next)
	}
	return nil
}

// DeriveOrderStatus computes the order status implied by its items. The
// result never moves an order backwards and never touches terminal orders:
// all items served gives served, all ready-or-later gives ready, and any item
// started moves a pending or confirmed order to preparing.
func DeriveOrderStatus(current string, itemStatuses []string) string {
	if IsTerminal(current) || len(itemStatuses) == 0 {
		return current
	}

	minRank, maxRank := len(itemStatusRank), -1
	for _, s := range itemStatuses {
		r := itemStatusRank[s]
		if r < minRank {
			minRank = r
		}
		if r > maxRank {
			maxRank = r
		}
	}

	derived := current
	switch {
	case minRank >= itemStatusRank[enum.OrderItemStatusServed]:
		derived = enum.OrderStatusServed
	case minRank >= itemStatusRank[enum.OrderItemStatusReady]:
		derived = enum.OrderStatusReady
	case maxRank >= itemStatusRank[enum.OrderItemStatusPreparing]:
		derived = enum.OrderStatusPreparing
	}

	if orderStatusRank[derived] > orderStatusRank[current] {
		return derived
	}
	return current
}
