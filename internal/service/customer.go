package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jwg-resto/pos-api/internal/audit"
)

const defaultWaiterRequest = "Call waiter"

// CallWaiter records a customer's request for staff at a table. The request
// only travels as an activity event.
func (s *FulfillmentService) CallWaiter(ctx context.Context, tableID uuid.UUID, request string) error {
	request = strings.TrimSpace(request)
	if request == "" {
		request = defaultWaiterRequest
	}

	var number string
	err := s.withTx(ctx, func(store OrderStore) error {
		t, err := lockTable(ctx, store, tableID)
		if err != nil {
			return err
		}
		number = t.TableNumber
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionCallWaiter,
		EntityType: audit.EntityTable,
		EntityID:   tableID,
		Details: map[string]interface{}{
			"table_number": number,
			"request":      request,
		},
	})
	return nil
}

// RateOrder records a 1 to 5 customer rating with optional feedback.
func (s *FulfillmentService) RateOrder(ctx context.Context, orderID uuid.UUID, rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	var number string
	err := s.withTx(ctx, func(store OrderStore) error {
		order, err := store.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}
		number = order.OrderNumber
		return nil
	})
	if err != nil {
		return err
	}

	details := map[string]interface{}{
		"order_number": number,
		"rating":       rating,
	}
	if fb := strings.TrimSpace(feedback); fb != "" {
		details["feedback"] = fb
	}
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionRateOrder,
		EntityType: audit.EntityOrder,
		EntityID:   orderID,
		Details:    details,
	})
	return nil
}
