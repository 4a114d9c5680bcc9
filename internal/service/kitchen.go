package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
)

// Alert thresholds for items waiting in the kitchen.
const (
	waitWarning   = 20 * time.Minute
	waitCritical  = 30 * time.Minute
	readyUnserved = 5 * time.Minute
)

// KitchenStore is satisfied by *database.Queries.
type KitchenStore interface {
	ListKitchenItems(ctx context.Context, statuses []string) ([]database.KitchenItemRow, error)
}

// KitchenService builds the read-only kitchen display. Wait times are
// derived on read from the order's creation time.
type KitchenService struct {
	store KitchenStore
	now   func() time.Time
}

func NewKitchenService(store KitchenStore) *KitchenService {
	return &KitchenService{store: store, now: time.Now}
}

// KitchenOrder groups the queued items of one order.
type KitchenOrder struct {
	OrderID         uuid.UUID
	OrderNumber     string
	OrderType       string
	OrderStatus     string
	TableNumber     string
	SpecialRequests string
	CreatedAt       time.Time
	WaitTime        int
	Items           []database.KitchenItemRow
}

// Queue lists items in the given status grouped by order, oldest order first.
func (s *KitchenService) Queue(ctx context.Context, status string) ([]KitchenOrder, error) {
	if !IsValidItemStatus(status) || status == enum.OrderItemStatusServed {
		return nil, ErrInvalidStatus
	}
	rows, err := s.store.ListKitchenItems(ctx, []string{status})
	if err != nil {
		return nil, fmt.Errorf("list kitchen items: %w", err)
	}
	return GroupKitchenItems(rows, s.now()), nil
}

// GroupKitchenItems preserves the row order, which is oldest order first.
func GroupKitchenItems(rows []database.KitchenItemRow, now time.Time) []KitchenOrder {
	out := []KitchenOrder{}
	index := map[uuid.UUID]int{}
	for _, r := range rows {
		i, ok := index[r.OrderID]
		if !ok {
			i = len(out)
			index[r.OrderID] = i
			out = append(out, KitchenOrder{
				OrderID:         r.OrderID,
				OrderNumber:     r.OrderNumber,
				OrderType:       r.OrderType,
				OrderStatus:     r.OrderStatus,
				TableNumber:     r.TableNumber.String,
				SpecialRequests: r.SpecialRequests.String,
				CreatedAt:       r.OrderCreatedAt,
				WaitTime:        minutesSince(r.OrderCreatedAt, now),
			})
		}
		out[i].Items = append(out[i].Items, r)
	}
	return out
}

// KitchenAlert flags an item that has waited too long.
type KitchenAlert struct {
	Severity    string
	OrderID     uuid.UUID
	OrderNumber string
	TableNumber string
	ItemID      uuid.UUID
	MenuName    string
	ItemStatus  string
	WaitTime    int
	Message     string
}

// Alerts reports pending or preparing items past the warning and critical
// waits, and ready items nobody has served.
func (s *KitchenService) Alerts(ctx context.Context) ([]KitchenAlert, error) {
	rows, err := s.store.ListKitchenItems(ctx, []string{
		enum.OrderItemStatusPending,
		enum.OrderItemStatusPreparing,
		enum.OrderItemStatusReady,
	})
	if err != nil {
		return nil, fmt.Errorf("list kitchen items: %w", err)
	}
	return BuildKitchenAlerts(rows, s.now()), nil
}

func BuildKitchenAlerts(rows []database.KitchenItemRow, now time.Time) []KitchenAlert {
	out := []KitchenAlert{}
	for _, r := range rows {
		var severity, msg string
		var waited time.Duration

		switch r.Status {
		case enum.OrderItemStatusPending, enum.OrderItemStatusPreparing:
			waited = now.Sub(r.OrderCreatedAt)
			switch {
			case waited > waitCritical:
				severity = enum.AlertSeverityCritical
				msg = fmt.Sprintf("%s has been %s for over %d minutes", r.MenuName, r.Status, int(waitCritical.Minutes()))
			case waited > waitWarning:
				severity = enum.AlertSeverityWarning
				msg = fmt.Sprintf("%s has been %s for over %d minutes", r.MenuName, r.Status, int(waitWarning.Minutes()))
			}
		case enum.OrderItemStatusReady:
			since := r.OrderCreatedAt
			if r.PreparedAt.Valid {
				since = r.PreparedAt.Time
			}
			waited = now.Sub(since)
			if waited > readyUnserved {
				severity = enum.AlertSeverityInfo
				msg = fmt.Sprintf("%s is ready and waiting to be served", r.MenuName)
			}
		}
		if severity == "" {
			continue
		}

		out = append(out, KitchenAlert{
			Severity:    severity,
			OrderID:     r.OrderID,
			OrderNumber: r.OrderNumber,
			TableNumber: r.TableNumber.String,
			ItemID:      r.ID,
			MenuName:    r.MenuName,
			ItemStatus:  r.Status,
			WaitTime:    int(waited.Minutes()),
			Message:     msg,
		})
	}
	return out
}

func minutesSince(t, now time.Time) int {
	if now.Before(t) {
		return 0
	}
	return int(now.Sub(t).Minutes())
}
