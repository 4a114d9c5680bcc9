// Package audit delivers activity events (order created, payment processed,
// refund, cancellation) to a configurable sink. Delivery is best effort:
// failures are logged and never returned to the caller.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ActionCreateOrder       = "create_order"
	ActionCancelOrder       = "cancel_order"
	ActionUpdateOrderStatus = "update_order_status"
	ActionProcessPayment    = "process_payment"
	ActionSplitBill         = "split_bill"
	ActionRefundPayment     = "refund_payment"
	ActionAdjustStock       = "adjust_stock"
	ActionRestock           = "restock"
	ActionUpdateInventory   = "update_inventory"
	ActionDeleteInventory   = "delete_inventory"
	ActionCallWaiter        = "call_waiter"
	ActionRateOrder         = "customer_rating"
)

const (
	EntityOrder     = "order"
	EntityPayment   = "payment"
	EntityInventory = "inventory"
	EntityTable     = "table"
)

type Event struct {
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   uuid.UUID              `json:"entity_id"`
	ActorID    uuid.NullUUID          `json:"actor_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Sink persists or forwards a single event.
type Sink interface {
	Write(ctx context.Context, e Event) error
	Close() error
}

const defaultWriteTimeout = 5 * time.Second

// Recorder is the fire-and-forget front of a Sink.
type Recorder struct {
	sink    Sink
	logger  logrus.FieldLogger
	timeout time.Duration
	now     func() time.Time
}

func NewRecorder(sink Sink, logger logrus.FieldLogger) *Recorder {
	return &Recorder{sink: sink, logger: logger, timeout: defaultWriteTimeout, now: time.Now}
}

// Record writes e synchronously with its own timeout. It is detached from
// the caller's cancellation because it runs after the caller's work has
// committed.
func (r *Recorder) Record(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.sink.Write(ctx, e); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"action":      e.Action,
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID.String(),
		}).Error("audit: write event")
	}
}

func (r *Recorder) Close() error {
	return r.sink.Close()
}
