package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jwg-resto/pos-api/internal/database"
)

// ActivityLogStore is satisfied by *database.Queries.
type ActivityLogStore interface {
	CreateActivityLog(ctx context.Context, arg database.CreateActivityLogParams) error
}

// PostgresSink appends events to the activity_logs table.
type PostgresSink struct {
	store ActivityLogStore
}

func NewPostgresSink(store ActivityLogStore) *PostgresSink {
	return &PostgresSink{store: store}
}

func (s *PostgresSink) Write(ctx context.Context, e Event) error {
	details := e.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	return s.store.CreateActivityLog(ctx, database.CreateActivityLogParams{
		UserID:     pgtype.UUID{Bytes: e.ActorID.UUID, Valid: e.ActorID.Valid},
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   pgtype.UUID{Bytes: e.EntityID, Valid: true},
		Details:    raw,
	})
}

func (s *PostgresSink) Close() error { return nil }
