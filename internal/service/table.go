package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
)

// TableStore is satisfied by *database.Queries. Orders and tables refer to
// each other by id only; these helpers are the one place the table side of
// that binding changes.
type TableStore interface {
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.Table, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.Table, error)
	ReleaseTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	MarkTableCleaning(ctx context.Context, id uuid.UUID) (database.Table, error)
}

func lockTable(ctx context.Context, store TableStore, tableID uuid.UUID) (database.Table, error) {
	t, err := store.GetTableForUpdate(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	return t, nil
}

// occupyTable binds orderID to the table. A table being cleaned cannot take
// a new order; an occupied table is rebound.
func occupyTable(ctx context.Context, store TableStore, tableID, orderID uuid.UUID) error {
	t, err := lockTable(ctx, store, tableID)
	if err != nil {
		return err
	}
	if t.Status == enum.TableStatusCleaning {
		return fmt.Errorf("%w: table %s is being cleaned", ErrTableUnavailable, t.TableNumber)
	}
	if _, err := store.OccupyTable(ctx, database.OccupyTableParams{ID: tableID, OrderID: orderID}); err != nil {
		return fmt.Errorf("occupy table: %w", err)
	}
	return nil
}

// releaseTable frees the table if it is still bound to orderID.
func releaseTable(ctx context.Context, store TableStore, tableID, orderID uuid.UUID) error {
	t, err := lockTable(ctx, store, tableID)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil
		}
		return err
	}
	if !boundTo(t, orderID) {
		return nil
	}
	if _, err := store.ReleaseTable(ctx, tableID); err != nil {
		return fmt.Errorf("release table: %w", err)
	}
	return nil
}

// markTableCleaning moves the table to cleaning after payment if it is still
// bound to orderID.
func markTableCleaning(ctx context.Context, store TableStore, tableID, orderID uuid.UUID) error {
	t, err := lockTable(ctx, store, tableID)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil
		}
		return err
	}
	if !boundTo(t, orderID) {
		return nil
	}
	if _, err := store.MarkTableCleaning(ctx, tableID); err != nil {
		return fmt.Errorf("mark table cleaning: %w", err)
	}
	return nil
}

func boundTo(t database.Table, orderID uuid.UUID) bool {
	return t.Status == enum.TableStatusOccupied && t.CurrentOrderID.Valid && t.CurrentOrderID.Bytes == orderID
}
