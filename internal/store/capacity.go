package store

import (
	"context"
	"database/sql"
	"fmt"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so capacity math can run
// inside a caller's transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ComputeStoreCapacity sums the space occupied by a store's active inventory.
// Standard records contribute quantity × product unit size; a record whose
// product cannot be resolved contributes 0 rather than failing. Card
// containers contribute their own fixed footprint once, regardless of
// contents. Pure read: the caller persists the result if it wants a snapshot.
func ComputeStoreCapacity(ctx context.Context, q dbtx, storeID string) (float64, error) {
	var total float64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE
		            WHEN inv.container_type IS NOT NULL THEN inv.container_unit_size
		            ELSE inv.quantity * COALESCE(p.unit_size, 0)
		        END), 0)
		 FROM inventory inv
		 LEFT JOIN products p ON p.id = inv.product_id
		 WHERE inv.store_id = ? AND inv.is_active = 1`, storeID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("computing store capacity: %w", err)
	}
	return total, nil
}

// RecalculateStoreCapacity recomputes a store's occupied space from its
// records and persists it as the current_capacity snapshot. The snapshot is a
// cache: it is always rebuilt from source records, never patched with deltas.
func RecalculateStoreCapacity(ctx context.Context, q dbtx, storeID string) (float64, error) {
	total, err := ComputeStoreCapacity(ctx, q, storeID)
	if err != nil {
		return 0, err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE stores SET current_capacity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		total, storeID,
	)
	if err != nil {
		return 0, fmt.Errorf("persisting store capacity: %w", err)
	}
	return total, nil
}
