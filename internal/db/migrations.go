package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: request-number lookups drive the daily sequence, so index them.
	`CREATE INDEX IF NOT EXISTS idx_transfer_requests_number
	     ON transfer_requests(request_number)`,
	// Migration 2: duplicate detection probes (store, product, location) triples.
	`CREATE INDEX IF NOT EXISTS idx_inventory_store_product
	     ON inventory(store_id, product_id, location)`,
}

// Migrate creates the schema if needed and applies migrations in order.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
