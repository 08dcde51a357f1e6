package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardhaus/cardhaus/internal/model"
)

// CreateStore creates a new store.
func CreateStore(ctx context.Context, db *sql.DB, name, address string, maxCapacity float64) (*model.Store, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: store name required", ErrInvalidInput)
	}
	if maxCapacity <= 0 {
		return nil, fmt.Errorf("%w: max capacity must be positive, got %g", ErrInvalidInput, maxCapacity)
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO stores (id, name, address, max_capacity) VALUES (?, ?, ?, ?)`,
		id, name, address, maxCapacity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	return GetStore(ctx, db, id)
}

// GetStore returns a store by ID.
func GetStore(ctx context.Context, q dbtx, id string) (*model.Store, error) {
	s := &model.Store{}
	var address sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, name, address, max_capacity, current_capacity, is_active, created_at, updated_at
		 FROM stores WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &address, &s.MaxCapacity, &s.CurrentCapacity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting store: %w", err)
	}
	s.Address = address.String
	return s, nil
}

// getActiveStore returns a store that exists and has not been soft-deleted.
func getActiveStore(ctx context.Context, q dbtx, id string) (*model.Store, error) {
	s, err := GetStore(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, fmt.Errorf("store %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// ListStores returns all active stores.
func ListStores(ctx context.Context, db *sql.DB) ([]model.Store, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, address, max_capacity, current_capacity, is_active, created_at, updated_at
		 FROM stores WHERE is_active = 1 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var s model.Store
		var address sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &address, &s.MaxCapacity, &s.CurrentCapacity,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning store: %w", err)
		}
		s.Address = address.String
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// UpdateStoreParams carries optional store field updates.
type UpdateStoreParams struct {
	Name        *string
	Address     *string
	MaxCapacity *float64
}

// UpdateStore updates store metadata. Reducing max_capacity below the space
// currently occupied is rejected.
func UpdateStore(ctx context.Context, db *sql.DB, id string, p UpdateStoreParams) (*model.Store, error) {
	s, err := getActiveStore(ctx, db, id)
	if err != nil {
		return nil, err
	}

	name, address, maxCapacity := s.Name, s.Address, s.MaxCapacity
	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("%w: store name required", ErrInvalidInput)
		}
		name = *p.Name
	}
	if p.Address != nil {
		address = *p.Address
	}
	if p.MaxCapacity != nil {
		if *p.MaxCapacity <= 0 {
			return nil, fmt.Errorf("%w: max capacity must be positive, got %g", ErrInvalidInput, *p.MaxCapacity)
		}
		if *p.MaxCapacity < s.CurrentCapacity {
			return nil, fmt.Errorf("%w: max capacity %g is below current usage %g",
				ErrInvalidInput, *p.MaxCapacity, s.CurrentCapacity)
		}
		maxCapacity = *p.MaxCapacity
	}

	_, err = db.ExecContext(ctx,
		`UPDATE stores SET name = ?, address = ?, max_capacity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_active = 1`,
		name, address, maxCapacity, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating store: %w", err)
	}

	return GetStore(ctx, db, id)
}

// DeleteStore soft-deletes a store.
func DeleteStore(ctx context.Context, db *sql.DB, id string) error {
	if _, err := getActiveStore(ctx, db, id); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`UPDATE stores SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}
	return nil
}
