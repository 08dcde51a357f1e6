package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardhaus/cardhaus/internal/model"
)

// validateID rejects identifiers that are not well-formed UUIDs before any
// persistence access. Malformed input is a distinct failure from not-found.
func validateID(kind, id string) error {
	if uuid.Validate(id) != nil {
		return fmt.Errorf("%w: malformed %s id %q", ErrInvalidInput, kind, id)
	}
	return nil
}

// DuplicateCheck reports existing placements of a product at a store.
type DuplicateCheck struct {
	ExactMatch        *model.InventoryRecord `json:"exact_match"`
	DifferentLocation *model.InventoryRecord `json:"different_location"`
}

// CheckDuplicate looks up an active standard record at the exact
// (store, product, location) triple, and separately one for the same product
// at the store's other location. Either may be nil. Never mutates; callers
// use the result to choose between merging, creating and relocating.
func CheckDuplicate(ctx context.Context, db *sql.DB, storeID, productID, location string) (*DuplicateCheck, error) {
	if err := validateID("store", storeID); err != nil {
		return nil, err
	}
	if err := validateID("product", productID); err != nil {
		return nil, err
	}
	if !model.ValidLocation(location) {
		return nil, fmt.Errorf("%w: unknown location %q", ErrInvalidInput, location)
	}

	exact, err := findStandardRecord(ctx, db, storeID, productID, location)
	if err != nil {
		return nil, err
	}
	other, err := findStandardRecord(ctx, db, storeID, productID, model.OtherLocation(location))
	if err != nil {
		return nil, err
	}
	return &DuplicateCheck{ExactMatch: exact, DifferentLocation: other}, nil
}

// CreateInventoryParams carries the fields for a new standard inventory record.
type CreateInventoryParams struct {
	StoreID       string
	ProductID     string
	Quantity      int
	Location      string
	MinStockLevel int
	Notes         string
}

// CreateInventory adds stock of a product at a store location. If an active
// record already exists for the same (store, product, location) the
// quantities are merged instead of creating a duplicate. The increase in
// occupied space is validated against the store's capacity before any write;
// on success the store's capacity snapshot is recomputed in the same
// transaction. Returns the record and whether an existing one was merged.
func CreateInventory(ctx context.Context, db *sql.DB, p CreateInventoryParams) (*model.InventoryRecord, bool, error) {
	if err := validateID("store", p.StoreID); err != nil {
		return nil, false, err
	}
	if err := validateID("product", p.ProductID); err != nil {
		return nil, false, err
	}
	if p.Quantity < 0 {
		return nil, false, fmt.Errorf("%w: quantity cannot be negative, got %d", ErrInvalidInput, p.Quantity)
	}
	if !model.ValidLocation(p.Location) {
		return nil, false, fmt.Errorf("%w: unknown location %q", ErrInvalidInput, p.Location)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	s, err := getActiveStore(ctx, tx, p.StoreID)
	if err != nil {
		return nil, false, err
	}
	product, err := getActiveProduct(ctx, tx, p.ProductID)
	if err != nil {
		return nil, false, err
	}

	// Space the new quantity will consume, checked against what is free
	// according to the store's snapshot.
	required := product.UnitSize * float64(p.Quantity)
	available := s.MaxCapacity - s.CurrentCapacity
	if required > available {
		return nil, false, &CapacityError{StoreID: s.ID, Required: required, Available: available}
	}

	existing, err := findStandardRecord(ctx, tx, p.StoreID, p.ProductID, p.Location)
	if err != nil {
		return nil, false, err
	}

	var recordID string
	merged := false
	if existing != nil {
		// Merge into the existing record. Min stock level is only ever raised.
		merged = true
		recordID = existing.ID
		newTotal := existing.Quantity + p.Quantity
		minStock := existing.MinStockLevel
		if p.MinStockLevel > minStock {
			minStock = p.MinStockLevel
		}
		notes := existing.Notes
		if p.Notes != "" {
			notes = p.Notes
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE inventory SET quantity = ?, min_stock_level = ?, notes = ?,
			        updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			newTotal, minStock, notes, recordID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("merging inventory record: %w", err)
		}
	} else {
		record := &model.InventoryRecord{
			StoreID:       p.StoreID,
			ProductID:     p.ProductID,
			Quantity:      p.Quantity,
			Location:      p.Location,
			MinStockLevel: p.MinStockLevel,
			Notes:         p.Notes,
		}
		if err := record.Validate(); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvariant, err)
		}

		recordID = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO inventory (id, store_id, product_id, quantity, location, min_stock_level, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recordID, p.StoreID, p.ProductID, p.Quantity, p.Location, p.MinStockLevel, p.Notes,
		)
		if err != nil {
			return nil, false, fmt.Errorf("creating inventory record: %w", err)
		}
	}

	if _, err := RecalculateStoreCapacity(ctx, tx, p.StoreID); err != nil {
		return nil, false, err
	}

	record, err := getInventoryRecord(ctx, tx, recordID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing inventory creation: %w", err)
	}
	return record, merged, nil
}

// CreateContainerParams carries the fields for a new card container record.
type CreateContainerParams struct {
	StoreID           string
	ContainerType     string
	ContainerName     string
	ContainerUnitSize float64
	Location          string
	Items             []model.CardContainerItem
	Notes             string
}

// CreateCardContainer adds a card container to a store. The container's fixed
// footprint is validated against store capacity; its contents are not part of
// the space accounting. Every contained card must resolve to an active
// singleCard product.
func CreateCardContainer(ctx context.Context, db *sql.DB, p CreateContainerParams) (*model.InventoryRecord, error) {
	if err := validateID("store", p.StoreID); err != nil {
		return nil, err
	}
	location := p.Location
	if location == "" {
		location = model.LocationFloor
	}
	if !model.ValidLocation(location) {
		return nil, fmt.Errorf("%w: unknown location %q", ErrInvalidInput, location)
	}

	record := &model.InventoryRecord{
		StoreID:  p.StoreID,
		Location: location,
		Notes:    p.Notes,
		CardContainer: &model.CardContainer{
			ContainerType:     p.ContainerType,
			ContainerName:     p.ContainerName,
			ContainerUnitSize: p.ContainerUnitSize,
			Items:             p.Items,
		},
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	s, err := getActiveStore(ctx, tx, p.StoreID)
	if err != nil {
		return nil, err
	}

	for _, item := range p.Items {
		product, err := getActiveProduct(ctx, tx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.ProductType != model.ProductSingleCard {
			return nil, fmt.Errorf("%w: container item %s is not a single card", ErrInvariant, product.SKU)
		}
	}

	available := s.MaxCapacity - s.CurrentCapacity
	if p.ContainerUnitSize > available {
		return nil, &CapacityError{StoreID: s.ID, Required: p.ContainerUnitSize, Available: available}
	}

	recordID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO inventory (id, store_id, location, notes, container_type, container_name, container_unit_size)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recordID, p.StoreID, location, p.Notes, p.ContainerType, p.ContainerName, p.ContainerUnitSize,
	)
	if err != nil {
		return nil, fmt.Errorf("creating container record: %w", err)
	}

	for _, item := range p.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO container_items (inventory_id, product_id, quantity) VALUES (?, ?, ?)
			 ON CONFLICT (inventory_id, product_id) DO UPDATE SET quantity = quantity + ?`,
			recordID, item.ProductID, item.Quantity, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("adding container item: %w", err)
		}
	}

	if _, err := RecalculateStoreCapacity(ctx, tx, p.StoreID); err != nil {
		return nil, err
	}

	record, err = getInventoryRecord(ctx, tx, recordID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing container creation: %w", err)
	}
	return record, nil
}

// UpdateInventoryParams carries optional inventory field updates.
type UpdateInventoryParams struct {
	Quantity      *int
	Location      *string
	MinStockLevel *int
	Notes         *string
}

// UpdateInventory applies field updates to a standard inventory record.
// Quantity increases are validated against the store's free space using the
// product's current unit size; the capacity snapshot is recomputed afterwards.
func UpdateInventory(ctx context.Context, db *sql.DB, id string, p UpdateInventoryParams) (*model.InventoryRecord, error) {
	if err := validateID("inventory record", id); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := getInventoryRecord(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsActive {
		return nil, fmt.Errorf("inventory record %s: %w", id, ErrNotFound)
	}
	if record.IsContainer() && p.Quantity != nil {
		return nil, fmt.Errorf("%w: card containers have no top-level quantity", ErrInvariant)
	}

	quantity := record.Quantity
	if p.Quantity != nil {
		if *p.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative, got %d", ErrInvalidInput, *p.Quantity)
		}
		if *p.Quantity != record.Quantity {
			s, err := getActiveStore(ctx, tx, record.StoreID)
			if err != nil {
				return nil, err
			}
			product, err := GetProduct(ctx, tx, record.ProductID)
			if err != nil {
				return nil, err
			}

			delta := product.UnitSize * float64(*p.Quantity-record.Quantity)
			available := s.MaxCapacity - s.CurrentCapacity
			if delta > available {
				return nil, &CapacityError{StoreID: s.ID, Required: delta, Available: available}
			}
		}
		quantity = *p.Quantity
	}

	location := record.Location
	if p.Location != nil {
		if !model.ValidLocation(*p.Location) {
			return nil, fmt.Errorf("%w: unknown location %q", ErrInvalidInput, *p.Location)
		}
		location = *p.Location
	}
	minStock := record.MinStockLevel
	if p.MinStockLevel != nil {
		if *p.MinStockLevel < 0 {
			return nil, fmt.Errorf("%w: min stock level cannot be negative", ErrInvalidInput)
		}
		minStock = *p.MinStockLevel
	}
	notes := record.Notes
	if p.Notes != nil {
		notes = *p.Notes
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE inventory SET quantity = ?, location = ?, min_stock_level = ?, notes = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		quantity, location, minStock, notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating inventory record: %w", err)
	}

	if _, err := RecalculateStoreCapacity(ctx, tx, record.StoreID); err != nil {
		return nil, err
	}

	record, err = getInventoryRecord(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing inventory update: %w", err)
	}
	return record, nil
}

// DeleteInventory soft-deletes an inventory record and recomputes the owning
// store's capacity snapshot, which now excludes the record.
func DeleteInventory(ctx context.Context, db *sql.DB, id string) error {
	if err := validateID("inventory record", id); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := getInventoryRecord(ctx, tx, id)
	if err != nil {
		return err
	}
	if !record.IsActive {
		return fmt.Errorf("inventory record %s: %w", id, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE inventory SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting inventory record: %w", err)
	}

	if _, err := RecalculateStoreCapacity(ctx, tx, record.StoreID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing inventory deletion: %w", err)
	}
	return nil
}

// GetInventoryRecord returns an inventory record by ID, including soft-deleted
// ones (callers check IsActive).
func GetInventoryRecord(ctx context.Context, db *sql.DB, id string) (*model.InventoryRecord, error) {
	if err := validateID("inventory record", id); err != nil {
		return nil, err
	}
	return getInventoryRecord(ctx, db, id)
}

// ListInventory returns a store's active inventory records with product names
// and container contents populated.
func ListInventory(ctx context.Context, db *sql.DB, storeID string) ([]model.InventoryRecord, error) {
	if err := validateID("store", storeID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT inv.id, inv.store_id, inv.product_id, inv.quantity, inv.location,
		        inv.min_stock_level, inv.notes,
		        inv.container_type, inv.container_name, inv.container_unit_size,
		        inv.is_active, inv.created_at, inv.updated_at,
		        p.name, p.sku
		 FROM inventory inv
		 LEFT JOIN products p ON p.id = inv.product_id
		 WHERE inv.store_id = ? AND inv.is_active = 1
		 ORDER BY inv.location, p.name`, storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var records []model.InventoryRecord
	for rows.Next() {
		record, err := scanInventoryRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].IsContainer() {
			if err := loadContainerItems(ctx, db, &records[i]); err != nil {
				return nil, err
			}
		}
	}
	return records, nil
}

// findStandardRecord returns the active standard (non-container) record at the
// exact (store, product, location) triple, or nil if there is none.
func findStandardRecord(ctx context.Context, q dbtx, storeID, productID, location string) (*model.InventoryRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT inv.id, inv.store_id, inv.product_id, inv.quantity, inv.location,
		        inv.min_stock_level, inv.notes,
		        inv.container_type, inv.container_name, inv.container_unit_size,
		        inv.is_active, inv.created_at, inv.updated_at,
		        p.name, p.sku
		 FROM inventory inv
		 LEFT JOIN products p ON p.id = inv.product_id
		 WHERE inv.store_id = ? AND inv.product_id = ? AND inv.location = ? AND inv.is_active = 1`,
		storeID, productID, location,
	)
	record, err := scanInventoryRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// getInventoryRecord loads a record by id regardless of is_active,
// with container contents populated.
func getInventoryRecord(ctx context.Context, q dbtx, id string) (*model.InventoryRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT inv.id, inv.store_id, inv.product_id, inv.quantity, inv.location,
		        inv.min_stock_level, inv.notes,
		        inv.container_type, inv.container_name, inv.container_unit_size,
		        inv.is_active, inv.created_at, inv.updated_at,
		        p.name, p.sku
		 FROM inventory inv
		 LEFT JOIN products p ON p.id = inv.product_id
		 WHERE inv.id = ?`, id,
	)
	record, err := scanInventoryRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("inventory record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if record.IsContainer() {
		if err := loadContainerItems(ctx, q, record); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventoryRecord(row rowScanner) (*model.InventoryRecord, error) {
	r := &model.InventoryRecord{}
	var productID, location, notes sql.NullString
	var quantity sql.NullInt64
	var containerType, containerName sql.NullString
	var containerUnitSize sql.NullFloat64
	var productName, productSKU sql.NullString

	err := row.Scan(&r.ID, &r.StoreID, &productID, &quantity, &location,
		&r.MinStockLevel, &notes,
		&containerType, &containerName, &containerUnitSize,
		&r.IsActive, &r.CreatedAt, &r.UpdatedAt,
		&productName, &productSKU)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning inventory record: %w", err)
	}

	r.ProductID = productID.String
	r.Quantity = int(quantity.Int64)
	r.Location = location.String
	r.Notes = notes.String
	r.ProductName = productName.String
	r.ProductSKU = productSKU.String
	if containerType.Valid {
		r.CardContainer = &model.CardContainer{
			ContainerType:     containerType.String,
			ContainerName:     containerName.String,
			ContainerUnitSize: containerUnitSize.Float64,
		}
	}
	return r, nil
}

func loadContainerItems(ctx context.Context, q dbtx, record *model.InventoryRecord) error {
	rows, err := q.QueryContext(ctx,
		`SELECT product_id, quantity FROM container_items WHERE inventory_id = ? ORDER BY product_id`,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("loading container items: %w", err)
	}
	defer rows.Close()

	record.CardContainer.Items = nil
	for rows.Next() {
		var item model.CardContainerItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return fmt.Errorf("scanning container item: %w", err)
		}
		record.CardContainer.Items = append(record.CardContainer.Items, item)
	}
	return rows.Err()
}
