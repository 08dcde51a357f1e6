package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardhaus/cardhaus/internal/model"
)

// requestNumberPrefix prefixes every transfer request number.
const requestNumberPrefix = "TR"

// TransferItemParams is one requested line of a new transfer.
type TransferItemParams struct {
	InventoryID       string                   `json:"inventory_id"`
	ProductID         string                   `json:"product_id"`
	RequestedQuantity int                      `json:"requested_quantity"`
	CardItems         []model.TransferCardItem `json:"card_items"`
}

// CreateTransferParams carries the fields for a new transfer request.
type CreateTransferParams struct {
	FromStoreID string
	ToStoreID   string
	Notes       string
	Items       []TransferItemParams
}

// CreateTransferRequest creates a transfer request in the open status.
// Both stores must resolve and differ; every line item must reference an
// active inventory record at the source store with enough quantity at this
// moment (records are re-checked again at send time). The request number is a
// daily sequence of the form TR-YYYYMMDD-NNNN.
func CreateTransferRequest(ctx context.Context, db *sql.DB, actor model.Actor, p CreateTransferParams) (*model.TransferRequest, error) {
	if err := validateID("store", p.FromStoreID); err != nil {
		return nil, err
	}
	if err := validateID("store", p.ToStoreID); err != nil {
		return nil, err
	}
	if p.FromStoreID == p.ToStoreID {
		return nil, fmt.Errorf("%w: cannot transfer from a store to itself", ErrInvariant)
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: transfer request requires at least one item", ErrInvalidInput)
	}
	if !model.AllowedCreateTransfer(p.FromStoreID, p.ToStoreID, actor) {
		return nil, fmt.Errorf("%w: %s may not create transfers between these stores", ErrForbidden, actor.Role)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getActiveStore(ctx, tx, p.FromStoreID); err != nil {
		return nil, err
	}
	if _, err := getActiveStore(ctx, tx, p.ToStoreID); err != nil {
		return nil, err
	}

	type validatedItem struct {
		inventoryID string
		productID   *string
		quantity    int
		cardItems   []model.TransferCardItem
	}
	items := make([]validatedItem, 0, len(p.Items))

	for _, item := range p.Items {
		if err := validateID("inventory record", item.InventoryID); err != nil {
			return nil, err
		}
		rec, err := getInventoryRecord(ctx, tx, item.InventoryID)
		if err != nil {
			return nil, err
		}
		if !rec.IsActive {
			return nil, fmt.Errorf("inventory record %s: %w", item.InventoryID, ErrNotFound)
		}
		if rec.StoreID != p.FromStoreID {
			return nil, fmt.Errorf("%w: inventory record %s does not belong to the source store",
				ErrInvalidInput, item.InventoryID)
		}

		if rec.IsContainer() {
			if len(item.CardItems) == 0 {
				return nil, fmt.Errorf("%w: container transfers require card item quantities", ErrInvalidInput)
			}
			total := 0
			for _, ci := range item.CardItems {
				if ci.Quantity < 1 {
					return nil, fmt.Errorf("%w: card item quantity must be at least 1", ErrInvalidInput)
				}
				available := 0
				for _, held := range rec.CardContainer.Items {
					if held.ProductID == ci.ProductID {
						available = held.Quantity
						break
					}
				}
				if ci.Quantity > available {
					return nil, &InsufficientQuantityError{
						ProductID: ci.ProductID,
						Requested: ci.Quantity,
						Available: available,
					}
				}
				total += ci.Quantity
			}
			if item.RequestedQuantity != 0 && item.RequestedQuantity != total {
				return nil, fmt.Errorf("%w: requested quantity %d does not match card item total %d",
					ErrInvalidInput, item.RequestedQuantity, total)
			}
			items = append(items, validatedItem{
				inventoryID: rec.ID,
				quantity:    total,
				cardItems:   item.CardItems,
			})
			continue
		}

		if len(item.CardItems) > 0 {
			return nil, fmt.Errorf("%w: card item quantities are only valid for container records", ErrInvalidInput)
		}
		if item.RequestedQuantity < 1 {
			return nil, fmt.Errorf("%w: requested quantity must be at least 1", ErrInvalidInput)
		}
		if item.ProductID != "" && item.ProductID != rec.ProductID {
			return nil, fmt.Errorf("%w: product %s does not match inventory record %s",
				ErrInvalidInput, item.ProductID, rec.ID)
		}
		if item.RequestedQuantity > rec.Quantity {
			return nil, &InsufficientQuantityError{
				ProductID: rec.ProductID,
				Requested: item.RequestedQuantity,
				Available: rec.Quantity,
			}
		}
		productID := rec.ProductID
		items = append(items, validatedItem{
			inventoryID: rec.ID,
			productID:   &productID,
			quantity:    item.RequestedQuantity,
		})
	}

	now := time.Now().UTC()
	number, err := nextRequestNumber(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transfer_requests (id, request_number, from_store_id, to_store_id, status, notes, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, number, p.FromStoreID, p.ToStoreID, model.TransferOpen, p.Notes, actor.ID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating transfer request: %w", err)
	}

	for _, item := range items {
		itemID := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transfer_items (id, request_id, inventory_id, product_id, requested_quantity)
			 VALUES (?, ?, ?, ?, ?)`,
			itemID, id, item.inventoryID, item.productID, item.quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("creating transfer item: %w", err)
		}
		for _, ci := range item.cardItems {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO transfer_card_items (transfer_item_id, product_id, quantity) VALUES (?, ?, ?)
				 ON CONFLICT (transfer_item_id, product_id) DO UPDATE SET quantity = quantity + ?`,
				itemID, ci.ProductID, ci.Quantity, ci.Quantity,
			)
			if err != nil {
				return nil, fmt.Errorf("creating transfer card item: %w", err)
			}
		}
	}

	if err := appendStatusHistory(ctx, tx, id, model.TransferOpen, actor.ID, now); err != nil {
		return nil, err
	}

	request, err := getTransferRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transfer request: %w", err)
	}
	return request, nil
}

// nextRequestNumber generates the next TR-YYYYMMDD-NNNN number for the day.
// The sequence restarts at 0001 each calendar day.
func nextRequestNumber(ctx context.Context, q dbtx, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", requestNumberPrefix, now.Format("20060102"))

	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transfer_requests WHERE request_number LIKE ?`,
		prefix+"%",
	).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("counting today's transfer requests: %w", err)
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func appendStatusHistory(ctx context.Context, q dbtx, requestID, status, actorID string, at time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transfer_status_history (request_id, status, actor_id, changed_at) VALUES (?, ?, ?, ?)`,
		requestID, status, actorID, at,
	)
	if err != nil {
		return fmt.Errorf("appending status history: %w", err)
	}
	return nil
}

// UpdateTransferStatus executes one workflow transition. The structural
// legality of the transition and the actor's authorization are checked first,
// then the compensating inventory movement runs in the same transaction as
// the status write: if the movement fails, the transition is not committed.
func UpdateTransferStatus(ctx context.Context, db *sql.DB, id, newStatus string, actor model.Actor, closeReason string) (*model.TransferRequest, error) {
	if err := validateID("transfer request", id); err != nil {
		return nil, err
	}
	if !model.ValidTransferStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := getTransferRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsActive {
		return nil, fmt.Errorf("transfer request %s: %w", id, ErrNotFound)
	}

	if !model.CanTransition(req.Status, newStatus) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, req.Status, newStatus)
	}
	if !model.AllowedTransition(newStatus, req.FromStoreID, req.ToStoreID, actor) {
		return nil, fmt.Errorf("%w: %s may not move request %s to %s",
			ErrForbidden, actor.Role, req.RequestNumber, newStatus)
	}

	now := time.Now().UTC()

	switch newStatus {
	case model.TransferRequested:
		_, err = tx.ExecContext(ctx,
			`UPDATE transfer_requests SET status = ?, requested_by = ?, requested_at = ? WHERE id = ?`,
			newStatus, actor.ID, now, id,
		)

	case model.TransferSent:
		if err := deductSourceInventory(ctx, tx, req); err != nil {
			return nil, err
		}
		if _, err := RecalculateStoreCapacity(ctx, tx, req.FromStoreID); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE transfer_requests SET status = ?, sent_by = ?, sent_at = ? WHERE id = ?`,
			newStatus, actor.ID, now, id,
		)

	case model.TransferComplete:
		if err := creditDestinationInventory(ctx, tx, req); err != nil {
			return nil, err
		}
		// Destination capacity is refreshed but deliberately not enforced
		// here: a completed transfer may push a store past its limit.
		if _, err := RecalculateStoreCapacity(ctx, tx, req.ToStoreID); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE transfer_requests SET status = ?, completed_by = ?, completed_at = ? WHERE id = ?`,
			newStatus, actor.ID, now, id,
		)

	case model.TransferClosed:
		if req.Status == model.TransferSent {
			// Goods already left the source; put the quantities back as well
			// as the surviving records allow.
			if err := restoreSourceInventory(ctx, tx, req); err != nil {
				return nil, err
			}
			if _, err := RecalculateStoreCapacity(ctx, tx, req.FromStoreID); err != nil {
				return nil, err
			}
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE transfer_requests SET status = ?, closed_by = ?, closed_at = ?, close_reason = ? WHERE id = ?`,
			newStatus, actor.ID, now, closeReason, id,
		)

	default:
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, req.Status, newStatus)
	}
	if err != nil {
		return nil, fmt.Errorf("updating transfer status: %w", err)
	}

	if err := appendStatusHistory(ctx, tx, id, newStatus, actor.ID, now); err != nil {
		return nil, err
	}

	request, err := getTransferRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status transition: %w", err)
	}
	return request, nil
}

// deductSourceInventory removes each line item's quantity from its source
// record. Records are reloaded by id: other activity may have drawn them down
// since the request was created, in which case the deduction fails and the
// transition aborts. A standard record reaching zero is soft-deleted; a
// container stays active with its remaining cards.
func deductSourceInventory(ctx context.Context, tx *sql.Tx, req *model.TransferRequest) error {
	for _, item := range req.Items {
		rec, err := getInventoryRecord(ctx, tx, item.InventoryID)
		if err != nil {
			return err
		}
		if !rec.IsActive {
			return &InsufficientQuantityError{
				ProductID: item.ProductID,
				Requested: item.RequestedQuantity,
				Available: 0,
			}
		}

		if rec.IsContainer() {
			for _, ci := range item.CardItems {
				available := 0
				for _, held := range rec.CardContainer.Items {
					if held.ProductID == ci.ProductID {
						available = held.Quantity
						break
					}
				}
				newQty := available - ci.Quantity
				if newQty < 0 {
					return &InsufficientQuantityError{
						ProductID: ci.ProductID,
						Requested: ci.Quantity,
						Available: available,
					}
				}
				if newQty == 0 {
					_, err = tx.ExecContext(ctx,
						`DELETE FROM container_items WHERE inventory_id = ? AND product_id = ?`,
						rec.ID, ci.ProductID,
					)
				} else {
					_, err = tx.ExecContext(ctx,
						`UPDATE container_items SET quantity = ? WHERE inventory_id = ? AND product_id = ?`,
						newQty, rec.ID, ci.ProductID,
					)
				}
				if err != nil {
					return fmt.Errorf("deducting container item: %w", err)
				}
			}
			continue
		}

		newQty := rec.Quantity - item.RequestedQuantity
		if newQty < 0 {
			return &InsufficientQuantityError{
				ProductID: rec.ProductID,
				Requested: item.RequestedQuantity,
				Available: rec.Quantity,
			}
		}
		if newQty == 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET is_active = 0, quantity = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				rec.ID,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				newQty, rec.ID,
			)
		}
		if err != nil {
			return fmt.Errorf("deducting source inventory: %w", err)
		}
	}
	return nil
}

// creditDestinationInventory adds each line item to the destination store,
// merging into an existing record at the same (product, location) when one
// exists. Container lines recreate a container carrying the original's
// metadata and the transferred cards. If the source record is unrecoverable,
// placement defaults to the floor.
func creditDestinationInventory(ctx context.Context, tx *sql.Tx, req *model.TransferRequest) error {
	for _, item := range req.Items {
		src, err := getInventoryRecord(ctx, tx, item.InventoryID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		location := model.LocationFloor
		if src != nil && src.Location != "" {
			location = src.Location
		}

		if len(item.CardItems) > 0 {
			if err := creditCardItems(ctx, tx, req.ToStoreID, location, src, item); err != nil {
				return err
			}
			continue
		}

		existing, err := findStandardRecord(ctx, tx, req.ToStoreID, item.ProductID, location)
		if err != nil {
			return err
		}
		if existing != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				existing.Quantity+item.RequestedQuantity, existing.ID,
			)
			if err != nil {
				return fmt.Errorf("crediting destination inventory: %w", err)
			}
			continue
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO inventory (id, store_id, product_id, quantity, location)
			 VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), req.ToStoreID, item.ProductID, item.RequestedQuantity, location,
		)
		if err != nil {
			return fmt.Errorf("creating destination inventory: %w", err)
		}
	}
	return nil
}

// creditCardItems lands transferred cards at the destination. When the source
// container still exists its metadata is carried over into a new destination
// container; otherwise the cards arrive as individual records.
func creditCardItems(ctx context.Context, tx *sql.Tx, toStoreID, location string, src *model.InventoryRecord, item model.TransferItem) error {
	if src != nil && src.IsContainer() {
		containerID := uuid.NewString()
		c := src.CardContainer
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inventory (id, store_id, location, container_type, container_name, container_unit_size)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			containerID, toStoreID, location, c.ContainerType, c.ContainerName, c.ContainerUnitSize,
		)
		if err != nil {
			return fmt.Errorf("creating destination container: %w", err)
		}
		for _, ci := range item.CardItems {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO container_items (inventory_id, product_id, quantity) VALUES (?, ?, ?)`,
				containerID, ci.ProductID, ci.Quantity,
			)
			if err != nil {
				return fmt.Errorf("filling destination container: %w", err)
			}
		}
		return nil
	}

	// Source container gone: land the cards as individual records.
	for _, ci := range item.CardItems {
		existing, err := findStandardRecord(ctx, tx, toStoreID, ci.ProductID, location)
		if err != nil {
			return err
		}
		if existing != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				existing.Quantity+ci.Quantity, existing.ID,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO inventory (id, store_id, product_id, quantity, location)
				 VALUES (?, ?, ?, ?, ?)`,
				uuid.NewString(), toStoreID, ci.ProductID, ci.Quantity, location,
			)
		}
		if err != nil {
			return fmt.Errorf("crediting destination cards: %w", err)
		}
	}
	return nil
}

// restoreSourceInventory is the best-effort reversal for closing an already
// sent request. Only the deducted quantities are known, not the records'
// pre-deduction state: live records get the quantity added back, soft-deleted
// ones are reactivated at the deducted quantity, and vanished ones are
// recreated in the back room.
func restoreSourceInventory(ctx context.Context, tx *sql.Tx, req *model.TransferRequest) error {
	for _, item := range req.Items {
		rec, err := getInventoryRecord(ctx, tx, item.InventoryID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			if err := recreateSourceRecord(ctx, tx, req.FromStoreID, item); err != nil {
				return err
			}
			continue
		}

		if rec.IsContainer() {
			if !rec.IsActive {
				_, err = tx.ExecContext(ctx,
					`UPDATE inventory SET is_active = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
					rec.ID,
				)
				if err != nil {
					return fmt.Errorf("reactivating container: %w", err)
				}
			}
			for _, ci := range item.CardItems {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO container_items (inventory_id, product_id, quantity) VALUES (?, ?, ?)
					 ON CONFLICT (inventory_id, product_id) DO UPDATE SET quantity = quantity + ?`,
					rec.ID, ci.ProductID, ci.Quantity, ci.Quantity,
				)
				if err != nil {
					return fmt.Errorf("restoring container item: %w", err)
				}
			}
			continue
		}

		if rec.IsActive {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				rec.Quantity+item.RequestedQuantity, rec.ID,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET is_active = 1, quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				item.RequestedQuantity, rec.ID,
			)
		}
		if err != nil {
			return fmt.Errorf("restoring source inventory: %w", err)
		}
	}
	return nil
}

// recreateSourceRecord rebuilds a vanished source record in the back room.
// Container metadata is unrecoverable at this point, so container lines come
// back as individual card records.
func recreateSourceRecord(ctx context.Context, tx *sql.Tx, storeID string, item model.TransferItem) error {
	if len(item.CardItems) > 0 {
		for _, ci := range item.CardItems {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO inventory (id, store_id, product_id, quantity, location)
				 VALUES (?, ?, ?, ?, ?)`,
				uuid.NewString(), storeID, ci.ProductID, ci.Quantity, model.LocationBack,
			)
			if err != nil {
				return fmt.Errorf("recreating source cards: %w", err)
			}
		}
		return nil
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO inventory (id, store_id, product_id, quantity, location)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), storeID, item.ProductID, item.RequestedQuantity, model.LocationBack,
	)
	if err != nil {
		return fmt.Errorf("recreating source record: %w", err)
	}
	return nil
}

// DeleteTransferRequest soft-deletes a transfer request. Only a partner may
// delete, and only from open or closed: an in-flight request must be closed
// first so the audit trail survives.
func DeleteTransferRequest(ctx context.Context, db *sql.DB, id string, actor model.Actor) error {
	if err := validateID("transfer request", id); err != nil {
		return err
	}
	if actor.Role != model.RolePartner {
		return fmt.Errorf("%w: only partners may delete transfer requests", ErrForbidden)
	}

	req, err := getTransferRequest(ctx, db, id)
	if err != nil {
		return err
	}
	if !req.IsActive {
		return fmt.Errorf("transfer request %s: %w", id, ErrNotFound)
	}
	if req.Status != model.TransferOpen && req.Status != model.TransferClosed {
		return fmt.Errorf("%w: only open or closed requests can be deleted, status is %s",
			ErrInvalidInput, req.Status)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE transfer_requests SET is_active = 0 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting transfer request: %w", err)
	}
	return nil
}

// GetTransferRequest returns a transfer request by ID, including soft-deleted
// ones (they remain queryable for history).
func GetTransferRequest(ctx context.Context, db *sql.DB, id string) (*model.TransferRequest, error) {
	if err := validateID("transfer request", id); err != nil {
		return nil, err
	}
	return getTransferRequest(ctx, db, id)
}

// ListTransferRequests returns active transfer requests, newest first,
// optionally filtered by store (either side) or status.
func ListTransferRequests(ctx context.Context, db *sql.DB, storeID, status string) ([]model.TransferRequest, error) {
	query := `SELECT t.id FROM transfer_requests t WHERE t.is_active = 1`
	var args []any

	if storeID != "" {
		if err := validateID("store", storeID); err != nil {
			return nil, err
		}
		query += ` AND (t.from_store_id = ? OR t.to_store_id = ?)`
		args = append(args, storeID, storeID)
	}
	if status != "" {
		if !model.ValidTransferStatus(status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		query += ` AND t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY t.created_at DESC, t.request_number DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfer requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning transfer request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	requests := make([]model.TransferRequest, 0, len(ids))
	for _, id := range ids {
		req, err := getTransferRequest(ctx, db, id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, nil
}

func getTransferRequest(ctx context.Context, q dbtx, id string) (*model.TransferRequest, error) {
	t := &model.TransferRequest{}
	var notes, requestedBy, sentBy, completedBy, closedBy, closeReason sql.NullString
	var requestedAt, sentAt, completedAt, closedAt sql.NullTime

	err := q.QueryRowContext(ctx,
		`SELECT t.id, t.request_number, t.from_store_id, t.to_store_id, t.status, t.notes,
		        t.created_by, t.requested_by, t.requested_at, t.sent_by, t.sent_at,
		        t.completed_by, t.completed_at, t.closed_by, t.closed_at, t.close_reason,
		        t.is_active, t.created_at,
		        fs.name, ts.name
		 FROM transfer_requests t
		 JOIN stores fs ON fs.id = t.from_store_id
		 JOIN stores ts ON ts.id = t.to_store_id
		 WHERE t.id = ?`, id,
	).Scan(&t.ID, &t.RequestNumber, &t.FromStoreID, &t.ToStoreID, &t.Status, &notes,
		&t.CreatedBy, &requestedBy, &requestedAt, &sentBy, &sentAt,
		&completedBy, &completedAt, &closedBy, &closedAt, &closeReason,
		&t.IsActive, &t.CreatedAt,
		&t.FromStoreName, &t.ToStoreName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transfer request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer request: %w", err)
	}

	t.Notes = notes.String
	t.RequestedBy = requestedBy.String
	t.SentBy = sentBy.String
	t.CompletedBy = completedBy.String
	t.ClosedBy = closedBy.String
	t.CloseReason = closeReason.String
	if requestedAt.Valid {
		t.RequestedAt = &requestedAt.Time
	}
	if sentAt.Valid {
		t.SentAt = &sentAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}

	if err := loadTransferItems(ctx, q, t); err != nil {
		return nil, err
	}
	if err := loadStatusHistory(ctx, q, t); err != nil {
		return nil, err
	}
	return t, nil
}

func loadTransferItems(ctx context.Context, q dbtx, t *model.TransferRequest) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, inventory_id, product_id, requested_quantity
		 FROM transfer_items WHERE request_id = ? ORDER BY id`, t.ID,
	)
	if err != nil {
		return fmt.Errorf("loading transfer items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.TransferItem
		var productID sql.NullString
		if err := rows.Scan(&item.ID, &item.InventoryID, &productID, &item.RequestedQuantity); err != nil {
			return fmt.Errorf("scanning transfer item: %w", err)
		}
		item.ProductID = productID.String
		t.Items = append(t.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range t.Items {
		cardRows, err := q.QueryContext(ctx,
			`SELECT product_id, quantity FROM transfer_card_items
			 WHERE transfer_item_id = ? ORDER BY product_id`, t.Items[i].ID,
		)
		if err != nil {
			return fmt.Errorf("loading transfer card items: %w", err)
		}
		for cardRows.Next() {
			var ci model.TransferCardItem
			if err := cardRows.Scan(&ci.ProductID, &ci.Quantity); err != nil {
				cardRows.Close()
				return fmt.Errorf("scanning transfer card item: %w", err)
			}
			t.Items[i].CardItems = append(t.Items[i].CardItems, ci)
		}
		if err := cardRows.Err(); err != nil {
			cardRows.Close()
			return err
		}
		cardRows.Close()
	}
	return nil
}

func loadStatusHistory(ctx context.Context, q dbtx, t *model.TransferRequest) error {
	rows, err := q.QueryContext(ctx,
		`SELECT status, actor_id, changed_at FROM transfer_status_history
		 WHERE request_id = ? ORDER BY changed_at, rowid`, t.ID,
	)
	if err != nil {
		return fmt.Errorf("loading status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var change model.StatusChange
		if err := rows.Scan(&change.Status, &change.ActorID, &change.ChangedAt); err != nil {
			return fmt.Errorf("scanning status change: %w", err)
		}
		t.History = append(t.History, change)
	}
	return rows.Err()
}
