package model

import "time"

// TransferRequest represents a request to move inventory between two stores.
type TransferRequest struct {
	ID            string         `json:"id"`
	RequestNumber string         `json:"request_number"`
	FromStoreID   string         `json:"from_store_id"`
	ToStoreID     string         `json:"to_store_id"`
	Status        string         `json:"status"`
	Items         []TransferItem `json:"items"`
	Notes         string         `json:"notes,omitempty"`

	CreatedBy   string     `json:"created_by"`
	RequestedBy string     `json:"requested_by,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	SentBy      string     `json:"sent_by,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ClosedBy    string     `json:"closed_by,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CloseReason string     `json:"close_reason,omitempty"`

	History   []StatusChange `json:"history,omitempty"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`

	// Joined fields (not always populated).
	FromStoreName string `json:"from_store_name,omitempty"`
	ToStoreName   string `json:"to_store_name,omitempty"`
}

// TransferItem is one line of a transfer request, referencing a source
// inventory record. For transfers out of card containers, CardItems lists the
// specific card quantities being moved.
type TransferItem struct {
	ID                string             `json:"id"`
	InventoryID       string             `json:"inventory_id"`
	ProductID         string             `json:"product_id,omitempty"`
	RequestedQuantity int                `json:"requested_quantity"`
	CardItems         []TransferCardItem `json:"card_items,omitempty"`
}

// TransferCardItem is a per-card quantity for container transfers.
type TransferCardItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StatusChange is one entry of a request's status history.
type StatusChange struct {
	Status    string    `json:"status"`
	ActorID   string    `json:"actor_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// Transfer request statuses.
const (
	TransferOpen      = "open"
	TransferRequested = "requested"
	TransferSent      = "sent"
	TransferComplete  = "complete"
	TransferClosed    = "closed"
)

// ValidTransferStatus reports whether s is a known status.
func ValidTransferStatus(s string) bool {
	switch s {
	case TransferOpen, TransferRequested, TransferSent, TransferComplete, TransferClosed:
		return true
	}
	return false
}

// CanTransition reports whether the workflow permits moving from the current
// status to the next one, ignoring who is asking. The happy path is
// open → requested → sent → complete; closed is reachable from every status
// (including complete, the partner escape hatch) and is terminal.
func CanTransition(current, next string) bool {
	switch current {
	case TransferOpen:
		return next == TransferRequested || next == TransferClosed
	case TransferRequested:
		return next == TransferSent || next == TransferClosed
	case TransferSent:
		return next == TransferComplete || next == TransferClosed
	case TransferComplete:
		return next == TransferClosed
	}
	return false
}

// Actor identifies the user performing an operation, with the store
// attachments relevant for manager-level authorization.
type Actor struct {
	ID       string
	Username string
	Role     string
	StoreIDs []string
}

// AttachedTo reports whether the actor is attached to the given store.
func (a Actor) AttachedTo(storeID string) bool {
	for _, id := range a.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// AllowedTransition evaluates the role/store authorization matrix for a
// transition to next on a request between fromStoreID and toStoreID.
// Partners may perform any transition; managers may advance the workflow when
// attached to the side of the transfer that acts at that step; closing is
// partner-only.
func AllowedTransition(next, fromStoreID, toStoreID string, actor Actor) bool {
	if actor.Role == RolePartner {
		return true
	}
	if actor.Role != RoleManager {
		return false
	}
	switch next {
	case TransferRequested, TransferComplete:
		return actor.AttachedTo(toStoreID)
	case TransferSent:
		return actor.AttachedTo(fromStoreID)
	}
	return false
}

// AllowedCreateTransfer reports whether the actor may create a transfer
// request between the two stores.
func AllowedCreateTransfer(fromStoreID, toStoreID string, actor Actor) bool {
	if actor.Role == RolePartner {
		return true
	}
	if actor.Role != RoleManager {
		return false
	}
	return actor.AttachedTo(fromStoreID) || actor.AttachedTo(toStoreID)
}
