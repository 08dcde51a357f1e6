package model

import (
	"fmt"
	"time"
)

// InventoryRecord represents stock held at a store. A record is either a
// standard item (product reference, quantity, location) or a card container
// (fixed-footprint box holding individual cards), never both.
type InventoryRecord struct {
	ID            string         `json:"id"`
	StoreID       string         `json:"store_id"`
	ProductID     string         `json:"product_id,omitempty"`
	Quantity      int            `json:"quantity"`
	Location      string         `json:"location,omitempty"`
	MinStockLevel int            `json:"min_stock_level"`
	Notes         string         `json:"notes,omitempty"`
	CardContainer *CardContainer `json:"card_container,omitempty"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Joined fields (not always populated).
	ProductName string `json:"product_name,omitempty"`
	ProductSKU  string `json:"product_sku,omitempty"`
}

// CardContainer holds individual cards inside a fixed-size container.
// The container's footprint is its own unit size, independent of contents.
type CardContainer struct {
	ContainerType     string              `json:"container_type"`
	ContainerName     string              `json:"container_name"`
	ContainerUnitSize float64             `json:"container_unit_size"`
	Items             []CardContainerItem `json:"items"`
}

// CardContainerItem is one card (product) held inside a container.
type CardContainerItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Inventory locations.
const (
	LocationFloor = "floor"
	LocationBack  = "back"
)

// Container types.
const (
	ContainerDisplayCase = "display-case"
	ContainerBulkBox     = "bulk-box"
	ContainerBulkBin     = "bulk-bin"
)

// ValidLocation reports whether l is a known location.
func ValidLocation(l string) bool {
	return l == LocationFloor || l == LocationBack
}

// ValidContainerType reports whether t is a known container type.
func ValidContainerType(t string) bool {
	return t == ContainerDisplayCase || t == ContainerBulkBox || t == ContainerBulkBin
}

// OtherLocation returns the location that is not l.
func OtherLocation(l string) string {
	if l == LocationFloor {
		return LocationBack
	}
	return LocationFloor
}

// IsContainer reports whether the record is a card container.
func (r *InventoryRecord) IsContainer() bool {
	return r.CardContainer != nil
}

// Validate enforces the container-XOR-standard shape of a record.
func (r *InventoryRecord) Validate() error {
	if r.StoreID == "" {
		return fmt.Errorf("inventory record requires a store")
	}
	if r.ProductID != "" && r.CardContainer != nil {
		return fmt.Errorf("inventory record cannot be both a standard item and a card container")
	}
	if r.ProductID == "" && r.CardContainer == nil {
		return fmt.Errorf("inventory record must reference a product or be a card container")
	}
	if r.CardContainer != nil {
		c := r.CardContainer
		if !ValidContainerType(c.ContainerType) {
			return fmt.Errorf("unknown container type %q", c.ContainerType)
		}
		if c.ContainerUnitSize <= 0 {
			return fmt.Errorf("container unit size must be positive, got %g", c.ContainerUnitSize)
		}
		for _, item := range c.Items {
			if item.ProductID == "" {
				return fmt.Errorf("container items require a product")
			}
			if item.Quantity < 1 {
				return fmt.Errorf("container item quantity must be at least 1, got %d", item.Quantity)
			}
		}
		return nil
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative, got %d", r.Quantity)
	}
	if !ValidLocation(r.Location) {
		return fmt.Errorf("unknown location %q", r.Location)
	}
	return nil
}
