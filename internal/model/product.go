package model

import (
	"fmt"
	"time"
)

// Product represents a sellable product: a single card or an accessory.
type Product struct {
	ID          string       `json:"id"`
	SKU         string       `json:"sku"`
	Name        string       `json:"name"`
	ProductType string       `json:"product_type"`
	UnitSize    float64      `json:"unit_size"`
	CardDetails *CardDetails `json:"card_details,omitempty"`
	ImageMime   string       `json:"image_mime,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CardDetails describes a single card. Present iff the product type is singleCard.
type CardDetails struct {
	Set       string `json:"set"`
	Number    string `json:"number"`
	Rarity    string `json:"rarity"`
	Condition string `json:"condition"`
	Finish    string `json:"finish"`
}

// Product types.
const (
	ProductSingleCard       = "singleCard"
	ProductBoosterPack      = "boosterPack"
	ProductCollectorBooster = "collectorBooster"
	ProductDeck             = "deck"
	ProductDeckBox          = "deckBox"
	ProductDice             = "dice"
	ProductSleeves          = "sleeves"
	ProductPlaymat          = "playmat"
	ProductBinder           = "binder"
	ProductOther            = "other"
)

// ValidProductType reports whether t is a known product type.
func ValidProductType(t string) bool {
	switch t {
	case ProductSingleCard, ProductBoosterPack, ProductCollectorBooster,
		ProductDeck, ProductDeckBox, ProductDice, ProductSleeves,
		ProductPlaymat, ProductBinder, ProductOther:
		return true
	}
	return false
}

// Validate checks the coupling between product type, unit size and card details:
// single cards occupy no shelf space and must carry card details, every other
// type must occupy space and must not.
func (p *Product) Validate() error {
	if !ValidProductType(p.ProductType) {
		return fmt.Errorf("unknown product type %q", p.ProductType)
	}
	if p.ProductType == ProductSingleCard {
		if p.UnitSize != 0 {
			return fmt.Errorf("single card products must have unit size 0, got %g", p.UnitSize)
		}
		if p.CardDetails == nil {
			return fmt.Errorf("single card products require card details")
		}
		return nil
	}
	if p.UnitSize <= 0 {
		return fmt.Errorf("%s products must have a positive unit size, got %g", p.ProductType, p.UnitSize)
	}
	if p.CardDetails != nil {
		return fmt.Errorf("%s products must not carry card details", p.ProductType)
	}
	return nil
}
