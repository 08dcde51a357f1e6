package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cardhaus/cardhaus/internal/model"
)

// CreateProductParams carries the fields for a new product.
type CreateProductParams struct {
	SKU         string
	Name        string
	ProductType string
	UnitSize    float64
	CardDetails *model.CardDetails
}

// CreateProduct creates a new product, enforcing the type/unit-size/card-details coupling.
func CreateProduct(ctx context.Context, db *sql.DB, p CreateProductParams) (*model.Product, error) {
	if p.SKU == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: sku and name required", ErrInvalidInput)
	}

	product := &model.Product{
		SKU:         p.SKU,
		Name:        p.Name,
		ProductType: p.ProductType,
		UnitSize:    p.UnitSize,
		CardDetails: p.CardDetails,
	}
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	id := uuid.NewString()
	var set, number, rarity, condition, finish *string
	if p.CardDetails != nil {
		set, number = &p.CardDetails.Set, &p.CardDetails.Number
		rarity, condition, finish = &p.CardDetails.Rarity, &p.CardDetails.Condition, &p.CardDetails.Finish
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO products (id, sku, name, product_type, unit_size,
		                       card_set, card_number, card_rarity, card_condition, card_finish)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.SKU, p.Name, p.ProductType, p.UnitSize, set, number, rarity, condition, finish,
	)
	if err != nil {
		if strings.Contains(err.Error(), "idx_products_sku_active") {
			return nil, fmt.Errorf("%w: sku %q already in use", ErrInvalidInput, p.SKU)
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID.
func GetProduct(ctx context.Context, q dbtx, id string) (*model.Product, error) {
	p := &model.Product{}
	var set, number, rarity, condition, finish, imageMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, sku, name, product_type, unit_size,
		        card_set, card_number, card_rarity, card_condition, card_finish,
		        image_mime, is_active, created_at, updated_at
		 FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.ProductType, &p.UnitSize,
		&set, &number, &rarity, &condition, &finish,
		&imageMime, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	if p.ProductType == model.ProductSingleCard {
		p.CardDetails = &model.CardDetails{
			Set:       set.String,
			Number:    number.String,
			Rarity:    rarity.String,
			Condition: condition.String,
			Finish:    finish.String,
		}
	}
	p.ImageMime = imageMime.String
	return p, nil
}

// getActiveProduct returns a product that exists and has not been soft-deleted.
func getActiveProduct(ctx context.Context, q dbtx, id string) (*model.Product, error) {
	p, err := GetProduct(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// ListProducts returns active products, optionally filtered by product type.
func ListProducts(ctx context.Context, db *sql.DB, productType string) ([]model.Product, error) {
	query := `SELECT id, sku, name, product_type, unit_size,
	                 card_set, card_number, card_rarity, card_condition, card_finish,
	                 image_mime, is_active, created_at, updated_at
	          FROM products WHERE is_active = 1`
	var args []any
	if productType != "" {
		query += ` AND product_type = ?`
		args = append(args, productType)
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		var set, number, rarity, condition, finish, imageMime sql.NullString
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.ProductType, &p.UnitSize,
			&set, &number, &rarity, &condition, &finish,
			&imageMime, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		if p.ProductType == model.ProductSingleCard {
			p.CardDetails = &model.CardDetails{
				Set:       set.String,
				Number:    number.String,
				Rarity:    rarity.String,
				Condition: condition.String,
				Finish:    finish.String,
			}
		}
		p.ImageMime = imageMime.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProductParams carries optional product field updates. Product type is
// immutable; unit size and card details stay coupled to the existing type.
type UpdateProductParams struct {
	Name        *string
	UnitSize    *float64
	CardDetails *model.CardDetails
}

// UpdateProduct updates product metadata.
func UpdateProduct(ctx context.Context, db *sql.DB, id string, params UpdateProductParams) (*model.Product, error) {
	p, err := getActiveProduct(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.UnitSize != nil {
		p.UnitSize = *params.UnitSize
	}
	if params.CardDetails != nil {
		p.CardDetails = params.CardDetails
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	var set, number, rarity, condition, finish *string
	if p.CardDetails != nil {
		set, number = &p.CardDetails.Set, &p.CardDetails.Number
		rarity, condition, finish = &p.CardDetails.Rarity, &p.CardDetails.Condition, &p.CardDetails.Finish
	}

	_, err = db.ExecContext(ctx,
		`UPDATE products SET name = ?, unit_size = ?,
		        card_set = ?, card_number = ?, card_rarity = ?, card_condition = ?, card_finish = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_active = 1`,
		p.Name, p.UnitSize, set, number, rarity, condition, finish, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// DeleteProduct soft-deletes a product.
func DeleteProduct(ctx context.Context, db *sql.DB, id string) error {
	if _, err := getActiveProduct(ctx, db, id); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`UPDATE products SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

// SetProductImage stores a product's image data.
func SetProductImage(ctx context.Context, db *sql.DB, id string, image []byte, mime string) error {
	if _, err := getActiveProduct(ctx, db, id); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`UPDATE products SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_active = 1`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting product image: %w", err)
	}
	return nil
}

// GetProductImage returns a product's image data and MIME type.
func GetProductImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM products WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting product image: %w", err)
	}
	if len(image) == 0 {
		return nil, "", fmt.Errorf("product %s image: %w", id, ErrNotFound)
	}
	return image, mime.String, nil
}
