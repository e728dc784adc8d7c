// Package product provides the Product and ProductCategory catalogs.
package product

import (
	"context"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

// Product represents a sellable dairy item.
type Product struct {
	entity.Catalog

	// CategoryID groups the product for tax applicability
	CategoryID id.ID `db:"category_id" json:"categoryId"`

	// DefaultUnitPrice is the current configured selling price.
	// Document lines snapshot this value at line-creation time; it is
	// never re-read for existing lines.
	DefaultUnitPrice types.Money `db:"default_unit_price" json:"defaultUnitPrice"`

	// UnitCost is the recorded cost used for margin computation
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// Unit is the selling unit (litre, crate, sachet)
	Unit string `db:"unit" json:"unit"`

	// Perishable products require cold-chain handling
	Perishable bool `db:"perishable" json:"perishable"`
}

// NewProduct creates a new product.
func NewProduct(code, name string, categoryID id.ID) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(code, name),
		CategoryID: categoryID,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("product category is required").
			WithDetail("field", "categoryId")
	}

	if p.DefaultUnitPrice.IsNegative() {
		return apperror.NewValidation("default unit price cannot be negative").
			WithDetail("field", "defaultUnitPrice")
	}

	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	return nil
}

// ProductCategory groups products for taxation and reporting.
type ProductCategory struct {
	entity.Catalog

	// ParentID for hierarchical categories (nullable)
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	Description string `db:"description" json:"description,omitempty"`
}

// NewProductCategory creates a new product category.
func NewProductCategory(code, name string) *ProductCategory {
	return &ProductCategory{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable.
func (c *ProductCategory) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
