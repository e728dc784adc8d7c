// Package tax provides the Tax catalog.
package tax

import (
	"context"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

// Tax is a named rate applied to document lines.
// Rates are fractions, not percentages: 0.1925 means 19.25%.
type Tax struct {
	entity.Catalog

	// Rate is the tax fraction, in [0, 1]
	Rate types.Rate `db:"rate" json:"rate"`

	// CategoryIDs restricts applicability to the listed product
	// categories. Empty means the tax applies to every category.
	CategoryIDs []id.ID `db:"category_ids" json:"categoryIds,omitempty"`
}

// NewTax creates a new tax.
func NewTax(code, name string, rate types.Rate) *Tax {
	return &Tax{
		Catalog: entity.NewCatalog(code, name),
		Rate:    rate,
	}
}

// Validate implements entity.Validatable.
func (t *Tax) Validate(ctx context.Context) error {
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}

	if t.Rate.IsNegative() || t.Rate.GreaterThan(types.MustRate("1")) {
		return apperror.NewValidation("tax rate must be between 0 and 1").
			WithDetail("field", "rate").
			WithDetail("rate", t.Rate.String())
	}

	return nil
}

// AppliesTo reports whether the tax applies to a product category.
func (t *Tax) AppliesTo(categoryID id.ID) bool {
	if len(t.CategoryIDs) == 0 {
		return true
	}
	for _, cid := range t.CategoryIDs {
		if cid == categoryID {
			return true
		}
	}
	return false
}
