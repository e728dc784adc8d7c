package documents

import (
	"context"
	"fmt"

	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
	"globalerp/internal/domain/catalogs/tax"
)

// ProductCatalog is the read side of the product catalog the engine
// needs for costing and tax applicability.
type ProductCatalog interface {
	DefaultUnitPrice(ctx context.Context, productID id.ID) (types.Money, error)
	UnitCost(ctx context.Context, productID id.ID) (types.Money, error)
	CategoryOf(ctx context.Context, productID id.ID) (id.ID, error)
}

// TaxCatalog is the read side of the tax catalog.
type TaxCatalog interface {
	FindApplicable(ctx context.Context, categoryID id.ID) ([]*tax.Tax, error)
	GetByID(ctx context.Context, taxID id.ID) (*tax.Tax, error)
}

// Engine computes document values. All methods are read-only and
// idempotent over the document's current line and tax state.
type Engine struct {
	products ProductCatalog
	taxes    TaxCatalog
}

// NewEngine creates a valuation engine.
func NewEngine(products ProductCatalog, taxes TaxCatalog) *Engine {
	return &Engine{
		products: products,
		taxes:    taxes,
	}
}

// signedAmount returns unitPrice * quantity with the line's direction
// sign applied. Outbound contributes positively.
func signedAmount(l DocumentLine) types.Money {
	amount := l.Amount()
	if l.Direction.Sign() < 0 {
		return amount.Neg()
	}
	return amount
}

// ValueWithoutTaxes sums unitPrice * quantity over all lines, signed by
// each line's direction.
func (e *Engine) ValueWithoutTaxes(doc *Document) types.Money {
	total := types.Zero()
	for _, l := range doc.Lines {
		total = total.Add(signedAmount(l))
	}
	return total
}

// TaxesValue sums lineBase * rate across all (line, applicable tax)
// pairs. Multiple taxes on one line apply independently to the line
// base; taxes never compound on each other's output.
func (e *Engine) TaxesValue(ctx context.Context, doc *Document) (types.Money, error) {
	total := types.Zero()
	for _, l := range doc.Lines {
		categoryID, err := e.products.CategoryOf(ctx, l.ProductID)
		if err != nil {
			return types.Zero(), fmt.Errorf("resolve category for product %s: %w", l.ProductID, err)
		}

		applicable, err := e.taxes.FindApplicable(ctx, categoryID)
		if err != nil {
			return types.Zero(), fmt.Errorf("resolve taxes for category %s: %w", categoryID, err)
		}

		base := signedAmount(l)
		for _, t := range applicable {
			total = total.Add(base.Mul(t.Rate))
		}
	}
	return total, nil
}

// TaxValue computes the document's value for one named tax. Unknown tax
// identifiers are an error, a normal miss is not a valid outcome here.
func (e *Engine) TaxValue(ctx context.Context, taxID id.ID, doc *Document) (types.Money, error) {
	t, err := e.taxes.GetByID(ctx, taxID)
	if err != nil {
		return types.Zero(), err
	}

	total := types.Zero()
	for _, l := range doc.Lines {
		categoryID, err := e.products.CategoryOf(ctx, l.ProductID)
		if err != nil {
			return types.Zero(), fmt.Errorf("resolve category for product %s: %w", l.ProductID, err)
		}
		if !t.AppliesTo(categoryID) {
			continue
		}
		total = total.Add(signedAmount(l).Mul(t.Rate))
	}
	return total, nil
}

// ValueWithTaxes returns ValueWithoutTaxes + TaxesValue.
func (e *Engine) ValueWithTaxes(ctx context.Context, doc *Document) (types.Money, error) {
	taxes, err := e.TaxesValue(ctx, doc)
	if err != nil {
		return types.Zero(), err
	}
	return e.ValueWithoutTaxes(doc).Add(taxes), nil
}

// MarginValue returns the tax-inclusive sell value minus the cost value
// of the document's lines. Costs come from the product catalog at call
// time, not from line snapshots.
func (e *Engine) MarginValue(ctx context.Context, doc *Document) (types.Money, error) {
	sell, err := e.ValueWithTaxes(ctx, doc)
	if err != nil {
		return types.Zero(), err
	}

	cost := types.Zero()
	for _, l := range doc.Lines {
		unitCost, err := e.products.UnitCost(ctx, l.ProductID)
		if err != nil {
			return types.Zero(), fmt.Errorf("resolve cost for product %s: %w", l.ProductID, err)
		}
		lineCost := unitCost.Mul(l.Quantity)
		if l.Direction.Sign() < 0 {
			lineCost = lineCost.Neg()
		}
		cost = cost.Add(lineCost)
	}

	return sell.Sub(cost), nil
}
