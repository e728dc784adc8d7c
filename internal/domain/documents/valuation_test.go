package documents

import (
	"context"
	"testing"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
	"globalerp/internal/domain/catalogs/tax"
)

type fakeProducts struct {
	prices     map[id.ID]types.Money
	costs      map[id.ID]types.Money
	categories map[id.ID]id.ID
}

func (f *fakeProducts) DefaultUnitPrice(_ context.Context, productID id.ID) (types.Money, error) {
	p, ok := f.prices[productID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (f *fakeProducts) UnitCost(_ context.Context, productID id.ID) (types.Money, error) {
	c, ok := f.costs[productID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	return c, nil
}

func (f *fakeProducts) CategoryOf(_ context.Context, productID id.ID) (id.ID, error) {
	c, ok := f.categories[productID]
	if !ok {
		return id.Nil(), apperror.NewNotFound("product", productID.String())
	}
	return c, nil
}

type fakeTaxes struct {
	taxes []*tax.Tax
}

func (f *fakeTaxes) FindApplicable(_ context.Context, categoryID id.ID) ([]*tax.Tax, error) {
	var out []*tax.Tax
	for _, t := range f.taxes {
		if t.AppliesTo(categoryID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaxes) GetByID(_ context.Context, taxID id.ID) (*tax.Tax, error) {
	for _, t := range f.taxes {
		if t.ID == taxID {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("tax", taxID.String())
}

// fixture: two dairy products, one taxed category, VAT plus a
// dairy-only excise.
type valuationFixture struct {
	engine *Engine
	doc    *Document

	p1, p2 id.ID
	vat    *tax.Tax
	excise *tax.Tax
}

func newValuationFixture(t *testing.T) *valuationFixture {
	t.Helper()

	p1 := id.New()
	p2 := id.New()
	dairy := id.New()
	packaging := id.New()

	products := &fakeProducts{
		prices: map[id.ID]types.Money{
			p1: types.MustMoney("500"),
			p2: types.MustMoney("300"),
		},
		costs: map[id.ID]types.Money{
			p1: types.MustMoney("350"),
			p2: types.MustMoney("210"),
		},
		categories: map[id.ID]id.ID{
			p1: dairy,
			p2: dairy,
		},
	}

	vat := tax.NewTax("VAT", "Value added tax", types.MustRate("0.1925"))
	excise := tax.NewTax("EXC", "Dairy excise", types.MustRate("0.05"))
	excise.CategoryIDs = []id.ID{dairy}

	// A packaging-only tax that must never touch this document.
	other := tax.NewTax("PKG", "Packaging levy", types.MustRate("0.02"))
	other.CategoryIDs = []id.ID{packaging}

	doc := NewDocument(Outbound, id.New())
	doc.AddLine(p1, types.MustMoney("500"), types.MustQuantity("10"))
	doc.AddLine(p2, types.MustMoney("300"), types.MustQuantity("0"))

	return &valuationFixture{
		engine: NewEngine(products, &fakeTaxes{taxes: []*tax.Tax{vat, excise, other}}),
		doc:    doc,
		p1:     p1,
		p2:     p2,
		vat:    vat,
		excise: excise,
	}
}

func TestValueWithoutTaxes(t *testing.T) {
	f := newValuationFixture(t)

	got := f.engine.ValueWithoutTaxes(f.doc)
	want := types.MustMoney("5000")
	if !got.Equal(want) {
		t.Errorf("ValueWithoutTaxes() = %s, want %s", got, want)
	}
}

func TestValueWithoutTaxesInboundIsNegative(t *testing.T) {
	f := newValuationFixture(t)

	doc := NewDocument(Inbound, id.New())
	doc.AddLine(f.p1, types.MustMoney("500"), types.MustQuantity("4"))

	got := f.engine.ValueWithoutTaxes(doc)
	want := types.MustMoney("-2000")
	if !got.Equal(want) {
		t.Errorf("ValueWithoutTaxes() = %s, want %s", got, want)
	}
}

func TestValueWithTaxesIdentity(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()

	withTaxes, err := f.engine.ValueWithTaxes(ctx, f.doc)
	if err != nil {
		t.Fatalf("ValueWithTaxes() error = %v", err)
	}
	taxes, err := f.engine.TaxesValue(ctx, f.doc)
	if err != nil {
		t.Fatalf("TaxesValue() error = %v", err)
	}

	want := f.engine.ValueWithoutTaxes(f.doc).Add(taxes)
	if !withTaxes.Equal(want) {
		t.Errorf("ValueWithTaxes() = %s, want ValueWithoutTaxes + TaxesValue = %s", withTaxes, want)
	}
}

func TestTaxesValueAdditive(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()

	// 5000 * (0.1925 + 0.05), taxes apply to the base independently
	got, err := f.engine.TaxesValue(ctx, f.doc)
	if err != nil {
		t.Fatalf("TaxesValue() error = %v", err)
	}
	want := types.MustMoney("1212.5")
	if !got.Equal(want) {
		t.Errorf("TaxesValue() = %s, want %s", got, want)
	}
}

func TestTaxesValueEqualsPerTaxSum(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()

	aggregate, err := f.engine.TaxesValue(ctx, f.doc)
	if err != nil {
		t.Fatalf("TaxesValue() error = %v", err)
	}

	sum := types.Zero()
	for _, tx := range []*tax.Tax{f.vat, f.excise} {
		v, err := f.engine.TaxValue(ctx, tx.ID, f.doc)
		if err != nil {
			t.Fatalf("TaxValue(%s) error = %v", tx.Code, err)
		}
		sum = sum.Add(v)
	}

	if !aggregate.Equal(sum) {
		t.Errorf("aggregate TaxesValue() = %s, sum of per-tax values = %s", aggregate, sum)
	}
}

func TestTaxValueUnknownTax(t *testing.T) {
	f := newValuationFixture(t)

	_, err := f.engine.TaxValue(context.Background(), id.New(), f.doc)
	if !apperror.IsNotFound(err) {
		t.Errorf("TaxValue() error = %v, want not found", err)
	}
}

func TestMarginValueIncludesTaxes(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()

	got, err := f.engine.MarginValue(ctx, f.doc)
	if err != nil {
		t.Fatalf("MarginValue() error = %v", err)
	}

	// sell side 5000 + 1212.5 taxes, cost side 350*10 + 210*0
	want := types.MustMoney("2712.5")
	if !got.Equal(want) {
		t.Errorf("MarginValue() = %s, want %s", got, want)
	}
}

func TestValuationIsIdempotent(t *testing.T) {
	f := newValuationFixture(t)
	ctx := context.Background()

	first, err := f.engine.ValueWithTaxes(ctx, f.doc)
	if err != nil {
		t.Fatalf("ValueWithTaxes() error = %v", err)
	}
	second, err := f.engine.ValueWithTaxes(ctx, f.doc)
	if err != nil {
		t.Fatalf("ValueWithTaxes() error = %v", err)
	}

	if !first.Equal(second) {
		t.Errorf("repeated ValueWithTaxes() diverged: %s then %s", first, second)
	}
}
