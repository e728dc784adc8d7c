package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"globalerp/internal/core/id"
	"globalerp/internal/domain/catalogs/tax"
	"globalerp/internal/infrastructure/storage/postgres"
)

const taxTable = "cat_taxes"

// TaxRepo implements tax.Repository.
type TaxRepo struct {
	*BaseCatalogRepo[*tax.Tax]
}

// NewTaxRepo creates a new tax repository.
func NewTaxRepo(txm *postgres.TxManager) *TaxRepo {
	return &TaxRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			taxTable,
			postgres.ExtractDBColumns[tax.Tax](),
			func() *tax.Tax { return &tax.Tax{} },
		),
	}
}

// FindApplicable retrieves taxes applicable to a product category.
// An empty category_ids array means the tax applies everywhere.
func (r *TaxRepo) FindApplicable(ctx context.Context, categoryID id.ID) ([]*tax.Tax, error) {
	q := r.baseSelect().
		Where(squirrel.Or{
			squirrel.Expr("cardinality(category_ids) = 0"),
			squirrel.Expr("? = ANY(category_ids)", categoryID),
		}).
		OrderBy("code ASC")

	return r.FindMany(ctx, q)
}
