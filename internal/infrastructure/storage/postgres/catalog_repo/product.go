package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"globalerp/internal/core/id"
	"globalerp/internal/domain/catalogs/product"
	"globalerp/internal/infrastructure/storage/postgres"
)

const (
	productTable  = "cat_products"
	categoryTable = "cat_product_categories"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// FindByCategory retrieves all products in a category.
func (r *ProductRepo) FindByCategory(ctx context.Context, categoryID id.ID) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"category_id": categoryID}).
		OrderBy("name ASC")

	return r.FindMany(ctx, q)
}

// ProductCategoryRepo implements product.CategoryRepository.
type ProductCategoryRepo struct {
	*BaseCatalogRepo[*product.ProductCategory]
}

// NewProductCategoryRepo creates a new product category repository.
func NewProductCategoryRepo(txm *postgres.TxManager) *ProductCategoryRepo {
	return &ProductCategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			categoryTable,
			postgres.ExtractDBColumns[product.ProductCategory](),
			func() *product.ProductCategory { return &product.ProductCategory{} },
		),
	}
}
