package product

import (
	"context"

	"globalerp/internal/core/id"
	"globalerp/internal/domain"
)

// Repository defines data access for Product catalog.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByCategory retrieves all products in a category.
	FindByCategory(ctx context.Context, categoryID id.ID) ([]*Product, error)
}

// CategoryRepository defines data access for ProductCategory catalog.
type CategoryRepository interface {
	domain.CatalogRepository[*ProductCategory]
}
