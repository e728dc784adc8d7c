package tax

import (
	"context"

	"globalerp/internal/core/id"
	"globalerp/internal/domain"
)

// Repository defines data access for Tax catalog.
type Repository interface {
	domain.CatalogRepository[*Tax]

	// FindApplicable retrieves taxes applicable to a product category,
	// including taxes with no category restriction.
	FindApplicable(ctx context.Context, categoryID id.ID) ([]*Tax, error)
}
