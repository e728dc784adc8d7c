package localisation

import (
	"context"

	"globalerp/internal/core/id"
	"globalerp/internal/domain"
)

// Repository defines data access for the Localisation catalog.
type Repository interface {
	domain.CatalogRepository[*Localisation]

	// FindChildren retrieves the direct children of a node.
	FindChildren(ctx context.Context, parentID id.ID) ([]*Localisation, error)

	// FindByKind retrieves all nodes at one hierarchy level.
	FindByKind(ctx context.Context, kind Kind) ([]*Localisation, error)

	// HasChildren reports whether a node has direct children.
	HasChildren(ctx context.Context, parentID id.ID) (bool, error)
}
