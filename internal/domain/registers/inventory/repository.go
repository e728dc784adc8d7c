// Package inventory provides the inventory snapshot register.
package inventory

import (
	"context"
	"time"

	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

// Position is an observed stock level for one product in one store.
// Positions are snapshots, not accumulations: a new observation for the
// same store and product replaces the previous one.
type Position struct {
	ID         id.ID          `db:"id" json:"id"`
	StoreID    id.ID          `db:"store_id" json:"storeId"`
	ProductID  id.ID          `db:"product_id" json:"productId"`
	Available  types.Quantity `db:"available" json:"available"`
	ObservedAt time.Time      `db:"observed_at" json:"observedAt"`
}

// Repository defines operations for the inventory register.
type Repository interface {
	// UpsertPositions records observations, replacing any previous
	// observation for the same store and product
	UpsertPositions(ctx context.Context, positions []Position) error

	// GetPositionsByStore returns all current positions of a store,
	// zero-quantity positions included
	GetPositionsByStore(ctx context.Context, storeID id.ID) ([]Position, error)

	// GetPosition returns the current position for store+product
	GetPosition(ctx context.Context, storeID, productID id.ID) (Position, error)

	// DeletePositionsByStore clears all positions of a store
	DeletePositionsByStore(ctx context.Context, storeID id.ID) error
}
