// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/domain/registers/inventory"
	"globalerp/internal/infrastructure/storage/postgres"
)

const inventoryPositionsTable = "reg_inventory_positions"

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory register repository.
func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// UpsertPositions records observations. A new observation for the same
// store and product replaces the previous one.
func (r *InventoryRepo) UpsertPositions(ctx context.Context, positions []inventory.Position) error {
	if len(positions) == 0 {
		return nil
	}

	q := r.builder.Insert(inventoryPositionsTable).
		Columns("id", "store_id", "product_id", "available", "observed_at")

	for _, p := range positions {
		q = q.Values(p.ID, p.StoreID, p.ProductID, p.Available, p.ObservedAt)
	}

	q = q.Suffix(`ON CONFLICT (store_id, product_id) DO UPDATE
		SET available = EXCLUDED.available,
		    observed_at = EXCLUDED.observed_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert positions: %w", err)
	}

	return nil
}

// GetPositionsByStore returns all current positions of a store,
// zero-quantity positions included.
func (r *InventoryRepo) GetPositionsByStore(ctx context.Context, storeID id.ID) ([]inventory.Position, error) {
	q := r.builder.
		Select("id", "store_id", "product_id", "available", "observed_at").
		From(inventoryPositionsTable).
		Where(squirrel.Eq{"store_id": storeID}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var positions []inventory.Position
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &positions, sql, args...); err != nil {
		return nil, fmt.Errorf("select positions: %w", err)
	}

	return positions, nil
}

// GetPosition returns the current position for store+product.
func (r *InventoryRepo) GetPosition(ctx context.Context, storeID, productID id.ID) (inventory.Position, error) {
	var position inventory.Position

	q := r.builder.
		Select("id", "store_id", "product_id", "available", "observed_at").
		From(inventoryPositionsTable).
		Where(squirrel.Eq{
			"store_id":   storeID,
			"product_id": productID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return position, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &position, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return position, apperror.NewNotFound(inventoryPositionsTable,
				storeID.String()+"/"+productID.String())
		}
		return position, fmt.Errorf("get position: %w", err)
	}

	return position, nil
}

// DeletePositionsByStore clears all positions of a store.
func (r *InventoryRepo) DeletePositionsByStore(ctx context.Context, storeID id.ID) error {
	q := r.builder.Delete(inventoryPositionsTable).
		Where(squirrel.Eq{"store_id": storeID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete positions: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ inventory.Repository = (*InventoryRepo)(nil)
