// Package inventory provides the inventory snapshot register service.
package inventory

import (
	"context"
	"fmt"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
)

// Provider is the read side consumed by cash-sale synthesis.
type Provider interface {
	// PositionsForStore returns the current snapshot for a store.
	PositionsForStore(ctx context.Context, storeID id.ID) ([]Position, error)
}

// Service provides business operations for the inventory register.
// Transactions are managed by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new inventory register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Record stores observations for a store. All positions must belong to
// the same store; quantities may be zero but never negative.
func (s *Service) Record(ctx context.Context, storeID id.ID, positions []Position) error {
	if len(positions) == 0 {
		return nil
	}

	for i, p := range positions {
		if p.StoreID != storeID {
			return apperror.NewValidation("position belongs to a different store").
				WithDetail("index", i).
				WithDetail("storeId", p.StoreID.String())
		}
		if p.Available.IsNegative() {
			return apperror.NewValidation("available quantity cannot be negative").
				WithDetail("index", i).
				WithDetail("productId", p.ProductID.String())
		}
		if id.IsNil(p.ProductID) {
			return apperror.NewValidation("position product is required").
				WithDetail("index", i)
		}
	}

	if err := s.repo.UpsertPositions(ctx, positions); err != nil {
		return fmt.Errorf("record positions: %w", err)
	}
	return nil
}

// PositionsForStore implements Provider.
func (s *Service) PositionsForStore(ctx context.Context, storeID id.ID) ([]Position, error) {
	return s.repo.GetPositionsByStore(ctx, storeID)
}

// Position returns the current snapshot entry for store+product.
func (s *Service) Position(ctx context.Context, storeID, productID id.ID) (Position, error) {
	return s.repo.GetPosition(ctx, storeID, productID)
}

// Clear removes every position of a store.
func (s *Service) Clear(ctx context.Context, storeID id.ID) error {
	return s.repo.DeletePositionsByStore(ctx, storeID)
}
