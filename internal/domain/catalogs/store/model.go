// Package store provides the Store catalog.
package store

import (
	"context"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
)

// Store is a physical sales point holding stock. Every daily movement
// and every inventory snapshot is tied to exactly one store.
type Store struct {
	entity.Catalog

	// LocalisationID places the store in the territory hierarchy,
	// normally at zone level
	LocalisationID id.ID `db:"localisation_id" json:"localisationId"`

	Address string `db:"address" json:"address,omitempty"`
}

// NewStore creates a new store.
func NewStore(code, name string, localisationID id.ID) *Store {
	return &Store{
		Catalog:        entity.NewCatalog(code, name),
		LocalisationID: localisationID,
	}
}

// Validate implements entity.Validatable.
func (s *Store) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.LocalisationID) {
		return apperror.NewValidation("store localisation is required").
			WithDetail("field", "localisationId")
	}

	return nil
}
