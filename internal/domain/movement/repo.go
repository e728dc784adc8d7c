package movement

import (
	"context"
	"time"

	"globalerp/internal/core/id"
	"globalerp/internal/domain"
)

// Repository defines data access for daily movements.
type Repository interface {
	// Create inserts a new movement header
	Create(ctx context.Context, m *DailyMovement) error

	// GetByID retrieves a header without entries or documents
	GetByID(ctx context.Context, movementID id.ID) (*DailyMovement, error)

	// GetByStoreAndDate retrieves the header for one store and day
	GetByStoreAndDate(ctx context.Context, storeID id.ID, date time.Time) (*DailyMovement, error)

	// Update modifies a header (with optimistic locking)
	Update(ctx context.Context, m *DailyMovement) error

	// Delete permanently removes a movement header and its entries.
	// Owned documents are removed separately by the caller within the
	// same transaction.
	Delete(ctx context.Context, movementID id.ID) error

	// List retrieves headers with filtering and pagination
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*DailyMovement], error)

	// ListByPeriod retrieves headers whose business date falls in
	// [from, to), newest first
	ListByPeriod(ctx context.Context, from, to time.Time, filter domain.ListFilter) (domain.ListResult[*DailyMovement], error)

	// GetEntries retrieves a movement's raw entries
	GetEntries(ctx context.Context, movementID id.ID) ([]Entry, error)

	// SaveEntries replaces a movement's raw entries
	SaveEntries(ctx context.Context, movementID id.ID, entries []Entry) error
}
