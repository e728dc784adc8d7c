package documents

import (
	"context"

	"globalerp/internal/core/id"
	"globalerp/internal/domain"
)

// Repository defines data access for documents and their lines.
type Repository interface {
	// Create inserts a new document header
	Create(ctx context.Context, doc *Document) error

	// GetByID retrieves a header without lines
	GetByID(ctx context.Context, docID id.ID) (*Document, error)

	// GetByNumber retrieves a header by its number
	GetByNumber(ctx context.Context, number string) (*Document, error)

	// Update modifies a header (with optimistic locking)
	Update(ctx context.Context, doc *Document) error

	// Delete permanently removes a document and its lines
	Delete(ctx context.Context, docID id.ID) error

	// List retrieves headers with filtering and pagination
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Document], error)

	// GetLines retrieves document lines ordered by line number
	GetLines(ctx context.Context, docID id.ID) ([]DocumentLine, error)

	// AppendLines inserts new lines without touching existing ones.
	// Persisted lines are immutable; there is deliberately no update
	// or per-line delete.
	AppendLines(ctx context.Context, docID id.ID, lines []DocumentLine) error

	// FindByMovement retrieves all documents attached to a movement,
	// lines included
	FindByMovement(ctx context.Context, movementID id.ID) ([]*Document, error)

	// DeleteByMovement removes all documents of a movement (cascade)
	DeleteByMovement(ctx context.Context, movementID id.ID) error
}
