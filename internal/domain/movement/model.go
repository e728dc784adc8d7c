// Package movement provides the daily movement ledger (BMQ) and its
// reconciliation service.
package movement

import (
	"context"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
	"globalerp/internal/domain/documents"
)

// Status is derived from whether lines have been built.
type Status string

const (
	// StatusDraft means entries have been recorded but not yet
	// materialized into document lines
	StatusDraft Status = "DRAFT"

	// StatusBuilt means at least one build pass has materialized lines.
	// Building is additive per entry set, never a reset; a built
	// movement does not return to draft.
	StatusBuilt Status = "BUILT"
)

// DailyMovement is a per-store, per-day ledger aggregating documents.
// Identity is stable across merges; merge changes content only.
type DailyMovement struct {
	entity.BaseDocument

	// Number is the human-readable identifier, assigned at creation
	Number string `db:"number" json:"number"`

	StoreID id.ID `db:"store_id" json:"storeId"`

	// BusinessDate is the day the ledger covers, one movement per
	// store and day
	BusinessDate time.Time `db:"business_date" json:"businessDate"`

	// LinesBuilt records that a build pass has run
	LinesBuilt bool `db:"lines_built" json:"linesBuilt"`

	// Entries are raw inputs accumulated through the day, waiting to
	// be materialized into document lines
	Entries []Entry `db:"-" json:"entries,omitempty"`

	// Documents recorded against this movement. All must belong to
	// the movement's store.
	Documents []*documents.Document `db:"-" json:"documents,omitempty"`
}

// Entry is one raw movement input: a priced product quantity destined
// for one of the movement's documents.
type Entry struct {
	ID         id.ID `db:"id" json:"id"`
	MovementID id.ID `db:"movement_id" json:"movementId"`

	// DocumentID names the document the entry will materialize into
	DocumentID id.ID `db:"document_id" json:"documentId"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// Built marks entries already materialized; building skips them
	// so repeated build passes stay idempotent
	Built bool `db:"built" json:"built"`
}

// NewDailyMovement creates a ledger for one store and day.
func NewDailyMovement(storeID id.ID, businessDate time.Time) *DailyMovement {
	return &DailyMovement{
		BaseDocument: entity.NewBaseDocument(),
		StoreID:      storeID,
		BusinessDate: businessDate.Truncate(24 * time.Hour),
	}
}

// Status derives the movement state.
func (m *DailyMovement) Status() Status {
	if m.LinesBuilt {
		return StatusBuilt
	}
	return StatusDraft
}

// AddEntry records a raw input for later materialization.
func (m *DailyMovement) AddEntry(documentID, productID id.ID, unitPrice types.Money, quantity types.Quantity) {
	m.Entries = append(m.Entries, Entry{
		ID:         id.New(),
		MovementID: m.ID,
		DocumentID: documentID,
		ProductID:  productID,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
	})
}

// AttachDocument appends a document, transferring ownership to the
// movement.
func (m *DailyMovement) AttachDocument(doc *documents.Document) {
	movementID := m.ID
	doc.MovementID = &movementID
	m.Documents = append(m.Documents, doc)
}

// Validate implements entity.Validatable.
func (m *DailyMovement) Validate(ctx context.Context) error {
	if id.IsNil(m.StoreID) {
		return apperror.NewValidation("movement store is required").
			WithDetail("field", "storeId")
	}

	if m.BusinessDate.IsZero() {
		return apperror.NewValidation("business date is required").
			WithDetail("field", "businessDate")
	}

	for _, doc := range m.Documents {
		if doc.StoreID != m.StoreID {
			return apperror.NewValidation("all documents in a movement must belong to its store").
				WithDetail("documentId", doc.ID.String()).
				WithDetail("documentStoreId", doc.StoreID.String()).
				WithDetail("movementStoreId", m.StoreID.String())
		}
	}

	for i, e := range m.Entries {
		if id.IsNil(e.ProductID) {
			return apperror.NewValidation("entry product is required").
				WithDetail("index", i)
		}
		if e.Quantity.IsNegative() {
			return apperror.NewValidation("entry quantity cannot be negative").
				WithDetail("index", i)
		}
	}

	return nil
}
