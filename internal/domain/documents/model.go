// Package documents provides commercial documents and their valuation.
package documents

import (
	"context"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

// OperationDirection fixes the sign of a document's quantity effects.
type OperationDirection string

const (
	// Inbound documents bring stock in (purchases, returns)
	Inbound OperationDirection = "INBOUND"

	// Outbound documents move stock out (sales, issues)
	Outbound OperationDirection = "OUTBOUND"
)

func (d OperationDirection) Valid() bool {
	return d == Inbound || d == Outbound
}

// Sign returns +1 for outbound and -1 for inbound. Outbound lines
// contribute positively to sales value.
func (d OperationDirection) Sign() int {
	if d == Inbound {
		return -1
	}
	return 1
}

// Document is the header of a commercial transaction.
// Direction is immutable after creation; lines inherit it.
type Document struct {
	entity.BaseDocument

	// Number is the human-readable identifier, assigned at creation
	Number string `db:"number" json:"number"`

	Direction OperationDirection `db:"direction" json:"direction"`

	// StoreID is the sales point the document belongs to
	StoreID id.ID `db:"store_id" json:"storeId"`

	// PartnerID is the owning counterparty (nullable)
	PartnerID *id.ID `db:"partner_id" json:"partnerId,omitempty"`

	// MovementID is set once the document is attached to a daily
	// movement; ownership is exclusive, never shared
	MovementID *id.ID `db:"movement_id" json:"movementId,omitempty"`

	Comment string `db:"comment" json:"comment,omitempty"`

	// Lines are loaded separately, ordered by line number
	Lines []DocumentLine `db:"-" json:"lines,omitempty"`
}

// DocumentLine is one priced quantity of one product.
// Unit price is snapshotted at line creation and never re-read from the
// catalog. Price and quantity are immutable once persisted; corrections
// are new compensating lines.
type DocumentLine struct {
	ID         id.ID `db:"id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"documentId"`
	LineNumber int   `db:"line_number" json:"lineNumber"`

	ProductID id.ID `db:"product_id" json:"productId"`

	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// Direction is copied from the header
	Direction OperationDirection `db:"direction" json:"direction"`
}

// Amount returns unitPrice * quantity, unsigned.
func (l DocumentLine) Amount() types.Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// NewDocument creates a document header.
func NewDocument(direction OperationDirection, storeID id.ID) *Document {
	return &Document{
		BaseDocument: entity.NewBaseDocument(),
		Direction:    direction,
		StoreID:      storeID,
	}
}

// AddLine appends a line inheriting the header's direction.
func (d *Document) AddLine(productID id.ID, unitPrice types.Money, quantity types.Quantity) {
	d.Lines = append(d.Lines, DocumentLine{
		ID:         id.New(),
		DocumentID: d.ID,
		LineNumber: len(d.Lines) + 1,
		ProductID:  productID,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
		Direction:  d.Direction,
	})
}

// Validate implements entity.Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if !d.Direction.Valid() {
		return apperror.NewValidation("unknown operation direction").
			WithDetail("field", "direction").
			WithDetail("direction", string(d.Direction))
	}

	if id.IsNil(d.StoreID) {
		return apperror.NewValidation("document store is required").
			WithDetail("field", "storeId")
	}

	for i, l := range d.Lines {
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("line product is required").
				WithDetail("lineNumber", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("line unit price cannot be negative").
				WithDetail("lineNumber", i+1)
		}
		if l.Quantity.IsNegative() {
			return apperror.NewValidation("line quantity cannot be negative").
				WithDetail("lineNumber", i+1)
		}
		if l.Direction != d.Direction {
			return apperror.NewValidation("line direction must match the header").
				WithDetail("lineNumber", i+1).
				WithDetail("direction", string(l.Direction))
		}
	}

	return nil
}
