// Package partner provides the Partner catalog and its variants.
package partner

import (
	"context"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

// Kind discriminates partner variants. Each variant declares its own
// child collections; hydration loads exactly those and nothing else.
type Kind string

const (
	// KindCustomer is a regular billed customer
	KindCustomer Kind = "CUSTOMER"

	// KindMarginClient is a customer with negotiated per-product margins
	KindMarginClient Kind = "MARGIN_CLIENT"

	// KindSeller is a delivery-round seller carrying company assets
	KindSeller Kind = "SELLER"

	// KindCashClient is the synthetic counterparty for anonymous cash sales
	KindCashClient Kind = "CASH_CLIENT"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCustomer, KindMarginClient, KindSeller, KindCashClient:
		return true
	}
	return false
}

// Partner is a commercial counterparty. The Kind field selects which
// child collections are meaningful; the others stay nil.
type Partner struct {
	entity.Catalog

	Kind Kind `db:"kind" json:"kind"`

	// LocalisationID attaches the partner to a point of the
	// distribution hierarchy (nullable)
	LocalisationID *id.ID `db:"localisation_id" json:"localisationId,omitempty"`

	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`

	// MarginLines is declared by KindMarginClient only
	MarginLines []MarginLine `db:"-" json:"marginLines,omitempty"`

	// Shortfalls and FixedAssets are declared by KindSeller only
	Shortfalls  []FinancialShortfall `db:"-" json:"shortfalls,omitempty"`
	FixedAssets []FixedAsset         `db:"-" json:"fixedAssets,omitempty"`
}

// MarginLine is a negotiated margin for one product of a margin client.
type MarginLine struct {
	ID        id.ID       `db:"id" json:"id"`
	PartnerID id.ID       `db:"partner_id" json:"partnerId"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Margin    types.Money `db:"margin" json:"margin"`
}

// FinancialShortfall records money a seller failed to remit.
type FinancialShortfall struct {
	ID         id.ID       `db:"id" json:"id"`
	PartnerID  id.ID       `db:"partner_id" json:"partnerId"`
	Amount     types.Money `db:"amount" json:"amount"`
	RecordedAt time.Time   `db:"recorded_at" json:"recordedAt"`
	Note       string      `db:"note" json:"note,omitempty"`
}

// FixedAsset is company property assigned to a seller (crates, coolers).
type FixedAsset struct {
	ID         id.ID       `db:"id" json:"id"`
	PartnerID  id.ID       `db:"partner_id" json:"partnerId"`
	Name       string      `db:"name" json:"name"`
	Value      types.Money `db:"value" json:"value"`
	AssignedAt time.Time   `db:"assigned_at" json:"assignedAt"`
}

// NewPartner creates a new partner of the given kind.
func NewPartner(code, name string, kind Kind) *Partner {
	return &Partner{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable.
func (p *Partner) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !p.Kind.Valid() {
		return apperror.NewValidation("unknown partner kind").
			WithDetail("field", "kind").
			WithDetail("kind", string(p.Kind))
	}

	// Collections outside the variant's declaration are a modeling error,
	// not data to be silently dropped.
	if p.Kind != KindMarginClient && len(p.MarginLines) > 0 {
		return apperror.NewValidation("margin lines are only valid on margin clients").
			WithDetail("kind", string(p.Kind))
	}
	if p.Kind != KindSeller && (len(p.Shortfalls) > 0 || len(p.FixedAssets) > 0) {
		return apperror.NewValidation("shortfalls and fixed assets are only valid on sellers").
			WithDetail("kind", string(p.Kind))
	}

	return nil
}
