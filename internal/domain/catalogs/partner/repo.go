package partner

import (
	"context"

	"globalerp/internal/core/id"
	"globalerp/internal/domain"
)

// Repository defines data access for Partner catalog.
// Child collections live in their own tables and are loaded separately;
// the service decides which ones a variant needs.
type Repository interface {
	domain.CatalogRepository[*Partner]

	// FindByKind retrieves all partners of a kind.
	FindByKind(ctx context.Context, kind Kind) ([]*Partner, error)

	// GetMarginLines loads the negotiated margins of a margin client.
	GetMarginLines(ctx context.Context, partnerID id.ID) ([]MarginLine, error)

	// SaveMarginLines replaces the margin lines of a margin client.
	SaveMarginLines(ctx context.Context, partnerID id.ID, lines []MarginLine) error

	// GetShortfalls loads the recorded shortfalls of a seller.
	GetShortfalls(ctx context.Context, partnerID id.ID) ([]FinancialShortfall, error)

	// SaveShortfalls replaces the shortfalls of a seller.
	SaveShortfalls(ctx context.Context, partnerID id.ID, shortfalls []FinancialShortfall) error

	// GetFixedAssets loads the assets assigned to a seller.
	GetFixedAssets(ctx context.Context, partnerID id.ID) ([]FixedAsset, error)

	// SaveFixedAssets replaces the assets assigned to a seller.
	SaveFixedAssets(ctx context.Context, partnerID id.ID, assets []FixedAsset) error
}
