package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"globalerp/internal/core/id"
	"globalerp/internal/domain/catalogs/partner"
	"globalerp/internal/infrastructure/storage/postgres"
)

const (
	partnerTable    = "cat_partners"
	marginLineTable = "cat_partner_margin_lines"
	shortfallTable  = "cat_partner_shortfalls"
	fixedAssetTable = "cat_partner_fixed_assets"
)

// PartnerRepo implements partner.Repository. Variant child collections
// live in their own tables and are written with delete-then-insert.
type PartnerRepo struct {
	*BaseCatalogRepo[*partner.Partner]
	txm *postgres.TxManager
}

// NewPartnerRepo creates a new partner repository.
func NewPartnerRepo(txm *postgres.TxManager) *PartnerRepo {
	return &PartnerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			partnerTable,
			postgres.ExtractDBColumns[partner.Partner](),
			func() *partner.Partner { return &partner.Partner{} },
		),
		txm: txm,
	}
}

// FindByKind retrieves all partners of a kind.
func (r *PartnerRepo) FindByKind(ctx context.Context, kind partner.Kind) ([]*partner.Partner, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"kind": string(kind)}).
		OrderBy("code ASC")

	return r.FindMany(ctx, q)
}

// GetMarginLines loads the negotiated margins of a margin client.
func (r *PartnerRepo) GetMarginLines(ctx context.Context, partnerID id.ID) ([]partner.MarginLine, error) {
	return selectChildren[partner.MarginLine](ctx, r.txm, marginLineTable, partnerID)
}

// SaveMarginLines replaces the margin lines of a margin client.
func (r *PartnerRepo) SaveMarginLines(ctx context.Context, partnerID id.ID, lines []partner.MarginLine) error {
	return replaceChildren(ctx, r.txm, marginLineTable, partnerID, lines)
}

// GetShortfalls loads the recorded shortfalls of a seller.
func (r *PartnerRepo) GetShortfalls(ctx context.Context, partnerID id.ID) ([]partner.FinancialShortfall, error) {
	return selectChildren[partner.FinancialShortfall](ctx, r.txm, shortfallTable, partnerID)
}

// SaveShortfalls replaces the shortfalls of a seller.
func (r *PartnerRepo) SaveShortfalls(ctx context.Context, partnerID id.ID, shortfalls []partner.FinancialShortfall) error {
	return replaceChildren(ctx, r.txm, shortfallTable, partnerID, shortfalls)
}

// GetFixedAssets loads the assets assigned to a seller.
func (r *PartnerRepo) GetFixedAssets(ctx context.Context, partnerID id.ID) ([]partner.FixedAsset, error) {
	return selectChildren[partner.FixedAsset](ctx, r.txm, fixedAssetTable, partnerID)
}

// SaveFixedAssets replaces the assets assigned to a seller.
func (r *PartnerRepo) SaveFixedAssets(ctx context.Context, partnerID id.ID, assets []partner.FixedAsset) error {
	return replaceChildren(ctx, r.txm, fixedAssetTable, partnerID, assets)
}

// selectChildren reads a partner's child rows from one table.
func selectChildren[C any](ctx context.Context, txm *postgres.TxManager, table string, partnerID id.ID) ([]C, error) {
	cols := postgres.ExtractDBColumns[C]()

	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(cols...).
		From(table).
		Where(squirrel.Eq{"partner_id": partnerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", table, err)
	}

	var items []C
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return items, nil
}

// replaceChildren rewrites a partner's child rows in one table.
func replaceChildren[C any](ctx context.Context, txm *postgres.TxManager, table string, partnerID id.ID, items []C) error {
	querier := txm.GetQuerier(ctx)
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	delSQL, delArgs, err := builder.
		Delete(table).
		Where(squirrel.Eq{"partner_id": partnerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", table, err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	for _, item := range items {
		data := postgres.StructToMap(item)
		insSQL, insArgs, err := builder.
			Insert(table).
			SetMap(data).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert %s: %w", table, err)
		}
		if _, err := querier.Exec(ctx, insSQL, insArgs...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}

	return nil
}
