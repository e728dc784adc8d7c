package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"globalerp/internal/core/id"
	"globalerp/internal/domain/catalogs/localisation"
	"globalerp/internal/infrastructure/storage/postgres"
)

const localisationTable = "cat_localisations"

// LocalisationRepo implements localisation.Repository.
type LocalisationRepo struct {
	*BaseCatalogRepo[*localisation.Localisation]
}

// NewLocalisationRepo creates a new localisation repository.
func NewLocalisationRepo(txm *postgres.TxManager) *LocalisationRepo {
	return &LocalisationRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			localisationTable,
			postgres.ExtractDBColumns[localisation.Localisation](),
			func() *localisation.Localisation { return &localisation.Localisation{} },
		),
	}
}

// FindChildren retrieves the direct children of a node.
func (r *LocalisationRepo) FindChildren(ctx context.Context, parentID id.ID) ([]*localisation.Localisation, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"parent_id": parentID}).
		OrderBy("name ASC")

	return r.FindMany(ctx, q)
}

// FindByKind retrieves all nodes at one hierarchy level.
func (r *LocalisationRepo) FindByKind(ctx context.Context, kind localisation.Kind) ([]*localisation.Localisation, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"kind": string(kind)}).
		OrderBy("name ASC")

	return r.FindMany(ctx, q)
}

// HasChildren reports whether a node has direct children.
func (r *LocalisationRepo) HasChildren(ctx context.Context, parentID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(localisationTable).
		Where(squirrel.Eq{"parent_id": parentID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has children: %w", err)
	}

	return true, nil
}
