package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/domain"
	"globalerp/internal/domain/movement"
	"globalerp/internal/infrastructure/storage/postgres"
)

const (
	movementTable      = "doc_daily_movements"
	movementEntryTable = "doc_movement_entries"
)

// MovementRepo implements movement.Repository using PostgreSQL.
type MovementRepo struct {
	*BaseDocumentRepo[*movement.DailyMovement]
}

// NewMovementRepo creates a new daily movement repository.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			movementTable,
			postgres.ExtractDBColumns[movement.DailyMovement](),
			func() *movement.DailyMovement { return &movement.DailyMovement{} },
		),
	}
}

var entryColumns = postgres.ExtractDBColumns[movement.Entry]()

// GetByStoreAndDate retrieves the movement header for one store and day.
func (r *MovementRepo) GetByStoreAndDate(ctx context.Context, storeID id.ID, date time.Time) (*movement.DailyMovement, error) {
	m := &movement.DailyMovement{}
	q := r.baseSelect().
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"business_date": date.UTC().Truncate(24 * time.Hour)})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(movementTable,
				storeID.String()+"/"+date.UTC().Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get by store and date: %w", err)
	}

	return m, nil
}

// ListByPeriod retrieves movement headers whose business date falls in
// [from, to), newest first.
func (r *MovementRepo) ListByPeriod(ctx context.Context, from, to time.Time, filter domain.ListFilter) (domain.ListResult[*movement.DailyMovement], error) {
	result := domain.ListResult[*movement.DailyMovement]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.GtOrEq{"business_date": from.UTC().Truncate(24 * time.Hour)}).
		Where(squirrel.Lt{"business_date": to.UTC().Truncate(24 * time.Hour)})

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("business_date DESC", "number DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list by period: %w", err)
	}

	return result, nil
}

// Delete removes a movement header and its entries. Owned documents are
// removed separately by the caller within the same transaction.
func (r *MovementRepo) Delete(ctx context.Context, movementID id.ID) error {
	q := r.Builder().
		Delete(movementEntryTable).
		Where(squirrel.Eq{"movement_id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete entries: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}

	return r.BaseDocumentRepo.Delete(ctx, movementID)
}

// GetEntries retrieves a movement's raw entries.
func (r *MovementRepo) GetEntries(ctx context.Context, movementID id.ID) ([]movement.Entry, error) {
	q := r.Builder().
		Select(entryColumns...).
		From(movementEntryTable).
		Where(squirrel.Eq{"movement_id": movementID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []movement.Entry
	if err := pgxscan.Select(ctx, r.Querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}

	return entries, nil
}

// SaveEntries replaces a movement's raw entries.
func (r *MovementRepo) SaveEntries(ctx context.Context, movementID id.ID, entries []movement.Entry) error {
	delQ := r.Builder().
		Delete(movementEntryTable).
		Where(squirrel.Eq{"movement_id": movementID})

	delSQL, delArgs, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.Querier(ctx)
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(entries))
		for _, entry := range entries {
			data := postgres.StructToMap(&entry)
			values := make([]any, len(entryColumns))
			for i, col := range entryColumns {
				values[i] = data[col]
			}
			rows = append(rows, values)
		}
		if _, err := inserter.CopyFromSlice(ctx, movementEntryTable, entryColumns, rows); err != nil {
			return fmt.Errorf("copy entries: %w", err)
		}
		return nil
	}

	q := r.Builder().
		Insert(movementEntryTable).
		Columns(entryColumns...)

	for _, entry := range entries {
		data := postgres.StructToMap(&entry)
		values := make([]any, len(entryColumns))
		for i, col := range entryColumns {
			values[i] = data[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	return nil
}

// Interface compliance check
var _ movement.Repository = (*MovementRepo)(nil)
