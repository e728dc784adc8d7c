package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"globalerp/internal/core/id"
	"globalerp/internal/domain/documents"
	"globalerp/internal/infrastructure/storage/postgres"
)

const (
	documentTable     = "doc_documents"
	documentLineTable = "doc_document_lines"
)

// DocumentRepo implements documents.Repository using PostgreSQL.
type DocumentRepo struct {
	*BaseDocumentRepo[*documents.Document]
}

// NewDocumentRepo creates a new document repository.
func NewDocumentRepo(txm *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			documentTable,
			postgres.ExtractDBColumns[documents.Document](),
			func() *documents.Document { return &documents.Document{} },
		),
	}
}

var lineColumns = postgres.ExtractDBColumns[documents.DocumentLine]()

// Delete removes a document and its lines.
func (r *DocumentRepo) Delete(ctx context.Context, docID id.ID) error {
	if err := r.deleteLines(ctx, squirrel.Eq{"document_id": docID}); err != nil {
		return err
	}
	return r.BaseDocumentRepo.Delete(ctx, docID)
}

// GetLines retrieves document lines ordered by line number.
func (r *DocumentRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.DocumentLine, error) {
	q := r.Builder().
		Select(lineColumns...).
		From(documentLineTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []documents.DocumentLine
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// AppendLines inserts new lines without touching existing ones.
func (r *DocumentRepo) AppendLines(ctx context.Context, docID id.ID, lines []documents.DocumentLine) error {
	if len(lines) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(lines))
		for _, line := range lines {
			data := postgres.StructToMap(&line)
			values := make([]any, len(lineColumns))
			for i, col := range lineColumns {
				values[i] = data[col]
			}
			rows = append(rows, values)
		}
		if _, err := inserter.CopyFromSlice(ctx, documentLineTable, lineColumns, rows); err != nil {
			return fmt.Errorf("copy lines: %w", err)
		}
		return nil
	}

	q := r.Builder().
		Insert(documentLineTable).
		Columns(lineColumns...)

	for _, line := range lines {
		data := postgres.StructToMap(&line)
		values := make([]any, len(lineColumns))
		for i, col := range lineColumns {
			values[i] = data[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append lines: %w", err)
	}

	return nil
}

// FindByMovement retrieves all documents attached to a movement, lines
// included.
func (r *DocumentRepo) FindByMovement(ctx context.Context, movementID id.ID) ([]*documents.Document, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"movement_id": movementID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []*documents.Document
	if err := pgxscan.Select(ctx, r.Querier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("find by movement: %w", err)
	}

	for _, doc := range docs {
		lines, err := r.GetLines(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		doc.Lines = lines
	}

	return docs, nil
}

// DeleteByMovement removes all documents of a movement with their lines.
func (r *DocumentRepo) DeleteByMovement(ctx context.Context, movementID id.ID) error {
	linesPred := squirrel.Expr(
		"document_id IN (SELECT id FROM "+documentTable+" WHERE movement_id = ?)",
		movementID,
	)
	if err := r.deleteLines(ctx, linesPred); err != nil {
		return err
	}

	q := r.Builder().
		Delete(documentTable).
		Where(squirrel.Eq{"movement_id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete by movement: %w", err)
	}

	return nil
}

func (r *DocumentRepo) deleteLines(ctx context.Context, pred any) error {
	q := r.Builder().
		Delete(documentLineTable).
		Where(pred)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	return nil
}

// Interface compliance check
var _ documents.Repository = (*DocumentRepo)(nil)
