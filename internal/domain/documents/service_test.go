package documents

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
	"globalerp/internal/domain"
	"globalerp/pkg/numerator"
)

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	headers map[id.ID]Document
	lines   map[id.ID][]DocumentLine
}

func newMemRepo() *memRepo {
	return &memRepo{
		headers: make(map[id.ID]Document),
		lines:   make(map[id.ID][]DocumentLine),
	}
}

func (r *memRepo) Create(_ context.Context, doc *Document) error {
	copied := *doc
	copied.Lines = nil
	r.headers[doc.ID] = copied
	return nil
}

func (r *memRepo) GetByID(_ context.Context, docID id.ID) (*Document, error) {
	h, ok := r.headers[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	copied := h
	return &copied, nil
}

func (r *memRepo) GetByNumber(_ context.Context, number string) (*Document, error) {
	for _, h := range r.headers {
		if h.Number == number {
			copied := h
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("document", number)
}

func (r *memRepo) Update(_ context.Context, doc *Document) error {
	if _, ok := r.headers[doc.ID]; !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	copied := *doc
	copied.Lines = nil
	r.headers[doc.ID] = copied
	return nil
}

func (r *memRepo) Delete(_ context.Context, docID id.ID) error {
	delete(r.headers, docID)
	delete(r.lines, docID)
	return nil
}

func (r *memRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Document], error) {
	return domain.ListResult[*Document]{}, nil
}

func (r *memRepo) GetLines(_ context.Context, docID id.ID) ([]DocumentLine, error) {
	return append([]DocumentLine(nil), r.lines[docID]...), nil
}

func (r *memRepo) AppendLines(_ context.Context, docID id.ID, lines []DocumentLine) error {
	r.lines[docID] = append(r.lines[docID], lines...)
	return nil
}

func (r *memRepo) FindByMovement(_ context.Context, movementID id.ID) ([]*Document, error) {
	var out []*Document
	for _, h := range r.headers {
		if h.MovementID != nil && *h.MovementID == movementID {
			copied := h
			copied.Lines = append([]DocumentLine(nil), r.lines[h.ID]...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteByMovement(_ context.Context, movementID id.ID) error {
	for docID, h := range r.headers {
		if h.MovementID != nil && *h.MovementID == movementID {
			delete(r.headers, docID)
			delete(r.lines, docID)
		}
	}
	return nil
}

type countingRow struct{ val int64 }

func (r *countingRow) Scan(dest ...any) error {
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

type countingQuerier struct {
	mu  sync.Mutex
	val int64
}

func (q *countingQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.val++
	return &countingRow{val: q.val}
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, stubTxManager{}, numerator.New(&countingQuerier{}), nil)
	return svc, repo
}

func addTestDocument(t *testing.T, svc *Service) *Document {
	t.Helper()

	doc := NewDocument(Outbound, id.New())
	doc.AddLine(id.New(), types.MustMoney("500"), types.MustQuantity("10"))

	stored, err := svc.Add(context.Background(), doc)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return stored
}

func TestAddAssignsNumber(t *testing.T) {
	svc, _ := newTestService()

	doc := addTestDocument(t, svc)
	if doc.Number == "" {
		t.Error("Add() left the document without a number")
	}
}

func TestUpdateDirectionIsImmutable(t *testing.T) {
	svc, _ := newTestService()
	doc := addTestDocument(t, svc)

	changed := *doc
	changed.Direction = Inbound
	for i := range changed.Lines {
		changed.Lines[i].Direction = Inbound
	}

	_, err := svc.Update(context.Background(), &changed)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeDirectionImmutable {
		t.Errorf("Update() error = %v, want direction immutability violation", err)
	}
}

func TestUpdateRejectsLineEdit(t *testing.T) {
	svc, _ := newTestService()
	doc := addTestDocument(t, svc)

	changed := *doc
	changed.Lines = append([]DocumentLine(nil), doc.Lines...)
	changed.Lines[0].Quantity = types.MustQuantity("99")

	_, err := svc.Update(context.Background(), &changed)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeLineImmutable {
		t.Errorf("Update() error = %v, want line immutability violation", err)
	}
}

func TestUpdateRejectsLineRemoval(t *testing.T) {
	svc, _ := newTestService()
	doc := addTestDocument(t, svc)

	changed := *doc
	changed.Lines = []DocumentLine{}

	_, err := svc.Update(context.Background(), &changed)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeLineImmutable {
		t.Errorf("Update() error = %v, want line immutability violation", err)
	}
}

func TestUpdateAppendsCompensatingLine(t *testing.T) {
	svc, repo := newTestService()
	doc := addTestDocument(t, svc)

	changed := *doc
	changed.Lines = append([]DocumentLine(nil), doc.Lines...)
	changed.AddLine(doc.Lines[0].ProductID, doc.Lines[0].UnitPrice, types.MustQuantity("0"))

	updated, err := svc.Update(context.Background(), &changed)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Lines) != 2 {
		t.Errorf("updated document has %d lines, want 2", len(updated.Lines))
	}

	stored, _ := repo.GetLines(context.Background(), doc.ID)
	if len(stored) != 2 {
		t.Errorf("persisted %d lines, want 2", len(stored))
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	svc, _ := newTestService()

	ghost := NewDocument(Outbound, id.New())
	_, err := svc.Update(context.Background(), ghost)
	if !apperror.IsNotFound(err) {
		t.Errorf("Update() error = %v, want not found", err)
	}
}

func TestRetrieveMissIsNil(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Retrieve(context.Background(), id.New())
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if doc != nil {
		t.Errorf("Retrieve() = %v, want nil for a normal miss", doc)
	}
}

func TestRemoveSemantics(t *testing.T) {
	svc, repo := newTestService()
	doc := addTestDocument(t, svc)

	removed, err := svc.Remove(context.Background(), doc.ID)
	if err != nil || !removed {
		t.Fatalf("Remove() = %v, %v, want true, nil", removed, err)
	}
	if len(repo.headers) != 0 {
		t.Error("document survived removal")
	}

	removed, err = svc.Remove(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Remove() second call error = %v", err)
	}
	if removed {
		t.Error("Remove() = true for a missing document")
	}
}
