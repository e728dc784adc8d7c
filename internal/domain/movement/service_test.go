package movement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
	"globalerp/internal/domain"
	"globalerp/internal/domain/catalogs/partner"
	"globalerp/internal/domain/documents"
	"globalerp/internal/domain/registers/inventory"
	"globalerp/pkg/numerator"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memMovementRepo struct {
	headers map[id.ID]DailyMovement
	entries map[id.ID][]Entry
}

func newMemMovementRepo() *memMovementRepo {
	return &memMovementRepo{
		headers: make(map[id.ID]DailyMovement),
		entries: make(map[id.ID][]Entry),
	}
}

func (r *memMovementRepo) Create(_ context.Context, m *DailyMovement) error {
	r.headers[m.ID] = *m
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, movementID id.ID) (*DailyMovement, error) {
	h, ok := r.headers[movementID]
	if !ok {
		return nil, apperror.NewNotFound("daily movement", movementID.String())
	}
	copied := h
	copied.Entries = nil
	copied.Documents = nil
	return &copied, nil
}

func (r *memMovementRepo) GetByStoreAndDate(_ context.Context, storeID id.ID, date time.Time) (*DailyMovement, error) {
	for _, h := range r.headers {
		if h.StoreID == storeID && h.BusinessDate.Equal(date) {
			copied := h
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("daily movement", storeID.String())
}

func (r *memMovementRepo) Update(_ context.Context, m *DailyMovement) error {
	if _, ok := r.headers[m.ID]; !ok {
		return apperror.NewNotFound("daily movement", m.ID.String())
	}
	r.headers[m.ID] = *m
	return nil
}

func (r *memMovementRepo) Delete(_ context.Context, movementID id.ID) error {
	delete(r.headers, movementID)
	delete(r.entries, movementID)
	return nil
}

func (r *memMovementRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*DailyMovement], error) {
	return domain.ListResult[*DailyMovement]{}, nil
}

func (r *memMovementRepo) ListByPeriod(_ context.Context, from, to time.Time, _ domain.ListFilter) (domain.ListResult[*DailyMovement], error) {
	var result domain.ListResult[*DailyMovement]
	for _, h := range r.headers {
		if !h.BusinessDate.Before(from) && h.BusinessDate.Before(to) {
			copied := h
			result.Items = append(result.Items, &copied)
		}
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *memMovementRepo) GetEntries(_ context.Context, movementID id.ID) ([]Entry, error) {
	return append([]Entry(nil), r.entries[movementID]...), nil
}

func (r *memMovementRepo) SaveEntries(_ context.Context, movementID id.ID, entries []Entry) error {
	r.entries[movementID] = append([]Entry(nil), entries...)
	return nil
}

type memDocumentRepo struct {
	headers map[id.ID]documents.Document
	lines   map[id.ID][]documents.DocumentLine
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{
		headers: make(map[id.ID]documents.Document),
		lines:   make(map[id.ID][]documents.DocumentLine),
	}
}

func (r *memDocumentRepo) Create(_ context.Context, doc *documents.Document) error {
	copied := *doc
	copied.Lines = nil
	r.headers[doc.ID] = copied
	return nil
}

func (r *memDocumentRepo) GetByID(_ context.Context, docID id.ID) (*documents.Document, error) {
	h, ok := r.headers[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	copied := h
	return &copied, nil
}

func (r *memDocumentRepo) GetByNumber(_ context.Context, number string) (*documents.Document, error) {
	for _, h := range r.headers {
		if h.Number == number {
			copied := h
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("document", number)
}

func (r *memDocumentRepo) Update(_ context.Context, doc *documents.Document) error {
	if _, ok := r.headers[doc.ID]; !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	copied := *doc
	copied.Lines = nil
	r.headers[doc.ID] = copied
	return nil
}

func (r *memDocumentRepo) Delete(_ context.Context, docID id.ID) error {
	delete(r.headers, docID)
	delete(r.lines, docID)
	return nil
}

func (r *memDocumentRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*documents.Document], error) {
	return domain.ListResult[*documents.Document]{}, nil
}

func (r *memDocumentRepo) GetLines(_ context.Context, docID id.ID) ([]documents.DocumentLine, error) {
	return append([]documents.DocumentLine(nil), r.lines[docID]...), nil
}

func (r *memDocumentRepo) AppendLines(_ context.Context, docID id.ID, lines []documents.DocumentLine) error {
	r.lines[docID] = append(r.lines[docID], lines...)
	return nil
}

func (r *memDocumentRepo) FindByMovement(_ context.Context, movementID id.ID) ([]*documents.Document, error) {
	var out []*documents.Document
	for _, h := range r.headers {
		if h.MovementID != nil && *h.MovementID == movementID {
			copied := h
			copied.Lines = append([]documents.DocumentLine(nil), r.lines[h.ID]...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memDocumentRepo) DeleteByMovement(_ context.Context, movementID id.ID) error {
	for docID, h := range r.headers {
		if h.MovementID != nil && *h.MovementID == movementID {
			delete(r.headers, docID)
			delete(r.lines, docID)
		}
	}
	return nil
}

type fakeInventory struct {
	positions map[id.ID][]inventory.Position
}

func (f *fakeInventory) PositionsForStore(_ context.Context, storeID id.ID) ([]inventory.Position, error) {
	return f.positions[storeID], nil
}

type fakePriceCatalog struct {
	prices map[id.ID]types.Money
}

func (f *fakePriceCatalog) DefaultUnitPrice(_ context.Context, productID id.ID) (types.Money, error) {
	p, ok := f.prices[productID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (f *fakePriceCatalog) UnitCost(_ context.Context, productID id.ID) (types.Money, error) {
	return types.Zero(), nil
}

func (f *fakePriceCatalog) CategoryOf(_ context.Context, productID id.ID) (id.ID, error) {
	return id.Nil(), nil
}

type fakeCashClients struct {
	client *partner.Partner
}

func (f *fakeCashClients) CashClient(_ context.Context) (*partner.Partner, error) {
	return f.client, nil
}

// seqRow / seqQuerier back the numerator with an in-memory counter.
type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

type seqQuerier struct {
	mu  sync.Mutex
	val int64
}

func (q *seqQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.val++
	return &seqRow{val: q.val}
}

// --- fixture ---

type fixture struct {
	svc      *Service
	repo     *memMovementRepo
	docs     *memDocumentRepo
	store    id.ID
	p1, p2   id.ID
	movement *DailyMovement
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := id.New()
	p1 := id.New()
	p2 := id.New()

	repo := newMemMovementRepo()
	docs := newMemDocumentRepo()

	inv := &fakeInventory{positions: map[id.ID][]inventory.Position{
		store: {
			{ID: id.New(), StoreID: store, ProductID: p1, Available: types.MustQuantity("10"), ObservedAt: time.Now()},
			{ID: id.New(), StoreID: store, ProductID: p2, Available: types.MustQuantity("0"), ObservedAt: time.Now()},
		},
	}}

	prices := &fakePriceCatalog{prices: map[id.ID]types.Money{
		p1: types.MustMoney("500"),
		p2: types.MustMoney("300"),
	}}

	cash := partner.NewPartner("CSH-001", "Cash sales counter", partner.KindCashClient)

	svc := NewService(
		repo,
		docs,
		fakeTxManager{},
		numerator.New(&seqQuerier{}),
		inv,
		prices,
		&fakeCashClients{client: cash},
		nil,
	)

	m, err := svc.Add(context.Background(), NewDailyMovement(store, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	return &fixture{
		svc:      svc,
		repo:     repo,
		docs:     docs,
		store:    store,
		p1:       p1,
		p2:       p2,
		movement: m,
	}
}

// --- tests ---

func TestGenerateCashSalesMirrorsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.GenerateCashSales(ctx, f.movement.ID)
	if err != nil {
		t.Fatalf("GenerateCashSales() error = %v", err)
	}
	if doc == nil {
		t.Fatal("GenerateCashSales() returned no document")
	}
	if doc.Direction != documents.Outbound {
		t.Errorf("direction = %s, want OUTBOUND", doc.Direction)
	}
	if doc.PartnerID == nil {
		t.Error("cash sale document has no partner")
	}

	// Line order is not significant: compare the (product, quantity)
	// multiset against the snapshot.
	stored, err := f.svc.Retrieve(ctx, f.movement.ID)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(stored.Documents) != 1 {
		t.Fatalf("movement has %d documents, want 1", len(stored.Documents))
	}

	lines := stored.Documents[0].Lines
	if len(lines) != 2 {
		t.Fatalf("document has %d lines, want 2", len(lines))
	}

	want := map[id.ID]string{
		f.p1: "10",
		f.p2: "0",
	}
	total := types.Zero()
	for _, l := range lines {
		wantQty, ok := want[l.ProductID]
		if !ok {
			t.Fatalf("unexpected product %s in generated lines", l.ProductID)
		}
		if !l.Quantity.Equal(types.MustQuantity(wantQty)) {
			t.Errorf("product %s quantity = %s, want %s", l.ProductID, l.Quantity, wantQty)
		}
		delete(want, l.ProductID)
		total = total.Add(l.Amount())
	}
	if len(want) != 0 {
		t.Errorf("products missing from generated lines: %v", want)
	}

	// 10*500 + 0*300
	if !total.Equal(types.MustMoney("5000")) {
		t.Errorf("document value = %s, want 5000", total)
	}
}

func TestGenerateCashSalesRepricesFromCatalog(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.GenerateCashSales(context.Background(), f.movement.ID)
	if err != nil {
		t.Fatalf("GenerateCashSales() error = %v", err)
	}

	for _, l := range doc.Lines {
		switch l.ProductID {
		case f.p1:
			if !l.UnitPrice.Equal(types.MustMoney("500")) {
				t.Errorf("p1 price = %s, want 500", l.UnitPrice)
			}
		case f.p2:
			if !l.UnitPrice.Equal(types.MustMoney("300")) {
				t.Errorf("p2 price = %s, want 300", l.UnitPrice)
			}
		}
	}
}

func TestGenerateCashSalesMissingMovementIsNoOp(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.GenerateCashSales(context.Background(), id.New())
	if err != nil {
		t.Fatalf("GenerateCashSales() error = %v, want silent no-op", err)
	}
	if doc != nil {
		t.Errorf("GenerateCashSales() = %v, want nil", doc)
	}

	// Nothing may be created anywhere.
	if len(f.docs.headers) != 0 {
		t.Errorf("no-op created %d documents", len(f.docs.headers))
	}
}

func TestRemoveCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.GenerateCashSales(ctx, f.movement.ID); err != nil {
		t.Fatalf("GenerateCashSales() error = %v", err)
	}
	if len(f.docs.headers) != 1 {
		t.Fatalf("setup: %d documents, want 1", len(f.docs.headers))
	}

	removed, err := f.svc.Remove(ctx, f.movement.ID)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !removed {
		t.Error("Remove() = false, want true")
	}

	if len(f.repo.headers) != 0 {
		t.Error("movement header survived removal")
	}
	if len(f.docs.headers) != 0 {
		t.Error("owned documents survived removal")
	}
}

func TestRemoveMissingReturnsFalse(t *testing.T) {
	f := newFixture(t)

	removed, err := f.svc.Remove(context.Background(), id.New())
	if err != nil {
		t.Fatalf("Remove() error = %v, want none", err)
	}
	if removed {
		t.Error("Remove() = true for a missing movement")
	}
	if len(f.repo.headers) != 1 {
		t.Error("Remove() on a missing id changed the store")
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	f := newFixture(t)

	ghost := NewDailyMovement(f.store, time.Now())
	_, err := f.svc.Update(context.Background(), ghost)
	if !apperror.IsNotFound(err) {
		t.Errorf("Update() error = %v, want not found", err)
	}
}

func TestUpdateKeepsDocumentsOnPartialInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.GenerateCashSales(ctx, f.movement.ID); err != nil {
		t.Fatalf("GenerateCashSales() error = %v", err)
	}

	// Partial update: comment touched, document collection unset.
	partial := &DailyMovement{}
	partial.ID = f.movement.ID
	partial.StoreID = f.store
	partial.Number = f.movement.Number
	partial.BusinessDate = f.movement.BusinessDate

	updated, err := f.svc.Update(ctx, partial)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Documents) != 1 {
		t.Errorf("partial update dropped documents: got %d, want 1", len(updated.Documents))
	}
}

func TestBuildDetailsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.GenerateCashSales(ctx, f.movement.ID)
	if err != nil {
		t.Fatalf("GenerateCashSales() error = %v", err)
	}
	baseLines := len(doc.Lines)

	m, err := f.svc.Retrieve(ctx, f.movement.ID)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	m.AddEntry(doc.ID, f.p1, types.MustMoney("500"), types.MustQuantity("3"))
	if _, err := f.svc.Update(ctx, m); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	built, err := f.svc.BuildDetails(ctx, f.movement.ID)
	if err != nil {
		t.Fatalf("BuildDetails() error = %v", err)
	}
	if built.Status() != StatusBuilt {
		t.Errorf("status = %s, want BUILT", built.Status())
	}

	lines, err := f.docs.GetLines(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetLines() error = %v", err)
	}
	if len(lines) != baseLines+1 {
		t.Fatalf("after build: %d lines, want %d", len(lines), baseLines+1)
	}

	// A second pass has no unbuilt entries and must not duplicate.
	if _, err := f.svc.BuildDetails(ctx, f.movement.ID); err != nil {
		t.Fatalf("BuildDetails() second pass error = %v", err)
	}
	lines, _ = f.docs.GetLines(context.Background(), doc.ID)
	if len(lines) != baseLines+1 {
		t.Errorf("second build changed line count to %d, want %d", len(lines), baseLines+1)
	}
}

func TestBuildDetailsMissingIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BuildDetails(context.Background(), id.New())
	if !apperror.IsNotFound(err) {
		t.Errorf("BuildDetails() error = %v, want not found", err)
	}
}

func TestAddRejectsSecondMovementForStoreAndDay(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), NewDailyMovement(f.store, f.movement.BusinessDate))
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeDuplicate {
		t.Errorf("Add() error = %v, want duplicate", err)
	}
}

func TestListByPeriod(t *testing.T) {
	f := newFixture(t)

	day := f.movement.BusinessDate
	from := day.AddDate(0, 0, -1)
	to := day.AddDate(0, 0, 1)

	result, err := f.svc.ListByPeriod(context.Background(), from, to, domain.ListFilter{})
	if err != nil {
		t.Fatalf("ListByPeriod() error = %v", err)
	}
	if result.TotalCount != 1 {
		t.Errorf("ListByPeriod() total = %d, want 1", result.TotalCount)
	}

	result, err = f.svc.ListByPeriod(context.Background(), to, to.AddDate(0, 0, 7), domain.ListFilter{})
	if err != nil {
		t.Fatalf("ListByPeriod() error = %v", err)
	}
	if result.TotalCount != 0 {
		t.Errorf("ListByPeriod() total = %d for a later week, want 0", result.TotalCount)
	}
}

func TestListByPeriodRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)

	day := f.movement.BusinessDate
	_, err := f.svc.ListByPeriod(context.Background(), day, day, domain.ListFilter{})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Errorf("ListByPeriod() error = %v, want validation", err)
	}
}
