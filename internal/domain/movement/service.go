package movement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/merge"
	"globalerp/internal/core/tx"
	"globalerp/internal/domain"
	"globalerp/internal/domain/audit"
	"globalerp/internal/domain/catalogs/partner"
	"globalerp/internal/domain/documents"
	"globalerp/internal/domain/registers/inventory"
	"globalerp/pkg/logger"
	"globalerp/pkg/numerator"
)

// CashClientProvider resolves the designated counterparty for
// anonymous cash sales.
type CashClientProvider interface {
	CashClient(ctx context.Context) (*partner.Partner, error)
}

// Service orchestrates the daily movement lifecycle: merge-based
// updates, line building and cash-sale synthesis.
type Service struct {
	repo      Repository
	docs      documents.Repository
	txManager tx.Manager
	numerator *numerator.Service

	inventory   inventory.Provider
	products    documents.ProductCatalog
	cashClients CashClientProvider
	auditor     audit.Recorder
}

// NewService creates a movement service. auditor may be nil.
func NewService(
	repo Repository,
	docs documents.Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
	inventoryProvider inventory.Provider,
	products documents.ProductCatalog,
	cashClients CashClientProvider,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:        repo,
		docs:        docs,
		txManager:   txManager,
		numerator:   numerator,
		inventory:   inventoryProvider,
		products:    products,
		cashClients: cashClients,
		auditor:     auditor,
	}
}

// recordAudit appends an audit entry. Audit failures are logged, never
// surfaced; the business write is already durable.
func (s *Service) recordAudit(ctx context.Context, movementID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, "daily_movement", movementID, action, changes); err != nil {
		logger.Warn(ctx, "audit record failed", "id", movementID, "action", action, "error", err)
	}
}

// Add stores a new movement. One movement exists per store and day.
func (s *Service) Add(ctx context.Context, m *DailyMovement) (*DailyMovement, error) {
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByStoreAndDate(ctx, m.StoreID, m.BusinessDate)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewDuplicate("daily movement", "store/date",
			fmt.Sprintf("%s/%s", m.StoreID, m.BusinessDate.Format("2006-01-02")))
	}

	audit.EnrichCreatedBy(ctx, m)
	for _, doc := range m.Documents {
		audit.EnrichCreatedBy(ctx, doc)
	}

	if m.Number == "" {
		cfg := numerator.DefaultConfig("BMQ")
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, m.BusinessDate)
		if err != nil {
			return nil, fmt.Errorf("generate movement number: %w", err)
		}
		m.Number = number
	}

	if err := s.numberNewDocuments(ctx, m.Documents, nil); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		if len(m.Entries) > 0 {
			if err := s.repo.SaveEntries(ctx, m.ID, m.Entries); err != nil {
				return fmt.Errorf("save entries: %w", err)
			}
		}
		for _, doc := range m.Documents {
			if err := s.createAttached(ctx, m.ID, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "daily movement created",
		"id", m.ID,
		"number", m.Number,
		"storeId", m.StoreID,
		"date", m.BusinessDate.Format("2006-01-02"))

	s.recordAudit(ctx, m.ID, audit.ActionCreate, map[string]any{
		"number":    m.Number,
		"storeId":   m.StoreID.String(),
		"date":      m.BusinessDate.Format("2006-01-02"),
		"documents": len(m.Documents),
	})

	return m, nil
}

// Update merges the incoming state onto the persisted record and
// writes the result. A miss is an error: there is nothing to merge
// onto.
func (s *Service) Update(ctx context.Context, m *DailyMovement) (*DailyMovement, error) {
	persisted, err := s.retrieveStored(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	resolved, err := merge.Resolve(m, persisted)
	if err != nil {
		return nil, err
	}

	if err := resolved.Validate(ctx); err != nil {
		return nil, err
	}

	audit.EnrichUpdatedBy(ctx, resolved)

	if err := s.write(ctx, resolved, persisted.Documents); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, resolved.ID, audit.ActionUpdate, map[string]any{
		"version": resolved.Version,
	})

	return resolved, nil
}

// Retrieve returns the movement with entries and documents, or nil for
// a normal miss.
func (s *Service) Retrieve(ctx context.Context, movementID id.ID) (*DailyMovement, error) {
	m, err := s.retrieveStored(ctx, movementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// BuildDetails materializes the movement's unbuilt entries into
// document lines and writes the result. Building is additive per
// entry; repeated calls do not duplicate lines.
func (s *Service) BuildDetails(ctx context.Context, movementID id.ID) (*DailyMovement, error) {
	m, err := s.retrieveStored(ctx, movementID)
	if err != nil {
		return nil, err
	}

	prevDocs := snapshotDocuments(m.Documents)

	if err := materialize(m); err != nil {
		return nil, err
	}
	m.LinesBuilt = true

	if err := s.write(ctx, m, prevDocs); err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement lines built",
		"id", m.ID,
		"number", m.Number,
		"documents", len(m.Documents))

	s.recordAudit(ctx, m.ID, audit.ActionBuild, map[string]any{
		"entries": len(m.Entries),
	})

	return m, nil
}

// Remove deletes the movement as a whole unit, cascading to owned
// documents. Returns false without error when nothing exists.
func (s *Service) Remove(ctx context.Context, movementID id.ID) (bool, error) {
	_, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.docs.DeleteByMovement(ctx, movementID); err != nil {
			return fmt.Errorf("delete movement documents: %w", err)
		}
		if err := s.repo.Delete(ctx, movementID); err != nil {
			return fmt.Errorf("delete movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	logger.Info(ctx, "daily movement removed", "id", movementID)
	s.recordAudit(ctx, movementID, audit.ActionDelete, nil)
	return true, nil
}

// List retrieves movement headers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*DailyMovement], error) {
	return s.repo.List(ctx, filter)
}

// ListByPeriod retrieves movement headers whose business date falls in
// [from, to).
func (s *Service) ListByPeriod(ctx context.Context, from, to time.Time, filter domain.ListFilter) (domain.ListResult[*DailyMovement], error) {
	if !to.After(from) {
		return domain.ListResult[*DailyMovement]{}, apperror.NewValidation("period end must be after period start")
	}
	return s.repo.ListByPeriod(ctx, from, to, filter)
}

// GenerateCashSales synthesizes an outbound sales document mirroring
// the store's current inventory snapshot and appends it to the
// movement. A missing movement is a silent no-op, mirroring Remove's
// policy of treating "nothing to act on" as success.
//
// The snapshot read and the movement write are not atomic with
// concurrent inventory changes; the document reflects inventory as of
// the read.
func (s *Service) GenerateCashSales(ctx context.Context, movementID id.ID) (*documents.Document, error) {
	m, err := s.Retrieve(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		logger.Debug(ctx, "cash sale generation skipped, movement not found", "id", movementID)
		return nil, nil
	}

	positions, err := s.inventory.PositionsForStore(ctx, m.StoreID)
	if err != nil {
		return nil, fmt.Errorf("read inventory snapshot: %w", err)
	}

	cashClient, err := s.cashClients.CashClient(ctx)
	if err != nil {
		return nil, err
	}

	doc := documents.NewDocument(documents.Outbound, m.StoreID)
	cashClientID := cashClient.ID
	doc.PartnerID = &cashClientID
	doc.Comment = "cash sales from inventory snapshot"

	lines, err := s.buildCashSaleLines(ctx, doc.ID, positions)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines

	cfg := numerator.DefaultConfig("CSB")
	doc.Number, err = s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate document number: %w", err)
	}

	prevDocs := snapshotDocuments(m.Documents)
	m.AttachDocument(doc)

	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.write(ctx, m, prevDocs); err != nil {
		return nil, err
	}

	logger.Info(ctx, "cash sale document generated",
		"movementId", m.ID,
		"documentId", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Lines))

	s.recordAudit(ctx, m.ID, audit.ActionUpdate, map[string]any{
		"generatedDocumentId": doc.ID.String(),
		"number":              doc.Number,
		"lines":               len(doc.Lines),
	})

	return doc, nil
}

// buildCashSaleLines constructs one line per inventory position,
// re-priced from the catalog at generation time. Each position is
// independent, so construction fans out across goroutines writing to
// indexed output slots; line order is not significant.
func (s *Service) buildCashSaleLines(ctx context.Context, docID id.ID, positions []inventory.Position) ([]documents.DocumentLine, error) {
	if len(positions) == 0 {
		return nil, nil
	}

	lines := make([]documents.DocumentLine, len(positions))
	errs := make([]error, len(positions))

	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		go func(i int, pos inventory.Position) {
			defer wg.Done()

			price, err := s.products.DefaultUnitPrice(ctx, pos.ProductID)
			if err != nil {
				errs[i] = fmt.Errorf("price product %s: %w", pos.ProductID, err)
				return
			}

			lines[i] = documents.DocumentLine{
				ID:         id.New(),
				DocumentID: docID,
				LineNumber: i + 1,
				ProductID:  pos.ProductID,
				UnitPrice:  price,
				Quantity:   pos.Available,
				Direction:  documents.Outbound,
			}
		}(i, pos)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// --- internals ---

// retrieveStored loads the authoritative persisted state, entries and
// documents included. A miss is a NotFoundError.
func (s *Service) retrieveStored(ctx context.Context, movementID id.ID) (*DailyMovement, error) {
	m, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}

	m.Entries, err = s.repo.GetEntries(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	m.Documents, err = s.docs.FindByMovement(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	return m, nil
}

// write persists the resolved movement in a single transaction:
// header, entries, newly attached documents, and lines appended to
// documents that already existed. prevDocs is the document set as it
// stood before this operation.
func (s *Service) write(ctx context.Context, resolved *DailyMovement, prevDocs []*documents.Document) error {
	prev := make(map[id.ID]*documents.Document, len(prevDocs))
	for _, d := range prevDocs {
		prev[d.ID] = d
	}

	var newDocs []*documents.Document
	for _, doc := range resolved.Documents {
		if _, ok := prev[doc.ID]; !ok {
			newDocs = append(newDocs, doc)
		}
	}
	if err := s.numberNewDocuments(ctx, newDocs, prev); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, resolved); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}

		if resolved.Entries != nil {
			if err := s.repo.SaveEntries(ctx, resolved.ID, resolved.Entries); err != nil {
				return fmt.Errorf("save entries: %w", err)
			}
		}

		for _, doc := range resolved.Documents {
			prevDoc, ok := prev[doc.ID]
			if !ok {
				if err := s.createAttached(ctx, resolved.ID, doc); err != nil {
					return err
				}
				continue
			}

			newLines := linesNotIn(doc.Lines, prevDoc.Lines)
			if len(newLines) > 0 {
				if err := s.docs.AppendLines(ctx, doc.ID, newLines); err != nil {
					return fmt.Errorf("append lines to document %s: %w", doc.ID, err)
				}
			}
		}

		return nil
	})
}

// createAttached persists a newly attached document with its lines.
func (s *Service) createAttached(ctx context.Context, movementID id.ID, doc *documents.Document) error {
	mid := movementID
	doc.MovementID = &mid

	if err := s.docs.Create(ctx, doc); err != nil {
		return fmt.Errorf("create attached document: %w", err)
	}
	if len(doc.Lines) > 0 {
		if err := s.docs.AppendLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save attached document lines: %w", err)
		}
	}
	return nil
}

// numberNewDocuments assigns numbers to documents that do not have one
// yet. Runs before the write transaction; the numerator manages its own
// statements.
func (s *Service) numberNewDocuments(ctx context.Context, docs []*documents.Document, prev map[id.ID]*documents.Document) error {
	for _, doc := range docs {
		if doc.Number != "" {
			continue
		}
		if prev != nil {
			if _, ok := prev[doc.ID]; ok {
				continue
			}
		}
		cfg := numerator.DefaultConfig("DOC")
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate document number: %w", err)
		}
		doc.Number = number
	}
	return nil
}

// materialize turns unbuilt entries into document lines on their
// target documents. Entries naming a document outside the movement are
// rejected.
func materialize(m *DailyMovement) error {
	byID := make(map[id.ID]*documents.Document, len(m.Documents))
	for _, d := range m.Documents {
		byID[d.ID] = d
	}

	for i := range m.Entries {
		e := &m.Entries[i]
		if e.Built {
			continue
		}

		doc, ok := byID[e.DocumentID]
		if !ok {
			return apperror.NewValidation("entry targets a document outside the movement").
				WithDetail("entryId", e.ID.String()).
				WithDetail("documentId", e.DocumentID.String())
		}

		doc.AddLine(e.ProductID, e.UnitPrice, e.Quantity)
		e.Built = true
	}

	return nil
}

// snapshotDocuments captures the current document set with their line
// sets, so a later write can tell new lines from persisted ones.
func snapshotDocuments(docs []*documents.Document) []*documents.Document {
	snap := make([]*documents.Document, len(docs))
	for i, d := range docs {
		copied := *d
		copied.Lines = append([]documents.DocumentLine(nil), d.Lines...)
		snap[i] = &copied
	}
	return snap
}

// linesNotIn returns lines of current whose IDs are absent from prev.
func linesNotIn(current, prev []documents.DocumentLine) []documents.DocumentLine {
	seen := make(map[id.ID]bool, len(prev))
	for _, l := range prev {
		seen[l.ID] = true
	}
	var out []documents.DocumentLine
	for _, l := range current {
		if !seen[l.ID] {
			out = append(out, l)
		}
	}
	return out
}
