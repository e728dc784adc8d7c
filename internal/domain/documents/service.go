package documents

import (
	"context"
	"fmt"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/merge"
	"globalerp/internal/core/tx"
	"globalerp/internal/domain"
	"globalerp/internal/domain/audit"
	"globalerp/pkg/logger"
	"globalerp/pkg/numerator"
)

// Service orchestrates document lifecycle: creation, merge-based
// updates, retrieval and whole-document removal.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator *numerator.Service
	auditor   audit.Recorder
}

// NewService creates a document service. auditor may be nil.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: numerator,
		auditor:   auditor,
	}
}

// recordAudit appends an audit entry. Audit failures are logged, never
// surfaced; the business write is already durable.
func (s *Service) recordAudit(ctx context.Context, docID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, "document", docID, action, changes); err != nil {
		logger.Warn(ctx, "audit record failed", "id", docID, "action", action, "error", err)
	}
}

// Add stores a new document with its lines.
func (s *Service) Add(ctx context.Context, doc *Document) (*Document, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	audit.EnrichCreatedBy(ctx, doc)

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(numberPrefix(doc.Direction))
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return nil, fmt.Errorf("generate document number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if len(doc.Lines) > 0 {
			if err := s.repo.AppendLines(ctx, doc.ID, doc.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document created",
		"id", doc.ID,
		"number", doc.Number,
		"direction", string(doc.Direction),
		"lines", len(doc.Lines))

	s.recordAudit(ctx, doc.ID, audit.ActionCreate, map[string]any{
		"number":    doc.Number,
		"direction": string(doc.Direction),
		"lines":     len(doc.Lines),
	})

	return doc, nil
}

// Update merges the incoming state onto the persisted record and writes
// the result. Absence is an error here: there is no base state to merge
// onto.
func (s *Service) Update(ctx context.Context, doc *Document) (*Document, error) {
	persisted, err := s.repo.GetByID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	persisted.Lines, err = s.repo.GetLines(ctx, persisted.ID)
	if err != nil {
		return nil, fmt.Errorf("load lines: %w", err)
	}

	resolved, err := merge.Resolve(doc, persisted)
	if err != nil {
		return nil, err
	}

	if resolved.Direction != persisted.Direction {
		return nil, apperror.NewBusinessRule(apperror.CodeDirectionImmutable,
			"operation direction cannot change after creation").
			WithDetail("documentId", doc.ID.String())
	}

	newLines, err := diffLines(persisted.Lines, resolved.Lines)
	if err != nil {
		return nil, err
	}

	if err := resolved.Validate(ctx); err != nil {
		return nil, err
	}

	audit.EnrichUpdatedBy(ctx, resolved)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, resolved); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if len(newLines) > 0 {
			if err := s.repo.AppendLines(ctx, resolved.ID, newLines); err != nil {
				return fmt.Errorf("append lines: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, resolved.ID, audit.ActionUpdate, map[string]any{
		"version":  resolved.Version,
		"newLines": len(newLines),
	})

	return resolved, nil
}

// diffLines validates line immutability and returns the lines to
// append. Persisted lines must survive unchanged; corrections are
// modeled as new compensating lines.
func diffLines(persisted, resolved []DocumentLine) ([]DocumentLine, error) {
	byID := make(map[id.ID]DocumentLine, len(persisted))
	for _, l := range persisted {
		byID[l.ID] = l
	}

	var newLines []DocumentLine
	seen := make(map[id.ID]bool, len(persisted))

	for _, l := range resolved {
		prev, ok := byID[l.ID]
		if !ok {
			newLines = append(newLines, l)
			continue
		}
		seen[l.ID] = true
		if !prev.UnitPrice.Equal(l.UnitPrice) ||
			!prev.Quantity.Equal(l.Quantity) ||
			prev.ProductID != l.ProductID {
			return nil, apperror.NewBusinessRule(apperror.CodeLineImmutable,
				"persisted lines cannot be edited, add a compensating line instead").
				WithDetail("lineId", l.ID.String())
		}
	}

	for lineID := range byID {
		if !seen[lineID] {
			return nil, apperror.NewBusinessRule(apperror.CodeLineImmutable,
				"persisted lines cannot be removed, add a compensating line instead").
				WithDetail("lineId", lineID.String())
		}
	}

	return newLines, nil
}

// Retrieve returns the document with lines, or nil for a normal miss.
func (s *Service) Retrieve(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	doc.Lines, err = s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load lines: %w", err)
	}
	return doc, nil
}

// Remove deletes a document with its lines. Returns false without
// error when nothing exists to delete.
func (s *Service) Remove(ctx context.Context, docID id.ID) (bool, error) {
	_, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, docID)
	})
	if err != nil {
		return false, err
	}

	logger.Info(ctx, "document removed", "id", docID)
	s.recordAudit(ctx, docID, audit.ActionDelete, nil)
	return true, nil
}

// List retrieves document headers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Document], error) {
	return s.repo.List(ctx, filter)
}

func numberPrefix(direction OperationDirection) string {
	if direction == Inbound {
		return "RCV"
	}
	return "INV"
}
