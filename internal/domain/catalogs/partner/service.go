package partner

import (
	"context"
	"fmt"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/tx"
	"globalerp/internal/domain"
	"globalerp/pkg/numerator"
)

// Service provides business logic for the Partner catalog.
type Service struct {
	*domain.CatalogService[*Partner]
	repo      Repository
	txManager tx.Manager
	numerator *numerator.Service
}

// NewService creates a new Partner service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Partner]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "partner",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
		numerator:      numerator,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.AfterCreate, svc.saveChildren)
	base.Hooks().On(domain.AfterUpdate, svc.saveChildren)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, p *Partner) error {
	if p.Code == "" {
		cfg := numerator.DefaultConfig(codePrefix(p.Kind))
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("partner", "code", p.Code)
	}
	return nil
}

func codePrefix(kind Kind) string {
	switch kind {
	case KindMarginClient:
		return "MCL"
	case KindSeller:
		return "SEL"
	case KindCashClient:
		return "CSH"
	default:
		return "CLI"
	}
}

// saveChildren persists the variant's declared collections after the
// header write. Nil collections mean "leave as is"; empty non-nil
// collections clear the table.
func (s *Service) saveChildren(ctx context.Context, p *Partner) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		switch p.Kind {
		case KindMarginClient:
			if p.MarginLines != nil {
				if err := s.repo.SaveMarginLines(ctx, p.ID, p.MarginLines); err != nil {
					return fmt.Errorf("save margin lines: %w", err)
				}
			}
		case KindSeller:
			if p.Shortfalls != nil {
				if err := s.repo.SaveShortfalls(ctx, p.ID, p.Shortfalls); err != nil {
					return fmt.Errorf("save shortfalls: %w", err)
				}
			}
			if p.FixedAssets != nil {
				if err := s.repo.SaveFixedAssets(ctx, p.ID, p.FixedAssets); err != nil {
					return fmt.Errorf("save fixed assets: %w", err)
				}
			}
		}
		return nil
	})
}

// Retrieve loads a partner with the child collections its variant
// declares. A single switch on the kind replaces per-variant lookups.
func (s *Service) Retrieve(ctx context.Context, partnerID id.ID) (*Partner, error) {
	p, err := s.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) hydrate(ctx context.Context, p *Partner) error {
	switch p.Kind {
	case KindMarginClient:
		lines, err := s.repo.GetMarginLines(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load margin lines: %w", err)
		}
		p.MarginLines = lines

	case KindSeller:
		shortfalls, err := s.repo.GetShortfalls(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load shortfalls: %w", err)
		}
		p.Shortfalls = shortfalls

		assets, err := s.repo.GetFixedAssets(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load fixed assets: %w", err)
		}
		p.FixedAssets = assets
	}
	return nil
}

// CashClient returns the designated counterparty for anonymous cash
// sales. Exactly one partner of KindCashClient is expected to exist.
func (s *Service) CashClient(ctx context.Context) (*Partner, error) {
	partners, err := s.repo.FindByKind(ctx, KindCashClient)
	if err != nil {
		return nil, err
	}
	if len(partners) == 0 {
		return nil, apperror.NewNotFound("cash client partner", string(KindCashClient))
	}
	return partners[0], nil
}

// FindByKind retrieves all partners of a kind.
func (s *Service) FindByKind(ctx context.Context, kind Kind) ([]*Partner, error) {
	return s.repo.FindByKind(ctx, kind)
}
