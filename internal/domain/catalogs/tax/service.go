package tax

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

// Service provides business logic for the Tax catalog.
type Service struct {
	*domain.CatalogService[*Tax]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Tax service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Tax]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "tax",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, t *Tax) error {
	if t.Code == "" {
		cfg := numerator.DefaultConfig("TAX")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		t.Code = code
	}

	exists, err := s.repo.ExistsByCode(ctx, t.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("tax", "code", t.Code)
	}
	return nil
}

// FindApplicable retrieves taxes applicable to a product category.
func (s *Service) FindApplicable(ctx context.Context, categoryID id.ID) ([]*Tax, error) {
	return s.repo.FindApplicable(ctx, categoryID)
}
