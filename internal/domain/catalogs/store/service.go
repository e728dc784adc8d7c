package store

import (
	"context"
	"fmt"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/tx"
	"globalerp/internal/domain"
	"globalerp/pkg/numerator"
)

// Repository defines data access for Store catalog.
type Repository interface {
	domain.CatalogRepository[*Store]
}

// Service provides business logic for the Store catalog.
type Service struct {
	*domain.CatalogService[*Store]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Store service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Store]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "store",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, st *Store) error {
	if st.Code == "" {
		cfg := numerator.DefaultConfig("STR")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		st.Code = code
	}

	exists, err := s.repo.ExistsByCode(ctx, st.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("store", "code", st.Code)
	}
	return nil
}
