package product

import (
	"context"
	"fmt"
	"time"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/tx"
	"globalerp/internal/core/types"
	"globalerp/internal/domain"
	"globalerp/pkg/numerator"
)

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkCodeUnique)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		cfg := numerator.DefaultConfig("PRD")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return s.checkCodeUnique(ctx, p)
}

func (s *Service) checkCodeUnique(ctx context.Context, p *Product) error {
	existing, err := s.repo.GetByCode(ctx, p.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewDuplicate("product", "code", p.Code)
	}
	return nil
}

// --- Entity-specific methods (not in base CatalogService) ---

// FindByCategory retrieves all products in a category.
func (s *Service) FindByCategory(ctx context.Context, categoryID id.ID) ([]*Product, error) {
	return s.repo.FindByCategory(ctx, categoryID)
}

// DefaultUnitPrice returns the configured selling price for a product.
func (s *Service) DefaultUnitPrice(ctx context.Context, productID id.ID) (types.Money, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return types.Zero(), err
	}
	return p.DefaultUnitPrice, nil
}

// UnitCost returns the recorded cost for a product.
func (s *Service) UnitCost(ctx context.Context, productID id.ID) (types.Money, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return types.Zero(), err
	}
	return p.UnitCost, nil
}

// CategoryOf returns the category a product belongs to.
func (s *Service) CategoryOf(ctx context.Context, productID id.ID) (id.ID, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return id.Nil(), err
	}
	return p.CategoryID, nil
}

// CategoryService provides business logic for the ProductCategory catalog.
type CategoryService struct {
	*domain.CatalogService[*ProductCategory]
	repo      CategoryRepository
	numerator *numerator.Service
}

// NewCategoryService creates a new ProductCategory service.
func NewCategoryService(
	repo CategoryRepository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *CategoryService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*ProductCategory]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product category",
	})

	svc := &CategoryService{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)

	return svc
}

func (s *CategoryService) prepareForCreate(ctx context.Context, c *ProductCategory) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CAT")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}

	exists, err := s.repo.ExistsByCode(ctx, c.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("product category", "code", c.Code)
	}
	return nil
}
