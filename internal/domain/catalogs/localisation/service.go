package localisation

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

// Service provides business logic for the Localisation catalog.
type Service struct {
	*domain.CatalogService[*Localisation]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Localisation service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Localisation]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "localisation",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeDelete, svc.guardDelete)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, l *Localisation) error {
	if l.Code == "" {
		cfg := numerator.DefaultConfig(codePrefix(l.Kind))
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		l.Code = code
	}

	// The parent must exist and sit exactly one level above.
	if l.ParentID != nil {
		parent, err := s.GetByID(ctx, *l.ParentID)
		if err != nil {
			return err
		}
		if parent.Kind.ChildKind() != l.Kind {
			return apperror.NewValidation("parent level does not match").
				WithDetail("kind", string(l.Kind)).
				WithDetail("parentKind", string(parent.Kind))
		}
	}

	exists, err := s.repo.ExistsByCode(ctx, l.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("localisation", "code", l.Code)
	}
	return nil
}

func codePrefix(kind Kind) string {
	switch kind {
	case KindCentre:
		return "CTR"
	case KindRegion:
		return "REG"
	case KindSecteur:
		return "SEC"
	default:
		return "ZON"
	}
}

// guardDelete refuses to delete a node that still has children.
func (s *Service) guardDelete(ctx context.Context, l *Localisation) error {
	has, err := s.repo.HasChildren(ctx, l.ID)
	if err != nil {
		return err
	}
	if has {
		return apperror.NewBusinessRule("localisation_has_children",
			"cannot delete a localisation that still has children").
			WithDetail("id", l.ID.String())
	}
	return nil
}

// Retrieve loads a node with the children its level declares.
func (s *Service) Retrieve(ctx context.Context, nodeID id.ID) (*Localisation, error) {
	l, err := s.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	if l.Kind.ChildKind() != "" {
		children, err := s.repo.FindChildren(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("load children: %w", err)
		}
		l.setChildren(children)
	}

	return l, nil
}

// FindByKind retrieves all nodes at one hierarchy level.
func (s *Service) FindByKind(ctx context.Context, kind Kind) ([]*Localisation, error) {
	return s.repo.FindByKind(ctx, kind)
}
