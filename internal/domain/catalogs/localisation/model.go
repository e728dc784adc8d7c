// Package localisation provides the distribution territory hierarchy.
//
// The hierarchy is fixed: a centre contains regions, a region contains
// secteurs, a secteur contains zones, and zones are leaves. Each level
// is a variant of one Localisation type discriminated by Kind.
package localisation

import (
	"context"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
)

// Kind discriminates hierarchy levels.
type Kind string

const (
	KindCentre  Kind = "CENTRE"
	KindRegion  Kind = "REGION"
	KindSecteur Kind = "SECTEUR"
	KindZone    Kind = "ZONE"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCentre, KindRegion, KindSecteur, KindZone:
		return true
	}
	return false
}

// ChildKind returns the level directly below, or "" for leaves.
func (k Kind) ChildKind() Kind {
	switch k {
	case KindCentre:
		return KindRegion
	case KindRegion:
		return KindSecteur
	case KindSecteur:
		return KindZone
	}
	return ""
}

// Localisation is one node of the territory hierarchy. Only the child
// field the variant declares is populated on hydration; the others
// stay nil.
type Localisation struct {
	entity.Catalog

	Kind Kind `db:"kind" json:"kind"`

	// ParentID is nil for centres
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	// Regions is declared by KindCentre
	Regions []*Localisation `db:"-" json:"regions,omitempty"`

	// Secteurs is declared by KindRegion
	Secteurs []*Localisation `db:"-" json:"secteurs,omitempty"`

	// Zones is declared by KindSecteur
	Zones []*Localisation `db:"-" json:"zones,omitempty"`
}

// NewLocalisation creates a hierarchy node.
func NewLocalisation(code, name string, kind Kind, parentID *id.ID) *Localisation {
	return &Localisation{
		Catalog:  entity.NewCatalog(code, name),
		Kind:     kind,
		ParentID: parentID,
	}
}

// Validate implements entity.Validatable.
func (l *Localisation) Validate(ctx context.Context) error {
	if err := l.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !l.Kind.Valid() {
		return apperror.NewValidation("unknown localisation kind").
			WithDetail("field", "kind").
			WithDetail("kind", string(l.Kind))
	}

	if l.Kind == KindCentre && l.ParentID != nil {
		return apperror.NewValidation("a centre cannot have a parent").
			WithDetail("field", "parentId")
	}
	if l.Kind != KindCentre && l.ParentID == nil {
		return apperror.NewValidation("parent is required below centre level").
			WithDetail("field", "parentId").
			WithDetail("kind", string(l.Kind))
	}

	return nil
}

// setChildren assigns the loaded children to the variant's declared field.
func (l *Localisation) setChildren(children []*Localisation) {
	switch l.Kind {
	case KindCentre:
		l.Regions = children
	case KindRegion:
		l.Secteurs = children
	case KindSecteur:
		l.Zones = children
	}
}
