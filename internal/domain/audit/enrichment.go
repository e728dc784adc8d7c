// Package audit provides utilities for audit field enrichment in domain entities.
package audit

import (
	"context"

	appctx "globalerp/internal/core/context"
)

// EnrichCreatedBy sets CreatedBy and UpdatedBy fields from the context
// actor. Use in BeforeCreate hooks.
//
// If no actor is in context, this is a no-op.
func EnrichCreatedBy(ctx context.Context, entity interface{}) error {
	actor := appctx.GetActor(ctx)
	if actor == "" {
		return nil
	}

	switch e := entity.(type) {
	case interface {
		SetCreatedBy(string)
		SetUpdatedBy(string)
	}:
		e.SetCreatedBy(actor)
		e.SetUpdatedBy(actor)
	}

	return nil
}

// EnrichUpdatedBy sets only the UpdatedBy field from the context actor.
// Use in BeforeUpdate hooks.
//
// If no actor is in context, this is a no-op.
func EnrichUpdatedBy(ctx context.Context, entity interface{}) error {
	actor := appctx.GetActor(ctx)
	if actor == "" {
		return nil
	}

	switch e := entity.(type) {
	case interface{ SetUpdatedBy(string) }:
		e.SetUpdatedBy(actor)
	}

	return nil
}

// EnrichCreatedByDirect sets fields directly. Use when the entity has
// public CreatedBy/UpdatedBy fields.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	actor := appctx.GetActor(ctx)
	if actor == "" {
		return
	}
	if createdBy != nil && *createdBy == "" {
		*createdBy = actor
	}
	if updatedBy != nil {
		*updatedBy = actor
	}
}
