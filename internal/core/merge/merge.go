// Package merge implements the merge-before-write reconciliation step.
//
// An update in this codebase is an explicit three-step sequence: fetch the
// persisted state, merge the incoming state onto it, then write the result.
// This package is the middle step. It is a pure function over two entity
// values; callers own the surrounding fetch and write.
package merge

import (
	"reflect"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
)

// Resolve reconciles an incoming entity state with the persisted state and
// returns the resolved entity:
//
//   - identity (id, version) and creation audit fields come from persisted;
//   - scalar fields come from incoming;
//   - relationship collections (slices, maps) left nil by incoming keep the
//     persisted value, so a partial update cannot silently drop them.
//
// Resolve fails with a validation error when the two sides carry different
// non-nil identifiers (merge target mismatch). It never mutates its inputs.
func Resolve[T any](incoming, persisted *T) (*T, error) {
	if incoming == nil || persisted == nil {
		return nil, apperror.NewValidation("merge requires both incoming and persisted states")
	}

	inID, okIn := entityID(incoming)
	perID, okPer := entityID(persisted)
	if okIn && okPer && !id.IsNil(inID) && inID != perID {
		return nil, apperror.NewValidation("merge target mismatch").
			WithDetail("incoming_id", inID.String()).
			WithDetail("persisted_id", perID.String())
	}

	resolved := *incoming
	mergeStruct(reflect.ValueOf(&resolved).Elem(), reflect.ValueOf(persisted).Elem())
	return &resolved, nil
}

// identityFields are taken from the persisted side regardless of what the
// incoming state carries. The set mirrors the immutable columns the
// repositories exclude from UPDATE statements.
var identityFields = map[string]struct{}{
	"ID":        {},
	"Version":   {},
	"CreatedAt": {},
	"CreatedBy": {},
}

func mergeStruct(resolved, persisted reflect.Value) {
	t := resolved.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		out := resolved.Field(i)
		per := persisted.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			mergeStruct(out, per)
			continue
		}

		if _, identity := identityFields[field.Name]; identity {
			out.Set(per)
			continue
		}

		switch out.Kind() {
		case reflect.Slice, reflect.Map:
			if out.IsNil() {
				out.Set(per)
			}
		}
	}
}

// entityID extracts the ID field (possibly promoted from an embedded base)
// from an entity value.
func entityID(v any) (id.ID, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return id.Nil(), false
	}

	f := rv.FieldByName("ID")
	if !f.IsValid() {
		return id.Nil(), false
	}
	entityID, ok := f.Interface().(id.ID)
	return entityID, ok
}
