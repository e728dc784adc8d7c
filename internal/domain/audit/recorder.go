package audit

import (
	"context"

	"globalerp/internal/core/id"
)

// Audit actions recorded by the services.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionBuild  = "build"
)

// Recorder appends entries to the audit trail. Implementations must not
// fail the business operation; callers log and continue on error.
type Recorder interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}
