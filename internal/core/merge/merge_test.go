package merge

import (
	"reflect"
	"testing"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
)

type testDoc struct {
	entity.BaseDocument

	Reference string
	Comment   string
	Lines     []string
	Labels    map[string]string
}

func newTestDoc(ref string) *testDoc {
	return &testDoc{
		BaseDocument: entity.NewBaseDocument(),
		Reference:    ref,
	}
}

func TestResolve_ScalarsFromIncoming(t *testing.T) {
	persisted := newTestDoc("BMQ-001")
	persisted.Comment = "old comment"
	persisted.Version = 4

	incoming := &testDoc{Reference: "BMQ-001-FIXED", Comment: "new comment"}

	resolved, err := Resolve(incoming, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Reference != "BMQ-001-FIXED" {
		t.Errorf("expected incoming reference, got %s", resolved.Reference)
	}
	if resolved.Comment != "new comment" {
		t.Errorf("expected incoming comment, got %s", resolved.Comment)
	}
	if resolved.ID != persisted.ID {
		t.Errorf("expected persisted id %s, got %s", persisted.ID, resolved.ID)
	}
	if resolved.Version != 4 {
		t.Errorf("expected persisted version 4, got %d", resolved.Version)
	}
	if !resolved.CreatedAt.Equal(persisted.CreatedAt) {
		t.Errorf("expected persisted createdAt, got %s", resolved.CreatedAt)
	}
}

func TestResolve_KeepsPersistedCollections(t *testing.T) {
	persisted := newTestDoc("BMQ-002")
	persisted.Lines = []string{"l1", "l2"}
	persisted.Labels = map[string]string{"store": "S1"}

	// Incoming is a partial update: collections were never loaded.
	incoming := &testDoc{Reference: "BMQ-002", Comment: "touched"}

	resolved, err := Resolve(incoming, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(resolved.Lines, []string{"l1", "l2"}) {
		t.Errorf("persisted lines dropped: %v", resolved.Lines)
	}
	if resolved.Labels["store"] != "S1" {
		t.Errorf("persisted labels dropped: %v", resolved.Labels)
	}
}

func TestResolve_IncomingCollectionsWin(t *testing.T) {
	persisted := newTestDoc("BMQ-003")
	persisted.Lines = []string{"l1"}

	incoming := &testDoc{Lines: []string{"l1", "l2", "l3"}}

	resolved, err := Resolve(incoming, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resolved.Lines) != 3 {
		t.Errorf("expected incoming lines to win, got %v", resolved.Lines)
	}
}

func TestResolve_EmptySliceIsExplicit(t *testing.T) {
	persisted := newTestDoc("BMQ-004")
	persisted.Lines = []string{"l1"}

	// A non-nil empty slice means "clear", unlike nil which means "untouched".
	incoming := &testDoc{Lines: []string{}}

	resolved, err := Resolve(incoming, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resolved.Lines) != 0 || resolved.Lines == nil {
		t.Errorf("expected explicit empty lines, got %v", resolved.Lines)
	}
}

func TestResolve_IdentityMismatch(t *testing.T) {
	persisted := newTestDoc("BMQ-005")
	incoming := newTestDoc("BMQ-005")
	// Distinct generated IDs on both sides.

	_, err := Resolve(incoming, persisted)
	if err == nil {
		t.Fatal("expected merge target mismatch error")
	}
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestResolve_NilIncomingID(t *testing.T) {
	persisted := newTestDoc("BMQ-006")

	incoming := &testDoc{Reference: "BMQ-006"}
	if !id.IsNil(incoming.ID) {
		t.Fatal("test setup: incoming id must be nil")
	}

	resolved, err := Resolve(incoming, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ID != persisted.ID {
		t.Errorf("expected persisted identity, got %s", resolved.ID)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	persisted := newTestDoc("BMQ-007")
	persisted.Lines = []string{"l1", "l2"}
	persisted.Version = 9

	incoming := &testDoc{Comment: "edited"}

	once, err := Resolve(incoming, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Resolve(once, persisted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	persisted := newTestDoc("BMQ-008")
	persisted.Lines = []string{"l1"}

	incoming := &testDoc{Comment: "edited"}

	if _, err := Resolve(incoming, persisted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if incoming.Lines != nil {
		t.Errorf("incoming was mutated: %v", incoming.Lines)
	}
	if !id.IsNil(incoming.ID) {
		t.Errorf("incoming id was mutated: %s", incoming.ID)
	}
}
