package documents

import (
	"context"
	"testing"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

func TestAddLineInheritsDirection(t *testing.T) {
	doc := NewDocument(Inbound, id.New())
	doc.AddLine(id.New(), types.MustMoney("100"), types.MustQuantity("2"))
	doc.AddLine(id.New(), types.MustMoney("50"), types.MustQuantity("1"))

	for i, l := range doc.Lines {
		if l.Direction != Inbound {
			t.Errorf("line %d direction = %s, want INBOUND", i, l.Direction)
		}
		if l.LineNumber != i+1 {
			t.Errorf("line %d number = %d, want %d", i, l.LineNumber, i+1)
		}
	}
}

func TestDocumentValidate(t *testing.T) {
	storeID := id.New()

	tests := []struct {
		name    string
		build   func() *Document
		wantErr bool
	}{
		{
			name: "valid outbound",
			build: func() *Document {
				d := NewDocument(Outbound, storeID)
				d.AddLine(id.New(), types.MustMoney("500"), types.MustQuantity("10"))
				return d
			},
		},
		{
			name: "zero quantity line is allowed",
			build: func() *Document {
				d := NewDocument(Outbound, storeID)
				d.AddLine(id.New(), types.MustMoney("300"), types.MustQuantity("0"))
				return d
			},
		},
		{
			name: "missing direction",
			build: func() *Document {
				return &Document{StoreID: storeID}
			},
			wantErr: true,
		},
		{
			name: "missing store",
			build: func() *Document {
				return NewDocument(Outbound, id.Nil())
			},
			wantErr: true,
		},
		{
			name: "negative price",
			build: func() *Document {
				d := NewDocument(Outbound, storeID)
				d.AddLine(id.New(), types.MustMoney("-1"), types.MustQuantity("1"))
				return d
			},
			wantErr: true,
		},
		{
			name: "negative quantity",
			build: func() *Document {
				d := NewDocument(Outbound, storeID)
				d.AddLine(id.New(), types.MustMoney("100"), types.MustQuantity("-1"))
				return d
			},
			wantErr: true,
		},
		{
			name: "line direction mismatch",
			build: func() *Document {
				d := NewDocument(Outbound, storeID)
				d.AddLine(id.New(), types.MustMoney("100"), types.MustQuantity("1"))
				d.Lines[0].Direction = Inbound
				return d
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate(context.Background())
			if tt.wantErr {
				if !apperror.IsValidation(err) {
					t.Errorf("Validate() = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
