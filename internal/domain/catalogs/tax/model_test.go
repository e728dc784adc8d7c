package tax

import (
	"context"
	"testing"

	"globalerp/internal/core/apperror"
	"globalerp/internal/core/id"
	"globalerp/internal/core/types"
)

func TestTaxValidate(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		wantErr bool
	}{
		{"zero rate", "0", false},
		{"vat rate", "0.1925", false},
		{"full rate", "1", false},
		{"negative rate", "-0.05", true},
		{"above one", "1.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := NewTax("VAT", "Value added tax", types.MustRate(tt.rate))
			err := tax.Validate(context.Background())

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() = nil, want validation error")
				}
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

func TestTaxAppliesTo(t *testing.T) {
	dairy := id.New()
	packaging := id.New()

	unrestricted := NewTax("VAT", "Value added tax", types.MustRate("0.1925"))
	if !unrestricted.AppliesTo(dairy) {
		t.Error("tax without category restriction must apply to every category")
	}

	restricted := NewTax("EXC", "Excise", types.MustRate("0.05"))
	restricted.CategoryIDs = []id.ID{dairy}

	if !restricted.AppliesTo(dairy) {
		t.Error("tax must apply to a listed category")
	}
	if restricted.AppliesTo(packaging) {
		t.Error("tax must not apply to an unlisted category")
	}
}
