package catalog_repo

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"

	"globalerp/internal/domain/catalogs/product"
	"globalerp/internal/infrastructure/storage/postgres"
)

func newTestRepo() *BaseCatalogRepo[*product.Product] {
	return NewBaseCatalogRepo(
		nil,
		"cat_products",
		postgres.ExtractDBColumns[product.Product](),
		func() *product.Product { return &product.Product{} },
	)
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{"empty defaults to name", "", "name ASC", false},
		{"plain field", "code", "code ASC", false},
		{"descending", "-code", "code DESC", false},
		{"explicit ascending", "+name", "name ASC", false},
		{"entity column", "default_unit_price", "default_unit_price ASC", false},
		{"unknown column rejected", "evil; DROP TABLE", "", true},
		{"bare minus rejected", "-", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseOrderBy(%q) expected error, got %q", tt.orderBy, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy(%q) unexpected error: %v", tt.orderBy, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderBy(%q) = %q, want %q", tt.orderBy, got, tt.want)
			}
		})
	}
}

func TestBaseSelectUsesDollarPlaceholders(t *testing.T) {
	repo := newTestRepo()

	sql, args, err := repo.baseSelect().
		Where(squirrel.Eq{"code": "PRD-001"}).
		ToSql()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	if !strings.Contains(sql, "FROM cat_products") {
		t.Errorf("expected table name in query, got %q", sql)
	}
	if !strings.Contains(sql, "$1") {
		t.Errorf("expected dollar placeholder, got %q", sql)
	}
	if len(args) != 1 || args[0] != "PRD-001" {
		t.Errorf("unexpected args: %v", args)
	}
}
