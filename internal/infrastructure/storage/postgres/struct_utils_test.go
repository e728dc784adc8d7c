package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"globalerp/internal/core/entity"
	"globalerp/internal/core/id"
)

type MockCatalog struct {
	entity.Catalog
	Perishable bool `db:"perishable" json:"perishable"`
	Skipped    int  `db:"-" json:"-"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "version", "attributes", "code", "name", "perishable",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}

	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	cat := MockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:      id.New(),
					Version: 5,
				},
			},
			Code: "TEST",
			Name: "Test Name",
		},
		Perishable: true,
		Skipped:    42,
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, true, m["perishable"])
	assert.NotContains(t, m, "-")
}
