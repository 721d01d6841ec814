package migration_test

import (
	"testing"

	"boardengine/internal/migration"
	"boardengine/internal/model"

	"github.com/stretchr/testify/assert"
)

func col(id, name string, colType model.ColumnType) model.BoardColumn {
	return model.BoardColumn{ColumnID: id, ColumnName: name, ColumnType: colType}
}

func TestBuildColumnMapping_IDMatchWins(t *testing.T) {
	source := []model.BoardColumn{
		col("name", "Name", model.ColumnText),
		col("custom_field", "Custom Field", model.ColumnText),
		col("inspector", "Inspector", model.ColumnPerson),
	}
	target := []model.BoardColumn{
		col("name", "Name", model.ColumnText),
		col("different_field", "Different", model.ColumnText),
	}

	mapping := migration.BuildColumnMapping(source, target)

	assert.Equal(t, map[string]string{"name": "name"}, mapping.AutoMapped)
	assert.Equal(t, []string{"custom_field", "inspector"}, mapping.NeedsMapping)
}

func TestBuildColumnMapping_IDBeatsNameMatch(t *testing.T) {
	// The target has a decoy column whose name matches the source, but
	// an exact id+type match exists elsewhere and must win.
	source := []model.BoardColumn{
		col("region", "Region", model.ColumnText),
	}
	target := []model.BoardColumn{
		col("area", "Region", model.ColumnText),
		col("region", "Zone", model.ColumnText),
	}

	mapping := migration.BuildColumnMapping(source, target)

	assert.Equal(t, map[string]string{"region": "region"}, mapping.AutoMapped)
	assert.Empty(t, mapping.NeedsMapping)
}

func TestBuildColumnMapping_NameMatchIsCaseInsensitive(t *testing.T) {
	source := []model.BoardColumn{
		col("contact_phone", "Phone Number", model.ColumnPhone),
	}
	target := []model.BoardColumn{
		col("phone", "PHONE NUMBER", model.ColumnPhone),
	}

	mapping := migration.BuildColumnMapping(source, target)

	assert.Equal(t, map[string]string{"contact_phone": "phone"}, mapping.AutoMapped)
}

func TestBuildColumnMapping_TypeMismatchNeverAutoMaps(t *testing.T) {
	// Same id and same name, but the target column holds a different
	// value shape; auto-mapping it would misassign data silently.
	source := []model.BoardColumn{
		col("amount", "Amount", model.ColumnNumber),
	}
	target := []model.BoardColumn{
		col("amount", "Amount", model.ColumnText),
	}

	mapping := migration.BuildColumnMapping(source, target)

	assert.Empty(t, mapping.AutoMapped)
	assert.Equal(t, []string{"amount"}, mapping.NeedsMapping)
}

func TestBuildColumnMapping_FirstTargetInOrderWinsNameTies(t *testing.T) {
	source := []model.BoardColumn{
		col("site", "Site", model.ColumnText),
	}
	target := []model.BoardColumn{
		col("site_a", "Site", model.ColumnText),
		col("site_b", "Site", model.ColumnText),
	}

	mapping := migration.BuildColumnMapping(source, target)

	assert.Equal(t, map[string]string{"site": "site_a"}, mapping.AutoMapped)
}

func TestApplyColumnMapping_PreservesUnmapped(t *testing.T) {
	data := map[string]any{
		"name":         "Test",
		"custom_field": "Custom Value",
	}

	mapped, unmapped := migration.ApplyColumnMapping(data, map[string]string{"name": "target_name"}, true)

	assert.Equal(t, map[string]any{"target_name": "Test"}, mapped)
	assert.Equal(t, map[string]any{"custom_field": "Custom Value"}, unmapped)
}

func TestApplyColumnMapping_DiscardsUnmappedOnOptOut(t *testing.T) {
	data := map[string]any{
		"name":         "Test",
		"custom_field": "Custom Value",
	}

	mapped, unmapped := migration.ApplyColumnMapping(data, map[string]string{"name": "target_name"}, false)

	assert.Equal(t, map[string]any{"target_name": "Test"}, mapped)
	assert.Empty(t, unmapped)
}

func TestApplyColumnMapping_KeepsValueIdentity(t *testing.T) {
	nested := map[string]any{"lat": 41.7, "lng": 44.8, "tags": []any{"a", nil}}
	data := map[string]any{
		"location": nested,
		"note":     nil,
	}
	mapping := map[string]string{"location": "site", "note": "remark"}

	mapped, unmapped := migration.ApplyColumnMapping(data, mapping, true)

	assert.Empty(t, unmapped)
	assert.Len(t, mapped, 2)
	// Values pass through untouched, including explicit nulls and
	// nested structures.
	assert.Nil(t, mapped["remark"])
	assert.Equal(t, nested, mapped["site"])
}

func TestApplyColumnMapping_EveryMappedFieldAppearsOnce(t *testing.T) {
	data := map[string]any{"a": 1, "b": 2, "c": 3}
	mapping := map[string]string{"a": "x", "b": "y"}

	mapped, unmapped := migration.ApplyColumnMapping(data, mapping, true)

	assert.Equal(t, map[string]any{"x": 1, "y": 2}, mapped)
	assert.Equal(t, map[string]any{"c": 3}, unmapped)
}
