// Package migration moves items between boards whose column schemas have
// evolved independently, reconciling the two with no data loss and no
// silent misassignment.
package migration

import (
	"strings"

	"boardengine/internal/model"
)

// Mapping is the outcome of matching a source schema against a target
// schema. AutoMapped maps source column ids to target column ids;
// NeedsMapping lists source columns no rule could place, in source
// position order.
type Mapping struct {
	AutoMapped   map[string]string
	NeedsMapping []string
}

// BuildColumnMapping matches source columns to target columns.
//
// Rule 1: a target column with the same column_id and the same
// column_type wins outright. Rule 2: otherwise the first target column
// (in position order) whose name matches case-insensitively with the
// same column_type. A source column matching neither rule needs manual
// mapping. An id match with a different column_type is never auto-mapped.
func BuildColumnMapping(sourceColumns, targetColumns []model.BoardColumn) Mapping {
	byID := make(map[string]model.BoardColumn, len(targetColumns))
	byNameType := make(map[string]string, len(targetColumns))
	for _, col := range targetColumns {
		byID[col.ColumnID] = col
		key := nameTypeKey(col.ColumnName, col.ColumnType)
		if _, seen := byNameType[key]; !seen {
			byNameType[key] = col.ColumnID
		}
	}

	mapping := Mapping{AutoMapped: make(map[string]string)}
	for _, src := range sourceColumns {
		if target, ok := byID[src.ColumnID]; ok && target.ColumnType == src.ColumnType {
			mapping.AutoMapped[src.ColumnID] = target.ColumnID
			continue
		}
		if targetID, ok := byNameType[nameTypeKey(src.ColumnName, src.ColumnType)]; ok {
			mapping.AutoMapped[src.ColumnID] = targetID
			continue
		}
		mapping.NeedsMapping = append(mapping.NeedsMapping, src.ColumnID)
	}
	return mapping
}

// ApplyColumnMapping rewrites item data under target column ids. Mapped
// values keep their identity exactly: no coercion, nulls and nested
// structures pass through untouched. Fields without a mapping land in
// the unmapped bag when preserveUnmapped is set and are discarded
// otherwise.
func ApplyColumnMapping(itemData map[string]any, mapping map[string]string, preserveUnmapped bool) (mappedData, unmappedData map[string]any) {
	mappedData = make(map[string]any)
	unmappedData = make(map[string]any)

	for sourceID, value := range itemData {
		if targetID, ok := mapping[sourceID]; ok {
			mappedData[targetID] = value
		} else if preserveUnmapped {
			unmappedData[sourceID] = value
		}
	}
	return mappedData, unmappedData
}

func nameTypeKey(name string, colType model.ColumnType) string {
	return strings.ToLower(name) + "_" + string(colType)
}
