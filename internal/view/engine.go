// Package view computes displayed projections of board items: filtering,
// locale-aware sorting and optional group-by bucketing. The engine holds
// no state beyond its collator; every call is a pure function of its
// inputs.
package view

import (
	"sort"
	"time"

	"boardengine/internal/model"
	"boardengine/internal/schema"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Engine struct {
	collator *collate.Collator
}

// New builds an engine collating strings for the given BCP 47 locale tag.
// Unrecognized tags fall back to the root collation.
func New(locale string) *Engine {
	return &Engine{collator: collate.New(language.Make(locale))}
}

// Config is the view configuration applied to an item set.
type Config struct {
	Filters []model.BoardFilter
	Sort    *model.SortConfig
	// GroupBy buckets the result by one column's value, on top of (not
	// instead of) native group membership.
	GroupBy string
}

// Apply filters and sorts items according to cfg. The input slice is not
// modified; sorting is stable, so equal keys keep their incoming order.
func (e *Engine) Apply(items []model.BoardItem, columns []model.BoardColumn, cfg Config) []model.BoardItem {
	result := make([]model.BoardItem, 0, len(items))
	for _, item := range items {
		if e.matchesAll(item, columns, cfg.Filters) {
			result = append(result, item)
		}
	}

	if cfg.Sort != nil && cfg.Sort.Direction != model.SortUnset {
		e.sortItems(result, columns, *cfg.Sort)
	}
	return result
}

// Bucket is one group-by partition, keyed by the column value's string
// form. Items with no value land in the empty-key bucket.
type Bucket struct {
	Key   string
	Items []model.BoardItem
}

// Group partitions an already filtered/sorted sequence by one column's
// value, preserving order within and across buckets (first-seen order).
func (e *Engine) Group(items []model.BoardItem, columns []model.BoardColumn, columnID string) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, item := range items {
		value, _ := fieldValue(item, columnID, columns)
		key := stringForm(value)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Items = append(buckets[i].Items, item)
	}
	return buckets
}

func (e *Engine) sortItems(items []model.BoardItem, columns []model.BoardColumn, cfg model.SortConfig) {
	class := columnClass(cfg.ColumnID, columns)
	desc := cfg.Direction == model.SortDesc

	sort.SliceStable(items, func(i, j int) bool {
		av, _ := fieldValue(items[i], cfg.ColumnID, columns)
		bv, _ := fieldValue(items[j], cfg.ColumnID, columns)

		aNull := isNull(av)
		bNull := isNull(bv)
		// Null values sort last regardless of direction.
		if aNull || bNull {
			return !aNull && bNull
		}

		cmp := e.compare(av, bv, class)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compare dispatches on the statically-known class of the column, never
// on runtime inspection of the values.
func (e *Engine) compare(a, b any, class schema.ValueClass) int {
	switch class {
	case schema.ClassNumber:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if aok && bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	case schema.ClassDate:
		at, aok := toTime(a)
		bt, bok := toTime(b)
		if aok && bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	case schema.ClassText:
		as, aok := a.(string)
		bs, bok := b.(string)
		if aok && bok {
			return e.collator.CompareString(as, bs)
		}
	}
	// Any other shape falls back to string-form comparison.
	return e.collator.CompareString(stringForm(a), stringForm(b))
}

func columnClass(columnID string, columns []model.BoardColumn) schema.ValueClass {
	if class, ok := builtinClass(columnID); ok {
		return class
	}
	for _, col := range columns {
		if col.ColumnID == columnID {
			if h, err := schema.HandlerFor(col.ColumnType); err == nil {
				return h.Class()
			}
			break
		}
	}
	return schema.ClassText
}

// builtinClass covers the denormalized item fields addressable by views
// alongside schema columns.
func builtinClass(columnID string) (schema.ValueClass, bool) {
	switch columnID {
	case "name", "status", "assigned_to":
		return schema.ClassText, true
	case "priority":
		return schema.ClassNumber, true
	case "due_date":
		return schema.ClassDate, true
	}
	return 0, false
}

// fieldValue resolves a column id against an item. known is false when
// the id is neither a builtin field nor a declared column, which makes
// filters on it fail closed.
func fieldValue(item model.BoardItem, columnID string, columns []model.BoardColumn) (value any, known bool) {
	switch columnID {
	case "name":
		return item.Name, true
	case "status":
		return item.Status, true
	case "priority":
		return item.Priority, true
	case "assigned_to":
		if item.AssignedTo == nil {
			return nil, true
		}
		return item.AssignedTo.String(), true
	case "due_date":
		if item.DueDate == nil {
			return nil, true
		}
		return *item.DueDate, true
	}
	for _, col := range columns {
		if col.ColumnID == columnID {
			return item.Data[columnID], true
		}
	}
	return nil, false
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseDate(t)
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	return schema.ParseDate(s)
}
