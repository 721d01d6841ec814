package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"boardengine/internal/model"
)

// matchesAll combines filters with logical AND.
func (e *Engine) matchesAll(item model.BoardItem, columns []model.BoardColumn, filters []model.BoardFilter) bool {
	for _, f := range filters {
		if !e.matches(item, columns, f) {
			return false
		}
	}
	return true
}

// matches evaluates a single filter. An unknown operator or column makes
// the filter non-matching for every row rather than an error.
func (e *Engine) matches(item model.BoardItem, columns []model.BoardColumn, f model.BoardFilter) bool {
	value, known := fieldValue(item, f.ColumnID, columns)
	if !known {
		return false
	}

	switch f.Operator {
	case model.OpEquals:
		return strings.EqualFold(stringForm(value), stringForm(f.Value))
	case model.OpNotEquals:
		return !strings.EqualFold(stringForm(value), stringForm(f.Value))
	case model.OpContains:
		return strings.Contains(lowerForm(value), lowerForm(f.Value))
	case model.OpNotContains:
		return !strings.Contains(lowerForm(value), lowerForm(f.Value))
	case model.OpStartsWith:
		return strings.HasPrefix(lowerForm(value), lowerForm(f.Value))
	case model.OpEndsWith:
		return strings.HasSuffix(lowerForm(value), lowerForm(f.Value))
	case model.OpIsEmpty:
		return isNull(value)
	case model.OpIsNotEmpty:
		return !isNull(value)
	case model.OpGreaterThan:
		return numericCompare(value, f.Value, func(a, b float64) bool { return a > b })
	case model.OpLessThan:
		return numericCompare(value, f.Value, func(a, b float64) bool { return a < b })
	case model.OpGreaterThanOrEqual:
		return numericCompare(value, f.Value, func(a, b float64) bool { return a >= b })
	case model.OpLessThanOrEqual:
		return numericCompare(value, f.Value, func(a, b float64) bool { return a <= b })
	case model.OpIsOneOf:
		return inSet(value, f.Value)
	case model.OpIsNotOneOf:
		return !isNull(value) && !inSet(value, f.Value)
	case model.OpDateIs:
		return dateCompare(value, f.Value, func(a, b time.Time) bool {
			return a.Truncate(24 * time.Hour).Equal(b.Truncate(24 * time.Hour))
		})
	case model.OpDateBefore:
		return dateCompare(value, f.Value, func(a, b time.Time) bool { return a.Before(b) })
	case model.OpDateAfter:
		return dateCompare(value, f.Value, func(a, b time.Time) bool { return a.After(b) })
	case model.OpDateBetween:
		return dateBetween(value, f.Value)
	case model.OpIsChecked:
		return value == true
	case model.OpIsNotChecked:
		return value != true
	}
	// Fail closed on operators this engine does not know.
	return false
}

func numericCompare(value, filterValue any, cmp func(a, b float64) bool) bool {
	a, aok := numericForm(value)
	b, bok := numericForm(filterValue)
	return aok && bok && cmp(a, b)
}

func dateCompare(value, filterValue any, cmp func(a, b time.Time) bool) bool {
	a, aok := toTime(value)
	b, bok := toTime(filterValue)
	return aok && bok && cmp(a, b)
}

func dateBetween(value, filterValue any) bool {
	bounds, ok := filterValue.([]any)
	if !ok || len(bounds) != 2 {
		return false
	}
	v, vok := toTime(value)
	lo, look := toTime(bounds[0])
	hi, hiok := toTime(bounds[1])
	return vok && look && hiok && !v.Before(lo) && !v.After(hi)
}

func inSet(value, filterValue any) bool {
	set, ok := filterValue.([]any)
	if !ok {
		return false
	}
	needle := lowerForm(value)
	for _, member := range set {
		if lowerForm(member) == needle {
			return true
		}
	}
	return false
}

func numericForm(v any) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func stringForm(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func lowerForm(v any) string {
	return strings.ToLower(stringForm(v))
}
