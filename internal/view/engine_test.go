package view_test

import (
	"testing"
	"time"

	"boardengine/internal/model"
	"boardengine/internal/view"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func testColumns() []model.BoardColumn {
	return []model.BoardColumn{
		{BoardType: model.BoardTypeCustom, ColumnID: "title", ColumnName: "Title", ColumnType: model.ColumnText, Position: 0},
		{BoardType: model.BoardTypeCustom, ColumnID: "amount", ColumnName: "Amount", ColumnType: model.ColumnNumber, Position: 1},
		{BoardType: model.BoardTypeCustom, ColumnID: "visit", ColumnName: "Visit", ColumnType: model.ColumnDate, Position: 2},
		{BoardType: model.BoardTypeCustom, ColumnID: "active", ColumnName: "Active", ColumnType: model.ColumnCheckbox, Position: 3},
	}
}

func item(name string, data map[string]any) model.BoardItem {
	return model.BoardItem{
		ID:   uuid.New(),
		Name: name,
		Data: datatypes.JSONMap(data),
	}
}

func names(items []model.BoardItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestApply_SortAscending_NullsLast(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("c", map[string]any{"amount": 30.0}),
		item("empty", map[string]any{}),
		item("a", map[string]any{"amount": 10.0}),
		item("b", map[string]any{"amount": 20.0}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Sort: &model.SortConfig{ColumnID: "amount", Direction: model.SortAsc},
	})

	assert.Equal(t, []string{"a", "b", "c", "empty"}, names(result))
}

func TestApply_SortDescending_NullsStillLast(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("empty", map[string]any{}),
		item("a", map[string]any{"amount": 10.0}),
		item("c", map[string]any{"amount": 30.0}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Sort: &model.SortConfig{ColumnID: "amount", Direction: model.SortDesc},
	})

	assert.Equal(t, []string{"c", "a", "empty"}, names(result))
}

func TestApply_SortIsStable(t *testing.T) {
	engine := view.New("en")
	// Three items share the same key; their relative order must survive.
	items := []model.BoardItem{
		item("first", map[string]any{"amount": 5.0}),
		item("second", map[string]any{"amount": 5.0}),
		item("third", map[string]any{"amount": 5.0}),
		item("zeroth", map[string]any{"amount": 1.0}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Sort: &model.SortConfig{ColumnID: "amount", Direction: model.SortAsc},
	})

	assert.Equal(t, []string{"zeroth", "first", "second", "third"}, names(result))
}

func TestApply_SortDates_ByInstant(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("later", map[string]any{"visit": "2025-06-02"}),
		item("earlier", map[string]any{"visit": "2025-06-01"}),
		item("missing", map[string]any{}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Sort: &model.SortConfig{ColumnID: "visit", Direction: model.SortAsc},
	})

	assert.Equal(t, []string{"earlier", "later", "missing"}, names(result))
}

func TestApply_SortText_UsesCollation(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("2", map[string]any{"title": "banana"}),
		item("1", map[string]any{"title": "Apple"}),
		item("3", map[string]any{"title": "cherry"}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Sort: &model.SortConfig{ColumnID: "title", Direction: model.SortAsc},
	})

	// Case-insensitive linguistic ordering, unlike byte ordering where
	// uppercase letters would all sort first.
	assert.Equal(t, []string{"1", "2", "3"}, names(result))
}

func TestNextSortDirection_Cycles(t *testing.T) {
	direction := model.SortUnset

	direction = model.NextSortDirection(direction)
	assert.Equal(t, model.SortAsc, direction)

	direction = model.NextSortDirection(direction)
	assert.Equal(t, model.SortDesc, direction)

	direction = model.NextSortDirection(direction)
	assert.Equal(t, model.SortUnset, direction)
}

func TestApply_FiltersCombineWithAnd(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("match", map[string]any{"title": "Route North", "amount": 12.0}),
		item("wrong-title", map[string]any{"title": "Depot", "amount": 12.0}),
		item("wrong-amount", map[string]any{"title": "Route South", "amount": 2.0}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Filters: []model.BoardFilter{
			{ColumnID: "title", Operator: model.OpStartsWith, Value: "route"},
			{ColumnID: "amount", Operator: model.OpGreaterThan, Value: 10.0},
		},
	})

	assert.Equal(t, []string{"match"}, names(result))
}

func TestApply_FilterOperators(t *testing.T) {
	engine := view.New("en")
	due := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	target := model.BoardItem{
		ID:      uuid.New(),
		Name:    "Inspection 7",
		Status:  model.StatusPending,
		DueDate: &due,
		Data: datatypes.JSONMap{
			"title":  "Harbor inspection",
			"amount": 42.0,
			"visit":  "2025-06-15",
			"active": true,
		},
	}

	cases := []struct {
		name   string
		filter model.BoardFilter
		want   bool
	}{
		{"equals ignores case", model.BoardFilter{ColumnID: "status", Operator: model.OpEquals, Value: "PENDING"}, true},
		{"not_equals", model.BoardFilter{ColumnID: "status", Operator: model.OpNotEquals, Value: "done"}, true},
		{"contains", model.BoardFilter{ColumnID: "title", Operator: model.OpContains, Value: "harbor"}, true},
		{"not_contains", model.BoardFilter{ColumnID: "title", Operator: model.OpNotContains, Value: "depot"}, true},
		{"ends_with", model.BoardFilter{ColumnID: "title", Operator: model.OpEndsWith, Value: "inspection"}, true},
		{"is_empty on set value", model.BoardFilter{ColumnID: "title", Operator: model.OpIsEmpty}, false},
		{"is_not_empty", model.BoardFilter{ColumnID: "title", Operator: model.OpIsNotEmpty}, true},
		{"greater_than_or_equal", model.BoardFilter{ColumnID: "amount", Operator: model.OpGreaterThanOrEqual, Value: 42.0}, true},
		{"less_than fails", model.BoardFilter{ColumnID: "amount", Operator: model.OpLessThan, Value: 42.0}, false},
		{"is_one_of", model.BoardFilter{ColumnID: "status", Operator: model.OpIsOneOf, Value: []any{"pending", "stuck"}}, true},
		{"is_not_one_of", model.BoardFilter{ColumnID: "status", Operator: model.OpIsNotOneOf, Value: []any{"done"}}, true},
		{"date_is", model.BoardFilter{ColumnID: "visit", Operator: model.OpDateIs, Value: "2025-06-15"}, true},
		{"date_before fails on same day", model.BoardFilter{ColumnID: "visit", Operator: model.OpDateBefore, Value: "2025-06-15"}, false},
		{"date_after", model.BoardFilter{ColumnID: "visit", Operator: model.OpDateAfter, Value: "2025-06-01"}, true},
		{"date_between", model.BoardFilter{ColumnID: "visit", Operator: model.OpDateBetween, Value: []any{"2025-06-01", "2025-06-30"}}, true},
		{"is_checked", model.BoardFilter{ColumnID: "active", Operator: model.OpIsChecked}, true},
		{"builtin due_date", model.BoardFilter{ColumnID: "due_date", Operator: model.OpDateIs, Value: "2025-06-15"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.Apply([]model.BoardItem{target}, testColumns(), view.Config{
				Filters: []model.BoardFilter{tc.filter},
			})
			if tc.want {
				assert.Len(t, result, 1)
			} else {
				assert.Empty(t, result)
			}
		})
	}
}

func TestApply_UnknownOperatorFailsClosed(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("a", map[string]any{"title": "anything"}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Filters: []model.BoardFilter{
			{ColumnID: "title", Operator: "fuzzy_match", Value: "anything"},
		},
	})

	assert.Empty(t, result)
}

func TestApply_UnknownColumnFailsClosed(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("a", map[string]any{"title": "anything"}),
	}

	result := engine.Apply(items, testColumns(), view.Config{
		Filters: []model.BoardFilter{
			{ColumnID: "no_such_column", Operator: model.OpIsEmpty},
		},
	})

	assert.Empty(t, result)
}

func TestGroup_BucketsInFirstSeenOrder(t *testing.T) {
	engine := view.New("en")
	items := []model.BoardItem{
		item("a", map[string]any{"title": "north"}),
		item("b", map[string]any{"title": "south"}),
		item("c", map[string]any{"title": "north"}),
		item("d", map[string]any{}),
	}

	buckets := engine.Group(items, testColumns(), "title")

	assert.Len(t, buckets, 3)
	assert.Equal(t, "north", buckets[0].Key)
	assert.Equal(t, []string{"a", "c"}, names(buckets[0].Items))
	assert.Equal(t, "south", buckets[1].Key)
	assert.Equal(t, "", buckets[2].Key)
	assert.Equal(t, []string{"d"}, names(buckets[2].Items))
}
