package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"boardengine/internal/apperr"
	"boardengine/internal/model"
)

// ValueClass drives how the view engine compares two values of a column.
type ValueClass int

const (
	ClassText ValueClass = iota
	ClassNumber
	ClassDate
	ClassBool
)

// ValueHandler is implemented once per column type. Validation is shallow
// by contract: it checks the type tag of the value, not its structure.
type ValueHandler interface {
	Class() ValueClass
	Validate(v any) error
}

type textHandler struct{}

func (textHandler) Class() ValueClass { return ClassText }
func (textHandler) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(string); !ok {
		return apperr.Validation(fmt.Sprintf("expected string value, got %T", v))
	}
	return nil
}

type numberHandler struct{}

func (numberHandler) Class() ValueClass { return ClassNumber }
func (numberHandler) Validate(v any) error {
	switch v.(type) {
	case nil, float64, float32, int, int32, int64, json.Number:
		return nil
	}
	return apperr.Validation(fmt.Sprintf("expected numeric value, got %T", v))
}

type dateHandler struct{}

func (dateHandler) Class() ValueClass { return ClassDate }
func (dateHandler) Validate(v any) error {
	switch val := v.(type) {
	case nil, time.Time:
		return nil
	case string:
		if _, ok := ParseDate(val); !ok {
			return apperr.Validation("expected a date string")
		}
		return nil
	}
	return apperr.Validation(fmt.Sprintf("expected date value, got %T", v))
}

type dateRangeHandler struct{}

func (dateRangeHandler) Class() ValueClass { return ClassDate }
func (dateRangeHandler) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(map[string]any); !ok {
		return apperr.Validation(fmt.Sprintf("expected date range object, got %T", v))
	}
	return nil
}

type boolHandler struct{}

func (boolHandler) Class() ValueClass { return ClassBool }
func (boolHandler) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(bool); !ok {
		return apperr.Validation(fmt.Sprintf("expected boolean value, got %T", v))
	}
	return nil
}

type listHandler struct{}

func (listHandler) Class() ValueClass { return ClassText }
func (listHandler) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.([]any); !ok {
		return apperr.Validation(fmt.Sprintf("expected list value, got %T", v))
	}
	return nil
}

// computedHandler covers column types that render derived content and
// store nothing on the item.
type computedHandler struct{}

func (computedHandler) Class() ValueClass { return ClassText }
func (computedHandler) Validate(v any) error {
	if v == nil {
		return nil
	}
	return apperr.Validation("column holds no stored value")
}

// handlers is the exhaustive dispatch table over model.ColumnType.
var handlers = map[model.ColumnType]ValueHandler{
	model.ColumnText:           textHandler{},
	model.ColumnStatus:         textHandler{},
	model.ColumnPerson:         textHandler{},
	model.ColumnDate:           dateHandler{},
	model.ColumnDateRange:      dateRangeHandler{},
	model.ColumnNumber:         numberHandler{},
	model.ColumnLocation:       textHandler{},
	model.ColumnRoute:          textHandler{},
	model.ColumnCompany:        textHandler{},
	model.ColumnCompanyAddress: textHandler{},
	model.ColumnServiceType:    textHandler{},
	model.ColumnCheckbox:       boolHandler{},
	model.ColumnPhone:          textHandler{},
	model.ColumnFiles:          listHandler{},
	model.ColumnUpdates:        computedHandler{},
	model.ColumnActions:        computedHandler{},
}

// HandlerFor returns the value handler of a column type.
func HandlerFor(t model.ColumnType) (ValueHandler, error) {
	h, ok := handlers[t]
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown column type %q", t))
	}
	return h, nil
}

// ValidateValue checks that v is shaped for a column of type t.
func ValidateValue(t model.ColumnType, v any) error {
	h, err := HandlerFor(t)
	if err != nil {
		return err
	}
	return h.Validate(v)
}

// dateLayouts covers the wire forms date columns arrive in.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDate parses a date value in any accepted layout.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
