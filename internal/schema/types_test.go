package schema_test

import (
	"testing"
	"time"

	"boardengine/internal/model"
	"boardengine/internal/schema"

	"github.com/stretchr/testify/assert"
)

func TestValidateValue(t *testing.T) {
	cases := []struct {
		name       string
		columnType model.ColumnType
		value      any
		wantErr    bool
	}{
		{"text accepts string", model.ColumnText, "Route 7 audit", false},
		{"text accepts nil", model.ColumnText, nil, false},
		{"text rejects number", model.ColumnText, 42.0, true},
		{"text rejects bool", model.ColumnText, true, true},
		{"status accepts string", model.ColumnStatus, "working_on_it", false},
		{"person accepts string", model.ColumnPerson, "b9a6a1f0-0000-0000-0000-000000000000", false},
		{"number accepts float64", model.ColumnNumber, 3.5, false},
		{"number accepts int", model.ColumnNumber, 7, false},
		{"number accepts nil", model.ColumnNumber, nil, false},
		{"number rejects string", model.ColumnNumber, "7", true},
		{"date accepts time.Time", model.ColumnDate, time.Now(), false},
		{"date accepts RFC3339 string", model.ColumnDate, "2026-03-01T10:00:00Z", false},
		{"date accepts plain date string", model.ColumnDate, "2026-03-01", false},
		{"date rejects non-date string", model.ColumnDate, "next tuesday", true},
		{"date rejects number", model.ColumnDate, 1234.0, true},
		{"date_range accepts object", model.ColumnDateRange, map[string]any{"start": "2026-03-01", "end": "2026-03-05"}, false},
		{"date_range rejects string", model.ColumnDateRange, "2026-03-01", true},
		{"checkbox accepts bool", model.ColumnCheckbox, true, false},
		{"checkbox rejects string", model.ColumnCheckbox, "true", true},
		{"phone accepts string", model.ColumnPhone, "+995 555 123456", false},
		{"files accepts list", model.ColumnFiles, []any{"report.pdf"}, false},
		{"files rejects string", model.ColumnFiles, "report.pdf", true},
		{"updates rejects stored value", model.ColumnUpdates, "anything", true},
		{"updates accepts nil", model.ColumnUpdates, nil, false},
		{"actions rejects stored value", model.ColumnActions, []any{}, true},
		{"unknown type rejects everything", model.ColumnType("hologram"), "x", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := schema.ValidateValue(tc.columnType, tc.value)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandlerFor_UnknownType(t *testing.T) {
	handler, err := schema.HandlerFor(model.ColumnType("hologram"))
	assert.Nil(t, handler)
	assert.Error(t, err)
}

func TestHandlerFor_CoversEveryColumnType(t *testing.T) {
	types := []model.ColumnType{
		model.ColumnText, model.ColumnStatus, model.ColumnPerson,
		model.ColumnDate, model.ColumnDateRange, model.ColumnNumber,
		model.ColumnLocation, model.ColumnRoute, model.ColumnCompany,
		model.ColumnCompanyAddress, model.ColumnServiceType,
		model.ColumnCheckbox, model.ColumnPhone, model.ColumnFiles,
		model.ColumnUpdates, model.ColumnActions,
	}
	for _, columnType := range types {
		handler, err := schema.HandlerFor(columnType)
		assert.NoError(t, err, "column type %q", columnType)
		assert.NotNil(t, handler, "column type %q", columnType)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"RFC3339", "2026-03-01T10:00:00Z", true},
		{"RFC3339 with offset", "2026-03-01T10:00:00+04:00", true},
		{"RFC3339 nano", "2026-03-01T10:00:00.123456789Z", true},
		{"plain date", "2026-03-01", true},
		{"date with time", "2026-03-01 10:00:00", true},
		{"garbage", "not a date", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, ok := schema.ParseDate(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.False(t, parsed.IsZero())
			}
		})
	}
}
