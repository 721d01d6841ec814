package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONValue_EncodesEveryValueAsJSON(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"string stays quoted", "123", `"123"`},
		{"string true stays quoted", "true", `"true"`},
		{"string null stays quoted", "null", `"null"`},
		{"plain text", "Route 7 audit", `"Route 7 audit"`},
		{"number", 42.0, "42"},
		{"bool", true, "true"},
		{"nil present", nil, "null"},
		{"object", map[string]any{"start": "2026-03-01"}, `{"start":"2026-03-01"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := jsonValue(tc.value, true)
			if assert.NotNil(t, got) {
				assert.Equal(t, tc.want, *got)
			}
		})
	}
}

func TestJSONValue_AbsentValueStaysNil(t *testing.T) {
	assert.Nil(t, jsonValue(nil, false))
}
