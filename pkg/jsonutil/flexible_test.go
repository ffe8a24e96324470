package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{"string", json.RawMessage(`"Order total in USD"`), "Order total in USD"},
		{"integer", json.RawMessage(`42`), "42"},
		{"float", json.RawMessage(`3.5`), "3.5"},
		{"large integer", json.RawMessage(`9007199254740993`), "9007199254740993"},
		{"boolean", json.RawMessage(`true`), "true"},
		{"null", json.RawMessage(`null`), ""},
		{"nil", nil, ""},
		{"whitespace", json.RawMessage("  \n"), ""},
		{"object compacted", json.RawMessage(`{ "a": 1 }`), `{"a":1}`},
		{"array compacted", json.RawMessage(`[1, 2]`), `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestFlexibleString_InStruct(t *testing.T) {
	var out struct {
		Columns []struct {
			Name        string         `json:"name"`
			Description FlexibleString `json:"description"`
		} `json:"columns"`
	}

	err := json.Unmarshal([]byte(`{"columns":[{"name":"a","description":"text"},{"name":"b","description":12},{"name":"c","description":null}]}`), &out)
	require.NoError(t, err)
	require.Len(t, out.Columns, 3)
	assert.Equal(t, FlexibleString("text"), out.Columns[0].Description)
	assert.Equal(t, FlexibleString("12"), out.Columns[1].Description)
	assert.Equal(t, FlexibleString(""), out.Columns[2].Description)
}
