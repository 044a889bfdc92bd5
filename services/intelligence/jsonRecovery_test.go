package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON_MissingCommaBetweenArrayObjects(t *testing.T) {
	out := RecoverJSON(`{"a":[{"x":1}{"y":2}]}`)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]interface{}{
		"a": []interface{}{
			map[string]interface{}{"x": float64(1)},
			map[string]interface{}{"y": float64(2)},
		},
	}, got)
}

func TestRecoverJSON_LastFencedBlockWins(t *testing.T) {
	raw := "Схема ответа:\n```json\n{\"vendors\": \"array\", \"eventConcept\": \"string\", \"estimatedCosts\": \"array of objects with a long description\"}\n```\n" +
		"Ответ:\n```json\n{\"eventConcept\": \"Пиратская вечеринка\"}\n```"

	out := RecoverJSON(raw)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]interface{}{"eventConcept": "Пиратская вечеринка"}, got)
}

func TestRecoverJSON_LongestObjectWins(t *testing.T) {
	raw := `Пример: {"a":1} а вот ответ: {"a":1,"b":{"c":2}} спасибо`
	assert.Equal(t, `{"a":1,"b":{"c":2}}`, RecoverJSON(raw))
}

func TestRecoverJSON_Repairs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing comma in object", `{"a":1,}`, `{"a":1}`},
		{"trailing comma in array", `{"a":[1,2,]}`, `{"a":[1,2]}`},
		{"double comma", `{"a":1,,"b":2}`, `{"a":1,"b":2}`},
		{"markdown bold inside value", `{"a":"**важно**"}`, `{"a":"важно"}`},
		{"generic fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"stray closing brace before object", `} {"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecoverJSON(tt.in))
		})
	}
}

func TestRecoverJSON_NoObject(t *testing.T) {
	assert.Equal(t, "просто текст", RecoverJSON("  просто текст \n"))
	assert.Equal(t, "", RecoverJSON(""))
}

func TestRecoverJSON_TruncatedObject(t *testing.T) {
	assert.Equal(t, `{"a":1,"b":{"c":2}`, RecoverJSON(`ответ: {"a":1,"b":{"c":2}`))
}

func TestRepairStructureFully_CollapsesCommaRuns(t *testing.T) {
	assert.Equal(t, `[1,2]`, repairStructureFully(`[1,,,2]`))
	assert.Equal(t, `[{"a":1},{"b":2}]`, repairStructureFully(`[{"a":1}{"b":2},]`))
}
