package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeValue(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestBookingIntentShape_Validate(t *testing.T) {
	assert.NoError(t, BookingIntentShape.Validate(decodeValue(t,
		`{"shouldBook":true,"eventType":"Свадьба","unknownField":42}`)))

	err := BookingIntentShape.Validate(decodeValue(t, `{"eventType":"Свадьба"}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "shouldBook", verr.Path)
	assert.Equal(t, "present", verr.Expected)
	assert.Equal(t, "missing", verr.Actual)

	err = BookingIntentShape.Validate(decodeValue(t, `{"shouldBook":"yes"}`))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "shouldBook", verr.Path)
	assert.Equal(t, "boolean", verr.Expected)
	assert.Equal(t, "string", verr.Actual)
}

func TestVendorSearchResultShape_Validate(t *testing.T) {
	valid := `{
		"vendors":[{"vendorId":1,"relevanceScore":9.5,"reason":"рядом"}],
		"eventConcept":"Пираты",
		"estimatedCosts":[{"category":"Декор","estimatedPrice":30000}]
	}`
	assert.NoError(t, VendorSearchResultShape.Validate(decodeValue(t, valid)))

	tests := []struct {
		name string
		doc  string
		path string
	}{
		{
			name: "missing nested required",
			doc:  `{"vendors":[{"vendorId":1,"relevanceScore":5}],"eventConcept":"x","estimatedCosts":[]}`,
			path: "vendors.0.reason",
		},
		{
			name: "score out of range",
			doc:  `{"vendors":[{"vendorId":1,"relevanceScore":11,"reason":"r"}],"eventConcept":"x","estimatedCosts":[]}`,
			path: "vendors.0.relevanceScore",
		},
		{
			name: "price as string",
			doc:  `{"vendors":[],"eventConcept":"x","estimatedCosts":[{"category":"c","estimatedPrice":"много"}]}`,
			path: "estimatedCosts.0.estimatedPrice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VendorSearchResultShape.Validate(decodeValue(t, tt.doc))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidate_FirstFailingFieldIsDeterministic(t *testing.T) {
	doc := decodeValue(t, `{"vendors":"none"}`)
	err := VendorSearchResultShape.Validate(doc)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "estimatedCosts", verr.Path)
}

func TestSchemaValidator_Coerce(t *testing.T) {
	doc := decodeValue(t, `{
		"vendors":[{"vendorId":"3","relevanceScore":"12","reason":"ok","estimatedPrice":null}],
		"eventConcept":"x",
		"estimatedCosts":{"category":"Кейтеринг","estimatedPrice":"45 000 ₽"},
		"needsClarification":"false"
	}`)

	coerced := VendorSearchResultShape.coerce(doc)
	require.NoError(t, VendorSearchResultShape.Validate(coerced))

	obj := coerced.(map[string]interface{})
	vendor := obj["vendors"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(3), vendor["vendorId"])
	assert.Equal(t, float64(10), vendor["relevanceScore"])
	assert.NotContains(t, vendor, "estimatedPrice")
	assert.Equal(t, false, obj["needsClarification"])
	cost := obj["estimatedCosts"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(45000), cost["estimatedPrice"])
}

func TestSchemaValidator_CoerceBookingNumbers(t *testing.T) {
	coerced := BookingIntentShape.coerce(decodeValue(t, `{"shouldBook":"true","guestsCount":8,"budget":100000,"city":null}`))
	require.NoError(t, BookingIntentShape.Validate(coerced))
	obj := coerced.(map[string]interface{})
	assert.Equal(t, true, obj["shouldBook"])
	assert.Equal(t, "8", obj["guestsCount"])
	assert.Equal(t, "100000", obj["budget"])
	assert.Equal(t, "", obj["city"])
}
