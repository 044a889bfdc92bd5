package ai

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator checks parsed JSON against one of the recognized response shapes.
// Extra fields are ignored so newer model outputs stay compatible.
type SchemaValidator struct {
	Name     string
	document map[string]interface{}
	schema   *gojsonschema.Schema
}

// BookingIntentShape is the shape of booking data emitted as free-text JSON.
var BookingIntentShape = mustShape("booking-intent", object(
	map[string]interface{}{
		"shouldBook":   prop("boolean"),
		"eventType":    prop("string"),
		"date":         prop("string"),
		"guestsCount":  prop("string"),
		"budget":       prop("string"),
		"city":         prop("string"),
		"description":  prop("string"),
		"dishes":       prop("string"),
		"otherDetails": prop("string"),
	},
	"shouldBook",
))

// VendorSearchResultShape is the shape of the vendor recommendation answer.
var VendorSearchResultShape = mustShape("vendor-search-result", object(
	map[string]interface{}{
		"vendors": array(object(
			map[string]interface{}{
				"vendorId":       prop("integer"),
				"relevanceScore": bounded("number", 0, 10),
				"reason":         prop("string"),
				"estimatedPrice": prop("number"),
			},
			"vendorId", "relevanceScore", "reason",
		)),
		"eventConcept": prop("string"),
		"estimatedCosts": array(object(
			map[string]interface{}{
				"category":       prop("string"),
				"estimatedPrice": prop("number"),
				"notes":          prop("string"),
			},
			"category", "estimatedPrice",
		)),
		"needsClarification":    prop("boolean"),
		"clarificationQuestion": prop("string"),
	},
	"vendors", "eventConcept", "estimatedCosts",
))

func prop(kind string) map[string]interface{} {
	return map[string]interface{}{"type": kind}
}

func bounded(kind string, min, max float64) map[string]interface{} {
	return map[string]interface{}{"type": kind, "minimum": min, "maximum": max}
}

func array(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	req := make([]interface{}, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   req,
	}
}

func mustShape(name string, document map[string]interface{}) *SchemaValidator {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(document))
	if err != nil {
		panic(fmt.Sprintf("invalid %s schema: %v", name, err))
	}
	return &SchemaValidator{Name: name, document: document, schema: schema}
}

// Validate returns nil when value matches the shape, or a *ValidationError describing
// the first failing field (ordered by path).
func (s *SchemaValidator) Validate(value interface{}) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return &ValidationError{Expected: "object", Actual: "unloadable document", Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	sort.SliceStable(errs, func(i, j int) bool {
		return resultPath(errs[i]) < resultPath(errs[j])
	})
	return toValidationError(errs[0])
}

// resultPath is the dotted path of the failing field. Required errors are reported on
// the parent object, so the missing property is appended.
func resultPath(e gojsonschema.ResultError) string {
	path := strings.TrimPrefix(strings.TrimPrefix(e.Context().String(), "(root)"), ".")
	if e.Type() != "required" {
		return path
	}
	property, _ := e.Details()["property"].(string)
	if property == "" {
		return path
	}
	if path == "" {
		return property
	}
	return path + "." + property
}

func toValidationError(e gojsonschema.ResultError) *ValidationError {
	verr := &ValidationError{Path: resultPath(e), Message: e.Description()}
	details := e.Details()
	switch e.Type() {
	case "required":
		verr.Expected, verr.Actual = "present", "missing"
	case "invalid_type":
		verr.Expected = fmt.Sprint(details["expected"])
		verr.Actual = fmt.Sprint(details["given"])
	default:
		verr.Expected = e.Description()
		verr.Actual = fmt.Sprint(e.Value())
	}
	return verr
}

// coerce converts scalar kinds in value toward what the shape declares. It is only used
// by the permissive fallback, so a value it cannot fix is left for Validate to reject.
func (s *SchemaValidator) coerce(value interface{}) interface{} {
	return coerceNode(value, s.document)
}

func coerceNode(value interface{}, node map[string]interface{}) interface{} {
	kind, _ := node["type"].(string)
	switch kind {
	case "object":
		return coerceObject(value, node)
	case "array":
		items, _ := node["items"].(map[string]interface{})
		list, ok := value.([]interface{})
		if !ok {
			if single, isObj := value.(map[string]interface{}); isObj {
				list = []interface{}{single}
			} else {
				return value
			}
		}
		for i := range list {
			list[i] = coerceNode(list[i], items)
		}
		return list
	case "number", "integer":
		return coerceNumber(value, node, kind == "integer")
	case "string":
		switch v := value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	case "boolean":
		if v, ok := value.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(v))); err == nil {
				return b
			}
		}
	}
	return value
}

func coerceObject(value interface{}, node map[string]interface{}) interface{} {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	properties, _ := node["properties"].(map[string]interface{})
	required := map[string]bool{}
	if list, ok := node["required"].([]interface{}); ok {
		for _, r := range list {
			required[fmt.Sprint(r)] = true
		}
	}
	for key, raw := range properties {
		child, _ := raw.(map[string]interface{})
		v, present := obj[key]
		if !present {
			continue
		}
		if v == nil {
			if child["type"] == "string" {
				obj[key] = ""
			} else if !required[key] {
				delete(obj, key)
			}
			continue
		}
		obj[key] = coerceNode(v, child)
	}
	return obj
}

func coerceNumber(value interface{}, node map[string]interface{}, integer bool) interface{} {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case string:
		digits := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			if r == ',' {
				return '.'
			}
			return -1
		}, v)
		parsed, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return value
		}
		n = parsed
	default:
		return value
	}
	if min, ok := node["minimum"].(float64); ok && n < min {
		n = min
	}
	if max, ok := node["maximum"].(float64); ok && n > max {
		n = max
	}
	if integer {
		n = math.Round(n)
	}
	return n
}
