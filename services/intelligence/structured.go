package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// RecoveryStrategy names one step of the escalating parse.
type RecoveryStrategy string

const (
	StrategyDirect       RecoveryStrategy = "direct"
	StrategyBraceRepair  RecoveryStrategy = "brace-repair"
	StrategySchemaParser RecoveryStrategy = "schema-parser-fallback"
)

// RecoveryAttempt records one parse attempt for diagnostics.
type RecoveryAttempt struct {
	RawText  string
	Strategy RecoveryStrategy
	Success  bool
	Err      error
}

// StructuredParser turns model text that should be a single JSON object into a
// schema-valid Go value, escalating through three recovery strategies.
type StructuredParser struct {
	logger *zap.Logger
}

// NewStructuredParser creates a parser logging through logger (nil disables logging).
func NewStructuredParser(logger *zap.Logger) *StructuredParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuredParser{logger: logger}
}

// Parse decodes raw into out after validating it against shape. Attempts stop at the
// first success; the returned trace lists every attempt made in order. When all fail
// the error is a *StructuredOutputError.
func (p *StructuredParser) Parse(raw string, shape *SchemaValidator, out interface{}) ([]RecoveryAttempt, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newStructuredOutputError(raw, nil, ErrEmptyCompletion)
	}

	recovered := RecoverJSON(raw)
	steps := []struct {
		strategy RecoveryStrategy
		text     string
		decode   func(string) (interface{}, error)
	}{
		{StrategyDirect, recovered, decodeStrict},
		{StrategyBraceRepair, repairStructureFully(recovered), decodeStrict},
		{StrategySchemaParser, isolateRegion(raw), func(text string) (interface{}, error) {
			return decodePermissive(text, shape)
		}},
	}

	attempts := make([]RecoveryAttempt, 0, len(steps))
	errs := make([]error, 0, len(steps))
	for _, step := range steps {
		err := p.attempt(step.text, step.decode, shape, out)
		attempts = append(attempts, RecoveryAttempt{
			RawText:  step.text,
			Strategy: step.strategy,
			Success:  err == nil,
			Err:      err,
		})
		recoveryAttempts.WithLabelValues(shape.Name, string(step.strategy), outcomeLabel(err)).Inc()
		if err == nil {
			p.logger.Debug("Structured output recovered",
				zap.String("shape", shape.Name), zap.String("strategy", string(step.strategy)))
			return attempts, nil
		}
		p.logger.Debug("Structured output attempt failed",
			zap.String("shape", shape.Name), zap.String("strategy", string(step.strategy)), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", step.strategy, err))
	}

	soe := newStructuredOutputError(raw, attempts, errs...)
	p.logger.Warn("Structured output recovery exhausted",
		zap.String("shape", shape.Name),
		zap.Int("length", soe.TextLength),
		zap.String("preview", soe.Preview))
	return attempts, soe
}

func (p *StructuredParser) attempt(text string, decode func(string) (interface{}, error), shape *SchemaValidator, out interface{}) error {
	value, err := decode(text)
	if err != nil {
		return err
	}
	if err := shape.Validate(value); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("re-encode: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode into %T: %w", out, err)
	}
	return nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "invalid"
	}
	return "unparseable"
}

func decodeStrict(text string) (interface{}, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// decodePermissive tolerates structural noise: it restores missing commas between a
// string value and the next key, lets jsonrepair fix the rest, unwraps {"type","value"}
// pairs and coerces scalars toward the shape.
func decodePermissive(text string, shape *SchemaValidator) (interface{}, error) {
	text = missingKeySepRe.ReplaceAllString(text, `"$1,"$2"$3:`)
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("jsonrepair: %w", err)
	}
	value, err := decodeStrict(repaired)
	if err != nil {
		return nil, err
	}
	return shape.coerce(unwrapTypedValues(value)), nil
}

// isolateRegion cuts the outermost JSON-looking region from raw model text: the last
// fenced json block if any, then from the first '{' to the last '}' (or to the end).
func isolateRegion(raw string) string {
	text := selectFencedBlock(strings.TrimSpace(raw))
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}

// unwrapTypedValues replaces {"type": ..., "value": v} pairs with v. Models sometimes
// echo the schema around each value.
func unwrapTypedValues(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return unwrapTypedValues(value)
			}
		}
		for key, val := range v {
			v[key] = unwrapTypedValues(val)
		}
		return v
	case []interface{}:
		for i, val := range v {
			v[i] = unwrapTypedValues(val)
		}
		return v
	default:
		return data
	}
}
