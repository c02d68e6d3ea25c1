package record

import (
	"fmt"

	"crm-reports/internal/features/schema"

	"github.com/d5/tengo/v2"
)

// exprEvaluator runs one derived field's Tengo expression against
// materialized rows. The script is compiled once; per-row evaluation
// only swaps variable values.
type exprEvaluator struct {
	field    schema.Field
	inputs   []string
	compiled *tengo.Compiled
}

func newExprEvaluator(section schema.Section, field schema.Field) (*exprEvaluator, error) {
	src := fmt.Sprintf("__result__ := %s", field.Expr)
	script := tengo.NewScript([]byte(src))

	// Every stored numeric field of the section is addressable from
	// the expression; unused ones cost nothing.
	inputs := make([]string, 0, len(section.Fields))
	for _, f := range section.Fields {
		if f.IsDerived() || !f.IsNumeric() {
			continue
		}
		if err := script.Add(f.Name, 0.0); err != nil {
			return nil, fmt.Errorf("derived field %q: %w", field.Name, err)
		}
		inputs = append(inputs, f.Name)
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("derived field %q: %w", field.Name, err)
	}

	return &exprEvaluator{field: field, inputs: inputs, compiled: compiled}, nil
}

// eval computes the derived value for one row. Absent or non-numeric
// inputs count as zero.
func (e *exprEvaluator) eval(row map[string]interface{}) (interface{}, error) {
	c := e.compiled.Clone()

	for _, name := range e.inputs {
		if err := c.Set(name, numericOrZero(row[name])); err != nil {
			return nil, err
		}
	}

	if err := c.Run(); err != nil {
		return nil, err
	}

	result := c.Get("__result__").Value()
	switch v := result.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return result, nil
	}
}

func numericOrZero(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
