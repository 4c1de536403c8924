// Package predicate compiles typed filter specifications into SQL WHERE
// fragments. The stringly "field__op" suffix convention is decoded into
// explicit {field, operator, operand} records at the boundary; everything
// past that point works on the typed form.
package predicate

import (
	"fmt"
	"strings"

	"reportsql/internal/dialect"
	"reportsql/internal/domain"
)

// Condition is one typed comparison: a field, an operator from the closed
// set, and an operand (scalar, list, or nil for the 0-operand operators).
type Condition struct {
	Field   string
	Op      domain.FieldOperator
	Operand interface{}
}

// CompileCondition renders one condition as a SQL boolean fragment. The
// operand shape is validated against the operator's spec; violations come
// back as *domain.InvalidOperandError.
func CompileCondition(d *dialect.Dialect, c Condition) (string, error) {
	spec, ok := c.Op.Spec()
	if !ok {
		return "", domain.ErrValidation("unknown operator %q", c.Op)
	}

	col := d.QuoteIdentifier(c.Field)
	list, isList := asList(c.Operand)

	if isList && !spec.List && c.Op != domain.OpBetween {
		return "", domain.ErrInvalidOperand(c.Field, c.Op, "operator does not accept a list")
	}
	if spec.Operands > 0 && c.Operand == nil {
		return "", domain.ErrInvalidOperand(c.Field, c.Op, "operand is required")
	}

	switch c.Op {
	case domain.OpEq:
		return col + " = " + d.QuoteLiteral(c.Operand), nil
	case domain.OpNe:
		return col + " <> " + d.QuoteLiteral(c.Operand), nil
	case domain.OpGt:
		return col + " > " + d.QuoteLiteral(c.Operand), nil
	case domain.OpGte:
		return col + " >= " + d.QuoteLiteral(c.Operand), nil
	case domain.OpLt:
		return col + " < " + d.QuoteLiteral(c.Operand), nil
	case domain.OpLte:
		return col + " <= " + d.QuoteLiteral(c.Operand), nil

	case domain.OpIn, domain.OpNotIn:
		if !isList {
			list = []interface{}{c.Operand}
		}
		return compileInList(d, col, list, c.Op == domain.OpNotIn), nil

	case domain.OpLike:
		return col + " LIKE " + quotePattern(stringOperand(c.Operand)), nil
	case domain.OpNotLike:
		return col + " NOT LIKE " + quotePattern(stringOperand(c.Operand)), nil
	case domain.OpStartsWith:
		return col + " LIKE " + quotePattern(stringOperand(c.Operand)+"%"), nil
	case domain.OpEndsWith:
		return col + " LIKE " + quotePattern("%"+stringOperand(c.Operand)), nil
	case domain.OpContains:
		return col + " LIKE " + quotePattern("%"+stringOperand(c.Operand)+"%"), nil
	case domain.OpNotContains:
		return col + " NOT LIKE " + quotePattern("%"+stringOperand(c.Operand)+"%"), nil

	case domain.OpIsNull:
		return col + " IS NULL", nil
	case domain.OpIsNotNull:
		return col + " IS NOT NULL", nil

	case domain.OpBetween:
		if !isList || len(list) != 2 {
			return "", domain.ErrInvalidOperand(c.Field, c.Op, "exactly two bounds are required")
		}
		return col + " BETWEEN " + d.QuoteLiteral(list[0]) + " AND " + d.QuoteLiteral(list[1]), nil
	}

	return "", domain.ErrValidation("unknown operator %q", c.Op)
}

// compileInList renders an IN/NOT IN list. A single element collapses to
// plain equality; an empty list contributes nothing.
func compileInList(d *dialect.Dialect, col string, list []interface{}, negate bool) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		if negate {
			return col + " <> " + d.QuoteLiteral(list[0])
		}
		return col + " = " + d.QuoteLiteral(list[0])
	}
	quoted := make([]string, 0, len(list))
	for _, v := range list {
		quoted = append(quoted, d.QuoteLiteral(v))
	}
	kw := "IN"
	if negate {
		kw = "NOT IN"
	}
	return col + " " + kw + " (" + strings.Join(quoted, ", ") + ")"
}

// quotePattern single-quotes a LIKE pattern. Patterns are always quoted,
// never subject to the numeric pass-through.
func quotePattern(pattern string) string {
	return "'" + strings.ReplaceAll(pattern, "'", "''") + "'"
}

func stringOperand(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// asList normalizes slice operands to []interface{}.
func asList(v interface{}) ([]interface{}, bool) {
	switch vv := v.(type) {
	case []interface{}:
		return vv, true
	case []string:
		out := make([]interface{}, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(vv))
		for i, n := range vv {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(vv))
		for i, n := range vv {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}
