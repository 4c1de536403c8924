package domain

// OperandKind distinguishes column references from literal values inside a
// predicate.
type OperandKind string

// Operand kinds.
const (
	OperandColumn  OperandKind = "column"
	OperandLiteral OperandKind = "literal"
)

// Operand is one side of a predicate: a column reference, a single literal,
// or (for IN) a literal list.
type Operand struct {
	Kind   OperandKind `json:"kind"`
	Value  string      `json:"value,omitempty"`
	Values []string    `json:"values,omitempty"`
}

// Col builds a column-reference operand.
func Col(name string) Operand {
	return Operand{Kind: OperandColumn, Value: name}
}

// Lit builds a single-literal operand.
func Lit(value string) Operand {
	return Operand{Kind: OperandLiteral, Value: value}
}

// LitList builds a literal-list operand for IN predicates.
func LitList(values ...string) Operand {
	return Operand{Kind: OperandLiteral, Values: values}
}

// IsList reports whether the operand carries a literal list.
func (o Operand) IsList() bool { return len(o.Values) > 0 }

// Joiner connects a predicate to the one before it within a group.
type Joiner string

// Joiners.
const (
	JoinAnd Joiner = "AND"
	JoinOr  Joiner = "OR"
)

// Predicate is one comparison inside a predicate group. JoinToNext holds the
// joiner that connects this predicate to the previous one; the first
// predicate's joiner is ignored.
type Predicate struct {
	Left       Operand       `json:"left"`
	Op         FieldOperator `json:"op"`
	Right      Operand       `json:"right"`
	JoinToNext Joiner        `json:"join_to_next,omitempty"`
}

// PredicateGroup is one WHEN clause: AND/OR-combined predicates plus the
// value produced when the group matches.
type PredicateGroup struct {
	Predicates []Predicate `json:"predicates"`
	Then       string      `json:"then"`
}

// CaseSpec is the structured form of a CASE expression: ordered predicate
// groups, an optional ELSE literal, and the output column name.
type CaseSpec struct {
	Target string           `json:"target"`
	Groups []PredicateGroup `json:"groups"`
	Else   *string          `json:"else,omitempty"`
}
