package domain

// FieldOperator is a comparison operator applied to a field. The set is
// closed; anything else is rejected at the boundary.
type FieldOperator string

// Field operators.
const (
	OpEq          FieldOperator = "eq"
	OpNe          FieldOperator = "ne"
	OpGt          FieldOperator = "gt"
	OpGte         FieldOperator = "gte"
	OpLt          FieldOperator = "lt"
	OpLte         FieldOperator = "lte"
	OpIn          FieldOperator = "in"
	OpNotIn       FieldOperator = "not_in"
	OpLike        FieldOperator = "like"
	OpNotLike     FieldOperator = "not_like"
	OpStartsWith  FieldOperator = "starts_with"
	OpEndsWith    FieldOperator = "ends_with"
	OpContains    FieldOperator = "contains"
	OpNotContains FieldOperator = "not_contains"
	OpIsNull      FieldOperator = "is_null"
	OpIsNotNull   FieldOperator = "is_not_null"
	OpBetween     FieldOperator = "between"
)

// FieldKind classifies a field for operator validation.
type FieldKind string

// Field kinds.
const (
	KindText    FieldKind = "text"
	KindNumber  FieldKind = "number"
	KindDate    FieldKind = "date"
	KindBoolean FieldKind = "boolean"
	KindUnknown FieldKind = "unknown"
)

// OperatorSpec describes the operand shape an operator requires.
type OperatorSpec struct {
	// Operands is the number of operands required: 0, 1, or 2.
	Operands int
	// List reports whether the operand may be a list of values.
	List bool
	// Kinds lists the field kinds the operator is valid for. Empty means
	// unconstrained; unconstrained operators also apply to KindUnknown.
	Kinds []FieldKind
}

var operatorSpecs = map[FieldOperator]OperatorSpec{
	OpEq:          {Operands: 1},
	OpNe:          {Operands: 1},
	OpGt:          {Operands: 1, Kinds: []FieldKind{KindNumber, KindDate}},
	OpGte:         {Operands: 1, Kinds: []FieldKind{KindNumber, KindDate}},
	OpLt:          {Operands: 1, Kinds: []FieldKind{KindNumber, KindDate}},
	OpLte:         {Operands: 1, Kinds: []FieldKind{KindNumber, KindDate}},
	OpIn:          {Operands: 1, List: true},
	OpNotIn:       {Operands: 1, List: true},
	OpLike:        {Operands: 1, Kinds: []FieldKind{KindText}},
	OpNotLike:     {Operands: 1, Kinds: []FieldKind{KindText}},
	OpStartsWith:  {Operands: 1, Kinds: []FieldKind{KindText}},
	OpEndsWith:    {Operands: 1, Kinds: []FieldKind{KindText}},
	OpContains:    {Operands: 1, Kinds: []FieldKind{KindText}},
	OpNotContains: {Operands: 1, Kinds: []FieldKind{KindText}},
	OpIsNull:      {Operands: 0},
	OpIsNotNull:   {Operands: 0},
	OpBetween:     {Operands: 2, Kinds: []FieldKind{KindNumber, KindDate}},
}

// Spec returns the operand requirements for the operator. The second return
// is false for operators outside the closed set.
func (op FieldOperator) Spec() (OperatorSpec, bool) {
	s, ok := operatorSpecs[op]
	return s, ok
}

// ValidFor reports whether the operator applies to fields of the given kind.
// Unconstrained operators apply to every kind including KindUnknown.
func (op FieldOperator) ValidFor(kind FieldKind) bool {
	s, ok := operatorSpecs[op]
	if !ok {
		return false
	}
	if len(s.Kinds) == 0 || kind == KindUnknown {
		return true
	}
	for _, k := range s.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Operators returns the closed operator set in stable order.
func Operators() []FieldOperator {
	return []FieldOperator{
		OpEq, OpNe, OpGt, OpGte, OpLt, OpLte,
		OpIn, OpNotIn, OpLike, OpNotLike,
		OpStartsWith, OpEndsWith, OpContains, OpNotContains,
		OpIsNull, OpIsNotNull, OpBetween,
	}
}
