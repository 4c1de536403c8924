package predicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportsql/internal/dialect"
	"reportsql/internal/domain"
	"reportsql/internal/period"
)

func testOptions() Options {
	return Options{
		Dialect:  dialect.Postgres,
		Now:      time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC),
		Calendar: period.DefaultCalendar(),
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key        string
		wantField  string
		wantSuffix string
	}{
		{key: "amount", wantField: "amount", wantSuffix: ""},
		{key: "amount__gte", wantField: "amount", wantSuffix: "gte"},
		{key: "order_date__date_preset", wantField: "order_date", wantSuffix: "date_preset"},
		{key: "order_date__date_preset_ne", wantField: "order_date", wantSuffix: "date_preset_ne"},
		{key: "name__contains", wantField: "name", wantSuffix: "contains"},
		// Unknown suffixes belong to the field name.
		{key: "my__field", wantField: "my__field", wantSuffix: ""},
		{key: "__gte", wantField: "__gte", wantSuffix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			field, suffix := splitKey(tt.key)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantSuffix, suffix)
		})
	}
}

func TestCompileField(t *testing.T) {
	got, err := CompileField("amount", map[string]interface{}{
		"gte": 10,
		"lt":  100,
	}, testOptions())
	require.NoError(t, err)
	assert.Equal(t, `"amount" >= 10 AND "amount" < 100`, got)
}

func TestCompileFieldSkipsNilEntries(t *testing.T) {
	got, err := CompileField("amount", map[string]interface{}{
		"gte": nil,
		"lt":  nil,
	}, testOptions())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompileWhere(t *testing.T) {
	tests := []struct {
		name string
		spec domain.FilterSpec
		want string
	}{
		{
			name: "empty_spec_no_clause",
			spec: domain.FilterSpec{},
			want: "",
		},
		{
			name: "range_pair",
			spec: domain.FilterSpec{"amount__gte": 10, "amount__lt": 100},
			want: `"amount" >= 10 AND "amount" < 100`,
		},
		{
			name: "implicit_equality",
			spec: domain.FilterSpec{"status": "open"},
			want: `"status" = 'open'`,
		},
		{
			name: "implicit_list_in",
			spec: domain.FilterSpec{"region": []interface{}{"EU", "US"}},
			want: `"region" IN ('EU', 'US')`,
		},
		{
			name: "single_element_list_collapses",
			spec: domain.FilterSpec{"region": []interface{}{"EU"}},
			want: `"region" = 'EU'`,
		},
		{
			name: "empty_list_contributes_nothing",
			spec: domain.FilterSpec{"region": []interface{}{}},
			want: "",
		},
		{
			name: "fields_sorted_for_stable_output",
			spec: domain.FilterSpec{"b": 1, "a": 2},
			want: `"a" = 2 AND "b" = 1`,
		},
		{
			name: "string_operators",
			spec: domain.FilterSpec{"name__startswith": "Ann"},
			want: `"name" LIKE 'Ann%'`,
		},
		{
			name: "not_contains",
			spec: domain.FilterSpec{"name__notcontains": "test"},
			want: `"name" NOT LIKE '%test%'`,
		},
		{
			name: "date_preset_half_open",
			spec: domain.FilterSpec{"order_date__date_preset": "today"},
			want: `"order_date" >= '2024-06-10' AND "order_date" < '2024-06-11'`,
		},
		{
			name: "date_preset_negated",
			spec: domain.FilterSpec{"order_date__date_preset_ne": "today"},
			want: `NOT ("order_date" >= '2024-06-10' AND "order_date" < '2024-06-11')`,
		},
		{
			name: "nil_value_is_unset",
			spec: domain.FilterSpec{"amount__gte": nil, "status": "open"},
			want: `"status" = 'open'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompileWhere(tt.spec, testOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileWhereUnknownPreset(t *testing.T) {
	_, err := CompileWhere(domain.FilterSpec{"d__date_preset": "someday"}, testOptions())
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCompileConditionOperatorCoverage(t *testing.T) {
	d := dialect.Postgres
	tests := []struct {
		op      domain.FieldOperator
		operand interface{}
		want    string
	}{
		{op: domain.OpEq, operand: "x", want: `"f" = 'x'`},
		{op: domain.OpNe, operand: "x", want: `"f" <> 'x'`},
		{op: domain.OpGt, operand: 5, want: `"f" > 5`},
		{op: domain.OpGte, operand: 5, want: `"f" >= 5`},
		{op: domain.OpLt, operand: 5, want: `"f" < 5`},
		{op: domain.OpLte, operand: 5, want: `"f" <= 5`},
		{op: domain.OpIn, operand: []interface{}{1, 2}, want: `"f" IN (1, 2)`},
		{op: domain.OpNotIn, operand: []interface{}{1, 2}, want: `"f" NOT IN (1, 2)`},
		{op: domain.OpNotIn, operand: []interface{}{1}, want: `"f" <> 1`},
		{op: domain.OpLike, operand: "a%", want: `"f" LIKE 'a%'`},
		{op: domain.OpNotLike, operand: "a%", want: `"f" NOT LIKE 'a%'`},
		{op: domain.OpStartsWith, operand: "a", want: `"f" LIKE 'a%'`},
		{op: domain.OpEndsWith, operand: "a", want: `"f" LIKE '%a'`},
		{op: domain.OpContains, operand: "a", want: `"f" LIKE '%a%'`},
		{op: domain.OpNotContains, operand: "a", want: `"f" NOT LIKE '%a%'`},
		{op: domain.OpIsNull, operand: nil, want: `"f" IS NULL`},
		{op: domain.OpIsNotNull, operand: nil, want: `"f" IS NOT NULL`},
		{op: domain.OpBetween, operand: []interface{}{1, 10}, want: `"f" BETWEEN 1 AND 10`},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got, err := CompileCondition(d, Condition{Field: "f", Op: tt.op, Operand: tt.operand})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileConditionLikeQuotesNumericPattern(t *testing.T) {
	// LIKE patterns are always quoted, even when they look numeric.
	got, err := CompileCondition(dialect.Postgres, Condition{Field: "code", Op: domain.OpContains, Operand: "42"})
	require.NoError(t, err)
	assert.Equal(t, `"code" LIKE '%42%'`, got)
}

func TestCompileConditionInvalidOperands(t *testing.T) {
	d := dialect.Postgres
	tests := []struct {
		name string
		cond Condition
	}{
		{name: "scalar_op_with_list", cond: Condition{Field: "f", Op: domain.OpGt, Operand: []interface{}{1, 2}}},
		{name: "between_one_bound", cond: Condition{Field: "f", Op: domain.OpBetween, Operand: []interface{}{1}}},
		{name: "between_scalar", cond: Condition{Field: "f", Op: domain.OpBetween, Operand: 1}},
		{name: "missing_operand", cond: Condition{Field: "f", Op: domain.OpEq, Operand: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileCondition(d, tt.cond)
			require.Error(t, err)
			var operr *domain.InvalidOperandError
			assert.ErrorAs(t, err, &operr)
		})
	}
}

func TestCompileConditionUnknownOperator(t *testing.T) {
	_, err := CompileCondition(dialect.Postgres, Condition{Field: "f", Op: domain.FieldOperator("matches"), Operand: "x"})
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCompileInListEmpty(t *testing.T) {
	got, err := CompileCondition(dialect.Postgres, Condition{Field: "f", Op: domain.OpIn, Operand: []interface{}{}})
	require.NoError(t, err)
	assert.Empty(t, got)
}
