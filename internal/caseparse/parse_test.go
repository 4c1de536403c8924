package caseparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportsql/internal/dialect"
	"reportsql/internal/domain"
	"reportsql/internal/transform"
)

func strPtr(s string) *string { return &s }

func TestParseSimpleCase(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("region" = 'US') THEN 'A' ELSE 'B' END AS "grp"`)
	require.True(t, ok)

	assert.Equal(t, "grp", spec.Target)
	require.NotNil(t, spec.Else)
	assert.Equal(t, "B", *spec.Else)
	require.Len(t, spec.Groups, 1)
	assert.Equal(t, "A", spec.Groups[0].Then)
	require.Len(t, spec.Groups[0].Predicates, 1)
	assert.Equal(t, domain.Predicate{
		Left:       domain.Col("region"),
		Op:         domain.OpEq,
		Right:      domain.Lit("US"),
		JoinToNext: domain.JoinAnd,
	}, spec.Groups[0].Predicates[0])
}

func TestParseJoiners(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("a" >= 10 OR "b" = 'x' AND "c" <> 1) THEN 'hit' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	preds := spec.Groups[0].Predicates
	require.Len(t, preds, 3)
	assert.Equal(t, domain.JoinAnd, preds[0].JoinToNext)
	assert.Equal(t, domain.JoinOr, preds[1].JoinToNext)
	assert.Equal(t, domain.JoinAnd, preds[2].JoinToNext)
	assert.Equal(t, domain.OpGte, preds[0].Op)
	assert.Equal(t, domain.OpNe, preds[2].Op)
}

func TestParseNestedParens(t *testing.T) {
	spec, ok := Parse(`CASE WHEN (("a" = 1 AND "b" = 2)) THEN 'x' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	assert.Len(t, spec.Groups[0].Predicates, 2)

	spec, ok = Parse(`CASE WHEN (("a" = 1) AND ("b" = 2)) THEN 'x' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	require.Len(t, spec.Groups[0].Predicates, 2)
	assert.Equal(t, domain.Col("b"), spec.Groups[0].Predicates[1].Left)
}

func TestParseLiteralsContainingKeywords(t *testing.T) {
	// AND inside a string literal must not split the predicate.
	spec, ok := Parse(`CASE WHEN ("genre" = 'rock AND roll') THEN 'y' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	require.Len(t, spec.Groups[0].Predicates, 1)
	assert.Equal(t, domain.Lit("rock AND roll"), spec.Groups[0].Predicates[0].Right)
}

func TestParseEscapedQuotes(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("name" = 'O''Brien') THEN 'irish' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	assert.Equal(t, domain.Lit("O'Brien"), spec.Groups[0].Predicates[0].Right)
}

func TestParseInList(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("region" IN ('EU', 'US', 'a,b')) THEN 'known' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	pred := spec.Groups[0].Predicates[0]
	assert.Equal(t, domain.OpIn, pred.Op)
	assert.Equal(t, domain.LitList("EU", "US", "a,b"), pred.Right)
}

func TestParseInBracketIdentifier(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("tag" IN [labels]) THEN 'tagged' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 1)
	pred := spec.Groups[0].Predicates[0]
	assert.Equal(t, domain.OpIn, pred.Op)
	assert.Equal(t, domain.Col("labels"), pred.Right)
}

func TestParseInColumnIdentifier(t *testing.T) {
	// A column on the right of IN is emitted quoted per dialect, or may be
	// written bare by hand.
	tests := []struct {
		name string
		sql  string
	}{
		{name: "double_quoted", sql: `CASE WHEN ("tag" IN "labels") THEN 'tagged' END`},
		{name: "backtick", sql: "CASE WHEN (`tag` IN `labels`) THEN 'tagged' END"},
		{name: "bare", sql: `CASE WHEN (tag IN labels) THEN 'tagged' END`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := Parse(tt.sql)
			require.True(t, ok)
			require.Len(t, spec.Groups, 1)
			pred := spec.Groups[0].Predicates[0]
			assert.Equal(t, domain.Col("tag"), pred.Left)
			assert.Equal(t, domain.OpIn, pred.Op)
			assert.Equal(t, domain.Col("labels"), pred.Right)
		})
	}
}

func TestParseInLiteralRightIsNotAColumn(t *testing.T) {
	// IN followed by a single literal is not a shape the emitter produces.
	_, ok := Parse(`CASE WHEN ("tag" IN 'x') THEN 'y' END`)
	assert.False(t, ok)
}

func TestParseLike(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("name" LIKE '%smith%') THEN 'match' END`)
	require.True(t, ok)
	pred := spec.Groups[0].Predicates[0]
	assert.Equal(t, domain.OpLike, pred.Op)
	assert.Equal(t, domain.Lit("%smith%"), pred.Right)
}

func TestParseNumericOperands(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("amount" >= 10.5) THEN '1' END`)
	require.True(t, ok)
	pred := spec.Groups[0].Predicates[0]
	assert.Equal(t, domain.Lit("10.5"), pred.Right)
	assert.Equal(t, "1", spec.Groups[0].Then)
}

func TestParseBareColumn(t *testing.T) {
	spec, ok := Parse(`CASE WHEN (region = 'US') THEN 'A' END`)
	require.True(t, ok)
	assert.Equal(t, domain.Col("region"), spec.Groups[0].Predicates[0].Left)
}

func TestParseMultipleGroups(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("a" = 1) THEN 'one' WHEN ("a" = 2) THEN 'two' ELSE 'many' END`)
	require.True(t, ok)
	require.Len(t, spec.Groups, 2)
	assert.Equal(t, "one", spec.Groups[0].Then)
	assert.Equal(t, "two", spec.Groups[1].Then)
	require.NotNil(t, spec.Else)
	assert.Equal(t, "many", *spec.Else)
}

func TestParseWithoutAliasOrElse(t *testing.T) {
	spec, ok := Parse(`CASE WHEN ("a" = 1) THEN 'x' END`)
	require.True(t, ok)
	assert.Empty(t, spec.Target)
	assert.Nil(t, spec.Else)
}

func TestParseUnparseableInputs(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "not_a_case", sql: "SELECT 1"},
		{name: "missing_end", sql: `CASE WHEN ("a" = 1) THEN 'x'`},
		{name: "garbage_condition", sql: `CASE WHEN garbage THEN 'x' END`},
		{name: "function_then_value", sql: `CASE WHEN ("a" = 1) THEN UPPER("a") END`},
		{name: "trailing_text", sql: `CASE WHEN ("a" = 1) THEN 'x' END OR 1=1`},
		{name: "subquery_operand", sql: `CASE WHEN ("a" = (SELECT 1)) THEN 'x' END`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Parse(tt.sql)
			assert.False(t, ok)
		})
	}
}

func TestParsePartialOnFailure(t *testing.T) {
	// The first group parses; the second does not. The partial result keeps
	// the good prefix so the editing layer can show it.
	spec, ok := Parse(`CASE WHEN ("a" = 1) THEN 'one' WHEN nonsense THEN 'two' END`)
	assert.False(t, ok)
	require.Len(t, spec.Groups, 1)
	assert.Equal(t, "one", spec.Groups[0].Then)
}

func TestParseCaseInsensitiveKeywords(t *testing.T) {
	spec, ok := Parse(`case when ("a" = 1) then 'x' else 'y' end as "t"`)
	require.True(t, ok)
	assert.Equal(t, "t", spec.Target)
	require.Len(t, spec.Groups, 1)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		spec domain.CaseSpec
	}{
		{
			name: "single_group_with_else",
			spec: domain.CaseSpec{
				Target: "grp",
				Groups: []domain.PredicateGroup{
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("region"), Op: domain.OpEq, Right: domain.Lit("US"), JoinToNext: domain.JoinAnd},
						},
						Then: "A",
					},
				},
				Else: strPtr("B"),
			},
		},
		{
			name: "mixed_joiners",
			spec: domain.CaseSpec{
				Target: "tier",
				Groups: []domain.PredicateGroup{
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("amount"), Op: domain.OpGte, Right: domain.Lit("100"), JoinToNext: domain.JoinAnd},
							{Left: domain.Col("region"), Op: domain.OpEq, Right: domain.Lit("US"), JoinToNext: domain.JoinOr},
							{Left: domain.Col("score"), Op: domain.OpLt, Right: domain.Lit("5"), JoinToNext: domain.JoinAnd},
						},
						Then: "gold",
					},
				},
			},
		},
		{
			name: "awkward_literals",
			spec: domain.CaseSpec{
				Target: "label",
				Groups: []domain.PredicateGroup{
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("name"), Op: domain.OpEq, Right: domain.Lit("O'Brien"), JoinToNext: domain.JoinAnd},
							{Left: domain.Col("genre"), Op: domain.OpEq, Right: domain.Lit("rock AND roll"), JoinToNext: domain.JoinAnd},
						},
						Then: "tricky",
					},
				},
			},
		},
		{
			name: "in_list_with_commas",
			spec: domain.CaseSpec{
				Target: "bucket",
				Groups: []domain.PredicateGroup{
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("region"), Op: domain.OpIn, Right: domain.LitList("EU", "a,b"), JoinToNext: domain.JoinAnd},
						},
						Then: "known",
					},
				},
				Else: strPtr("other"),
			},
		},
		{
			name: "in_column_operand",
			spec: domain.CaseSpec{
				Target: "tagged",
				Groups: []domain.PredicateGroup{
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("tag"), Op: domain.OpIn, Right: domain.Col("labels"), JoinToNext: domain.JoinAnd},
						},
						Then: "yes",
					},
				},
			},
		},
		{
			name: "multiple_groups_like",
			spec: domain.CaseSpec{
				Target: "kind",
				Groups: []domain.PredicateGroup{
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("name"), Op: domain.OpLike, Right: domain.Lit("%inc%"), JoinToNext: domain.JoinAnd},
						},
						Then: "company",
					},
					{
						Predicates: []domain.Predicate{
							{Left: domain.Col("age"), Op: domain.OpGt, Right: domain.Lit("17"), JoinToNext: domain.JoinAnd},
						},
						Then: "adult",
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := transform.CaseSQL(dialect.Postgres, tt.spec)
			require.NoError(t, err)
			if tt.spec.Target != "" {
				sql += " AS " + dialect.Postgres.QuoteIdentifier(tt.spec.Target)
			}

			parsed, ok := Parse(sql)
			require.True(t, ok, "emitted SQL must parse back: %s", sql)
			assert.Equal(t, tt.spec, parsed)
		})
	}
}
