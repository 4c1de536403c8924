package transform

import (
	"fmt"
	"strings"

	"reportsql/internal/dialect"
	"reportsql/internal/domain"
)

// opSymbols maps the predicate operators that appear inside CASE groups,
// join filters, and lateral correlations to their SQL symbols.
var opSymbols = map[domain.FieldOperator]string{
	domain.OpEq:   "=",
	domain.OpNe:   "<>",
	domain.OpGt:   ">",
	domain.OpGte:  ">=",
	domain.OpLt:   "<",
	domain.OpLte:  "<=",
	domain.OpLike: "LIKE",
	domain.OpIn:   "IN",
}

// operandSQL renders one predicate operand: columns are identifier-quoted,
// literals literal-quoted, literal lists comma-joined in parentheses.
func operandSQL(d *dialect.Dialect, o domain.Operand) string {
	if o.Kind == domain.OperandColumn {
		return d.QuoteIdentifier(o.Value)
	}
	if o.IsList() {
		quoted := make([]string, 0, len(o.Values))
		for _, v := range o.Values {
			quoted = append(quoted, d.QuoteLiteral(v))
		}
		return "(" + strings.Join(quoted, ", ") + ")"
	}
	return d.QuoteLiteral(o.Value)
}

// predicateSQL renders one predicate as "left <op> right".
func predicateSQL(d *dialect.Dialect, p domain.Predicate) (string, error) {
	sym, ok := opSymbols[p.Op]
	if !ok {
		return "", domain.ErrValidation("operator %q is not valid inside a predicate group", p.Op)
	}
	return operandSQL(d, p.Left) + " " + sym + " " + operandSQL(d, p.Right), nil
}

// groupSQL joins a group's predicates left-to-right using each predicate's
// own joiner. The first predicate's joiner is ignored.
func groupSQL(d *dialect.Dialect, g domain.PredicateGroup) (string, error) {
	var b strings.Builder
	for i, p := range g.Predicates {
		if i > 0 {
			j := p.JoinToNext
			if j != domain.JoinOr {
				j = domain.JoinAnd
			}
			b.WriteString(" " + string(j) + " ")
		}
		sql, err := predicateSQL(d, p)
		if err != nil {
			return "", err
		}
		b.WriteString(sql)
	}
	return b.String(), nil
}

// CaseSQL renders a structured case specification as a CASE expression,
// without the trailing alias. This is the exact shape the round-trip parser
// reads back.
func CaseSQL(d *dialect.Dialect, spec domain.CaseSpec) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	for _, g := range spec.Groups {
		cond, err := groupSQL(d, g)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN (" + cond + ") THEN " + d.QuoteLiteral(g.Then))
	}
	if spec.Else != nil {
		b.WriteString(" ELSE " + d.QuoteLiteral(*spec.Else))
	}
	b.WriteString(" END")
	return b.String(), nil
}

// caseExtra renders the SELECT-extra form: CASE ... END AS "target".
func caseExtra(d *dialect.Dialect, spec domain.CaseSpec) (string, error) {
	sql, err := CaseSQL(d, spec)
	if err != nil {
		return "", err
	}
	return sql + " AS " + d.QuoteIdentifier(spec.Target), nil
}

// replaceExtra rewrites chosen values of the target column via CASE,
// re-declaring the column under its own name.
func replaceExtra(d *dialect.Dialect, t domain.Replace) (string, error) {
	if len(t.Search) == 0 {
		return "", domain.ErrValidation("replace transform for %q has no search values", t.Target)
	}
	col := d.QuoteIdentifier(t.Target)
	var b strings.Builder
	b.WriteString("CASE")
	for i, search := range t.Search {
		replacement := ""
		switch {
		case i < len(t.ReplaceWith):
			replacement = t.ReplaceWith[i]
		case len(t.ReplaceWith) > 0:
			replacement = t.ReplaceWith[len(t.ReplaceWith)-1]
		}
		b.WriteString(" WHEN " + col + " = " + d.QuoteLiteral(search) + " THEN " + d.QuoteLiteral(replacement))
	}
	b.WriteString(" ELSE " + col + " END AS " + col)
	return b.String(), nil
}

// translateExtra maps characters of the target column via TRANSLATE.
func translateExtra(d *dialect.Dialect, t domain.Translate) string {
	col := d.QuoteIdentifier(t.Target)
	return "TRANSLATE(" + col + ", " + quoteString(t.Search) + ", " + quoteString(t.Replace) + ") AS " + col
}

// nullHandlingExtra rewrites NULL or sentinel values of the target column.
func nullHandlingExtra(d *dialect.Dialect, t domain.NullHandling) (string, error) {
	col := d.QuoteIdentifier(t.Target)
	switch t.Strategy {
	case domain.NullToZero:
		return "COALESCE(" + col + ", 0) AS " + col, nil
	case domain.NullToEmpty:
		return "COALESCE(" + col + ", '') AS " + col, nil
	case domain.ZeroToNull:
		return "NULLIF(" + col + ", 0) AS " + col, nil
	case domain.EmptyToNull:
		return "NULLIF(" + col + ", '') AS " + col, nil
	}
	return "", domain.ErrValidation("unknown null-handling strategy %q", t.Strategy)
}

// aggregateFns is the closed set of join pre-aggregation functions.
var aggregateFns = map[string]string{
	"sum":   "SUM",
	"avg":   "AVG",
	"min":   "MIN",
	"max":   "MAX",
	"count": "COUNT",
}

// joinSQL renders a non-lateral join clause plus its SELECT extras.
func joinSQL(d *dialect.Dialect, t domain.Join, alias string) (clause string, extras []string, err error) {
	var kw string
	switch t.JoinType {
	case domain.JoinLeft:
		kw = "LEFT JOIN"
	case domain.JoinInner:
		kw = "INNER JOIN"
	case domain.JoinRight:
		kw = "RIGHT JOIN"
	default:
		return "", nil, domain.ErrValidation("unknown join type %q", t.JoinType)
	}
	if t.SourceKey == "" || t.TargetKey == "" {
		return "", nil, domain.ErrValidation("join on %q requires source and target keys", t.TargetTable)
	}

	on := d.Qualify(t.SourceKey) + " = " + alias + "." + d.QuoteIdentifier(t.TargetKey)

	if t.Aggregate != nil {
		fn, ok := aggregateFns[strings.ToLower(t.Aggregate.Fn)]
		if !ok {
			return "", nil, domain.ErrValidation("unknown aggregate function %q", t.Aggregate.Fn)
		}
		// Pre-aggregate the joined table keyed by the target key so the
		// 1:N relationship joins back 1:1.
		aggAlias := d.QuoteIdentifier(t.Aggregate.Alias)
		sub := fmt.Sprintf("SELECT %s, %s(%s) AS %s FROM %s GROUP BY %s",
			d.QuoteIdentifier(t.TargetKey),
			fn,
			d.QuoteIdentifier(t.Aggregate.Column),
			aggAlias,
			d.QuoteIdentifier(t.TargetTable),
			d.QuoteIdentifier(t.TargetKey),
		)
		clause = kw + " (" + sub + ") AS " + alias + " ON " + on
		extras = []string{alias + "." + aggAlias + " AS " + aggAlias}
		return clause, extras, nil
	}

	clause = kw + " " + d.QuoteIdentifier(t.TargetTable) + " AS " + alias + " ON " + on
	if t.Filter != nil {
		frag, ferr := joinFilterSQL(d, *t.Filter, alias)
		if ferr != nil {
			return "", nil, ferr
		}
		clause += " AND " + frag
	}
	for _, col := range t.Columns {
		extras = append(extras, alias+"."+d.QuoteIdentifier(col.Name)+" AS "+d.QuoteIdentifier(col.OutName()))
	}
	return clause, extras, nil
}

// joinFilterSQL renders a join filter predicate with column operands
// qualified by the join alias, so the filter constrains the joined table.
func joinFilterSQL(d *dialect.Dialect, p domain.Predicate, alias string) (string, error) {
	sym, ok := opSymbols[p.Op]
	if !ok {
		return "", domain.ErrValidation("operator %q is not valid in a join filter", p.Op)
	}
	render := func(o domain.Operand) string {
		if o.Kind == domain.OperandColumn {
			return alias + "." + d.QuoteIdentifier(o.Value)
		}
		return operandSQL(d, o)
	}
	return render(p.Left) + " " + sym + " " + render(p.Right), nil
}

// lateralJoinSQL renders a LEFT JOIN LATERAL clause: a correlated subquery
// joined ON TRUE, with the correlations expressed inside the subquery.
func lateralJoinSQL(d *dialect.Dialect, t domain.Join, alias string) (clause string, extras []string, err error) {
	// Correlation replaces key equality for lateral joins.
	if t.SourceKey != "" || t.TargetKey != "" {
		return "", nil, domain.ErrValidation("lateral join on %q must correlate via correlations, not source/target keys", t.TargetTable)
	}
	if t.Lateral == nil || len(t.Lateral.Correlations) == 0 {
		return "", nil, domain.ErrValidation("lateral join on %q requires at least one correlation", t.TargetTable)
	}

	selectList := "*"
	if len(t.Columns) > 0 {
		parts := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			parts = append(parts, d.QuoteIdentifier(col.Name)+" AS "+d.QuoteIdentifier(col.OutName()))
		}
		selectList = strings.Join(parts, ", ")
	}

	table := d.QuoteIdentifier(t.TargetTable)
	corrs := make([]string, 0, len(t.Lateral.Correlations))
	for _, c := range t.Lateral.Correlations {
		sym, ok := opSymbols[c.Op]
		if !ok {
			return "", nil, domain.ErrValidation("operator %q is not valid in a lateral correlation", c.Op)
		}
		corrs = append(corrs, table+"."+d.QuoteIdentifier(c.TargetCol)+" "+sym+" "+d.Qualify(c.SourceCol))
	}

	sub := "SELECT " + selectList + " FROM " + table + " WHERE " + strings.Join(corrs, " AND ")
	if len(t.Lateral.OrderBy) > 0 {
		terms := make([]string, 0, len(t.Lateral.OrderBy))
		for _, o := range t.Lateral.OrderBy {
			dir := strings.ToUpper(o.Direction)
			if dir != "DESC" {
				dir = "ASC"
			}
			terms = append(terms, d.QuoteIdentifier(o.Column)+" "+dir)
		}
		sub += " ORDER BY " + strings.Join(terms, ", ")
	}
	if t.Lateral.Limit > 0 {
		sub += fmt.Sprintf(" LIMIT %d", t.Lateral.Limit)
	}

	clause = "LEFT JOIN LATERAL (" + sub + ") AS " + alias + " ON TRUE"
	for _, col := range t.Columns {
		out := d.QuoteIdentifier(col.OutName())
		extras = append(extras, alias+"."+out+" AS "+out)
	}
	return clause, extras, nil
}

// unpivotRowSource renders the replacement row source for an unpivot
// transform using the native UNPIVOT operator.
func unpivotOperatorSource(d *dialect.Dialect, base string, t domain.Unpivot) string {
	cols := make([]string, 0, len(t.SourceColumns))
	for _, c := range t.SourceColumns {
		cols = append(cols, d.QuoteIdentifier(c))
	}
	return d.QuoteIdentifier(base) +
		" UNPIVOT (" + d.QuoteIdentifier(t.ValueColumn) +
		" FOR " + d.QuoteIdentifier(t.KeyColumn) +
		" IN (" + strings.Join(cols, ", ") + ")) AS " + dialect.BaseAlias
}

// unpivotUnionSource renders the UNION ALL fallback: one branch per source
// column, labelling each row with the originating column name.
func unpivotUnionSource(d *dialect.Dialect, base string, t domain.Unpivot) string {
	branches := make([]string, 0, len(t.SourceColumns))
	for _, c := range t.SourceColumns {
		col := d.QuoteIdentifier(c)
		branch := "SELECT " + col + " AS " + d.QuoteIdentifier(t.ValueColumn) +
			", " + quoteString(c) + " AS " + d.QuoteIdentifier(t.KeyColumn) +
			" FROM " + d.QuoteIdentifier(base)
		if t.OmitZeroNull {
			branch += " WHERE " + col + " <> 0 AND " + col + " IS NOT NULL"
		}
		branches = append(branches, branch)
	}
	return "(" + strings.Join(branches, " UNION ALL ") + ") AS " + dialect.BaseAlias
}

// quoteString single-quotes a string unconditionally, doubling embedded
// quotes. Used where the numeric pass-through must not apply (labels,
// TRANSLATE arguments).
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
