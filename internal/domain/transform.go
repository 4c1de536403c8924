package domain

// ScopeLevel orders transform scopes by specificity: datasource < table and
// datasource < widget. Table and widget are exclusive alternatives at the
// same level, not ranked against each other.
type ScopeLevel string

// Scope levels.
const (
	ScopeDatasource ScopeLevel = "datasource"
	ScopeTable      ScopeLevel = "table"
	ScopeWidget     ScopeLevel = "widget"
)

// Scope is the breadth at which a transform applies. Table is set for
// table-level scopes, Widget for widget-level ones.
type Scope struct {
	Level  ScopeLevel `json:"level"`
	Table  string     `json:"table,omitempty"`
	Widget string     `json:"widget,omitempty"`
}

// DatasourceScope returns the datasource-wide scope.
func DatasourceScope() Scope { return Scope{Level: ScopeDatasource} }

// TableScope returns a scope bound to one table.
func TableScope(table string) Scope { return Scope{Level: ScopeTable, Table: table} }

// WidgetScope returns a scope bound to one widget.
func WidgetScope(widget string) Scope { return Scope{Level: ScopeWidget, Widget: widget} }

// VisibleTo reports whether a transform with this scope applies to a query
// compiled for the given query scope. Datasource-wide transforms apply
// everywhere; table and widget scopes require an exact match.
func (s Scope) VisibleTo(query Scope) bool {
	switch s.Level {
	case ScopeDatasource:
		return true
	case ScopeTable:
		return s.Table != "" && s.Table == query.Table
	case ScopeWidget:
		return s.Widget != "" && s.Widget == query.Widget
	default:
		return false
	}
}

// TransformKind tags the closed transform variant set.
type TransformKind string

// Transform kinds.
const (
	KindCustomColumn TransformKind = "custom_column"
	KindComputed     TransformKind = "computed"
	KindCase         TransformKind = "case"
	KindReplace      TransformKind = "replace"
	KindTranslate    TransformKind = "translate"
	KindNullHandling TransformKind = "null_handling"
	KindUnpivot      TransformKind = "unpivot"
	KindJoin         TransformKind = "join"
)

// Transform is one scoped rewrite of the queryable row set. Implementations
// are the closed variant set below; the compiler never mutates them.
type Transform interface {
	Kind() TransformKind
	TransformScope() Scope
}

// CustomColumn aliases a raw SQL expression as a new derived column.
type CustomColumn struct {
	Scope Scope  `json:"scope"`
	Name  string `json:"name"`
	Expr  string `json:"expr"`
}

func (t CustomColumn) Kind() TransformKind   { return KindCustomColumn }
func (t CustomColumn) TransformScope() Scope { return t.Scope }

// Computed is semantically identical to CustomColumn; the distinction exists
// only so the editing layer can group the two separately.
type Computed struct {
	Scope Scope  `json:"scope"`
	Name  string `json:"name"`
	Expr  string `json:"expr"`
}

func (t Computed) Kind() TransformKind   { return KindComputed }
func (t Computed) TransformScope() Scope { return t.Scope }

// Case produces a new column from ordered predicate groups.
type Case struct {
	Scope  Scope            `json:"scope"`
	Target string           `json:"target"`
	Groups []PredicateGroup `json:"groups"`
	Else   *string          `json:"else,omitempty"`
}

func (t Case) Kind() TransformKind   { return KindCase }
func (t Case) TransformScope() Scope { return t.Scope }

// Spec returns the CaseSpec equivalent of the transform.
func (t Case) Spec() CaseSpec {
	return CaseSpec{Target: t.Target, Groups: t.Groups, Else: t.Else}
}

// Replace rewrites chosen values of an existing column, re-declaring the
// column under its own name. Search and ReplaceWith are zipped pairwise; a
// single replacement value applies to every search value.
type Replace struct {
	Scope       Scope    `json:"scope"`
	Target      string   `json:"target"`
	Search      []string `json:"search"`
	ReplaceWith []string `json:"replace"`
}

func (t Replace) Kind() TransformKind   { return KindReplace }
func (t Replace) TransformScope() Scope { return t.Scope }

// Translate maps characters of an existing column via SQL TRANSLATE.
type Translate struct {
	Scope   Scope  `json:"scope"`
	Target  string `json:"target"`
	Search  string `json:"search"`
	Replace string `json:"replace"`
}

func (t Translate) Kind() TransformKind   { return KindTranslate }
func (t Translate) TransformScope() Scope { return t.Scope }

// NullStrategy selects how NullHandling rewrites the target column.
type NullStrategy string

// Null-handling strategies.
const (
	NullToZero  NullStrategy = "null_to_zero"  // COALESCE(col, 0)
	NullToEmpty NullStrategy = "null_to_empty" // COALESCE(col, '')
	ZeroToNull  NullStrategy = "zero_to_null"  // NULLIF(col, 0)
	EmptyToNull NullStrategy = "empty_to_null" // NULLIF(col, '')
)

// NullHandling rewrites NULL or sentinel values of an existing column.
type NullHandling struct {
	Scope    Scope        `json:"scope"`
	Target   string       `json:"target"`
	Strategy NullStrategy `json:"strategy"`
}

func (t NullHandling) Kind() TransformKind   { return KindNullHandling }
func (t NullHandling) TransformScope() Scope { return t.Scope }

// UnpivotMode selects the reshaping strategy. Auto resolves to the UNPIVOT
// operator when the dialect supports it and falls back to UNION ALL.
type UnpivotMode string

// Unpivot modes.
const (
	UnpivotAuto     UnpivotMode = "auto"
	UnpivotOperator UnpivotMode = "unpivot"
	UnpivotUnion    UnpivotMode = "union"
)

// Unpivot reshapes a set of source columns into key/value rows.
type Unpivot struct {
	Scope         Scope       `json:"scope"`
	SourceColumns []string    `json:"source_columns"`
	KeyColumn     string      `json:"key_column"`
	ValueColumn   string      `json:"value_column"`
	Mode          UnpivotMode `json:"mode"`
	OmitZeroNull  bool        `json:"omit_zero_null,omitempty"`
}

func (t Unpivot) Kind() TransformKind   { return KindUnpivot }
func (t Unpivot) TransformScope() Scope { return t.Scope }

// JoinType selects the join flavor. Lateral joins correlate via Lateral
// rather than SourceKey/TargetKey.
type JoinType string

// Join types.
const (
	JoinLeft    JoinType = "left"
	JoinInner   JoinType = "inner"
	JoinRight   JoinType = "right"
	JoinLateral JoinType = "lateral"
)

// JoinColumn requests one column from the joined table under an alias.
type JoinColumn struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// OutName returns the alias, defaulting to the column name.
func (c JoinColumn) OutName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// JoinAggregate pre-aggregates the joined table so a 1:N join stays 1:1.
type JoinAggregate struct {
	Fn     string `json:"fn"`
	Column string `json:"column"`
	Alias  string `json:"alias"`
}

// Correlation is one correlated comparison inside a lateral subquery,
// rendered as target.col <op> s.col.
type Correlation struct {
	SourceCol string        `json:"source_col"`
	Op        FieldOperator `json:"op"`
	TargetCol string        `json:"target_col"`
}

// OrderByTerm orders a lateral subquery.
type OrderByTerm struct {
	Column    string `json:"column"`
	Direction string `json:"direction,omitempty"`
}

// LateralSpec configures a correlated lateral subquery.
type LateralSpec struct {
	Correlations []Correlation `json:"correlations"`
	OrderBy      []OrderByTerm `json:"order_by,omitempty"`
	Limit        int           `json:"limit,omitempty"`
}

// Join attaches columns (or one aggregate) from another table.
type Join struct {
	Scope       Scope          `json:"scope"`
	JoinType    JoinType       `json:"join_type"`
	TargetTable string         `json:"target_table"`
	SourceKey   string         `json:"source_key,omitempty"`
	TargetKey   string         `json:"target_key,omitempty"`
	Columns     []JoinColumn   `json:"columns,omitempty"`
	Aggregate   *JoinAggregate `json:"aggregate,omitempty"`
	Filter      *Predicate     `json:"filter,omitempty"`
	Lateral     *LateralSpec   `json:"lateral,omitempty"`
}

func (t Join) Kind() TransformKind   { return KindJoin }
func (t Join) TransformScope() Scope { return t.Scope }

// AliasConflict reports a derived-column alias that collides with a base
// column or another alias. Conflicts are collected and returned, never
// silently renamed.
type AliasConflict struct {
	Alias  string `json:"alias"`
	Reason string `json:"reason"`
}
