// Package transform compiles scoped transform specifications into the SQL
// fragments that redefine a base table's queryable row set: derived-column
// expressions, join clauses, and unpivot row-source rewrites.
package transform

import (
	"fmt"
	"log/slog"

	"reportsql/internal/dialect"
	"reportsql/internal/domain"
)

// WrapMode says how the base row source must be rewritten before the caller
// assembles the final statement.
type WrapMode string

// Wrap modes.
const (
	WrapNone    WrapMode = "none"
	WrapUnpivot WrapMode = "unpivot"
	WrapUnion   WrapMode = "union"
)

// Wrapping is the row-source rewrite decision. RowSource is empty for
// WrapNone; otherwise it replaces the base table reference in FROM.
type Wrapping struct {
	Mode      WrapMode `json:"mode"`
	RowSource string   `json:"row_source,omitempty"`
}

// Result is everything the caller needs to assemble
// SELECT s.*, <extras> FROM <base or wrapping row source> AS s <joins>.
type Result struct {
	SelectExtras []string               `json:"select_extras"`
	Joins        []string               `json:"joins"`
	Wrapping     Wrapping               `json:"wrapping"`
	Conflicts    []domain.AliasConflict `json:"conflicts,omitempty"`
	// Dropped names the transforms excluded because a datasource-wide
	// dependency was missing from the current table. Exclusion is silent
	// toward the end user; it is surfaced here for logging and tests only.
	Dropped []string `json:"dropped,omitempty"`
}

// Compiler compiles transforms for one dialect. It holds no mutable state;
// a single Compiler may be shared across goroutines.
type Compiler struct {
	d   *dialect.Dialect
	log *slog.Logger
}

// NewCompiler creates a Compiler. A nil logger disables logging.
func NewCompiler(d *dialect.Dialect, log *slog.Logger) *Compiler {
	if d == nil {
		d = dialect.Default
	}
	return &Compiler{d: d, log: log}
}

// aliasRecord tracks one emitted alias for the conflict pass.
type aliasRecord struct {
	alias string
	kind  domain.TransformKind
}

// Compile resolves and emits the transforms visible to the given query
// scope. Derived columns resolve in specification order, so later transforms
// may reference earlier ones. Alias conflicts are collected and returned in
// the result, never auto-resolved; only structurally invalid specs and
// explicit unsupported-dialect requests produce an error.
func (c *Compiler) Compile(base string, query domain.Scope, transforms []domain.Transform, availableColumns []string) (*Result, error) {
	res := &Result{Wrapping: Wrapping{Mode: WrapNone}}

	baseCols := newColumnSet(availableColumns)
	resolved := newColumnSet(availableColumns)
	var aliases []aliasRecord
	joinIdx, lateralIdx := 0, 0

	register := func(name string, kind domain.TransformKind) {
		aliases = append(aliases, aliasRecord{alias: name, kind: kind})
		resolved.add(name)
	}

	for _, t := range transforms {
		if !t.TransformScope().VisibleTo(query) {
			continue
		}

		switch tt := t.(type) {
		case domain.CustomColumn:
			if c.dropForMissingDeps(res, tt, tt.Name, referencedColumns(tt.Expr), resolved) {
				continue
			}
			res.SelectExtras = append(res.SelectExtras, tt.Expr+" AS "+c.d.QuoteIdentifier(tt.Name))
			register(tt.Name, domain.KindCustomColumn)

		case domain.Computed:
			if c.dropForMissingDeps(res, tt, tt.Name, referencedColumns(tt.Expr), resolved) {
				continue
			}
			res.SelectExtras = append(res.SelectExtras, tt.Expr+" AS "+c.d.QuoteIdentifier(tt.Name))
			register(tt.Name, domain.KindComputed)

		case domain.Case:
			if c.dropForMissingDeps(res, tt, tt.Target, caseReferences(tt), resolved) {
				continue
			}
			extra, err := caseExtra(c.d, tt.Spec())
			if err != nil {
				return nil, err
			}
			res.SelectExtras = append(res.SelectExtras, extra)
			register(tt.Target, domain.KindCase)

		case domain.Replace:
			if c.dropForMissingDeps(res, tt, tt.Target, []string{tt.Target}, resolved) {
				continue
			}
			extra, err := replaceExtra(c.d, tt)
			if err != nil {
				return nil, err
			}
			// Re-declares the existing column under its own name, so the
			// target is exempt from alias-conflict checking.
			res.SelectExtras = append(res.SelectExtras, extra)

		case domain.Translate:
			if c.dropForMissingDeps(res, tt, tt.Target, []string{tt.Target}, resolved) {
				continue
			}
			res.SelectExtras = append(res.SelectExtras, translateExtra(c.d, tt))

		case domain.NullHandling:
			if c.dropForMissingDeps(res, tt, tt.Target, []string{tt.Target}, resolved) {
				continue
			}
			extra, err := nullHandlingExtra(c.d, tt)
			if err != nil {
				return nil, err
			}
			res.SelectExtras = append(res.SelectExtras, extra)

		case domain.Unpivot:
			// The row source can only be rewritten once; a second unpivot
			// has no base left to reshape.
			if res.Wrapping.Mode != WrapNone {
				return nil, domain.ErrValidation("multiple unpivot transforms apply to this query; at most one may be visible")
			}
			wrapping, err := c.compileUnpivot(base, tt)
			if err != nil {
				return nil, err
			}
			res.Wrapping = wrapping
			register(tt.KeyColumn, domain.KindUnpivot)
			register(tt.ValueColumn, domain.KindUnpivot)

		case domain.Join:
			var clause string
			var extras []string
			var err error
			if tt.JoinType == domain.JoinLateral {
				lateralIdx++
				clause, extras, err = lateralJoinSQL(c.d, tt, fmt.Sprintf("fx%d", lateralIdx))
			} else {
				joinIdx++
				clause, extras, err = joinSQL(c.d, tt, fmt.Sprintf("j%d", joinIdx))
			}
			if err != nil {
				return nil, err
			}
			res.Joins = append(res.Joins, clause)
			res.SelectExtras = append(res.SelectExtras, extras...)
			for _, name := range joinAliases(tt) {
				register(name, domain.KindJoin)
			}

		default:
			return nil, domain.ErrValidation("unknown transform kind %q", t.Kind())
		}
	}

	res.Conflicts = detectConflicts(aliases, baseCols)
	return res, nil
}

// dropForMissingDeps applies the silent-exclusion rule: a datasource-wide
// transform whose references are not all present in the resolved column set
// is skipped without error, so reusable transforms degrade gracefully on
// tables lacking the raw columns. Narrower scopes are the editing layer's
// responsibility and always emit.
func (c *Compiler) dropForMissingDeps(res *Result, t domain.Transform, name string, refs []string, resolved columnSet) bool {
	if t.TransformScope().Level != domain.ScopeDatasource {
		return false
	}
	missing := resolved.missing(refs)
	if len(missing) == 0 {
		return false
	}
	res.Dropped = append(res.Dropped, string(t.Kind())+":"+name)
	if c.log != nil {
		c.log.Debug("transform dropped: unresolved dependency",
			"kind", string(t.Kind()),
			"name", name,
			"missing", missing,
		)
	}
	return true
}

func (c *Compiler) compileUnpivot(base string, t domain.Unpivot) (Wrapping, error) {
	if len(t.SourceColumns) == 0 {
		return Wrapping{}, domain.ErrValidation("unpivot requires at least one source column")
	}
	mode := t.Mode
	if mode == "" || mode == domain.UnpivotAuto {
		if c.d.SupportsUnpivot {
			mode = domain.UnpivotOperator
		} else {
			mode = domain.UnpivotUnion
		}
	}
	switch mode {
	case domain.UnpivotOperator:
		if !c.d.SupportsUnpivot {
			return Wrapping{}, domain.ErrUnsupportedFeature(c.d.Name, "UNPIVOT")
		}
		return Wrapping{Mode: WrapUnpivot, RowSource: unpivotOperatorSource(c.d, base, t)}, nil
	case domain.UnpivotUnion:
		return Wrapping{Mode: WrapUnion, RowSource: unpivotUnionSource(c.d, base, t)}, nil
	}
	return Wrapping{}, domain.ErrValidation("unknown unpivot mode %q", t.Mode)
}

// caseReferences collects the column operands a case transform depends on.
func caseReferences(t domain.Case) []string {
	seen := map[string]struct{}{}
	var refs []string
	add := func(o domain.Operand) {
		if o.Kind != domain.OperandColumn || o.Value == "" {
			return
		}
		if _, ok := seen[o.Value]; ok {
			return
		}
		seen[o.Value] = struct{}{}
		refs = append(refs, o.Value)
	}
	for _, g := range t.Groups {
		for _, p := range g.Predicates {
			add(p.Left)
			add(p.Right)
		}
	}
	return refs
}

// joinAliases lists the output aliases a join introduces.
func joinAliases(t domain.Join) []string {
	if t.Aggregate != nil {
		return []string{t.Aggregate.Alias}
	}
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, c.OutName())
	}
	return out
}

// detectConflicts flags aliases that duplicate one another or collide with a
// base column. Conflicts are reported, not resolved: the editing layer must
// surface them before save.
func detectConflicts(aliases []aliasRecord, baseCols columnSet) []domain.AliasConflict {
	var conflicts []domain.AliasConflict
	seen := map[string]struct{}{}
	for _, a := range aliases {
		if baseCols.has(a.alias) {
			conflicts = append(conflicts, domain.AliasConflict{
				Alias:  a.alias,
				Reason: "collides with a base column",
			})
		}
		if _, dup := seen[a.alias]; dup {
			conflicts = append(conflicts, domain.AliasConflict{
				Alias:  a.alias,
				Reason: "duplicate alias",
			})
		}
		seen[a.alias] = struct{}{}
	}
	return conflicts
}
