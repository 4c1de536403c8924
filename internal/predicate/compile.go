package predicate

import (
	"sort"
	"strings"
	"time"

	"reportsql/internal/dialect"
	"reportsql/internal/domain"
	"reportsql/internal/period"
)

// Options carries the per-call compilation context. Now is injected so
// period-preset filters stay pure.
type Options struct {
	Dialect  *dialect.Dialect
	Now      time.Time
	Calendar period.Calendar
}

func (o Options) dialect() *dialect.Dialect {
	if o.Dialect != nil {
		return o.Dialect
	}
	return dialect.Default
}

// Suffix keys recognized on filter fields, in emission order. The empty
// suffix is the implicit equality/IN form; date_preset resolves a period
// preset against the field, date_preset_ne its negation.
var suffixOrder = []string{
	"",
	"date_preset",
	"date_preset_ne",
	"gte",
	"gt",
	"lte",
	"lt",
	"ne",
	"contains",
	"notcontains",
	"startswith",
	"endswith",
}

var suffixOps = map[string]domain.FieldOperator{
	"gte":         domain.OpGte,
	"gt":          domain.OpGt,
	"lte":         domain.OpLte,
	"lt":          domain.OpLt,
	"ne":          domain.OpNe,
	"contains":    domain.OpContains,
	"notcontains": domain.OpNotContains,
	"startswith":  domain.OpStartsWith,
	"endswith":    domain.OpEndsWith,
}

// splitKey decodes a filter key into its base field and operator suffix.
// Unknown suffixes are part of the field name, so "my__field" stays intact.
func splitKey(key string) (field, suffix string) {
	i := strings.LastIndex(key, "__")
	if i <= 0 {
		return key, ""
	}
	s := key[i+2:]
	if _, ok := suffixOps[s]; ok || s == "date_preset" || s == "date_preset_ne" {
		return key[:i], s
	}
	return key, ""
}

// CompileField compiles every defined suffixed entry of one field and
// AND-joins the fragments. Entries with nil values are unset and contribute
// nothing; a field with no defined entries compiles to the empty string.
func CompileField(field string, entries map[string]interface{}, opts Options) (string, error) {
	d := opts.dialect()
	fragments := make([]string, 0, len(entries))

	for _, suffix := range suffixOrder {
		value, ok := entries[suffix]
		if !ok || value == nil {
			continue
		}

		var frag string
		var err error
		switch suffix {
		case "":
			frag, err = compileImplicit(d, field, value)
		case "date_preset":
			frag, err = compilePresetRange(d, field, value, opts, false)
		case "date_preset_ne":
			frag, err = compilePresetRange(d, field, value, opts, true)
		default:
			frag, err = CompileCondition(d, Condition{Field: field, Op: suffixOps[suffix], Operand: value})
		}
		if err != nil {
			return "", err
		}
		if frag != "" {
			fragments = append(fragments, frag)
		}
	}

	return strings.Join(fragments, " AND "), nil
}

// compileImplicit handles the unsuffixed key: lists compile to IN (collapsed
// to equality for one element), scalars to equality.
func compileImplicit(d *dialect.Dialect, field string, value interface{}) (string, error) {
	if _, isList := asList(value); isList {
		return CompileCondition(d, Condition{Field: field, Op: domain.OpIn, Operand: value})
	}
	return CompileCondition(d, Condition{Field: field, Op: domain.OpEq, Operand: value})
}

// compilePresetRange resolves a period preset and compares the field against
// the resulting half-open range. Negated form wraps the range in NOT (...).
func compilePresetRange(d *dialect.Dialect, field string, value interface{}, opts Options, negate bool) (string, error) {
	name, ok := value.(string)
	if !ok {
		return "", domain.ErrInvalidOperand(field, domain.OpEq, "date preset must be a preset name")
	}
	preset, err := period.ParsePreset(name)
	if err != nil {
		return "", err
	}
	r, err := period.Resolve(preset, opts.Now, opts.Calendar)
	if err != nil {
		return "", err
	}

	col := d.QuoteIdentifier(field)
	frag := col + " >= " + d.QuoteLiteral(r.StartDate()) + " AND " + col + " < " + d.QuoteLiteral(r.EndDate())
	if negate {
		return "NOT (" + frag + ")", nil
	}
	return frag, nil
}

// CompileWhere groups a filter specification by base field, compiles each
// field, and AND-joins the non-empty results. An entirely unset spec
// compiles to the empty string: callers emit no WHERE clause at all rather
// than WHERE 1=1, keeping the output minimal and diff-stable.
func CompileWhere(spec domain.FilterSpec, opts Options) (string, error) {
	grouped := map[string]map[string]interface{}{}
	for key, value := range spec {
		field, suffix := splitKey(key)
		if grouped[field] == nil {
			grouped[field] = map[string]interface{}{}
		}
		grouped[field][suffix] = value
	}

	fields := make([]string, 0, len(grouped))
	for f := range grouped {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	fragments := make([]string, 0, len(fields))
	for _, f := range fields {
		frag, err := CompileField(f, grouped[f], opts)
		if err != nil {
			return "", err
		}
		if frag != "" {
			fragments = append(fragments, frag)
		}
	}

	return strings.Join(fragments, " AND "), nil
}
