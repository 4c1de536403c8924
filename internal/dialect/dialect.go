// Package dialect holds the per-dialect quoting rules and feature flags the
// compilers depend on. Dialect differences are confined to identifier and
// literal quoting plus UNPIVOT availability; everything else the compilers
// emit is portable SQL.
package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"reportsql/internal/domain"
)

// BaseAlias is the row-source alias predicates use when referencing the base
// table, conventionally the source side of a join.
const BaseAlias = "s"

// numericLiteralRe matches strings that are plain integer or decimal
// literals; such values are emitted unquoted.
var numericLiteralRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Dialect describes one SQL target.
type Dialect struct {
	Name string

	// Identifier delimiters. Open and close differ only for bracket
	// dialects (MSSQL).
	identOpen  byte
	identClose byte

	// SupportsUnpivot reports whether the dialect has a native UNPIVOT
	// operator.
	SupportsUnpivot bool
}

// Known dialects.
var (
	Postgres = &Dialect{Name: "postgres", identOpen: '"', identClose: '"'}
	DuckDB   = &Dialect{Name: "duckdb", identOpen: '"', identClose: '"', SupportsUnpivot: true}
	SQLite   = &Dialect{Name: "sqlite", identOpen: '"', identClose: '"'}
	MySQL    = &Dialect{Name: "mysql", identOpen: '`', identClose: '`'}
	MSSQL    = &Dialect{Name: "mssql", identOpen: '[', identClose: ']', SupportsUnpivot: true}
)

var dialects = map[string]*Dialect{
	"postgres": Postgres,
	"duckdb":   DuckDB,
	"sqlite":   SQLite,
	"mysql":    MySQL,
	"mssql":    MSSQL,
}

// Default is the dialect used when a caller does not name one.
var Default = Postgres

// Lookup resolves a dialect by name or alias.
func Lookup(name string) (*Dialect, error) {
	if name == "" {
		return Default, nil
	}
	if d, ok := dialects[strings.ToLower(name)]; ok {
		return d, nil
	}
	switch strings.ToLower(name) {
	case "postgresql", "pg":
		return Postgres, nil
	case "sqlserver", "tsql":
		return MSSQL, nil
	}
	return nil, domain.ErrValidation("unknown SQL dialect %q", name)
}

// QuoteIdentifier wraps name in the dialect's identifier delimiters, doubling
// any embedded closing delimiter. Already-qualified names (containing a dot)
// and names already wrapped in this dialect's delimiters pass through
// unchanged so callers may quote defensively.
func (d *Dialect) QuoteIdentifier(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	if len(name) >= 2 && name[0] == d.identOpen && name[len(name)-1] == d.identClose {
		return name
	}
	close := string(d.identClose)
	escaped := strings.ReplaceAll(name, close, close+close)
	return string(d.identOpen) + escaped + string(d.identClose)
}

// QuoteLiteral renders a Go value as a SQL literal. Numeric values and
// numeric-looking strings are emitted unquoted; booleans become TRUE/FALSE;
// nil becomes NULL; everything else is single-quoted with embedded quotes
// doubled.
func (d *Dialect) QuoteLiteral(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if numericLiteralRe.MatchString(v) {
			return v
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		s := fmt.Sprintf("%v", v)
		if numericLiteralRe.MatchString(s) {
			return s
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
}

// Qualify prefixes a column with the base row-source alias.
func (d *Dialect) Qualify(column string) string {
	return BaseAlias + "." + d.QuoteIdentifier(column)
}

// Names returns the registered dialect names in stable order.
func Names() []string {
	return []string{"duckdb", "mssql", "mysql", "postgres", "sqlite"}
}
