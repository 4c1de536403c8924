package transform

import (
	"regexp"
	"strings"
)

// stringLiteralRe matches single-quoted SQL string literals including ''
// escapes, so their contents never look like column references.
var stringLiteralRe = regexp.MustCompile(`'(?:[^']|'')*'`)

// identifierRe matches backtick-, bracket-, or double-quote-delimited
// identifiers, and bare words.
var identifierRe = regexp.MustCompile("`[^`]+`" + `|\[[^\]]+\]|"[^"]+"|[A-Za-z_][A-Za-z0-9_]*`)

// exprKeywords is the fixed keyword set excluded when tokenizing expressions
// for column references. Common scalar/aggregate function names are included
// so CustomColumn expressions like ROUND(a / b, 2) resolve only a and b.
var exprKeywords = map[string]struct{}{
	"AND": {}, "OR": {}, "NOT": {}, "IN": {}, "IS": {}, "NULL": {},
	"LIKE": {}, "BETWEEN": {}, "TRUE": {}, "FALSE": {},
	"CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {}, "END": {},
	"AS": {}, "CAST": {}, "DISTINCT": {},
	"COALESCE": {}, "NULLIF": {}, "IFNULL": {}, "GREATEST": {}, "LEAST": {},
	"SUM": {}, "AVG": {}, "MIN": {}, "MAX": {}, "COUNT": {},
	"ROUND": {}, "FLOOR": {}, "CEIL": {}, "CEILING": {}, "ABS": {}, "MOD": {},
	"POWER": {}, "SQRT": {}, "EXP": {}, "LN": {}, "LOG": {},
	"UPPER": {}, "LOWER": {}, "TRIM": {}, "LTRIM": {}, "RTRIM": {},
	"LENGTH": {}, "SUBSTRING": {}, "SUBSTR": {}, "REPLACE": {}, "TRANSLATE": {},
	"CONCAT": {}, "LEFT": {}, "RIGHT": {}, "POSITION": {}, "REVERSE": {},
	"DATE": {}, "EXTRACT": {}, "YEAR": {}, "MONTH": {}, "DAY": {},
	"CURRENT_DATE": {}, "CURRENT_TIMESTAMP": {}, "NOW": {},
	"INTEGER": {}, "BIGINT": {}, "DOUBLE": {}, "DECIMAL": {}, "NUMERIC": {},
	"VARCHAR": {}, "TEXT": {}, "BOOLEAN": {}, "INTERVAL": {},
}

// referencedColumns extracts the column names an expression references:
// words and quoted/bracketed identifiers, minus the keyword set and string
// literal contents. Order of first appearance is preserved.
func referencedColumns(expr string) []string {
	cleaned := stringLiteralRe.ReplaceAllString(expr, "''")

	seen := map[string]struct{}{}
	var cols []string
	for _, tok := range identifierRe.FindAllString(cleaned, -1) {
		name := trimIdentifier(tok)
		if name == "" {
			continue
		}
		if _, kw := exprKeywords[strings.ToUpper(name)]; kw {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cols = append(cols, name)
	}
	return cols
}

// trimIdentifier strips one layer of identifier delimiters.
func trimIdentifier(tok string) string {
	if len(tok) >= 2 {
		switch {
		case tok[0] == '"' && tok[len(tok)-1] == '"',
			tok[0] == '`' && tok[len(tok)-1] == '`':
			return tok[1 : len(tok)-1]
		case tok[0] == '[' && tok[len(tok)-1] == ']':
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}

// columnSet is a membership set over resolved column names.
type columnSet map[string]struct{}

func newColumnSet(cols []string) columnSet {
	s := make(columnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

func (s columnSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s columnSet) add(name string) { s[name] = struct{}{} }

// missing returns the subset of refs not present in the set.
func (s columnSet) missing(refs []string) []string {
	var out []string
	for _, r := range refs {
		if !s.has(r) {
			out = append(out, r)
		}
	}
	return out
}
