// Package caseparse reconstructs the structured predicate-group form of a
// CASE expression from its SQL text. It is the left inverse of the transform
// compiler's CASE emission for anything that compiler produced; it makes no
// promise about arbitrary hand-written SQL. Unparseable input yields a
// best-effort partial structure and ok=false, never an error; the editing
// layer falls back to raw-text editing in that case.
package caseparse

import (
	"log/slog"
	"regexp"
	"strings"

	"reportsql/internal/domain"
)

// Parser parses CASE SQL text. The zero value is usable; the logger records
// unparseable input at debug level and may be nil.
type Parser struct {
	log *slog.Logger
}

// New creates a Parser with the given logger.
func New(log *slog.Logger) *Parser {
	return &Parser{log: log}
}

// Parse is a convenience for a Parser without logging.
func Parse(sql string) (domain.CaseSpec, bool) {
	return (&Parser{}).Parse(sql)
}

var trailingAliasRe = regexp.MustCompile("(?i)^AS\\s+(\"[^\"]+\"|`[^`]+`|\\[[^\\]]+\\]|[A-Za-z_][A-Za-z0-9_]*)\\s*$")

// numericRe matches literals the emitter left unquoted.
var numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Parse scans the text once, tracking parenthesis depth and string-literal
// state, and rebuilds the predicate groups. The boolean reports whether the
// whole input was consumed into structure; on false the returned spec holds
// whatever prefix parsed cleanly.
func (p *Parser) Parse(sql string) (domain.CaseSpec, bool) {
	spec := domain.CaseSpec{}
	s := strings.TrimSpace(sql)

	if !keywordAt(s, 0, "CASE") {
		return p.fail(spec, sql, "input does not start with CASE")
	}
	pos := len("CASE")

	for {
		kwPos, kw := findKeyword(s, pos, "WHEN", "ELSE", "END")
		if kwPos < 0 {
			return p.fail(spec, sql, "missing END")
		}

		switch kw {
		case "WHEN":
			condStart := kwPos + len("WHEN")
			thenPos, _ := findKeyword(s, condStart, "THEN")
			if thenPos < 0 {
				return p.fail(spec, sql, "WHEN without THEN")
			}
			valueStart := thenPos + len("THEN")
			nextPos, _ := findKeyword(s, valueStart, "WHEN", "ELSE", "END")
			if nextPos < 0 {
				return p.fail(spec, sql, "THEN value is not terminated")
			}

			group, ok := p.parseGroup(s[condStart:thenPos], s[valueStart:nextPos])
			if !ok {
				return p.fail(spec, sql, "unparseable WHEN group")
			}
			spec.Groups = append(spec.Groups, group)
			pos = nextPos

		case "ELSE":
			endPos, _ := findKeyword(s, kwPos+len("ELSE"), "END")
			if endPos < 0 {
				return p.fail(spec, sql, "ELSE without END")
			}
			value, ok := unquoteLiteral(s[kwPos+len("ELSE") : endPos])
			if !ok {
				return p.fail(spec, sql, "unparseable ELSE literal")
			}
			spec.Else = &value
			pos = endPos

		case "END":
			rest := strings.TrimSpace(s[kwPos+len("END"):])
			if rest != "" {
				m := trailingAliasRe.FindStringSubmatch(rest)
				if m == nil {
					return p.fail(spec, sql, "trailing text after END")
				}
				spec.Target = trimDelimiters(m[1])
			}
			return spec, true
		}
	}
}

// parseGroup splits one WHEN condition into predicates on top-level AND/OR
// and parses the THEN literal.
func (p *Parser) parseGroup(condText, thenText string) (domain.PredicateGroup, bool) {
	group := domain.PredicateGroup{}

	then, ok := unquoteLiteral(thenText)
	if !ok {
		return group, false
	}
	group.Then = then

	cond := stripOuterParens(condText)
	if cond == "" {
		return group, false
	}

	for _, part := range splitJoined(cond) {
		pred, ok := parsePredicate(part.text)
		if !ok {
			return group, false
		}
		pred.JoinToNext = domain.JoinAnd
		if part.joiner == "OR" {
			pred.JoinToNext = domain.JoinOr
		}
		group.Predicates = append(group.Predicates, pred)
	}
	return group, true
}

// comparison symbols the binary fallback recognizes, longest first at any
// given position.
var comparisonOps = map[string]domain.FieldOperator{
	">=": domain.OpGte,
	"<=": domain.OpLte,
	"<>": domain.OpNe,
	"!=": domain.OpNe,
	"=":  domain.OpEq,
	">":  domain.OpGt,
	"<":  domain.OpLt,
}

// parsePredicate parses one comparison: first the IN form, then the binary
// form recognizing =, <>, >, >=, <, <=, and LIKE.
func parsePredicate(text string) (domain.Predicate, bool) {
	text = stripOuterParens(text)

	if pred, ok := parseInPredicate(text); ok {
		return pred, true
	}

	if likePos, _ := findKeyword(text, 0, "LIKE"); likePos >= 0 {
		left, lok := classifyOperand(text[:likePos])
		right, rok := classifyOperand(text[likePos+len("LIKE"):])
		if lok && rok {
			return domain.Predicate{Left: left, Op: domain.OpLike, Right: right}, true
		}
		return domain.Predicate{}, false
	}

	symPos, sym := findSymbol(text, ">=", "<=", "<>", "!=", "=", ">", "<")
	if symPos < 0 {
		return domain.Predicate{}, false
	}
	left, lok := classifyOperand(text[:symPos])
	right, rok := classifyOperand(text[symPos+len(sym):])
	if !lok || !rok {
		return domain.Predicate{}, false
	}
	return domain.Predicate{Left: left, Op: comparisonOps[sym], Right: right}, true
}

// parseInPredicate matches "left IN (...)" with a literal list, or
// "left IN <ident>" naming a single column: bracketed, quoted per dialect,
// or bare. The single-column form is what the emitter produces for a column
// operand on the right of IN.
func parseInPredicate(text string) (domain.Predicate, bool) {
	inPos, _ := findKeyword(text, 0, "IN")
	if inPos < 0 {
		return domain.Predicate{}, false
	}
	left, ok := classifyOperand(text[:inPos])
	if !ok {
		return domain.Predicate{}, false
	}

	rest := strings.TrimSpace(text[inPos+len("IN"):])
	switch {
	case len(rest) >= 2 && rest[0] == '(' && rest[len(rest)-1] == ')' && parenWrapsWhole(rest):
		inner := rest[1 : len(rest)-1]
		var values []string
		for _, item := range splitTopCommas(inner) {
			v, ok := unquoteLiteral(item)
			if !ok {
				return domain.Predicate{}, false
			}
			values = append(values, v)
		}
		return domain.Predicate{Left: left, Op: domain.OpIn, Right: domain.LitList(values...)}, true

	case len(rest) >= 2 && rest[0] == '[' && rest[len(rest)-1] == ']':
		return domain.Predicate{Left: left, Op: domain.OpIn, Right: domain.Col(rest[1 : len(rest)-1])}, true
	}

	if right, ok := classifyOperand(rest); ok && right.Kind == domain.OperandColumn {
		return domain.Predicate{Left: left, Op: domain.OpIn, Right: right}, true
	}
	return domain.Predicate{}, false
}

// classifyOperand decides whether one side of a comparison is a column
// reference or a literal. Delimited names and bare words are columns;
// quoted strings and numerics are literals, matching what the emitter
// produces.
func classifyOperand(text string) (domain.Operand, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return domain.Operand{}, false
	}

	if t[0] == '\'' {
		v, ok := unquoteLiteral(t)
		if !ok {
			return domain.Operand{}, false
		}
		return domain.Lit(v), true
	}
	if numericRe.MatchString(t) {
		return domain.Lit(t), true
	}
	if len(t) >= 2 {
		switch {
		case t[0] == '"' && t[len(t)-1] == '"',
			t[0] == '`' && t[len(t)-1] == '`',
			t[0] == '[' && t[len(t)-1] == ']':
			return domain.Col(trimDelimiters(t)), true
		}
	}
	if isBareIdentifier(t) {
		return domain.Col(t), true
	}
	return domain.Operand{}, false
}

// unquoteLiteral reads a single-quoted literal (undoing '' escapes) or a
// bare numeric literal.
func unquoteLiteral(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if numericRe.MatchString(t) {
		return t, true
	}
	if len(t) < 2 || t[0] != '\'' || t[len(t)-1] != '\'' {
		return "", false
	}
	inner := t[1 : len(t)-1]
	// Reject literals whose closing quote is not really at the end, e.g.
	// 'a' = 'b'. The doubled-quote rewrite below would mask the error.
	var st scanState
	i := 0
	for i < len(t) {
		i = st.step(t, i)
		if st.top() && i < len(t) {
			return "", false
		}
	}
	return strings.ReplaceAll(inner, "''", "'"), true
}

func trimDelimiters(t string) string {
	if len(t) >= 2 {
		switch {
		case t[0] == '"' && t[len(t)-1] == '"':
			return strings.ReplaceAll(t[1:len(t)-1], `""`, `"`)
		case t[0] == '`' && t[len(t)-1] == '`':
			return t[1 : len(t)-1]
		case t[0] == '[' && t[len(t)-1] == ']':
			return strings.ReplaceAll(t[1:len(t)-1], "]]", "]")
		}
	}
	return t
}

func isBareIdentifier(t string) bool {
	for i := 0; i < len(t); i++ {
		if !isIdentByte(t[i]) {
			return false
		}
	}
	return t[0] < '0' || t[0] > '9'
}

// fail logs the reason and returns whatever partial structure accumulated.
func (p *Parser) fail(partial domain.CaseSpec, sql, reason string) (domain.CaseSpec, bool) {
	if p.log != nil {
		p.log.Debug("case expression not round-trippable", "reason", reason, "sql", sql)
	}
	return partial, false
}
