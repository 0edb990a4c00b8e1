package sqlite

import (
	"fmt"
	"strings"

	"github.com/maloquacious/sensordb/internal/store"
)

type tokenKind int

const (
	tokWord   tokenKind = iota // keyword, bare identifier or number, upper-cased
	tokIdent                   // quoted identifier, quotes removed
	tokString                  // string literal, contents dropped
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits a CREATE statement into tokens, dropping comments and the
// contents of string literals so neither can be mistaken for a keyword.
func tokenize(sql string) []token {
	var toks []token
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				return toks
			}
			i += end + 1
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return toks
			}
			i += end + 4
		case c == '\'':
			_, n := quoted(sql[i:], '\'')
			toks = append(toks, token{kind: tokString})
			i += n
		case c == '"' || c == '`':
			text, n := quoted(sql[i:], c)
			toks = append(toks, token{kind: tokIdent, text: text})
			i += n
		case c == '[':
			end := strings.IndexByte(sql[i:], ']')
			if end < 0 {
				end = len(sql) - i
			}
			toks = append(toks, token{kind: tokIdent, text: sql[i+1 : i+end]})
			i += end + 1
		case isWordByte(c):
			j := i
			for j < len(sql) && isWordByte(sql[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: strings.ToUpper(sql[i:j])})
			i = j
		default:
			toks = append(toks, token{kind: tokPunct, text: string(c)})
			i++
		}
	}
	return toks
}

// quoted reads a quoted run starting at s[0] where a doubled quote is an
// escaped quote. It returns the unescaped text and the bytes consumed.
func quoted(s string, q byte) (string, int) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				b.WriteByte(q)
				i++
				continue
			}
			return b.String(), i + 1
		}
		b.WriteByte(s[i])
	}
	return b.String(), len(s)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// tableDefs splits the column definition list of a CREATE TABLE statement
// on top-level commas. rest holds the tokens after the closing paren.
func tableDefs(toks []token) (defs [][]token, rest []token, err error) {
	start := -1
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "(" {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil, fmt.Errorf("no column definition list")
	}

	depth := 0
	var cur []token
	for i := start + 1; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokPunct {
			switch t.text {
			case "(":
				depth++
			case ")":
				if depth == 0 {
					return append(defs, cur), toks[i+1:], nil
				}
				depth--
			case ",":
				if depth == 0 {
					defs = append(defs, cur)
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, t)
	}
	return nil, nil, fmt.Errorf("unterminated column definition list")
}

// constraintWords are column constraints that would restrict what a
// reading may hold. NOT NULL and PRIMARY KEY are checked via table_xinfo.
var constraintWords = map[string]bool{
	"CHECK":      true,
	"UNIQUE":     true,
	"REFERENCES": true,
	"DEFAULT":    true,
	"COLLATE":    true,
	"GENERATED":  true,
	"AS":         true,
}

// tableConstraintWords start a table-level constraint instead of a column.
var tableConstraintWords = map[string]bool{
	"CONSTRAINT": true,
	"PRIMARY":    true,
	"UNIQUE":     true,
	"CHECK":      true,
	"FOREIGN":    true,
}

// checkReadingsDDL inspects the stored CREATE TABLE text for constraints
// that table_xinfo does not report, and requires AUTOINCREMENT on id.
func checkReadingsDDL(ddl string) error {
	defs, rest, err := tableDefs(tokenize(ddl))
	if err != nil {
		return fmt.Errorf("%w: %s table: %v", store.ErrSchemaConflict, store.ReadingsTable, err)
	}
	for len(rest) > 0 && rest[len(rest)-1].kind == tokPunct && rest[len(rest)-1].text == ";" {
		rest = rest[:len(rest)-1]
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: %s table has options %q", store.ErrSchemaConflict, store.ReadingsTable, joinTokens(rest))
	}

	autoincrement := false
	for _, def := range defs {
		if len(def) == 0 {
			continue
		}
		head := def[0]
		if head.kind == tokWord && tableConstraintWords[head.text] {
			return fmt.Errorf("%w: %s table has constraint %q", store.ErrSchemaConflict, store.ReadingsTable, joinTokens(def))
		}
		name := head.text
		for _, t := range def[1:] {
			if t.kind == tokWord && constraintWords[t.text] {
				return fmt.Errorf("%w: column %q has %s", store.ErrSchemaConflict, name, t.text)
			}
			if t.kind == tokWord && t.text == "AUTOINCREMENT" && strings.EqualFold(name, "id") {
				autoincrement = true
			}
		}
	}
	if !autoincrement {
		return fmt.Errorf("%w: column %q is not AUTOINCREMENT", store.ErrSchemaConflict, "id")
	}
	return nil
}

func joinTokens(toks []token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		switch t.kind {
		case tokString:
			parts = append(parts, "''")
		case tokIdent:
			parts = append(parts, `"`+t.text+`"`)
		default:
			parts = append(parts, t.text)
		}
	}
	return strings.Join(parts, " ")
}
