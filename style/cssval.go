package style

import (
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
)

// component is one item of a CSS value: a single token, or a function call
// whose arguments are split on top-level commas.
type component struct {
	typ   any           // scanner token type; the scanner keeps the type name unexported
	value string        // token text; for functions the lowercased name
	args  [][]component // function arguments
}

func (c component) isFunc(names ...string) bool {
	if c.typ != scanner.TokenFunction {
		return false
	}
	for _, n := range names {
		if c.value == n {
			return true
		}
	}
	return false
}

func (c component) isIdent(names ...string) bool {
	if c.typ != scanner.TokenIdent {
		return false
	}
	for _, n := range names {
		if strings.EqualFold(c.value, n) {
			return true
		}
	}
	return false
}

func (c component) numeric() bool {
	switch c.typ {
	case scanner.TokenNumber, scanner.TokenPercentage, scanner.TokenDimension:
		return true
	}
	return false
}

// number splits a numeric token into its value and unit ("", "%", "px", ...).
func (c component) number() (float64, string, bool) {
	if !c.numeric() {
		return 0, "", false
	}
	return splitNumber(c.value)
}

// String reassembles the component as CSS text.
func (c component) String() string {
	if c.typ != scanner.TokenFunction {
		return c.value
	}
	var sb strings.Builder
	sb.WriteString(c.value)
	sb.WriteByte('(')
	for i, arg := range c.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		for j, a := range arg {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(a.String())
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func splitNumber(s string) (float64, string, bool) {
	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == '+' {
			end++
			continue
		}
		if (ch == 'e' || ch == 'E') && end+1 < len(s) && (s[end+1] >= '0' && s[end+1] <= '9' || s[end+1] == '-') {
			end += 2
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.ToLower(s[end:]), true
}

// tokenStream adds one token of lookahead to the scanner.
type tokenStream struct {
	s      *scanner.Scanner
	peeked *scanner.Token
}

func (ts *tokenStream) next() *scanner.Token {
	if ts.peeked != nil {
		t := ts.peeked
		ts.peeked = nil
		return t
	}
	return ts.s.Next()
}

func (ts *tokenStream) peek() *scanner.Token {
	if ts.peeked == nil {
		ts.peeked = ts.s.Next()
	}
	return ts.peeked
}

// layers tokenizes a CSS value and splits it on top-level commas, dropping
// whitespace and comments. "a b, c(d, e)" gives [[a b] [c(...)]].
func layers(value string) [][]component {
	ts := &tokenStream{s: scanner.New(value)}
	return readGroups(ts, false)
}

// components returns the first comma group of value.
func components(value string) []component {
	l := layers(value)
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

func readGroups(ts *tokenStream, inFunc bool) [][]component {
	var groups [][]component
	var cur []component
	for {
		tok := ts.next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return append(groups, cur)
		case scanner.TokenS, scanner.TokenComment:
			continue
		case scanner.TokenFunction:
			name := strings.ToLower(strings.TrimSuffix(tok.Value, "("))
			cur = append(cur, component{typ: scanner.TokenFunction, value: name, args: readGroups(ts, true)})
		case scanner.TokenChar:
			switch tok.Value {
			case ")":
				if inFunc {
					return append(groups, cur)
				}
			case "(":
				// bare parenthesised group, kept as an anonymous function
				cur = append(cur, component{typ: scanner.TokenFunction, args: readGroups(ts, true)})
			case ",":
				groups = append(groups, cur)
				cur = nil
			case "-", "+":
				// the scanner leaves signs detached from numbers
				if nt := ts.peek(); isNumericToken(nt) {
					ts.next()
					cur = append(cur, component{typ: nt.Type, value: tok.Value + nt.Value})
					continue
				}
				cur = append(cur, component{typ: tok.Type, value: tok.Value})
			default:
				cur = append(cur, component{typ: tok.Type, value: tok.Value})
			}
		default:
			cur = append(cur, component{typ: tok.Type, value: tok.Value})
		}
	}
}

func isNumericToken(t *scanner.Token) bool {
	switch t.Type {
	case scanner.TokenNumber, scanner.TokenPercentage, scanner.TokenDimension:
		return true
	}
	return false
}

// Px parses a computed length such as "12px" or "12". Keywords and empty
// values give 0.
func Px(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	n, unit, ok := splitNumber(v)
	if !ok {
		return 0
	}
	switch unit {
	case "", "px":
		return n
	case "pt":
		return n * 4 / 3
	}
	return 0
}
