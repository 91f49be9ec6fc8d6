package exprast

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
	tokTemplateChunk
)

type token struct {
	kind  tokenKind
	text  string
	value any
	start int
	end   int
}

// lexer tokenizes a template binding expression. It is hand-rolled rather
// than borrowed from a full JS tokenizer because the binding expression
// grammar is a small, well-known subset (no regex literals, no ASI, no
// statements) — matching the scope of a template compiler's own expression
// parser rather than a general host-language parser (which spec.md treats
// as an opaque external collaborator).
type lexer struct {
	src  string
	pos  int
	toks []token
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *lexer) tokenize() ([]token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case isIdentStart(c):
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			l.toks = append(l.toks, token{kind: tokIdent, text: l.src[start:l.pos], start: start, end: l.pos})
		case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
			start := l.pos
			for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
				l.pos++
			}
			text := l.src[start:l.pos]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{Message: "invalid number literal: " + text, Offset: start}
			}
			l.toks = append(l.toks, token{kind: tokNumber, text: text, value: num, start: start, end: l.pos})
		case c == '\'' || c == '"':
			start := l.pos
			quote := c
			l.pos++
			var b strings.Builder
			for l.pos < len(l.src) && l.src[l.pos] != quote {
				if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
					l.pos++
				}
				b.WriteByte(l.src[l.pos])
				l.pos++
			}
			if l.pos >= len(l.src) {
				return nil, &ParseError{Message: "unterminated string literal", Offset: start}
			}
			l.pos++ // closing quote
			l.toks = append(l.toks, token{kind: tokString, text: b.String(), value: b.String(), start: start, end: l.pos})
		default:
			start := l.pos
			punct, size := l.matchPunct()
			if size == 0 {
				return nil, &ParseError{Message: "unexpected character " + string(c), Offset: start}
			}
			l.pos += size
			l.toks = append(l.toks, token{kind: tokPunct, text: punct, start: start, end: l.pos})
		}
	}
	l.toks = append(l.toks, token{kind: tokEOF, start: l.pos, end: l.pos})
	return l.toks, nil
}

// multiCharPuncts must be checked longest-first so "===" isn't lexed as "==" + "=".
var multiCharPuncts = []string{"===", "!==", "??", "?.", "==", "!=", "<=", ">=", "&&", "||"}

func (l *lexer) matchPunct() (string, int) {
	rest := l.src[l.pos:]
	for _, p := range multiCharPuncts {
		if strings.HasPrefix(rest, p) {
			return p, len(p)
		}
	}
	c := l.src[l.pos]
	switch c {
	case '.', '(', ')', '[', ']', '{', '}', ',', ':', '?', '+', '-', '*', '/', '%', '=', '!', '<', '>', '|', '&':
		return string(c), 1
	}
	return "", 0
}

// ParseError reports a malformed expression. Callers recover by substituting
// an Unknown node so downstream stages still see an ExprTableEntry
// (spec.md §4.2 "Errors").
type ParseError struct {
	Message string
	Offset  int
}

func (e *ParseError) Error() string { return e.Message }
