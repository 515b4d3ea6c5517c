// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package dcl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuotedIdent
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "EOF"
	case tokString:
		return quoteString(t.val)
	case tokQuotedIdent:
		return `"` + t.val + `"`
	}
	return t.val
}

// isKeyword returns true if t is the unquoted keyword kw.
func (t token) isKeyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.val, kw)
}

func (t token) isPunct(p string) bool {
	return t.kind == tokPunct && t.val == p
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || r == '$'
}

// scan splits sql into tokens. Comments start with -- and run to the end
// of the line.
func scan(sql string) ([]token, error) {
	var toks []token
	pos := 0
	for pos < len(sql) {
		r, w := utf8.DecodeRuneInString(sql[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += w
		case r == '-' && strings.HasPrefix(sql[pos:], "--"):
			if nl := strings.IndexByte(sql[pos:], '\n'); nl >= 0 {
				pos += nl + 1
			} else {
				pos = len(sql)
			}
		case r == '\'' || r == '"':
			val, n, err := scanQuoted(sql[pos:], byte(r))
			if err != nil {
				return nil, err
			}
			kind := tokString
			if r == '"' {
				kind = tokQuotedIdent
			}
			toks = append(toks, token{kind: kind, val: val, pos: pos})
			pos += n
		case strings.ContainsRune(";,=.*", r):
			toks = append(toks, token{kind: tokPunct, val: string(r), pos: pos})
			pos += w
		case isIdentStart(r):
			start := pos
			for pos < len(sql) {
				r, w := utf8.DecodeRuneInString(sql[pos:])
				if !isIdentChar(r) {
					break
				}
				pos += w
			}
			toks = append(toks, token{kind: tokIdent, val: sql[start:pos], pos: start})
		default:
			return nil, pgerror.Newf(pgcode.Syntax,
				"at or near %q: syntax error: unexpected character", string(r))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(sql)})
	return toks, nil
}

// scanQuoted scans a literal delimited by q, where a doubled q stands for
// itself. It returns the unescaped value and the number of bytes consumed.
func scanQuoted(s string, q byte) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != q {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			b.WriteByte(q)
			i++
			continue
		}
		return b.String(), i + 1, nil
	}
	what := "string literal"
	if q == '"' {
		what = "quoted identifier"
	}
	return "", 0, pgerror.Newf(pgcode.Syntax, "unterminated %s", what)
}
