// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package dcl implements the user management statements CREATE USER,
// ALTER USER and DROP USER, and queries over the cluster_schema virtual
// tables.
//
// Keywords and option names are case insensitive. Identifiers, including
// user names, are case sensitive whether quoted or not.
package dcl

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/catalog/clusterschema"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
)

// Parse parses a semicolon separated list of statements.
func Parse(sql string) ([]Statement, error) {
	toks, err := scan(sql)
	if err != nil {
		return nil, err
	}
	p := parser{toks: toks}
	var stmts []Statement
	for {
		for p.peek().isPunct(";") {
			p.next()
		}
		if p.peek().kind == tokEOF {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if t := p.peek(); !t.isPunct(";") && t.kind != tokEOF {
			return nil, p.syntaxError(t, "")
		}
	}
}

// ParseOne parses a single statement.
func ParseOne(sql string) (Statement, error) {
	stmts, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, pgerror.Newf(pgcode.Syntax, "expected 1 statement, found %d", len(stmts))
	}
	return stmts[0], nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) syntaxError(t token, detail string) error {
	msg := "at or near \"" + strings.ToLower(t.String()) + "\": syntax error"
	if t.kind == tokString || t.kind == tokQuotedIdent {
		msg = "at or near " + t.String() + ": syntax error"
	}
	if detail != "" {
		msg += ": " + detail
	}
	return pgerror.New(pgcode.Syntax, msg)
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.peek().isKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if t := p.next(); !t.isKeyword(kw) {
		return p.syntaxError(t, "expected "+kw)
	}
	return nil
}

func (p *parser) acceptPunct(s string) bool {
	if p.peek().isPunct(s) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectPunct(s string) error {
	if t := p.next(); !t.isPunct(s) {
		return p.syntaxError(t, "expected "+s)
	}
	return nil
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.next()
	switch {
	case t.isKeyword("CREATE"):
		if err := p.expectUserOrRole(); err != nil {
			return nil, err
		}
		return p.parseCreateUser()
	case t.isKeyword("ALTER"):
		if err := p.expectUserOrRole(); err != nil {
			return nil, err
		}
		return p.parseAlterUser()
	case t.isKeyword("DROP"):
		if err := p.expectUserOrRole(); err != nil {
			return nil, err
		}
		return p.parseDropUser()
	case t.isKeyword("SELECT"):
		return p.parseSelect()
	}
	return nil, p.syntaxError(t, "")
}

func (p *parser) expectUserOrRole() error {
	t := p.next()
	if t.isKeyword("USER") {
		return nil
	}
	if t.isKeyword("ROLE") {
		return pgerror.WithHint(
			errors.Newf("roles are not supported"),
			pgcode.FeatureNotSupported, "Use CREATE USER and GRANTED_ADMIN instead.")
	}
	return p.syntaxError(t, "expected USER")
}

func (p *parser) parseName() (username.SQLUsername, error) {
	t := p.next()
	if t.kind != tokIdent && t.kind != tokQuotedIdent {
		return username.SQLUsername{}, p.syntaxError(t, "expected user name")
	}
	return username.MakeSQLUsernameFromUserInput(t.val)
}

func (p *parser) parseCreateUser() (Statement, error) {
	n := &CreateUser{}
	if p.acceptKeyword("IF") {
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		n.IfNotExists = true
	}
	var err error
	if n.Name, err = p.parseName(); err != nil {
		return nil, err
	}
	p.acceptKeyword("WITH")
	for p.peek().kind == tokIdent {
		opt, err := p.parseOption()
		if err != nil {
			return nil, err
		}
		if opt.Kind == OptionGrantedAdmin {
			return nil, pgerror.WithHint(
				errors.Newf("option %s is not valid in CREATE USER", opt.Kind),
				pgcode.Syntax, "New users are never administrators; use ALTER USER to grant it.")
		}
		n.Options = append(n.Options, opt)
		p.acceptPunct(",")
	}
	if err := checkRedundant(n.Options); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseAlterUser() (Statement, error) {
	n := &AlterUser{}
	if p.acceptKeyword("IF") {
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		n.IfExists = true
	}
	var err error
	if n.Name, err = p.parseName(); err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptKeyword("SET"):
			for {
				opt, err := p.parseOption()
				if err != nil {
					return nil, err
				}
				n.Options = append(n.Options, opt)
				if !p.acceptPunct(",") {
					break
				}
			}
		case p.acceptKeyword("UNSET"):
			t := p.next()
			if !t.isKeyword("COMMENT") {
				return nil, p.syntaxError(t, "only COMMENT can be unset")
			}
			n.Options = append(n.Options, UserOption{Kind: OptionComment, Null: true})
		case p.acceptKeyword("WITH"):
			for p.peek().kind == tokIdent {
				opt, err := p.parseOption()
				if err != nil {
					return nil, err
				}
				n.Options = append(n.Options, opt)
				p.acceptPunct(",")
			}
		default:
			if len(n.Options) == 0 {
				return nil, p.syntaxError(p.peek(), "expected SET, UNSET or WITH")
			}
			if err := checkRedundant(n.Options); err != nil {
				return nil, err
			}
			return n, nil
		}
	}
}

func (p *parser) parseOption() (UserOption, error) {
	t := p.next()
	kind, ok := lookupOption(t.val)
	if t.kind != tokIdent || !ok {
		return UserOption{}, p.syntaxError(t, "unknown user option")
	}
	opt := UserOption{Kind: kind}
	p.acceptPunct("=")
	v := p.next()
	switch kind {
	case OptionPassword, OptionComment:
		switch {
		case v.kind == tokString:
			opt.Str = v.val
		case v.isKeyword("NULL"):
			opt.Null = true
		default:
			return UserOption{}, p.syntaxError(v, "expected string literal or NULL")
		}
	case OptionGrantedAdmin, OptionMustChangePassword:
		switch {
		case v.isKeyword("TRUE"):
			opt.Bool = true
		case v.isKeyword("FALSE"):
			opt.Bool = false
		default:
			return UserOption{}, p.syntaxError(v, "expected TRUE or FALSE")
		}
	}
	return opt, nil
}

func checkRedundant(opts []UserOption) error {
	var seen [4]bool
	for _, o := range opts {
		if seen[o.Kind] {
			return pgerror.Newf(pgcode.Syntax, "conflicting or redundant options: %s", o.Kind)
		}
		seen[o.Kind] = true
	}
	return nil
}

func (p *parser) parseDropUser() (Statement, error) {
	n := &DropUser{}
	if p.acceptKeyword("IF") {
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		n.IfExists = true
	}
	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		n.Names = append(n.Names, name)
		if !p.acceptPunct(",") {
			return n, nil
		}
	}
}

func (p *parser) parseIdent() (string, error) {
	t := p.next()
	if t.kind != tokIdent && t.kind != tokQuotedIdent {
		return "", p.syntaxError(t, "expected identifier")
	}
	return t.val, nil
}

func (p *parser) parseSelect() (Statement, error) {
	n := &Select{}
	if !p.acceptPunct("*") {
		for {
			col, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			n.Columns = append(n.Columns, col)
			if !p.acceptPunct(",") {
				break
			}
		}
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	var err error
	if n.Schema, err = p.parseIdent(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("."); err != nil {
		return nil, err
	}
	if n.Table, err = p.parseIdent(); err != nil {
		return nil, err
	}
	if !p.acceptKeyword("WHERE") {
		return n, nil
	}
	for {
		col, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		v := p.next()
		var d clusterschema.Datum
		switch {
		case v.kind == tokString:
			d = clusterschema.DString(v.val)
		case v.isKeyword("TRUE"):
			d = clusterschema.DBool(true)
		case v.isKeyword("FALSE"):
			d = clusterschema.DBool(false)
		default:
			return nil, p.syntaxError(v, "expected literal")
		}
		n.Filters = append(n.Filters, clusterschema.Filter{Column: col, Value: d})
		if !p.acceptKeyword("AND") {
			return n, nil
		}
	}
}
