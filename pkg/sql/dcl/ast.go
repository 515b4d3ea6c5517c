// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package dcl

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/catalog/clusterschema"
)

// Statement is a parsed statement.
type Statement interface {
	// StatementTag is the command tag reported to the client.
	StatementTag() string
	// String renders the statement with passwords elided.
	String() string
	statement()
}

// OptionKind identifies a user option.
type OptionKind int

const (
	// OptionPassword sets or clears the password.
	OptionPassword OptionKind = iota
	// OptionGrantedAdmin sets the admin flag. ALTER USER only.
	OptionGrantedAdmin
	// OptionMustChangePassword sets the must_change_password flag.
	OptionMustChangePassword
	// OptionComment sets or unsets the comment.
	OptionComment
)

var optionNames = map[OptionKind]string{
	OptionPassword:           "PASSWORD",
	OptionGrantedAdmin:       "GRANTED_ADMIN",
	OptionMustChangePassword: "MUST_CHANGE_PASSWORD",
	OptionComment:            "COMMENT",
}

// String implements fmt.Stringer.
func (k OptionKind) String() string { return optionNames[k] }

// lookupOption resolves an option name, case insensitively.
func lookupOption(s string) (OptionKind, bool) {
	s = strings.ToUpper(s)
	for k, n := range optionNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// UserOption is one option of CREATE USER or ALTER USER.
type UserOption struct {
	Kind OptionKind
	// Str holds the value of PASSWORD and COMMENT.
	Str string
	// Bool holds the value of GRANTED_ADMIN and MUST_CHANGE_PASSWORD.
	Bool bool
	// Null is set for PASSWORD NULL and UNSET COMMENT.
	Null bool
}

func (o UserOption) String() string {
	switch {
	case o.Kind == OptionComment && o.Null:
		return "UNSET COMMENT"
	case o.Null:
		return o.Kind.String() + " = NULL"
	case o.Kind == OptionPassword:
		return "PASSWORD = '*****'"
	case o.Kind == OptionComment:
		return "COMMENT = " + quoteString(o.Str)
	}
	return o.Kind.String() + " = " + strconv.FormatBool(o.Bool)
}

// CreateUser represents CREATE USER.
type CreateUser struct {
	Name        username.SQLUsername
	IfNotExists bool
	Options     []UserOption
}

// AlterUser represents ALTER USER.
type AlterUser struct {
	Name     username.SQLUsername
	IfExists bool
	Options  []UserOption
}

// DropUser represents DROP USER.
type DropUser struct {
	Names    []username.SQLUsername
	IfExists bool
}

// Select represents a query over a virtual table. A nil Columns selects
// every column.
type Select struct {
	Columns []string
	Schema  string
	Table   string
	Filters []clusterschema.Filter
}

func (*CreateUser) statement() {}
func (*AlterUser) statement()  {}
func (*DropUser) statement()   {}
func (*Select) statement()     {}

// StatementTag implements Statement.
func (*CreateUser) StatementTag() string { return "CREATE USER" }

// StatementTag implements Statement.
func (*AlterUser) StatementTag() string { return "ALTER USER" }

// StatementTag implements Statement.
func (*DropUser) StatementTag() string { return "DROP USER" }

// StatementTag implements Statement.
func (*Select) StatementTag() string { return "SELECT" }

func (n *CreateUser) String() string {
	var b strings.Builder
	b.WriteString("CREATE USER ")
	if n.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(n.Name.SQLIdentifier())
	if len(n.Options) > 0 {
		b.WriteString(" WITH")
		for _, o := range n.Options {
			b.WriteByte(' ')
			b.WriteString(o.String())
		}
	}
	return b.String()
}

func (n *AlterUser) String() string {
	var b strings.Builder
	b.WriteString("ALTER USER ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(n.Name.SQLIdentifier())
	for _, o := range n.Options {
		if o.Kind == OptionComment && o.Null {
			b.WriteString(" UNSET COMMENT")
			continue
		}
		b.WriteString(" SET ")
		b.WriteString(o.String())
	}
	return b.String()
}

func (n *DropUser) String() string {
	var b strings.Builder
	b.WriteString("DROP USER ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	for i, u := range n.Names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(u.SQLIdentifier())
	}
	return b.String()
}

func (n *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(n.Columns) == 0 {
		b.WriteByte('*')
	} else {
		b.WriteString(strings.Join(n.Columns, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(n.Schema)
	b.WriteByte('.')
	b.WriteString(n.Table)
	for i, f := range n.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(f.Column)
		b.WriteString(" = ")
		if s, ok := f.Value.(clusterschema.DString); ok {
			b.WriteString(quoteString(string(s)))
		} else {
			b.WriteString(f.Value.String())
		}
	}
	return b.String()
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
