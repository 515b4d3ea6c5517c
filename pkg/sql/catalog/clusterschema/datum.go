// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package clusterschema

import "strconv"

// ColumnType is the type of a virtual table column.
type ColumnType int

const (
	// TypeString is a text column.
	TypeString ColumnType = iota
	// TypeBool is a boolean column.
	TypeBool
	// TypeJSON is a column holding a JSON document.
	TypeJSON
)

// String implements fmt.Stringer.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	case TypeJSON:
		return "JSONB"
	}
	return "UNKNOWN"
}

// Column describes one column of a virtual table.
type Column struct {
	Name string
	Type ColumnType
}

// Datum is a single value in a row.
type Datum interface {
	// ResolvedType returns the type of the value.
	ResolvedType() ColumnType
	// String renders the value for display.
	String() string
}

// DString is a string value.
type DString string

// DBool is a boolean value.
type DBool bool

// DJSON is a JSON document.
type DJSON string

// ResolvedType implements Datum.
func (DString) ResolvedType() ColumnType { return TypeString }

// ResolvedType implements Datum.
func (DBool) ResolvedType() ColumnType { return TypeBool }

// ResolvedType implements Datum.
func (DJSON) ResolvedType() ColumnType { return TypeJSON }

func (d DString) String() string { return string(d) }
func (d DBool) String() string   { return strconv.FormatBool(bool(d)) }
func (d DJSON) String() string   { return string(d) }

// Row is one row of a virtual table.
type Row []Datum

// Strings renders every value of the row.
func (r Row) Strings() []string {
	res := make([]string, len(r))
	for i, d := range r {
		res[i] = d.String()
	}
	return res
}
