// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package clusterschema exposes the user catalog as the read-only virtual
// schema cluster_schema. Rows are computed on every read from the user
// store; nothing is cached.
package clusterschema

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
)

// SchemaName is the name of the virtual schema.
const SchemaName = "cluster_schema"

// virtualSchemaTable is the definition of a virtual table. populate
// produces every row; an index, when present, produces the rows matching
// an equality constraint on one column without a full scan.
type virtualSchemaTable struct {
	name     string
	comment  string
	columns  []Column
	populate func(ctx context.Context, s *users.Store, addRow func(...Datum) error) error
	indexes  []virtualIndex
}

type virtualIndex struct {
	column   string
	populate func(ctx context.Context, constraint Datum, s *users.Store, addRow func(...Datum) error) (matched bool, err error)
}

var virtualTables = []*virtualSchemaTable{
	&clusterSchemaUsers,
}

// Schema resolves tables of cluster_schema against a store.
type Schema struct {
	tables map[string]*Table
}

// NewSchema returns the virtual schema backed by s.
func NewSchema(s *users.Store) *Schema {
	sc := &Schema{tables: make(map[string]*Table, len(virtualTables))}
	for _, def := range virtualTables {
		sc.tables[def.name] = &Table{def: def, store: s}
	}
	return sc
}

// TableNames returns the names of the tables of the schema in order.
func (sc *Schema) TableNames() []string {
	names := make([]string, 0, len(sc.tables))
	for n := range sc.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupTable resolves schema.table.
func (sc *Schema) LookupTable(schema, table string) (*Table, error) {
	if schema == SchemaName {
		if t, ok := sc.tables[table]; ok {
			return t, nil
		}
	}
	return nil, pgerror.Newf(pgcode.UndefinedTable, "relation %q does not exist", schema+"."+table)
}

// Table is a virtual table bound to a store.
type Table struct {
	def   *virtualSchemaTable
	store *users.Store
}

// Name returns the unqualified table name.
func (t *Table) Name() string { return t.def.name }

// Comment returns the table's description.
func (t *Table) Comment() string { return t.def.comment }

// Columns returns the columns of the table.
func (t *Table) Columns() []Column { return t.def.columns }

// ColumnIndex returns the ordinal of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.def.columns {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, pgerror.Newf(pgcode.UndefinedColumn, "column %q does not exist", name)
}

// Populate calls addRow for every row of the table.
func (t *Table) Populate(ctx context.Context, addRow func(...Datum) error) error {
	return t.def.populate(ctx, t.store, t.checkedAddRow(addRow))
}

// Lookup calls addRow for the rows whose column equals constraint, using
// an index when the table has one on column. It reports whether an index
// was used; if not, nothing was produced.
func (t *Table) Lookup(
	ctx context.Context, column string, constraint Datum, addRow func(...Datum) error,
) (bool, error) {
	for _, idx := range t.def.indexes {
		if idx.column == column {
			return idx.populate(ctx, constraint, t.store, t.checkedAddRow(addRow))
		}
	}
	return false, nil
}

func (t *Table) checkedAddRow(addRow func(...Datum) error) func(...Datum) error {
	return func(row ...Datum) error {
		if len(row) != len(t.def.columns) {
			return errors.AssertionFailedf("%s: expected %d values, got %d",
				t.def.name, len(t.def.columns), len(row))
		}
		for i, d := range row {
			if d.ResolvedType() != t.def.columns[i].Type {
				return errors.AssertionFailedf("%s: column %s expects %s, got %s",
					t.def.name, t.def.columns[i].Name, t.def.columns[i].Type, d.ResolvedType())
			}
		}
		return addRow(row...)
	}
}
