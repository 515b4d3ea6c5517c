// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package clusterschema

import (
	"context"

	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
)

// Filter is an equality predicate column = value.
type Filter struct {
	Column string
	Value  Datum
}

// Result holds the rows of a query over a virtual table.
type Result struct {
	Columns []Column
	Rows    []Row
}

// Select returns the named columns (all of them if columns is empty) of
// the rows matching every filter. The first filter on an indexed column
// drives a point lookup; the rest are evaluated over the produced rows.
func (t *Table) Select(ctx context.Context, columns []string, filters []Filter) (*Result, error) {
	proj := make([]int, 0, len(t.def.columns))
	res := &Result{}
	if len(columns) == 0 {
		for i, c := range t.def.columns {
			proj = append(proj, i)
			res.Columns = append(res.Columns, c)
		}
	} else {
		for _, name := range columns {
			i, err := t.ColumnIndex(name)
			if err != nil {
				return nil, err
			}
			proj = append(proj, i)
			res.Columns = append(res.Columns, t.def.columns[i])
		}
	}

	type boundFilter struct {
		col int
		val Datum
	}
	bound := make([]boundFilter, len(filters))
	for i, f := range filters {
		col, err := t.ColumnIndex(f.Column)
		if err != nil {
			return nil, err
		}
		want := t.def.columns[col].Type
		if want == TypeJSON {
			return nil, pgerror.Newf(pgcode.FeatureNotSupported,
				"filtering on column %q of type %s is not supported", f.Column, want)
		}
		if f.Value.ResolvedType() != want {
			return nil, pgerror.Newf(pgcode.DatatypeMismatch,
				"unsupported comparison: %s = %s", want, f.Value.ResolvedType())
		}
		bound[i] = boundFilter{col: col, val: f.Value}
	}

	addRow := func(row ...Datum) error {
		for _, f := range bound {
			if row[f.col] != f.val {
				return nil
			}
		}
		out := make(Row, len(proj))
		for i, p := range proj {
			out[i] = row[p]
		}
		res.Rows = append(res.Rows, out)
		return nil
	}

	for _, f := range filters {
		matched, err := t.Lookup(ctx, f.Column, f.Value, addRow)
		if err != nil {
			return nil, err
		}
		if matched {
			return res, nil
		}
	}
	if err := t.Populate(ctx, addRow); err != nil {
		return nil, err
	}
	return res, nil
}
