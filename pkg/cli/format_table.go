// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/sql/dcl"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

type tableDisplayFormat int

const (
	tableDisplayTSV tableDisplayFormat = iota
	tableDisplayCSV
	tableDisplayPretty
)

var tableDisplayNames = map[tableDisplayFormat]string{
	tableDisplayTSV:    "tsv",
	tableDisplayCSV:    "csv",
	tableDisplayPretty: "pretty",
}

var _ pflag.Value = (*tableDisplayFormat)(nil)

// Type implements the pflag.Value interface.
func (f *tableDisplayFormat) Type() string { return "string" }

// String implements the pflag.Value interface.
func (f *tableDisplayFormat) String() string { return tableDisplayNames[*f] }

// Set implements the pflag.Value interface.
func (f *tableDisplayFormat) Set(s string) error {
	for k, name := range tableDisplayNames {
		if name == s {
			*f = k
			return nil
		}
	}
	return errors.Newf("invalid table display format: %s (possible values: tsv, csv, pretty)", s)
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// expandTabsAndNewLines replaces the characters that would break the
// alignment of a pretty table.
func expandTabsAndNewLines(s string) string {
	return strings.NewReplacer("\t", "  ", "\n", "\\n").Replace(s)
}

// printResult prints the outcome of one statement.
func printResult(w io.Writer, res *dcl.Result, format tableDisplayFormat) error {
	if res.Columns == nil {
		// This statement did not return rows, just show the tag.
		if res.Tag == "DROP USER" {
			fmt.Fprintf(w, "%s %d\n", res.Tag, res.RowsAffected)
		} else {
			fmt.Fprintln(w, res.Tag)
		}
		return nil
	}
	cols := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		cols[i] = c.Name
	}
	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = r.Strings()
	}
	return printQueryOutput(w, cols, rows, format)
}

func printQueryOutput(w io.Writer, cols []string, allRows [][]string, format tableDisplayFormat) error {
	switch format {
	case tableDisplayPretty:
		// Initialize tablewriter and set column names as the header row.
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(cols)
		for _, row := range allRows {
			expanded := make([]string, len(row))
			for i, r := range row {
				expanded[i] = expandTabsAndNewLines(r)
			}
			table.Append(expanded)
		}
		table.Render()
		fmt.Fprintf(w, "(%d row%s)\n", len(allRows), pluralize(len(allRows)))

	case tableDisplayTSV, tableDisplayCSV:
		fmt.Fprintf(w, "%d row%s\n", len(allRows), pluralize(len(allRows)))
		csvWriter := csv.NewWriter(w)
		if format == tableDisplayTSV {
			csvWriter.Comma = '\t'
		}
		if err := csvWriter.Write(cols); err != nil {
			return err
		}
		return csvWriter.WriteAll(allRows)

	default:
		return errors.AssertionFailedf("unknown display format %d", format)
	}
	return nil
}
