package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rickgao/tablesync/internal/model"
	"github.com/rickgao/tablesync/internal/schema"
	"github.com/rickgao/tablesync/internal/writer"
)

const nullText = "NULL"

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// writeTable prints frame as aligned columns with a header row.
func writeTable(w io.Writer, frame *model.Frame) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, strings.Join(frame.Columns, "\t"))
	for _, row := range frame.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			text, ok := model.CellText(v).(string)
			if !ok {
				cells[i] = nullText
				continue
			}
			cells[i] = sanitizeCell(text)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", frame.Len())
	return err
}

func sanitizeCell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

type jsonFrame struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// writeJSON prints frame as {"columns": [...], "rows": [[...], ...]}.
func writeJSON(w io.Writer, frame *model.Frame) error {
	out := jsonFrame{Columns: frame.Columns, Rows: make([][]any, len(frame.Rows))}
	for i, row := range frame.Rows {
		out.Rows[i] = model.RowText(row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeColumns(w io.Writer, cols []schema.Column) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "COLUMN\tTYPE")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Type)
	}
	return tw.Flush()
}

func writeResults(w io.Writer, results []writer.Result) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "TABLE\tMODE\tROWS\tADDED\tDROPPED\tDURATION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Table, r.Mode, r.Rows, listOrDash(r.Added), listOrDash(r.Dropped), r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func writePlans(w io.Writer, plans []schema.Plan) error {
	for _, p := range plans {
		if p.Empty() {
			if _, err := fmt.Fprintf(w, "%s: no schema changes\n", p.Table); err != nil {
				return err
			}
			continue
		}
		for _, stmt := range p.Statements() {
			if _, err := fmt.Fprintf(w, "%s;\n", stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func listOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
