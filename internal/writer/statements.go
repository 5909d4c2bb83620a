package writer

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/model"
)

func truncateSQL(table database.TableName) string {
	return "TRUNCATE TABLE " + table.Sanitize() + " RESTART IDENTITY CASCADE"
}

// insertSQL builds a multi-row INSERT for rows rows of the given columns.
// A non-empty key adds an ON CONFLICT clause that updates every other column.
func insertSQL(table database.TableName, columns []string, rows int, key string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table.Sanitize())
	b.WriteString(" (")
	b.WriteString(database.QuoteIdents(columns))
	b.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}

	if key == "" {
		return b.String()
	}

	b.WriteString(" ON CONFLICT (")
	b.WriteString(database.QuoteIdent(key))
	b.WriteByte(')')

	update := lo.Without(columns, key)
	if len(update) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	for i, c := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		q := database.QuoteIdent(c)
		b.WriteString(q)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(q)
	}
	return b.String()
}

// chunkRows is the number of rows per statement: at most batchSize, and few
// enough that rows*columns stays within the bind parameter limit.
func chunkRows(batchSize, columns int) int {
	n := maxParams / columns
	if batchSize > 0 && batchSize < n {
		n = batchSize
	}
	return max(n, 1)
}

// dedupeByKey keeps the last row for each key, in the order those rows
// appear. Rows with a NULL key never conflict and are all kept.
func dedupeByKey(rows [][]any, keyIdx int) [][]any {
	last := make(map[string]int, len(rows))
	for i, row := range rows {
		if k, ok := model.CellText(row[keyIdx]).(string); ok {
			last[k] = i
		}
	}
	if len(last) == len(rows) {
		return rows
	}
	return lo.Filter(rows, func(row []any, i int) bool {
		k, ok := model.CellText(row[keyIdx]).(string)
		return !ok || last[k] == i
	})
}

// bindArgs flattens rows into text parameters.
func bindArgs(rows [][]any) []any {
	if len(rows) == 0 {
		return nil
	}
	args := make([]any, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		args = append(args, model.RowText(row)...)
	}
	return args
}
