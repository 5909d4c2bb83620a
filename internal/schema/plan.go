package schema

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/rickgao/tablesync/internal/database"
)

// Policy selects which differences Reconcile acts on.
type Policy int

const (
	// AddOnly adds missing columns and never drops.
	AddOnly Policy = iota

	// AddAndDrop also drops table columns that are not in the desired set.
	AddAndDrop
)

func (p Policy) String() string {
	switch p {
	case AddOnly:
		return "add-only"
	case AddAndDrop:
		return "add-and-drop"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Plan is the set of column changes needed to reconcile a table.
type Plan struct {
	Table database.TableName
	Add   []string // desired order
	Drop  []string // table order

	// Create is set when the table does not exist and will be created with
	// the Add columns as TEXT.
	Create bool
	Key    string // primary key of a created table, if any
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return !p.Create && len(p.Add) == 0 && len(p.Drop) == 0
}

// Statements renders the plan as DDL. Adds come before drops.
func (p Plan) Statements() []string {
	table := p.Table.Sanitize()
	if p.Create {
		defs := make([]string, 0, len(p.Add)+1)
		for _, c := range p.Add {
			defs = append(defs, database.QuoteIdent(c)+" TEXT")
		}
		if p.Key != "" {
			defs = append(defs, "PRIMARY KEY ("+database.QuoteIdent(p.Key)+")")
		}
		return []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))}
	}
	stmts := make([]string, 0, len(p.Add)+len(p.Drop))
	for _, c := range p.Add {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TEXT", table, database.QuoteIdent(c)))
	}
	for _, c := range p.Drop {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s", table, database.QuoteIdent(c)))
	}
	return stmts
}

func (p Plan) String() string {
	if p.Empty() {
		return p.Table.String() + ": no changes"
	}
	var b strings.Builder
	b.WriteString(p.Table.String())
	b.WriteString(":")
	if p.Create {
		b.WriteString(" create")
	}
	for _, c := range p.Add {
		b.WriteString(" +")
		b.WriteString(c)
	}
	for _, c := range p.Drop {
		b.WriteString(" -")
		b.WriteString(c)
	}
	return b.String()
}

// Diff plans the changes that turn existing into desired. Columns named in
// protect are never dropped.
func Diff(table database.TableName, existing, desired []string, policy Policy, protect ...string) Plan {
	desired = lo.Uniq(desired)
	plan := Plan{
		Table: table,
		Add:   lo.Without(desired, existing...),
	}
	if policy == AddAndDrop {
		keep := append(append([]string{}, desired...), protect...)
		plan.Drop = lo.Without(existing, keep...)
	}
	return plan
}
