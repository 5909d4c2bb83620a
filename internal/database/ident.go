package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// maxIdentLen is NAMEDATALEN-1; PostgreSQL truncates longer identifiers.
const maxIdentLen = 63

// ErrInvalidIdent is returned for identifiers that cannot be used as a table or column name.
var ErrInvalidIdent = errors.New("invalid identifier")

// ValidateIdent checks that s can be used as a quoted identifier.
func ValidateIdent(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalidIdent)
	case len(s) > maxIdentLen:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidIdent, s, maxIdentLen)
	case strings.ContainsRune(s, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidIdent, s)
	}
	return nil
}

// QuoteIdent returns s as a quoted identifier, e.g. `na"me` becomes `"na""me"`.
func QuoteIdent(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

// QuoteIdents quotes each name and joins them with ", ".
func QuoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// TableName is an optionally schema-qualified table name.
type TableName struct {
	Schema string // empty means the connection's search_path
	Name   string
}

// ParseTableName parses "table" or "schema.table". Parts may be double-quoted
// to include dots, e.g. `"my.schema"."my table"`.
func ParseTableName(s string) (TableName, error) {
	parts, err := splitQualified(s)
	if err != nil {
		return TableName{}, err
	}

	var t TableName
	switch len(parts) {
	case 1:
		t.Name = parts[0]
	case 2:
		t.Schema, t.Name = parts[0], parts[1]
	default:
		return TableName{}, fmt.Errorf("%w: %q has more than two parts", ErrInvalidIdent, s)
	}

	if t.Schema != "" {
		if err := ValidateIdent(t.Schema); err != nil {
			return TableName{}, err
		}
	}
	if err := ValidateIdent(t.Name); err != nil {
		return TableName{}, err
	}
	return t, nil
}

// Identifier returns the name as a pgx.Identifier.
func (t TableName) Identifier() pgx.Identifier {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}
	}
	return pgx.Identifier{t.Schema, t.Name}
}

// Sanitize returns the quoted, qualified name for use in SQL text.
func (t TableName) Sanitize() string {
	return t.Identifier().Sanitize()
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// splitQualified splits on dots outside double quotes and unquotes each part.
func splitQualified(s string) ([]string, error) {
	var (
		parts    []string
		cur      strings.Builder
		inQuotes bool
		quoted   bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(s) && s[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
		case c == '.' && !inQuotes:
			if cur.Len() == 0 && !quoted {
				return nil, fmt.Errorf("%w: %q has an empty part", ErrInvalidIdent, s)
			}
			parts = append(parts, cur.String())
			cur.Reset()
			quoted = false
		default:
			cur.WriteByte(c)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("%w: %q has an unterminated quote", ErrInvalidIdent, s)
	}
	return append(parts, cur.String()), nil
}
