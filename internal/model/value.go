package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type missing struct{}

// Missing marks an absent value; it is written as NULL.
var Missing = missing{}

// IsNull reports whether v is written as SQL NULL.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil, missing:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case *string:
		return x == nil
	}
	return false
}

// CellText converts a cell to the text bound as a statement parameter.
// NULL cells (see IsNull) return nil; everything else returns a string.
func CellText(v any) any {
	if IsNull(v) {
		return nil
	}
	switch x := v.(type) {
	case string:
		return x
	case *string:
		return *x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case [16]byte:
		// pgx decodes uuid columns to [16]byte
		return uuid.UUID(x).String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return CellText(dv)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// RowText converts a row with CellText.
func RowText(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = CellText(v)
	}
	return out
}
