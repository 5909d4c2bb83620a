package model

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

type celsius float64

func (c celsius) String() string { return "hot" }

func TestIsNull(t *testing.T) {
	var nilStr *string
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, true},
		{"missing", Missing, true},
		{"nan64", math.NaN(), true},
		{"nan32", float32(math.NaN()), true},
		{"nil string pointer", nilStr, true},
		{"empty string", "", false},
		{"zero", 0, false},
		{"false", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNull(tt.in); got != tt.want {
				t.Errorf("IsNull(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCellText(t *testing.T) {
	s := "ptr"
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 1, 15, 12, 0, 0, 500, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"nan", math.NaN(), nil},
		{"string", "hello", "hello"},
		{"empty string", "", ""},
		{"string pointer", &s, "ptr"},
		{"bytes", []byte("raw"), "raw"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"int32", int32(1), "1"},
		{"uint8", uint8(255), "255"},
		{"float", 1.5, "1.5"},
		{"float whole", 3.0, "3"},
		{"float32", float32(0.25), "0.25"},
		{"time", ts, "2024-01-15T12:00:00.0000005Z"},
		{"uuid", id, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"uuid bytes", [16]byte(id), "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"stringer", celsius(40), "hot"},
		{"map", map[string]any{"a": 1}, `{"a":1}`},
		{"slice", []any{1, "x"}, `[1,"x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellText(tt.in); got != tt.want {
				t.Errorf("CellText(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRowText(t *testing.T) {
	got := RowText([]any{1, nil, "x", Missing})
	want := []any{"1", nil, "x", nil}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RowText()[%d] = %#v, want %#v", i, got[i], want[i])
		}
	}
}
