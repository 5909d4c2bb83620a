package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFrame_Append(t *testing.T) {
	f := NewFrame("id", "name").
		Append(1, "ann").
		Append(2, "bob")

	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	v, ok := f.Value(1, "name")
	if !ok || v != "bob" {
		t.Errorf("Value(1, name) = %v, %v, want bob, true", v, ok)
	}
	if _, ok := f.Value(0, "missing"); ok {
		t.Error("Value(0, missing) ok = true, want false")
	}
	if _, ok := f.Value(5, "id"); ok {
		t.Error("Value(5, id) ok = true, want false")
	}
}

func TestFrame_LenNil(t *testing.T) {
	var f *Frame
	if f.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", f.Len())
	}
}

func TestFrame_Records(t *testing.T) {
	f := NewFrame("id", "name").Append(1, "ann").Append(2, nil)

	want := []map[string]any{
		{"id": 1, "name": "ann"},
		{"id": 2, "name": nil},
	}
	if diff := cmp.Diff(want, f.Records()); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
}

func TestFrame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		frame   *Frame
		wantErr error
	}{
		{"ok", NewFrame("a", "b").Append(1, 2), nil},
		{"no rows", NewFrame("a"), nil},
		{"duplicate column", NewFrame("a", "a"), ErrDuplicateColumn},
		{"short row", NewFrame("a", "b").Append(1), ErrRaggedRow},
		{"long row", NewFrame("a").Append(1, 2), ErrRaggedRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFrame_FoldColumns(t *testing.T) {
	f := NewFrame("ID", "FirstName", "Straße", "ÉTÉ").Append(1, "a", "b", "c")

	got := f.FoldColumns()

	want := []string{"id", "firstname", "straße", "été"}
	if diff := cmp.Diff(want, got.Columns); diff != "" {
		t.Errorf("FoldColumns() mismatch (-want +got):\n%s", diff)
	}
	if f.Columns[0] != "ID" {
		t.Errorf("original columns modified: %v", f.Columns)
	}
	if got.Len() != 1 {
		t.Errorf("Len() = %d, want 1", got.Len())
	}
}
