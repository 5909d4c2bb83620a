package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rickgao/tablesync/internal/config"
	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/model"
	"github.com/rickgao/tablesync/internal/schema"
	"github.com/rickgao/tablesync/internal/writer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveTargets(t *testing.T) {
	t.Run("explicit table", func(t *testing.T) {
		got, err := resolveTargets("public.Users", []string{"data/x.csv"}, true)
		if err != nil {
			t.Fatalf("resolveTargets: %v", err)
		}
		want := []target{{path: "data/x.csv", table: database.TableName{Schema: "public", Name: "Users"}}}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(target{})); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit table with several files", func(t *testing.T) {
		if _, err := resolveTargets("t", []string{"a.csv", "b.csv"}, true); err == nil {
			t.Error("expected error for --table with two files")
		}
	})

	t.Run("file stems", func(t *testing.T) {
		got, err := resolveTargets("", []string{"in/Orders.csv", "items.tsv"}, true)
		if err != nil {
			t.Fatalf("resolveTargets: %v", err)
		}
		want := []target{
			{path: "in/Orders.csv", table: database.TableName{Name: "orders"}},
			{path: "items.tsv", table: database.TableName{Name: "items"}},
		}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(target{})); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("preserve case", func(t *testing.T) {
		got, err := resolveTargets("", []string{"Orders.csv"}, false)
		if err != nil {
			t.Fatalf("resolveTargets: %v", err)
		}
		if got[0].table.Name != "Orders" {
			t.Errorf("table = %q, want %q", got[0].table.Name, "Orders")
		}
	})

	t.Run("colliding stems", func(t *testing.T) {
		_, err := resolveTargets("", []string{"a/orders.csv", "b/Orders.csv"}, true)
		if err == nil || !strings.Contains(err.Error(), `"orders"`) {
			t.Errorf("err = %v, want collision on orders", err)
		}
	})
}

func TestWriterConfig(t *testing.T) {
	got := writerConfig(config.WriterConfig{BatchSize: 50, PreserveCase: true, CreateTables: true})
	want := writer.WriterConfig{BatchSize: 50, FoldColumns: false, CreateMissing: true}
	if got != want {
		t.Errorf("writerConfig = %+v, want %+v", got, want)
	}
}

func TestPolicy(t *testing.T) {
	if policy(true) != schema.AddAndDrop {
		t.Error("policy(true) should be AddAndDrop")
	}
	if policy(false) != schema.AddOnly {
		t.Error("policy(false) should be AddOnly")
	}
}

func TestWriteTable(t *testing.T) {
	frame := model.NewFrame("id", "note").
		Append(1, "a\tb").
		Append(2, nil)

	var buf bytes.Buffer
	if err := writeTable(&buf, frame); err != nil {
		t.Fatalf("writeTable: %v", err)
	}

	want := "id  note\n1   a b\n2   NULL\n(2 rows)\n"
	if got := buf.String(); got != want {
		t.Errorf("writeTable output = %q, want %q", got, want)
	}
}

func TestWriteJSON(t *testing.T) {
	frame := model.NewFrame("n", "s").Append(1.5, nil)

	var buf bytes.Buffer
	if err := writeJSON(&buf, frame); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	want := `{
  "columns": [
    "n",
    "s"
  ],
  "rows": [
    [
      "1.5",
      null
    ]
  ]
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteResults(t *testing.T) {
	results := []writer.Result{{
		Table:    database.TableName{Name: "t"},
		Mode:     writer.ModeUpsert,
		Rows:     3,
		Added:    []string{"a", "b"},
		Duration: 1500 * time.Microsecond,
	}}

	var buf bytes.Buffer
	if err := writeResults(&buf, results); err != nil {
		t.Fatalf("writeResults: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if got := strings.Fields(lines[1]); !cmp.Equal(got, []string{"t", "upsert", "3", "a,b", "-", "2ms"}) {
		t.Errorf("result row = %v", got)
	}
}

func TestWritePlans(t *testing.T) {
	table := database.TableName{Name: "t"}
	plans := []schema.Plan{
		{Table: table},
		schema.Diff(table, []string{"id"}, []string{"id", "age"}, schema.AddOnly),
	}

	var buf bytes.Buffer
	if err := writePlans(&buf, plans); err != nil {
		t.Fatalf("writePlans: %v", err)
	}

	want := "t: no schema changes\n" + `ALTER TABLE "t" ADD COLUMN IF NOT EXISTS "age" TEXT;` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("writePlans output = %q, want %q", got, want)
	}
}
