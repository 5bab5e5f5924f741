package runcycle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testTable = `
cycles:
  - name: "2026-1"
    start: 2026-01-27
    end: 2026-05-12
  - name: "2026-2"
    start: 2026-06-02
    end: 2026-10-06
  - name: "2026-3"
    start: 2026-10-20
    end: 2026-12-22
`

func mustParse(t *testing.T) *Table {
	t.Helper()
	table, err := Parse([]byte(testTable))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return table
}

func TestParse(t *testing.T) {
	table := mustParse(t)

	cycles := table.Cycles()
	if len(cycles) != 3 {
		t.Fatalf("len(Cycles()) = %d, want 3", len(cycles))
	}
	if cycles[0].Name != "2026-1" || cycles[2].Name != "2026-3" {
		t.Errorf("cycles out of order: %v", cycles)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_cycles.yml")
	if err := os.WriteFile(path, []byte(testTable), 0600); err != nil {
		t.Fatalf("writing table: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.Cycles()) != 3 {
		t.Errorf("len(Cycles()) = %d, want 3", len(table.Cycles()))
	}
}

func TestTable_CycleAt(t *testing.T) {
	table := mustParse(t)

	tests := []struct {
		name    string
		at      time.Time
		want    string
		wantErr error
	}{
		{
			name: "mid cycle",
			at:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			want: "2026-2",
		},
		{
			name: "first day inclusive",
			at:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
			want: "2026-2",
		},
		{
			name:    "end day exclusive",
			at:      time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
			wantErr: ErrNoCycle,
		},
		{
			name:    "shutdown gap",
			at:      time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
			wantErr: ErrNoCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := table.CycleAt(tt.at)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CycleAt() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CycleAt() error = %v", err)
			}
			if c.Name != tt.want {
				t.Errorf("CycleAt() = %q, want %q", c.Name, tt.want)
			}
		})
	}
}

func TestTable_ByName(t *testing.T) {
	table := mustParse(t)

	c, err := table.ByName("2026-3")
	if err != nil {
		t.Fatalf("ByName() error = %v", err)
	}
	if c.Name != "2026-3" {
		t.Errorf("ByName() = %q, want %q", c.Name, "2026-3")
	}

	if _, err := table.ByName("1999-9"); !errors.Is(err, ErrUnknownCycle) {
		t.Errorf("ByName(unknown) error = %v, want ErrUnknownCycle", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty table", "cycles: []"},
		{"bad date", "cycles:\n  - name: c\n    start: notadate\n    end: 2026-01-01"},
		{"inverted range", "cycles:\n  - name: c\n    start: 2026-02-01\n    end: 2026-01-01"},
		{"missing name", "cycles:\n  - name: \"\"\n    start: 2026-01-01\n    end: 2026-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}
