// Package runcycle looks up facility run cycles from a YAML table.
//
// The APS schedules operations in named run cycles ("2026-1", "2026-2", ...),
// each a contiguous date range. Metadata written alongside experiment data
// records which cycle it was collected in.
//
// The table is an explicit value: load it once at startup with Load and pass
// it to whatever needs it. There is no package-level singleton.
package runcycle

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Domain errors for the runcycle package.
var (
	// ErrNoCycle is returned when a timestamp falls outside every cycle.
	ErrNoCycle = errors.New("runcycle: no cycle covers the given time")

	// ErrUnknownCycle is returned when a named cycle is not in the table.
	ErrUnknownCycle = errors.New("runcycle: unknown cycle name")

	// ErrEmptyTable is returned when the YAML table defines no cycles.
	ErrEmptyTable = errors.New("runcycle: table has no cycles")
)

// dateFormat is the date layout used in the YAML table.
const dateFormat = "2006-01-02"

// Cycle is one named run cycle. The interval is half-open: Start inclusive,
// End exclusive.
type Cycle struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether at falls within the cycle.
func (c Cycle) Contains(at time.Time) bool {
	return !at.Before(c.Start) && at.Before(c.End)
}

// Table is an immutable, time-ordered run-cycle table.
type Table struct {
	cycles []Cycle
}

// rawTable matches the YAML file layout:
//
//	cycles:
//	  - name: "2026-2"
//	    start: 2026-06-01
//	    end: 2026-10-01
type rawTable struct {
	Cycles []struct {
		Name  string `yaml:"name"`
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"cycles"`
}

// Load reads a run-cycle table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run-cycle table: %w", err)
	}
	return Parse(data)
}

// Parse builds a table from YAML bytes. Cycles are validated (parseable
// dates, start before end) and sorted by start date.
func Parse(data []byte) (*Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing run-cycle table: %w", err)
	}
	if len(raw.Cycles) == 0 {
		return nil, ErrEmptyTable
	}

	cycles := make([]Cycle, 0, len(raw.Cycles))
	for _, rc := range raw.Cycles {
		if rc.Name == "" {
			return nil, fmt.Errorf("runcycle: cycle with empty name")
		}
		start, err := time.Parse(dateFormat, rc.Start)
		if err != nil {
			return nil, fmt.Errorf("runcycle: cycle %q: bad start date %q: %w", rc.Name, rc.Start, err)
		}
		end, err := time.Parse(dateFormat, rc.End)
		if err != nil {
			return nil, fmt.Errorf("runcycle: cycle %q: bad end date %q: %w", rc.Name, rc.End, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("runcycle: cycle %q: start %s is not before end %s", rc.Name, rc.Start, rc.End)
		}
		cycles = append(cycles, Cycle{Name: rc.Name, Start: start, End: end})
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Start.Before(cycles[j].Start) })

	return &Table{cycles: cycles}, nil
}

// Cycles returns the cycles in start-date order.
func (t *Table) Cycles() []Cycle {
	out := make([]Cycle, len(t.cycles))
	copy(out, t.cycles)
	return out
}

// CycleAt returns the cycle containing the given time.
func (t *Table) CycleAt(at time.Time) (Cycle, error) {
	for _, c := range t.cycles {
		if c.Contains(at) {
			return c, nil
		}
	}
	return Cycle{}, fmt.Errorf("%w: %s", ErrNoCycle, at.Format(time.RFC3339))
}

// Current returns the cycle containing the present moment.
func (t *Table) Current() (Cycle, error) {
	return t.CycleAt(time.Now())
}

// ByName returns the cycle with the given name.
func (t *Table) ByName(name string) (Cycle, error) {
	for _, c := range t.cycles {
		if c.Name == name {
			return c, nil
		}
	}
	return Cycle{}, fmt.Errorf("%w: %q", ErrUnknownCycle, name)
}
