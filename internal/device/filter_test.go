package device

import (
	"context"
	"errors"
	"testing"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

func simFilterBank(prefix string, n int) *epics.SoftIOC {
	ioc := epics.NewSoftIOC()
	ioc.Set(prefix+":trans", 1.0)
	for i := 1; i <= n; i++ {
		ioc.Set(prefix+":filter"+string(rune('0'+i)), 0)
	}
	return ioc
}

func testSlots() []FilterSlot {
	return []FilterSlot{
		{Material: "Al", ThicknessUM: 25},
		{Material: "Al", ThicknessUM: 50},
		{Material: "Ti", ThicknessUM: 25},
		{Material: "Ti", ThicknessUM: 75},
	}
}

func TestFilterBank_InsertRemove(t *testing.T) {
	ioc := simFilterBank("sim:pf4", 4)
	b := NewFilterBank(ioc, "pf4", "sim:pf4", testSlots())
	ctx := context.Background()

	if err := b.Insert(ctx, 1); err != nil {
		t.Fatalf("Insert(1) error = %v", err)
	}
	in, err := b.IsIn(ctx, 1)
	if err != nil {
		t.Fatalf("IsIn(1) error = %v", err)
	}
	if !in {
		t.Error("IsIn(1) = false after Insert")
	}

	if err := b.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove(1) error = %v", err)
	}
	in, err = b.IsIn(ctx, 1)
	if err != nil {
		t.Fatalf("IsIn(1) error = %v", err)
	}
	if in {
		t.Error("IsIn(1) = true after Remove")
	}
}

func TestFilterBank_BadSlot(t *testing.T) {
	ioc := simFilterBank("sim:pf4", 4)
	b := NewFilterBank(ioc, "pf4", "sim:pf4", testSlots())

	if err := b.Insert(context.Background(), 7); !errors.Is(err, ErrBadSlot) {
		t.Errorf("Insert(7) error = %v, want ErrBadSlot", err)
	}
	if _, err := b.Slot(-1); !errors.Is(err, ErrBadSlot) {
		t.Errorf("Slot(-1) error = %v, want ErrBadSlot", err)
	}
}

func TestFilterBank_Read(t *testing.T) {
	ioc := simFilterBank("sim:pf4", 4)
	ioc.Set("sim:pf4:trans", 0.125)
	ioc.Set("sim:pf4:filter3", 1)
	b := NewFilterBank(ioc, "pf4", "sim:pf4", testSlots())

	state, err := b.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if state["transmission"] != 0.125 {
		t.Errorf("transmission = %v, want 0.125", state["transmission"])
	}
	inserted := state["inserted"].([]int)
	if len(inserted) != 1 || inserted[0] != 2 {
		t.Errorf("inserted = %v, want [2]", inserted)
	}
}
