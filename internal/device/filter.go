package device

import (
	"context"
	"fmt"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// FilterSlot is one attenuator foil in a bank.
type FilterSlot struct {
	// Material is the foil material (e.g., "Al", "Ti").
	Material string

	// ThicknessUM is the foil thickness in micrometres.
	ThicknessUM float64

	control *epics.Signal // in/out command and readback (1 = inserted)
}

// FilterBank controls a PF4-style attenuator with numbered filter slots.
//
// Transmission depends on beam energy and which foils are in; the IOC
// computes it and serves it back, so the client reads rather than models
// it.
type FilterBank struct {
	Device

	slots        []FilterSlot
	transmission *epics.Signal
}

// NewFilterBank creates a bank from its PV prefix. Slot control PVs follow
// the "filter<N>" convention, 1-based on the IOC side.
func NewFilterBank(conn epics.Conn, name, prefix string, slots []FilterSlot, labels ...string) *FilterBank {
	b := &FilterBank{
		Device:       newDevice(name, prefix, labels...),
		slots:        make([]FilterSlot, len(slots)),
		transmission: epics.NewSignal(conn, "transmission", epics.Join(prefix, "trans")),
	}
	copy(b.slots, slots)
	for i := range b.slots {
		b.slots[i].control = epics.NewSignal(conn,
			fmt.Sprintf("filter%d", i+1),
			epics.Join(prefix, fmt.Sprintf("filter%d", i+1)))
	}
	return b
}

// Kind implements Reader.
func (b *FilterBank) Kind() string { return "filter_bank" }

// NumSlots returns the number of filter slots.
func (b *FilterBank) NumSlots() int { return len(b.slots) }

// Slot returns the static description of slot i (0-based).
func (b *FilterBank) Slot(i int) (FilterSlot, error) {
	if i < 0 || i >= len(b.slots) {
		return FilterSlot{}, fmt.Errorf("%w: %d of %d", ErrBadSlot, i, len(b.slots))
	}
	return b.slots[i], nil
}

// IsIn reports whether slot i is inserted into the beam.
func (b *FilterBank) IsIn(ctx context.Context, i int) (bool, error) {
	if i < 0 || i >= len(b.slots) {
		return false, fmt.Errorf("%w: %d of %d", ErrBadSlot, i, len(b.slots))
	}
	v, err := b.slots[i].control.GetInt(ctx)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// Insert moves slot i into the beam.
func (b *FilterBank) Insert(ctx context.Context, i int) error {
	return b.setSlot(ctx, i, 1)
}

// Remove moves slot i out of the beam.
func (b *FilterBank) Remove(ctx context.Context, i int) error {
	return b.setSlot(ctx, i, 0)
}

func (b *FilterBank) setSlot(ctx context.Context, i, value int) error {
	if i < 0 || i >= len(b.slots) {
		return fmt.Errorf("%w: %d of %d", ErrBadSlot, i, len(b.slots))
	}
	b.logger.Debug("filter slot", "device", b.Name(), "slot", i, "value", value)
	return b.slots[i].control.PutWait(ctx, value)
}

// Transmission reads the IOC-computed transmission (0..1).
func (b *FilterBank) Transmission(ctx context.Context) (float64, error) {
	return b.transmission.GetFloat(ctx)
}

// Read implements Reader.
func (b *FilterBank) Read(ctx context.Context) (map[string]any, error) {
	trans, err := b.Transmission(ctx)
	if err != nil {
		return nil, err
	}
	inserted := make([]int, 0, len(b.slots))
	for i := range b.slots {
		in, err := b.IsIn(ctx, i)
		if err != nil {
			return nil, err
		}
		if in {
			inserted = append(inserted, i)
		}
	}
	return map[string]any{
		"transmission": trans,
		"inserted":     inserted,
	}, nil
}
