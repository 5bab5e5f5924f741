package device

import (
	"context"
	"errors"
	"testing"
)

// stubDevice is a minimal Reader for registry tests.
type stubDevice struct {
	name  string
	state map[string]any
	err   error
}

func (s *stubDevice) Name() string { return s.name }
func (s *stubDevice) Kind() string { return "stub" }
func (s *stubDevice) Read(context.Context) (map[string]any, error) {
	return s.state, s.err
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&stubDevice{name: "m1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&stubDevice{name: "m1"}); !errors.Is(err, ErrDeviceExists) {
		t.Errorf("duplicate Register() error = %v, want ErrDeviceExists", err)
	}

	if _, err := r.Get("m1"); err != nil {
		t.Errorf("Get(m1) error = %v", err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&stubDevice{name: n}); err != nil {
			t.Fatalf("Register(%s) error = %v", n, err)
		}
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestRegistry_SnapshotAll_PartialFailure(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubDevice{name: "good", state: map[string]any{"x": 1}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&stubDevice{name: "bad", err: errors.New("ioc down")}); err != nil {
		t.Fatal(err)
	}

	snaps := r.SnapshotAll(context.Background())
	if len(snaps) != 2 {
		t.Fatalf("len(snaps) = %d, want 2", len(snaps))
	}
	// Sorted: bad, good.
	if snaps[0].Error == "" {
		t.Error("bad device snapshot has empty Error")
	}
	if snaps[1].State["x"] != 1 {
		t.Errorf("good device state = %v", snaps[1].State)
	}
}
