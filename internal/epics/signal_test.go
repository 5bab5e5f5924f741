package epics

import (
	"context"
	"errors"
	"testing"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		suffix string
		want   string
	}{
		{"prefix with colon", "8idi:", "cam1:Acquire", "8idi:cam1:Acquire"},
		{"prefix without colon", "8idi", "cam1:Acquire", "8idi:cam1:Acquire"},
		{"field suffix", "8idi:m1", ".DESC", "8idi:m1.DESC"},
		{"field suffix on colon prefix", "8idi:m1:", ".VAL", "8idi:m1.VAL"},
		{"empty prefix", "", "cam1:Acquire", "cam1:Acquire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.prefix, tt.suffix); got != tt.want {
				t.Errorf("Join(%q, %q) = %q, want %q", tt.prefix, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestSignal_GetTyped(t *testing.T) {
	ioc := NewSoftIOC()
	ioc.Set("sim:temp", 21.5)
	ioc.Set("sim:count", 7)
	ioc.Set("sim:label", "ready")

	ctx := context.Background()

	temp := NewSignal(ioc, "temp", "sim:temp")
	if got, err := temp.GetFloat(ctx); err != nil || got != 21.5 {
		t.Errorf("GetFloat() = %v, %v, want 21.5, nil", got, err)
	}

	count := NewSignal(ioc, "count", "sim:count")
	if got, err := count.GetInt(ctx); err != nil || got != 7 {
		t.Errorf("GetInt() = %v, %v, want 7, nil", got, err)
	}

	label := NewSignal(ioc, "label", "sim:label")
	if got, err := label.GetString(ctx); err != nil || got != "ready" {
		t.Errorf("GetString() = %v, %v, want ready, nil", got, err)
	}
}

func TestSignal_GetString_Enum(t *testing.T) {
	ioc := NewSoftIOC()
	ioc.Set("sim:mode", 1)

	mode := NewSignal(ioc, "mode", "sim:mode").WithEnum("Single", "Multiple", "Continuous")

	got, err := mode.GetString(context.Background())
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if got != "Multiple" {
		t.Errorf("GetString() = %q, want %q", got, "Multiple")
	}
}

func TestSignal_GetString_EnumOutOfRange(t *testing.T) {
	ioc := NewSoftIOC()
	ioc.Set("sim:mode", 5)

	mode := NewSignal(ioc, "mode", "sim:mode").WithEnum("Single", "Multiple")

	_, err := mode.GetString(context.Background())
	if !errors.Is(err, ErrBadValue) {
		t.Errorf("GetString() error = %v, want ErrBadValue", err)
	}
}

func TestSignal_UnknownPV(t *testing.T) {
	ioc := NewSoftIOC()
	sig := NewSignal(ioc, "ghost", "sim:ghost")

	_, err := sig.Get(context.Background())
	if !errors.Is(err, ErrUnknownPV) {
		t.Errorf("Get() error = %v, want ErrUnknownPV", err)
	}
}

func TestSoftIOC_RecordsWriteOrder(t *testing.T) {
	ioc := NewSoftIOC()
	ctx := context.Background()

	sigs := []*Signal{
		NewSignal(ioc, "a", "sim:a"),
		NewSignal(ioc, "b", "sim:b"),
		NewSignal(ioc, "c", "sim:c"),
	}
	for i, s := range sigs {
		if err := s.Put(ctx, i); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	writes := ioc.Writes()
	if len(writes) != 3 {
		t.Fatalf("len(Writes()) = %d, want 3", len(writes))
	}
	wantOrder := []string{"sim:a", "sim:b", "sim:c"}
	for i, w := range writes {
		if w.PV != wantOrder[i] {
			t.Errorf("writes[%d].PV = %q, want %q", i, w.PV, wantOrder[i])
		}
	}
}

func TestSoftIOC_Monitor(t *testing.T) {
	ioc := NewSoftIOC()
	ioc.Set("sim:x", 1)

	var seen []int
	cancel, err := NewSignal(ioc, "x", "sim:x").Monitor(context.Background(), func(v Value) {
		n, _ := v.Int()
		seen = append(seen, n)
	})
	if err != nil {
		t.Fatalf("Monitor() error = %v", err)
	}
	defer cancel()

	if err := ioc.Put(context.Background(), "sim:x", 2); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("monitor saw %v, want [1 2]", seen)
	}
}

func TestSoftIOC_MonitorFanout(t *testing.T) {
	ioc := NewSoftIOC()

	var first, second []int
	cancelFirst, err := ioc.Monitor(context.Background(), "sim:y", func(v Value) {
		n, _ := v.Int()
		first = append(first, n)
	})
	if err != nil {
		t.Fatalf("Monitor() error = %v", err)
	}
	if _, err := ioc.Monitor(context.Background(), "sim:y", func(v Value) {
		n, _ := v.Int()
		second = append(second, n)
	}); err != nil {
		t.Fatalf("Monitor() error = %v", err)
	}

	if err := ioc.Put(context.Background(), "sim:y", 5); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(first) != 1 || first[0] != 5 {
		t.Errorf("first subscriber saw %v, want [5]", first)
	}
	if len(second) != 1 || second[0] != 5 {
		t.Errorf("second subscriber saw %v, want [5]", second)
	}

	cancelFirst()
	if err := ioc.Put(context.Background(), "sim:y", 6); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(first) != 1 {
		t.Errorf("cancelled subscriber still notified: %v", first)
	}
}

func TestValue_Ints(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []int
	}{
		{"int slice", []int{1024, 1024, 0}, []int{1024, 1024, 0}},
		{"int32 slice", []int32{2, 3}, []int{2, 3}},
		{"scalar", 5, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewValue(tt.raw).Ints()
			if err != nil {
				t.Fatalf("Ints() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Ints() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Ints()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}
