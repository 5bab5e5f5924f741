package device

import (
	"context"
	"errors"
	"testing"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

func TestStageList_ApplyAndRestoreOrder(t *testing.T) {
	ioc := epics.NewSoftIOC()
	ioc.Set("sim:enable", 0)
	ioc.Set("sim:mode", 2)
	ioc.Set("sim:acquire", 0)

	var list StageList
	list.Append(epics.NewSignal(ioc, "enable", "sim:enable"), 1)
	list.Append(epics.NewSignal(ioc, "mode", "sim:mode"), 0)
	list.Append(epics.NewSignal(ioc, "acquire", "sim:acquire"), 1)

	ctx := context.Background()
	r, err := list.Apply(ctx, 0)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	applied := ioc.Writes()
	if len(applied) != 3 {
		t.Fatalf("apply wrote %d PVs, want 3", len(applied))
	}
	wantForward := []string{"sim:enable", "sim:mode", "sim:acquire"}
	for i, w := range applied {
		if w.PV != wantForward[i] {
			t.Errorf("apply[%d] = %s, want %s", i, w.PV, wantForward[i])
		}
	}

	ioc.ClearWrites()
	if err := r.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	restored := ioc.Writes()
	wantReverse := []string{"sim:acquire", "sim:mode", "sim:enable"}
	if len(restored) != 3 {
		t.Fatalf("restore wrote %d PVs, want 3", len(restored))
	}
	for i, w := range restored {
		if w.PV != wantReverse[i] {
			t.Errorf("restore[%d] = %s, want %s", i, w.PV, wantReverse[i])
		}
	}

	// Original values are back bit-for-bit.
	if ioc.Value("sim:enable") != 0 || ioc.Value("sim:mode") != 2 || ioc.Value("sim:acquire") != 0 {
		t.Errorf("values not restored: enable=%v mode=%v acquire=%v",
			ioc.Value("sim:enable"), ioc.Value("sim:mode"), ioc.Value("sim:acquire"))
	}
}

func TestRestorer_Idempotent(t *testing.T) {
	ioc := epics.NewSoftIOC()
	ioc.Set("sim:a", 1)

	var list StageList
	list.Append(epics.NewSignal(ioc, "a", "sim:a"), 2)

	r, err := list.Apply(context.Background(), 0)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := r.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	ioc.ClearWrites()
	if err := r.Restore(context.Background()); err != nil {
		t.Fatalf("second Restore() error = %v", err)
	}
	if len(ioc.Writes()) != 0 {
		t.Errorf("second Restore() wrote %d PVs, want 0", len(ioc.Writes()))
	}
}

func TestStageList_EnsureLast(t *testing.T) {
	ioc := epics.NewSoftIOC()

	var list StageList
	list.Append(epics.NewSignal(ioc, "capture", "sim:capture"), 1)
	list.Append(epics.NewSignal(ioc, "file_name", "sim:file_name"), "scan")
	list.EnsureLast("capture")

	pairs := list.Pairs()
	if pairs[len(pairs)-1].Sig.Name() != "capture" {
		t.Errorf("last pair = %s, want capture", pairs[len(pairs)-1].Sig.Name())
	}
}

func TestStageList_Set(t *testing.T) {
	ioc := epics.NewSoftIOC()
	sig := epics.NewSignal(ioc, "mode", "sim:mode")

	var list StageList
	list.Append(sig, 1)
	list.Set(sig, 5)

	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", list.Len())
	}
	if list.Pairs()[0].Value != 5 {
		t.Errorf("value = %v, want 5", list.Pairs()[0].Value)
	}
}

func TestStageList_Apply_SnapshotFailure(t *testing.T) {
	ioc := epics.NewSoftIOC()
	// sim:missing is never set, so the snapshot read fails before any write.

	var list StageList
	list.Append(epics.NewSignal(ioc, "missing", "sim:missing"), 1)

	_, err := list.Apply(context.Background(), 0)
	if !errors.Is(err, epics.ErrUnknownPV) {
		t.Fatalf("Apply() error = %v, want ErrUnknownPV", err)
	}
	if len(ioc.Writes()) != 0 {
		t.Errorf("failed Apply() wrote %d PVs, want 0", len(ioc.Writes()))
	}
}

func TestStageState_String(t *testing.T) {
	states := map[StageState]string{
		Unstaged:  "unstaged",
		Staging:   "staging",
		Staged:    "staged",
		Unstaging: "unstaging",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
