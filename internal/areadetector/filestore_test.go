package areadetector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BCDA-APS/beamtools/internal/device"
	"github.com/BCDA-APS/beamtools/internal/docs"
	"github.com/BCDA-APS/beamtools/internal/epics"
)

// memDocs collects emitted documents in memory.
type memDocs struct {
	resources []*docs.Resource
	datums    []*docs.Datum
	failNext  error
}

func (m *memDocs) InsertResource(_ context.Context, res *docs.Resource) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.resources = append(m.resources, res)
	return nil
}

func (m *memDocs) InsertDatum(_ context.Context, d *docs.Datum) error {
	m.datums = append(m.datums, d)
	return nil
}

// seedCapturePVs loads the file-writer PVs a stage reads and snapshots.
func seedCapturePVs(ioc *epics.SoftIOC) {
	ioc.Set(hdf5Prefix+"FileName", "scan")
	ioc.Set(hdf5Prefix+"FilePath", "/data/2026-2")
	ioc.Set(hdf5Prefix+"FileTemplate", "%s%s_%4.4d.h5")
	ioc.Set(hdf5Prefix+"FilePathExists_RBV", 1)
	ioc.Set(hdf5Prefix+"FileNumber", 7)
	ioc.Set(hdf5Prefix+"EnableCallbacks", 0)
	ioc.Set(hdf5Prefix+"AutoIncrement", 0)
	ioc.Set(hdf5Prefix+"FileWriteMode", 0)
	ioc.Set(hdf5Prefix+"NumCapture", 0)
	ioc.Set(hdf5Prefix+"Capture", 0)
}

func fastStageThrottle(t *testing.T) {
	t.Helper()
	saved := stageThrottle
	stageThrottle = 0
	t.Cleanup(func() { stageThrottle = saved })
}

func newTestFileStore(ioc *epics.SoftIOC) *FileStore {
	cam := NewCamera(ioc, camPrefix)
	return NewHDF5Plugin(ioc, "h5", hdf5Prefix, cam)
}

func TestFileStore_Stage(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	fs := newTestFileStore(ioc)
	sink := &memDocs{}
	fs.SetDocWriter(sink)

	ctx := context.Background()
	if err := fs.Stage(ctx); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	if got := fs.State(); got != device.Staged {
		t.Errorf("state = %s, want staged", got)
	}
	if got, want := fs.FullFileName(), "/data/2026-2/scan_0007.h5"; got != want {
		t.Errorf("FullFileName = %q, want %q", got, want)
	}

	writes := ioc.Writes()
	if len(writes) == 0 {
		t.Fatal("no writes recorded")
	}
	// A stale open file is closed before anything else.
	if writes[0].PV != hdf5Prefix+"Capture" || writes[0].Value != 0 {
		t.Errorf("first write = %v, want Capture=0", writes[0])
	}
	// Capture arms last.
	last := writes[len(writes)-1]
	if last.PV != hdf5Prefix+"Capture" || last.Value != 1 {
		t.Errorf("last write = %v, want Capture=1", last)
	}
	// The write path gained its trailing separator.
	if got := ioc.Value(hdf5Prefix + "FilePath"); got != "/data/2026-2/" {
		t.Errorf("FilePath = %v, want /data/2026-2/", got)
	}

	if len(sink.resources) != 1 {
		t.Fatalf("got %d resources, want 1", len(sink.resources))
	}
	res := sink.resources[0]
	if res.Spec != docs.SpecHDF5 {
		t.Errorf("spec = %q, want %q", res.Spec, docs.SpecHDF5)
	}
	if res.Root != "/" {
		t.Errorf("root = %q, want /", res.Root)
	}
	if got, want := res.ResourcePath, "data/2026-2/scan_0007.h5"; got != want {
		t.Errorf("resource_path = %q, want %q", got, want)
	}
	if got := res.ResourceKwargs["frame_per_point"]; got != 1 {
		t.Errorf("frame_per_point = %v, want 1", got)
	}
	if res.ID == "" {
		t.Error("resource ID empty")
	}
}

func TestFileStore_StageRejectsMissingPath(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	ioc.Set(hdf5Prefix+"FilePathExists_RBV", 0)
	fs := newTestFileStore(ioc)

	err := fs.Stage(context.Background())
	if !errors.Is(err, ErrFilePath) {
		t.Fatalf("Stage error = %v, want ErrFilePath", err)
	}
	if !strings.HasSuffix(err.Error(), "does not exist on IOC.") {
		t.Errorf("error %q does not end with the IOC path suffix", err)
	}
	if got := fs.State(); got != device.Unstaged {
		t.Errorf("state = %s after failed stage, want unstaged", got)
	}
}

func TestFileStore_DoubleStage(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	fs := newTestFileStore(ioc)

	ctx := context.Background()
	if err := fs.Stage(ctx); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := fs.Stage(ctx); !errors.Is(err, device.ErrAlreadyStaged) {
		t.Fatalf("second Stage error = %v, want ErrAlreadyStaged", err)
	}
}

func TestFileStore_UnstageRestores(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	fs := newTestFileStore(ioc)

	ctx := context.Background()
	if err := fs.Stage(ctx); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	ioc.ClearWrites()
	if err := fs.Unstage(ctx); err != nil {
		t.Fatalf("Unstage: %v", err)
	}

	if got := fs.State(); got != device.Unstaged {
		t.Errorf("state = %s, want unstaged", got)
	}
	if fs.FullFileName() != "" {
		t.Error("FullFileName survives unstage")
	}
	if fs.Resource() != nil {
		t.Error("resource survives unstage")
	}

	// Snapshot replayed in reverse: Capture released first.
	writes := ioc.Writes()
	if len(writes) != 5 {
		t.Fatalf("got %d restore writes, want 5", len(writes))
	}
	if writes[0].PV != hdf5Prefix+"Capture" || writes[0].Value != 0 {
		t.Errorf("first restore write = %v, want Capture=0", writes[0])
	}
	if got := ioc.Value(hdf5Prefix + "EnableCallbacks"); got != 0 {
		t.Errorf("EnableCallbacks = %v after unstage, want 0", got)
	}

	if err := fs.Unstage(ctx); !errors.Is(err, device.ErrNotStaged) {
		t.Errorf("second Unstage error = %v, want ErrNotStaged", err)
	}
}

func TestFileStore_GenerateDatum(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	fs := newTestFileStore(ioc)
	sink := &memDocs{}
	fs.SetDocWriter(sink)

	ctx := context.Background()
	if _, err := fs.GenerateDatum(ctx); !errors.Is(err, device.ErrNotStaged) {
		t.Fatalf("unstaged GenerateDatum error = %v, want device.ErrNotStaged", err)
	}

	if err := fs.Stage(ctx); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	resID := fs.Resource().ID

	for i := 0; i < 3; i++ {
		d, err := fs.GenerateDatum(ctx)
		if err != nil {
			t.Fatalf("GenerateDatum %d: %v", i, err)
		}
		if want := docs.DatumID(resID, i); d.ID != want {
			t.Errorf("datum ID = %q, want %q", d.ID, want)
		}
		if d.FrameIndex != i {
			t.Errorf("frame index = %d, want %d", d.FrameIndex, i)
		}
	}
	if len(sink.datums) != 3 {
		t.Errorf("sink holds %d datums, want 3", len(sink.datums))
	}
}

// Unstage and GenerateDatum reject an unstaged plugin with the same
// sentinel, so callers need only one errors.Is target.
func TestFileStore_NotStagedSentinel(t *testing.T) {
	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	fs := newTestFileStore(ioc)

	ctx := context.Background()
	if err := fs.Unstage(ctx); !errors.Is(err, device.ErrNotStaged) {
		t.Errorf("Unstage error = %v, want device.ErrNotStaged", err)
	}
	if _, err := fs.GenerateDatum(ctx); !errors.Is(err, device.ErrNotStaged) {
		t.Errorf("GenerateDatum error = %v, want device.ErrNotStaged", err)
	}
}

func TestFileStore_PathTranslation(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	ioc.Set(hdf5Prefix+"FilePath", "/local/data/2026-2")
	fs := newTestFileStore(ioc)
	fs.SetPathTranslation("/local/data/", "/mnt/beamline/data/")

	if err := fs.Stage(context.Background()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	want := "/mnt/beamline/data/2026-2/scan_0007.h5"
	if got := fs.FullFileName(); got != want {
		t.Errorf("FullFileName = %q, want %q", got, want)
	}
	// The IOC keeps writing to its own path.
	if got := ioc.Value(hdf5Prefix + "FilePath"); got != "/local/data/2026-2/" {
		t.Errorf("FilePath = %v, want IOC-side path", got)
	}
}

func TestFileStore_TemplateWithoutNumberVerb(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	ioc.Set(hdf5Prefix+"FileTemplate", "%s%s.h5")
	fs := newTestFileStore(ioc)

	if err := fs.Stage(context.Background()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if got, want := fs.FullFileName(), "/data/2026-2/scan.h5"; got != want {
		t.Errorf("FullFileName = %q, want %q", got, want)
	}
}

func TestFileStore_BadTemplateRollsBack(t *testing.T) {
	fastStageThrottle(t)

	ioc := epics.NewSoftIOC()
	seedCapturePVs(ioc)
	ioc.Set(hdf5Prefix+"FileTemplate", "%s.h5")
	fs := newTestFileStore(ioc)

	err := fs.Stage(context.Background())
	if !errors.Is(err, ErrBadTemplate) {
		t.Fatalf("Stage error = %v, want ErrBadTemplate", err)
	}
	if got := fs.State(); got != device.Unstaged {
		t.Errorf("state = %s, want unstaged", got)
	}
	// The armed capture was released by the rollback.
	if got := ioc.Value(hdf5Prefix + "Capture"); got != 0 {
		t.Errorf("Capture = %v after rollback, want 0", got)
	}
	if got := ioc.Value(hdf5Prefix + "FileWriteMode"); got != 0 {
		t.Errorf("FileWriteMode = %v after rollback, want 0", got)
	}
}

func TestFormatFileName(t *testing.T) {
	tests := []struct {
		name     string
		template string
		number   int
		want     string
		wantErr  bool
	}{
		{"three verbs", "%s%s_%4.4d.h5", 7, "/data/scan_0007.h5", false},
		{"wide number", "%s%s_%6.6d.h5", 12345, "/data/scan_012345.h5", false},
		{"no number verb", "%s%s.h5", 7, "/data/scan.h5", false},
		{"escaped percent", "%s%s_100%%_%4.4d.h5", 7, "/data/scan_100%_0007.h5", false},
		{"too few verbs", "%s.h5", 7, "", true},
		{"too many verbs", "%s%s%s_%d.h5", 7, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatFileName(tt.template, "/data/", "scan", tt.number)
			if tt.wantErr {
				if !errors.Is(err, ErrBadTemplate) {
					t.Fatalf("err = %v, want ErrBadTemplate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("formatFileName: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
