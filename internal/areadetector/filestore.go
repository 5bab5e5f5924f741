package areadetector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BCDA-APS/beamtools/internal/device"
	"github.com/BCDA-APS/beamtools/internal/docs"
	"github.com/BCDA-APS/beamtools/internal/epics"
)

// stageThrottle is the pause between consecutive stage-time writes.
var stageThrottle = 100 * time.Millisecond

// DocWriter receives the resource and datum documents a capture emits.
// *docs.SQLiteRepository satisfies it.
type DocWriter interface {
	InsertResource(ctx context.Context, res *docs.Resource) error
	InsertDatum(ctx context.Context, d *docs.Datum) error
}

// FileStore is a file-writer plugin whose output naming is owned by the
// IOC, not by this process. File name, path and template are read from
// the plugin's PVs at stage time; whatever the operator typed on the
// EPICS screens is what lands on disk.
//
// One FileStore serves one staged acquisition at a time:
//
//	unstaged -> staging -> staged -> unstaging -> unstaged
//
// Stage validates the write path against the IOC, arms the capture and
// emits a resource document; GenerateDatum then issues one datum per
// frame until Unstage restores the plugin.
type FileStore struct {
	FilePlugin

	FilePath      *epics.Signal
	FileName      *epics.Signal
	FileTemplate  *epics.Signal
	FileNumber    *epics.Signal
	FileWriteMode *epics.Signal
	AutoIncrement *epics.Signal
	NumCapture    *epics.Signal
	Capture       *epics.Signal

	filePathExists *epics.Signal
	fullFileName   *epics.Signal

	spec           string
	framesPerPoint int
	docw           DocWriter
	runUID         string

	// write-side (IOC) to read-side (analysis host) path translation
	writePathPrefix string
	readPathPrefix  string

	stageSigs device.StageList

	state        device.StageState
	restorer     *device.Restorer
	resource     *docs.Resource
	frameCounter int
	stagedName   string
}

// newFileStore builds a capture plugin for the given file format spec.
func newFileStore(conn epics.Conn, name, prefix, spec string, cam *Camera) *FileStore {
	sig := func(sname, suffix string) *epics.Signal {
		return epics.NewSignal(conn, sname, epics.Join(prefix, suffix))
	}
	fs := &FileStore{
		FilePlugin:     newFilePlugin(conn, name, prefix, cam),
		FilePath:       sig("file_path", "FilePath"),
		FileName:       sig("file_name", "FileName"),
		FileTemplate:   sig("file_template", "FileTemplate"),
		FileNumber:     sig("file_number", "FileNumber"),
		FileWriteMode:  sig("file_write_mode", "FileWriteMode"),
		AutoIncrement:  sig("auto_increment", "AutoIncrement"),
		NumCapture:     sig("num_capture", "NumCapture"),
		Capture:        sig("capture", "Capture"),
		filePathExists: sig("file_path_exists", "FilePathExists_RBV"),
		fullFileName:   sig("full_file_name", "FullFileName_RBV"),
		spec:           spec,
		framesPerPoint: 1,
	}
	fs.stageSigs.Append(fs.EnableCallbacks, 1)
	fs.stageSigs.Append(fs.AutoIncrement, 1)
	fs.stageSigs.Append(fs.FileWriteMode, 2) // Stream
	fs.stageSigs.Append(fs.NumCapture, 0)    // capture until stopped
	fs.stageSigs.Append(fs.Capture, 1)
	return fs
}

// NewHDF5Plugin creates a capture plugin for an ADCore HDF5 file writer
// (conventionally "HDF1:").
func NewHDF5Plugin(conn epics.Conn, name, prefix string, cam *Camera) *FileStore {
	return newFileStore(conn, name, prefix, docs.SpecHDF5, cam)
}

// NewTIFFPlugin creates a capture plugin for an ADCore TIFF file writer.
func NewTIFFPlugin(conn epics.Conn, name, prefix string, cam *Camera) *FileStore {
	return newFileStore(conn, name, prefix, docs.SpecTIFF, cam)
}

// NewJPEGPlugin creates a capture plugin for an ADCore JPEG file writer.
func NewJPEGPlugin(conn epics.Conn, name, prefix string, cam *Camera) *FileStore {
	return newFileStore(conn, name, prefix, docs.SpecJPEG, cam)
}

// SetDocWriter routes resource and datum documents to w. Without one the
// plugin still stages; documents are dropped.
func (fs *FileStore) SetDocWriter(w DocWriter) { fs.docw = w }

// SetRunUID tags emitted resources with the owning run.
func (fs *FileStore) SetRunUID(uid string) { fs.runUID = uid }

// SetFramesPerPoint sets the frame count recorded in resource_kwargs.
func (fs *FileStore) SetFramesPerPoint(n int) {
	if n > 0 {
		fs.framesPerPoint = n
	}
}

// SetPathTranslation maps the IOC-side write path prefix onto the path the
// analysis host mounts the same volume under. Empty prefixes disable the
// translation.
func (fs *FileStore) SetPathTranslation(writePrefix, readPrefix string) {
	fs.writePathPrefix = writePrefix
	fs.readPathPrefix = readPrefix
}

// StageSigs exposes the stage-time write sequence for adjustment before
// staging. Capture is forced last at stage time regardless of edits.
func (fs *FileStore) StageSigs() *device.StageList { return &fs.stageSigs }

// State returns the current staging state.
func (fs *FileStore) State() device.StageState { return fs.state }

// FullFileName returns the file name computed at stage time, translated to
// the read side. Empty when unstaged.
func (fs *FileStore) FullFileName() string { return fs.stagedName }

// Resource returns the resource document emitted by the last Stage, or nil.
func (fs *FileStore) Resource() *docs.Resource { return fs.resource }

// Stage arms the plugin for one acquisition.
//
// The file name, path and template are read from the IOC; the write path
// is validated against FilePathExists_RBV and a missing directory fails
// the stage outright. FileNumber is captured before the write sequence
// runs because opening the capture file increments it. The expected full
// file name is computed locally from the template so documents can be
// emitted before the IOC reports it.
func (fs *FileStore) Stage(ctx context.Context) error {
	if fs.state != device.Unstaged {
		return fmt.Errorf("%w: %s is %s", device.ErrAlreadyStaged, fs.name, fs.state)
	}
	fs.state = device.Staging
	err := fs.stage(ctx)
	if err != nil {
		fs.state = device.Unstaged
		return err
	}
	fs.state = device.Staged
	return nil
}

func (fs *FileStore) stage(ctx context.Context) error {
	// Close any file left open by an aborted run before touching names.
	if err := fs.Capture.PutWait(ctx, 0); err != nil {
		return err
	}

	fileName, err := fs.FileName.GetString(ctx)
	if err != nil {
		return err
	}
	writePath, err := fs.FilePath.GetString(ctx)
	if err != nil {
		return err
	}
	template, err := fs.FileTemplate.GetString(ctx)
	if err != nil {
		return err
	}

	writePath = ensureTrailingSlash(writePath)
	if err := fs.FilePath.PutWait(ctx, writePath); err != nil {
		return err
	}
	if err := fs.FileName.PutWait(ctx, fileName); err != nil {
		return err
	}

	exists, err := fs.filePathExists.GetInt(ctx)
	if err != nil {
		return err
	}
	if exists != 1 {
		return fmt.Errorf("%w: file path %q does not exist on IOC.", ErrFilePath, writePath)
	}

	// Opening the capture file bumps FileNumber; read it first.
	fileNumber, err := fs.FileNumber.GetInt(ctx)
	if err != nil {
		return err
	}

	fs.stageSigs.EnsureLast("capture")
	restorer, err := fs.stageSigs.Apply(ctx, stageThrottle)
	if err != nil {
		return err
	}
	fs.restorer = restorer

	readPath := fs.translatePath(writePath)
	full, err := formatFileName(template, readPath, fileName, fileNumber)
	if err != nil {
		fs.restorer = nil
		_ = restorer.Restore(context.WithoutCancel(ctx))
		return err
	}
	fs.stagedName = full
	fs.frameCounter = 0

	fs.resource = &docs.Resource{
		ID:             uuid.NewString(),
		Spec:           fs.spec,
		Root:           "/",
		ResourcePath:   strings.TrimPrefix(full, "/"),
		ResourceKwargs: map[string]any{"frame_per_point": fs.framesPerPoint},
		RunUID:         fs.runUID,
	}
	if fs.docw != nil {
		if err := fs.docw.InsertResource(ctx, fs.resource); err != nil {
			fs.resource = nil
			fs.stagedName = ""
			fs.restorer = nil
			_ = restorer.Restore(context.WithoutCancel(ctx))
			return err
		}
	}

	fs.logger.Info("staged capture plugin",
		"plugin", fs.name, "file", full, "spec", fs.spec)
	return nil
}

// Unstage disarms the plugin and restores every staged PV in reverse
// write order. The datum counter and computed file name are invalidated.
func (fs *FileStore) Unstage(ctx context.Context) error {
	if fs.state != device.Staged {
		return fmt.Errorf("%w: %s is %s", device.ErrNotStaged, fs.name, fs.state)
	}
	fs.state = device.Unstaging

	var err error
	if fs.restorer != nil {
		err = fs.restorer.Restore(ctx)
		fs.restorer = nil
	}
	fs.stagedName = ""
	fs.resource = nil
	fs.frameCounter = 0
	fs.state = device.Unstaged
	if err != nil {
		return err
	}

	fs.logger.Info("unstaged capture plugin", "plugin", fs.name)
	return nil
}

// GenerateDatum records one captured frame and returns its datum
// document. Frame indices are monotonic from zero per stage.
func (fs *FileStore) GenerateDatum(ctx context.Context) (*docs.Datum, error) {
	if fs.state != device.Staged {
		return nil, fmt.Errorf("%w: %s is %s", device.ErrNotStaged, fs.name, fs.state)
	}
	d := &docs.Datum{
		ID:         docs.DatumID(fs.resource.ID, fs.frameCounter),
		ResourceID: fs.resource.ID,
		FrameIndex: fs.frameCounter,
	}
	fs.frameCounter++
	if fs.docw != nil {
		if err := fs.docw.InsertDatum(ctx, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// translatePath rewrites an IOC-side path to its read-side mount.
func (fs *FileStore) translatePath(p string) string {
	if fs.writePathPrefix == "" || !strings.HasPrefix(p, fs.writePathPrefix) {
		return p
	}
	return fs.readPathPrefix + strings.TrimPrefix(p, fs.writePathPrefix)
}
