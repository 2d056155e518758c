// Package engine walks a local tree and mirrors it into the remote
// service folder by folder, files before subdirectories, one network
// operation at a time.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airlift/internal/event"
	"airlift/internal/filter"
	"airlift/internal/remote"
	"airlift/internal/stats"
)

// RemoteClient is the slice of the remote service the engine drives.
type RemoteClient interface {
	CreateFolder(ctx context.Context, name, parentHash string, creds remote.Credentials) (remote.Folder, error)
	UploadFile(ctx context.Context, localPath, folderHash, key string, wantHash bool) (string, error)
}

// FailureKind distinguishes what kind of work a Failure lost.
type FailureKind int

const (
	// FileFailure is one file that did not upload; the walk continued.
	FileFailure FailureKind = iota + 1
	// FolderFailure is a directory whose remote folder could not be
	// created; its whole subtree was skipped.
	FolderFailure
)

func (k FailureKind) String() string {
	switch k {
	case FileFailure:
		return "file"
	case FolderFailure:
		return "folder"
	default:
		return "unknown"
	}
}

// Failure records one failed operation.
type Failure struct {
	Err  error
	Path string
	Kind FailureKind
}

// FileRecord identifies one uploaded file. Records are kept when hash
// tracking is on; verification reads them back.
type FileRecord struct {
	Path       string // local absolute path
	Name       string
	FolderHash string
	ID         string // content hash, or "d" when the service returned none
	Size       int64
}

// Config describes one upload run.
type Config struct {
	Client      RemoteClient
	Events      event.Sink
	Stats       *stats.Collector
	Mapper      *PathMapper
	Filter      *filter.Chain
	Source      string
	Credentials remote.Credentials
	Base        remote.Folder
	TrackHashes bool
}

// Result is the outcome of an upload run. Partial outcomes are
// reported in full: every failed file and folder appears in Failures.
type Result struct {
	Err            error
	Uploaded       []FileRecord
	Failures       []Failure
	Root           remote.Folder
	Stats          stats.Snapshot
	FilesAttempted int64
	FilesUploaded  int64
	Success        bool
}

// Run executes one upload, blocking until done. The walk is strictly
// sequential: one network operation in flight at a time.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Mapper == nil {
		cfg.Mapper = NewPathMapper()
	}

	r := &run{cfg: cfg}
	r.execute(ctx)

	r.result.Success = r.result.Err == nil && len(r.result.Failures) == 0
	r.result.Stats = cfg.Stats.Snapshot()
	r.emit(event.Event{
		Type:  event.RunCompleted,
		Done:  r.result.FilesUploaded,
		Total: r.result.FilesAttempted,
		Error: r.result.Err,
		Final: true,
	})
	return r.result
}

// run carries one invocation's mutable state through the walk.
type run struct {
	cfg       Config
	absSource string
	result    Result
}

func (r *run) execute(ctx context.Context) {
	if err := r.validate(); err != nil {
		r.result.Err = err
		return
	}

	abs, err := filepath.Abs(r.cfg.Source)
	if err != nil {
		r.result.Err = fmt.Errorf("resolve source: %w", err)
		return
	}
	r.absSource = abs

	info, err := os.Stat(abs)
	if err != nil {
		r.result.Err = fmt.Errorf("source: %w", err)
		return
	}

	if info.IsDir() {
		r.uploadTree(ctx)
		return
	}
	r.uploadSingle(ctx, info)
}

func (r *run) validate() error {
	if r.cfg.Client == nil {
		return fmt.Errorf("no remote client configured")
	}
	if r.cfg.Source == "" {
		return fmt.Errorf("no source path given")
	}
	if r.cfg.Base.Hash == "" {
		return fmt.Errorf("base folder hash missing")
	}
	if r.cfg.Base.Key() == "" {
		return fmt.Errorf("base folder key missing")
	}
	return nil
}

// uploadSingle sends one file straight into the base folder. No
// folders are created and the mapper is never consulted.
func (r *run) uploadSingle(ctx context.Context, info os.FileInfo) {
	r.emit(event.Event{Type: event.ScanStarted})
	r.cfg.Stats.SetTotals(1, info.Size())
	r.emit(event.Event{Type: event.ScanComplete, Total: 1, TotalSize: info.Size()})

	name := filepath.Base(r.absSource)
	task := UploadTask{
		LocalPath:  r.absSource,
		RelPath:    name,
		Name:       name,
		FolderHash: r.cfg.Base.Hash,
		Key:        r.cfg.Base.Key(),
		Size:       info.Size(),
	}
	if err := r.uploadFile(ctx, task); err != nil {
		r.result.Err = err
	}
	r.result.Root = r.cfg.Base
}

// uploadTree snapshots the source directory, then walks it depth
// first. The tree itself lands in a folder named after the source
// directory, created inside the base folder.
func (r *run) uploadTree(ctx context.Context) {
	r.emit(event.Event{Type: event.ScanStarted})
	snap, err := snapshotTree(r.absSource, r.cfg.Filter)
	if err != nil {
		r.result.Err = fmt.Errorf("scan source: %w", err)
		return
	}
	r.cfg.Stats.SetTotals(snap.Files, snap.Bytes)
	r.emit(event.Event{Type: event.ScanComplete, Total: snap.Files, TotalSize: snap.Bytes})

	// Entries the scan could not read never made it into the tree.
	for _, f := range snap.Failures {
		r.result.Failures = append(r.result.Failures, f)
		switch f.Kind {
		case FolderFailure:
			r.cfg.Stats.AddFoldersFailed(1)
			r.emit(event.Event{Type: event.FolderFailed, Path: r.rel(f.Path), Error: f.Err, Final: true})
		default:
			r.cfg.Stats.AddFilesFailed(1)
			r.emit(event.Event{Type: event.FileFailed, Path: r.rel(f.Path), Error: f.Err, Final: true})
		}
	}

	if err := r.walkDir(ctx, snap.Root, r.cfg.Base); err != nil {
		r.result.Err = err
	}

	if root, ok := r.cfg.Mapper.Lookup(r.absSource); ok {
		r.result.Root = root
	}
}

// walkDir uploads dir's files, then descends into its subdirectories.
// parent is the remote folder dir's own folder is created in. A
// non-nil error means cancellation; domain failures are recorded on
// the result instead.
func (r *run) walkDir(ctx context.Context, dir LocalDir, parent remote.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	folder, ok := r.resolveFolder(ctx, dir, parent)
	if !ok {
		// Subtree skipped; siblings continue unless we were canceled.
		return ctx.Err()
	}

	for _, file := range dir.Files {
		task := UploadTask{
			LocalPath:  file.Path,
			RelPath:    r.rel(file.Path),
			Name:       file.Name,
			FolderHash: folder.Hash,
			Key:        folder.Key(),
			Size:       file.Size,
		}
		if err := r.uploadFile(ctx, task); err != nil {
			return err
		}
	}

	for _, sub := range dir.Dirs {
		if err := r.walkDir(ctx, sub, folder); err != nil {
			return err
		}
	}
	return nil
}

// resolveFolder maps dir onto its remote folder, creating it under
// parent on first visit. A false return means the folder is
// unavailable and the subtree must be skipped.
func (r *run) resolveFolder(ctx context.Context, dir LocalDir, parent remote.Folder) (remote.Folder, bool) {
	folder, created, err := r.cfg.Mapper.Resolve(ctx, dir.Path, func(ctx context.Context) (remote.Folder, error) {
		// The directory may have vanished since the snapshot.
		if _, statErr := os.Stat(dir.Path); statErr != nil {
			return remote.Folder{}, &remote.FolderCreateError{
				Name:   dir.Name,
				Parent: parent.Hash,
				Reason: "directory vanished before creation",
				Err:    statErr,
			}
		}
		return r.cfg.Client.CreateFolder(ctx, dir.Name, parent.Hash, r.cfg.Credentials)
	})
	if err != nil {
		r.cfg.Stats.AddFoldersFailed(1)
		r.result.Failures = append(r.result.Failures, Failure{Path: dir.Path, Kind: FolderFailure, Err: err})
		r.emit(event.Event{Type: event.FolderFailed, Path: r.rel(dir.Path), Error: err, Final: true})
		return remote.Folder{}, false
	}

	if created {
		r.cfg.Stats.AddFoldersCreated(1)
		r.emit(event.Event{Type: event.FolderCreated, Path: r.rel(dir.Path), Final: true})
	} else {
		r.cfg.Stats.AddFoldersReused(1)
	}
	return folder, true
}

// uploadFile runs one task. A non-nil error means cancellation; an
// upload failure is recorded and the walk moves on.
func (r *run) uploadFile(ctx context.Context, task UploadTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.result.FilesAttempted++
	r.emit(event.Event{Type: event.FileStarted, Path: task.RelPath, Size: task.Size})
	start := time.Now()

	// The file may have vanished since the snapshot.
	if _, err := os.Stat(task.LocalPath); err != nil {
		r.fileFailed(task, start, &remote.UploadError{
			Path:   task.LocalPath,
			Reason: "file vanished before upload",
			Err:    err,
		})
		return nil
	}

	id, err := r.cfg.Client.UploadFile(ctx, task.LocalPath, task.FolderHash, task.Key, r.cfg.TrackHashes)
	if err != nil {
		r.fileFailed(task, start, err)
		// Non-nil only when the upload died of cancellation.
		return ctx.Err()
	}

	r.cfg.Stats.AddFilesUploaded(1)
	r.result.FilesUploaded++
	if r.cfg.TrackHashes {
		r.result.Uploaded = append(r.result.Uploaded, FileRecord{
			Path:       task.LocalPath,
			Name:       task.Name,
			FolderHash: task.FolderHash,
			ID:         id,
			Size:       task.Size,
		})
	}
	r.emit(event.Event{
		Type:    event.FileCompleted,
		Path:    task.RelPath,
		Size:    task.Size,
		Elapsed: time.Since(start),
		Final:   true,
	})
	return nil
}

func (r *run) fileFailed(task UploadTask, start time.Time, err error) {
	r.cfg.Stats.AddFilesFailed(1)
	r.result.Failures = append(r.result.Failures, Failure{Path: task.LocalPath, Kind: FileFailure, Err: err})
	r.emit(event.Event{
		Type:    event.FileFailed,
		Path:    task.RelPath,
		Size:    task.Size,
		Error:   err,
		Elapsed: time.Since(start),
		Final:   true,
	})
}

// rel shortens an absolute path for display in events.
func (r *run) rel(path string) string {
	return relTo(r.absSource, path)
}

// emit stamps and forwards an event; a nil sink drops it.
func (r *run) emit(e event.Event) {
	if r.cfg.Events == nil {
		return
	}
	e.Timestamp = time.Now()
	r.cfg.Events.Emit(e)
}
