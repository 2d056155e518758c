package engine

import (
	"context"
	"fmt"
	"time"

	"airlift/internal/event"
	"airlift/internal/remote"
	"airlift/internal/stats"
)

// Lister is the listing slice of the remote service, used by Verify.
type Lister interface {
	ListFolder(ctx context.Context, hash string, withSubfolders bool) ([]remote.Entry, error)
}

// VerifyConfig controls the post-upload verification pass.
type VerifyConfig struct {
	Records []FileRecord
	Events  event.Sink
	Stats   *stats.Collector
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Errors   []VerifyError
	Verified int64
	Failed   int64
}

// VerifyError records one file that could not be confirmed remotely.
type VerifyError struct {
	Path   string
	Reason string
}

// Verify confirms each uploaded file appears in its destination folder
// with the expected size. Each distinct folder is listed once; calls
// are sequential like the upload itself. Cancellation stops the pass
// and leaves the remaining records unchecked.
func Verify(ctx context.Context, lister Lister, cfg VerifyConfig) VerifyResult {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	emit := func(e event.Event) {
		if cfg.Events == nil {
			return
		}
		e.Timestamp = time.Now()
		cfg.Events.Emit(e)
	}

	emit(event.Event{Type: event.VerifyStarted, Total: int64(len(cfg.Records))})

	var result VerifyResult
	listings := make(map[string]map[string]int64) // folder hash -> name -> size
	listErrs := make(map[string]error)

	fail := func(rec FileRecord, reason string, err error) {
		result.Failed++
		result.Errors = append(result.Errors, VerifyError{Path: rec.Path, Reason: reason})
		cfg.Stats.AddFilesVerifyFailed(1)
		emit(event.Event{Type: event.VerifyFailed, Path: rec.Name, Size: rec.Size, Error: err})
	}

	for _, rec := range cfg.Records {
		if ctx.Err() != nil {
			break
		}

		sizes, ok := listings[rec.FolderHash]
		if !ok {
			if _, seen := listErrs[rec.FolderHash]; !seen {
				entries, err := lister.ListFolder(ctx, rec.FolderHash, false)
				if err != nil {
					listErrs[rec.FolderHash] = err
				} else {
					sizes = make(map[string]int64, len(entries))
					for _, e := range entries {
						if !e.IsDir() {
							sizes[e.Name] = e.Size
						}
					}
					listings[rec.FolderHash] = sizes
				}
			}
		}

		if err, bad := listErrs[rec.FolderHash]; bad {
			fail(rec, fmt.Sprintf("list folder: %v", err), err)
			continue
		}

		size, found := sizes[rec.Name]
		switch {
		case !found:
			fail(rec, "not found in destination folder", nil)
		case size != rec.Size:
			fail(rec, fmt.Sprintf("size mismatch: local %d, remote %d", rec.Size, size), nil)
		default:
			result.Verified++
			cfg.Stats.AddFilesVerified(1)
			emit(event.Event{Type: event.VerifyOK, Path: rec.Name, Size: rec.Size})
		}
	}

	return result
}
