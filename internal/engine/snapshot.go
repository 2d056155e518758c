package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"airlift/internal/filter"
)

// LocalFile is one regular file in the snapshot.
type LocalFile struct {
	Name string
	Path string // absolute
	Size int64
}

// LocalDir is one directory in the snapshot. Children come out of
// os.ReadDir already sorted by name, which fixes the walk order.
type LocalDir struct {
	Name  string
	Path  string // absolute
	Files []LocalFile
	Dirs  []LocalDir
}

// snapshot is the read-only picture of the source tree taken before
// any network work. It is not re-validated mid-run except for an
// existence check immediately before each operation.
type snapshot struct {
	Failures []Failure // entries that could not be read during the scan
	Root     LocalDir
	Files    int64
	Bytes    int64
	Dirs     int64
}

// snapshotTree scans the tree rooted at source, applying chain and
// counting totals. An unreadable source root is an error; unreadable
// entries deeper down are recorded as Failures and skipped, so the
// rest of the tree still uploads.
func snapshotTree(source string, chain *filter.Chain) (*snapshot, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}

	snap := &snapshot{}
	root, err := snap.scanDir(abs, abs, chain)
	if err != nil {
		return nil, err
	}
	snap.Root = root
	return snap, nil
}

func (s *snapshot) scanDir(path, root string, chain *filter.Chain) (LocalDir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return LocalDir{}, fmt.Errorf("read dir: %w", err)
	}

	dir := LocalDir{Name: filepath.Base(path), Path: path}
	for _, entry := range entries {
		childPath := filepath.Join(path, entry.Name())
		rel := relTo(root, childPath)

		if entry.IsDir() {
			if chain != nil && !chain.Match(rel, true, 0) {
				continue
			}
			child, err := s.scanDir(childPath, root, chain)
			if err != nil {
				s.Failures = append(s.Failures, Failure{Path: childPath, Kind: FolderFailure, Err: err})
				continue
			}
			dir.Dirs = append(dir.Dirs, child)
			s.Dirs++
			continue
		}

		// Symlinks, sockets and devices have no remote shape.
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.Failures = append(s.Failures, Failure{Path: childPath, Kind: FileFailure, Err: err})
			continue
		}
		if chain != nil && !chain.Match(rel, false, info.Size()) {
			continue
		}
		dir.Files = append(dir.Files, LocalFile{Name: entry.Name(), Path: childPath, Size: info.Size()})
		s.Files++
		s.Bytes += info.Size()
	}
	return dir, nil
}

// relTo shortens path to one relative to root, slash-separated.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
