package engine

import (
	"context"
	"sync"

	"airlift/internal/remote"
)

// PathMapper caches the remote folder for each local directory so each
// directory is created at most once. Entries are only added, never
// removed; scope is one run unless the caller passes a warm mapper in.
type PathMapper struct {
	mu      sync.RWMutex
	folders map[string]remote.Folder
}

// NewPathMapper returns an empty mapper.
func NewPathMapper() *PathMapper {
	return &PathMapper{folders: make(map[string]remote.Folder)}
}

// Lookup returns the cached folder for a local directory path.
func (m *PathMapper) Lookup(path string) (remote.Folder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.folders[path]
	return f, ok
}

// Put caches the folder for a local directory path.
func (m *PathMapper) Put(path string, folder remote.Folder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[path] = folder
}

// Len returns the number of cached directories.
func (m *PathMapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.folders)
}

// createFunc creates the remote folder for a directory on cache miss.
type createFunc func(ctx context.Context) (remote.Folder, error)

// Resolve returns the remote folder for a local directory, calling
// create on first visit. The created flag reports whether create ran.
// Nothing is cached when create fails, so a later resolve retries.
// The write lock is held across create: two resolvers racing on the
// same path cannot both create it.
func (m *PathMapper) Resolve(ctx context.Context, path string, create createFunc) (remote.Folder, bool, error) {
	if f, ok := m.Lookup(path); ok {
		return f, false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.folders[path]; ok {
		return f, false, nil
	}

	f, err := create(ctx)
	if err != nil {
		return remote.Folder{}, false, err
	}
	m.folders[path] = f
	return f, true, nil
}
