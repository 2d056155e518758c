package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// sample holds one second's worth of upload deltas.
type sample struct {
	bytes int64
	files int64
}

// Collector tracks upload run statistics using lock-free atomic counters.
type Collector struct {
	filesTotal        atomic.Int64
	bytesTotal        atomic.Int64
	filesUploaded     atomic.Int64
	filesFailed       atomic.Int64
	bytesUploaded     atomic.Int64
	foldersCreated    atomic.Int64
	foldersReused     atomic.Int64
	foldersFailed     atomic.Int64
	filesVerified     atomic.Int64
	filesVerifyFailed atomic.Int64
	startTime         time.Time

	// Per-second delta ring, written only by the presenter's Tick(),
	// never by the engine.
	mu        sync.Mutex
	ring      [ringSize]sample
	ringIdx   int
	ringCount int // samples written so far, capped at ringSize
	last      sample
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records scan totals (called once when the snapshot completes).
func (c *Collector) SetTotals(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesTotal        int64
	BytesTotal        int64
	FilesUploaded     int64
	FilesFailed       int64
	BytesUploaded     int64
	FoldersCreated    int64
	FoldersReused     int64
	FoldersFailed     int64
	FilesVerified     int64
	FilesVerifyFailed int64
	Elapsed           time.Duration
}

func (c *Collector) AddFilesUploaded(n int64)     { c.filesUploaded.Add(n) }
func (c *Collector) AddFilesFailed(n int64)       { c.filesFailed.Add(n) }
func (c *Collector) AddBytesUploaded(n int64)     { c.bytesUploaded.Add(n) }
func (c *Collector) AddFoldersCreated(n int64)    { c.foldersCreated.Add(n) }
func (c *Collector) AddFoldersReused(n int64)     { c.foldersReused.Add(n) }
func (c *Collector) AddFoldersFailed(n int64)     { c.foldersFailed.Add(n) }
func (c *Collector) AddFilesVerified(n int64)     { c.filesVerified.Add(n) }
func (c *Collector) AddFilesVerifyFailed(n int64) { c.filesVerifyFailed.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesTotal:        c.filesTotal.Load(),
		BytesTotal:        c.bytesTotal.Load(),
		FilesUploaded:     c.filesUploaded.Load(),
		FilesFailed:       c.filesFailed.Load(),
		BytesUploaded:     c.bytesUploaded.Load(),
		FoldersCreated:    c.foldersCreated.Load(),
		FoldersReused:     c.foldersReused.Load(),
		FoldersFailed:     c.foldersFailed.Load(),
		FilesVerified:     c.filesVerified.Load(),
		FilesVerifyFailed: c.filesVerifyFailed.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Tick records the byte/file deltas since the previous call into the
// ring. Called once a second by the presenter.
func (c *Collector) Tick() {
	now := sample{
		bytes: c.bytesUploaded.Load(),
		files: c.filesUploaded.Load(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ring[c.ringIdx] = sample{
		bytes: now.bytes - c.last.bytes,
		files: now.files - c.last.files,
	}
	c.last = now
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	return c.rollingAvg(seconds, func(s sample) int64 { return s.bytes })
}

// RollingFilesPerSec returns average files/sec over the last n seconds.
func (c *Collector) RollingFilesPerSec(seconds int) float64 {
	return c.rollingAvg(seconds, func(s sample) int64 { return s.files })
}

func (c *Collector) rollingAvg(n int, field func(sample) int64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count == 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += field(c.ring[idx])
	}
	return float64(sum) / float64(count)
}

// SparklineData returns the last n bytes/sec samples, oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count == 0 {
		return nil
	}
	data := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		data[i] = float64(c.ring[idx].bytes)
	}
	return data
}

// ETA estimates remaining time from the 10-second rolling speed and the
// bytes still to upload.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	remaining := c.bytesTotal.Load() - c.bytesUploaded.Load()
	if speed <= 0 || remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"uploaded=%d failed=%d bytes=%d folders=%d reused=%d folder_errs=%d",
		s.FilesUploaded, s.FilesFailed, s.BytesUploaded,
		s.FoldersCreated, s.FoldersReused, s.FoldersFailed,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	val, exp := float64(b)/unit, 0
	for val >= unit {
		val /= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", val, "KMGTPE"[exp])
}
