package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFields(t *testing.T) {
	c := NewCollector()
	c.SetTotals(10, 5000)
	c.AddFilesUploaded(3)
	c.AddFilesFailed(1)
	c.AddBytesUploaded(999)
	c.AddFoldersCreated(4)
	c.AddFoldersReused(2)
	c.AddFoldersFailed(1)
	c.AddFilesVerified(5)
	c.AddFilesVerifyFailed(2)

	s := c.Snapshot()
	assert.Equal(t, int64(10), s.FilesTotal)
	assert.Equal(t, int64(5000), s.BytesTotal)
	assert.Equal(t, int64(3), s.FilesUploaded)
	assert.Equal(t, int64(1), s.FilesFailed)
	assert.Equal(t, int64(999), s.BytesUploaded)
	assert.Equal(t, int64(4), s.FoldersCreated)
	assert.Equal(t, int64(2), s.FoldersReused)
	assert.Equal(t, int64(1), s.FoldersFailed)
	assert.Equal(t, int64(5), s.FilesVerified)
	assert.Equal(t, int64(2), s.FilesVerifyFailed)
}

func TestCollectorConcurrentAdds(t *testing.T) {
	c := NewCollector()
	const goroutines = 50
	const opsEach = 400

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range opsEach {
				c.AddFilesUploaded(1)
				c.AddBytesUploaded(128)
				c.AddFilesVerified(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	want := int64(goroutines * opsEach)
	assert.Equal(t, want, s.FilesUploaded)
	assert.Equal(t, want*128, s.BytesUploaded)
	assert.Equal(t, want, s.FilesVerified)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		FilesUploaded:  12,
		BytesUploaded:  2048,
		FoldersCreated: 5,
		FoldersReused:  3,
	}
	assert.Equal(t,
		"uploaded=12 failed=0 bytes=2048 folders=5 reused=3 folder_errs=0",
		s.String())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{1 << 30, "1.0 GiB"},
		{3 << 40, "3.0 TiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FormatBytes(tt.input))
		})
	}
}

func TestRollingAverages(t *testing.T) {
	c := NewCollector()
	for range 3 {
		c.AddBytesUploaded(2048)
		c.AddFilesUploaded(4)
		c.Tick()
	}

	assert.InDelta(t, 2048.0, c.RollingSpeed(3), 0.01)
	assert.InDelta(t, 4.0, c.RollingFilesPerSec(3), 0.01)
}

func TestRollingMostRecentSample(t *testing.T) {
	c := NewCollector()
	c.AddBytesUploaded(100)
	c.Tick()
	c.AddBytesUploaded(300)
	c.Tick()

	// Deltas are 100 then 300; a window of 1 sees only the newest.
	assert.InDelta(t, 300.0, c.RollingSpeed(1), 0.01)
	assert.InDelta(t, 200.0, c.RollingSpeed(2), 0.01)
}

func TestRollingWindowClampsToSamples(t *testing.T) {
	c := NewCollector()
	c.AddBytesUploaded(500)
	c.Tick()
	c.AddBytesUploaded(500)
	c.Tick()

	assert.InDelta(t, 500.0, c.RollingSpeed(60), 0.01)
}

func TestRollingNoSamples(t *testing.T) {
	c := NewCollector()
	assert.Zero(t, c.RollingSpeed(5))
	assert.Zero(t, c.RollingFilesPerSec(5))
}

func TestSparklineOldestFirst(t *testing.T) {
	c := NewCollector()
	for _, delta := range []int64{10, 20, 30} {
		c.AddBytesUploaded(delta)
		c.Tick()
	}

	data := c.SparklineData(5)
	require.Len(t, data, 3)
	assert.InDelta(t, 10, data[0], 0.01)
	assert.InDelta(t, 20, data[1], 0.01)
	assert.InDelta(t, 30, data[2], 0.01)
}

func TestSparklineWindowTakesNewest(t *testing.T) {
	c := NewCollector()
	for range 6 {
		c.AddBytesUploaded(1)
		c.Tick()
	}
	c.AddBytesUploaded(9)
	c.Tick()

	data := c.SparklineData(2)
	require.Len(t, data, 2)
	assert.InDelta(t, 1, data[0], 0.01)
	assert.InDelta(t, 9, data[1], 0.01)
}

func TestSparklineNoSamples(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.SparklineData(5))
}

func TestRingWrapsPastCapacity(t *testing.T) {
	c := NewCollector()
	for range ringSize + 5 {
		c.AddBytesUploaded(7)
		c.Tick()
	}

	data := c.SparklineData(ringSize)
	require.Len(t, data, ringSize)
	for _, v := range data {
		assert.InDelta(t, 7, v, 0.01)
	}
	assert.InDelta(t, 7.0, c.RollingSpeed(ringSize), 0.01)
}

func TestETAFromRollingSpeed(t *testing.T) {
	c := NewCollector()
	c.SetTotals(50, 20000)

	// 4 seconds at 2000 bytes/sec leaves 12000 bytes, so about 6s.
	for range 4 {
		c.AddBytesUploaded(2000)
		c.Tick()
	}

	assert.InDelta(t, 6.0, c.ETA().Seconds(), 1.0)
}

func TestETAUnknownWithoutSamples(t *testing.T) {
	c := NewCollector()
	c.SetTotals(100, 10000)
	assert.Equal(t, time.Duration(0), c.ETA())
}

func TestETAZeroWhenDone(t *testing.T) {
	c := NewCollector()
	c.SetTotals(1, 1000)
	c.AddBytesUploaded(1000)
	c.Tick()
	assert.Equal(t, time.Duration(0), c.ETA())
}

func TestElapsed(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.startTime.IsZero())

	time.Sleep(10 * time.Millisecond)
	s := c.Snapshot()
	assert.Greater(t, s.Elapsed, time.Duration(0))
}
