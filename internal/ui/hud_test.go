package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airlift/internal/event"
	"airlift/internal/stats"
)

// runHUD feeds evs through a fresh 80-column HUD presenter and returns
// everything it wrote.
func runHUD(t *testing.T, evs ...Event) string {
	t.Helper()

	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 10240)
	p := &hudPresenter{w: &out, stats: collector, width: 80}

	events := make(chan Event, len(evs))
	for _, ev := range evs {
		events <- ev
	}
	close(events)

	require.NoError(t, p.Run(events))
	return out.String()
}

func TestHudFileCompleted(t *testing.T) {
	out := runHUD(t,
		Event{Type: event.ScanComplete, Total: 10, TotalSize: 10240},
		Event{Type: event.FileCompleted, Path: "test/file.txt", Size: 1024},
	)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "file.txt")
}

func TestHudDimsDirectoryPortion(t *testing.T) {
	out := runHUD(t,
		Event{Type: event.FileCompleted, Path: "some/dir/file.txt", Size: 1024},
	)
	assert.Contains(t, out, ansiDim)
	assert.Contains(t, out, "file.txt")
}

func TestHudFolderCreated(t *testing.T) {
	out := runHUD(t, Event{Type: event.FolderCreated, Path: "docs/img"})
	assert.Contains(t, out, "+  ")
	assert.Contains(t, out, "docs/img/")
}

func TestHudFolderFailed(t *testing.T) {
	out := runHUD(t, Event{Type: event.FolderFailed, Path: "docs", Error: assert.AnError})
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "docs/")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestHudFeedShowsEveryFile(t *testing.T) {
	out := runHUD(t,
		Event{Type: event.ScanComplete, Total: 10, TotalSize: 10240},
		Event{Type: event.FileCompleted, Path: "a.txt", Size: 100},
		Event{Type: event.FileCompleted, Path: "b.txt", Size: 200},
	)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
	// The HUD itself was drawn under the feed.
	assert.Contains(t, out, "□")
}

func TestHudVerifyStarted(t *testing.T) {
	out := runHUD(t, Event{Type: event.VerifyStarted})
	assert.Contains(t, out, "verifying uploads...")
}

func TestHudVerifyFailed(t *testing.T) {
	out := runHUD(t,
		Event{Type: event.VerifyFailed, Path: "bad/file.txt", Error: assert.AnError},
	)
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "file.txt")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestHudSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesUploaded(500)
	collector.AddBytesUploaded(100 << 20)

	p := &hudPresenter{stats: collector, width: 80}
	s := p.Summary()
	assert.Contains(t, s, "done")
	assert.Contains(t, s, "files 500")
}

func TestHudSummaryWithVerify(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesUploaded(100)
	collector.AddBytesUploaded(1 << 20)
	collector.AddFilesVerified(100)

	p := &hudPresenter{stats: collector, width: 80}
	s := p.Summary()
	assert.Contains(t, s, "verified 100")
	assert.Contains(t, s, "errors 0")
}

func TestHudClearSequence(t *testing.T) {
	var out bytes.Buffer
	p := &hudPresenter{w: &out, stats: stats.NewCollector(), width: 80}

	p.drawHUD()
	assert.True(t, p.hudDrawn)

	out.Reset()
	p.clearHUD()
	// Cursor-up escape for the 2-line HUD.
	assert.Contains(t, out.String(), "\033[2A")
	assert.False(t, p.hudDrawn)

	// A second clear is a no-op.
	out.Reset()
	p.clearHUD()
	assert.Empty(t, out.String())
}

func TestTruncPath(t *testing.T) {
	assert.Equal(t, "short.txt", truncPath("short.txt", 20))
	assert.Equal(t, "...ry/long/path.txt", truncPath("a/very/long/directory/long/path.txt", 19))
	assert.Equal(t, "ab", truncPath("abcdef", 2))
}

func TestPathWidth(t *testing.T) {
	assert.Equal(t, 50, (&hudPresenter{width: 80}).pathWidth())
	assert.Equal(t, 20, (&hudPresenter{width: 40}).pathWidth())
	assert.Equal(t, 20, (&hudPresenter{}).pathWidth())
}

func TestStyledPath(t *testing.T) {
	p := &hudPresenter{width: 80}

	// File without directory: no dim prefix.
	assert.Equal(t, "file.txt", p.styledPath("file.txt"))

	assert.Equal(t, ansiDim+"some/dir/"+ansiReset+"file.txt",
		p.styledPath("some/dir/file.txt"))
	assert.Equal(t, ansiDim+"dir/"+ansiReset+"file.txt",
		p.styledPath("dir/file.txt"))
}
