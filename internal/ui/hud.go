package ui

import (
	"fmt"
	"io"
	"path"
	"time"

	"airlift/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

// hudPresenter provides a rich TTY display with a scrolling feed of
// uploaded files and a 2-line HUD that redraws in place.
type hudPresenter struct {
	w     io.Writer
	stats *stats.Collector
	width int // terminal width in columns

	hudDrawn    bool
	lastHUDDraw time.Time
}

func (p *hudPresenter) Run(events <-chan Event) error {
	// Fire first tick quickly to seed the ring buffer with initial speed data,
	// then switch to 1s interval.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw ticker for when no events are flowing (e.g., one large upload).
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(1 * time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanComplete:
		p.stats.SetTotals(ev.Total, ev.TotalSize)

	case FolderCreated:
		p.clearHUD()
		fmt.Fprintf(p.w, "+  %s%s/%s\n",
			ansiDim, truncPath(ev.Path, p.pathWidth()), ansiReset)
		p.drawHUD() // always redraw HUD after feed line

	case FolderFailed:
		p.clearHUD()
		fmt.Fprintf(p.w, "✗  %s/  %s\n",
			truncPath(ev.Path, p.pathWidth()), errText(ev, "error"))
		p.drawHUD()

	case FileCompleted:
		p.clearHUD()
		p.printFileCompleted(ev)
		p.drawHUD()

	case FileFailed:
		p.clearHUD()
		fmt.Fprintf(p.w, "✗  %s  %10s  %s\n",
			p.styledPath(truncPath(ev.Path, p.pathWidth())),
			FormatBytes(ev.Size), errText(ev, "error"))
		p.drawHUD()

	case VerifyStarted:
		p.clearHUD()
		fmt.Fprintf(p.w, "%sverifying uploads...%s\n", ansiDim, ansiReset)

	case VerifyOK:
		// silent; only failures make the feed

	case VerifyFailed:
		p.clearHUD()
		fmt.Fprintf(p.w, "✗  %s  %s\n", p.styledPath(ev.Path), errText(ev, "mismatch"))
		p.drawHUD()
	}
}

func (p *hudPresenter) printFileCompleted(ev Event) {
	styled := p.styledPath(truncPath(ev.Path, p.pathWidth()))
	if speed := p.stats.RollingSpeed(5); speed > 0 {
		fmt.Fprintf(p.w, "✓  %s  %10s  %s\n",
			styled, FormatBytes(ev.Size), FormatRate(speed))
		return
	}
	fmt.Fprintf(p.w, "✓  %s  %10s\n", styled, FormatBytes(ev.Size))
}

func errText(ev Event, fallback string) string {
	if ev.Error != nil {
		return ev.Error.Error()
	}
	return fallback
}

// maybeDrawHUD redraws unless the last draw was under hudMinInterval ago.
func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	p.clearHUD()

	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(10)

	var pct float64
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesUploaded) / float64(snap.BytesTotal)
	}

	// Line 1: throughput sparkline, speed, byte totals.
	spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		spark, FormatRate(speed),
		FormatBytes(snap.BytesUploaded), FormatBytes(snap.BytesTotal))

	// Line 2: progress bar, file counts, eta.
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s files   eta %s\n",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatCount(snap.FilesUploaded), FormatCount(snap.FilesTotal),
		FormatETA(p.stats.ETA()))

	p.hudDrawn = true
	p.lastHUDDraw = time.Now()
}

// clearHUD rewinds the cursor over the 2-line HUD and erases it.
func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	fmt.Fprint(p.w, "\033[2A\033[J")
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// pathWidth is the column budget for paths in feed lines; the rest of
// the line holds the status glyph, size and rate.
func (p *hudPresenter) pathWidth() int {
	return max(p.width-30, 20)
}

// styledPath returns the path with the directory portion dimmed and the
// filename in normal weight, making the actual filename stand out.
// Event paths are slash-separated and relative to the upload root.
func (p *hudPresenter) styledPath(pth string) string {
	dir := path.Dir(pth)
	base := path.Base(pth)
	if dir == "." || dir == "" {
		return base
	}
	return fmt.Sprintf("%s%s/%s%s", ansiDim, dir, ansiReset, base)
}

// truncPath shortens a path to fit maxLen characters, keeping the tail
// since it carries the filename.
func truncPath(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return "..." + s[len(s)-(maxLen-3):]
}
