package ui

import (
	"fmt"
	"strings"

	"airlift/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  size 2.1 GiB  avg 641 KB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		avgSpeed = float64(snap.BytesUploaded) / secs
	}

	errs := snap.FilesFailed + snap.FoldersFailed + snap.FilesVerifyFailed
	icon := "✓"
	if errs > 0 {
		icon = "✗"
	}

	parts := []string{
		"done " + icon,
		"files " + FormatCount(snap.FilesUploaded),
		"size " + FormatBytes(snap.BytesUploaded),
		"avg " + FormatRate(avgSpeed),
		"time " + FormatDuration(snap.Elapsed),
	}
	if snap.FoldersCreated > 0 {
		parts = append(parts, "folders "+FormatCount(snap.FoldersCreated))
	}
	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		parts = append(parts, "verified "+FormatCount(snap.FilesVerified))
	}
	parts = append(parts, fmt.Sprintf("errors %d", errs))

	return strings.Join(parts, "  ")
}
