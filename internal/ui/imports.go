package ui

import "airlift/internal/event"

// Event is the engine's progress event, aliased so presenter code and
// tests read naturally.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted   = event.ScanStarted
	ScanComplete  = event.ScanComplete
	FolderCreated = event.FolderCreated
	FolderFailed  = event.FolderFailed
	FileStarted   = event.FileStarted
	FileCompleted = event.FileCompleted
	FileFailed    = event.FileFailed
	VerifyStarted = event.VerifyStarted
	VerifyOK      = event.VerifyOK
	VerifyFailed  = event.VerifyFailed
	RunCompleted  = event.RunCompleted
)
