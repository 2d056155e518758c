package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	FolderCreated
	FolderFailed
	FileStarted
	FileCompleted
	FileFailed
	VerifyStarted
	VerifyOK
	VerifyFailed
	RunCompleted
)

var typeNames = [...]string{
	ScanStarted:   "ScanStarted",
	ScanComplete:  "ScanComplete",
	FolderCreated: "FolderCreated",
	FolderFailed:  "FolderFailed",
	FileStarted:   "FileStarted",
	FileCompleted: "FileCompleted",
	FileFailed:    "FileFailed",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
	RunCompleted:  "RunCompleted",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string        // path relative to the upload root
	Size      int64         // file size in bytes
	Done      int64         // files completed so far (RunCompleted)
	Total     int64         // total files (ScanComplete, RunCompleted)
	TotalSize int64         // total bytes (ScanComplete)
	Elapsed   time.Duration // duration of the completed operation
	Error     error
	Final     bool // terminal event for the operation being tracked
}
