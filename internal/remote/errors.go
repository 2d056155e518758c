package remote

import "fmt"

// FolderCreateError reports a failed folder creation. The subtree that
// needed the folder cannot receive uploads; sibling subtrees are
// unaffected.
type FolderCreateError struct {
	Err    error
	Name   string
	Parent string
	Reason string
	Status int
}

func (e *FolderCreateError) Error() string {
	msg := fmt.Sprintf("create folder %q under %s: %s", e.Name, e.Parent, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FolderCreateError) Unwrap() error { return e.Err }

// UploadError reports a single failed file upload.
type UploadError struct {
	Err    error
	Path   string
	Reason string
	Status int
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("upload %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UploadError) Unwrap() error { return e.Err }
