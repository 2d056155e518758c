package engine

// UploadTask binds one local file to the destination folder and key it
// will be uploaded with. Tasks are created during the walk and consumed
// immediately, never persisted.
type UploadTask struct {
	LocalPath  string // absolute path on disk
	RelPath    string // relative to the upload root, for display
	Name       string
	FolderHash string
	Key        string
	Size       int64
}
