package filestorage

// FileStorage stores opaque blobs under a relative path
type FileStorage interface {
	// Save writes data to a new uniquely named file inside subPath and
	// returns its path relative to the storage root.
	Save(subPath, ext string, data []byte) (string, error)

	// Delete removes a file. Missing files are not an error.
	Delete(relPath string) error

	// FullPath resolves a relative path against the storage root
	FullPath(relPath string) (string, error)
}
