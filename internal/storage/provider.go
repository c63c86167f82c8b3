package storage

// Provider abstracts vault file access for the sync engine.
type Provider interface {
	// ListFolder returns the relative paths of the Markdown documents
	// directly inside folder, sorted. Returns apperr.ErrMissingFolder when
	// the folder does not exist.
	ListFolder(folder string) ([]string, error)
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
}
