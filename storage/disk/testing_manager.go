package disk

import "testing"

// TestingNewFileManager initializes disk manager with file storage.
func TestingNewFileManager(t *testing.T) (*Manager, error) {
	// use t.TempDir() so the generated files are removed after the test completes
	return NewManager(t.TempDir())
}

// TestingNewBufferManager initializes disk manager with buffer storage instead of file storage.
// This prevents unnecessary disk I/O.
func TestingNewBufferManager() (*Manager, error) {
	return &Manager{newBufferOpener()}, nil
}
