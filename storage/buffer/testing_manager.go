package buffer

import (
	"github.com/pkg/errors"

	"github.com/Sumith1896/blockcache/storage/disk"
)

// testingCapacity keeps the pool small so eviction paths are easy to exercise
const testingCapacity = 3

// TestingNewManager initializes the buffer manager over an in-memory device
func TestingNewManager() (*Manager, error) {
	dm, err := disk.TestingNewBufferManager()
	if err != nil {
		return nil, errors.Wrap(err, "disk.TestingNewBufferManager failed")
	}
	return NewManager(dm, testingCapacity)
}

// TestingNewManagerWithCapacity initializes the buffer manager over an
// in-memory device with the given pool capacity
func TestingNewManagerWithCapacity(capacity int) (*Manager, error) {
	dm, err := disk.TestingNewBufferManager()
	if err != nil {
		return nil, errors.Wrap(err, "disk.TestingNewBufferManager failed")
	}
	return NewManager(dm, capacity)
}
