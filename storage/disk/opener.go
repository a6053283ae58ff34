/*
This file defines opener interface and its implementations.
We don't want to execute disk I/O in test, so it's better to use byte slice instead of actual file in test.
For this reason, opener interface is defined. Opener opens its storage. The implementations are:
- fileOpener: open and return file.
- bufferOpener: open and return byte slice. this is intended to be used in test.

open is called concurrently by transfers for distinct blocks, so the storage
caches are guarded by a mutex.
*/
package disk

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/Sumith1896/blockcache/common"
)

// opener opens storage
type opener interface {
	open(common.DeviceID) (storage, error)
}

// fileOpener opens file
type fileOpener struct {
	baseDir string
	// mu guards st
	mu sync.Mutex
	// cache file descriptors after open the files
	st map[string]storage
}

// newFileOpener initializes fileOpener
func newFileOpener(baseDir string) *fileOpener {
	return &fileOpener{
		baseDir: baseDir,
		st:      make(map[string]storage),
	}
}

// open opens and returns the specified device file under base directory
func (fo *fileOpener) open(dev common.DeviceID) (storage, error) {
	filePath := getDeviceFilePath(fo.baseDir, dev)
	fo.mu.Lock()
	defer fo.mu.Unlock()
	// when file descriptor is cached, just return it
	st, ok := fo.st[filePath]
	if ok {
		return st, nil
	}
	fd, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "os.OpenFile failed")
	}
	// cache file descriptor when open the file
	fo.st[filePath] = fileStorage{fd}
	return fileStorage{fd}, nil
}

// bufferOpener opens buffer
type bufferOpener struct {
	// mu guards st
	mu sync.Mutex
	st map[common.DeviceID]storage
}

// newBufferOpener initializes bufferOpener
func newBufferOpener() *bufferOpener {
	return &bufferOpener{
		st: make(map[common.DeviceID]storage),
	}
}

// open returns specified buffer
func (bo *bufferOpener) open(dev common.DeviceID) (storage, error) {
	bo.mu.Lock()
	defer bo.mu.Unlock()
	buf, ok := bo.st[dev]
	if ok {
		return buf, nil
	}
	buf = newBufferStorage()
	bo.st[dev] = buf
	return buf, nil
}
