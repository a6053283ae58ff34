/*
This file defines storage interface and its implementations.
We don't want to execute disk I/O in test, so it's better to use byte slice instead of actual file in test.
For this reason, storage interface is defined. Possible operation with storage is
read at/write at/sync/get size. The implementations are:
- fileStorage: wrapper of os.File
- bufferStorage: this consists of byte slice guarded by a mutex.

The buffer manager runs transfers for distinct blocks of one device concurrently
(each caller holds only its own buffer's content lock), so the storage must not
keep a shared seek cursor. ReaderAt/WriterAt carry the offset with every call,
and os.File implements both without touching the file offset.
*/
package disk

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/Sumith1896/blockcache/storage/block"
)

// storage is storage which implements multiple operations necessary for a device file.
// implementations must be safe for concurrent use.
type storage interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Sync() error
}

// fileStorage is file storage
type fileStorage struct {
	*os.File
}

// Size returns the storage's size
func (fs fileStorage) Size() (int64, error) {
	stat, err := fs.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "Stat failed")
	}
	return stat.Size(), nil
}

// bufferStorage is buffer storage
type bufferStorage struct {
	// mu guards buf. concurrent transfers for distinct blocks share this storage
	mu sync.RWMutex
	// buf is actual contents
	buf []byte
}

// newBufferStorage initializes bufferStorage
func newBufferStorage() *bufferStorage {
	// initialize with one block size
	buf := make([]byte, block.Size)
	return &bufferStorage{
		buf: buf,
	}
}

// Size returns the buffer size
func (bs *bufferStorage) Size() (int64, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return int64(len(bs.buf)), nil
}

// Sync doesn't do anything
func (bs *bufferStorage) Sync() error {
	// on-memory byte slice doesn't need sync
	return nil
}

// ReadAt reads buffer contents at off into p
func (bs *bufferStorage) ReadAt(p []byte, off int64) (n int, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	if off >= int64(len(bs.buf)) {
		return 0, io.EOF
	}
	nread := copy(p, bs.buf[off:])
	if nread != len(p) {
		return nread, io.EOF
	}
	return nread, nil
}

// WriteAt writes p into buffer contents at off
// if the write reaches beyond the current extent, the byte slice is extended block by block
func (bs *bufferStorage) WriteAt(p []byte, off int64) (n int, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	for int64(len(bs.buf)) < off+int64(len(p)) {
		blk := block.NewBlockPtr()
		bs.buf = append(bs.buf, blk[:]...)
	}
	nwritten := copy(bs.buf[off:], p)
	if nwritten != len(p) {
		return nwritten, errors.Errorf("cannot fully write: nwritten %d, len %d", nwritten, len(p))
	}
	return nwritten, nil
}
