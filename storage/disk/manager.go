/*
Disk manager deals with the device files under base directory.
Each device known to the cache is backed by one file, and the file is organized
as a collection of fixed-size blocks. Block n lives at byte offset n * block.Size.

The manager implements the device collaborator interface expected by the buffer
manager (ReadBlock/WriteBlock). The calls are synchronous; retry/backoff policy
for transfer failures belongs to the caller of the cache, not here. Transfers
for distinct blocks of one device run concurrently, so all I/O is offset-based
(ReadAt/WriteAt) and never goes through a shared seek cursor.

Reads past the current end of a device file return a zero-filled block instead
of an error: device files are extended lazily by writes, so a block that has
never been written reads back as zeroes the way a sparse file does.
*/
package disk

import (
	"os"

	"github.com/pkg/errors"

	"github.com/Sumith1896/blockcache/common"
	"github.com/Sumith1896/blockcache/storage/block"
)

// Manager manages device files
type Manager struct {
	op opener
}

// NewManager initializes disk manager with file storage under baseDir
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(err, "os.MkdirAll failed")
	}
	return &Manager{
		op: newFileOpener(baseDir),
	}, nil
}

// ReadBlock reads the block from the device file into p
func (m *Manager) ReadBlock(dev common.DeviceID, blockNum common.BlockNumber, p block.BlockPtr) error {
	st, err := m.op.open(dev)
	if err != nil {
		return errors.Wrap(err, "op.open failed")
	}
	offset := block.CalculateFileOffset(blockNum)
	size, err := st.Size()
	if err != nil {
		return errors.Wrap(err, "st.Size failed")
	}
	// the block has never been written. sparse read, see the package comment
	if offset+block.Size > size {
		copy(p[:], make([]byte, block.Size))
		return nil
	}
	if _, err := st.ReadAt(p[:], offset); err != nil {
		return errors.Wrap(err, "st.ReadAt failed")
	}
	return nil
}

// WriteBlock writes p into the block of the device file
func (m *Manager) WriteBlock(dev common.DeviceID, blockNum common.BlockNumber, p block.BlockPtr) error {
	st, err := m.op.open(dev)
	if err != nil {
		return errors.Wrap(err, "op.open failed")
	}
	offset := block.CalculateFileOffset(blockNum)
	if _, err := st.WriteAt(p[:], offset); err != nil {
		return errors.Wrap(err, "st.WriteAt failed")
	}
	return nil
}

// Sync flushes the device file to stable storage
func (m *Manager) Sync(dev common.DeviceID) error {
	st, err := m.op.open(dev)
	if err != nil {
		return errors.Wrap(err, "op.open failed")
	}
	if err := st.Sync(); err != nil {
		return errors.Wrap(err, "st.Sync failed")
	}
	return nil
}
