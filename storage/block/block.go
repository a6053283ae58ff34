/*
Block is the unit of I/O in blockcache.
The disk manager organizes each device file as a collection of fixed-size blocks,
and the buffer manager caches block contents in memory.
The block size is fixed at compile time; variable block sizes are not supported.
*/
package block

import (
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/Sumith1896/blockcache/common"
)

// Size is the byte size of one block.
// 512 bytes matches the traditional disk sector size.
const Size = 512

// BlockPtr is pointer to block contents.
// block is defined as pointer explicitly because block contents should not be
// passed by value (for concurrent access and space-efficiency).
type BlockPtr *[Size]byte

// NewBlockPtr returns 0-filled block pointer
func NewBlockPtr() BlockPtr {
	b := &[Size]byte{}
	return BlockPtr(b)
}

// NewRandomBlock returns block pointer filled with random bytes
// this is expected to be used only in tests and the verification harness
func NewRandomBlock() (BlockPtr, error) {
	b := NewBlockPtr()
	if _, err := rand.Read(b[:]); err != nil {
		return nil, errors.Wrap(err, "rand.Read failed")
	}
	return b, nil
}

// CalculateFileOffset calculates the block's byte offset within the device file.
// the block size is fixed so the offset is easy to calculate.
func CalculateFileOffset(blockNum common.BlockNumber) int64 {
	return int64(blockNum) * Size
}
