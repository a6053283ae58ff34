package buffer

import "github.com/Sumith1896/blockcache/storage/block"

// BufferID is the index of a buffer within the fixed pool.
// buffer contents and buffer metadata (descriptor) share the same index.
type BufferID int32

const (
	// InvalidBufferID indicates no buffer
	InvalidBufferID BufferID = -1
	// FirstBufferID is the first buffer id in the pool
	FirstBufferID BufferID = 0
)

// buffer is byte array
// block contents are fetched from the device into this
type buffer *[block.Size]byte

// newBuffers initializes the buffer pool
// the pool is allocated once and never resized or individually freed
func newBuffers(n int) []buffer {
	buffers := make([]buffer, n)
	for i := 0; i < n; i++ {
		buffers[i] = &[block.Size]byte{}
	}
	return buffers
}

const (
	// bufferPoolSize is the default byte size of the buffer pool
	bufferPoolSize = 1000000

	// DefaultCapacity is the default number of buffers in the pool.
	// the capacity is fixed when the manager is constructed.
	DefaultCapacity = bufferPoolSize / block.Size
)
