package buffer

import "github.com/pkg/errors"

var (
	// ErrCacheExhausted is returned by acquire when every buffer in the pool is
	// either referenced or carries unpersisted modifications, so no buffer can
	// be recycled. The cache never retries by itself; retrying after another
	// caller releases a buffer is the caller's responsibility.
	ErrCacheExhausted = errors.New("no buffer can be evicted: all buffers are in use or dirty")

	// ErrBufferNotHeld is returned when write or release is called on a buffer
	// the caller does not hold. This is a programming error, not a recoverable
	// condition.
	ErrBufferNotHeld = errors.New("buffer is not held by the caller")

	// ErrInvariantViolated indicates recency-list corruption detected during
	// bookkeeping. It is fatal to the operation in progress.
	ErrInvariantViolated = errors.New("recency list invariant violated")
)
