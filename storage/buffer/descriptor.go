/*
Buffer descriptor stores metadata about each buffer.

Each descriptor carries:

1. the buffer tag (identity)
- which (device, block number) the buffer currently caches.
- meaningful only while the ref count is above zero; an idle buffer keeps its
- tag so a later acquire can still hit it, but the next eviction may silently
- reassign it.

2. ref count
- the number of outstanding holders/waiters of this identity.
- while the ref count is above zero the buffer must not be evicted.
- the flow is: acquire the buffer -> do anything with the buffer
- -> release the buffer after the process is completed.
- IMPORTANT: the caller is responsible for ReleaseBuffer().

3. recency links
- next/prev are indices into the fixed descriptor array, forming the circular
- recency ordering around the sentinel. Indices are used instead of pointers so
- the structure cannot dangle or alias.

4. state flags (valid / dirty / held)
- valid: the buffer contents reflect the device contents.
- dirty: the buffer contents were modified and not yet persisted.
- held: a caller currently has exclusive use of the buffer.
- the three flags are combined into one uint32 so they can be updated atomically
- with cas operation, without holding the bookkeeping lock. dirty in particular
- is toggled while the caller holds only the content lock.

The tag, ref count and links are guarded by the manager's bookkeeping mutex.
The contentLock serializes use of the buffer contents and is held by a caller
for the full span of its use, including any device transfer it triggers.
*/
package buffer

import (
	"sync"
	"sync/atomic"
)

// descriptor is buffer descriptor
type descriptor struct {
	// buffer tag. guarded by the manager's bookkeeping mutex
	tag tag
	// ref count. guarded by the manager's bookkeeping mutex
	refcount uint32
	// recency list links (indices into the descriptor array).
	// guarded by the manager's bookkeeping mutex
	next BufferID
	prev BufferID
	// state field. see the comment at the head of this file
	state uint32
	// contentLock protects the buffer contents.
	// this is a real blocking mutex: a caller waiting for a busy buffer
	// blocks until the current holder releases it.
	contentLock sync.Mutex
}

// newDescriptors initializes descriptors for the manager.
// n data descriptors are allocated plus one extra used as the recency list
// sentinel; the sentinel never holds data.
func newDescriptors(n int) []*descriptor {
	descs := make([]*descriptor, n+1)
	for i := 0; i <= n; i++ {
		descs[i] = &descriptor{
			next: InvalidBufferID,
			prev: InvalidBufferID,
		}
	}
	return descs
}

// flags in state field
const (
	// bmValid indicates the buffer contents reflect the device contents
	bmValid uint32 = (1 << 0)
	// bmDirty indicates the buffer contents differ from the persisted version
	bmDirty uint32 = (1 << 1)
	// bmHeld indicates a caller holds exclusive use of the buffer
	bmHeld uint32 = (1 << 2)
)

// setFlag sets the flag bit with cas operation
// this can be called without holding the bookkeeping mutex
func (desc *descriptor) setFlag(flag uint32) {
	for {
		oldState := atomic.LoadUint32(&desc.state)
		newState := oldState | flag
		if atomic.CompareAndSwapUint32(&desc.state, oldState, newState) {
			break
		}
	}
}

// clearFlag clears the flag bit with cas operation
func (desc *descriptor) clearFlag(flag uint32) {
	for {
		oldState := atomic.LoadUint32(&desc.state)
		newState := oldState & ^flag
		if atomic.CompareAndSwapUint32(&desc.state, oldState, newState) {
			break
		}
	}
}

// hasFlag checks whether the flag bit is set
func (desc *descriptor) hasFlag(flag uint32) bool {
	state := atomic.LoadUint32(&desc.state)
	return state&flag != 0
}

func (desc *descriptor) setValid()     { desc.setFlag(bmValid) }
func (desc *descriptor) clearValid()   { desc.clearFlag(bmValid) }
func (desc *descriptor) isValid() bool { return desc.hasFlag(bmValid) }

func (desc *descriptor) setDirty()     { desc.setFlag(bmDirty) }
func (desc *descriptor) clearDirty()   { desc.clearFlag(bmDirty) }
func (desc *descriptor) isDirty() bool { return desc.hasFlag(bmDirty) }

func (desc *descriptor) setHeld()     { desc.setFlag(bmHeld) }
func (desc *descriptor) clearHeld()   { desc.clearFlag(bmHeld) }
func (desc *descriptor) isHeld() bool { return desc.hasFlag(bmHeld) }
