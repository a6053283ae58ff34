/*
The buffer manager is a fixed-capacity cache of device blocks sitting between
callers and the device collaborator. It reduces device reads, serializes
concurrent access to a given block, and tracks which blocks carry unflushed
modifications.

the methods as main entry point:
- AcquireBuffer: find-or-evict. returns the buffer exclusively held.
- ReadBuffer: AcquireBuffer + load the contents from the device if needed.
- WriteBuffer: persist the held buffer's contents to the device.
- ReleaseBuffer: give the buffer back and update the recency ordering.

access rules for buffers:
the flow when reading or mutating block contents is described below:
- acquire the buffer (this takes the buffer's content lock)
- -> do anything with the contents -> optionally WriteBuffer to persist
- -> ReleaseBuffer
doing anything with the buffer is atomic to any other callers because the
content lock is exclusive.

# The two lock tiers

- bookkeeping mutex (manager-wide):
  - protects the recency ordering and buffer metadata (tag, ref count, links)
  - held only for bounded, I/O-free critical sections (scans and relinking)
  - never held across a device transfer

- buffer content lock (per buffer):
  - protects the buffer contents
  - held for the full span of a caller's use, including any device transfer

ordering rule to avoid deadlock: the acquire path always releases the
bookkeeping mutex before attempting to take a buffer's content lock; the two
are never held simultaneously.

# Buffer replacement

The recency ordering is a circular list around a sentinel, most-recently-used
at the front. acquire scans from the front for an identity hit; on a miss it
scans from the back for a victim with ref count zero and no unpersisted
modification. Only clean buffers are recycled: a dirty buffer's contents are
the sole authoritative copy, so recycling it would lose data. Dirty idle
buffers become evictable once the background writer (or FlushAll) persists
them. When no buffer qualifies, acquire fails with ErrCacheExhausted and the
caller decides whether to retry.

No cancellation or timeout is defined for acquisition: a caller blocks
indefinitely for a busy buffer.
*/
package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/Sumith1896/blockcache/common"
	"github.com/Sumith1896/blockcache/storage/block"
)

// Manager manages the fixed pool of buffers
type Manager struct {
	// dev is the device collaborator used for block transfers
	dev Device
	// buffers is the fixed pool of block contents, allocated once
	buffers []buffer
	// descriptors of each buffer plus the recency list sentinel at index len(buffers)
	descriptors []*descriptor
	// sentinelID is the index of the sentinel descriptor
	sentinelID BufferID
	// mu is the bookkeeping mutex. see the comment at the head of this file
	mu sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager initializes the buffer manager with the given pool capacity.
// The pool is allocated once here and never resized. The initial recency
// ordering is verified before the manager is handed out; a verification
// failure means the initialization itself is broken.
func NewManager(dev Device, capacity int) (*Manager, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("capacity must be positive: %d", capacity)
	}
	m := &Manager{
		dev:         dev,
		buffers:     newBuffers(capacity),
		descriptors: newDescriptors(capacity),
		sentinelID:  BufferID(capacity),
	}
	m.initRecencyList()
	if err := m.verifyInitialOrder(); err != nil {
		return nil, errors.Wrap(err, "verifyInitialOrder failed")
	}
	if err := m.verifyRecencyList(); err != nil {
		return nil, errors.Wrap(err, "verifyRecencyList failed")
	}
	return m, nil
}

/*
AcquireBuffer returns the id of the buffer caching the block, exclusively held.
the caller has to call ReleaseBuffer() after completion of using the buffer.

when the block is already cached, the cached buffer is returned so concurrent
callers of the same block always share one buffer. when it is not, an idle
clean buffer is recycled: its identity is reassigned and its contents are left
unloaded (valid=false) for ReadBuffer to fill.

the returned buffer's contents are not touched here; AcquireBuffer is the
synchronization point, ReadBuffer/WriteBuffer are the transfer points.
*/
func (m *Manager) AcquireBuffer(dev common.DeviceID, blockNum common.BlockNumber) (BufferID, error) {
	t := newTag(dev, blockNum)

	m.mu.Lock()
	// Is the block already cached? scan from the most-recently-used end
	// because hot blocks live near the front.
	for id := m.front(); id != m.sentinelID; id = m.next(id) {
		desc := m.descriptors[id]
		if desc.tag == t {
			desc.refcount++
			m.mu.Unlock()
			m.hits.Add(1)
			// block until the current holder releases the buffer.
			// the bookkeeping mutex is already released; the two locks are
			// never held at the same time.
			desc.contentLock.Lock()
			desc.setHeld()
			return id, nil
		}
	}

	// Not cached; recycle some unused clean buffer, scanning from the
	// least-recently-used end. a dirty buffer must not be recycled because
	// its contents have not been persisted yet.
	for id := m.back(); id != m.sentinelID; id = m.prev(id) {
		desc := m.descriptors[id]
		if desc.refcount == 0 && !desc.isDirty() {
			desc.tag = t
			desc.clearValid()
			desc.clearDirty()
			desc.refcount = 1
			m.mu.Unlock()
			m.misses.Add(1)
			desc.contentLock.Lock()
			desc.setHeld()
			return id, nil
		}
	}

	m.mu.Unlock()
	return InvalidBufferID, ErrCacheExhausted
}

// ReadBuffer returns the id of a buffer holding the block's contents, exclusively held.
// if the buffer does not yet reflect the device contents, the block is read from
// the device first. on success the returned buffer is always valid.
func (m *Manager) ReadBuffer(dev common.DeviceID, blockNum common.BlockNumber) (BufferID, error) {
	bufID, err := m.AcquireBuffer(dev, blockNum)
	if err != nil {
		return InvalidBufferID, errors.Wrap(err, "AcquireBuffer failed")
	}
	desc := m.descriptors[bufID]
	if !desc.isValid() {
		if err := m.dev.ReadBlock(dev, blockNum, block.BlockPtr(m.buffers[bufID])); err != nil {
			// give the buffer back so a failed transfer does not leak the slot
			if rerr := m.ReleaseBuffer(bufID); rerr != nil {
				return InvalidBufferID, errors.Wrap(rerr, "ReleaseBuffer failed after read failure")
			}
			return InvalidBufferID, errors.Wrap(err, "dev.ReadBlock failed")
		}
		desc.setValid()
	}
	return bufID, nil
}

// WriteBuffer persists the held buffer's contents to the device.
// the buffer is marked dirty before the transfer; a completed transfer, read
// or write, leaves the in-memory copy authoritative so valid is set on
// success. the dirty bit stays set until the buffer is flushed (by the
// background writer or FlushAll), at which point it becomes evictable again.
// the content lock is not released here; the caller remains responsible for
// ReleaseBuffer.
func (m *Manager) WriteBuffer(bufID BufferID) error {
	desc := m.descriptors[bufID]
	if !desc.isHeld() {
		return errors.Wrapf(ErrBufferNotHeld, "cannot write buffer %d", bufID)
	}
	desc.setDirty()
	if err := m.dev.WriteBlock(desc.tag.dev, desc.tag.blockNum, block.BlockPtr(m.buffers[bufID])); err != nil {
		return errors.Wrap(err, "dev.WriteBlock failed")
	}
	desc.setValid()
	return nil
}

// ReleaseBuffer gives a held buffer back.
// the ref count is decremented and, when it reaches zero, the buffer moves to
// the most-recently-used end of the recency ordering. the content lock is
// released unconditionally, whatever the resulting ref count.
func (m *Manager) ReleaseBuffer(bufID BufferID) error {
	desc := m.descriptors[bufID]
	if !desc.isHeld() {
		return errors.Wrapf(ErrBufferNotHeld, "cannot release buffer %d", bufID)
	}
	m.mu.Lock()
	if desc.refcount == 0 {
		m.mu.Unlock()
		return errors.Wrapf(ErrInvariantViolated, "buffer %d is held but has ref count 0", bufID)
	}
	desc.refcount--
	if desc.refcount == 0 {
		// no one is waiting for it; it becomes the most-recently-used entry
		if err := m.moveToFront(bufID); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.mu.Unlock()

	desc.clearHeld()
	desc.contentLock.Unlock()
	return nil
}

// MarkDirty turns on the dirty bit of the held buffer.
// callers mutating the contents directly (without WriteBuffer) have to call
// this so the background writer knows the buffer needs persisting.
func (m *Manager) MarkDirty(bufID BufferID) error {
	desc := m.descriptors[bufID]
	if !desc.isHeld() {
		return errors.Wrapf(ErrBufferNotHeld, "cannot mark buffer %d dirty", bufID)
	}
	desc.setDirty()
	return nil
}

// GetBlock returns the block contents stored at the buffer.
// the caller must hold the buffer.
func (m *Manager) GetBlock(bufID BufferID) block.BlockPtr {
	return block.BlockPtr(m.buffers[bufID])
}

// flushBuffer writes the buffer's contents out to the device and clears the
// dirty bit, completing the dirty -> valid&clean transition. the content lock
// is taken for the duration of the transfer so the contents cannot change
// under the write. the bookkeeping mutex must NOT be held by the caller.
//
// the tag is stable here without the bookkeeping mutex: a dirty buffer is
// never chosen as an eviction victim, so its identity cannot be reassigned
// until the dirty bit is cleared below.
func (m *Manager) flushBuffer(bufID BufferID) (bool, error) {
	desc := m.descriptors[bufID]
	if !desc.isDirty() {
		return false, nil
	}
	desc.contentLock.Lock()
	defer desc.contentLock.Unlock()
	// recheck under the content lock; the holder may have flushed meanwhile
	if !desc.isDirty() {
		return false, nil
	}
	if err := m.dev.WriteBlock(desc.tag.dev, desc.tag.blockNum, block.BlockPtr(m.buffers[bufID])); err != nil {
		return false, errors.Wrap(err, "dev.WriteBlock failed")
	}
	desc.setValid()
	desc.clearDirty()
	return true, nil
}

// FlushAll writes out every dirty buffer of the device.
// buffers currently held by other callers are waited for, one at a time.
func (m *Manager) FlushAll(dev common.DeviceID) error {
	for i := 0; i < len(m.buffers); i++ {
		bufID := BufferID(i)
		m.mu.Lock()
		t := m.descriptors[bufID].tag
		m.mu.Unlock()
		if !t.valid || t.dev != dev {
			continue
		}
		if _, err := m.flushBuffer(bufID); err != nil {
			return errors.Wrap(err, "flushBuffer failed")
		}
	}
	return nil
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Hits   int64
	Misses int64
}

// Stats returns a snapshot of the cache counters
func (m *Manager) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
}
