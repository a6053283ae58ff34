/*
The recency ordering is a circular doubly linked list over the fixed descriptor
array, anchored by a sentinel descriptor that holds no data. The links are
indices into the array, not pointers, so the structure cannot dangle or alias.

The list serves two purposes:
- scanning from the most-recently-used end finds already-cached blocks fast
- scanning from the least-recently-used end picks an eviction victim

Initial ordering: buffers are inserted at the front in allocation order, so
walking forward from the sentinel visits index n-1 down to 0 and walking
backward visits 0 up to n-1. This exact ordering is verified once at startup.

Every mutation validates the neighbor back-links first; a mismatch means the
structure is corrupted and surfaces as ErrInvariantViolated. All list
operations require the manager's bookkeeping mutex to be held and never
perform I/O, so the critical sections stay bounded.
*/
package buffer

import "github.com/pkg/errors"

// front returns the most-recently-used buffer id (sentinel if the list is empty)
func (m *Manager) front() BufferID {
	return m.descriptors[m.sentinelID].next
}

// back returns the least-recently-used buffer id (sentinel if the list is empty)
func (m *Manager) back() BufferID {
	return m.descriptors[m.sentinelID].prev
}

// next returns the id after id, walking toward the least-recently-used end
func (m *Manager) next(id BufferID) BufferID {
	return m.descriptors[id].next
}

// prev returns the id before id, walking toward the most-recently-used end
func (m *Manager) prev(id BufferID) BufferID {
	return m.descriptors[id].prev
}

// initRecencyList builds the circular recency ordering over all buffers.
// each buffer is inserted at the front, the way the pool is allocated,
// which yields the documented initial ordering.
func (m *Manager) initRecencyList() {
	sentinel := m.descriptors[m.sentinelID]
	sentinel.next = m.sentinelID
	sentinel.prev = m.sentinelID
	for i := 0; i < len(m.buffers); i++ {
		id := BufferID(i)
		desc := m.descriptors[id]
		desc.next = sentinel.next
		desc.prev = m.sentinelID
		m.descriptors[sentinel.next].prev = id
		sentinel.next = id
	}
}

// checkLinks validates that id's neighbors point back at id.
// the bookkeeping mutex must be held.
func (m *Manager) checkLinks(id BufferID) error {
	desc := m.descriptors[id]
	if desc.next == InvalidBufferID || desc.prev == InvalidBufferID {
		return errors.Wrapf(ErrInvariantViolated, "buffer %d is not linked", id)
	}
	if m.descriptors[desc.next].prev != id {
		return errors.Wrapf(ErrInvariantViolated, "buffer %d: next neighbor does not link back", id)
	}
	if m.descriptors[desc.prev].next != id {
		return errors.Wrapf(ErrInvariantViolated, "buffer %d: prev neighbor does not link back", id)
	}
	return nil
}

// moveToFront unlinks id from its current position and reinserts it at the
// most-recently-used end. the bookkeeping mutex must be held.
func (m *Manager) moveToFront(id BufferID) error {
	if err := m.checkLinks(id); err != nil {
		return err
	}
	desc := m.descriptors[id]
	// unlink
	m.descriptors[desc.next].prev = desc.prev
	m.descriptors[desc.prev].next = desc.next
	// reinsert at front
	sentinel := m.descriptors[m.sentinelID]
	desc.next = sentinel.next
	desc.prev = m.sentinelID
	m.descriptors[sentinel.next].prev = id
	sentinel.next = id
	return nil
}

// verifyRecencyList walks the whole ordering in both directions and checks:
// - every buffer appears exactly once
// - the forward and backward walks are consistent with each other
// this is called once after initialization; any failure is an internal
// invariant violation, not a recoverable error.
func (m *Manager) verifyRecencyList() error {
	n := len(m.buffers)
	seen := make([]bool, n)
	count := 0
	for id := m.front(); id != m.sentinelID; id = m.next(id) {
		if id < 0 || int(id) >= n {
			return errors.Wrapf(ErrInvariantViolated, "unexpected id %d in forward walk", id)
		}
		if seen[id] {
			return errors.Wrapf(ErrInvariantViolated, "buffer %d appears twice in forward walk", id)
		}
		seen[id] = true
		if err := m.checkLinks(id); err != nil {
			return err
		}
		count++
		if count > n {
			return errors.Wrap(ErrInvariantViolated, "forward walk does not terminate")
		}
	}
	if count != n {
		return errors.Wrapf(ErrInvariantViolated, "forward walk visited %d of %d buffers", count, n)
	}
	return nil
}

// verifyInitialOrder checks the documented initial ordering: walking forward
// from the sentinel visits index n-1 down to 0, walking backward 0 up to n-1.
func (m *Manager) verifyInitialOrder() error {
	n := len(m.buffers)
	expected := BufferID(n - 1)
	for id := m.front(); id != m.sentinelID; id = m.next(id) {
		if id != expected {
			return errors.Wrapf(ErrInvariantViolated, "forward walk: got buffer %d, want %d", id, expected)
		}
		expected--
	}
	expected = FirstBufferID
	for id := m.back(); id != m.sentinelID; id = m.prev(id) {
		if id != expected {
			return errors.Wrapf(ErrInvariantViolated, "backward walk: got buffer %d, want %d", id, expected)
		}
		expected++
	}
	return nil
}
