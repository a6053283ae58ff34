/*
Dirty buffers have to be written out before they can be recycled, and the
acquire path only recycles clean buffers. If every idle buffer is dirty,
acquire fails with ErrCacheExhausted. The background writer keeps that from
becoming the steady state: it periodically scans the pool and persists dirty
buffers that no caller is referencing, so the eviction scan keeps finding
victims without paying the write on the acquire path.
*/
package buffer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// delay between active rounds
	defaultBgWriterDelay = 200 * time.Millisecond
	// in each round, this many buffers are flushed at most
	defaultBgWriterMaxBlocks = 100
)

// BackgroundWriter periodically flushes dirty, unreferenced buffers.
type BackgroundWriter struct {
	m      *Manager
	logger *zap.Logger

	delay     time.Duration
	maxBlocks int
}

// NewBackgroundWriter initializes the background writer.
// a nil logger disables logging.
func NewBackgroundWriter(m *Manager, logger *zap.Logger) *BackgroundWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackgroundWriter{
		m:         m,
		logger:    logger,
		delay:     defaultBgWriterDelay,
		maxBlocks: defaultBgWriterMaxBlocks,
	}
}

// Run flushes dirty buffers on background periodically until ctx is done.
func (bw *BackgroundWriter) Run(ctx context.Context) error {
	ticker := time.NewTicker(bw.delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			written, err := bw.writeRound()
			if err != nil {
				return errors.Wrap(err, "writeRound failed")
			}
			if written > 0 {
				bw.logger.Debug("background writer flushed buffers", zap.Int("written", written))
			}
		}
	}
}

// writeRound scans the whole pool once and flushes dirty, unreferenced
// buffers, up to the per-round budget.
func (bw *BackgroundWriter) writeRound() (int, error) {
	written := 0
	for i := 0; i < len(bw.m.buffers); i++ {
		bufID := BufferID(i)
		// skip buffers someone is referencing; they will be flushed on a
		// later round once released. the check is advisory only, flushBuffer
		// itself is safe against concurrent holders.
		bw.m.mu.Lock()
		referenced := bw.m.descriptors[bufID].refcount > 0
		bw.m.mu.Unlock()
		if referenced {
			continue
		}
		flushed, err := bw.m.flushBuffer(bufID)
		if err != nil {
			return written, errors.Wrap(err, "flushBuffer failed")
		}
		if flushed {
			written++
			if written >= bw.maxBlocks {
				break
			}
		}
	}
	return written, nil
}
