package main

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sumith1896/blockcache/common"
	"github.com/Sumith1896/blockcache/config"
	"github.com/Sumith1896/blockcache/storage/buffer"
	"github.com/Sumith1896/blockcache/storage/disk"
)

const (
	stressWorkers      = 8
	stressOpsPerWorker = 500
	stressBlocks       = 64
	stressDevice       = common.DeviceID(1)
	// brief pause before retrying when the pool is exhausted
	exhaustedBackoff = time.Millisecond
)

func run(logger *zap.Logger, cfg *config.Config) error {
	dm, err := disk.NewManager(cfg.Device.BaseDir)
	if err != nil {
		return errors.Wrap(err, "disk.NewManager failed")
	}

	logger.Info("running scenario")
	if err := runScenario(dm); err != nil {
		return errors.Wrap(err, "scenario failed")
	}

	logger.Info("running stress workload",
		zap.Int("capacity", cfg.Cache.Capacity),
		zap.Int("workers", stressWorkers))
	if err := runStress(logger, dm, cfg.Cache.Capacity); err != nil {
		return errors.Wrap(err, "stress workload failed")
	}
	return nil
}

// runScenario replays the fixed protocol walk-through against a pool of
// three buffers and checks the expected state after each step.
func runScenario(dm *disk.Manager) error {
	m, err := buffer.NewManager(dm, 3)
	if err != nil {
		return errors.Wrap(err, "buffer.NewManager failed")
	}

	// fetch a block with dev = 10, block = 20
	a, err := m.AcquireBuffer(common.DeviceID(10), common.BlockNumber(20))
	if err != nil {
		return errors.Wrap(err, "AcquireBuffer failed")
	}

	// fetch a block with dev = 20, block = 40; the read must leave it valid
	b, err := m.ReadBuffer(common.DeviceID(20), common.BlockNumber(40))
	if err != nil {
		return errors.Wrap(err, "ReadBuffer failed")
	}
	if a == b {
		return errors.New("distinct blocks share a buffer")
	}

	// write to the block
	if err := m.WriteBuffer(b); err != nil {
		return errors.Wrap(err, "WriteBuffer failed")
	}

	// release the first block; re-acquiring it must return the same buffer
	if err := m.ReleaseBuffer(a); err != nil {
		return errors.Wrap(err, "ReleaseBuffer failed")
	}
	again, err := m.AcquireBuffer(common.DeviceID(10), common.BlockNumber(20))
	if err != nil {
		return errors.Wrap(err, "re-AcquireBuffer failed")
	}
	if again != a {
		return errors.Errorf("re-acquire returned buffer %d, want %d", again, a)
	}

	if err := m.ReleaseBuffer(again); err != nil {
		return errors.Wrap(err, "ReleaseBuffer failed")
	}
	if err := m.ReleaseBuffer(b); err != nil {
		return errors.Wrap(err, "ReleaseBuffer failed")
	}
	return nil
}

// runStress drives concurrent readers/writers over a shared set of blocks
// with the background writer running, then verifies every block reads back
// as either untouched or carrying the deterministic pattern the writers
// store.
func runStress(logger *zap.Logger, dm *disk.Manager, capacity int) error {
	m, err := buffer.NewManager(dm, capacity)
	if err != nil {
		return errors.Wrap(err, "buffer.NewManager failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bw := buffer.NewBackgroundWriter(m, logger)
	bgDone := make(chan error, 1)
	go func() {
		bgDone <- bw.Run(ctx)
	}()

	var g errgroup.Group
	for w := 0; w < stressWorkers; w++ {
		w := w
		g.Go(func() error {
			return stressWorker(m, w)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "worker failed")
	}

	cancel()
	if err := <-bgDone; !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "background writer failed")
	}

	if err := m.FlushAll(stressDevice); err != nil {
		return errors.Wrap(err, "FlushAll failed")
	}
	if err := verifyBlocks(m); err != nil {
		return err
	}

	stats := m.Stats()
	logger.Info("stress workload completed",
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses))
	return nil
}

func stressWorker(m *buffer.Manager, seed int) error {
	for i := 0; i < stressOpsPerWorker; i++ {
		blockNum := common.BlockNumber((seed*31 + i) % stressBlocks)
		bufID, err := m.ReadBuffer(stressDevice, blockNum)
		if errors.Is(err, buffer.ErrCacheExhausted) {
			// the cache never retries by itself; that is on us
			time.Sleep(exhaustedBackoff)
			continue
		}
		if err != nil {
			return errors.Wrap(err, "ReadBuffer failed")
		}

		blk := m.GetBlock(bufID)
		if err := checkPattern(blk[:], blockNum); err != nil {
			_ = m.ReleaseBuffer(bufID)
			return err
		}

		// every third op persists the pattern synchronously; the following op
		// only marks the mutation and leaves persistence to the background
		// writer (or the final FlushAll)
		switch i % 3 {
		case 0:
			binary.BigEndian.PutUint32(blk[:4], uint32(blockNum)+1)
			if err := m.WriteBuffer(bufID); err != nil {
				_ = m.ReleaseBuffer(bufID)
				return errors.Wrap(err, "WriteBuffer failed")
			}
		case 1:
			binary.BigEndian.PutUint32(blk[:4], uint32(blockNum)+1)
			if err := m.MarkDirty(bufID); err != nil {
				_ = m.ReleaseBuffer(bufID)
				return errors.Wrap(err, "MarkDirty failed")
			}
		}

		if err := m.ReleaseBuffer(bufID); err != nil {
			return errors.Wrap(err, "ReleaseBuffer failed")
		}
	}
	return nil
}

// checkPattern verifies a block is either untouched (all-zero marker) or
// carries the marker a writer stored for exactly this block.
func checkPattern(b []byte, blockNum common.BlockNumber) error {
	marker := binary.BigEndian.Uint32(b[:4])
	if marker != 0 && marker != uint32(blockNum)+1 {
		return errors.Errorf("block %d carries marker %d", blockNum, marker)
	}
	return nil
}

func verifyBlocks(m *buffer.Manager) error {
	for i := 0; i < stressBlocks; i++ {
		blockNum := common.BlockNumber(i)
		bufID, err := m.ReadBuffer(stressDevice, blockNum)
		if err != nil {
			return errors.Wrap(err, "ReadBuffer failed")
		}
		blk := m.GetBlock(bufID)
		err = checkPattern(blk[:], blockNum)
		if rerr := m.ReleaseBuffer(bufID); rerr != nil {
			return errors.Wrap(rerr, "ReleaseBuffer failed")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
