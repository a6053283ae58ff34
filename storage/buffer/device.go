package buffer

import (
	"github.com/Sumith1896/blockcache/common"
	"github.com/Sumith1896/blockcache/storage/block"
)

// Device is the collaborator that performs the physical block transfers.
// Both calls are synchronous from the cache's viewpoint. The cache does not
// retry failed transfers; retry/backoff policy belongs to the implementation
// or to the caller.
//
// storage/disk.Manager implements this interface over one file per device.
type Device interface {
	// ReadBlock fills p with the persisted contents of the block
	ReadBlock(dev common.DeviceID, blockNum common.BlockNumber, p block.BlockPtr) error
	// WriteBlock persists p as the contents of the block
	WriteBlock(dev common.DeviceID, blockNum common.BlockNumber, p block.BlockPtr) error
}
