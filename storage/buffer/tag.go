package buffer

import (
	"github.com/Sumith1896/blockcache/common"
)

// tag is buffer tag
// buffer tag must be sufficient to locate where the block is on the device
type tag struct {
	// device id
	dev common.DeviceID
	// block number within the device
	blockNum common.BlockNumber
	// if valid is false, this descriptor hasn't been assigned an identity yet so tag is invalid.
	// the identity is meaningful only while the buffer's ref count is above zero;
	// once it drops to zero the tag survives for re-lookup but may be reassigned at any time.
	valid bool
}

// newTag initializes buffer tag
func newTag(dev common.DeviceID, blockNum common.BlockNumber) tag {
	return tag{
		dev:      dev,
		blockNum: blockNum,
		valid:    true,
	}
}
