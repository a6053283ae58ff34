package common

// DeviceID identifies one backing block device.
// the cache itself treats this as an opaque non-negative identifier.
// the disk manager maps it to a file path under the base directory.
type DeviceID uint32

// BlockNumber identifies one fixed-size block within a device.
// block number n lives at byte offset n * block.Size within the device file.
type BlockNumber uint32
