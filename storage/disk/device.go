package disk

import (
	"fmt"
	"path/filepath"

	"github.com/Sumith1896/blockcache/common"
)

// getDeviceFilePath returns the device file path under base directory.
// each device is backed by a single file named dev-<id>.
func getDeviceFilePath(baseDir string, dev common.DeviceID) string {
	return filepath.Join(baseDir, fmt.Sprintf("dev-%d", dev))
}
