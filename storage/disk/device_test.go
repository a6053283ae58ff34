package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumith1896/blockcache/common"
)

func TestGetDeviceFilePath(t *testing.T) {
	tests := []struct {
		name     string
		dev      common.DeviceID
		expected string
	}{
		{
			name:     "first device",
			dev:      common.DeviceID(0),
			expected: filepath.Join("base", "dev-0"),
		},
		{
			name:     "device 10",
			dev:      common.DeviceID(10),
			expected: filepath.Join("base", "dev-10"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getDeviceFilePath("base", tt.dev))
		})
	}
}
