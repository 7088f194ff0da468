//go:build linux

package resource

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FreeMemory returns free plus buffer RAM as reported by sysinfo(2).
func FreeMemory() (int64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMemoryProbe, err)
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return int64((uint64(info.Freeram) + uint64(info.Bufferram)) * unit), nil
}
