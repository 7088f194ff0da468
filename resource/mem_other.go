//go:build !linux

package resource

import (
	"math"
	"runtime"
	"runtime/debug"
)

// FreeMemory returns the distance between the Go runtime's soft memory limit
// and the memory obtained from the OS. Without a soft limit it fails.
func FreeMemory() (int64, error) {
	limit := debug.SetMemoryLimit(-1)
	if limit == math.MaxInt64 {
		return 0, ErrMemoryProbe
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return max(limit-int64(ms.Sys), 0), nil
}
