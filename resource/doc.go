// Package resource governs the resources a search run may consume.
//
// A Controller manages three budgets:
//
//   - Memory: a hard limit (or the system's free memory) from which the
//     iteration planner derives how many trails fit at once
//   - Workers: a weighted semaphore admitting at most MaxWorkers concurrent
//     search workers
//   - IO: a token bucket shared by archive uploads and downloads
//
// # Sharing
//
// A Controller passed to several searchers bounds their combined worker
// count and trail memory:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	    MaxWorkers:       8,
//	})
//	a, _ := biclique.New(c1, b1, biclique.WithResourceController(rc))
//	b, _ := biclique.New(c2, b2, biclique.WithResourceController(rc))
//
// # Memory
//
// Headroom reports how many bytes are still available. With a configured
// limit it is the limit minus the reserved bytes; without one it is the free
// memory reported by the operating system.
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//
//	headroom, err := rc.Headroom()
//	if err != nil {
//	    return err
//	}
//	if err := rc.AcquireMemory(headroom / 2); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(headroom / 2)
//
// # IO
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//	r := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops and
// Headroom falls back to the system probe.
package resource
