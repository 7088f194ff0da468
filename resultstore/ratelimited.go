package resultstore

import (
	"context"
	"io"

	"github.com/hupe1980/biclique/resource"
)

// RateLimited throttles the bytes flowing through Put and Get.
type RateLimited struct {
	Store
	rc *resource.Controller
}

// NewRateLimited wraps s with a limit of bytesPerSec. A non-positive limit
// disables throttling.
func NewRateLimited(s Store, bytesPerSec int64) *RateLimited {
	return &RateLimited{
		Store: s,
		rc:    resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec}),
	}
}

// Put implements Store.
func (s *RateLimited) Put(ctx context.Context, name string, r io.Reader) error {
	return s.Store.Put(ctx, name, resource.NewRateLimitedReader(ctx, r, s.rc))
}

// Get implements Store.
func (s *RateLimited) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.Store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{resource.NewRateLimitedReader(ctx, rc, s.rc), rc}, nil
}
