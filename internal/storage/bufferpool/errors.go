package bufferpool

import "errors"

var (
	// ErrNoEvictableFrame is returned by Fetch and NewPage when every
	// frame in the pool is pinned.
	ErrNoEvictableFrame = errors.New("bufferpool: no evictable frame, every frame is pinned")

	// ErrPageNotResident is returned by Flush when the page id is not
	// currently resident in the pool. (Unpin reports the same condition by
	// returning false.)
	ErrPageNotResident = errors.New("bufferpool: page is not resident")

	// ErrPagePinned is returned by DeletePage when the page is resident
	// and still pinned by a caller.
	ErrPagePinned = errors.New("bufferpool: page is pinned, cannot delete")
)
