// Package replacer implements the buffer pool manager's pluggable
// eviction policy over frame ids.
package replacer

import "github.com/Adarsh-Kmt/bpmcore/internal/storage/page"

// Replacer holds the set of frames that are currently eviction
// candidates: resident frames with a pin count of zero. LRU is the only
// concrete policy implemented here; clock or LRU-K are future variants
// behind the same four operations.
type Replacer interface {
	// Victim removes and returns a frame to evict, or false if there are
	// no candidates.
	Victim() (page.FrameID, bool)

	// Pin removes frameID from the candidate set. Idempotent if absent.
	Pin(frameID page.FrameID)

	// Unpin adds frameID to the candidate set as most-recently-unpinned.
	// Idempotent if already a candidate.
	Unpin(frameID page.FrameID)

	// Size returns the current number of candidates.
	Size() int
}
