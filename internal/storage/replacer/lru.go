package replacer

import (
	"container/list"
	"sync"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
)

// LRUReplacer evicts the least-recently-unpinned frame. Candidates are
// kept in a doubly-linked list ordered most-recently-unpinned (front) to
// least-recently-unpinned (back), with an index from frame id to list
// element so every operation is O(1).
type LRUReplacer struct {
	mutex    sync.Mutex
	list     *list.List
	frameMap map[page.FrameID]*list.Element
	capacity int
}

var _ Replacer = (*LRUReplacer)(nil)

// NewLRUReplacer constructs an LRU replacer bounded to capacity
// candidates, matching the buffer pool's pool size.
func NewLRUReplacer(capacity int) *LRUReplacer {
	return &LRUReplacer{
		list:     list.New(),
		frameMap: make(map[page.FrameID]*list.Element, capacity),
		capacity: capacity,
	}
}

// Victim removes and returns the frame at the back of the list, the
// least-recently-unpinned candidate.
func (r *LRUReplacer) Victim() (page.FrameID, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	back := r.list.Back()
	if back == nil {
		return 0, false
	}

	frameID := back.Value.(page.FrameID)
	r.list.Remove(back)
	delete(r.frameMap, frameID)
	return frameID, true
}

// Pin removes frameID from the candidate set. Idempotent if it is not a
// candidate.
func (r *LRUReplacer) Pin(frameID page.FrameID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	elem, ok := r.frameMap[frameID]
	if !ok {
		return
	}
	r.list.Remove(elem)
	delete(r.frameMap, frameID)
}

// Unpin inserts frameID at the front of the list as most-recently-unpinned.
// Idempotent if already a candidate; rejects frame ids outside the
// replacer's capacity.
func (r *LRUReplacer) Unpin(frameID page.FrameID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if frameID < 0 || int(frameID) >= r.capacity {
		return
	}
	if _, ok := r.frameMap[frameID]; ok {
		return
	}

	elem := r.list.PushFront(frameID)
	r.frameMap[frameID] = elem
}

// Size returns the current number of candidates.
func (r *LRUReplacer) Size() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.frameMap)
}
