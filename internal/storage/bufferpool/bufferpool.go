// Package bufferpool implements the buffer pool manager: the concurrency
// and correctness hinge between higher-level storage components and a
// block-addressable disk. It owns a bounded set of page frames, serves
// page-id lookups, honors pin counts, writes dirty pages back on
// eviction, and delegates eviction choice to a pluggable Replacer.
package bufferpool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/disk"
	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
	"github.com/Adarsh-Kmt/bpmcore/internal/storage/replacer"
)

// Manager is the public surface table-heap, index, and catalog code call
// against. Every operation is a single critical section under a coarse
// latch; disk I/O is performed while holding it.
type Manager struct {
	mutex sync.Mutex

	frames     []*page.Frame
	pageTable  map[page.ID]page.FrameID
	freeFrames []page.FrameID
	replacer   replacer.Replacer

	disk   disk.Manager
	log    LogManager
	logger *slog.Logger
}

// New constructs a buffer pool manager with poolSize frames, backed by
// disk and interlocked (today, trivially) with log. A nil log is replaced
// with NoopLogManager{}; a nil logger with slog.Default().
func New(poolSize int, diskManager disk.Manager, log LogManager, logger *slog.Logger) *Manager {
	if poolSize <= 0 {
		panic("bufferpool: pool size must be positive")
	}
	if log == nil {
		log = NoopLogManager{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	frames := make([]*page.Frame, poolSize)
	freeFrames := make([]page.FrameID, poolSize)
	for i := range frames {
		frames[i] = page.NewFrame()
		freeFrames[i] = page.FrameID(i)
	}

	return &Manager{
		frames:     frames,
		pageTable:  make(map[page.ID]page.FrameID, poolSize),
		freeFrames: freeFrames,
		replacer:   replacer.NewLRUReplacer(poolSize),
		disk:       diskManager,
		log:        log,
		logger:     logger,
	}
}

// Fetch returns a pinned frame holding pageID, loading it from disk if it
// is not already resident. Returns ErrNoEvictableFrame if every frame in
// the pool is pinned.
func (m *Manager) Fetch(pageID page.ID) (*page.Frame, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if frameID, ok := m.pageTable[pageID]; ok {
		frame := m.frames[frameID]
		frame.IncPin()
		m.replacer.Pin(frameID)
		m.logger.Debug("bufferpool fetch hit", "page_id", pageID, "frame_id", frameID)
		return frame, nil
	}

	frameID, frame, ok := m.findVictim()
	if !ok {
		m.logger.Warn("bufferpool fetch miss: no evictable frame", "page_id", pageID)
		return nil, ErrNoEvictableFrame
	}

	if err := m.writeBackIfDirty(frameID, frame); err != nil {
		// frame is still resident with pin_count 0; restore it as an
		// eviction candidate instead of leaving it stranded.
		m.replacer.Unpin(frameID)
		return nil, err
	}

	delete(m.pageTable, frame.PageID())
	m.pageTable[pageID] = frameID

	buf := make([]byte, page.Size)
	if err := m.disk.ReadPage(pageID, buf); err != nil {
		delete(m.pageTable, pageID)
		frame.Reset()
		m.freeFrames = append(m.freeFrames, frameID)
		return nil, fmt.Errorf("bufferpool: fetch page %d: %w", pageID, err)
	}

	frame.Install(pageID, buf)
	m.replacer.Pin(frameID)

	m.logger.Debug("bufferpool fetch miss, loaded from disk", "page_id", pageID, "frame_id", frameID)
	return frame, nil
}

// Unpin releases one reference held by the caller, setting the frame's
// dirty bit if isDirty is true. Dirty is monotonic: it is never cleared
// by Unpin. Returns false if pageID is not resident, or if the caller
// unpinned more times than they pinned (a client bug); in the latter case
// the frame is defensively ensured to be a Replacer candidate anyway.
func (m *Manager) Unpin(pageID page.ID, isDirty bool) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return false
	}
	frame := m.frames[frameID]

	if isDirty {
		frame.MarkDirty()
	}

	if frame.PinCount() == 0 {
		m.replacer.Unpin(frameID)
		return false
	}

	frame.DecPin()
	if frame.PinCount() == 0 {
		m.replacer.Unpin(frameID)
		m.logger.Debug("bufferpool unpin, now a candidate", "page_id", pageID, "frame_id", frameID)
	}
	return true
}

// NewPage allocates a fresh page id on disk and returns a pinned, zeroed
// frame for it. Returns ErrNoEvictableFrame if every frame is pinned.
func (m *Manager) NewPage() (page.ID, *page.Frame, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	pageID, err := m.disk.AllocatePage()
	if err != nil {
		return page.InvalidID, nil, fmt.Errorf("bufferpool: new page: %w", err)
	}

	frameID, frame, ok := m.findVictim()
	if !ok {
		m.disk.DeallocatePage(pageID)
		m.logger.Warn("bufferpool new page: no evictable frame")
		return page.InvalidID, nil, ErrNoEvictableFrame
	}

	if err := m.writeBackIfDirty(frameID, frame); err != nil {
		m.disk.DeallocatePage(pageID)
		// frame is still resident with pin_count 0; restore it as an
		// eviction candidate instead of leaving it stranded.
		m.replacer.Unpin(frameID)
		return page.InvalidID, nil, err
	}

	delete(m.pageTable, frame.PageID())
	m.pageTable[pageID] = frameID

	frame.Recycle(pageID)
	m.replacer.Pin(frameID)

	m.logger.Debug("bufferpool new page", "page_id", pageID, "frame_id", frameID)
	return pageID, frame, nil
}

// DeletePage permanently removes pageID: writes it back if dirty,
// deallocates it on disk, and returns its frame to the free list. Returns
// ErrPagePinned if the page is resident and still in use. If the page is
// not resident, returns nil immediately; deallocating a page id that was
// never fetched is the caller's policy, not this pool's.
func (m *Manager) DeletePage(pageID page.ID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return nil
	}

	frame := m.frames[frameID]
	if frame.PinCount() > 0 {
		return ErrPagePinned
	}

	if frame.IsDirty() {
		if err := m.disk.WritePage(pageID, frame.Data()); err != nil {
			return fmt.Errorf("bufferpool: delete page %d: write-back: %w", pageID, err)
		}
	}

	m.disk.DeallocatePage(pageID)

	delete(m.pageTable, pageID)
	frame.Reset()
	m.replacer.Pin(frameID) // defensive: frame must not be an eviction candidate once free
	m.freeFrames = append(m.freeFrames, frameID)

	m.logger.Debug("bufferpool delete page", "page_id", pageID, "frame_id", frameID)
	return nil
}

// Flush writes pageID's buffer to disk if it is resident, and clears its
// dirty bit. Does not affect pin count. Returns ErrPageNotResident if the
// page is not in the pool.
func (m *Manager) Flush(pageID page.ID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if pageID == page.InvalidID {
		return ErrPageNotResident
	}

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return ErrPageNotResident
	}

	frame := m.frames[frameID]
	if err := m.disk.WritePage(pageID, frame.Data()); err != nil {
		return fmt.Errorf("bufferpool: flush page %d: %w", pageID, err)
	}
	frame.ClearDirty()

	m.logger.Debug("bufferpool flush", "page_id", pageID, "frame_id", frameID)
	return nil
}

// FlushAll writes every dirty resident page to disk and clears its dirty
// bit. Pin counts are unaffected; callers may still hold pins. A second,
// immediately following FlushAll call issues no writes.
func (m *Manager) FlushAll() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for pageID, frameID := range m.pageTable {
		frame := m.frames[frameID]
		if !frame.IsDirty() {
			continue
		}
		if err := m.disk.WritePage(pageID, frame.Data()); err != nil {
			return fmt.Errorf("bufferpool: flush all: page %d: %w", pageID, err)
		}
		frame.ClearDirty()
	}

	m.logger.Debug("bufferpool flush all")
	return nil
}

// Close flushes every dirty page and closes the underlying disk manager.
func (m *Manager) Close() error {
	if err := m.FlushAll(); err != nil {
		return err
	}
	return m.disk.Close()
}

// findVictim picks a frame to repurpose, preferring the free list and
// falling back to the Replacer. Reports false if neither has a candidate,
// i.e. every frame is pinned.
func (m *Manager) findVictim() (page.FrameID, *page.Frame, bool) {
	if n := len(m.freeFrames); n > 0 {
		frameID := m.freeFrames[n-1]
		m.freeFrames = m.freeFrames[:n-1]
		return frameID, m.frames[frameID], true
	}

	frameID, ok := m.replacer.Victim()
	if !ok {
		return 0, nil, false
	}
	return frameID, m.frames[frameID], true
}

// writeBackIfDirty flushes a victim frame's contents before it is
// repurposed for a different page id, and logs the eviction of a resident
// page. Must run before the frame is rebound (Install or Recycle), since
// it writes back to the frame's current page id.
func (m *Manager) writeBackIfDirty(frameID page.FrameID, frame *page.Frame) error {
	if frame.PageID() == page.InvalidID {
		return nil
	}
	if frame.IsDirty() {
		if err := m.disk.WritePage(frame.PageID(), frame.Data()); err != nil {
			return fmt.Errorf("bufferpool: evict frame %d: write-back page %d: %w", frameID, frame.PageID(), err)
		}
		m.logger.Debug("bufferpool writeback", "page_id", frame.PageID(), "frame_id", frameID)
	}
	m.logger.Debug("bufferpool evict", "page_id", frame.PageID(), "frame_id", frameID)
	return nil
}
