package bufferpool

import "github.com/Adarsh-Kmt/bpmcore/internal/storage/page"

// ReadGuard provides scoped read access to a fetched page: it wraps a
// Fetch + matching Unpin into a single object so callers cannot forget to
// release their pin. A guard becomes inactive once Release has been
// called and must not be reused.
type ReadGuard struct {
	active bool
	frame  *page.Frame
	pageID page.ID
	pool   *Manager
}

// NewReadGuard fetches pageID and returns an active guard over it.
func (m *Manager) NewReadGuard(pageID page.ID) (*ReadGuard, error) {
	frame, err := m.Fetch(pageID)
	if err != nil {
		return nil, err
	}

	return &ReadGuard{
		active: true,
		frame:  frame,
		pageID: pageID,
		pool:   m,
	}, nil
}

// Data returns the page's raw buffer. Returns nil if the guard is no
// longer active.
func (g *ReadGuard) Data() []byte {
	if !g.active {
		return nil
	}
	return g.frame.Data()
}

// PageID returns the page id this guard was fetched for.
func (g *ReadGuard) PageID() page.ID { return g.pageID }

// Release unpins the page. A guard cannot be reused after Release
// returns true; calling Release again is a no-op that returns false.
func (g *ReadGuard) Release() bool {
	if !g.active {
		return false
	}
	g.pool.Unpin(g.pageID, false)

	g.active = false
	g.frame = nil
	g.pool = nil
	return true
}

// WriteGuard provides scoped write access to a fetched page, marking it
// dirty on release if MarkDirty was called.
type WriteGuard struct {
	active bool
	dirty  bool
	frame  *page.Frame
	pageID page.ID
	pool   *Manager
}

// NewWriteGuard fetches pageID and returns an active write guard over it.
func (m *Manager) NewWriteGuard(pageID page.ID) (*WriteGuard, error) {
	frame, err := m.Fetch(pageID)
	if err != nil {
		return nil, err
	}

	return &WriteGuard{
		active: true,
		frame:  frame,
		pageID: pageID,
		pool:   m,
	}, nil
}

// Data returns the page's raw buffer for in-place mutation. Returns nil
// if the guard is no longer active.
func (g *WriteGuard) Data() []byte {
	if !g.active {
		return nil
	}
	return g.frame.Data()
}

// PageID returns the page id this guard was fetched for.
func (g *WriteGuard) PageID() page.ID { return g.pageID }

// MarkDirty records that the guard's writes must be persisted on
// release. Safe to call multiple times.
func (g *WriteGuard) MarkDirty() {
	if g.active {
		g.dirty = true
	}
}

// Release unpins the page, propagating the dirty bit set via MarkDirty.
// A guard cannot be reused after Release returns true.
func (g *WriteGuard) Release() bool {
	if !g.active {
		return false
	}
	g.pool.Unpin(g.pageID, g.dirty)

	g.active = false
	g.frame = nil
	g.pool = nil
	return true
}

// Delete releases the write guard and permanently deletes the
// underlying page. Returns ErrPagePinned if other callers still hold the
// page pinned.
func (g *WriteGuard) Delete() error {
	if !g.active {
		return nil
	}
	g.pool.Unpin(g.pageID, g.dirty)

	err := g.pool.DeletePage(g.pageID)

	g.active = false
	g.frame = nil
	g.pool = nil
	return err
}
