// Package disk implements the block-addressable disk the buffer pool
// manager reads pages from and writes them back to. Three interchangeable
// backends are provided: a plain os.File backend, an O_DIRECT backend
// that bypasses the kernel page cache, and a memory-mapped backend.
package disk

import "github.com/Adarsh-Kmt/bpmcore/internal/storage/page"

// Manager allocates page ids, reads and writes raw page-sized blocks, and
// deallocates page ids. Page size is fixed at page.Size and shared by
// both sides of the interface.
type Manager interface {
	// AllocatePage mints a fresh page id, reusing a deallocated id when
	// one is available.
	AllocatePage() (page.ID, error)

	// DeallocatePage marks pageID as free for future reuse.
	DeallocatePage(pageID page.ID)

	// ReadPage reads page.Size bytes for pageID into buf. buf must be at
	// least page.Size bytes.
	ReadPage(pageID page.ID, buf []byte) error

	// WritePage writes buf (page.Size bytes) to pageID's block.
	WritePage(pageID page.ID, buf []byte) error

	// Close flushes any manager-level metadata and releases the
	// underlying file handle.
	Close() error
}
