package disk

import (
	"encoding/binary"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
)

// metadataPageID is the on-disk block every backend reserves for its own
// free-list bookkeeping. It coincides with page.InvalidID: page id 0 is
// never handed out by AllocatePage, which starts numbering resident pages
// at 1, so the sentinel and the metadata block never collide.
const metadataPageID = page.InvalidID

// freelist is the allocator state persisted in the metadata block:
// the high-water mark of ids ever allocated, and ids freed by
// DeallocatePage that are available for reuse before minting a new one.
type freelist struct {
	maxAllocated page.ID
	deallocated  []page.ID
}

func (f *freelist) allocate() page.ID {
	if len(f.deallocated) > 0 {
		id := f.deallocated[0]
		f.deallocated = f.deallocated[1:]
		return id
	}
	f.maxAllocated++
	return f.maxAllocated
}

func (f *freelist) deallocate(id page.ID) {
	f.deallocated = append(f.deallocated, id)
}

// encode serializes the freelist into a page.Size buffer: the high-water
// mark, a count, then that many page ids, little-endian throughout.
func (f *freelist) encode() []byte {
	buf := make([]byte, page.Size)

	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], uint64(f.maxAllocated))
	offset += 8

	binary.LittleEndian.PutUint64(buf[offset:], uint64(len(f.deallocated)))
	offset += 8

	for _, id := range f.deallocated {
		binary.LittleEndian.PutUint64(buf[offset:], uint64(id))
		offset += 8
	}

	return buf
}

// decodeFreelist parses a metadata block written by encode. A zeroed
// block (a freshly created file) decodes to an empty freelist.
func decodeFreelist(buf []byte) *freelist {
	offset := 0
	maxAllocated := page.ID(binary.LittleEndian.Uint64(buf[offset:]))
	offset += 8

	count := binary.LittleEndian.Uint64(buf[offset:])
	offset += 8

	deallocated := make([]page.ID, 0, count)
	for i := uint64(0); i < count; i++ {
		deallocated = append(deallocated, page.ID(binary.LittleEndian.Uint64(buf[offset:])))
		offset += 8
	}

	return &freelist{maxAllocated: maxAllocated, deallocated: deallocated}
}
