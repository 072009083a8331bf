package disk

import (
	"fmt"
	"os"
	"sync"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
)

// BufferedManager is the default DiskManager backend: plain os.File
// ReadAt/WriteAt through the kernel page cache.
type BufferedManager struct {
	mutex    sync.Mutex
	file     *os.File
	freelist *freelist
}

var _ Manager = (*BufferedManager)(nil)

// NewBufferedManager opens (creating if necessary) the backing file at
// path and loads its free-list metadata block.
func NewBufferedManager(path string) (*BufferedManager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}

	d := &BufferedManager{file: file}

	buf := make([]byte, page.Size)
	if _, err := file.ReadAt(buf, int64(metadataPageID)*page.Size); err != nil {
		buf = make([]byte, page.Size) // new file: zero metadata block
	}
	d.freelist = decodeFreelist(buf)

	return d, nil
}

func (d *BufferedManager) AllocatePage() (page.ID, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.freelist.allocate(), nil
}

func (d *BufferedManager) DeallocatePage(pageID page.ID) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.freelist.deallocate(pageID)
}

func (d *BufferedManager) ReadPage(pageID page.ID, buf []byte) error {
	n, err := d.file.ReadAt(buf[:page.Size], int64(pageID)*page.Size)
	if err != nil {
		return fmt.Errorf("disk: read page %d: %w", pageID, err)
	}
	if n != page.Size {
		return fmt.Errorf("disk: read page %d: incomplete read of %d bytes", pageID, n)
	}
	return nil
}

func (d *BufferedManager) WritePage(pageID page.ID, buf []byte) error {
	n, err := d.file.WriteAt(buf[:page.Size], int64(pageID)*page.Size)
	if err != nil {
		return fmt.Errorf("disk: write page %d: %w", pageID, err)
	}
	if n != page.Size {
		return fmt.Errorf("disk: write page %d: incomplete write of %d bytes", pageID, n)
	}
	return nil
}

func (d *BufferedManager) Close() error {
	d.mutex.Lock()
	metadata := d.freelist.encode()
	d.mutex.Unlock()

	if _, err := d.file.WriteAt(metadata, int64(metadataPageID)*page.Size); err != nil {
		return fmt.Errorf("disk: write metadata block: %w", err)
	}
	return d.file.Close()
}
