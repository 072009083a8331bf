package disk

import (
	"fmt"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"

	"github.com/Adarsh-Kmt/bpmcore/internal/storage/page"
)

// mmapGrowth is the number of pages the backing file is extended by each
// time a read or write reaches past its current end, amortizing the cost
// of the truncate+remap that growing a memory-mapped file requires.
const mmapGrowth = 256

// MMapManager memory-maps the backing file and serves reads and writes as
// copies against the mapped region, rather than pread/pwrite syscalls.
type MMapManager struct {
	mutex    sync.Mutex
	file     *os.File
	mapping  mmap.MMap
	freelist *freelist
}

var _ Manager = (*MMapManager)(nil)

// NewMMapManager opens (creating if necessary) path, maps it into memory,
// and loads its free-list metadata block.
func NewMMapManager(path string) (*MMapManager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("disk: mmap open %s: %w", path, err)
	}

	d := &MMapManager{file: file}
	if err := d.ensureMapped(mmapGrowth * page.Size); err != nil {
		return nil, err
	}

	d.freelist = decodeFreelist(d.mapping[metadataPageID*page.Size : (metadataPageID+1)*page.Size])
	return d, nil
}

// ensureMapped grows the file to at least size bytes (in mmapGrowth-page
// steps) and remaps it, if the current mapping is too small.
func (d *MMapManager) ensureMapped(size int64) error {
	if d.mapping != nil && int64(len(d.mapping)) >= size {
		return nil
	}

	stat, err := d.file.Stat()
	if err != nil {
		return fmt.Errorf("disk: mmap stat: %w", err)
	}

	newSize := stat.Size()
	for newSize < size {
		newSize += mmapGrowth * page.Size
	}

	if d.mapping != nil {
		if err := d.mapping.Unmap(); err != nil {
			return fmt.Errorf("disk: mmap unmap for resize: %w", err)
		}
	}

	if newSize > stat.Size() {
		if err := d.file.Truncate(newSize); err != nil {
			return fmt.Errorf("disk: mmap truncate: %w", err)
		}
	}

	m, err := mmap.Map(d.file, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("disk: mmap map: %w", err)
	}
	d.mapping = m
	return nil
}

func (d *MMapManager) AllocatePage() (page.ID, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.freelist.allocate(), nil
}

func (d *MMapManager) DeallocatePage(pageID page.ID) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.freelist.deallocate(pageID)
}

func (d *MMapManager) ReadPage(pageID page.ID, buf []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	offset := int64(pageID) * page.Size
	if err := d.ensureMapped(offset + page.Size); err != nil {
		return err
	}
	copy(buf[:page.Size], d.mapping[offset:offset+page.Size])
	return nil
}

func (d *MMapManager) WritePage(pageID page.ID, buf []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	offset := int64(pageID) * page.Size
	if err := d.ensureMapped(offset + page.Size); err != nil {
		return err
	}
	copy(d.mapping[offset:offset+page.Size], buf[:page.Size])
	return nil
}

func (d *MMapManager) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	metadata := d.freelist.encode()
	copy(d.mapping[metadataPageID*page.Size:(metadataPageID+1)*page.Size], metadata)

	if err := d.mapping.Flush(); err != nil {
		return fmt.Errorf("disk: mmap flush: %w", err)
	}
	if err := d.mapping.Unmap(); err != nil {
		return fmt.Errorf("disk: mmap unmap: %w", err)
	}
	return d.file.Close()
}
