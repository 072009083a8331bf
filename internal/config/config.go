// Package config loads the small set of knobs the bpmctl demo needs to
// wire a buffer pool manager together: pool size, backing file, and which
// DiskManager backend to use.
package config

import (
	"flag"
	"fmt"
)

// DiskBackend selects which disk.Manager implementation to construct.
type DiskBackend string

const (
	// BackendBuffered is the default: plain os.File ReadAt/WriteAt.
	BackendBuffered DiskBackend = "buffered"

	// BackendDirectIO opens the file with O_DIRECT, bypassing the kernel
	// page cache.
	BackendDirectIO DiskBackend = "directio"

	// BackendMMap memory-maps the backing file.
	BackendMMap DiskBackend = "mmap"
)

// Config is the buffer pool manager's construction parameters.
type Config struct {
	PoolSize int
	DBPath   string
	Backend  DiskBackend
}

// Validate rejects configurations the buffer pool manager cannot be
// built from.
func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("config: pool size must be positive, got %d", c.PoolSize)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: db path must not be empty")
	}
	switch c.Backend {
	case BackendBuffered, BackendDirectIO, BackendMMap:
	default:
		return fmt.Errorf("config: unknown disk backend %q", c.Backend)
	}
	return nil
}

// Load parses args (typically os.Args[1:]) into a Config with defaults
// matching the teacher's own zero-flag setup: a buffered backend over
// ./dragon.db with a 5-frame pool.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("bpmctl", flag.ContinueOnError)

	poolSize := fs.Int("pool-size", 5, "number of frames in the buffer pool")
	dbPath := fs.String("db", "dragon.db", "path to the backing database file")
	backend := fs.String("backend", string(BackendBuffered), "disk backend: buffered, directio, or mmap")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		PoolSize: *poolSize,
		DBPath:   *dbPath,
		Backend:  DiskBackend(*backend),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
