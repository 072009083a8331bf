// Command bpmctl wires a buffer pool manager to disk and runs a small
// fixed demo exercising NewPage, the WriteGuard/ReadGuard pin wrappers,
// and Flush end to end. It exists to show the core working, not as a
// query surface.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Adarsh-Kmt/bpmcore/internal/config"
	"github.com/Adarsh-Kmt/bpmcore/internal/storage/bufferpool"
	"github.com/Adarsh-Kmt/bpmcore/internal/storage/disk"
)

func openDisk(cfg config.Config) (disk.Manager, error) {
	switch cfg.Backend {
	case config.BackendDirectIO:
		return disk.NewDirectIOManager(cfg.DBPath)
	case config.BackendMMap:
		return disk.NewMMapManager(cfg.DBPath)
	default:
		return disk.NewBufferedManager(cfg.DBPath)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("bpmctl: %w", err)
	}

	diskManager, err := openDisk(cfg)
	if err != nil {
		return fmt.Errorf("bpmctl: open disk: %w", err)
	}

	pool := bufferpool.New(cfg.PoolSize, diskManager, bufferpool.NoopLogManager{}, slog.Default())
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Error("bpmctl: close", "error", err)
		}
	}()

	pageID, _, err := pool.NewPage()
	if err != nil {
		return fmt.Errorf("bpmctl: new page: %w", err)
	}
	pool.Unpin(pageID, false)

	wguard, err := pool.NewWriteGuard(pageID)
	if err != nil {
		return fmt.Errorf("bpmctl: write guard: %w", err)
	}
	copy(wguard.Data(), "hello, buffer pool")
	wguard.MarkDirty()
	wguard.Release()

	rguard, err := pool.NewReadGuard(pageID)
	if err != nil {
		return fmt.Errorf("bpmctl: fetch: %w", err)
	}
	slog.Info("bpmctl demo read back page", "page_id", pageID, "contents", string(rguard.Data()[:18]))
	rguard.Release()

	return pool.Flush(pageID)
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
