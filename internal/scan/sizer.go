package scan

import (
	"io/fs"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// SizeUpdate is one resolved directory size, emitted as soon as the
// directory's recursive walk finishes.
type SizeUpdate struct {
	Path string
	Size int64
}

// ResolveSizes computes total sizes for every item that is a directory
// with an unresolved (zero) size. The directory subset is partitioned
// into contiguous chunks across the worker pool; each worker streams a
// SizeUpdate per directory onto updates the moment it is computed.
//
// Exactly one update is emitted per queued directory (a directory
// whose walk fails still emits (path, 0)), so the caller can detect
// completion by counting emissions against the returned job total.
// Emission order across workers is unspecified; consumers must match
// updates to items by path, not position.
func ResolveSizes(items []Item, updates chan<- SizeUpdate) int {
	var dirs []string
	for _, item := range items {
		if item.IsDir && item.Size == 0 {
			dirs = append(dirs, item.Path)
		}
	}
	if len(dirs) == 0 {
		return 0
	}

	chunks := splitChunks(dirs, workerCount())
	log.WithFields(log.Fields{"dirs": len(dirs), "workers": len(chunks)}).
		Debug("resolving directory sizes")

	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()
			for _, path := range chunk {
				updates <- SizeUpdate{Path: path, Size: DirSize(path)}
			}
		}(chunk)
	}

	go func() {
		wg.Wait()
		log.WithField("dirs", len(dirs)).Debug("size resolution finished")
	}()

	return len(dirs)
}

// DirSize returns the sum of the sizes of all regular files beneath
// path, with no depth limit. Unreadable entries contribute zero.
func DirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}
