// Package clean deletes selected artifacts concurrently, streaming
// per-item progress and accounting success and failure per path.
package clean

import (
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/devsweep/devsweep/internal/scan"
)

// Result records the outcome of one deletion. Size is the bytes freed:
// the item's size on success, zero on failure so aggregate totals never
// overcount.
type Result struct {
	Path      string
	Succeeded bool
	Size      int64
}

// Progress is one step of a running clean. Path carries the item being
// processed on start announcements and is empty on completion
// announcements.
type Progress struct {
	Done  int
	Total int
	Path  string
}

// launchStagger spaces out deletion goroutine starts. This bounds the
// burst of concurrent filesystem operations and keeps the progress bar
// moving smoothly; it is a pacing choice, not a correctness one.
const launchStagger = 30 * time.Millisecond

// Clean deletes every selected item. Each item gets its own goroutine:
// it announces start on progress, removes the path (recursively for
// directories), records a Result over a fan-in channel, and announces
// completion. A failed deletion is captured in its Result and never
// interrupts sibling deletions.
//
// The returned channel delivers the complete, unordered result set
// once every deletion has finished. Callers reconcile results against
// their item list by path equality.
func Clean(items []scan.Item, progress chan<- Progress) <-chan []Result {
	var selected []scan.Item
	for _, item := range items {
		if item.Selected {
			selected = append(selected, item)
		}
	}

	done := make(chan []Result, 1)

	go func() {
		total := len(selected)
		if total == 0 {
			done <- nil
			return
		}

		results := make(chan Result, total)
		var wg sync.WaitGroup
		for i, item := range selected {
			wg.Add(1)
			go func(index int, item scan.Item) {
				defer wg.Done()
				progress <- Progress{Done: index, Total: total, Path: item.Path}
				results <- removeItem(item)
				progress <- Progress{Done: index + 1, Total: total}
			}(i, item)

			time.Sleep(launchStagger)
		}
		wg.Wait()
		close(results)

		collected := make([]Result, 0, total)
		for r := range results {
			collected = append(collected, r)
		}
		done <- collected
	}()

	return done
}

func removeItem(item scan.Item) Result {
	var err error
	if item.IsDir {
		err = os.RemoveAll(item.Path)
	} else {
		err = os.Remove(item.Path)
	}

	if err != nil {
		log.WithError(err).WithField("path", item.Path).Debug("delete failed")
		return Result{Path: item.Path}
	}
	return Result{Path: item.Path, Succeeded: true, Size: item.Size}
}
