package tui

import (
	"time"

	"github.com/devsweep/devsweep/internal/clean"
	"github.com/devsweep/devsweep/internal/scan"
)

// Background workers communicate with the control loop exclusively
// through these messages; the item list itself is only ever mutated on
// the Update goroutine.

// itemsFoundMsg delivers the walker's full discovery batch.
type itemsFoundMsg struct {
	items    []scan.Item
	warnings int
}

// sizeJobsMsg announces how many size updates will follow.
type sizeJobsMsg struct {
	total int
}

// sizeUpdateMsg is one streamed directory size.
type sizeUpdateMsg scan.SizeUpdate

// scanFinishedMsg marks discovery completion.
type scanFinishedMsg struct {
	elapsed time.Duration
}

// cleanProgressMsg is one streamed deletion progress step.
type cleanProgressMsg clean.Progress

// cleanFinishedMsg delivers the cleaner's full result set.
type cleanFinishedMsg struct {
	results []clean.Result
}

// hooksFinishedMsg delivers post-clean hook outcomes.
type hooksFinishedMsg struct {
	results []clean.HookResult
}

// tickMsg drives the elapsed timer while scanning.
type tickMsg time.Time
