// Package app owns the scan/clean lifecycle: a state machine that
// aggregates streamed walker, sizer and cleaner updates into a single
// item list with progress counters. It has no terminal dependencies
// and is driven entirely through method calls from the control loop.
package app

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/devsweep/devsweep/internal/clean"
	"github.com/devsweep/devsweep/internal/scan"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateScanning State = iota
	StateSelecting
	StateCleaning
	StateComplete
	StateHelp
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateSelecting:
		return "selecting"
	case StateCleaning:
		return "cleaning"
	case StateComplete:
		return "complete"
	case StateHelp:
		return "help"
	}
	return "unknown"
}

// Session aggregates one scan/clean run. All mutation happens on the
// control loop's goroutine; background workers deliver their results
// through the update methods, never by touching fields directly.
type Session struct {
	Root     string
	Mode     scan.Mode
	MaxDepth int
	MinSize  int64 // drop resolved items smaller than this (0 = keep all)

	State State

	Items  []scan.Item
	Cursor int // -1 when the list is empty

	ScannedCount      int
	TotalSizeJobs     int
	CompletedSizeJobs int
	TotalSize         int64
	SelectedSize      int64
	CleanedSize       int64

	Progress       float64 // clean completion ratio
	ProcessingPath string  // path currently being deleted
	HelpScroll     int

	ScanStart    time.Time
	ScanDuration time.Duration

	previous    State // state to restore when the help overlay closes
	scanDone    bool
	sizesQueued bool
	cleaning    bool
}

// NewSession creates a session in the scanning state.
func NewSession(root string, mode scan.Mode, maxDepth int, minSize int64) *Session {
	return &Session{
		Root:      root,
		Mode:      mode,
		MaxDepth:  maxDepth,
		MinSize:   minSize,
		State:     StateScanning,
		Cursor:    -1,
		ScanStart: time.Now(),
	}
}

// ItemsDiscovered installs the walker's batch of matched items.
func (s *Session) ItemsDiscovered(items []scan.Item) {
	s.Items = items
	s.ScannedCount = len(items)
	log.WithField("items", len(items)).Debug("discovery batch merged")
}

// SizeJobsQueued records how many size emissions to expect. The sizer
// has no explicit done marker; completion is detected by counting.
func (s *Session) SizeJobsQueued(total int) {
	s.TotalSizeJobs = total
	s.CompletedSizeJobs = 0
	s.sizesQueued = true
	s.maybeFinishScan()
}

// SizeResolved applies one streamed (path, size) result. Updates
// arrive in arbitrary order and are matched to items by path.
func (s *Session) SizeResolved(path string, size int64) {
	for i := range s.Items {
		if s.Items[i].Path == path {
			s.Items[i].Size = size
			break
		}
	}
	s.CompletedSizeJobs++
	s.maybeFinishScan()
}

// ScanFinished marks discovery complete. The transition to selecting
// still waits for any outstanding size resolutions.
func (s *Session) ScanFinished(elapsed time.Duration) {
	s.scanDone = true
	s.ScanDuration = elapsed
	s.maybeFinishScan()
}

// maybeFinishScan enters the selecting state once both completion
// conditions hold: discovery is done and every queued size job has
// emitted. Either signal may arrive last.
func (s *Session) maybeFinishScan() {
	if !s.scanDone || !s.sizesQueued || s.CompletedSizeJobs < s.TotalSizeJobs {
		return
	}

	if s.MinSize > 0 {
		kept := s.Items[:0]
		for _, item := range s.Items {
			if item.Size >= s.MinSize {
				kept = append(kept, item)
			}
		}
		s.Items = kept
	}

	sort.SliceStable(s.Items, func(i, j int) bool {
		return s.Items[i].Size > s.Items[j].Size
	})

	s.TotalSize = 0
	for _, item := range s.Items {
		s.TotalSize += item.Size
	}

	s.Cursor = -1
	if len(s.Items) > 0 {
		s.Cursor = 0
	}

	if s.State == StateHelp {
		s.previous = StateSelecting
	} else {
		s.State = StateSelecting
	}
	log.WithFields(log.Fields{
		"items":      len(s.Items),
		"total_size": s.TotalSize,
		"duration":   s.ScanDuration,
	}).Debug("scan complete")
}

// NavigateNext advances the selection cursor, wrapping at the end.
func (s *Session) NavigateNext() {
	if s.State != StateSelecting || len(s.Items) == 0 {
		return
	}
	s.Cursor = (s.Cursor + 1) % len(s.Items)
}

// NavigatePrevious retreats the selection cursor, wrapping at the start.
func (s *Session) NavigatePrevious() {
	if s.State != StateSelecting || len(s.Items) == 0 {
		return
	}
	s.Cursor--
	if s.Cursor < 0 {
		s.Cursor = len(s.Items) - 1
	}
}

// ToggleSelection flips the active item's selected flag and recomputes
// the running selected-size total.
func (s *Session) ToggleSelection() {
	if s.State != StateSelecting || s.cleaning {
		return
	}
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return
	}
	s.Items[s.Cursor].Selected = !s.Items[s.Cursor].Selected
	s.SelectedSize = s.selectedSize()
}

// StartClean transitions to cleaning and hands back the item list for
// the cleaner. Refused unless at least one item is selected and no
// clean is already in flight.
func (s *Session) StartClean() ([]scan.Item, bool) {
	if s.State != StateSelecting || s.cleaning || s.SelectedCount() == 0 {
		return nil, false
	}

	s.State = StateCleaning
	s.cleaning = true
	s.Progress = 0
	s.ProcessingPath = ""

	items := make([]scan.Item, len(s.Items))
	copy(items, s.Items)
	log.WithField("selected", s.SelectedCount()).Debug("clean started")
	return items, true
}

// CleanProgress applies one streamed progress step.
func (s *Session) CleanProgress(p clean.Progress) {
	if p.Total > 0 {
		s.Progress = float64(p.Done) / float64(p.Total)
	}
	s.ProcessingPath = p.Path
}

// CleanFinished reconciles the cleaner's result set: freed bytes are
// summed into CleanedSize and successfully deleted paths leave the
// working list. Failed items stay, still selected.
func (s *Session) CleanFinished(results []clean.Result) {
	cleaned := make(map[string]struct{}, len(results))
	s.CleanedSize = 0
	for _, r := range results {
		s.CleanedSize += r.Size
		if r.Succeeded {
			cleaned[r.Path] = struct{}{}
		}
	}

	kept := s.Items[:0]
	for _, item := range s.Items {
		if _, ok := cleaned[item.Path]; !ok {
			kept = append(kept, item)
		}
	}
	s.Items = kept
	s.SelectedSize = s.selectedSize()
	s.cleaning = false
	s.ProcessingPath = ""

	if s.State == StateHelp {
		s.previous = StateComplete
	} else {
		s.State = StateComplete
	}
	log.WithFields(log.Fields{
		"freed":     s.CleanedSize,
		"remaining": len(s.Items),
	}).Debug("clean complete")
}

// DismissComplete returns from the completion screen to selecting,
// re-selecting the first remaining item if any.
func (s *Session) DismissComplete() {
	if s.State != StateComplete {
		return
	}
	s.State = StateSelecting
	s.Cursor = -1
	if len(s.Items) > 0 {
		s.Cursor = 0
	}
}

// Rescan resets every counter and the item list, then re-enters the
// scanning state. Only accepted while selecting with no clean running.
func (s *Session) Rescan() bool {
	if s.State != StateSelecting || s.cleaning {
		return false
	}

	s.Items = nil
	s.Cursor = -1
	s.ScannedCount = 0
	s.TotalSizeJobs = 0
	s.CompletedSizeJobs = 0
	s.TotalSize = 0
	s.SelectedSize = 0
	s.CleanedSize = 0
	s.Progress = 0
	s.ProcessingPath = ""
	s.ScanDuration = 0
	s.scanDone = false
	s.sizesQueued = false

	s.State = StateScanning
	s.ScanStart = time.Now()
	log.Debug("rescan requested")
	return true
}

// ToggleHelp opens the help overlay, or closes it and restores the
// state that was active when it opened.
func (s *Session) ToggleHelp() {
	if s.State == StateHelp {
		s.State = s.previous
		return
	}
	s.previous = s.State
	s.State = StateHelp
	s.HelpScroll = 0
}

// ScrollHelp moves the help viewport by delta lines, clamped at the top.
func (s *Session) ScrollHelp(delta int) {
	if s.State != StateHelp {
		return
	}
	s.HelpScroll += delta
	if s.HelpScroll < 0 {
		s.HelpScroll = 0
	}
}

// IsCleaning reports whether a clean is in flight.
func (s *Session) IsCleaning() bool {
	return s.cleaning
}

// SelectedCount returns the number of items marked for deletion.
func (s *Session) SelectedCount() int {
	count := 0
	for _, item := range s.Items {
		if item.Selected {
			count++
		}
	}
	return count
}

func (s *Session) selectedSize() int64 {
	var total int64
	for _, item := range s.Items {
		if item.Selected {
			total += item.Size
		}
	}
	return total
}

// CurrentItem returns the item under the cursor, or nil.
func (s *Session) CurrentItem() *scan.Item {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return nil
	}
	return &s.Items[s.Cursor]
}

// Elapsed returns the live scan timer while scanning and the final
// duration afterwards.
func (s *Session) Elapsed() time.Duration {
	if s.State == StateScanning {
		return time.Since(s.ScanStart)
	}
	return s.ScanDuration
}
