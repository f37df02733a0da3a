package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsweep/devsweep/internal/clean"
	"github.com/devsweep/devsweep/internal/scan"
)

func newTestSession() *Session {
	return NewSession("/work", scan.ModeCatalog, 6, 0)
}

func discoveredItems() []scan.Item {
	return []scan.Item{
		{Path: "/work/a/node_modules", Category: "Node.js dependencies", IsDir: true},
		{Path: "/work/b/target", Category: "Rust build artifacts", IsDir: true},
		{Path: "/work/c/app.log", Category: "Log files", Size: 50},
	}
}

// finishScan drives a session through a full discovery + sizing cycle.
func finishScan(s *Session) {
	s.ItemsDiscovered(discoveredItems())
	s.SizeJobsQueued(2)
	s.ScanFinished(time.Second)
	s.SizeResolved("/work/a/node_modules", 1000)
	s.SizeResolved("/work/b/target", 200)
}

func TestSessionStartsScanning(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, StateScanning, s.State)
	assert.Equal(t, -1, s.Cursor)
}

func TestSelectingRequiresBothCompletionSignals(t *testing.T) {
	s := newTestSession()
	s.ItemsDiscovered(discoveredItems())
	s.SizeJobsQueued(2)

	// All size updates land before discovery completion: still scanning.
	s.SizeResolved("/work/a/node_modules", 1000)
	s.SizeResolved("/work/b/target", 200)
	assert.Equal(t, StateScanning, s.State)

	s.ScanFinished(time.Second)
	assert.Equal(t, StateSelecting, s.State)
}

func TestSelectingWaitsForAllSizeJobs(t *testing.T) {
	s := newTestSession()
	s.ItemsDiscovered(discoveredItems())
	s.ScanFinished(time.Second)
	assert.Equal(t, StateScanning, s.State, "size jobs not yet queued")

	s.SizeJobsQueued(2)
	assert.Equal(t, StateScanning, s.State)

	s.SizeResolved("/work/b/target", 200)
	assert.Equal(t, StateScanning, s.State, "one size job outstanding")

	s.SizeResolved("/work/a/node_modules", 1000)
	assert.Equal(t, StateSelecting, s.State)
}

func TestNothingToSizeCompletesOnDiscovery(t *testing.T) {
	s := newTestSession()
	s.ItemsDiscovered([]scan.Item{{Path: "/work/x.log", Size: 10}})
	s.SizeJobsQueued(0)
	s.ScanFinished(time.Second)
	assert.Equal(t, StateSelecting, s.State)
}

func TestEnteringSelectingSortsAndTotals(t *testing.T) {
	s := newTestSession()
	finishScan(s)

	require.Equal(t, StateSelecting, s.State)
	require.Len(t, s.Items, 3)
	assert.Equal(t, "/work/a/node_modules", s.Items[0].Path)
	assert.Equal(t, "/work/b/target", s.Items[1].Path)
	assert.Equal(t, "/work/c/app.log", s.Items[2].Path)
	assert.Equal(t, int64(1250), s.TotalSize)
	assert.Equal(t, 0, s.Cursor, "first item becomes the active cursor")
}

func TestMinSizeFilterAppliesOnceSizesAreKnown(t *testing.T) {
	s := NewSession("/work", scan.ModeCatalog, 6, 100)
	finishScan(s)

	require.Len(t, s.Items, 2, "items below min size are dropped")
	assert.Equal(t, int64(1200), s.TotalSize)
}

func TestSizeUpdatesMatchByPathNotIndex(t *testing.T) {
	s := newTestSession()
	s.ItemsDiscovered(discoveredItems())
	s.SizeJobsQueued(2)

	// Reverse of discovery order.
	s.SizeResolved("/work/b/target", 200)
	s.SizeResolved("/work/a/node_modules", 1000)
	s.ScanFinished(time.Second)

	for _, item := range s.Items {
		switch item.Path {
		case "/work/a/node_modules":
			assert.Equal(t, int64(1000), item.Size)
		case "/work/b/target":
			assert.Equal(t, int64(200), item.Size)
		}
	}
}

func TestNavigationWrapsBothEnds(t *testing.T) {
	s := newTestSession()
	finishScan(s)

	s.NavigatePrevious()
	assert.Equal(t, 2, s.Cursor)

	s.NavigateNext()
	assert.Equal(t, 0, s.Cursor)
	s.NavigateNext()
	s.NavigateNext()
	s.NavigateNext()
	assert.Equal(t, 0, s.Cursor)
}

func TestToggleSelectionTracksSelectedSize(t *testing.T) {
	s := newTestSession()
	finishScan(s)

	s.ToggleSelection()
	assert.Equal(t, int64(1000), s.SelectedSize)
	assert.Equal(t, 1, s.SelectedCount())

	s.NavigateNext()
	s.ToggleSelection()
	assert.Equal(t, int64(1200), s.SelectedSize)

	s.ToggleSelection()
	assert.Equal(t, int64(1000), s.SelectedSize)
}

func TestStartCleanRequiresSelection(t *testing.T) {
	s := newTestSession()
	finishScan(s)

	_, ok := s.StartClean()
	assert.False(t, ok, "nothing selected")
	assert.Equal(t, StateSelecting, s.State)

	s.ToggleSelection()
	items, ok := s.StartClean()
	require.True(t, ok)
	assert.Equal(t, StateCleaning, s.State)
	assert.True(t, s.IsCleaning())
	assert.Len(t, items, 3)

	_, ok = s.StartClean()
	assert.False(t, ok, "no concurrent cleans")
}

func TestCleanProgressUpdatesRatioAndPath(t *testing.T) {
	s := newTestSession()
	finishScan(s)
	s.ToggleSelection()
	_, ok := s.StartClean()
	require.True(t, ok)

	s.CleanProgress(clean.Progress{Done: 0, Total: 2, Path: "/work/a/node_modules"})
	assert.Equal(t, 0.0, s.Progress)
	assert.Equal(t, "/work/a/node_modules", s.ProcessingPath)

	s.CleanProgress(clean.Progress{Done: 1, Total: 2})
	assert.Equal(t, 0.5, s.Progress)
	assert.Empty(t, s.ProcessingPath)
}

func TestCleanFinishedReconcilesByPath(t *testing.T) {
	s := newTestSession()
	finishScan(s)

	// Select node_modules (1000) and app.log (50); target stays.
	s.ToggleSelection()
	s.NavigateNext()
	s.NavigateNext()
	s.ToggleSelection()

	_, ok := s.StartClean()
	require.True(t, ok)

	s.CleanFinished([]clean.Result{
		{Path: "/work/a/node_modules", Succeeded: true, Size: 1000},
		{Path: "/work/c/app.log", Succeeded: false, Size: 0},
	})

	assert.Equal(t, StateComplete, s.State)
	assert.False(t, s.IsCleaning())
	assert.Equal(t, int64(1000), s.CleanedSize, "failures free zero bytes")

	paths := make([]string, len(s.Items))
	for i, item := range s.Items {
		paths[i] = item.Path
	}
	assert.NotContains(t, paths, "/work/a/node_modules")
	assert.Contains(t, paths, "/work/b/target")
	assert.Contains(t, paths, "/work/c/app.log", "failed deletions are retained")
}

func TestDismissCompleteReturnsToSelecting(t *testing.T) {
	s := newTestSession()
	finishScan(s)
	s.ToggleSelection()
	s.StartClean()
	s.CleanFinished([]clean.Result{{Path: "/work/a/node_modules", Succeeded: true, Size: 1000}})

	s.DismissComplete()
	assert.Equal(t, StateSelecting, s.State)
	assert.Equal(t, 0, s.Cursor)
}

func TestRescanResetsEverything(t *testing.T) {
	s := newTestSession()
	finishScan(s)
	s.ToggleSelection()

	require.True(t, s.Rescan())

	assert.Equal(t, StateScanning, s.State)
	assert.Empty(t, s.Items)
	assert.Equal(t, -1, s.Cursor)
	assert.Zero(t, s.ScannedCount)
	assert.Zero(t, s.TotalSizeJobs)
	assert.Zero(t, s.CompletedSizeJobs)
	assert.Zero(t, s.TotalSize)
	assert.Zero(t, s.SelectedSize)
	assert.Zero(t, s.CleanedSize)

	// And a fresh cycle completes normally.
	finishScan(s)
	assert.Equal(t, StateSelecting, s.State)
}

func TestRescanRefusedOutsideSelecting(t *testing.T) {
	s := newTestSession()
	assert.False(t, s.Rescan(), "still scanning")

	finishScan(s)
	s.ToggleSelection()
	s.StartClean()
	assert.False(t, s.Rescan(), "clean in flight")
}

func TestHelpOverlayRestoresPriorState(t *testing.T) {
	s := newTestSession()

	s.ToggleHelp()
	assert.Equal(t, StateHelp, s.State)
	s.ToggleHelp()
	assert.Equal(t, StateScanning, s.State)

	finishScan(s)
	s.ToggleHelp()
	s.ScrollHelp(3)
	assert.Equal(t, 3, s.HelpScroll)
	s.ScrollHelp(-10)
	assert.Equal(t, 0, s.HelpScroll, "scroll clamps at the top")
	s.ToggleHelp()
	assert.Equal(t, StateSelecting, s.State)
}

func TestScanCompletingUnderHelpOverlay(t *testing.T) {
	s := newTestSession()
	s.ToggleHelp()

	finishScan(s)
	assert.Equal(t, StateHelp, s.State, "overlay stays up")

	s.ToggleHelp()
	assert.Equal(t, StateSelecting, s.State, "closing help lands on the new state")
}

func TestResolveTarget(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolveTarget(dir, false)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	_, err = ResolveTarget(filepath.Join(dir, "missing"), false)
	assert.ErrorContains(t, err, "does not exist")

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = ResolveTarget(file, false)
	assert.ErrorContains(t, err, "not a directory")

	_, err = ResolveTarget(dir, true)
	assert.ErrorContains(t, err, "no .gitignore")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("dist/\n"), 0o600))
	_, err = ResolveTarget(dir, true)
	assert.NoError(t, err)
}

func TestResolveTargetExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "projects"), 0o750))

	got, err := ResolveTarget("~/projects", false)
	require.NoError(t, err)
	assert.Equal(t, "projects", filepath.Base(got))

	_, err = ResolveTarget("~/missing", false)
	assert.ErrorContains(t, err, "does not exist")
}
