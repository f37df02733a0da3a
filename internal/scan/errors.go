package scan

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// AccessError records a skipped filesystem entry with a classified
// reason. Walks never fail on access errors; they accumulate these
// as warnings, and reports aggregate them per reason via CountReasons.
type AccessError struct {
	Err    error
	Path   string
	Reason string
}

func (e AccessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e AccessError) Unwrap() error {
	return e.Err
}

// Reason constants for error classification.
const (
	ReasonPermissionDenied = "permission denied"
	ReasonFileLocked       = "file locked"
	ReasonNotFound         = "not found"
	ReasonUnknown          = "access error"
)

// ClassifyError determines the reason for a file access error.
func ClassifyError(path string, err error) AccessError {
	if err == nil {
		return AccessError{Path: path, Reason: ReasonUnknown}
	}

	reason := ReasonUnknown

	switch {
	case errors.Is(err, os.ErrPermission):
		reason = ReasonPermissionDenied
	case errors.Is(err, os.ErrNotExist):
		reason = ReasonNotFound
	case errors.Is(err, syscall.EBUSY):
		reason = ReasonFileLocked
	case errors.Is(err, syscall.ETXTBSY):
		reason = ReasonFileLocked
	}

	return AccessError{
		Path:   path,
		Reason: reason,
		Err:    err,
	}
}

// CountReasons aggregates warnings into per-reason totals. Returns nil
// for an empty warning list so callers can omit the breakdown entirely.
func CountReasons(warnings []AccessError) map[string]int {
	if len(warnings) == 0 {
		return nil
	}
	counts := make(map[string]int, len(warnings))
	for _, w := range warnings {
		counts[w.Reason]++
	}
	return counts
}
