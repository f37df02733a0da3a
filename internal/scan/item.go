// Package scan finds cleanable artifacts under a directory tree and
// computes their sizes. Traversal and sizing are parallelized across
// a CPU-sized worker pool; results stream to the caller over channels.
package scan

import "runtime"

// Item is one matched filesystem entry. Path is the identity key:
// two items refer to the same entity iff their paths are equal.
type Item struct {
	Path     string // absolute, canonicalized
	Category string // description from the matching pattern
	Size     int64  // bytes; 0 until resolved for directories
	IsDir    bool
	Selected bool
}

// Mode selects the matching strategy for a walk.
type Mode int

const (
	// ModeCatalog matches entries against the built-in pattern catalog.
	ModeCatalog Mode = iota
	// ModeGitignore matches entries against the scan root's .gitignore.
	ModeGitignore
)

// workerCount returns the pool size for parallel matching and sizing.
func workerCount() int {
	n := runtime.NumCPU()
	if n < 2 {
		n = 2
	}
	return n
}

// splitChunks partitions entries into at most n contiguous chunks.
// Relative order is preserved within each chunk.
func splitChunks[T any](entries []T, n int) [][]T {
	if len(entries) == 0 {
		return nil
	}
	chunkSize := len(entries)/n + 1
	var chunks [][]T
	for start := 0; start < len(entries); start += chunkSize {
		end := start + chunkSize
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
