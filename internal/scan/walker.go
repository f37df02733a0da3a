package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/devsweep/devsweep/internal/catalog"
)

// DefaultMaxDepth bounds traversal when the caller does not choose one.
const DefaultMaxDepth = 6

// Options configures a walk.
type Options struct {
	Mode     Mode
	MaxDepth int
}

type walkEntry struct {
	entry fs.DirEntry
	path  string
	rel   string
	depth int
}

// Walk traverses root up to the depth ceiling and returns every entry
// matched by the active strategy. The root itself is never a candidate.
//
// In catalog mode, subtrees rooted at hidden entries (basename starting
// with ".", except ".git") are pruned before matching. In gitignore
// mode nothing is pruned: every entry is tested against the rules,
// and matches are de-duplicated by path.
//
// The pruned entry list is partitioned into contiguous chunks, one per
// worker; each worker matches its chunk into a private buffer and sends
// the whole buffer over a channel for single-consumer merging. The
// returned order is unspecified. Unreadable entries are skipped and
// reported as warnings, never as a failure.
func Walk(root string, cat *catalog.Catalog, opts Options) ([]Item, []AccessError) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	var rules *catalog.Ruleset
	if opts.Mode == ModeGitignore {
		var err error
		rules, err = catalog.LoadGitignore(root)
		if err != nil || rules.Empty() {
			return nil, nil
		}
	}

	entries, warnings := collectEntries(root, opts)
	if len(entries) == 0 {
		return nil, warnings
	}

	workers := workerCount()
	chunks := splitChunks(entries, workers)
	log.WithFields(log.Fields{
		"entries": len(entries),
		"workers": len(chunks),
		"mode":    opts.Mode,
	}).Debug("matching scan entries")

	type chunkResult struct {
		items []Item
		warns []AccessError
	}

	results := make(chan chunkResult, len(chunks))
	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []walkEntry) {
			defer wg.Done()
			var res chunkResult
			for _, e := range chunk {
				item, warn, ok := matchEntry(e, cat, rules, opts.Mode)
				if warn != nil {
					res.warns = append(res.warns, *warn)
				}
				if ok {
					res.items = append(res.items, item)
				}
			}
			results <- res
		}(chunk)
	}
	wg.Wait()
	close(results)

	var items []Item
	seen := make(map[string]struct{})
	for res := range results {
		warnings = append(warnings, res.warns...)
		for _, item := range res.items {
			if opts.Mode == ModeGitignore {
				if _, dup := seen[item.Path]; dup {
					continue
				}
				seen[item.Path] = struct{}{}
			}
			items = append(items, item)
		}
	}

	return items, warnings
}

func matchEntry(e walkEntry, cat *catalog.Catalog, rules *catalog.Ruleset, mode Mode) (Item, *AccessError, bool) {
	var category string
	switch mode {
	case ModeGitignore:
		pattern, ok := rules.Match(filepath.ToSlash(e.rel))
		if !ok {
			return Item{}, nil, false
		}
		category = "Gitignore pattern: " + pattern
	default:
		desc, ok := cat.Match(e.entry.Name())
		if !ok {
			return Item{}, nil, false
		}
		category = desc
	}

	item := Item{
		Path:     e.path,
		Category: category,
		IsDir:    e.entry.IsDir(),
	}
	if !item.IsDir {
		info, err := e.entry.Info()
		if err != nil {
			warn := ClassifyError(e.path, err)
			return item, &warn, true
		}
		item.Size = info.Size()
	}
	return item, nil, true
}

// collectEntries gathers the depth-bounded, pruned entry list in a
// single pass so matching can be chunked across workers afterwards.
func collectEntries(root string, opts Options) ([]walkEntry, []AccessError) {
	var entries []walkEntry
	var warnings []AccessError

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warn := ClassifyError(path, err)
			warnings = append(warnings, warn)
			log.WithError(warn.Err).WithFields(log.Fields{
				"path":   path,
				"reason": warn.Reason,
			}).Debug("entry skipped")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if depth > opts.MaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if opts.Mode == ModeCatalog && strings.HasPrefix(name, ".") && name != ".git" {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		entries = append(entries, walkEntry{path: path, rel: rel, depth: depth, entry: d})

		// No need to descend past the ceiling.
		if d.IsDir() && depth == opts.MaxDepth {
			return fs.SkipDir
		}
		return nil
	})

	return entries, warnings
}
