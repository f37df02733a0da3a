package catalog

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Ruleset holds the usable patterns from a .gitignore file.
// Negated ("!") rules are skipped: devsweep reports what a gitignore
// hides and does not attempt to resolve re-inclusion precedence.
type Ruleset struct {
	rules []gitRule
}

type gitRule struct {
	glob    glob.Glob // nil for non-glob rules
	pattern string
}

// LoadGitignore reads the .gitignore at the root of dir and returns
// its usable rules. A missing file yields an empty ruleset; callers
// that require the file to exist must check beforehand.
func LoadGitignore(dir string) (*Ruleset, error) {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Ruleset{}, nil
		}
		return nil, err
	}
	defer f.Close()

	rs := &Ruleset{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		rule := gitRule{pattern: line}
		if strings.Contains(line, "*") {
			g, err := glob.Compile(line)
			if err != nil {
				continue
			}
			rule.glob = g
		}
		rs.rules = append(rs.rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Empty reports whether the ruleset has no usable rules.
func (r *Ruleset) Empty() bool {
	return len(r.rules) == 0
}

// Match tests a path, relative to the scan root and slash-separated,
// against the rules in file order. It returns the text of the first
// matching rule.
//
// Rule semantics:
//   - trailing "/" matches the directory itself and everything under it
//   - rules containing "*" glob against the basename or the full
//     relative path
//   - anything else matches by exact path, substring containment, or
//     "/<pattern>" suffix
func (r *Ruleset) Match(relPath string) (string, bool) {
	for _, rule := range r.rules {
		if rule.matches(relPath) {
			return rule.pattern, true
		}
	}
	return "", false
}

func (g gitRule) matches(relPath string) bool {
	if strings.HasSuffix(g.pattern, "/") {
		prefix := strings.TrimSuffix(g.pattern, "/")
		return relPath == prefix || strings.HasPrefix(relPath, prefix+"/")
	}

	if g.glob != nil {
		base := relPath
		if idx := strings.LastIndexByte(relPath, '/'); idx >= 0 {
			base = relPath[idx+1:]
		}
		return g.glob.Match(base) || g.glob.Match(relPath)
	}

	return relPath == g.pattern ||
		strings.Contains(relPath, g.pattern) ||
		strings.HasSuffix(relPath, "/"+g.pattern)
}
