// Package catalog decides which filesystem entries are cleanable
// development artifacts. It holds the built-in pattern table and the
// matching logic for both catalog mode and gitignore mode.
package catalog

import (
	"strings"

	"github.com/gobwas/glob"
)

// Pattern associates an entry name or basename glob with a
// human-readable category description.
type Pattern struct {
	Key         string
	Description string
}

// builtinPatterns is the process-wide pattern table. Order matters:
// the first matching pattern wins.
var builtinPatterns = []Pattern{
	// JavaScript / Node.js
	{"node_modules", "Node.js dependencies"},
	{"pnpm-lock.yaml", "pnpm lock file"},
	{".yarn", "Yarn cache directory"},
	{".parcel-cache", "Parcel bundler cache"},
	{".next", "Next.js build artifacts"},
	{".turbo", "Turborepo build artifacts"},
	{".svelte-kit", "SvelteKit build artifacts"},
	{".vite", "Vite cache directory"},
	{"dist", "Distribution files"},
	{"coverage", "Test coverage reports"},

	// Rust
	{"target", "Rust build artifacts"},
	{"debug", "Rust debug output"},
	{"release", "Rust release output"},
	{"deps", "Rust/Elixir dependencies"},

	// Python
	{"__pycache__", "Python bytecode cache"},
	{".pytest_cache", "Pytest cache"},
	{".mypy_cache", "MyPy static analysis cache"},
	{".ruff_cache", "Ruff linter cache"},
	{"venv", "Python virtual environment"},
	{".venv", "Python virtual environment"},
	{"env", "Python virtual environment"},
	{"*.pyc", "Compiled Python files"},
	{"*.pyo", "Optimized Python files"},

	// Elixir
	{"_build", "Elixir build artifacts"},

	// Java / Kotlin / Gradle
	{"build", "Build output directory"},
	{".gradle", "Gradle build cache"},
	{"out", "Output directory"},

	// C / C++ / CMake
	{"cmake-build-debug", "CMake debug build artifacts"},
	{"cmake-build-release", "CMake release build artifacts"},
	{"build-*", "Wildcard build output directories"},

	// macOS / iOS / Xcode
	{"DerivedData", "Xcode derived data"},
	{".DS_Store", "macOS metadata"},

	// Editor / IDE configs
	{".vscode", "VS Code configuration"},
	{".idea", "JetBrains IDE configuration"},

	// General build or tool caches
	{".cache", "Generic build cache"},
	{".scannerwork", "SonarQube scanner cache"},

	// Miscellaneous files
	{"*.log", "Log files"},
	{"*.tmp", "Temporary files"},
	{"*.bak", "Backup files"},
	{"*.old", "Old backup files"},
	{"*.swp", "Vim swap files"},
	{"*.swo", "Vim swap files"},
	{".env", "Environment variable file"},
	{"docker-compose.override.yml", "Docker override config"},
	{"*.db", "Database files"},
	{"*.sqlite3", "SQLite database files"},
}

type compiledPattern struct {
	glob        glob.Glob // nil when key is an exact name
	key         string
	description string
}

// Catalog is an immutable, ordered pattern table. Construct once at
// startup and share by reference; reads need no synchronization.
type Catalog struct {
	patterns []compiledPattern
}

// New builds a catalog from the built-in table plus any extra
// user-defined patterns, which are appended after the built-ins.
// Patterns with malformed globs are dropped.
func New(extra ...Pattern) *Catalog {
	all := make([]Pattern, 0, len(builtinPatterns)+len(extra))
	all = append(all, builtinPatterns...)
	all = append(all, extra...)

	c := &Catalog{patterns: make([]compiledPattern, 0, len(all))}
	for _, p := range all {
		cp := compiledPattern{key: p.Key, description: p.Description}
		if strings.Contains(p.Key, "*") {
			g, err := glob.Compile(p.Key)
			if err != nil {
				continue
			}
			cp.glob = g
		}
		c.patterns = append(c.patterns, cp)
	}
	return c
}

// Match reports whether an entry basename is a cleanable artifact and
// returns the category description of the first matching pattern.
// Globs match against the basename only. When no pattern matches
// directly, a name with an extension is probed once more against the
// "*.<ext>" key.
func (c *Catalog) Match(name string) (string, bool) {
	for _, p := range c.patterns {
		if p.glob != nil {
			if p.glob.Match(name) {
				return p.description, true
			}
			continue
		}
		if name == p.key {
			return p.description, true
		}
	}

	// Extension fallback: "foo.log" probes the "*.log" key directly.
	if idx := strings.LastIndexByte(name, '.'); idx > 0 && idx < len(name)-1 {
		probe := "*." + name[idx+1:]
		for _, p := range c.patterns {
			if p.key == probe {
				return p.description, true
			}
		}
	}

	return "", false
}

// Len returns the number of patterns in the catalog.
func (c *Catalog) Len() int {
	return len(c.patterns)
}
