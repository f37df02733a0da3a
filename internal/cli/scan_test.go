package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsweep/devsweep/internal/config"
	"github.com/devsweep/devsweep/internal/scan"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	// Read in goroutine to avoid pipe buffer deadlock
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old
	<-done
	return buf.String()
}

func newFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	AddScanFlags(cmd)
	return cmd
}

// writeTree lays out a project with a node_modules directory and a
// stray log file.
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	modules := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(modules, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(modules, "dep.js"), bytes.Repeat([]byte("x"), 200), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.log"), []byte("hello"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o600))

	return root
}

func TestResolveOptions(t *testing.T) {
	root := writeTree(t)
	cfg := config.DefaultConfig()

	t.Run("config defaults", func(t *testing.T) {
		opts, err := resolveOptions(newFlagsCmd(), []string{root}, cfg)
		require.NoError(t, err)

		assert.Equal(t, scan.ModeCatalog, opts.mode)
		assert.Equal(t, cfg.MaxDepth, opts.maxDepth)
		assert.Zero(t, opts.minSize)
	})

	t.Run("flags override config", func(t *testing.T) {
		cmd := newFlagsCmd()
		require.NoError(t, cmd.Flags().Set("depth", "3"))
		require.NoError(t, cmd.Flags().Set("min-size", "1K"))

		opts, err := resolveOptions(cmd, []string{root}, cfg)
		require.NoError(t, err)

		assert.Equal(t, 3, opts.maxDepth)
		assert.Equal(t, int64(1024), opts.minSize)
	})

	t.Run("invalid depth", func(t *testing.T) {
		cmd := newFlagsCmd()
		require.NoError(t, cmd.Flags().Set("depth", "0"))

		_, err := resolveOptions(cmd, []string{root}, cfg)
		assert.Error(t, err)
	})

	t.Run("invalid min-size", func(t *testing.T) {
		cmd := newFlagsCmd()
		require.NoError(t, cmd.Flags().Set("min-size", "lots"))

		_, err := resolveOptions(cmd, []string{root}, cfg)
		assert.Error(t, err)
	})

	t.Run("gitignore mode needs a gitignore", func(t *testing.T) {
		cmd := newFlagsCmd()
		require.NoError(t, cmd.Flags().Set("gitignore", "true"))

		_, err := resolveOptions(cmd, []string{root}, cfg)
		assert.Error(t, err)
	})

	t.Run("gitignore mode with gitignore present", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0o600))
		cmd := newFlagsCmd()
		require.NoError(t, cmd.Flags().Set("gitignore", "true"))

		opts, err := resolveOptions(cmd, []string{root}, cfg)
		require.NoError(t, err)
		assert.Equal(t, scan.ModeGitignore, opts.mode)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := resolveOptions(newFlagsCmd(), []string{filepath.Join(root, "nope")}, cfg)
		assert.Error(t, err)
	})
}

func TestBuildCatalog(t *testing.T) {
	cfg := config.DefaultConfig()
	base := buildCatalog(cfg)

	cfg.Patterns = []config.Pattern{{Key: "scratch", Description: "Scratch dirs"}}
	extended := buildCatalog(cfg)

	assert.Equal(t, base.Len()+1, extended.Len())

	category, ok := extended.Match("scratch")
	require.True(t, ok)
	assert.Equal(t, "Scratch dirs", category)
}

func TestBuildReport(t *testing.T) {
	root := writeTree(t)
	cfg := config.DefaultConfig()

	opts, err := resolveOptions(newFlagsCmd(), []string{root}, cfg)
	require.NoError(t, err)

	report := buildReport(opts, buildCatalog(cfg))

	require.Len(t, report.Items, 2)
	assert.Equal(t, "Node.js dependencies", report.Items[0].Category)
	assert.Equal(t, int64(200), report.Items[0].Size)
	assert.Equal(t, "Log files", report.Items[1].Category)
	assert.Equal(t, int64(5), report.Items[1].Size)
	assert.Equal(t, int64(205), report.TotalBytes)
	assert.Equal(t, "205 B", report.Total)
}

func TestBuildReportMinSize(t *testing.T) {
	root := writeTree(t)
	cfg := config.DefaultConfig()

	opts, err := resolveOptions(newFlagsCmd(), []string{root}, cfg)
	require.NoError(t, err)
	opts.minSize = 100

	report := buildReport(opts, buildCatalog(cfg))

	require.Len(t, report.Items, 1)
	assert.Equal(t, "Node.js dependencies", report.Items[0].Category)
	assert.Equal(t, int64(200), report.TotalBytes)
}

func TestScanOutputJSON(t *testing.T) {
	root := writeTree(t)
	cfg := config.DefaultConfig()

	opts, err := resolveOptions(newFlagsCmd(), []string{root}, cfg)
	require.NoError(t, err)

	out := captureStdout(t, func() {
		require.NoError(t, outputJSON(buildReport(opts, buildCatalog(cfg))))
	})

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, opts.target, report.Root)
	assert.Len(t, report.Items, 2)
	assert.Equal(t, int64(205), report.TotalBytes)
}

func TestScanOutputTable(t *testing.T) {
	root := writeTree(t)
	cfg := config.DefaultConfig()

	opts, err := resolveOptions(newFlagsCmd(), []string{root}, cfg)
	require.NoError(t, err)

	out := captureStdout(t, func() {
		require.NoError(t, outputTable(buildReport(opts, buildCatalog(cfg))))
	})

	assert.Contains(t, out, "node_modules")
	assert.Contains(t, out, "app.log")
	assert.Contains(t, out, "Total: 205 B")
}

func TestSkipSummary(t *testing.T) {
	got := skipSummary(map[string]int{
		"permission denied": 2,
		"not found":         1,
	})
	assert.Equal(t, "not found: 1, permission denied: 2", got)
}

func TestScanOutputTableEmpty(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()

	opts, err := resolveOptions(newFlagsCmd(), []string{root}, cfg)
	require.NoError(t, err)

	out := captureStdout(t, func() {
		require.NoError(t, outputTable(buildReport(opts, buildCatalog(cfg))))
	})

	assert.Contains(t, out, "Nothing to clean")
}
