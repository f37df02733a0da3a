// Package cli wires the cobra commands to the scan, clean, and tui
// packages.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devsweep/devsweep/internal/app"
	"github.com/devsweep/devsweep/internal/catalog"
	"github.com/devsweep/devsweep/internal/config"
	"github.com/devsweep/devsweep/internal/scan"
	"github.com/devsweep/devsweep/internal/tui"
	"github.com/devsweep/devsweep/pkg/size"
)

// runOptions is the resolved scan configuration after config-file
// values and flag overrides are merged.
type runOptions struct {
	target   string
	mode     scan.Mode
	maxDepth int
	minSize  int64
}

// AddScanFlags registers the flags shared by the root command and the
// scan subcommand.
func AddScanFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("gitignore", false, "Match against the target's .gitignore instead of the built-in patterns")
	cmd.Flags().Int("depth", 0, "Maximum scan depth (overrides config)")
	cmd.Flags().String("min-size", "", "Hide items smaller than this, e.g. 10M")
}

// RunRoot launches the interactive session. It is the root command's
// RunE so a bare invocation drops straight into the picker.
func RunRoot(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	if err := setupLogging(debug); err != nil {
		return err
	}

	cfg, _, err := config.NewLoader().LoadOrCreate()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts, err := resolveOptions(cmd, args, cfg)
	if err != nil {
		return err
	}

	session := app.NewSession(opts.target, opts.mode, opts.maxDepth, opts.minSize)
	return tui.Run(session, buildCatalog(cfg), cfg.PostClean)
}

// resolveOptions merges config values with flags. A flag only wins
// when it was set explicitly, so config defaults survive.
func resolveOptions(cmd *cobra.Command, args []string, cfg *config.Config) (runOptions, error) {
	useGitignore := cfg.UseGitignore
	if cmd.Flags().Changed("gitignore") {
		useGitignore, _ = cmd.Flags().GetBool("gitignore")
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	target, err := app.ResolveTarget(path, useGitignore)
	if err != nil {
		return runOptions{}, err
	}

	maxDepth := cfg.MaxDepth
	if cmd.Flags().Changed("depth") {
		maxDepth, _ = cmd.Flags().GetInt("depth")
	}
	if maxDepth < 1 {
		return runOptions{}, fmt.Errorf("depth must be at least 1, got %d", maxDepth)
	}

	minSize := cfg.MinSizeBytes()
	if cmd.Flags().Changed("min-size") {
		raw, _ := cmd.Flags().GetString("min-size")
		minSize, err = size.ParseSize(raw)
		if err != nil {
			return runOptions{}, fmt.Errorf("parse min-size: %w", err)
		}
	}

	mode := scan.ModeCatalog
	if useGitignore {
		mode = scan.ModeGitignore
	}

	return runOptions{
		target:   target,
		mode:     mode,
		maxDepth: maxDepth,
		minSize:  minSize,
	}, nil
}

func buildCatalog(cfg *config.Config) *catalog.Catalog {
	extra := make([]catalog.Pattern, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		extra = append(extra, catalog.Pattern{Key: p.Key, Description: p.Description})
	}
	return catalog.New(extra...)
}

// setupLogging routes logrus away from the terminal. The alternate
// screen owns stdout and stderr while the picker runs, so logs either
// go to the debug file or nowhere.
func setupLogging(debug bool) error {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath, err := config.DebugLogPath()
	if err != nil {
		return fmt.Errorf("resolve debug log path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}

	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	return nil
}
