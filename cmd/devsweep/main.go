package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devsweep/devsweep/internal/cli"
)

// version is set by the release build via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "devsweep [path]",
	Short:   "Interactive cleaner for development artifacts",
	Long:    `devsweep scans a project tree for dependency caches, build outputs, logs, and other disposable development artifacts, then lets you pick what to delete.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    cli.RunRoot,
}

func init() {
	cli.AddScanFlags(rootCmd)
	rootCmd.Flags().Bool("debug", false, "Write debug logs to the config directory")

	rootCmd.AddCommand(cli.ScanCmd)
	rootCmd.AddCommand(cli.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
