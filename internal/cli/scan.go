package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devsweep/devsweep/internal/catalog"
	"github.com/devsweep/devsweep/internal/config"
	"github.com/devsweep/devsweep/internal/scan"
	"github.com/devsweep/devsweep/pkg/size"
)

// ReportItem is one cleanable entry in scan output.
type ReportItem struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	SizeFmt  string `json:"size"`
	Size     int64  `json:"size_bytes"`
}

// Report holds full scan output for JSON serialization.
type Report struct {
	Root            string         `json:"root"`
	Total           string         `json:"total"`
	Items           []ReportItem   `json:"items"`
	SkippedByReason map[string]int `json:"skipped_by_reason,omitempty"`
	TotalBytes      int64          `json:"total_bytes"`
	Skipped         int            `json:"skipped,omitempty"`
}

// ScanCmd reports cleanable items without entering the picker.
var ScanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List cleanable items without the interactive picker",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	AddScanFlags(ScanCmd)
	ScanCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runScan(cmd *cobra.Command, args []string) error {
	log.SetOutput(io.Discard)

	cfg, _, err := config.NewLoader().LoadOrCreate()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts, err := resolveOptions(cmd, args, cfg)
	if err != nil {
		return err
	}

	jsonFlag, _ := cmd.Flags().GetBool("json")
	report := buildReport(opts, buildCatalog(cfg))

	if jsonFlag {
		return outputJSON(report)
	}
	return outputTable(report)
}

// buildReport scans the target, resolves directory sizes, and returns
// items sorted largest first.
func buildReport(opts runOptions, cat *catalog.Catalog) Report {
	items, warnings := scan.Walk(opts.target, cat, scan.Options{
		Mode:     opts.mode,
		MaxDepth: opts.maxDepth,
	})

	updates := make(chan scan.SizeUpdate, 32)
	total := scan.ResolveSizes(items, updates)

	sizes := make(map[string]int64, total)
	for i := 0; i < total; i++ {
		u := <-updates
		sizes[u.Path] = u.Size
	}
	for i := range items {
		if items[i].IsDir {
			items[i].Size = sizes[items[i].Path]
		}
	}

	report := Report{
		Root:            opts.target,
		Skipped:         len(warnings),
		SkippedByReason: scan.CountReasons(warnings),
	}
	for _, item := range items {
		if item.Size < opts.minSize {
			continue
		}
		report.Items = append(report.Items, ReportItem{
			Path:     item.Path,
			Category: item.Category,
			Size:     item.Size,
			SizeFmt:  size.FormatSize(item.Size),
		})
		report.TotalBytes += item.Size
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Size > report.Items[j].Size
	})
	report.Total = size.FormatSize(report.TotalBytes)
	return report
}

func outputJSON(report Report) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func outputTable(report Report) error {
	if len(report.Items) == 0 {
		fmt.Println("Nothing to clean under", report.Root)
		return nil
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("93"))
	totalLine := lipgloss.NewStyle().Bold(true)

	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		rows = append(rows, []string{item.Path, item.Category, item.SizeFmt})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers("Path", "Category", "Size").
		Rows(rows...)

	fmt.Println(t)
	fmt.Println()
	fmt.Println(totalLine.Render(fmt.Sprintf("Total: %s", report.Total)))
	if report.Skipped > 0 {
		fmt.Printf("%d entries skipped (%s)\n", report.Skipped, skipSummary(report.SkippedByReason))
	}

	return nil
}

// skipSummary renders per-reason skip counts in stable reason order.
func skipSummary(byReason map[string]int) string {
	reasons := make([]string, 0, len(byReason))
	for reason := range byReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s: %d", reason, byReason[reason]))
	}
	return strings.Join(parts, ", ")
}
