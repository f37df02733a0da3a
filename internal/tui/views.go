package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/devsweep/devsweep/internal/app"
	"github.com/devsweep/devsweep/pkg/size"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("devsweep"))
	b.WriteString(dimStyle.Render("  " + m.session.Root))
	b.WriteString("\n\n")

	switch m.session.State {
	case app.StateScanning:
		b.WriteString(m.viewScanning())
	case app.StateSelecting:
		b.WriteString(m.viewSelecting())
	case app.StateCleaning:
		b.WriteString(m.viewCleaning())
	case app.StateComplete:
		b.WriteString(m.viewComplete())
	case app.StateHelp:
		b.WriteString(m.viewHelp())
	}

	return boxStyle.Width(m.width - 2).Render(b.String())
}

func (m Model) viewScanning() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Scanning... %s elapsed\n\n",
		m.spinner.View(), m.session.Elapsed().Truncate(100*time.Millisecond))

	if m.session.ScannedCount > 0 {
		fmt.Fprintf(&b, "Found %d cleanable items\n", m.session.ScannedCount)
	}
	if m.session.TotalSizeJobs > 0 {
		fmt.Fprintf(&b, "Sizing directories: %d/%d\n",
			m.session.CompletedSizeJobs, m.session.TotalSizeJobs)
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("h=help  q=quit"))
	return b.String()
}

// listWindow bounds how many items render at once, keeping the cursor
// visible within the viewport.
func (m Model) listWindow() (int, int) {
	visible := m.height - 12
	if visible < 3 {
		visible = 3
	}
	if visible >= len(m.session.Items) {
		return 0, len(m.session.Items)
	}

	start := m.session.Cursor - visible/2
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(m.session.Items) {
		end = len(m.session.Items)
		start = end - visible
	}
	return start, end
}

func (m Model) viewSelecting() string {
	var b strings.Builder

	if len(m.session.Items) == 0 {
		b.WriteString("Nothing to clean here.\n\n")
		b.WriteString(dimStyle.Render("r=rescan  h=help  q=quit"))
		return b.String()
	}

	fmt.Fprintf(&b, "%d items, %s total  %s\n\n",
		len(m.session.Items),
		size.FormatSize(m.session.TotalSize),
		dimStyle.Render(fmt.Sprintf("(scan took %s)", m.session.ScanDuration.Truncate(time.Millisecond))))

	start, end := m.listWindow()
	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d above\n", start)))
	}

	for i := start; i < end; i++ {
		item := m.session.Items[i]

		cursor := "  "
		if i == m.session.Cursor {
			cursor = cursorStyle.Render("> ")
		}

		checkbox := "[ ]"
		if item.Selected {
			checkbox = selectedStyle.Render("[x]")
		}

		line := fmt.Sprintf("%s%s %10s  %s  %s",
			cursor,
			checkbox,
			sizeStyle.Render(size.FormatSize(item.Size)),
			m.displayPath(item.Path),
			categoryStyle.Render(item.Category),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	if end < len(m.session.Items) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d below\n", len(m.session.Items)-end)))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Selected: %d items, %s\n",
		m.session.SelectedCount(), size.FormatSize(m.session.SelectedSize))
	if m.warnings > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d entries skipped\n", m.warnings)))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("space=toggle  c=clean  r=rescan  j/k=move  h=help  q=quit"))
	return b.String()
}

func (m Model) viewCleaning() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Cleaning...\n\n", m.spinner.View())
	b.WriteString(m.progress.ViewAs(m.session.Progress))
	b.WriteString("\n\n")

	if m.session.ProcessingPath != "" {
		fmt.Fprintf(&b, "Deleting %s\n", m.displayPath(m.session.ProcessingPath))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q=quit"))
	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(totalStyle.Render(
		fmt.Sprintf("Done. Freed %s", size.FormatSize(m.session.CleanedSize))))
	b.WriteString("\n\n")

	if len(m.session.Items) > 0 {
		fmt.Fprintf(&b, "%d items remain (failed deletions are kept in the list)\n",
			len(m.session.Items))
	}

	for _, hook := range m.hookResults {
		if hook.Err != nil {
			fmt.Fprintf(&b, "hook %q: %s\n", hook.Command, errorStyle.Render("failed"))
		} else {
			fmt.Fprintf(&b, "hook %q: ok\n", hook.Command)
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("any key=back to list  q=quit"))
	return b.String()
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(m.help.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("j/k=scroll  esc/h=close  q=quit"))
	return b.String()
}

// displayPath shortens absolute paths to be relative to the scan root.
func (m Model) displayPath(path string) string {
	root := m.session.Root
	if strings.HasPrefix(path, root) {
		trimmed := strings.TrimPrefix(path, root)
		return strings.TrimPrefix(trimmed, "/")
	}
	return path
}

func (m Model) helpContent() string {
	return strings.TrimSpace(`
devsweep finds development artifacts that are safe to delete:
dependency caches, build outputs, bytecode caches, IDE metadata,
logs and temp files.

Navigation
  j / down       next item
  k / up         previous item
  mouse wheel    scroll

Selection
  space          toggle the highlighted item
  c              delete selected items
  r              rescan from scratch

Modes
  By default entries are matched against the built-in pattern
  catalog. With --gitignore, the scan instead reports everything
  matched by the target's own .gitignore rules (negated "!" rules
  are ignored).

Notes
  Directory sizes are computed in the background; totals are final
  once the list is sorted. Deletions are permanent; there is no
  undo. Items that fail to delete stay in the list.

Keys everywhere
  h              toggle this help
  q / esc        quit
`)
}
