package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/perivale/s3mirror/mirrortypes"
)

// Styles for terminal output.
var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// outcomeStyle returns the style for a transfer outcome.
func outcomeStyle(outcome mirrortypes.Outcome) lipgloss.Style {
	switch outcome {
	case mirrortypes.OutcomeDownloaded:
		return okStyle
	case mirrortypes.OutcomeSkipped:
		return warnStyle
	default:
		return errStyle
	}
}

// renderError formats a fatal error for stderr.
func renderError(err error) string {
	return errStyle.Render("error: ") + err.Error()
}

// renderWarning formats a non-fatal condition.
func renderWarning(msg string) string {
	return warnStyle.Render("warning: ") + msg
}

// renderRunSummary formats the final statistics of a mirror run.
func renderRunSummary(result *mirrortypes.RunResult) string {
	stats := result.Stats

	failedStyle := okStyle
	if stats.Failed > 0 {
		failedStyle = errStyle
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Run complete in %s", result.Duration.Round(time.Millisecond))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("folders processed "), stats.FoldersProcessed)
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("subfolders scanned"), stats.SubfoldersScanned)
	fmt.Fprintf(&b, "  %s %s (%s)\n", labelStyle.Render("downloaded        "),
		okStyle.Render(fmt.Sprintf("%d", stats.Downloaded)), formatBytes(stats.BytesCopied))
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("skipped           "), stats.Skipped)
	fmt.Fprintf(&b, "  %s %s", labelStyle.Render("failed            "),
		failedStyle.Render(fmt.Sprintf("%d", stats.Failed)))
	return b.String()
}

// renderPlan formats a planning pass. Verbose output lists every
// transfer item.
func renderPlan(result *mirrortypes.PlanResult, verbose bool) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Planned %d transfers across %d targets",
		result.TotalItems(), len(result.Targets))))

	for _, target := range result.Targets {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s  %d subfolders, %d items",
			headerStyle.Render(target.Target), len(target.Subfolders), len(target.Items))
		if !verbose {
			continue
		}
		for _, item := range target.Items {
			b.WriteString("\n")
			fmt.Fprintf(&b, "    %s %s %s",
				item.RemoteKey, labelStyle.Render("->"), item.LocalPath)
		}
	}
	return b.String()
}

// renderAudit formats a content-type audit report.
func renderAudit(report *mirrortypes.AuditReport) string {
	var b strings.Builder
	if len(report.Mismatches) == 0 {
		b.WriteString(okStyle.Render(fmt.Sprintf("Checked %d files, no mismatches", report.FilesChecked)))
		return b.String()
	}

	b.WriteString(errStyle.Render(fmt.Sprintf("Checked %d files, %d mismatches",
		report.FilesChecked, len(report.Mismatches))))
	for _, m := range report.Mismatches {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s  %s %s %s",
			m.Path,
			labelStyle.Render("expected"), m.ExpectedType,
			warnStyle.Render("got "+m.DetectedType))
	}
	return b.String()
}

// consoleReporter prints one line per resolved item. The mutex keeps
// lines whole when fetches run concurrently.
type consoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleReporter(out io.Writer) *consoleReporter {
	return &consoleReporter{out: out}
}

// ItemDone implements mirrortypes.Reporter.
func (r *consoleReporter) ItemDone(res mirrortypes.ItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	style := outcomeStyle(res.Outcome)
	switch res.Outcome {
	case mirrortypes.OutcomeFailed:
		fmt.Fprintf(r.out, "%s %s: %v\n", style.Render(res.Outcome.String()), res.Item.RemoteKey, res.Err)
	default:
		fmt.Fprintf(r.out, "%s %s\n", style.Render(res.Outcome.String()), res.Item.RemoteKey)
	}
}

// RunDone implements mirrortypes.Reporter. The summary is rendered
// from the run result instead.
func (r *consoleReporter) RunDone(mirrortypes.RunStats) {}

// formatBytes renders a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
