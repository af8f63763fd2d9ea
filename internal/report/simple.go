package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/killthrush/alexa-topsites/internal/model"
)

// defaultRankingLimit caps the ranking table in non-verbose output so a
// thousand-site run still fits on a terminal.
const defaultRankingLimit = 25

// defaultHeaderLimit caps the header frequency table in non-verbose output.
const defaultHeaderLimit = 15

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose lifts the ranking and header table caps and prints every
	// failed domain instead of a count.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with full tables and error detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeRanking(&sb, report)
	w.writeHeaderStats(&sb, report)
	w.writeErrors(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       TOP SITES SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Target Sites:   %d\n", report.TotalSites))
	sb.WriteString(fmt.Sprintf("Attempted:      %d\n", report.TotalAttempted))

	if report.TotalAttempted < report.TotalSites {
		sb.WriteString("Status:         INCOMPLETE (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the aggregate numbers section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Succeeded:          %d\n", report.SuccessCount()))
	sb.WriteString(fmt.Sprintf("  Failed:             %d\n", report.FailureCount()))
	sb.WriteString(fmt.Sprintf("  Average Word Count: %.2f\n", report.AverageWordCount))
	sb.WriteString(fmt.Sprintf("  Scan Duration:      %s\n", formatDuration(report.ScanDurationMS)))
	sb.WriteString("\n")
}

// writeRanking writes the word count ranking table.
func (w *SimpleWriter) writeRanking(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("WORD COUNT RANKING\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Sites) == 0 {
		sb.WriteString("  No sites were successfully scanned\n\n")
		return
	}

	limit := len(report.Sites)
	if !w.verbose && limit > defaultRankingLimit {
		limit = defaultRankingLimit
	}

	sb.WriteString(fmt.Sprintf("  %4s  %-40s %10s %10s\n", "RANK", "DOMAIN", "WORDS", "FETCH MS"))
	for _, site := range report.Sites[:limit] {
		sb.WriteString(fmt.Sprintf("  %4d  %-40s %10d %10d\n",
			site.Rank, site.Domain, site.WordCount, site.ElapsedMS))
	}

	if hidden := len(report.Sites) - limit; hidden > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more (use verbose output to see all)\n", hidden))
	}
	sb.WriteString("\n")
}

// writeHeaderStats writes the response header frequency table.
func (w *SimpleWriter) writeHeaderStats(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESPONSE HEADER FREQUENCY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Headers) == 0 {
		sb.WriteString("  No response headers observed\n\n")
		return
	}

	limit := defaultHeaderLimit
	if w.verbose {
		limit = len(report.Headers)
	}

	sb.WriteString(fmt.Sprintf("  %-40s %8s %9s\n", "HEADER", "SITES", "PERCENT"))
	for _, stat := range report.TopHeaders(limit) {
		sb.WriteString(fmt.Sprintf("  %-40s %8d %8.1f%%\n",
			stat.Name, stat.SiteCount, stat.Percentage))
	}

	if hidden := len(report.Headers) - limit; hidden > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more (use verbose output to see all)\n", hidden))
	}
	sb.WriteString("\n")
}

// writeErrors writes the failed fetches section.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.RunReport) {
	if len(report.Errors) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED SITES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !w.verbose {
		sb.WriteString(fmt.Sprintf("  %d site(s) failed (use verbose output for details)\n\n", len(report.Errors)))
		return
	}

	for _, e := range report.Errors {
		sb.WriteString(fmt.Sprintf("  [x] %s: %s\n", e.Domain, e.Message))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by topsites\n")
	sb.WriteString("https://github.com/killthrush/alexa-topsites\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// formatDuration renders a millisecond duration as a human-friendly value.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("%dm%02.0fs", int(seconds)/60, seconds-float64(int(seconds)/60*60))
}
