package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/killthrush/alexa-topsites/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeRanking(md, report)
	w.writeHeaderStats(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Top Sites Scan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Target Sites", strconv.Itoa(report.TotalSites)},
			{"Attempted", strconv.Itoa(report.TotalAttempted)},
			{"Scan Duration", formatDuration(report.ScanDurationMS)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	if report.TotalAttempted < report.TotalSites {
		return "⚠️ Incomplete (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the aggregate numbers section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Succeeded", strconv.Itoa(report.SuccessCount())},
			{"Failed", strconv.Itoa(report.FailureCount())},
			{"Average Word Count", fmt.Sprintf("%.2f", report.AverageWordCount)},
		},
	})
	md.PlainText("")

	if report.TotalAttempted > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if n := report.SuccessCount(); n > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(n))
	}
	if n := report.FailureCount(); n > 0 {
		chart.LabelAndIntValue("Failed", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the failure rate.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	switch {
	case report.TotalAttempted == 0:
		md.Caution("No sites were attempted. Check the domain source configuration.")
	case report.SuccessCount() == 0:
		md.Cautionf(
			"All %d attempted site(s) failed. Check network connectivity.",
			report.TotalAttempted,
		)
	case report.FailureCount()*2 > report.TotalAttempted:
		md.Warningf(
			"More than half of the attempted sites failed (%d of %d).",
			report.FailureCount(), report.TotalAttempted,
		)
	case report.FailureCount() > 0:
		md.Notef(
			"%d site(s) failed. Their word counts still count toward the average as zero.",
			report.FailureCount(),
		)
	default:
		md.Tip("All attempted sites were scanned successfully.")
	}
	md.PlainText("")
}

// writeRanking writes the word count ranking table.
func (w *MarkdownWriter) writeRanking(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Word Count Ranking")
	md.PlainText("")

	if len(report.Sites) == 0 {
		md.PlainText("No sites were successfully scanned.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Sites))
	for i, site := range report.Sites {
		rows[i] = []string{
			strconv.Itoa(site.Rank),
			"`" + site.Domain + "`",
			strconv.Itoa(site.WordCount),
			strconv.FormatInt(site.ElapsedMS, 10),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Domain", "Words", "Fetch (ms)"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeHeaderStats writes the response header frequency table.
func (w *MarkdownWriter) writeHeaderStats(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Response Header Frequency")
	md.PlainText("")

	if len(report.Headers) == 0 {
		md.PlainText("No response headers observed.")
		md.PlainText("")
		return
	}

	stats := report.TopHeaders(len(report.Headers))
	rows := make([][]string, len(stats))
	for i, stat := range stats {
		rows[i] = []string{
			"`" + stat.Name + "`",
			strconv.Itoa(stat.SiteCount),
			fmt.Sprintf("%.1f%%", stat.Percentage),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Header", "Sites", "Percent of Attempted"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors writes the failed fetches table.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Errors) == 0 {
		return
	}

	md.H2("Failed Sites")
	md.PlainText("")

	rows := make([][]string, len(report.Errors))
	for i, e := range report.Errors {
		rows[i] = []string{
			"`" + e.Domain + "`",
			truncateString(e.Message, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [topsites](https://github.com/killthrush/alexa-topsites)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
