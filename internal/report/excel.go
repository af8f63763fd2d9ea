package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/killthrush/alexa-topsites/internal/model"
)

// Sheet names in the generated workbook.
const (
	summarySheet = "Summary"
	sitesSheet   = "Sites"
	headersSheet = "Headers"
	errorsSheet  = "Errors"
)

// ExcelWriter outputs reports as an Excel workbook.
// This format is designed for offline analysis: the ranking and header
// tables land in separate sheets so they can be sorted and filtered
// without any tooling.
type ExcelWriter struct {
	baseWriter
}

// NewExcelWriter creates an ExcelWriter that outputs to the given writer.
func NewExcelWriter(output io.Writer) *ExcelWriter {
	return &ExcelWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as a workbook with one sheet per section.
func (w *ExcelWriter) Write(report *model.RunReport) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook, nothing to release

	if err := w.buildWorkbook(f, report); err != nil {
		return 0, err
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// buildWorkbook fills the workbook sheets from the report.
func (w *ExcelWriter) buildWorkbook(f *excelize.File, report *model.RunReport) error {
	// The default sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	if err := w.writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := w.writeSitesSheet(f, report); err != nil {
		return err
	}
	if err := w.writeHeadersSheet(f, report); err != nil {
		return err
	}
	if len(report.Errors) > 0 {
		if err := w.writeErrorsSheet(f, report); err != nil {
			return err
		}
	}

	return nil
}

// writeSummarySheet writes the aggregate run numbers.
func (w *ExcelWriter) writeSummarySheet(f *excelize.File, report *model.RunReport) error {
	rows := [][]interface{}{
		{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"Target Sites", report.TotalSites},
		{"Attempted", report.TotalAttempted},
		{"Succeeded", report.SuccessCount()},
		{"Failed", report.FailureCount()},
		{"Average Word Count", report.AverageWordCount},
		{"Scan Duration (ms)", report.ScanDurationMS},
	}
	return writeRows(f, summarySheet, rows)
}

// writeSitesSheet writes the ranked per-site results.
func (w *ExcelWriter) writeSitesSheet(f *excelize.File, report *model.RunReport) error {
	if _, err := f.NewSheet(sitesSheet); err != nil {
		return fmt.Errorf("failed to create sites sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(report.Sites)+1)
	rows = append(rows, []interface{}{"Rank", "Domain", "Word Count", "Fetch (ms)"})
	for _, site := range report.Sites {
		rows = append(rows, []interface{}{site.Rank, site.Domain, site.WordCount, site.ElapsedMS})
	}
	return writeRows(f, sitesSheet, rows)
}

// writeHeadersSheet writes the header frequency distribution.
func (w *ExcelWriter) writeHeadersSheet(f *excelize.File, report *model.RunReport) error {
	if _, err := f.NewSheet(headersSheet); err != nil {
		return fmt.Errorf("failed to create headers sheet: %w", err)
	}

	stats := report.TopHeaders(len(report.Headers))
	rows := make([][]interface{}, 0, len(stats)+1)
	rows = append(rows, []interface{}{"Header", "Sites", "Percent of Attempted"})
	for _, stat := range stats {
		rows = append(rows, []interface{}{stat.Name, stat.SiteCount, stat.Percentage})
	}
	return writeRows(f, headersSheet, rows)
}

// writeErrorsSheet writes the failed fetches.
func (w *ExcelWriter) writeErrorsSheet(f *excelize.File, report *model.RunReport) error {
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return fmt.Errorf("failed to create errors sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(report.Errors)+1)
	rows = append(rows, []interface{}{"Domain", "Error"})
	for _, e := range report.Errors {
		rows = append(rows, []interface{}{e.Domain, e.Message})
	}
	return writeRows(f, errorsSheet, rows)
}

// writeRows writes each row starting at column A of the given sheet.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
