// Package report serializes batch results to xlsx workbooks, one per
// (provider, iteration), for comparison against the human-auditor sheets.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"clinex/internal/domain"
)

// SheetName is the single sheet every result workbook carries.
const SheetName = "Results"

// Fixed columns around the per-item judgment columns.
const (
	colPatientID = "Patient ID"
	colModel     = "Model"
	colIteration = "Iteration"
	colResponse  = "AI Response"
	colContext   = "Context"
	colError     = "Error"
)

// Writer accumulates result rows in memory and saves the workbook once at the
// end of the run. There is no incremental persistence: a crash mid-run loses
// unwritten rows, which is acceptable for an offline batch.
type Writer struct {
	task *domain.ExtractionTask
	file *excelize.File
	next int // next row number to write (1-based; 1 is the header)
}

// Columns returns the header row for a task's workbook.
func Columns(task *domain.ExtractionTask) []string {
	cols := []string{colPatientID, colModel, colIteration}
	cols = append(cols, task.ItemNames()...)
	return append(cols, colResponse, colContext, colError)
}

// NewWriter creates a workbook writer for one task.
func NewWriter(task *domain.ExtractionTask) (*Writer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("report: naming sheet: %w", err)
	}

	header := make([]interface{}, 0, len(task.Items)+6)
	for _, c := range Columns(task) {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("report: writing header: %w", err)
	}

	return &Writer{task: task, file: f, next: 2}, nil
}

// Append adds one result row. Judgments for items missing from the row are
// written as Unknown.
func (w *Writer) Append(row *domain.ResultRow) error {
	cells := make([]interface{}, 0, len(w.task.Items)+6)
	cells = append(cells, row.CaseID, row.Model, row.Iteration)
	for _, name := range w.task.ItemNames() {
		cells = append(cells, string(row.Value(name)))
	}
	cells = append(cells, row.Response, row.Context, row.ErrorNote)

	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		return fmt.Errorf("report: row coordinates: %w", err)
	}
	if err := w.file.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("report: writing row %d: %w", w.next, err)
	}
	w.next++
	return nil
}

// Rows returns how many result rows have been appended.
func (w *Writer) Rows() int {
	return w.next - 2
}

// SaveAs writes the workbook to disk and releases it.
func (w *Writer) SaveAs(path string) error {
	defer func() { _ = w.file.Close() }()
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("report: saving %s: %w", path, err)
	}
	return nil
}

// Read loads a result workbook back into rows. Provider is not stored in the
// workbook (the filename carries the nickname), so it is supplied by the
// caller and may be empty.
func Read(path string, task *domain.ExtractionTask, provider string) ([]domain.ResultRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	raw, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("report: reading sheet: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("report: %s has no header row", path)
	}

	// Column positions by header name; tolerates reordered columns.
	pos := make(map[string]int, len(raw[0]))
	for i, h := range raw[0] {
		pos[h] = i
	}
	at := func(row []string, col string) string {
		i, ok := pos[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]domain.ResultRow, 0, len(raw)-1)
	for _, r := range raw[1:] {
		iteration, _ := strconv.Atoi(at(r, colIteration))
		row := domain.ResultRow{
			CaseID:    at(r, colPatientID),
			Provider:  provider,
			Model:     at(r, colModel),
			Iteration: iteration,
			Values:    make(map[string]domain.JudgmentValue, len(task.Items)),
			Response:  at(r, colResponse),
			Context:   at(r, colContext),
			ErrorNote: at(r, colError),
		}
		for _, name := range task.ItemNames() {
			v := at(r, name)
			if v == "" {
				v = string(domain.JudgmentUnknown)
			}
			row.Values[name] = domain.JudgmentValue(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// sanitize cleans a name component for use in an output filename.
func sanitize(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the workbook name for one (provider, iteration):
// {task}_{nickname}_run{N}.xlsx
func BuildFilename(taskName, nickname string, iteration int) string {
	return fmt.Sprintf("%s_%s_run%d.xlsx", sanitize(taskName), sanitize(nickname), iteration)
}
