package workbook

import (
	"fmt"
	"log"
	"strings"

	"registry-harvester/models"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the sheet name length limit of the XLSX format.
const maxSheetName = 31

// Writer assembles harvest results into a multi-sheet XLSX workbook.
// Nothing touches disk until Save, so a failed harvest never leaves a
// partial file behind.
type Writer struct {
	file   *excelize.File
	sheets int
}

// NewWriter creates an empty workbook writer.
func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet writes one harvest result into its own sheet, named after the
// result (sanitized and truncated to the format limit). The header row
// is written first unless any row disagrees with its arity, in which
// case the sheet degrades to positional columns.
func (w *Writer) AddSheet(result *models.HarvestResult) error {
	name := SanitizeSheetName(result.Name)

	if w.sheets == 0 {
		// Reuse the default sheet excelize creates with the file.
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}
	w.sheets++

	rowNum := 1
	header := result.Header
	if len(header) > 0 && !aritiesMatch(header, result.Rows) {
		log.Printf("Warning: header/row arity mismatch in %q, writing positional columns\n", result.Name)
		header = nil
	}

	if len(header) > 0 {
		if err := w.writeRow(name, rowNum, header); err != nil {
			return err
		}
		rowNum++
	}

	for _, row := range result.Rows {
		if err := w.writeRow(name, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}

	return nil
}

// Save writes the workbook to disk.
func (w *Writer) Save(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("no sheets to save")
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// File exposes the underlying workbook, used by tests.
func (w *Writer) File() *excelize.File {
	return w.file
}

func (w *Writer) writeRow(sheet string, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := w.file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func aritiesMatch(header models.Header, rows []models.Row) bool {
	for _, row := range rows {
		if len(row) != len(header) {
			return false
		}
	}
	return true
}

// SanitizeSheetName strips characters the XLSX format rejects and
// truncates to the 31-character sheet name limit.
func SanitizeSheetName(name string) string {
	invalid := []string{"/", "\\", "?", "*", "[", "]", ":"}
	result := name
	for _, ch := range invalid {
		result = strings.ReplaceAll(result, ch, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	if len(result) > maxSheetName {
		result = truncateRunes(result, maxSheetName)
	}
	return result
}

// truncateRunes cuts at a rune boundary so multi-byte names survive.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
