// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayComparison], [DisplayNotice], [DisplayUploadResult].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatComparisonMarkdown], [FormatChannelProgress].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteComparisonToFile], [WriteComparisonXLSX].

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/agbru/ragcompare/internal/errors"
	"github.com/agbru/ragcompare/internal/orchestration"
)

// Export formats, selected by file extension.
const (
	ExtMarkdown = ".md"
	ExtXLSX     = ".xlsx"
)

// xlsxSheet is the name of the worksheet holding the comparison.
const xlsxSheet = "Comparison"

// WriteComparisonToFile exports cmp to path. The format follows the file
// extension: ".md" for markdown, ".xlsx" for a spreadsheet. Missing parent
// directories are created.
func WriteComparisonToFile(cmp orchestration.Comparison, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ExtMarkdown && ext != ExtXLSX {
		return apperrors.ValidationError{
			Field:   "output",
			Message: fmt.Sprintf("unsupported export format %q (use %s or %s)", ext, ExtMarkdown, ExtXLSX),
		}
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if ext == ExtXLSX {
		return WriteComparisonXLSX(cmp, path)
	}
	if err := os.WriteFile(path, []byte(FormatComparisonMarkdown(cmp)), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// WriteComparisonXLSX writes cmp as a one-sheet workbook: the question on top,
// then one row per channel.
func WriteComparisonXLSX(cmp orchestration.Comparison, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Question", cmp.Question},
		{"Document", cmp.DocumentID},
		{},
		{"Channel", "Answer", "Duration (ms)", "Source", "Error"},
	}
	for _, res := range cmp.Results {
		errText := ""
		if res.Outcome.Err != nil {
			errText = res.Outcome.Err.Error()
		}
		rows = append(rows, []any{
			res.Name,
			res.Outcome.Text,
			res.Duration.Milliseconds(),
			sourceLabel(res),
			errText,
		})
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return err
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A2", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A4", "E4", bold); err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}
	if last := len(rows); last > 4 {
		if err := f.SetCellStyle(xlsxSheet, "B5", fmt.Sprintf("B%d", last), wrap); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", 80); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "C", "E", 16); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func sourceLabel(res orchestration.ChannelResult) string {
	switch {
	case res.Outcome.Canceled:
		return "interrupted"
	case res.Outcome.UsedFallback:
		return "demo"
	case res.Outcome.Err != nil:
		return "failed"
	}
	return "backend"
}
