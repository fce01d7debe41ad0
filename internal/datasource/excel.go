package datasource

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/moorberry/gridline/pkg/model"
)

// readExcel reads one sheet of a workbook. opts.Table selects the sheet by
// name; otherwise the first sheet is used. Row one is the header row.
// Legacy binary .xls workbooks are not parseable by excelize and surface a
// normal I/O error here.
func readExcel(path string, opts Options) (model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := opts.Table
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return model.Table{}, fmt.Errorf("%s: workbook has no sheets", path)
		}
		sheet = sheets[0]
		if len(sheets) > 1 {
			opts.warn()(fmt.Sprintf("%s: multiple sheets, reading %q", path, sheet))
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return model.Table{}, fmt.Errorf("%s: sheet %q is empty", path, sheet)
	}

	// GetRows already trims trailing empty cells, which yields the ragged
	// rows the store is specified to tolerate.
	return model.Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// writeExcel writes the table as a single-sheet workbook.
func writeExcel(path string, table model.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.Table
	if sheet == "" {
		sheet = "Sheet1"
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}
	f.SetActiveSheet(index)

	writeRow := func(rowNum int, cells []string) error {
		if len(cells) == 0 {
			return nil
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &cells)
	}

	if err := writeRow(1, table.Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range table.Rows {
		if err := writeRow(i+2, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	// Drop the default sheet when the caller named a different one.
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
