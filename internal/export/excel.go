// Package export writes an extraction result to a multi-sheet Excel
// workbook, one sheet per category plus the run error report.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dm/appdx/internal/extract"
	"github.com/dm/appdx/internal/model"
)

// sheetOrder fixes the workbook layout. Excel caps sheet names at 31
// characters, so the titles here stay short.
var sheetOrder = []struct {
	cat   model.Category
	title string
}{
	{model.CategoryInformation, "Info"},
	{model.CategoryOverview, "Overview"},
	{model.CategoryLicenses, "License Usage"},
	{model.CategoryApplications, "Applications"},
	{model.CategoryBusinessTransactions, "Business Transactions"},
	{model.CategoryTiers, "Tiers"},
	{model.CategoryNodes, "Nodes"},
	{model.CategoryBackends, "Backends"},
	{model.CategoryHealthRules, "Health Rules"},
	{model.CategorySnapshots, "Snapshots"},
	{model.CategoryServers, "Servers"},
	{model.CategoryViolations, "HR Violations"},
	{model.CategoryEvents, "Events"},
}

const errorSheet = "Run Errors"

// Excel writes the result to path, creating one sheet per non-empty
// category. Cells that were never collected are left blank rather than
// rendered as a marker string, so spreadsheet filters and counts stay
// meaningful.
func Excel(path string, res *extract.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	wrote := false
	for _, s := range sheetOrder {
		t, ok := res.Tables[s.cat]
		if !ok || t.Empty() {
			continue
		}
		if err := writeSheet(f, s.title, t, header, !wrote); err != nil {
			return err
		}
		wrote = true
	}

	if !res.Report.Empty() {
		if err := writeErrors(f, &res.Report, header, !wrote); err != nil {
			return err
		}
		wrote = true
	}
	if !wrote {
		// Nothing collected at all; ship the information-free workbook
		// rather than an unopenable zero-sheet file.
		f.SetSheetName("Sheet1", "Empty")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// writeSheet renders one table. The first sheet reuses the workbook's
// default sheet so no empty "Sheet1" survives.
func writeSheet(f *excelize.File, title string, t *model.Table, header int, first bool) error {
	if first {
		if err := f.SetSheetName("Sheet1", title); err != nil {
			return fmt.Errorf("export: sheet %s: %w", title, err)
		}
	} else if _, err := f.NewSheet(title); err != nil {
		return fmt.Errorf("export: sheet %s: %w", title, err)
	}

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export: sheet %s: %w", title, err)
		}
		if err := f.SetCellValue(title, cell, col); err != nil {
			return fmt.Errorf("export: sheet %s: %w", title, err)
		}
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return fmt.Errorf("export: sheet %s: %w", title, err)
		}
		if err := f.SetCellStyle(title, "A1", last, header); err != nil {
			return fmt.Errorf("export: sheet %s: %w", title, err)
		}
	}

	for r := 0; r < t.Len(); r++ {
		for c, col := range t.Columns {
			v := t.Cell(r, col)
			if !v.HasData() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("export: sheet %s: %w", title, err)
			}
			if err := f.SetCellValue(title, cell, v.Value()); err != nil {
				return fmt.Errorf("export: sheet %s: %w", title, err)
			}
		}
	}
	return nil
}

func writeErrors(f *excelize.File, report *model.RunReport, header int, first bool) error {
	t := model.NewTable(errorSheet)
	t.AddColumns("application", "category", "error")
	for _, e := range report.Errors {
		app := model.String(e.AppName)
		if e.AppName == "" {
			app = model.NoData()
		}
		t.AddRow(model.Row{
			"application": app,
			"category":    model.String(string(e.Category)),
			"error":       model.String(e.Err.Error()),
		})
	}
	return writeSheet(f, errorSheet, t, header, first)
}
