package export

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dm/appdx/internal/extract"
	"github.com/dm/appdx/internal/model"
)

func sampleResult() *extract.Result {
	apps := model.NewTable(string(model.CategoryApplications))
	apps.AddColumns("app_id", "app_name")
	apps.AddRow(model.Row{"app_id": model.Int(1), "app_name": model.String("shop")})

	overview := model.NewTable(string(model.CategoryOverview))
	overview.AddColumns("app_id", "app_name", "tier_count")
	overview.AddRow(model.Row{
		"app_id":     model.Int(1),
		"app_name":   model.String("shop"),
		"tier_count": model.NoData(),
	})

	return &extract.Result{
		Tables: map[model.Category]*model.Table{
			model.CategoryApplications: apps,
			model.CategoryOverview:     overview,
		},
	}
}

func TestExcelWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Excel(path, sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Summary sheets come before the raw data, and no default Sheet1 survives.
	assert.Equal(t, []string{"Overview", "Applications"}, f.GetSheetList())

	name, err := f.GetCellValue("Applications", "B2")
	require.NoError(t, err)
	assert.Equal(t, "shop", name)

	head, err := f.GetCellValue("Applications", "A1")
	require.NoError(t, err)
	assert.Equal(t, "app_id", head)
}

func TestExcelLeavesNoDataCellsBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Excel(path, sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Overview", "C2")
	require.NoError(t, err)
	assert.Empty(t, v, "uncollected cells export blank, not as a marker string")
}

func TestExcelWritesErrorSheet(t *testing.T) {
	res := sampleResult()
	res.Report.Add(1, "shop", model.CategoryTiers, errors.New("boom"))
	res.Report.Add(0, "", model.CategoryServers, errors.New("whole-controller failure"))

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Excel(path, res))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Run Errors")

	app, err := f.GetCellValue("Run Errors", "A2")
	require.NoError(t, err)
	assert.Equal(t, "shop", app)

	msg, err := f.GetCellValue("Run Errors", "C2")
	require.NoError(t, err)
	assert.Equal(t, "boom", msg)

	// Controller-wide entries have no application; the cell stays blank.
	app, err = f.GetCellValue("Run Errors", "A3")
	require.NoError(t, err)
	assert.Empty(t, app)
}

func TestExcelEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Excel(path, &extract.Result{Tables: map[model.Category]*model.Table{}}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Empty"}, f.GetSheetList())
}
