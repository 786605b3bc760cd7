package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/appdx/internal/extract"
	"github.com/dm/appdx/internal/format"
	"github.com/dm/appdx/internal/model"
)

// maxRenderCols caps how many columns the terminal table shows; wide tables
// keep every column in the export.
const maxRenderCols = 9

// tabOrder fixes the category tab sequence on the results screen.
var tabOrder = []model.Category{
	model.CategoryOverview,
	model.CategoryApplications,
	model.CategoryBusinessTransactions,
	model.CategoryTiers,
	model.CategoryNodes,
	model.CategoryBackends,
	model.CategoryHealthRules,
	model.CategorySnapshots,
	model.CategoryServers,
	model.CategoryEvents,
	model.CategoryViolations,
	model.CategoryLicenses,
	model.CategoryInformation,
}

// ResultsModel browses the finished extraction: one tab per non-empty
// category, each a searchable, sortable, paginated table.
type ResultsModel struct {
	tableModel
	result *extract.Result

	tabs   []model.Category
	active int

	displayIdx []int // filtered and sorted row indices of the active table
}

func newResultsModel(res *extract.Result) ResultsModel {
	m := ResultsModel{
		tableModel: newTableModel(),
		result:     res,
	}
	for _, cat := range tabOrder {
		if t, ok := res.Tables[cat]; ok && !t.Empty() {
			m.tabs = append(m.tabs, cat)
		}
	}
	m.refresh()
	return m
}

// activeTable returns the table under the active tab, never nil.
func (m *ResultsModel) activeTable() *model.Table {
	if len(m.tabs) == 0 {
		return model.NewTable("empty")
	}
	return m.result.Table(m.tabs[m.active])
}

// refresh re-applies filter and sort to the active table.
func (m *ResultsModel) refresh() {
	t := m.activeTable()
	m.displayIdx = sortRows(t, filterRows(t, m.search), m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayIdx))
}

// Update handles tab switching plus the embedded table navigation.
func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.searching {
		switch {
		case key.Matches(keyMsg, keys.Tab):
			if len(m.tabs) > 0 {
				m.active = (m.active + 1) % len(m.tabs)
				m.resetView()
			}
			return m, nil
		case key.Matches(keyMsg, keys.ShiftTab):
			if len(m.tabs) > 0 {
				m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
				m.resetView()
			}
			return m, nil
		}
	}

	prevSort, prevDesc, prevSearch := m.sortCol, m.sortDesc, m.search
	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base
	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		m.refresh()
	} else {
		m.clampPage(len(m.displayIdx))
	}
	return m, cmd
}

// resetView clears per-tab state when switching tabs.
func (m *ResultsModel) resetView() {
	m.sortCol = -1
	m.sortDesc = false
	m.search = ""
	m.input.SetValue("")
	m.page = 0
	m.refresh()
}

// View renders the tab bar, the active table page and the error report
// summary.
func (m *ResultsModel) View(width int) string {
	var parts []string
	parts = append(parts, m.renderTabs())
	parts = append(parts, m.renderTable(width))
	parts = append(parts, StyleDim.Render(
		"run took "+format.FormatDuration(m.result.Finished.Sub(m.result.Started)),
	))

	if !m.result.Report.Empty() {
		parts = append(parts, StyleStatusWarn.Render(
			fmt.Sprintf("%d error(s) during the run; see the Run Errors sheet after export", m.result.Report.Len()),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *ResultsModel) renderTabs() string {
	if len(m.tabs) == 0 {
		return StyleDim.Render("(no data collected)")
	}
	rendered := make([]string, len(m.tabs))
	for i, cat := range m.tabs {
		label := strings.ReplaceAll(string(cat), "_", " ")
		if i == m.active {
			rendered[i] = StyleTabOn.Render(label)
		} else {
			rendered[i] = StyleTab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, rendered...)
}

func (m *ResultsModel) renderTable(width int) string {
	t := m.activeTable()
	cols := t.Columns
	clipped := 0
	if len(cols) > maxRenderCols {
		clipped = len(cols) - maxRenderCols
		cols = cols[:maxRenderCols]
	}

	pc := pageCount(len(m.displayIdx), m.pageSize)
	hdr := m.renderStatus(pc, clipped)

	pageIdx := currentPageIndices(m.displayIdx, m.page, m.pageSize)
	if len(pageIdx) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no rows)"))
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		if i == m.sortCol {
			arrow := "↓"
			if !m.sortDesc {
				arrow = "↑"
			}
			headers[i] = c + arrow
		} else {
			headers[i] = c
		}
	}

	sortCol := m.sortCol
	body := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			return base.Foreground(colorWhite)
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if width > 0 {
		body = body.Width(width)
	}

	for _, idx := range pageIdx {
		cells := make([]string, len(cols))
		for c, col := range cols {
			cells[c] = t.Cell(idx, col).Display()
		}
		body = body.Row(cells...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, hdr, body.String())
}

// renderStatus renders the title bar with search, sort and page hints.
func (m *ResultsModel) renderStatus(pageCount, clippedCols int) string {
	pageInfo := fmt.Sprintf("Page %d/%d  %s rows", m.page+1, pageCount, format.FormatNumber(int64(len(m.displayIdx))))

	var right string
	switch {
	case m.searching:
		right = "Search: " + m.input.View()
	case m.search != "":
		right = fmt.Sprintf("filter=%q  %s", m.search, pageInfo)
	default:
		right = fmt.Sprintf("[/: search]  [1-9: sort]  [←→: page]  [e: export]  %s", pageInfo)
	}
	if clippedCols > 0 {
		right += StyleDim.Render(fmt.Sprintf("  (+%d cols in export)", clippedCols))
	}
	return StyleDim.Render(m.activeTable().Name + "  " + right)
}
