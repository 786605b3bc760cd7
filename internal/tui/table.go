package tui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/appdx/internal/model"
)

// tableModel is the generic base for the paginated, searchable, sortable
// result tables.
type tableModel struct {
	sortCol   int // -1 = unsorted
	sortDesc  bool
	page      int // 0-indexed
	pageSize  int
	search    string
	searching bool
	input     textinput.Model
}

// newTableModel initialises a tableModel with sensible defaults.
func newTableModel() tableModel {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 80
	return tableModel{
		sortCol:  -1,
		pageSize: 15,
		input:    ti,
	}
}

// Update handles keyboard input for sorting, pagination, and search.
func (t tableModel) Update(msg tea.Msg) (tableModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	if t.searching {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			t.searching = false
			t.input.Blur()
			if t.input.Value() == "" {
				t.search = ""
			}
			return t, nil
		case keyMsg.String() == "enter":
			t.search = t.input.Value()
			t.searching = false
			t.input.Blur()
			t.page = 0
			return t, nil
		default:
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(msg)
			return t, cmd
		}
	}

	switch {
	case key.Matches(keyMsg, keys.Search):
		t.searching = true
		t.input.SetValue(t.search)
		t.input.Focus()
		return t, textinput.Blink
	case key.Matches(keyMsg, keys.Escape):
		t.search = ""
		t.input.SetValue("")
		t.page = 0
		return t, nil
	case key.Matches(keyMsg, keys.PrevPage):
		if t.page > 0 {
			t.page--
		}
		return t, nil
	case key.Matches(keyMsg, keys.NextPage):
		t.page++
		return t, nil
	default:
		// Digit keys 1-9 set the sort column.
		col := digitToCol(keyMsg.String())
		if col >= 0 {
			if col == t.sortCol {
				t.sortDesc = !t.sortDesc
			} else {
				t.sortCol = col
				t.sortDesc = true
			}
			t.page = 0
		}
	}
	return t, nil
}

// digitToCol converts a "1"-"9" key string to a 0-indexed column number.
// Returns -1 for any other string.
func digitToCol(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1')
	}
	return -1
}

// pageCount returns the total number of pages, always at least 1.
func pageCount(totalRows, pageSize int) int {
	if totalRows == 0 || pageSize <= 0 {
		return 1
	}
	c := totalRows / pageSize
	if totalRows%pageSize != 0 {
		c++
	}
	return c
}

// currentPageIndices returns the slice of row indices visible on the current
// page.
func currentPageIndices(allIndices []int, page, pageSize int) []int {
	if pageSize <= 0 || len(allIndices) == 0 {
		return allIndices
	}
	start := page * pageSize
	if start >= len(allIndices) {
		start = 0
	}
	end := start + pageSize
	if end > len(allIndices) {
		end = len(allIndices)
	}
	return allIndices[start:end]
}

// clampPage keeps the page index within valid bounds.
func (t *tableModel) clampPage(totalRows int) {
	pc := pageCount(totalRows, t.pageSize)
	if t.page >= pc {
		t.page = pc - 1
	}
	if t.page < 0 {
		t.page = 0
	}
}

// filterRows returns the indices of rows where any cell contains the search
// term, case-insensitive. An empty term keeps every row.
func filterRows(t *model.Table, search string) []int {
	idx := make([]int, 0, t.Len())
	needle := strings.ToLower(search)
	for i, row := range t.Rows {
		if needle == "" {
			idx = append(idx, i)
			continue
		}
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell.Display()), needle) {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// sortRows orders row indices by the given column. Values that parse as
// numbers sort numerically; no-data cells always sort last.
func sortRows(t *model.Table, indices []int, col int, desc bool) []int {
	if col < 0 || col >= len(t.Columns) {
		return indices
	}
	name := t.Columns[col]
	out := make([]int, len(indices))
	copy(out, indices)

	sort.SliceStable(out, func(a, b int) bool {
		ca, cb := t.Cell(out[a], name), t.Cell(out[b], name)
		if ca.HasData() != cb.HasData() {
			return ca.HasData()
		}
		less := cellLess(ca.Value(), cb.Value())
		if desc {
			return !less && ca.Value() != cb.Value()
		}
		return less
	})
	return out
}

func cellLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
