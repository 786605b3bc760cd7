package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/appdx/internal/client"
)

func testApps() []client.Application {
	return []client.Application{
		{ID: 1, Name: "shop"},
		{ID: 2, Name: "billing"},
		{ID: 3, Name: "auth"},
	}
}

func TestSelectDefaults(t *testing.T) {
	m := newSelectModel(testApps(), 60)
	sel := m.Selection()

	assert.Nil(t, sel.AppIDs, "all applications checked means no filter")
	assert.True(t, sel.RetrieveAPM)
	assert.True(t, sel.RetrieveServers)
	assert.False(t, sel.CalcAPMAvailability)
	assert.False(t, sel.PullSnapshots)
	assert.False(t, sel.EnableLicenses, "license estimation stays opt-in")
	assert.NotEmpty(t, sel.EventTypes)
	assert.NotEmpty(t, sel.EventSeverities)
}

func TestSelectUncheckingAppFilters(t *testing.T) {
	m := newSelectModel(testApps(), 60)

	// Move to the second application and uncheck it.
	m, _ = m.Update(keyType(tea.KeyDown))
	m, _ = m.Update(keyType(tea.KeySpace))

	sel := m.Selection()
	require.Len(t, sel.AppIDs, 2)
	assert.Equal(t, []int64{1, 3}, sel.AppIDs)
}

func TestSelectToggleAll(t *testing.T) {
	m := newSelectModel(testApps(), 60)

	m, _ = m.Update(keyType(tea.KeySpace)) // uncheck first
	m, _ = m.Update(keyRunes("a"))         // one unchecked, so check everything
	assert.Nil(t, m.Selection().AppIDs)

	m, _ = m.Update(keyRunes("a")) // all checked, so uncheck everything
	assert.Empty(t, m.Selection().AppIDs)
}

func TestSelectOptionsPane(t *testing.T) {
	m := newSelectModel(testApps(), 60)

	m, _ = m.Update(keyType(tea.KeyTab))
	require.Equal(t, paneOptions, m.pane)

	// Walk down to the snapshots option and enable it.
	for i := 0; i < optSnapshots; i++ {
		m, _ = m.Update(keyType(tea.KeyDown))
	}
	m, _ = m.Update(keyType(tea.KeySpace))
	assert.True(t, m.Selection().PullSnapshots)

	// Disable APM retrieval: back up to the first option.
	for i := 0; i < optSnapshots; i++ {
		m, _ = m.Update(keyType(tea.KeyUp))
	}
	m, _ = m.Update(keyType(tea.KeySpace))
	assert.False(t, m.Selection().RetrieveAPM)
}

func TestSelectPaneCycle(t *testing.T) {
	m := newSelectModel(testApps(), 60)
	require.Equal(t, paneApps, m.pane)

	m, _ = m.Update(keyType(tea.KeyTab))
	assert.Equal(t, paneOptions, m.pane)
	m, _ = m.Update(keyType(tea.KeyTab))
	assert.Equal(t, paneWindow, m.pane)
	m, _ = m.Update(keyType(tea.KeyTab))
	assert.Equal(t, paneApps, m.pane)

	m, _ = m.Update(keyType(tea.KeyShiftTab))
	assert.Equal(t, paneWindow, m.pane)
}

func TestSelectWindowOverride(t *testing.T) {
	m := newSelectModel(testApps(), 60)

	// Untouched field means no override.
	_, ok := m.WindowMins()
	assert.False(t, ok)

	m, _ = m.Update(keyType(tea.KeyTab))
	m, _ = m.Update(keyType(tea.KeyTab))
	require.Equal(t, paneWindow, m.pane)

	m, _ = m.Update(keyType(tea.KeyBackspace))
	m, _ = m.Update(keyType(tea.KeyBackspace))
	m, _ = m.Update(keyRunes("240"))

	mins, ok := m.WindowMins()
	require.True(t, ok)
	assert.Equal(t, 240, mins)
}

func TestSelectWindowRejectsGarbage(t *testing.T) {
	m := newSelectModel(testApps(), 60)
	m.setPane(paneWindow)

	m, _ = m.Update(keyRunes("x"))
	_, ok := m.WindowMins()
	assert.False(t, ok)
}

func TestSelectDebugToggle(t *testing.T) {
	m := newSelectModel(testApps(), 60)
	assert.False(t, m.DebugEnabled())

	m, _ = m.Update(keyType(tea.KeyTab))
	for i := 0; i < optDebug; i++ {
		m, _ = m.Update(keyType(tea.KeyDown))
	}
	m, _ = m.Update(keyType(tea.KeySpace))
	assert.True(t, m.DebugEnabled())
	assert.False(t, m.Selection().EnableLicenses, "debug flag is not an extraction option")
}

func TestSelectConfirm(t *testing.T) {
	m := newSelectModel(testApps(), 60)
	require.False(t, m.confirmed)

	m, _ = m.Update(keyType(tea.KeyEnter))
	assert.True(t, m.confirmed)
}

func TestSelectViewRendersCounts(t *testing.T) {
	m := newSelectModel(testApps(), 60)
	view := m.View()

	assert.Contains(t, view, "Applications (3/3)")
	assert.Contains(t, view, "[x] shop")
	assert.Contains(t, view, "License estimation (BETA)")
}
