package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/appdx/internal/client"
	"github.com/dm/appdx/internal/config"
	"github.com/dm/appdx/internal/extract"
)

// selectPane identifies which half of the selection screen has focus.
type selectPane int

const (
	paneApps selectPane = iota
	paneOptions
	paneWindow
	paneCount
)

// runOption is one toggleable extraction option.
type runOption struct {
	Label   string
	Enabled bool
}

// optionIndex fixes the option order; apply() below maps it onto a Selection.
const (
	optAPM = iota
	optServers
	optAPMAvailability
	optMachineAvailability
	optSnapshots
	optEvents
	optViolations
	optLicenses
	optDebug
	optionCount
)

// SelectModel is the application and option picker shown after login.
type SelectModel struct {
	apps    []client.Application
	checked []bool
	options [optionCount]runOption

	window        textinput.Model
	windowInitial string

	pane      selectPane
	cursor    int
	optCursor int
	pageSize  int

	confirmed bool // set by enter; cleared by parent after handling
}

func newSelectModel(apps []client.Application, defaultMins int) SelectModel {
	m := SelectModel{
		apps:     apps,
		checked:  make([]bool, len(apps)),
		pageSize: 12,
	}
	for i := range m.checked {
		m.checked[i] = true
	}

	m.window = textinput.New()
	m.window.CharLimit = 5
	m.window.Placeholder = "60"
	m.window.SetValue(strconv.Itoa(defaultMins))
	m.windowInitial = m.window.Value()
	m.options[optAPM] = runOption{Label: "Application data (BTs, tiers, nodes, backends, health rules)", Enabled: true}
	m.options[optServers] = runOption{Label: "Server inventory", Enabled: true}
	m.options[optAPMAvailability] = runOption{Label: "Agent availability (per tier and node)"}
	m.options[optMachineAvailability] = runOption{Label: "Machine availability"}
	m.options[optSnapshots] = runOption{Label: "Transaction snapshots"}
	m.options[optEvents] = runOption{Label: "Events"}
	m.options[optViolations] = runOption{Label: "Health rule violations"}
	m.options[optLicenses] = runOption{Label: "License estimation (BETA)"}
	m.options[optDebug] = runOption{Label: "Verbose debug logging"}
	return m
}

// WindowMins returns the operator's time window override in minutes. ok is
// false while the field still holds its starting value or does not parse.
func (m *SelectModel) WindowMins() (int, bool) {
	v := strings.TrimSpace(m.window.Value())
	if v == "" || v == m.windowInitial {
		return 0, false
	}
	mins, err := strconv.Atoi(v)
	if err != nil || mins <= 0 {
		return 0, false
	}
	return mins, true
}

// DebugEnabled reports whether verbose logging was toggled on.
func (m *SelectModel) DebugEnabled() bool {
	return m.options[optDebug].Enabled
}

// Selection maps the checked state onto an extraction Selection. Event types
// and severities default to everything the controller can report.
func (m *SelectModel) Selection() extract.Selection {
	var ids []int64
	all := true
	for i, a := range m.apps {
		if m.checked[i] {
			ids = append(ids, a.ID)
		} else {
			all = false
		}
	}
	if all {
		ids = nil
	}
	return extract.Selection{
		AppIDs:                  ids,
		RetrieveAPM:             m.options[optAPM].Enabled,
		RetrieveServers:         m.options[optServers].Enabled,
		CalcAPMAvailability:     m.options[optAPMAvailability].Enabled,
		CalcMachineAvailability: m.options[optMachineAvailability].Enabled,
		PullSnapshots:           m.options[optSnapshots].Enabled,
		RetrieveEvents:          m.options[optEvents].Enabled,
		RetrieveViolations:      m.options[optViolations].Enabled,
		EventTypes:              config.AllEventTypes(),
		EventSeverities:         config.SeverityLevels,
		EnableLicenses:          m.options[optLicenses].Enabled,
	}
}

// Update handles navigation, toggling and the window input across the panes.
func (m SelectModel) Update(msg tea.Msg) (SelectModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Tab):
		m.setPane((m.pane + 1) % paneCount)
	case key.Matches(keyMsg, keys.ShiftTab):
		m.setPane((m.pane - 1 + paneCount) % paneCount)
	case key.Matches(keyMsg, keys.Enter):
		m.confirmed = true
	case m.pane == paneWindow:
		var cmd tea.Cmd
		m.window, cmd = m.window.Update(msg)
		return m, cmd
	case key.Matches(keyMsg, keys.Up):
		if m.pane == paneApps && m.cursor > 0 {
			m.cursor--
		} else if m.pane == paneOptions && m.optCursor > 0 {
			m.optCursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.pane == paneApps && m.cursor < len(m.apps)-1 {
			m.cursor++
		} else if m.pane == paneOptions && m.optCursor < optionCount-1 {
			m.optCursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		if m.pane == paneApps && len(m.apps) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		} else if m.pane == paneOptions {
			m.options[m.optCursor].Enabled = !m.options[m.optCursor].Enabled
		}
	case key.Matches(keyMsg, keys.All):
		if m.pane == paneApps {
			anyOff := false
			for _, c := range m.checked {
				if !c {
					anyOff = true
					break
				}
			}
			for i := range m.checked {
				m.checked[i] = anyOff
			}
		}
	}
	return m, nil
}

// setPane moves focus between the panes, keeping the window input's focus
// state in step.
func (m *SelectModel) setPane(p selectPane) {
	m.pane = p
	if p == paneWindow {
		m.window.Focus()
	} else {
		m.window.Blur()
	}
}

// View renders the selection panes side by side.
func (m *SelectModel) View() string {
	selected := 0
	for _, c := range m.checked {
		if c {
			selected++
		}
	}

	var apps strings.Builder
	title := fmt.Sprintf("Applications (%d/%d)", selected, len(m.apps))
	if m.pane == paneApps {
		apps.WriteString(StyleSelected.Render(title) + "\n")
	} else {
		apps.WriteString(StyleDim.Render(title) + "\n")
	}

	start := 0
	if m.cursor >= m.pageSize {
		start = m.cursor - m.pageSize + 1
	}
	end := start + m.pageSize
	if end > len(m.apps) {
		end = len(m.apps)
	}
	for i := start; i < end; i++ {
		apps.WriteString(checkLine(m.apps[i].Name, m.checked[i], m.pane == paneApps && i == m.cursor) + "\n")
	}
	if len(m.apps) == 0 {
		apps.WriteString(StyleDim.Render("  (no applications)") + "\n")
	}

	var opts strings.Builder
	if m.pane == paneOptions {
		opts.WriteString(StyleSelected.Render("Options") + "\n")
	} else {
		opts.WriteString(StyleDim.Render("Options") + "\n")
	}
	for i, o := range m.options {
		opts.WriteString(checkLine(o.Label, o.Enabled, m.pane == paneOptions && i == m.optCursor) + "\n")
	}

	var window strings.Builder
	if m.pane == paneWindow {
		window.WriteString(StyleSelected.Render("Time window") + "\n")
	} else {
		window.WriteString(StyleDim.Render("Time window") + "\n")
	}
	window.WriteString("minutes: " + m.window.View() + "\n")
	window.WriteString(StyleDim.Render("applies to availability, snapshots and events") + "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		StyleCard.Render(apps.String()),
		StyleCard.Render(opts.String()),
		StyleCard.Render(window.String()),
	)
	hint := StyleDim.Render("space: toggle  a: toggle all  tab: switch pane  enter: start run")
	return lipgloss.JoinVertical(lipgloss.Left, body, hint)
}

func checkLine(label string, on, focused bool) string {
	box := "[ ]"
	if on {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s", box, label)
	if focused {
		return StyleSelected.Render("> " + line)
	}
	return "  " + line
}
