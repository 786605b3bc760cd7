package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   controller URL (or the tool name before login)
//	center: colored connection/run indicator
//	right:  screen hint
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := "AppDynamics Extractor"
	if app.api != nil {
		left = app.api.BaseURL()
	}

	var center, right string
	switch app.screen {
	case screenLogin:
		center = StyleDim.Render("● NOT CONNECTED")
		if app.lastError != nil {
			center = StyleError.Render("● " + truncateErr(app.lastError.Error()))
		}
		right = StyleDim.Render("ctrl+s: connect")
	case screenConnecting:
		center = StyleStatusWarn.Render("● CONNECTING")
	case screenSelect:
		center = StyleStatusOK.Render("● CONNECTED")
		right = StyleDim.Render("enter: start run")
	case screenRunning:
		center = StyleStatusWarn.Render("● RUNNING  " + app.progress.State.String())
		right = StyleDim.Render("esc: cancel")
	case screenResults:
		center = StyleStatusOK.Render("● DONE")
		right = StyleDim.Render("e: export  esc: new run")
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// truncateErr keeps header error text on one line.
func truncateErr(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if len(msg) > 60 {
		return msg[:60] + "..."
	}
	return msg
}
